package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/client"
	"github.com/kazem-mohamed/socialhub-app/pkg/credentials"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/live"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestParseToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	sub, got := ParseToken(signedToken(t, jwt.MapClaims{"sub": "u42", "exp": exp.Unix()}))
	assert.Equal(t, "u42", sub)
	assert.True(t, exp.Equal(got))

	sub, got = ParseToken(signedToken(t, jwt.MapClaims{"user_id": "u7"}))
	assert.Equal(t, "u7", sub)
	assert.True(t, got.IsZero())

	sub, _ = ParseToken("not-a-jwt")
	assert.Empty(t, sub)
}

func TestNewWithoutCredentials(t *testing.T) {
	s := New(Options{Client: client.Options{BaseURL: "http://localhost:0"}})

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Principal())

	var cliErr *clierrors.CLIError
	require.ErrorAs(t, s.RequireAuth(), &cliErr)
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)
}

func TestExpiredCredentials(t *testing.T) {
	s := New(Options{
		Client:      client.Options{BaseURL: "http://localhost:0"},
		Credentials: &credentials.Credentials{AccessToken: "t", ExpiresAt: time.Now().Add(-time.Hour)},
	})
	assert.False(t, s.Authenticated())
	assert.Error(t, s.RequireAuth())
}

func TestLoginAndLogout(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u42", "exp": time.Now().Add(time.Hour).Unix()})
	var logoutAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_, _ = w.Write([]byte(`{"data":{"token":"` + token + `"}}`))
		case "/api/v1/auth/logout":
			logoutAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "credentials")
	s := New(Options{Client: client.Options{BaseURL: srv.URL}, CredentialsPath: path})
	s.Cache.Put(cache.Signature{Entity: "profile", ParentID: "someone"}, cache.Record{ID: "someone"})

	creds, err := s.Login(context.Background(), "sam@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u42", creds.UserID, "principal falls back to the token subject")
	assert.Equal(t, "sam@example.com", creds.Email)
	assert.Equal(t, "u42", s.Principal())
	assert.True(t, s.Authenticated())
	assert.Zero(t, s.Cache.Len(), "a new principal starts with an empty cache")

	stored, err := credentials.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, token, stored.AccessToken)

	assert.Equal(t, "u42", s.Feed.Signature("").Principal)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, "Bearer "+token, logoutAuth)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Principal())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSessionsDoNotShareState(t *testing.T) {
	a := New(Options{Client: client.Options{BaseURL: "http://localhost:0"}})
	b := New(Options{Client: client.Options{BaseURL: "http://localhost:0"}})

	a.Cache.Put(cache.Signature{Entity: "profile", ParentID: "x"}, cache.Record{ID: "x"})
	assert.Zero(t, b.Cache.Len())

	a.Metrics.Mutation("like", "committed")
	assert.NotSame(t, a.Registry, b.Registry)
}

func TestWatchAppliesLiveUpdates(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"like_count_update","payload":{"post_id":"p1","like_count":42}}`))
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"posts":[{"id":"p1","like_count":1}]}}`))
	}))
	defer srv.Close()

	cfg := live.DefaultConfig()
	cfg.URL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	s := New(Options{
		Client:      client.Options{BaseURL: srv.URL},
		Live:        cfg,
		Credentials: &credentials.Credentials{AccessToken: "t", UserID: "u1"},
	})
	defer s.Close()

	_, err := s.Feed.Load(context.Background(), "latest")
	require.NoError(t, err)

	_, err = s.Watch(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		rec, _ := s.Cache.Get(s.Feed.Signature("latest"), "p1")
		return rec.Int("like_count") == 42
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchRequiresAuth(t *testing.T) {
	s := New(Options{Client: client.Options{BaseURL: "http://localhost:0"}})
	_, err := s.Watch(context.Background())
	assert.Error(t, err)
}
