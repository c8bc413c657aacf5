package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		token  string
		userID string
	}{
		{"nested user", `{"data":{"token":"t1","user":{"id":"u1","username":"sam"}}}`, "t1", "u1"},
		{"flat", `{"access_token":"t2","user_id":"u2"}`, "t2", "u2"},
		{"token only", `{"data":{"accessToken":"t3"}}`, "t3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.api.on("POST /api/v1/auth/login", 200, tt.body)

			res, err := f.auth.Login(context.Background(), "sam@example.com", "pw")
			require.NoError(t, err)
			assert.Equal(t, tt.token, res.Token)
			assert.Equal(t, tt.userID, res.User.ID)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(context.Background(), "", "pw")
	assert.Error(t, err)

	f.api.on("POST /api/v1/auth/login", 401, `{"message":"Invalid credentials"}`)
	_, err = f.auth.Login(context.Background(), "sam@example.com", "bad")
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "Invalid credentials", cliErr.Message)
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)

	f.api.on("POST /api/v1/auth/login", 200, `{"message":"ok"}`)
	_, err = f.auth.Login(context.Background(), "sam@example.com", "pw")
	assert.Error(t, err)
}

func TestLogoutClearsCacheEvenWhenServerFails(t *testing.T) {
	f := newFixture(t)
	f.env.Cache.Put(cache.Signature{Entity: "profile", ParentID: "u1"}, cache.Record{ID: "u1"})
	f.api.handle("POST /api/v1/auth/logout", func(*http.Request, string) reply {
		return reply{500, `{}`}
	})

	f.auth.Logout(context.Background())
	assert.Zero(t, f.env.Cache.Len())
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.api.on("GET /api/v1/auth/me", 200, `{"data":{"user":{"id":"u1","username":"sam"}}}`)

	rec, err := f.auth.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sam", rec.String("username"))
}
