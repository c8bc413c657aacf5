// Package session owns the state of one signed-in user: the HTTP client, the
// optimistic cache, metrics and the services built on them. A session starts
// at login (or at startup with stored credentials) and its cache is cleared
// at logout.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/client"
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
	"github.com/kazem-mohamed/socialhub-app/pkg/credentials"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/live"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
	"github.com/kazem-mohamed/socialhub-app/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Session
type Options struct {
	Client          client.Options
	Live            live.Config
	PageSize        int
	CredentialsPath string
	Credentials     *credentials.Credentials
}

// OptionsFromConfig reads api.* keys and the stored credentials
func OptionsFromConfig() (Options, error) {
	creds, err := credentials.Load()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Client:          client.OptionsFromConfig(),
		Live:            live.ConfigFromViper(),
		PageSize:        config.PageSize(),
		CredentialsPath: config.GetCredentialsPath(),
		Credentials:     creds,
	}, nil
}

// Session is one user's client state
type Session struct {
	HTTP     *resty.Client
	API      *api.Client
	Cache    *cache.Cache
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Feed          *service.FeedService
	Comments      *service.CommentService
	Posts         *service.PostActionService
	Profiles      *service.ProfileService
	Follows       *service.FollowService
	Notifications *service.NotificationService
	Auth          *service.AuthService
	Live          *service.LiveService

	mu         sync.RWMutex
	creds      *credentials.Credentials
	credsPath  string
	liveConfig live.Config
	watcher    *live.Client
}

// New builds a session. Valid credentials in opts make it authenticated.
func New(opts Options) *Session {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	s := &Session{
		Registry:   reg,
		Metrics:    m,
		credsPath:  opts.CredentialsPath,
		liveConfig: opts.Live,
	}
	if opts.Credentials.IsValid() {
		s.creds = opts.Credentials
		opts.Client.Token = opts.Credentials.AccessToken
	}

	s.HTTP = client.New(opts.Client)
	s.API = api.New(s.HTTP, api.WithCallObserver(m.ObserveRemote))
	s.Cache = cache.New(cache.WithPageSize(opts.PageSize), cache.WithObserver(m))

	env := &service.Env{
		API:       s.API,
		Cache:     s.Cache,
		Metrics:   m,
		Principal: s.Principal,
		PageSize:  opts.PageSize,
	}
	s.Feed = service.NewFeedService(env)
	s.Comments = service.NewCommentService(env)
	s.Posts = service.NewPostActionService(env, s.Feed)
	s.Profiles = service.NewProfileService(env)
	s.Follows = service.NewFollowService(env, s.Profiles)
	s.Notifications = service.NewNotificationService(env)
	s.Auth = service.NewAuthService(env)
	s.Live = service.NewLiveService(env, s.Notifications)

	logger.Debug("Session started", "principal", s.Principal(), "authenticated", s.Authenticated())
	return s
}

// FromConfig builds a session from the loaded configuration
func FromConfig() (*Session, error) {
	opts, err := OptionsFromConfig()
	if err != nil {
		return nil, err
	}
	return New(opts), nil
}

// Principal is the user the cache is keyed by, empty when signed out
func (s *Session) Principal() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	if s.creds.UserID != "" {
		return s.creds.UserID
	}
	sub, _ := ParseToken(s.creds.AccessToken)
	return sub
}

// Credentials returns a copy of the active credentials
func (s *Session) Credentials() (credentials.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return credentials.Credentials{}, false
	}
	return *s.creds, true
}

// Authenticated reports whether the session holds a live token
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.IsValid()
}

// RequireAuth returns an auth error when signed out
func (s *Session) RequireAuth() error {
	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()

	if creds == nil || creds.AccessToken == "" {
		return clierrors.AuthError("You are not logged in")
	}
	if creds.IsExpired() {
		return clierrors.SessionExpiredError()
	}
	return nil
}

// Login signs in, stores the credentials and starts a fresh cache for the
// new principal.
func (s *Session) Login(ctx context.Context, email, password string) (*credentials.Credentials, error) {
	res, err := s.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sub, exp := ParseToken(res.Token)
	creds := &credentials.Credentials{
		AccessToken: res.Token,
		ExpiresAt:   exp,
		UserID:      res.User.ID,
		Username:    res.User.String("username", "userName", "handle"),
		Email:       res.User.String("email"),
	}
	if creds.UserID == "" {
		creds.UserID = sub
	}
	if creds.Email == "" {
		creds.Email = email
	}

	s.stopWatching()
	s.Cache.Clear()
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	client.SetAuthToken(s.HTTP, creds.AccessToken)

	if s.credsPath != "" {
		if err := credentials.SaveTo(s.credsPath, creds); err != nil {
			return creds, err
		}
	}
	logger.Info("Logged in", "user_id", creds.UserID)
	return creds, nil
}

// Watch opens a live connection that keeps the cache current until ctx is
// done or the session closes.
func (s *Session) Watch(ctx context.Context) (*live.Client, error) {
	if err := s.RequireAuth(); err != nil {
		return nil, err
	}
	creds, _ := s.Credentials()

	c := live.NewClient(s.liveConfig)
	live.NewApplier(s.Live, s.Metrics).Bind(c)
	if err := c.Connect(ctx, creds.AccessToken); err != nil {
		return nil, clierrors.NetworkError("Could not open live updates", err)
	}

	s.mu.Lock()
	prev := s.watcher
	s.watcher = c
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return c, nil
}

func (s *Session) stopWatching() {
	s.mu.Lock()
	c := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// Logout ends the server session, clears the cache and forgets the
// credentials.
func (s *Session) Logout(ctx context.Context) error {
	s.stopWatching()
	if s.Authenticated() {
		s.Auth.Logout(ctx)
	} else {
		s.Cache.Clear()
	}

	s.mu.Lock()
	s.creds = nil
	s.mu.Unlock()
	client.ClearAuthToken(s.HTTP)

	if s.credsPath != "" {
		return credentials.DeleteAt(s.credsPath)
	}
	return nil
}

// Close stops live updates and drops the cache. The stored credentials are
// kept.
func (s *Session) Close() {
	s.stopWatching()
	s.Cache.Clear()
}

// ParseToken reads the subject and expiry from a JWT without verifying its
// signature.
func ParseToken(token string) (string, time.Time) {
	if token == "" {
		return "", time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", time.Time{}
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		if id, ok := claims["user_id"].(string); ok {
			sub = id
		}
	}
	var exp time.Time
	if nd, err := claims.GetExpirationTime(); err == nil && nd != nil {
		exp = nd.Time
	}
	return sub, exp
}
