package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/client"
	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type reply struct {
	status int
	body   string
}

// fakeAPI answers "METHOD /path" routes with canned replies and records hits
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]func(r *http.Request, body string) reply
	hits   map[string]int
}

func (f *fakeAPI) on(route string, status int, body string) {
	f.handle(route, func(*http.Request, string) reply { return reply{status, body} })
}

func (f *fakeAPI) handle(route string, fn func(r *http.Request, body string) reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = fn
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	route := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.hits[route]++
	fn := f.routes[route]
	f.mu.Unlock()

	rep := reply{http.StatusNotFound, `{"message":"no route ` + route + `"}`}
	if fn != nil {
		rep = fn(r, string(b))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

type fixture struct {
	api      *fakeAPI
	env      *Env
	reg      *prometheus.Registry
	metrics  *metrics.Metrics
	feed     *FeedService
	comments *CommentService
	posts    *PostActionService
	profiles *ProfileService
	follows  *FollowService
	notifs   *NotificationService
	auth     *AuthService
	live     *LiveService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := &fakeAPI{routes: map[string]func(*http.Request, string) reply{}, hits: map[string]int{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	env := &Env{
		API:       api.New(client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})),
		Cache:     cache.New(cache.WithPageSize(10), cache.WithObserver(m)),
		Metrics:   m,
		Principal: func() string { return "u1" },
		PageSize:  10,
	}

	f := &fixture{api: fake, env: env, reg: reg, metrics: m}
	f.feed = NewFeedService(env)
	f.comments = NewCommentService(env)
	f.posts = NewPostActionService(env, f.feed)
	f.profiles = NewProfileService(env)
	f.follows = NewFollowService(env, f.profiles)
	f.notifs = NewNotificationService(env)
	f.auth = NewAuthService(env)
	f.live = NewLiveService(env, f.notifs)
	return f
}

func ids(recs []cache.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
