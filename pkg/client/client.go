package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
)

// UserAgent is sent with every request
const UserAgent = "SocialHub-CLI/0.1.0"

// Options configures a new HTTP client
type Options struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

// OptionsFromConfig reads api.* keys
func OptionsFromConfig() Options {
	return Options{
		BaseURL: config.GetString("api.base_url"),
		Timeout: config.GetDuration("api.timeout"),
	}
}

// New creates a resty client for the REST API. Retries are disabled: a failed
// mutation is rolled back and the user re-triggers it.
func New(opts Options) *resty.Client {
	c := resty.New()

	c.SetBaseURL(opts.BaseURL)
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	c.SetHeader("User-Agent", UserAgent)
	c.SetHeader("Accept", "application/json")
	c.SetRetryCount(0)
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal

	if opts.Token != "" {
		SetAuthToken(c, opts.Token)
	}

	c.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
		)
		return nil
	})

	return c
}

// SetAuthToken sets the bearer token on c
func SetAuthToken(c *resty.Client, token string) {
	c.SetAuthToken(token)
}

// ClearAuthToken removes the bearer token from c
func ClearAuthToken(c *resty.Client) {
	c.SetAuthToken("")
	c.Header.Del("Authorization")
}
