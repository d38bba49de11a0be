package tutanotacli

import (
	"net/http"
	"time"

	"github.com/digitalWestie/tutanota-cli/internal/auth"
	"github.com/digitalWestie/tutanota-cli/internal/logging"
	"github.com/digitalWestie/tutanota-cli/internal/sessionstore"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	retries     int
	store       auth.Store
	log         logging.Sink
	concurrency int
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL. Defaults to TUTANOTA_API_URL, or
// https://app.tuta.com if that is unset.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries for transient HTTP failures.
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithSessionStore overrides the persisted-session collaborator. Tests
// substitute a fake; production code leaves this unset and gets the
// file-based store under the user's XDG config directory.
func WithSessionStore(store auth.Store) Option {
	return func(c *clientConfig) {
		c.store = store
	}
}

// WithLogger sets the logging sink. Defaults to logging.Noop.
func WithLogger(log logging.Sink) Option {
	return func(c *clientConfig) {
		c.log = log
	}
}

// WithVerbose, when verbose is true, builds a development-mode zap sink and
// installs it as the logger; when false it leaves the logger unchanged. A
// zap construction error installs logging.Noop instead and does not reach
// New.
func WithVerbose(verbose bool) Option {
	return func(c *clientConfig) {
		if !verbose {
			return
		}
		log, err := logging.NewZapSink(verbose)
		if err != nil {
			// zap construction failures are effectively unreachable for the
			// stock encoder configs NewZapSink selects; fall back to Noop
			// rather than surfacing a constructor error from an Option.
			c.log = logging.Noop
			return
		}
		c.log = log
	}
}

// WithConcurrency overrides the default bounded fan-out ceiling for the
// folder and mail list operations.
func WithConcurrency(n int) Option {
	return func(c *clientConfig) {
		c.concurrency = n
	}
}

func defaultConfig() clientConfig {
	return clientConfig{
		store:       sessionstore.FileStore{},
		log:         logging.Noop,
		concurrency: 0, // 0 means "use the mailbox package default"
	}
}
