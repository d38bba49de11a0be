package tutanotacli

import (
	"context"
	"fmt"
	"sync"

	"github.com/digitalWestie/tutanota-cli/internal/api"
	"github.com/digitalWestie/tutanota-cli/internal/auth"
	"github.com/digitalWestie/tutanota-cli/internal/keychain"
	"github.com/digitalWestie/tutanota-cli/internal/logging"
	"github.com/digitalWestie/tutanota-cli/internal/mailbox"
	"github.com/digitalWestie/tutanota-cli/internal/prompt"
	"github.com/digitalWestie/tutanota-cli/internal/session"
)

// Client is a logged-in view of one account's mailbox. Construct one with
// New, then call its operations; each one ensures a session and, where
// needed, an unlocked key chain before doing any REST work.
type Client struct {
	api         *api.Client
	store       auth.Store
	creds       api.Credentials
	log         logging.Sink
	concurrency int

	mu       sync.Mutex
	sess     *session.Session
	chain    *keychain.Chain
	material *keychain.UserMaterial
}

// New builds a Client for creds. It performs no I/O; the session and key
// chain are established lazily on the first operation that needs them.
func New(creds api.Credentials, opts ...Option) (*Client, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.baseURL == "" {
		cfg.baseURL = prompt.BaseURL()
	}

	var apiOpts []api.Option
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retries > 0 {
		apiOpts = append(apiOpts, api.WithRetries(cfg.retries))
	}

	apiClient, err := api.New(cfg.baseURL, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	return &Client{
		api:         apiClient,
		store:       cfg.store,
		creds:       creds,
		log:         cfg.log,
		concurrency: cfg.concurrency,
	}, nil
}

// AuthStatus is the result of CheckAuth.
type AuthStatus struct {
	OK        bool
	UserID    string
	SessionID string
}

// CheckAuth runs the get-or-create-session orchestration and reports
// whether the resulting session authenticates. It never unlocks the key
// chain; this is the cheapest possible check of whether the account's
// credentials and stored session are usable.
func (c *Client) CheckAuth(ctx context.Context) (*AuthStatus, error) {
	sess, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	status := &AuthStatus{OK: true, UserID: sess.UserID}
	if sess.SessionID != nil {
		status.SessionID = sess.SessionID.ListID + "/" + sess.SessionID.ElementID
	}
	return status, nil
}

// Logout discards the persisted session and this Client's in-memory
// session and key-chain state. The next operation re-runs the login
// protocol.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = nil
	c.chain = nil
	c.material = nil
	c.api.SetAccessToken("")
	return c.store.Clear()
}

// Profile returns the account's user id and mail group id, deriving the
// key chain if it has not already been unlocked this run.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	if _, _, _, err := c.ensureUnlocked(ctx); err != nil {
		return nil, err
	}

	var profile *Profile
	err := c.withRetry(ctx, func() error {
		sess, _, material, err := c.ensureUnlocked(ctx)
		if err != nil {
			return err
		}
		p := &Profile{Email: c.creds.Email, UserID: sess.UserID}
		if mail, ok := material.MailMembership(); ok {
			p.MailGroupID = mail.GroupID
		}
		profile = p
		return nil
	})
	return profile, err
}

// ListFolders returns every folder in the account's mailbox, decrypted.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	err := c.withRetry(ctx, func() error {
		reader, err := c.reader(ctx)
		if err != nil {
			return err
		}
		folders, err = reader.ListFolders(ctx)
		return err
	})
	return folders, err
}

// ListMails returns the most recent mails in folderID, newest first, with
// their headers decrypted.
func (c *Client) ListMails(ctx context.Context, folderID string) ([]Mail, error) {
	var mails []Mail
	err := c.withRetry(ctx, func() error {
		reader, err := c.reader(ctx)
		if err != nil {
			return err
		}
		instances, err := reader.ListMails(ctx, folderID)
		if err != nil {
			return err
		}
		mails = make([]Mail, 0, len(instances))
		for _, inst := range instances {
			mails = append(mails, Mail{
				ID:      inst.TupleIDAttr("_id"),
				Subject: inst.StringAttr("105"),
			})
		}
		return nil
	})
	return mails, err
}

// withRetry runs op through the auth package's 401-triggered single-retry
// wrapper. The key chain itself never needs to be re-derived on retry —
// only the session token does — so the cached chain on c survives a retry
// untouched; op re-resolves it through c.reader/c.ensureUnlocked, which
// return the cached value.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	return auth.WithAuthRetry(ctx, c.api, c.store, c.creds, c.log, op)
}

// reader builds a mailbox reader against this Client's unlocked key chain
// and mail group.
func (c *Client) reader(ctx context.Context) (*mailbox.Reader, error) {
	_, chain, material, err := c.ensureUnlocked(ctx)
	if err != nil {
		return nil, err
	}
	mail, ok := material.MailMembership()
	if !ok {
		return nil, fmt.Errorf("account %s has no mail group membership", c.creds.Email)
	}
	return mailbox.NewReader(c.api, chain, mail.GroupID).WithConcurrency(c.concurrency), nil
}

// ensureSession runs the auth orchestrator, caching the result so repeat
// operations in the same process don't re-probe.
func (c *Client) ensureSession(ctx context.Context) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil {
		return c.sess, nil
	}
	sess, err := auth.EnsureSession(ctx, c.api, c.store, c.creds, c.log)
	if err != nil {
		return nil, err
	}
	c.sess = sess
	return sess, nil
}

// ensureUnlocked ensures both a session and an unlocked key chain,
// deriving the passphrase key independently of whether the session was
// reused from disk — the key chain is never itself persisted.
func (c *Client) ensureUnlocked(ctx context.Context) (*session.Session, *keychain.Chain, *keychain.UserMaterial, error) {
	sess, err := c.ensureSession(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chain != nil {
		return sess, c.chain, c.material, nil
	}

	chain, material, err := auth.UnlockKeyChain(ctx, c.api, c.creds, sess.UserID)
	if err != nil {
		return nil, nil, nil, err
	}
	c.chain = chain
	c.material = material
	return sess, chain, material, nil
}
