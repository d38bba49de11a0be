// Package auth implements the get-or-create-session orchestration: reuse a
// persisted session when it still authenticates, otherwise run the login
// protocol, and recover once from a 401 encountered mid-command by
// discarding the session and logging in again.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalWestie/tutanota-cli/internal/api"
	"github.com/digitalWestie/tutanota-cli/internal/apierrors"
	"github.com/digitalWestie/tutanota-cli/internal/logging"
	"github.com/digitalWestie/tutanota-cli/internal/session"
)

// Store persists and retrieves the working session. internal/sessionstore's
// FileStore implements it over that package's functions; tests can
// substitute a fake.
type Store interface {
	Load() (*session.Session, error)
	Save(sess *session.Session) error
	Clear() error
}

// EnsureSession returns a usable session: the persisted one if a probe
// against the system-keys endpoint still accepts it, otherwise a fresh one
// obtained by running the login protocol with creds.
func EnsureSession(ctx context.Context, client *api.Client, store Store, creds api.Credentials, log logging.Sink) (*session.Session, error) {
	log = orNoop(log)

	if sess := tryReusePersisted(ctx, client, store, log); sess != nil {
		return sess, nil
	}
	return login(ctx, client, store, creds, log)
}

// WithAuthRetry runs op once. If op fails with ErrAuthFailed (a 401
// anywhere), the persisted session is discarded, the login protocol runs
// again, and op is retried exactly once. A second 401 is fatal.
func WithAuthRetry(ctx context.Context, client *api.Client, store Store, creds api.Credentials, log logging.Sink, op func() error) error {
	log = orNoop(log)

	if err := op(); err == nil {
		return nil
	} else if !errors.Is(err, apierrors.ErrAuthFailed) {
		return err
	} else {
		log.LogError("authenticated request rejected", err)
	}

	if err := store.Clear(); err != nil {
		log.LogError("clear persisted session", err)
	}
	client.SetAccessToken("")

	if _, err := login(ctx, client, store, creds, log); err != nil {
		return fmt.Errorf("re-authenticate after 401: %w", err)
	}
	if err := op(); err != nil {
		return fmt.Errorf("retried request still failing: %w", err)
	}
	return nil
}

// tryReusePersisted loads and probes a persisted session, discarding it and
// returning nil on any failure — network failure and auth rejection are
// logged with distinct messages, but both fall through to a fresh login.
func tryReusePersisted(ctx context.Context, client *api.Client, store Store, log logging.Sink) *session.Session {
	sess, err := store.Load()
	if err != nil {
		log.LogError("load persisted session", err)
		return nil
	}
	if sess == nil {
		return nil
	}

	client.SetAccessToken(sess.AccessToken)
	if err := client.ProbeSystemKeys(ctx); err == nil {
		log.Log("reused persisted session", "userId", sess.UserID)
		return sess
	} else if errors.Is(err, apierrors.ErrNetworkUnavailable) {
		log.LogError("probe persisted session: network unavailable", err)
	} else {
		log.LogError("probe persisted session: rejected", err)
	}

	if err := store.Clear(); err != nil {
		log.LogError("clear persisted session", err)
	}
	client.SetAccessToken("")
	return nil
}

// login runs the login protocol and persists the result.
func login(ctx context.Context, client *api.Client, store Store, creds api.Credentials, log logging.Sink) (*session.Session, error) {
	result, err := client.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	sess := &session.Session{
		BaseURL:     client.BaseURL(),
		AccessToken: result.AccessToken,
		UserID:      result.UserID,
		SessionID:   &session.ID{ListID: result.ListID, ElementID: result.ElementID},
	}
	client.SetAccessToken(sess.AccessToken)

	if err := store.Save(sess); err != nil {
		log.LogError("persist session", err)
	}
	return sess, nil
}

func orNoop(log logging.Sink) logging.Sink {
	if log == nil {
		return logging.Noop
	}
	return log
}
