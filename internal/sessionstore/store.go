// Package sessionstore persists a session to a JSON file under the user's
// XDG config directory, so the CLI doesn't re-run the login protocol on
// every invocation.
package sessionstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/digitalWestie/tutanota-cli/internal/session"
)

// DisableEnvVar, when set to "1", "true", or "yes", disables both read
// and write.
const DisableEnvVar = "TUTANOTA_NO_SESSION_PERSISTENCE"

const (
	configDirName = "tutanota-cli"
	sessionFile   = "session.json"
	fileMode      = 0600
	directoryMode = 0700
)

// fileSession is the on-disk document shape.
type fileSession struct {
	BaseURL     string     `json:"baseUrl"`
	AccessToken string     `json:"accessToken"`
	UserID      string     `json:"userId"`
	SessionID   *[2]string `json:"sessionId,omitempty"`
}

// Disabled reports whether persistence is turned off via DisableEnvVar.
func Disabled() bool {
	switch strings.ToLower(os.Getenv(DisableEnvVar)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// Path returns the session file path: ${XDG_CONFIG_HOME:-$HOME/.config}/tutanota-cli/session.json.
func Path() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, configDirName, sessionFile), nil
}

// Load reads the persisted session. Returns (nil, nil) if persistence is
// disabled or no session file exists yet.
func Load() (*session.Session, error) {
	if Disabled() {
		return nil, nil
	}

	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var fs fileSession
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}

	sess := &session.Session{
		BaseURL:     fs.BaseURL,
		AccessToken: fs.AccessToken,
		UserID:      fs.UserID,
	}
	if fs.SessionID != nil {
		sess.SessionID = &session.ID{ListID: fs.SessionID[0], ElementID: fs.SessionID[1]}
	}
	return sess, nil
}

// Save persists a session to disk with secure permissions. A no-op when
// persistence is disabled.
func Save(sess *session.Session) error {
	if Disabled() {
		return nil
	}

	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), directoryMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	fs := fileSession{
		BaseURL:     sess.BaseURL,
		AccessToken: sess.AccessToken,
		UserID:      sess.UserID,
	}
	if sess.SessionID != nil {
		fs.SessionID = &[2]string{sess.SessionID.ListID, sess.SessionID.ElementID}
	}

	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session file, if any.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// FileStore is a zero-value-usable handle onto the package-level
// Load/Save/Clear functions, structurally satisfying internal/auth.Store
// without sessionstore depending on the auth package.
type FileStore struct{}

func (FileStore) Load() (*session.Session, error)  { return Load() }
func (FileStore) Save(sess *session.Session) error { return Save(sess) }
func (FileStore) Clear() error                     { return Clear() }
