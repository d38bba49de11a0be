// Package keychain holds the per-group symmetric key cache: unlocking the
// user group key from the passphrase key, deriving the mail group key from
// the user's mail membership, and the former-key walker that recovers
// older versions on demand.
package keychain

import (
	"fmt"

	"github.com/digitalWestie/tutanota-cli/internal/crypto"
)

// groupEntry is one group's cached key versions.
type groupEntry struct {
	currentVersion string
	keys           map[string][]byte
	order          []string
}

// Chain is the key chain: a cache of (group, version) -> key that grows
// only by insertion, never by mutation of a stored key's bytes. It is safe
// to use without locking because the mailbox reader guarantees former-key
// population for a group completes before any concurrent decryption reads
// that group's entry.
type Chain struct {
	groups map[string]*groupEntry
}

// NewChain returns an empty key chain.
func NewChain() *Chain {
	return &Chain{groups: make(map[string]*groupEntry)}
}

// Get returns the key cached for (groupID, version), or false if absent.
func (c *Chain) Get(groupID, version string) ([]byte, bool) {
	entry, ok := c.groups[groupID]
	if !ok {
		return nil, false
	}
	key, ok := entry.keys[version]
	return key, ok
}

// CurrentVersion returns the group's current version, or false if the
// group has never been planted.
func (c *Chain) CurrentVersion(groupID string) (string, bool) {
	entry, ok := c.groups[groupID]
	if !ok {
		return "", false
	}
	return entry.currentVersion, true
}

// Insert caches a key for (groupID, version), called by the former-key
// walker after a successful chain decryption. It does not alter
// currentVersion.
func (c *Chain) Insert(groupID, version string, key []byte) {
	entry := c.groups[groupID]
	if entry == nil {
		entry = &groupEntry{keys: make(map[string][]byte)}
		c.groups[groupID] = entry
	}
	if _, exists := entry.keys[version]; !exists {
		entry.order = append(entry.order, version)
	}
	entry.keys[version] = key
}

// plantCurrent inserts a group's key at unlock time and marks it current.
func (c *Chain) plantCurrent(groupID, version string, key []byte) {
	c.Insert(groupID, version, key)
	c.groups[groupID].currentVersion = version
}

// Versions enumerates a group's currently known key versions in
// insertion order.
func (c *Chain) Versions(groupID string) []string {
	entry, ok := c.groups[groupID]
	if !ok {
		return nil
	}
	out := make([]string, len(entry.order))
	copy(out, entry.order)
	return out
}

// Unlock computes the user group key from the passphrase key and plants
// it at the user group's current version. If the user has a mail
// membership, it derives and plants the mail group key too.
//
// A legacy account may have a 128-bit passphrase key server-side while
// this client derived a 256-bit Argon2id key; the 128-bit truncation of
// the Argon2id output is not equivalent to that legacy key in general, but
// migrated accounts retain the 128-bit wrapping, so the 128-bit attempt is
// tried first whenever the passphrase key is wide enough to offer one.
func (c *Chain) Unlock(passphraseKey []byte, material *UserMaterial) error {
	userGroupKey, err := unlockGroupKey(material.UserGroupMembership.SymEncGKey, passphraseKey)
	if err != nil {
		return fmt.Errorf("unlock user group key: %w", err)
	}
	c.plantCurrent(material.UserGroupMembership.GroupID, material.UserGroupMembership.GroupKeyVersion, userGroupKey)

	mail, ok := material.MailMembership()
	if !ok {
		return nil
	}
	mailGroupKey, err := unlockGroupKey(mail.SymEncGKey, userGroupKey)
	if err != nil {
		return fmt.Errorf("unlock mail group key: %w", err)
	}
	c.plantCurrent(mail.GroupID, mail.GroupKeyVersion, mailGroupKey)
	return nil
}

// unlockGroupKey applies the two-step width dance: if the unwrapping key
// is wider than 128 bits, try the 128-bit truncation first, falling back
// to the full-width key; otherwise decrypt directly at 128 bits.
func unlockGroupKey(wrapped, unwrappingKey []byte) ([]byte, error) {
	if len(unwrappingKey) > crypto.Key128Size {
		if key, err := crypto.Decrypt128(unwrappingKey[:crypto.Key128Size], wrapped); err == nil {
			return key, nil
		}
		return crypto.DecryptLegacy256(unwrappingKey, wrapped)
	}
	return crypto.Decrypt128(unwrappingKey, wrapped)
}
