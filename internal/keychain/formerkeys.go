package keychain

import (
	"context"
	"fmt"
	"strconv"

	"github.com/digitalWestie/tutanota-cli/internal/crypto"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// Accessor is the subset of the REST accessor the former-key walker needs.
// Defined here rather than imported from package api to keep keychain free
// of a dependency on the transport layer; package api's *Client satisfies
// it structurally.
type Accessor interface {
	LoadEntity(ctx context.Context, typeName, id string) (wire.Instance, error)
	LoadRange(ctx context.Context, typeName, listID, start string, count int, reverse bool) ([]wire.Instance, error)
}

// WalkFormerKeys resolves the key for groupID at an older targetVersion by
// walking its former-key list backward from currentVersion, decrypting
// each link with the next-newer key. The current key must already be
// cached. Returns the resolved key and inserts it into the chain on
// success; returns (nil, false) if the chain is unreachable at any link.
func (c *Chain) WalkFormerKeys(ctx context.Context, accessor Accessor, groupID, targetVersion string) ([]byte, bool, error) {
	current, ok := c.CurrentVersion(groupID)
	if !ok {
		return nil, false, fmt.Errorf("group %s has no current version cached", groupID)
	}

	currentN, err := strconv.Atoi(current)
	if err != nil {
		return nil, false, fmt.Errorf("parse current version %q: %w", current, err)
	}
	targetN, err := strconv.Atoi(targetVersion)
	if err != nil {
		return nil, false, fmt.Errorf("parse target version %q: %w", targetVersion, err)
	}

	if currentN <= targetN {
		key, ok := c.Get(groupID, targetVersion)
		return key, ok, nil
	}

	group, err := accessor.LoadEntity(ctx, "Group", groupID)
	if err != nil {
		return nil, false, fmt.Errorf("load group %s: %w", groupID, err)
	}
	formerKeysListID := group.StringAttr("823")
	if formerKeysListID == "" {
		return nil, false, fmt.Errorf("group %s has no former-keys list", groupID)
	}

	startCustomID := crypto.CustomIDFromVersion(current)
	count := currentN - targetN

	links, err := accessor.LoadRange(ctx, "GroupKey", formerKeysListID, startCustomID, count, true)
	if err != nil {
		return nil, false, fmt.Errorf("load former-key range for group %s: %w", groupID, err)
	}

	currentKey, ok := c.Get(groupID, current)
	if !ok {
		return nil, false, fmt.Errorf("group %s missing cached key at current version %s", groupID, current)
	}

	version := currentN
	for _, link := range links {
		wrapped, err := crypto.NormalizeBytes(wire.UnwrapSingleElementArray(link["830"]))
		if err != nil {
			return nil, false, nil
		}
		nextKey, err := unwrapFormerKey(currentKey, wrapped)
		if err != nil {
			return nil, false, nil
		}
		currentKey = nextKey
		version--
		c.Insert(groupID, strconv.Itoa(version), currentKey)
	}

	if version != targetN {
		return nil, false, nil
	}

	return currentKey, true, nil
}

// unwrapFormerKey decrypts one former-key chain link under the
// next-newer key, trying the same width-dependent method order session-key
// resolution does, since a chain link may have been wrapped at either
// width historically.
func unwrapFormerKey(key, wrapped []byte) ([]byte, error) {
	plaintext, _, err := crypto.UnwrapLadder(key, wrapped, nil)
	return plaintext, err
}
