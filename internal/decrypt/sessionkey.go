package decrypt

import (
	"github.com/digitalWestie/tutanota-cli/internal/crypto"
	"github.com/digitalWestie/tutanota-cli/internal/keychain"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// ResolveSessionKey resolves the session key for an encrypted instance. It
// returns (nil, nil) — not an error — when the type is not encrypted, or
// when the owner attributes or the key chain can't supply what's needed;
// callers treat a nil key as "decrypt with zero-value substitution", not
// as a fatal condition.
//
// versionOverride, when non-empty, is used instead of the instance's own
// owner-key-version attribute — the per-instance retry loop in package
// mailbox uses this to try other cached versions.
func ResolveSessionKey(inst wire.Instance, tm *wire.TypeModel, chain *keychain.Chain, versionOverride string, sink SessionKeySink) ([]byte, error) {
	if sink == nil {
		sink = NoopSink
	}
	if !tm.Encrypted {
		return nil, nil
	}

	ownerGroup, _ := wire.UnwrapSingleElementArray(inst[tm.OwnerGroupID]).(string)
	ownerEncRaw := wire.UnwrapSingleElementArray(inst[tm.OwnerEncSessionKeyID])
	if ownerGroup == "" || ownerEncRaw == nil {
		return nil, nil
	}

	version := versionOverride
	if version == "" {
		version, _ = wire.UnwrapSingleElementArray(inst[tm.OwnerKeyVersionID]).(string)
	}

	groupKey, ok := chain.Get(ownerGroup, version)
	if !ok {
		return nil, nil
	}

	wrapped, err := crypto.NormalizeBytes(ownerEncRaw)
	if err != nil {
		return nil, nil
	}

	plaintext, method, err := crypto.UnwrapLadder(groupKey, wrapped, sink.Attempt)
	if err != nil {
		sink.MethodSucceeded(crypto.MethodNone)
		return nil, nil
	}
	sink.MethodSucceeded(method)
	return plaintext, nil
}
