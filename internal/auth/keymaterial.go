package auth

import (
	"context"
	"fmt"

	"github.com/digitalWestie/tutanota-cli/internal/api"
	"github.com/digitalWestie/tutanota-cli/internal/keychain"
)

// UnlockKeyChain derives the passphrase key (an independent salt fetch, run
// regardless of whether EnsureSession reused a persisted accessToken — the
// key chain is never persisted across process runs), fetches the user's key
// material, and unlocks a fresh Chain from it.
func UnlockKeyChain(ctx context.Context, client *api.Client, creds api.Credentials, userID string) (*keychain.Chain, *keychain.UserMaterial, error) {
	passphraseKey, err := client.DerivePassphraseKey(ctx, creds)
	if err != nil {
		return nil, nil, fmt.Errorf("derive passphrase key: %w", err)
	}

	userInst, err := client.LoadEntity(ctx, "User", userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	material, err := keychain.ParseUserMaterial(userInst)
	if err != nil {
		return nil, nil, fmt.Errorf("parse user key material: %w", err)
	}

	chain := keychain.NewChain()
	if err := chain.Unlock(passphraseKey, material); err != nil {
		return nil, nil, fmt.Errorf("unlock key chain: %w", err)
	}
	return chain, material, nil
}
