package api

import (
	"context"
	"fmt"

	"github.com/digitalWestie/tutanota-cli/internal/apierrors"
	"github.com/digitalWestie/tutanota-cli/internal/crypto"
	"github.com/digitalWestie/tutanota-cli/internal/decrypt"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

const (
	saltServicePath    = "/rest/sys/saltservice"
	sessionServicePath = "/rest/sys/sessionservice"

	// sysModelVersion is the "v" header this client sends for every sys
	// app service call (salt, session creation, system keys probe).
	sysModelVersion = "143"

	clientIdentifier = "tutanota-cli"
)

// Numeric attribute ids for the salt and session services. These are
// service request/response bodies, not persisted entity types, so they
// live beside the login flow rather than in the type-model registry.
var (
	saltRequestIDs = map[string]string{
		"format":      "418",
		"mailAddress": "419",
	}
	saltResponseFieldNames = map[string]wire.AttributeModel{
		"420": {ID: "420", FieldName: "salt"},
		"421": {ID: "421", FieldName: "kdfVersion"},
	}

	sessionRequestIDs = map[string]string{
		"mailAddress":         "419",
		"authVerifier":        "422",
		"clientIdentifier":    "423",
		"accessKey":           "424",
		"authToken":           "425",
		"recoverCodeVerifier": "426",
		"user":                "428",
	}
	sessionResponseFieldNames = map[string]wire.AttributeModel{
		"427": {ID: "427", FieldName: "accessToken"},
		"428": {ID: "428", FieldName: "user"},
		"429": {ID: "429", FieldName: "challenges"},
	}
)

// SystemKeysPath is the authenticated probe endpoint the auth orchestrator
// uses to validate a persisted session.
const SystemKeysPath = "/rest/sys/systemkeysservice"

// Credentials is obtained by the environment/prompt collaborator.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is what Login returns on success.
type LoginResult struct {
	AccessToken string
	UserID      string
	ListID      string
	ElementID   string
}

// DerivePassphraseKey fetches the account's salt and KDF version, then
// derives the passphrase key. Exposed separately from Login so
// the key chain can be unlocked even when a persisted session makes the
// rest of the login protocol unnecessary.
func (c *Client) DerivePassphraseKey(ctx context.Context, creds Credentials) ([]byte, error) {
	email := decrypt.TrimAndLower(creds.Email)

	saltBody := wire.BuildRequestBody(saltRequestIDs, map[string]any{
		"format":      "0",
		"mailAddress": email,
	})

	var saltRaw wire.Instance
	if err := c.Do(ctx, "GET", saltServicePath, sysModelVersion, saltBody, &saltRaw); err != nil {
		return nil, fmt.Errorf("fetch salt: %w", err)
	}
	salt, kdfVersion, err := parseSaltResponse(saltRaw)
	if err != nil {
		return nil, err
	}

	return crypto.DerivePassphraseKey(creds.Password, salt, kdfVersion), nil
}

// Login runs the two-step login protocol: fetch salt, derive the
// passphrase key, post session creation, and derive the session-id pair
// from the returned access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	email := decrypt.TrimAndLower(creds.Email)

	passphraseKey, err := c.DerivePassphraseKey(ctx, creds)
	if err != nil {
		return nil, err
	}
	authVerifier := crypto.BuildAuthVerifier(passphraseKey)

	sessionBody := wire.BuildRequestBody(sessionRequestIDs, map[string]any{
		"mailAddress":         email,
		"authVerifier":        authVerifier,
		"clientIdentifier":    clientIdentifier,
		"accessKey":           nil,
		"authToken":           nil,
		"recoverCodeVerifier": nil,
		"user":                []any{},
	})

	var sessionRaw wire.Instance
	if err := c.Do(ctx, "POST", sessionServicePath, sysModelVersion, sessionBody, &sessionRaw); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	accessToken, userID, err := parseSessionResponse(sessionRaw)
	if err != nil {
		return nil, err
	}

	listID, elementID, err := SessionIDFromAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("derive session id: %w", err)
	}

	return &LoginResult{
		AccessToken: accessToken,
		UserID:      userID,
		ListID:      listID,
		ElementID:   elementID,
	}, nil
}

func parseSaltResponse(raw wire.Instance) (salt []byte, kdfVersion string, err error) {
	named := wire.Normalize(saltResponseFieldNames, raw)
	saltValue, ok := named["salt"]
	if !ok {
		return nil, "", &apierrors.RESTError{Path: saltServicePath, Message: "salt response missing salt"}
	}
	salt, err = crypto.NormalizeBytes(wire.UnwrapSingleElementArray(saltValue))
	if err != nil {
		return nil, "", fmt.Errorf("normalize salt: %w", err)
	}
	kdfVersion, _ = named["kdfVersion"].(string)
	return salt, kdfVersion, nil
}

func parseSessionResponse(raw wire.Instance) (accessToken, userID string, err error) {
	named := wire.Normalize(sessionResponseFieldNames, raw)

	if challenges, ok := named["challenges"].([]any); ok && len(challenges) > 0 {
		return "", "", apierrors.ErrTwoFactorRequired
	}

	accessToken, _ = named["accessToken"].(string)
	userID, _ = wire.UnwrapSingleElementArray(named["user"]).(string)
	if accessToken == "" || userID == "" {
		return "", "", &apierrors.RESTError{Path: sessionServicePath, Message: "session response missing accessToken or user"}
	}
	return accessToken, userID, nil
}
