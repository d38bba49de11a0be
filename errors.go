package tutanotacli

import "github.com/digitalWestie/tutanota-cli/internal/apierrors"

// Sentinel errors re-exported for callers that want to errors.Is against
// them without importing the internal package directly.
var (
	// ErrTwoFactorRequired is returned when the account requires a
	// two-factor challenge this client does not support.
	ErrTwoFactorRequired = apierrors.ErrTwoFactorRequired

	// ErrAuthFailed is returned when credentials are rejected, including
	// after the single post-401 retry.
	ErrAuthFailed = apierrors.ErrAuthFailed

	// ErrNetworkUnavailable is returned for transport-level failures.
	ErrNetworkUnavailable = apierrors.ErrNetworkUnavailable

	// ErrProtocolMismatch is returned when a response is missing an
	// attribute this client requires.
	ErrProtocolMismatch = apierrors.ErrProtocolMismatch
)
