// Package apierrors provides the error kinds surfaced by the core: failures
// from authentication, the REST transport, and the decryption pipeline.
package apierrors

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for errors.Is checks. Each corresponds to one of
// the kinds the core is documented to surface.
var (
	// ErrTwoFactorRequired is returned when a session-creation response
	// carries a non-empty challenges list. Fatal for this client.
	ErrTwoFactorRequired = errors.New("two-factor authentication is required")

	// ErrAuthFailed is returned for a 401 on any authenticated request.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNetworkUnavailable is returned for transport-level failures:
	// DNS resolution, connection refused, timeouts, resets.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrProtocolMismatch is returned when a required attribute is
	// missing or has an unexpected shape.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrKeyUnavailable is returned when the key chain cannot supply a
	// key for a requested (group, version). Non-fatal at the attribute
	// level; the decryptor substitutes a zero value and continues.
	ErrKeyUnavailable = errors.New("key unavailable")

	// ErrDecryptFailure is returned when attribute decryption fails
	// after both key-width fallbacks. Handled identically to
	// ErrKeyUnavailable.
	ErrDecryptFailure = errors.New("decryption failure")
)

// RESTError represents a non-2xx response from the REST accessor.
type RESTError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *RESTError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rest error %d on %s: %s", e.StatusCode, e.Path, e.Message)
	}
	return fmt.Sprintf("rest error %d on %s", e.StatusCode, e.Path)
}

// Is implements errors.Is for sentinel matching: any 401 is ErrAuthFailed.
func (e *RESTError) Is(target error) bool {
	return e.StatusCode == 401 && target == ErrAuthFailed
}

// NetworkError wraps a transport-level failure (DNS, connect, timeout,
// reset) so callers can distinguish it from an authenticated rejection.
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error requesting %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is: every NetworkError matches ErrNetworkUnavailable.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkUnavailable
}
