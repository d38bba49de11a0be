package decrypt

import "github.com/digitalWestie/tutanota-cli/internal/crypto"

// SessionKeySink receives diagnostics about session-key unwrap attempts.
// Both methods are optional; NoopSink satisfies the interface
// with no-ops so call sites that don't care can pass nil-free defaults.
type SessionKeySink interface {
	// MethodSucceeded reports which ladder method unwrapped the session
	// key, or crypto.MethodNone if every method failed.
	MethodSucceeded(method crypto.Method)
	// Attempt reports the outcome of one ladder attempt, in order.
	Attempt(method crypto.Method, err error)
}

// AttributeSink receives diagnostics about per-attribute decryption.
type AttributeSink interface {
	// DecryptFailed reports that an attribute's decryption failed with
	// both the full session key and its 128-bit companion.
	DecryptFailed(attrID string, err error)
	// DecryptFellBack reports that an attribute decrypted successfully
	// only after retrying with the 128-bit companion.
	DecryptFellBack(attrID string)
}

type noopSink struct{}

func (noopSink) MethodSucceeded(crypto.Method) {}
func (noopSink) Attempt(crypto.Method, error)  {}
func (noopSink) DecryptFailed(string, error)   {}
func (noopSink) DecryptFellBack(string)        {}

// NoopSink implements both SessionKeySink and AttributeSink as no-ops.
var NoopSink = noopSink{}
