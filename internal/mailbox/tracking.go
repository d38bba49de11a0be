package mailbox

import "github.com/digitalWestie/tutanota-cli/internal/crypto"

// trackingSink records which attribute ids failed decryption during one
// DecryptInstance call, so the per-instance retry loop can ask "did the
// attributes that matter for this type fail?" without the decryptor
// needing to know what "matters" means for a given caller.
type trackingSink struct {
	failed map[string]bool
}

func newTrackingSink() *trackingSink {
	return &trackingSink{failed: make(map[string]bool)}
}

func (t *trackingSink) DecryptFailed(attrID string, err error) { t.failed[attrID] = true }
func (t *trackingSink) DecryptFellBack(attrID string)          {}

func (t *trackingSink) anyFailed(attrIDs ...string) bool {
	for _, id := range attrIDs {
		if t.failed[id] {
			return true
		}
	}
	return false
}

// methodSink discards session-key diagnostics; the mailbox reader doesn't
// currently surface which ladder method unwrapped a session key.
type methodSink struct{}

func (methodSink) MethodSucceeded(crypto.Method) {}
func (methodSink) Attempt(crypto.Method, error)  {}
