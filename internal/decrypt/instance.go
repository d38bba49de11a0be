package decrypt

import (
	"github.com/digitalWestie/tutanota-cli/internal/crypto"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// DecryptInstance decrypts every encrypted attribute the type model
// declares for inst, using sessionKey (which may be nil). Unencrypted
// attributes and any wire key absent from the type model (association
// ids — list refs, tuple refs, aggregations) are copied through
// unchanged.
func DecryptInstance(inst wire.Instance, tm *wire.TypeModel, sessionKey []byte, sink AttributeSink) wire.Instance {
	if sink == nil {
		sink = NoopSink
	}

	out := make(wire.Instance, len(inst))

	for id, attr := range tm.Values {
		if !attr.Encrypted {
			out[id] = inst[id]
			continue
		}
		out[id] = decryptAttribute(attr, inst[id], sessionKey, sink)
	}

	for id, raw := range inst {
		if _, declared := tm.Values[id]; declared {
			continue
		}
		out[id] = raw
	}

	return out
}

func decryptAttribute(attr wire.AttributeModel, raw any, sessionKey []byte, sink AttributeSink) any {
	value := wire.UnwrapSingleElementArray(raw)
	s, isString := value.(string)
	if sessionKey == nil || value == nil || (isString && s == "") {
		return attr.Scalar.ZeroValue()
	}

	ciphertext, err := crypto.NormalizeBytes(value)
	if err != nil {
		sink.DecryptFailed(attr.ID, err)
		return attr.Scalar.ZeroValue()
	}

	plaintext, fellBack, err := decryptWithFallback(sessionKey, ciphertext)
	if err != nil {
		sink.DecryptFailed(attr.ID, err)
		return attr.Scalar.ZeroValue()
	}
	if fellBack {
		sink.DecryptFellBack(attr.ID)
	}

	return Coerce(attr.Scalar, plaintext)
}

// decryptWithFallback tries the full session key first, then its 128-bit
// companion. For a 256-bit key the ladder's last method already is the
// companion, so a success by that method counts as a fall-back.
func decryptWithFallback(sessionKey, ciphertext []byte) (plaintext []byte, fellBack bool, err error) {
	plaintext, method, err := crypto.UnwrapLadder(sessionKey, ciphertext, nil)
	if err == nil {
		return plaintext, len(sessionKey) == crypto.Key256Size && method == crypto.Method128, nil
	}
	companion := crypto.Key128Companion(sessionKey)
	if len(companion) == len(sessionKey) {
		return nil, false, err
	}
	plaintext, err = crypto.Decrypt128(companion, ciphertext)
	if err != nil {
		return nil, false, err
	}
	return plaintext, true, nil
}
