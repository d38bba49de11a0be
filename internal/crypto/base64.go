package crypto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Base64 encoding functions for wire values.
//
// The tutanota wire protocol uses URL-safe base64 without padding for
// cryptographic values (keys, wrapped session keys, encrypted attributes).
// Standard base64 only shows up nested inside the custom-id encoding that
// the former-key range query uses to address a specific key version.

// ToBase64URL encodes bytes to URL-safe base64 without padding (RFC 4648 §5).
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding (RFC 4648 §5).
func FromBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// ToBase64 encodes bytes to standard base64 with padding (RFC 4648 §4).
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 with padding (RFC 4648 §4).
func FromBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// NormalizeBytes coerces a decoded-JSON value that may arrive as raw bytes,
// a base64(url) string, or an array of byte values into a plain []byte.
// Salts and wrapped session keys both arrive in one of these shapes.
func NormalizeBytes(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return val, nil
	case string:
		if b, err := FromBase64URL(val); err == nil {
			return b, nil
		}
		return FromBase64(val)
	case json.Number:
		return nil, fmt.Errorf("cannot normalize scalar %v to bytes", val)
	case []any:
		out := make([]byte, len(val))
		for i, elem := range val {
			n, ok := elem.(float64)
			if !ok {
				return nil, fmt.Errorf("byte array element %d is not numeric", i)
			}
			out[i] = byte(n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported byte-ish value of type %T", v)
	}
}

// CustomIDFromVersion encodes a decimal key-version string into the
// custom-id shape the former-key reverse range query starts from:
// base64url of the base64 encoding of the UTF-8 bytes of the version text.
func CustomIDFromVersion(version string) string {
	inner := base64.StdEncoding.EncodeToString([]byte(version))
	return ToBase64URL([]byte(inner))
}
