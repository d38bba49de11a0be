package decrypt

import (
	"strconv"
	"strings"

	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// Coerce converts decrypted UTF-8 bytes back to the declared scalar type.
func Coerce(scalar wire.ScalarType, plaintext []byte) any {
	switch scalar {
	case wire.ScalarNumber:
		text := string(plaintext)
		if text == "" {
			return int64(0)
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case wire.ScalarDate:
		text := string(plaintext)
		if text == "" {
			return int64(0)
		}
		ms, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return int64(0)
		}
		return ms
	case wire.ScalarBoolean:
		return string(plaintext) != "0"
	case wire.ScalarBytes:
		return plaintext
	default: // ScalarString, ScalarCompressedString
		return string(plaintext)
	}
}

// TrimAndLower normalizes an email address the way the salt request body
// requires: trim whitespace, then lowercase.
func TrimAndLower(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
