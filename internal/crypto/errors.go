package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when a key's length is not the width a
	// decryption method takes, or not 16 or 32 bytes for the ladder.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidCiphertextSize is returned when a ciphertext is too short
	// for an IV, a non-empty body and (for authenticated mode) a MAC tag,
	// or when its body is not a whole number of AES blocks.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrDecryptionFailed is returned when CBC padding is malformed or an
	// authentication tag does not verify.
	ErrDecryptionFailed = errors.New("decryption failed")
)
