package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// This file implements the three symmetric decryption methods the
// fallback ladder tries, in both key widths. All three share the same
// wire shape for the unauthenticated part: a 16-byte CBC IV followed by
// PKCS#7-padded ciphertext. The authenticated method appends a 32-byte
// HMAC-SHA256 tag computed over IV||ciphertext, using the same key that
// encrypts — the client does not attempt key separation beyond what the
// wire format already encodes.

// Decrypt128 is fallback method "1" when len(key) == 16 and fallback
// method "3" (on key[0:16]) when len(key) == 32: unauthenticated AES-128-CBC.
func Decrypt128(key, ciphertext []byte) ([]byte, error) {
	return decryptCBC(key, ciphertext, Key128Size)
}

// DecryptLegacy256 is fallback method "2" when len(key) == 16 (the ladder
// passes the key zero-extended to 32 bytes) and method "1" when
// len(key) == 32: unauthenticated AES-256-CBC.
func DecryptLegacy256(key, ciphertext []byte) ([]byte, error) {
	return decryptCBC(key, ciphertext, Key256Size)
}

// DecryptAuthenticated256 is fallback method "3" when len(key) == 16
// (tried against the zero-extended key after 128-bit and legacy-256 both
// fail) and method "2" when len(key) == 32: AES-256-CBC with an appended
// HMAC-SHA256 tag that is verified before the ciphertext is decrypted.
func DecryptAuthenticated256(key, ciphertext []byte) ([]byte, error) {
	if len(key) != Key256Size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), Key256Size)
	}
	if len(ciphertext) < AESBlockSize+HMACTagSize {
		return nil, ErrInvalidCiphertextSize
	}

	boundary := len(ciphertext) - HMACTagSize
	body, tag := ciphertext[:boundary], ciphertext[boundary:]

	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, tag) {
		return nil, ErrDecryptionFailed
	}

	return decryptCBC(key, body, Key256Size)
}

// decryptCBC splits off the leading IV, decrypts the remainder with
// AES-CBC, and strips PKCS#7 padding.
func decryptCBC(key, ciphertext []byte, wantKeyLen int) ([]byte, error) {
	if len(key) != wantKeyLen {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), wantKeyLen)
	}
	if len(ciphertext) < AESBlockSize || len(ciphertext)%AESBlockSize != 0 {
		return nil, ErrInvalidCiphertextSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv, body := ciphertext[:AESBlockSize], ciphertext[AESBlockSize:]
	if len(body) == 0 {
		return nil, ErrInvalidCiphertextSize
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, body)

	return unpadPKCS7(plaintext)
}

func unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecryptionFailed
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > AESBlockSize || padLen > len(data) {
		return nil, ErrDecryptionFailed
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrDecryptionFailed
		}
	}
	return data[:len(data)-padLen], nil
}

func padPKCS7(data []byte) []byte {
	padLen := AESBlockSize - len(data)%AESBlockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// Encrypt128 is the encrypting counterpart of Decrypt128, used by tests to
// build fixtures and by call sites that need to re-wrap a key under its
// 128-bit companion.
func Encrypt128(key, plaintext []byte) ([]byte, error) {
	return encryptCBC(key, plaintext, Key128Size)
}

// EncryptLegacy256 is the encrypting counterpart of DecryptLegacy256.
func EncryptLegacy256(key, plaintext []byte) ([]byte, error) {
	return encryptCBC(key, plaintext, Key256Size)
}

// EncryptAuthenticated256 is the encrypting counterpart of DecryptAuthenticated256.
func EncryptAuthenticated256(key, plaintext []byte) ([]byte, error) {
	body, err := encryptCBC(key, plaintext, Key256Size)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return append(body, mac.Sum(nil)...), nil
}

func encryptCBC(key, plaintext []byte, wantKeyLen int) ([]byte, error) {
	if len(key) != wantKeyLen {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), wantKeyLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, AESBlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	padded := padPKCS7(plaintext)
	out := make([]byte, AESBlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[AESBlockSize:], padded)

	return out, nil
}

// Key128Companion truncates a 256-bit key to its first 16 bytes, forming
// its "128-bit companion" without mutating the original key's stored
// bytes.
func Key128Companion(key []byte) []byte {
	if len(key) <= Key128Size {
		return key
	}
	companion := make([]byte, Key128Size)
	copy(companion, key[:Key128Size])
	return companion
}
