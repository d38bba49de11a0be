package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blowfish"
)

// DerivePassphraseKey turns a passphrase and salt into the symmetric key
// that unlocks the user group key, per the server-supplied kdf_version.
// kdf_version "0" selects bcrypt and yields a 16-byte key; any other value
// selects Argon2id with this client's fixed parameters and yields a
// 32-byte key. Deterministic: the same inputs always derive the same key,
// which must match the key the server wrapped symEncGKey under.
func DerivePassphraseKey(passphrase string, salt []byte, kdfVersion string) []byte {
	if kdfVersion == BcryptKDFVersion {
		return bcryptDerive(passphrase, salt)
	}
	return argon2.IDKey([]byte(passphrase), salt, Argon2TimeCost, Argon2MemoryCostKiB, Argon2Parallelism, Argon2KeyLen)
}

// bcryptMagic is the OpenBSD bcrypt plaintext, encrypted 64 times per
// 8-byte block under the expensively-set-up cipher to form the digest.
var bcryptMagic = []byte("OrpheanBeholderScryDoubt")

// bcryptDerive runs the bcrypt key schedule against the supplied salt and
// keeps the first BcryptKeyLen bytes of the 24-byte output block.
// bcrypt.GenerateFromPassword cannot serve here: it draws a fresh random
// salt on every call, and this derivation must reproduce the exact key the
// server-side wrapping used, so the Blowfish setup is composed directly.
// The passphrase is pre-hashed with SHA-256 so inputs longer than bcrypt's
// 72-byte limit still contribute in full.
func bcryptDerive(passphrase string, salt []byte) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	key := append(sum[:], 0)

	c, err := blowfish.NewSaltedCipher(key, salt)
	if err != nil {
		// NewSaltedCipher only rejects an empty key; a 33-byte digest
		// never triggers it. Fall back to the digest rather than panicking.
		return sum[:BcryptKeyLen]
	}
	for i := 0; i < 1<<BcryptCost; i++ {
		blowfish.ExpandKey(salt, c)
		blowfish.ExpandKey(key, c)
	}

	out := make([]byte, len(bcryptMagic))
	copy(out, bcryptMagic)
	for i := 0; i < len(out); i += blowfish.BlockSize {
		for j := 0; j < 64; j++ {
			c.Encrypt(out[i:i+blowfish.BlockSize], out[i:i+blowfish.BlockSize])
		}
	}
	return out[:BcryptKeyLen]
}

// BuildAuthVerifier proves knowledge of the passphrase key without
// transmitting it: a base64url encoding of the key's SHA-256 digest.
func BuildAuthVerifier(passphraseKey []byte) string {
	digest := sha256.Sum256(passphraseKey)
	return ToBase64URL(digest[:])
}
