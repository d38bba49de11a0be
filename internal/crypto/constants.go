package crypto

const (
	// Key128Size is the length in bytes of a 128-bit symmetric key.
	Key128Size = 16
	// Key256Size is the length in bytes of a 256-bit symmetric key.
	Key256Size = 32

	// AESBlockSize is the AES block size (and CBC IV size) in bytes.
	AESBlockSize = 16
	// HMACTagSize is the length in bytes of the HMAC-SHA256 tag appended
	// by the authenticated 256-bit decryption method.
	HMACTagSize = 32

	// Argon2TimeCost is the fixed Argon2id iteration count.
	Argon2TimeCost = 4
	// Argon2MemoryCostKiB is the Argon2id memory cost in KiB (32 MiB).
	Argon2MemoryCostKiB = 32 * 1024
	// Argon2Parallelism is the fixed Argon2id lane count.
	Argon2Parallelism = 1
	// Argon2KeyLen is the Argon2id output length in bytes.
	Argon2KeyLen = 32

	// BcryptKDFVersion is the kdf_version value that selects bcrypt over
	// Argon2id in DerivePassphraseKey.
	BcryptKDFVersion = "0"
	// BcryptKeyLen is the length in bytes of the key bcrypt produces.
	BcryptKeyLen = 16
	// BcryptCost is the bcrypt work factor: 2^BcryptCost key-schedule
	// rounds.
	BcryptCost = 8
)

// AlgsCiphersuite names the primitives this client's KDF/decrypt ladder is
// built from, for logging and diagnostics.
var AlgsCiphersuite = "Argon2id|bcrypt:AES-128/256-CBC:HMAC-SHA256"
