// Package crypto provides the passphrase-derived key material and the
// symmetric decryption ladder the rest of the client builds on: deriving a
// passphrase key from a server-chosen KDF, and unwrapping group keys and
// session keys under AES-CBC with either no authentication (legacy) or an
// appended HMAC-SHA256 tag.
//
// # Algorithm suite
//
//   - Argon2id or bcrypt (server-selected by kdf_version): derives the
//     passphrase key from (passphrase, salt).
//   - AES-128-CBC / AES-256-CBC: unwraps group and session keys. Every key
//     may be 128-bit or 256-bit, and a 256-bit key's first 16 bytes double
//     as its "128-bit companion", which [UnwrapLadder] and package decrypt's
//     attribute fallback both try.
//   - HMAC-SHA256: authenticates the newer wrapping format, appended to the
//     ciphertext rather than carried out-of-band.
//
// # Key widths
//
// [UnwrapLadder] tries the three methods in a width-dependent order. A
// [Key128Size] key tries [Decrypt128], then [DecryptLegacy256] (no MAC,
// inherited from an older protocol revision) and [DecryptAuthenticated256]
// on the key zero-extended to 32 bytes. A [Key256Size] key tries
// [DecryptLegacy256], then [DecryptAuthenticated256], then [Decrypt128] on
// its 128-bit companion.
package crypto
