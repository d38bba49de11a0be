// Package tutanotacli is a read-only, end-to-end-encrypted mail client.
// It runs the login/session protocol against the mail service's REST API,
// unlocks the caller's key chain from their passphrase, and decrypts
// mailbox metadata — folders and mail headers — without ever persisting
// key material across process runs.
//
// Only the access token is persisted between invocations (see
// internal/sessionstore); the key chain is re-derived from the account
// password on every call that needs it. Message bodies and attachments
// are out of scope, as is any operation that creates or modifies server
// state.
package tutanotacli
