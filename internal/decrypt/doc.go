// Package decrypt resolves session keys for encrypted wire instances and
// decrypts their attributes.
//
// [ResolveSessionKey] looks up the owner group's key in the key chain and
// unwraps the instance's owner-enc-session-key under it, trying both key
// widths. [DecryptInstance] then walks the type model's attribute table,
// decrypting each encrypted attribute with that session key (retrying
// with its 128-bit companion on failure) and coercing the result to the
// declared scalar type; attributes the model doesn't know about are
// copied through unchanged.
//
// A nil session key is not an error condition: DecryptInstance treats it
// as "substitute every encrypted attribute's zero value", which is also
// what happens when an individual attribute's decryption fails.
package decrypt
