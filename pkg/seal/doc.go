// Package seal applies authenticated encryption to envelope payloads.
//
// Encryption covers the payload field only: descriptor and metadata travel
// in the clear. The transform is AES-256-GCM with no additional
// authenticated data, taking an explicit 32-byte key and 12-byte nonce per
// call. Key material is never owned, generated or persisted here; key
// distribution and nonce uniqueness are caller responsibilities. Reusing a
// nonce under the same key breaks GCM's guarantees.
package seal
