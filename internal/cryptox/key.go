// Package cryptox implements the vault's client-side encryption: identity-bound
// key derivation and the Codec implementations files are encrypted with before
// they leave the process.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveKey computes the symmetric key bound to a user identity pair.
// It is deterministic: the same (userID, userEmail) always yields the same
// key, so a file encrypted today stays decryptable for as long as the
// identity pair is unchanged. The key is computed on demand and never stored.
//
// The hash is one-way, but the inputs are account identifiers, not secrets.
// The derived key therefore binds files to an account; it does not protect
// against an adversary who already knows the user's id and email (such as
// the backend operator). This is a property of the scheme, not a defect.
func DeriveKey(userID, userEmail string) string {
	sum := sha256.Sum256([]byte(userID + userEmail))
	return hex.EncodeToString(sum[:])
}
