package near

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// AccessKeyLister is the slice of the ledger client the verifier needs.
type AccessKeyLister interface {
	ViewAccessKeys(ctx context.Context, accountID string) ([]AccessKey, error)
}

// Verifier checks that a client controls a claimed NEAR account: the
// signature must verify over the account id's SHA-256 digest, and the
// signing key must appear in the account's current on-chain access-key
// registry. Both legs must pass.
type Verifier struct {
	chain AccessKeyLister
}

func NewVerifier(chain AccessKeyLister) *Verifier {
	return &Verifier{chain: chain}
}

// Verify returns nil only for a fully verified identity. Every failure,
// including ledger query errors and empty key sets, collapses into
// ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, accountID string, signature, publicKey []byte) error {
	if accountID == "" || len(signature) != ed25519.SignatureSize || len(publicKey) != ed25519.PublicKeySize {
		return ErrInvalidCredentials
	}

	// The client signs the SHA-256 digest of its own account id.
	digest := sha256.Sum256([]byte(accountID))
	if !ed25519.Verify(ed25519.PublicKey(publicKey), digest[:], signature) {
		return ErrInvalidCredentials
	}

	keys, err := v.chain.ViewAccessKeys(ctx, accountID)
	if err != nil || len(keys) == 0 {
		return ErrInvalidCredentials
	}

	encoded := EncodePublicKey(publicKey)
	for _, key := range keys {
		if key.PublicKey == encoded {
			return nil
		}
	}

	return ErrInvalidCredentials
}

// EncodePublicKey renders raw ed25519 key bytes in NEAR's text form.
func EncodePublicKey(publicKey []byte) string {
	return fmt.Sprintf("ed25519:%s", base58.Encode(publicKey))
}
