package crypto

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"decentpay/lifecycle"
	"decentpay/rpc"
)

// LocalSigner signs envelopes and authorization obligations with one local
// private key. It refuses identities other than its own so a misrouted
// request can never be signed with the wrong key.
type LocalSigner struct {
	key *PrivateKey
}

// NewLocalSigner wraps a private key in the signing interface.
func NewLocalSigner(key *PrivateKey) (*LocalSigner, error) {
	if key == nil {
		return nil, fmt.Errorf("crypto: nil private key")
	}
	return &LocalSigner{key: key}, nil
}

// Address returns the account identity this signer can sign for.
func (s *LocalSigner) Address() string {
	return s.key.Address()
}

// SignEnvelope signs the envelope for the identity. The signature covers the
// canonical JSON encoding of the envelope with the signature field cleared.
func (s *LocalSigner) SignEnvelope(ctx context.Context, env *rpc.Envelope, identity string) (*rpc.Envelope, error) {
	if err := s.checkIdentity(identity); err != nil {
		return nil, err
	}
	unsigned := env.Clone()
	unsigned.Signature = ""
	payload, err := json.Marshal(unsigned)
	if err != nil {
		return nil, fmt.Errorf("crypto: encode envelope: %w", err)
	}
	signed := env.Clone()
	signed.Signature = hex.EncodeToString(s.key.Sign(payload))
	return signed, nil
}

// SignObligations signs each obligation's invocation, preserving order.
func (s *LocalSigner) SignObligations(ctx context.Context, obligations []rpc.AuthObligation, identity string) ([]rpc.AuthObligation, error) {
	if err := s.checkIdentity(identity); err != nil {
		return nil, err
	}
	signed := make([]rpc.AuthObligation, len(obligations))
	for i, ob := range obligations {
		sig := hex.EncodeToString(s.key.Sign(ob.Invocation))
		encoded, err := json.Marshal(sig)
		if err != nil {
			return nil, fmt.Errorf("crypto: encode signature: %w", err)
		}
		ob.Signature = encoded
		signed[i] = ob
	}
	return signed, nil
}

func (s *LocalSigner) checkIdentity(identity string) error {
	if identity != s.key.Address() {
		return fmt.Errorf("%w: key holds %s, not %s", lifecycle.ErrSigningRejected, s.key.Address(), identity)
	}
	return nil
}
