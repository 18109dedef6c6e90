package lifecycle

import (
	"context"

	"decentpay/rpc"
)

// Signer is the external signing capability. Key material never enters this
// layer; wallets, hardware signers and test fakes all satisfy this interface.
// Implementations return ErrSigningRejected (possibly wrapped) when the user
// declines.
type Signer interface {
	// SignEnvelope signs the full transaction envelope for the paying
	// identity.
	SignEnvelope(ctx context.Context, env *rpc.Envelope, identity string) (*rpc.Envelope, error)

	// SignObligations signs each authorization obligation for the identity,
	// preserving order.
	SignObligations(ctx context.Context, obligations []rpc.AuthObligation, identity string) ([]rpc.AuthObligation, error)
}

// ReadOnlySigner declines every signing request. Services that only read
// contract state use it so no write can slip through.
type ReadOnlySigner struct{}

func (ReadOnlySigner) SignEnvelope(ctx context.Context, env *rpc.Envelope, identity string) (*rpc.Envelope, error) {
	return nil, ErrSigningRejected
}

func (ReadOnlySigner) SignObligations(ctx context.Context, obligations []rpc.AuthObligation, identity string) ([]rpc.AuthObligation, error) {
	return nil, ErrSigningRejected
}
