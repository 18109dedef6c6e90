package client

import (
	"context"
	"fmt"

	"decentpay/codec"
	"decentpay/lifecycle"
)

const maxPlatformFeeBP = 1000 // 10%, enforced by the contract as well

// Initialize sets the contract owner, fee collector and fee. It can only
// succeed once per deployment.
func (c *Client) Initialize(ctx context.Context, owner string, platformFeeBP uint32, feeCollector string) (*lifecycle.Outcome, error) {
	if platformFeeBP > maxPlatformFeeBP {
		return nil, fmt.Errorf("client: platform fee %d bp exceeds the %d bp cap", platformFeeBP, maxPlatformFeeBP)
	}
	ownerAddr, err := addressArg(owner)
	if err != nil {
		return nil, err
	}
	collectorAddr, err := addressArg(feeCollector)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "initialize", owner, ownerAddr, collectorAddr, codec.NewU32(platformFeeBP))
}

// SetPlatformFeeBP updates the fee charged on each release, in basis points.
// The contract authenticates the stored owner; owner here only signs.
func (c *Client) SetPlatformFeeBP(ctx context.Context, feeBP uint32, owner string) (*lifecycle.Outcome, error) {
	if feeBP > maxPlatformFeeBP {
		return nil, fmt.Errorf("client: platform fee %d bp exceeds the %d bp cap", feeBP, maxPlatformFeeBP)
	}
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "set_platform_fee_bp", owner, codec.NewU32(feeBP))
}

// SetFeeCollector changes where platform fees accumulate.
func (c *Client) SetFeeCollector(ctx context.Context, collector, owner string) (*lifecycle.Outcome, error) {
	collectorAddr, err := addressArg(collector)
	if err != nil {
		return nil, err
	}
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "set_fee_collector", owner, collectorAddr)
}

// SetOwner hands the contract to a new administrator.
func (c *Client) SetOwner(ctx context.Context, newOwner, owner string) (*lifecycle.Outcome, error) {
	newOwnerAddr, err := addressArg(newOwner)
	if err != nil {
		return nil, err
	}
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "set_owner", owner, newOwnerAddr)
}

// WhitelistToken allows a token for new escrows. Whitelisting is one-way;
// the contract has no revocation entry point.
func (c *Client) WhitelistToken(ctx context.Context, token, owner string) (*lifecycle.Outcome, error) {
	tokenAddr, err := addressArg(token)
	if err != nil {
		return nil, err
	}
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "whitelist_token", owner, tokenAddr)
}

// AuthorizeArbiter grants dispute-resolution rights. Like whitelisting, the
// grant cannot be revoked on chain.
func (c *Client) AuthorizeArbiter(ctx context.Context, arbiter, owner string) (*lifecycle.Outcome, error) {
	arbiterAddr, err := addressArg(arbiter)
	if err != nil {
		return nil, err
	}
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "authorize_arbiter", owner, arbiterAddr)
}

// PauseJobCreation blocks new escrows; existing escrows keep operating.
func (c *Client) PauseJobCreation(ctx context.Context, owner string) (*lifecycle.Outcome, error) {
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "pause_job_creation", owner)
}

// UnpauseJobCreation lifts the pause.
func (c *Client) UnpauseJobCreation(ctx context.Context, owner string) (*lifecycle.Outcome, error) {
	if err := codec.ValidateAddress(owner); err != nil {
		return nil, err
	}
	return c.write(ctx, "unpause_job_creation", owner)
}
