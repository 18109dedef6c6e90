package client

import (
	"context"
	"fmt"
	"math/big"

	"decentpay/codec"
	"decentpay/lifecycle"
)

// MilestoneInput is one deliverable supplied at creation time.
type MilestoneInput struct {
	Amount      *big.Int
	Description string
}

// CreateEscrowParams carries the create_escrow arguments. Beneficiary left
// empty creates an open job freelancers can apply to; Token left empty means
// the native asset.
type CreateEscrowParams struct {
	Depositor             string
	Beneficiary           string
	Arbiters              []string
	RequiredConfirmations uint32
	Milestones            []MilestoneInput
	Token                 string
	TotalAmount           *big.Int
	Duration              uint32
	ProjectTitle          string
	ProjectDescription    string
}

func (p CreateEscrowParams) validate() error {
	if p.Depositor == "" {
		return fmt.Errorf("client: depositor required")
	}
	if p.TotalAmount == nil || p.TotalAmount.Sign() <= 0 {
		return fmt.Errorf("client: total amount must be positive")
	}
	if len(p.Milestones) == 0 {
		return fmt.Errorf("client: at least one milestone required")
	}
	sum := new(big.Int)
	for i, m := range p.Milestones {
		if m.Amount == nil || m.Amount.Sign() <= 0 {
			return fmt.Errorf("client: milestone %d amount must be positive", i)
		}
		sum.Add(sum, m.Amount)
	}
	if sum.Cmp(p.TotalAmount) != 0 {
		return fmt.Errorf("client: milestone amounts sum to %s, want total %s", sum, p.TotalAmount)
	}
	if p.Duration == 0 {
		return fmt.Errorf("client: duration must be positive")
	}
	return nil
}

// CreateEscrow creates a new escrow and returns its ledger-allocated ID. The
// ID comes from the simulated return value, or from the committed result when
// simulation produced none.
func (c *Client) CreateEscrow(ctx context.Context, p CreateEscrowParams) (uint32, *lifecycle.Outcome, error) {
	if err := p.validate(); err != nil {
		return 0, nil, err
	}
	depositor, err := addressArg(p.Depositor)
	if err != nil {
		return 0, nil, err
	}
	beneficiary, err := optionalAddressArg(p.Beneficiary)
	if err != nil {
		return 0, nil, err
	}
	arbiters := make([]codec.Value, 0, len(p.Arbiters))
	for _, arbiter := range p.Arbiters {
		encoded, err := addressArg(arbiter)
		if err != nil {
			return 0, nil, err
		}
		arbiters = append(arbiters, encoded)
	}
	// Milestones travel as (amount, description) tuples.
	milestones := make([]codec.Value, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		amount, err := amountArg(m.Amount)
		if err != nil {
			return 0, nil, err
		}
		milestones = append(milestones, codec.NewVec(amount, codec.NewString(m.Description)))
	}
	token, err := optionalAddressArg(p.Token)
	if err != nil {
		return 0, nil, err
	}
	total, err := amountArg(p.TotalAmount)
	if err != nil {
		return 0, nil, err
	}
	outcome, err := c.write(ctx, "create_escrow", p.Depositor,
		depositor,
		beneficiary,
		codec.NewVec(arbiters...),
		codec.NewU32(p.RequiredConfirmations),
		codec.NewVec(milestones...),
		token,
		total,
		codec.NewU32(p.Duration),
		codec.NewString(p.ProjectTitle),
		codec.NewString(p.ProjectDescription),
	)
	if err != nil {
		return 0, nil, err
	}
	id, err := outcome.ReturnU32()
	if err != nil {
		return 0, outcome, fmt.Errorf("client: create_escrow returned no id: %w", err)
	}
	return id, outcome, nil
}

// StartWork transitions a pending escrow into progress. Only the assigned
// beneficiary may call it.
func (c *Client) StartWork(ctx context.Context, escrowID uint32, beneficiary string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(beneficiary)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "start_work", beneficiary, codec.NewU32(escrowID), addr)
}

// SubmitMilestone marks a milestone as delivered.
func (c *Client) SubmitMilestone(ctx context.Context, escrowID, index uint32, description, beneficiary string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(beneficiary)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "submit_milestone", beneficiary,
		codec.NewU32(escrowID), codec.NewU32(index), codec.NewString(description), addr)
}

// ResubmitMilestone re-delivers a previously rejected milestone.
func (c *Client) ResubmitMilestone(ctx context.Context, escrowID, index uint32, description, beneficiary string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(beneficiary)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "resubmit_milestone", beneficiary,
		codec.NewU32(escrowID), codec.NewU32(index), codec.NewString(description), addr)
}

// ApproveMilestone releases the milestone amount to the beneficiary.
func (c *Client) ApproveMilestone(ctx context.Context, escrowID, index uint32, depositor string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(depositor)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "approve_milestone", depositor,
		codec.NewU32(escrowID), codec.NewU32(index), addr)
}

// RejectMilestone sends a submitted milestone back with a reason.
func (c *Client) RejectMilestone(ctx context.Context, escrowID, index uint32, reason, depositor string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(depositor)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "reject_milestone", depositor,
		codec.NewU32(escrowID), codec.NewU32(index), codec.NewString(reason), addr)
}

// DisputeMilestone escalates a submitted or approved milestone. Either party
// may dispute.
func (c *Client) DisputeMilestone(ctx context.Context, escrowID, index uint32, reason, disputer string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(disputer)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "dispute_milestone", disputer,
		codec.NewU32(escrowID), codec.NewU32(index), codec.NewString(reason), addr)
}

// ResolveDispute settles a disputed milestone, paying the resolution amount
// to the beneficiary and the remainder back to the depositor. Only an
// authorized arbiter may resolve.
func (c *Client) ResolveDispute(ctx context.Context, escrowID, index uint32, resolutionAmount *big.Int, resolver string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(resolver)
	if err != nil {
		return nil, err
	}
	amount, err := amountArg(resolutionAmount)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "resolve_dispute", resolver,
		codec.NewU32(escrowID), codec.NewU32(index), amount, addr)
}

// RefundEscrow returns the unreleased balance to the depositor.
func (c *Client) RefundEscrow(ctx context.Context, escrowID uint32, depositor string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(depositor)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "refund_escrow", depositor, codec.NewU32(escrowID), addr)
}

// EmergencyRefundAfterDeadline recovers funds once the deadline and grace
// period have both passed.
func (c *Client) EmergencyRefundAfterDeadline(ctx context.Context, escrowID uint32, depositor string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(depositor)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "emergency_refund_after_deadline", depositor, codec.NewU32(escrowID), addr)
}

// ExtendDeadline pushes the escrow deadline out by extraSeconds.
func (c *Client) ExtendDeadline(ctx context.Context, escrowID, extraSeconds uint32, depositor string) (*lifecycle.Outcome, error) {
	addr, err := addressArg(depositor)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "extend_deadline", depositor,
		codec.NewU32(escrowID), codec.NewU32(extraSeconds), addr)
}

// SubmitRating records the depositor's review of a completed escrow.
func (c *Client) SubmitRating(ctx context.Context, escrowID, rating uint32, review, clientAddr string) (*lifecycle.Outcome, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("client: rating %d outside 1-5", rating)
	}
	addr, err := addressArg(clientAddr)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "submit_rating", clientAddr,
		codec.NewU32(escrowID), codec.NewU32(rating), codec.NewString(review), addr)
}
