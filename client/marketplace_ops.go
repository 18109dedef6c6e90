package client

import (
	"context"

	"decentpay/codec"
	"decentpay/lifecycle"
)

// ApplyToJob submits a freelancer's bid on an open job. The entry point
// takes the applicant address last, after the cover letter and timeline.
func (c *Client) ApplyToJob(ctx context.Context, escrowID uint32, freelancer, coverLetter string, proposedTimelineDays uint32) (*lifecycle.Outcome, error) {
	addr, err := addressArg(freelancer)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "apply_to_job", freelancer,
		codec.NewU32(escrowID), codec.NewString(coverLetter), codec.NewU32(proposedTimelineDays), addr)
}

// AcceptFreelancer assigns an applicant as the job's beneficiary and closes
// the job to further applications.
func (c *Client) AcceptFreelancer(ctx context.Context, escrowID uint32, freelancer, depositor string) (*lifecycle.Outcome, error) {
	freelancerAddr, err := addressArg(freelancer)
	if err != nil {
		return nil, err
	}
	depositorAddr, err := addressArg(depositor)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "accept_freelancer", depositor,
		codec.NewU32(escrowID), freelancerAddr, depositorAddr)
}
