package client

import (
	"context"
	"errors"
	"fmt"

	"decentpay/codec"
	"decentpay/escrow"
	"decentpay/lifecycle"
)

// Reputation bundles every per-freelancer aggregate into one read.
type Reputation struct {
	// Score is the contract's stored reputation counter for the user.
	Score     uint32
	Average   escrow.AverageRating
	Completed uint32
	Badge     escrow.Badge
}

// GetEscrow fetches one escrow record. A missing entity is (nil, nil), never
// an error; decode failures and transport failures are errors.
func (c *Client) GetEscrow(ctx context.Context, id uint32) (*escrow.Escrow, error) {
	v, err := c.view(ctx, "get_escrow", codec.NewU32(id))
	if err != nil {
		if isEntityMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	e, err := escrow.EscrowFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("client: escrow %d: %w", id, err)
	}
	if e != nil {
		e.ID = id
	}
	return e, nil
}

// GetMilestone fetches one milestone by position within an escrow.
func (c *Client) GetMilestone(ctx context.Context, escrowID, index uint32) (*escrow.Milestone, error) {
	v, err := c.view(ctx, "get_milestone", codec.NewU32(escrowID), codec.NewU32(index))
	if err != nil {
		if isEntityMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	m, err := escrow.MilestoneFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("client: escrow %d milestone %d: %w", escrowID, index, err)
	}
	return m, nil
}

// GetMilestones fetches every milestone of an escrow in positional order.
func (c *Client) GetMilestones(ctx context.Context, escrowID uint32) ([]*escrow.Milestone, error) {
	v, err := c.view(ctx, "get_milestones", codec.NewU32(escrowID))
	if err != nil {
		if isEntityMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	if v.Kind != codec.KindVec {
		return nil, fmt.Errorf("client: escrow %d milestones: value is %s, not a vec", escrowID, v.Kind)
	}
	milestones := make([]*escrow.Milestone, 0, len(v.Vec))
	for i, item := range v.Vec {
		m, err := escrow.MilestoneFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("client: escrow %d milestone %d: %w", escrowID, i, err)
		}
		milestones = append(milestones, m)
	}
	return milestones, nil
}

// GetApplications fetches every application on an open job, oldest first.
func (c *Client) GetApplications(ctx context.Context, escrowID uint32) ([]*escrow.Application, error) {
	v, err := c.view(ctx, "get_applications", codec.NewU32(escrowID))
	if err != nil {
		if isEntityMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	if v.Kind != codec.KindVec {
		return nil, fmt.Errorf("client: escrow %d applications: value is %s, not a vec", escrowID, v.Kind)
	}
	apps := make([]*escrow.Application, 0, len(v.Vec))
	for i, item := range v.Vec {
		a, err := escrow.ApplicationFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("client: escrow %d application %d: %w", escrowID, i, err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// GetApplication finds one freelancer's application on a job, (nil, nil) when
// they never applied.
func (c *Client) GetApplication(ctx context.Context, escrowID uint32, freelancer string) (*escrow.Application, error) {
	apps, err := c.GetApplications(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	for _, app := range apps {
		if app.Freelancer == freelancer {
			return app, nil
		}
	}
	return nil, nil
}

// HasApplied reports whether the freelancer already bid on the job.
func (c *Client) HasApplied(ctx context.Context, escrowID uint32, freelancer string) (bool, error) {
	addr, err := addressArg(freelancer)
	if err != nil {
		return false, err
	}
	v, err := c.view(ctx, "has_applied", codec.NewU32(escrowID), addr)
	if err != nil {
		if isEntityMissing(err) {
			return false, nil
		}
		return false, err
	}
	return boolResult(v, "has_applied")
}

// GetRating fetches the depositor's rating of an escrow, (nil, nil) when none
// was submitted.
func (c *Client) GetRating(ctx context.Context, escrowID uint32) (*escrow.Rating, error) {
	v, err := c.view(ctx, "get_rating", codec.NewU32(escrowID))
	if err != nil {
		if isEntityMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	r, err := escrow.RatingFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("client: escrow %d rating: %w", escrowID, err)
	}
	return r, nil
}

// GetAverageRating fetches the (total, count) aggregate for a freelancer. The
// contract returns the pair as a two-element tuple.
func (c *Client) GetAverageRating(ctx context.Context, freelancer string) (escrow.AverageRating, error) {
	addr, err := addressArg(freelancer)
	if err != nil {
		return escrow.AverageRating{}, err
	}
	v, err := c.view(ctx, "get_average_rating", addr)
	if err != nil {
		return escrow.AverageRating{}, err
	}
	if v.Kind == codec.KindVoid {
		return escrow.AverageRating{}, nil
	}
	if v.Kind != codec.KindVec || len(v.Vec) != 2 {
		return escrow.AverageRating{}, fmt.Errorf("client: get_average_rating: want a (total, count) pair, got %s", v.Kind)
	}
	total, err := u32Result(v.Vec[0], "average rating total")
	if err != nil {
		return escrow.AverageRating{}, err
	}
	count, err := u32Result(v.Vec[1], "average rating count")
	if err != nil {
		return escrow.AverageRating{}, err
	}
	return escrow.AverageRating{Total: total, Count: count}, nil
}

// GetCompletedEscrows counts a freelancer's fully released escrows.
func (c *Client) GetCompletedEscrows(ctx context.Context, freelancer string) (uint32, error) {
	addr, err := addressArg(freelancer)
	if err != nil {
		return 0, err
	}
	v, err := c.view(ctx, "get_completed_escrows", addr)
	if err != nil {
		return 0, err
	}
	if v.Kind == codec.KindVoid {
		return 0, nil
	}
	return u32Result(v, "get_completed_escrows")
}

// GetBadge fetches the freelancer's experience badge.
func (c *Client) GetBadge(ctx context.Context, freelancer string) (escrow.Badge, error) {
	addr, err := addressArg(freelancer)
	if err != nil {
		return 0, err
	}
	v, err := c.view(ctx, "get_badge", addr)
	if err != nil {
		return 0, err
	}
	badge, err := escrow.BadgeFromValue(v)
	if err != nil {
		return 0, fmt.Errorf("client: get_badge: %w", err)
	}
	return badge, nil
}

// GetReputationScore fetches the contract's stored reputation counter for a
// user.
func (c *Client) GetReputationScore(ctx context.Context, user string) (uint32, error) {
	addr, err := addressArg(user)
	if err != nil {
		return 0, err
	}
	v, err := c.view(ctx, "get_reputation", addr)
	if err != nil {
		return 0, err
	}
	if v.Kind == codec.KindVoid {
		return 0, nil
	}
	return u32Result(v, "get_reputation")
}

// GetReputation gathers the stored score, the rating aggregate, completed
// count and badge for one freelancer.
func (c *Client) GetReputation(ctx context.Context, freelancer string) (*Reputation, error) {
	score, err := c.GetReputationScore(ctx, freelancer)
	if err != nil {
		return nil, err
	}
	avg, err := c.GetAverageRating(ctx, freelancer)
	if err != nil {
		return nil, err
	}
	completed, err := c.GetCompletedEscrows(ctx, freelancer)
	if err != nil {
		return nil, err
	}
	badge, err := c.GetBadge(ctx, freelancer)
	if err != nil {
		return nil, err
	}
	return &Reputation{Score: score, Average: avg, Completed: completed, Badge: badge}, nil
}

// GetUserEscrows lists the escrow IDs a user participates in, as depositor or
// beneficiary.
func (c *Client) GetUserEscrows(ctx context.Context, user string) ([]uint32, error) {
	addr, err := addressArg(user)
	if err != nil {
		return nil, err
	}
	v, err := c.view(ctx, "get_user_escrows", addr)
	if err != nil {
		return nil, err
	}
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	if v.Kind != codec.KindVec {
		return nil, fmt.Errorf("client: get_user_escrows: value is %s, not a vec", v.Kind)
	}
	ids := make([]uint32, 0, len(v.Vec))
	for i, item := range v.Vec {
		id, err := u32Result(item, fmt.Sprintf("user escrow %d", i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetOwner fetches the contract administrator address.
func (c *Client) GetOwner(ctx context.Context) (string, error) {
	v, err := c.view(ctx, "get_owner")
	if err != nil {
		return "", err
	}
	switch v.Kind {
	case codec.KindAddress, codec.KindString:
		return v.Str, nil
	case codec.KindVoid:
		return "", nil
	default:
		return "", fmt.Errorf("client: get_owner: value is %s, not an address", v.Kind)
	}
}

// IsJobCreationPaused reports whether new escrows are currently blocked.
func (c *Client) IsJobCreationPaused(ctx context.Context) (bool, error) {
	v, err := c.view(ctx, "is_job_creation_paused")
	if err != nil {
		return false, err
	}
	return boolResult(v, "is_job_creation_paused")
}

// IsAuthorizedArbiter reports whether the address may resolve disputes.
func (c *Client) IsAuthorizedArbiter(ctx context.Context, arbiter string) (bool, error) {
	addr, err := addressArg(arbiter)
	if err != nil {
		return false, err
	}
	v, err := c.view(ctx, "is_authorized_arbiter", addr)
	if err != nil {
		return false, err
	}
	return boolResult(v, "is_authorized_arbiter")
}

// isEntityMissing classifies a simulation failure as absence: the contract
// reporting EscrowNotFound means the ID was never allocated, which readers
// and discovery treat as (nil, nil) rather than a protocol error.
func isEntityMissing(err error) bool {
	var simErr *lifecycle.SimulationError
	if !errors.As(err, &simErr) {
		return false
	}
	code, ok := simErr.ContractErrorCode()
	return ok && code == escrow.ErrCodeEscrowNotFound
}

func boolResult(v codec.Value, function string) (bool, error) {
	if v.Kind == codec.KindVoid {
		return false, nil
	}
	if v.Kind != codec.KindBool {
		return false, fmt.Errorf("client: %s: value is %s, not a bool", function, v.Kind)
	}
	return v.Bool, nil
}

func u32Result(v codec.Value, what string) (uint32, error) {
	if v.Kind != codec.KindU32 {
		return 0, fmt.Errorf("client: %s: value is %s, not a u32", what, v.Kind)
	}
	return v.U32, nil
}
