package escrow

import (
	"fmt"
	"math/big"
)

// MilestoneStatus tracks one deliverable within an escrow.
type MilestoneStatus uint8

const (
	MilestoneNotStarted MilestoneStatus = iota
	MilestoneSubmitted
	MilestoneApproved
	MilestoneDisputed
	MilestoneResolved
	MilestoneRejected
)

var milestoneStatusNames = map[MilestoneStatus]string{
	MilestoneNotStarted: "NotStarted",
	MilestoneSubmitted:  "Submitted",
	MilestoneApproved:   "Approved",
	MilestoneDisputed:   "Disputed",
	MilestoneResolved:   "Resolved",
	MilestoneRejected:   "Rejected",
}

// Valid reports whether the status value is within the supported range.
func (s MilestoneStatus) Valid() bool {
	_, ok := milestoneStatusNames[s]
	return ok
}

func (s MilestoneStatus) String() string {
	if name, ok := milestoneStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("MilestoneStatus(%d)", uint8(s))
}

// MilestoneStatusFromName resolves a variant symbol back to its status.
func MilestoneStatusFromName(name string) (MilestoneStatus, error) {
	for status, candidate := range milestoneStatusNames {
		if candidate == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("escrow: unknown milestone status %q", name)
}

// Milestone is one positional deliverable of an escrow. The index within the
// escrow's milestone sequence is stable; milestones are never reordered.
type Milestone struct {
	Description      string
	Amount           *big.Int
	Status           MilestoneStatus
	SubmittedAt      uint32
	ApprovedAt       uint32
	DisputedAt       uint32
	DisputedBy       string
	DisputeReason    string
	RejectionReason  string
	Resolver         string
	ResolutionAmount *big.Int
}

// Clone returns a deep copy of the milestone.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	clone := *m
	clone.Amount = cloneAmount(m.Amount)
	clone.ResolutionAmount = cloneAmount(m.ResolutionAmount)
	return &clone
}

// Application is one freelancer's bid on an open job. The index within the
// escrow's application sequence is append-only.
type Application struct {
	Freelancer       string
	CoverLetter      string
	ProposedTimeline uint32 // days; zero means unspecified
	AppliedAt        uint32
}

// Rating is the depositor's review of a completed escrow.
type Rating struct {
	EscrowID   uint32
	Freelancer string
	Client     string
	Rating     uint32 // 1-5 stars
	Review     string
	RatedAt    uint32
}

// AverageRating is the running (total, count) pair kept per freelancer.
type AverageRating struct {
	Total uint32
	Count uint32
}

// Stars returns the mean rating, or 0 when no ratings exist.
func (a AverageRating) Stars() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Total) / float64(a.Count)
}

// Badge buckets a freelancer by completed project count.
type Badge uint8

const (
	BadgeBeginner     Badge = iota // 0-4 completed projects
	BadgeIntermediate              // 5-14
	BadgeAdvanced                  // 15-49
	BadgeExpert                    // 50+
)

var badgeNames = map[Badge]string{
	BadgeBeginner:     "Beginner",
	BadgeIntermediate: "Intermediate",
	BadgeAdvanced:     "Advanced",
	BadgeExpert:       "Expert",
}

func (b Badge) String() string {
	if name, ok := badgeNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Badge(%d)", uint8(b))
}

// BadgeFromName resolves a variant symbol back to its badge.
func BadgeFromName(name string) (Badge, error) {
	for badge, candidate := range badgeNames {
		if candidate == name {
			return badge, nil
		}
	}
	return 0, fmt.Errorf("escrow: unknown badge %q", name)
}

// BadgeForCompleted derives the badge from a completed-escrow count, matching
// the contract's thresholds.
func BadgeForCompleted(count uint32) Badge {
	switch {
	case count >= 50:
		return BadgeExpert
	case count >= 15:
		return BadgeAdvanced
	case count >= 5:
		return BadgeIntermediate
	default:
		return BadgeBeginner
	}
}
