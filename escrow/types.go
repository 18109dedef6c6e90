package escrow

import (
	"fmt"
	"math/big"
	"strings"
)

// EscrowStatus mirrors the lifecycle states kept by the contract. The wire
// form is the variant symbol; some serializer paths deliver the integer code
// instead, and both decode to the same value.
type EscrowStatus uint8

const (
	StatusPending EscrowStatus = iota
	StatusInProgress
	StatusReleased
	StatusRefunded
	StatusDisputed
	StatusExpired
)

var escrowStatusNames = map[EscrowStatus]string{
	StatusPending:    "Pending",
	StatusInProgress: "InProgress",
	StatusReleased:   "Released",
	StatusRefunded:   "Refunded",
	StatusDisputed:   "Disputed",
	StatusExpired:    "Expired",
}

// Valid reports whether the status value is within the supported range.
func (s EscrowStatus) Valid() bool {
	_, ok := escrowStatusNames[s]
	return ok
}

func (s EscrowStatus) String() string {
	if name, ok := escrowStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EscrowStatus(%d)", uint8(s))
}

// EscrowStatusFromName resolves a variant symbol back to its status.
func EscrowStatusFromName(name string) (EscrowStatus, error) {
	for status, candidate := range escrowStatusNames {
		if candidate == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("escrow: unknown escrow status %q", name)
}

// Escrow is the client-side view of one ledger-resident escrow record. It is
// never mutated locally; every write goes back through the contract and the
// record is re-read afterwards.
type Escrow struct {
	ID                    uint32
	Depositor             string
	Beneficiary           string // empty marks an open, unassigned job
	Arbiters              []string
	RequiredConfirmations uint32
	Token                 string // empty means the native asset
	TotalAmount           *big.Int
	PaidAmount            *big.Int
	PlatformFee           *big.Int
	Deadline              uint32
	Status                EscrowStatus
	WorkStarted           bool
	CreatedAt             uint32
	MilestoneCount        uint32
	IsOpenJob             bool
	ProjectTitle          string
	ProjectDescription    string
}

// Clone returns a deep copy so callers can mutate their view without
// affecting shared instances.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Arbiters != nil {
		clone.Arbiters = append([]string(nil), e.Arbiters...)
	}
	clone.TotalAmount = cloneAmount(e.TotalAmount)
	clone.PaidAmount = cloneAmount(e.PaidAmount)
	clone.PlatformFee = cloneAmount(e.PlatformFee)
	return &clone
}

// Remaining reports the unpaid balance.
func (e *Escrow) Remaining() *big.Int {
	total := e.TotalAmount
	if total == nil {
		total = big.NewInt(0)
	}
	paid := e.PaidAmount
	if paid == nil {
		paid = big.NewInt(0)
	}
	return new(big.Int).Sub(total, paid)
}

// Sanitize validates and normalises an escrow record, returning a cloned
// instance with non-nil amounts. The original value is not mutated.
func Sanitize(e *Escrow) (*Escrow, error) {
	if e == nil {
		return nil, fmt.Errorf("escrow: nil escrow")
	}
	clone := e.Clone()
	if clone.Depositor == "" {
		return nil, fmt.Errorf("escrow: depositor required")
	}
	if clone.TotalAmount == nil {
		clone.TotalAmount = big.NewInt(0)
	}
	if clone.PaidAmount == nil {
		clone.PaidAmount = big.NewInt(0)
	}
	if clone.PlatformFee == nil {
		clone.PlatformFee = big.NewInt(0)
	}
	if clone.TotalAmount.Sign() < 0 || clone.PaidAmount.Sign() < 0 {
		return nil, fmt.Errorf("escrow: amounts must be non-negative")
	}
	if clone.PaidAmount.Cmp(clone.TotalAmount) > 0 {
		return nil, fmt.Errorf("escrow: paid amount %s exceeds total %s", clone.PaidAmount, clone.TotalAmount)
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("escrow: invalid status: %d", clone.Status)
	}
	clone.ProjectTitle = strings.TrimSpace(clone.ProjectTitle)
	return clone, nil
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
