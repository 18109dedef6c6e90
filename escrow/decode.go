package escrow

import (
	"fmt"
	"math"
	"math/big"

	"decentpay/codec"
)

// EscrowFromValue reconstructs an escrow record from a decoded contract
// value. A void value, an empty map, or a map without the depositor key all
// mean the entity does not exist and yield (nil, nil); that missing required
// key is the sole authoritative existence test. Any other field that cannot
// be reconciled with its expected kind is a decode error, never a silent
// default.
func EscrowFromValue(v codec.Value) (*Escrow, error) {
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	record, err := codec.Record(v)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, nil
	}
	depositorVal, ok := record["depositor"]
	if !ok {
		return nil, nil
	}
	e := &Escrow{}
	if e.Depositor, err = addressFromValue(depositorVal); err != nil {
		return nil, fmt.Errorf("escrow: depositor: %w", err)
	}
	if e.TotalAmount, err = requiredAmount(record, "total_amount"); err != nil {
		return nil, err
	}
	if e.PaidAmount, err = requiredAmount(record, "paid_amount"); err != nil {
		return nil, err
	}
	statusVal, ok := record["status"]
	if !ok {
		return nil, fmt.Errorf("escrow: record is missing required status field")
	}
	if e.Status, err = escrowStatusFromValue(statusVal); err != nil {
		return nil, err
	}
	// Remaining fields default when absent but still fail when present in an
	// irreconcilable shape.
	if e.Beneficiary, err = optionalAddress(record, "beneficiary"); err != nil {
		return nil, err
	}
	if e.Token, err = optionalAddress(record, "token"); err != nil {
		return nil, err
	}
	if e.Arbiters, err = optionalAddressList(record, "arbiters"); err != nil {
		return nil, err
	}
	if e.RequiredConfirmations, err = optionalU32(record, "required_confirmations"); err != nil {
		return nil, err
	}
	if e.PlatformFee, err = optionalAmount(record, "platform_fee"); err != nil {
		return nil, err
	}
	if e.Deadline, err = optionalU32(record, "deadline"); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = optionalU32(record, "created_at"); err != nil {
		return nil, err
	}
	if e.MilestoneCount, err = optionalU32(record, "milestone_count"); err != nil {
		return nil, err
	}
	if e.WorkStarted, err = optionalBool(record, "work_started"); err != nil {
		return nil, err
	}
	if e.IsOpenJob, err = optionalBool(record, "is_open_job"); err != nil {
		return nil, err
	}
	if e.ProjectTitle, err = optionalString(record, "project_title"); err != nil {
		return nil, err
	}
	if e.ProjectDescription, err = optionalString(record, "project_description"); err != nil {
		return nil, err
	}
	return e, nil
}

// MilestoneFromValue reconstructs one milestone record.
func MilestoneFromValue(v codec.Value) (*Milestone, error) {
	record, err := codec.Record(v)
	if err != nil {
		return nil, err
	}
	m := &Milestone{}
	if m.Description, err = optionalString(record, "description"); err != nil {
		return nil, err
	}
	if m.Amount, err = requiredAmount(record, "amount"); err != nil {
		return nil, err
	}
	statusVal, ok := record["status"]
	if !ok {
		return nil, fmt.Errorf("escrow: milestone is missing required status field")
	}
	if m.Status, err = milestoneStatusFromValue(statusVal); err != nil {
		return nil, err
	}
	if m.SubmittedAt, err = optionalU32(record, "submitted_at"); err != nil {
		return nil, err
	}
	if m.ApprovedAt, err = optionalU32(record, "approved_at"); err != nil {
		return nil, err
	}
	if m.DisputedAt, err = optionalU32(record, "disputed_at"); err != nil {
		return nil, err
	}
	if m.DisputedBy, err = optionalAddress(record, "disputed_by"); err != nil {
		return nil, err
	}
	if m.DisputeReason, err = optionalString(record, "dispute_reason"); err != nil {
		return nil, err
	}
	if m.RejectionReason, err = optionalString(record, "rejection_reason"); err != nil {
		return nil, err
	}
	if m.Resolver, err = optionalAddress(record, "resolver"); err != nil {
		return nil, err
	}
	if m.ResolutionAmount, err = optionalAmount(record, "resolution_amount"); err != nil {
		return nil, err
	}
	return m, nil
}

// ApplicationFromValue reconstructs one job application record.
func ApplicationFromValue(v codec.Value) (*Application, error) {
	record, err := codec.Record(v)
	if err != nil {
		return nil, err
	}
	a := &Application{}
	freelancerVal, ok := record["freelancer"]
	if !ok {
		return nil, fmt.Errorf("escrow: application is missing required freelancer field")
	}
	if a.Freelancer, err = addressFromValue(freelancerVal); err != nil {
		return nil, fmt.Errorf("escrow: freelancer: %w", err)
	}
	if a.CoverLetter, err = optionalString(record, "cover_letter"); err != nil {
		return nil, err
	}
	if a.ProposedTimeline, err = optionalU32(record, "proposed_timeline"); err != nil {
		return nil, err
	}
	if a.AppliedAt, err = optionalU32(record, "applied_at"); err != nil {
		return nil, err
	}
	return a, nil
}

// RatingFromValue reconstructs one rating record.
func RatingFromValue(v codec.Value) (*Rating, error) {
	record, err := codec.Record(v)
	if err != nil {
		return nil, err
	}
	r := &Rating{}
	if r.EscrowID, err = optionalU32(record, "escrow_id"); err != nil {
		return nil, err
	}
	if r.Freelancer, err = optionalAddress(record, "freelancer"); err != nil {
		return nil, err
	}
	if r.Client, err = optionalAddress(record, "client"); err != nil {
		return nil, err
	}
	if r.Rating, err = optionalU32(record, "rating"); err != nil {
		return nil, err
	}
	if r.Review, err = optionalString(record, "review"); err != nil {
		return nil, err
	}
	if r.RatedAt, err = optionalU32(record, "rated_at"); err != nil {
		return nil, err
	}
	return r, nil
}

func escrowStatusFromValue(v codec.Value) (EscrowStatus, error) {
	if v.Kind == codec.KindU32 {
		status := EscrowStatus(v.U32)
		if !status.Valid() {
			return 0, fmt.Errorf("escrow: status code %d out of range", v.U32)
		}
		return status, nil
	}
	name, err := codec.EnumName(v)
	if err != nil {
		return 0, fmt.Errorf("escrow: status: %w", err)
	}
	return EscrowStatusFromName(name)
}

func milestoneStatusFromValue(v codec.Value) (MilestoneStatus, error) {
	if v.Kind == codec.KindU32 {
		status := MilestoneStatus(v.U32)
		if !status.Valid() {
			return 0, fmt.Errorf("escrow: milestone status code %d out of range", v.U32)
		}
		return status, nil
	}
	name, err := codec.EnumName(v)
	if err != nil {
		return 0, fmt.Errorf("escrow: milestone status: %w", err)
	}
	return MilestoneStatusFromName(name)
}

// BadgeFromValue accepts either the variant symbol or the integer code.
func BadgeFromValue(v codec.Value) (Badge, error) {
	if v.Kind == codec.KindU32 {
		badge := Badge(v.U32)
		if _, ok := badgeNames[badge]; !ok {
			return 0, fmt.Errorf("escrow: badge code %d out of range", v.U32)
		}
		return badge, nil
	}
	name, err := codec.EnumName(v)
	if err != nil {
		return 0, fmt.Errorf("escrow: badge: %w", err)
	}
	return BadgeFromName(name)
}

func addressFromValue(v codec.Value) (string, error) {
	switch v.Kind {
	case codec.KindAddress, codec.KindString, codec.KindSymbol:
		if v.Str == "" {
			return "", fmt.Errorf("empty address")
		}
		return v.Str, nil
	default:
		return "", fmt.Errorf("value is %s, not an address", v.Kind)
	}
}

func amountFromValue(v codec.Value) (*big.Int, error) {
	switch v.Kind {
	case codec.KindI128:
		return v.BigInt()
	case codec.KindU32:
		return big.NewInt(int64(v.U32)), nil
	case codec.KindString:
		amount, ok := new(big.Int).SetString(v.Str, 10)
		if !ok {
			return nil, fmt.Errorf("amount %q is not a base-10 integer", v.Str)
		}
		return amount, nil
	default:
		return nil, fmt.Errorf("value is %s, not an amount", v.Kind)
	}
}

func requiredAmount(record map[string]codec.Value, key string) (*big.Int, error) {
	v, ok := record[key]
	if !ok {
		return nil, fmt.Errorf("escrow: record is missing required %s field", key)
	}
	amount, err := amountFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("escrow: %s: %w", key, err)
	}
	return amount, nil
}

func optionalAmount(record map[string]codec.Value, key string) (*big.Int, error) {
	v, ok := record[key]
	if !ok || v.Kind == codec.KindVoid {
		return big.NewInt(0), nil
	}
	amount, err := amountFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("escrow: %s: %w", key, err)
	}
	return amount, nil
}

func optionalU32(record map[string]codec.Value, key string) (uint32, error) {
	v, ok := record[key]
	if !ok || v.Kind == codec.KindVoid {
		return 0, nil
	}
	switch v.Kind {
	case codec.KindU32:
		return v.U32, nil
	case codec.KindI128:
		// Bare numbers above the u32 range parse as i128; accept them when
		// they fit.
		if v.Hi == 0 && v.Lo <= math.MaxUint32 {
			return uint32(v.Lo), nil
		}
		return 0, fmt.Errorf("escrow: %s: %s exceeds the 32-bit range", key, codec.I128String(v.Hi, v.Lo))
	default:
		return 0, fmt.Errorf("escrow: %s: value is %s, not a u32", key, v.Kind)
	}
}

func optionalBool(record map[string]codec.Value, key string) (bool, error) {
	v, ok := record[key]
	if !ok || v.Kind == codec.KindVoid {
		return false, nil
	}
	if v.Kind != codec.KindBool {
		return false, fmt.Errorf("escrow: %s: value is %s, not a bool", key, v.Kind)
	}
	return v.Bool, nil
}

func optionalString(record map[string]codec.Value, key string) (string, error) {
	v, ok := record[key]
	if !ok || v.Kind == codec.KindVoid {
		return "", nil
	}
	switch v.Kind {
	case codec.KindString, codec.KindSymbol:
		return v.Str, nil
	default:
		return "", fmt.Errorf("escrow: %s: value is %s, not a string", key, v.Kind)
	}
}

func optionalAddress(record map[string]codec.Value, key string) (string, error) {
	v, ok := record[key]
	if !ok || v.Kind == codec.KindVoid {
		return "", nil
	}
	addr, err := addressFromValue(v)
	if err != nil {
		return "", fmt.Errorf("escrow: %s: %w", key, err)
	}
	return addr, nil
}

func optionalAddressList(record map[string]codec.Value, key string) ([]string, error) {
	v, ok := record[key]
	if !ok || v.Kind == codec.KindVoid {
		return nil, nil
	}
	if v.Kind != codec.KindVec {
		return nil, fmt.Errorf("escrow: %s: value is %s, not a vec", key, v.Kind)
	}
	addrs := make([]string, 0, len(v.Vec))
	for i, item := range v.Vec {
		addr, err := addressFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("escrow: %s[%d]: %w", key, i, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
