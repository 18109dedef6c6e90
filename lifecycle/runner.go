package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"decentpay/codec"
	"decentpay/rpc"
)

const (
	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = 30
)

// Invocation describes one write call against a contract entry point. The
// source identity is read once per run; callers must not change it while a
// run is in flight.
type Invocation struct {
	Contract string
	Function string
	Args     []codec.Value
	Source   string
}

// Outcome is the terminal result of a successful run.
type Outcome struct {
	Hash string
	// Return is the decoded return value, nil for void results.
	Return *codec.Value
	// Duplicate marks a submission the ledger had already seen. The hash
	// still identifies the original attempt.
	Duplicate bool
}

// ReturnU32 decodes the outcome's return value as a 32-bit counter, the shape
// creation calls use for newly allocated IDs.
func (o *Outcome) ReturnU32() (uint32, error) {
	if o == nil || o.Return == nil {
		return 0, fmt.Errorf("lifecycle: outcome carries no return value")
	}
	if o.Return.Kind != codec.KindU32 {
		return 0, fmt.Errorf("lifecycle: return value is %s, not u32", o.Return.Kind)
	}
	return o.Return.U32, nil
}

// Runner drives the full write path: build, simulate, sign authorization
// obligations when simulation demands them, prepare, sign, submit, then poll
// to a terminal status. One Runner serves every write operation; call sites
// differ only in entry-point name and encoded arguments.
type Runner struct {
	ledger          rpc.Ledger
	signer          Signer
	log             *slog.Logger
	pollInterval    time.Duration
	maxPollAttempts int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithPollInterval overrides the pause between confirmation polls.
func WithPollInterval(interval time.Duration) RunnerOption {
	return func(r *Runner) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// WithMaxPollAttempts overrides the confirmation poll budget.
func WithMaxPollAttempts(attempts int) RunnerOption {
	return func(r *Runner) {
		if attempts > 0 {
			r.maxPollAttempts = attempts
		}
	}
}

// NewRunner wires a runner to a ledger and an external signer.
func NewRunner(ledger rpc.Ledger, signer Signer, opts ...RunnerOption) (*Runner, error) {
	if ledger == nil {
		return nil, fmt.Errorf("lifecycle: ledger required")
	}
	if signer == nil {
		return nil, fmt.Errorf("lifecycle: signer required")
	}
	r := &Runner{
		ledger:          ledger,
		signer:          signer,
		log:             slog.Default(),
		pollInterval:    defaultPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Run executes one invocation to a terminal outcome. Write operations are
// never retried automatically; only the read-only confirmation poll repeats,
// under its bounded budget.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Outcome, error) {
	if inv.Contract == "" || inv.Function == "" {
		return nil, fmt.Errorf("lifecycle: contract and function required")
	}
	if inv.Source == "" {
		return nil, fmt.Errorf("lifecycle: source identity required")
	}
	log := r.log.With("run", uuid.NewString(), "function", inv.Function)

	// Build.
	sequence, err := r.ledger.AccountSequence(ctx, inv.Source)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: fetch sequence: %w", err)
	}
	env := &rpc.Envelope{
		Contract: inv.Contract,
		Function: inv.Function,
		Args:     inv.Args,
		Source:   inv.Source,
		Sequence: sequence + 1,
	}

	// Simulate.
	sim, err := r.ledger.Simulate(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: simulate: %w", err)
	}
	if sim.Error != "" {
		return nil, &SimulationError{Function: inv.Function, Message: sim.Error}
	}
	returnRaw := sim.ReturnValue

	// Authorize. The sequencing identity may have advanced between the first
	// simulation and the signed resubmission, so its state is refetched, not
	// reused.
	if len(sim.Auth) > 0 {
		log.Info("signing authorization obligations", "count", len(sim.Auth))
		signed, err := r.signer.SignObligations(ctx, sim.Auth, inv.Source)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: sign obligations: %w", err)
		}
		if len(signed) != len(sim.Auth) {
			return nil, fmt.Errorf("lifecycle: signer returned %d obligations, want %d", len(signed), len(sim.Auth))
		}
		env = env.Clone()
		env.Auth = signed
		fresh, err := r.ledger.AccountSequence(ctx, inv.Source)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: refetch sequence: %w", err)
		}
		env.Sequence = fresh + 1
		resim, err := r.ledger.Simulate(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: re-simulate: %w", err)
		}
		if resim.Error != "" {
			return nil, &SimulationError{Function: inv.Function, Message: resim.Error}
		}
		if len(resim.ReturnValue) > 0 {
			returnRaw = resim.ReturnValue
		}
	}

	// Prepare.
	prepared, err := r.ledger.Prepare(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: prepare: %w", err)
	}

	// Sign.
	signedEnv, err := r.signer.SignEnvelope(ctx, prepared, inv.Source)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: sign envelope: %w", err)
	}

	// Submit.
	sub, err := r.ledger.Submit(ctx, signedEnv)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: submit: %w", err)
	}
	switch sub.Status {
	case rpc.SubmitPending:
		// fall through to the poll loop
	case rpc.SubmitDuplicate:
		// The hash already identifies the earlier attempt. Resubmitting
		// would risk a double spend, so this is success, not an error.
		log.Info("submission was a duplicate", "hash", sub.Hash)
		ret, err := decodeReturn(returnRaw)
		if err != nil {
			return nil, err
		}
		return &Outcome{Hash: sub.Hash, Return: ret, Duplicate: true}, nil
	case rpc.SubmitError, rpc.SubmitTryAgainLater:
		return nil, &SubmissionError{Status: sub.Status, Message: sub.Error}
	default:
		return nil, &SubmissionError{Status: sub.Status, Message: "unknown submission status"}
	}

	// Poll.
	status, err := r.pollConfirmation(ctx, log, sub.Hash)
	if err != nil {
		return nil, err
	}
	// Return-value recovery: creation calls depend on the committed result
	// when simulation produced nothing. Both paths decode identically.
	if len(returnRaw) == 0 && len(status.ResultPayload) > 0 {
		returnRaw = status.ResultPayload
	}
	ret, err := decodeReturn(returnRaw)
	if err != nil {
		return nil, err
	}
	log.Info("transaction confirmed", "hash", sub.Hash)
	return &Outcome{Hash: sub.Hash, Return: ret}, nil
}

// pollConfirmation checks the transaction status at a fixed interval until a
// terminal state or the attempt budget runs out. The wait is cancellable;
// the timer never outlives the call.
func (r *Runner) pollConfirmation(ctx context.Context, log *slog.Logger, hash string) (*rpc.StatusResult, error) {
	timer := time.NewTimer(r.pollInterval)
	defer timer.Stop()
	for attempt := 1; attempt <= r.maxPollAttempts; attempt++ {
		status, err := r.ledger.GetStatus(ctx, hash)
		if err != nil {
			// Status polling is read-only; a transient transport failure
			// consumes an attempt instead of abandoning the transaction.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("status poll failed", "hash", hash, "attempt", attempt, "error", err)
			status = &rpc.StatusResult{Status: rpc.TxPending}
		}
		switch status.Status {
		case rpc.TxSuccess:
			return status, nil
		case rpc.TxFailed:
			return nil, &ConfirmationFailedError{Hash: hash}
		case rpc.TxNotFound, rpc.TxPending:
			// keep polling
		default:
			return nil, fmt.Errorf("lifecycle: unknown transaction status %q", status.Status)
		}
		if attempt == r.maxPollAttempts {
			break
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(r.pollInterval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	log.Warn("confirmation polling exhausted", "hash", hash, "attempts", r.maxPollAttempts)
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrConfirmationTimedOut, hash, r.maxPollAttempts)
}

func decodeReturn(raw json.RawMessage) (*codec.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v, err := codec.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: decode return value: %w", err)
	}
	if v.Kind == codec.KindVoid {
		return nil, nil
	}
	return &v, nil
}
