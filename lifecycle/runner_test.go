package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"decentpay/codec"
	"decentpay/rpc"
)

// fakeLedger scripts the RPC surface one step at a time.
type fakeLedger struct {
	sequence      uint64
	sequenceCalls int
	simulateCalls int
	simulate      func(call int, env *rpc.Envelope) (*rpc.SimulateResult, error)
	prepareCalls  int
	submitCalls   int
	submit        func(env *rpc.Envelope) (*rpc.SubmitResult, error)
	statusCalls   int
	status        func(call int, hash string) (*rpc.StatusResult, error)
	lastSubmitted *rpc.Envelope
}

func (f *fakeLedger) Simulate(ctx context.Context, env *rpc.Envelope) (*rpc.SimulateResult, error) {
	f.simulateCalls++
	if f.simulate == nil {
		return &rpc.SimulateResult{}, nil
	}
	return f.simulate(f.simulateCalls, env)
}

func (f *fakeLedger) Prepare(ctx context.Context, env *rpc.Envelope) (*rpc.Envelope, error) {
	f.prepareCalls++
	prepared := env.Clone()
	prepared.Fee = 100
	prepared.Resources = json.RawMessage(`{"instructions":1}`)
	return prepared, nil
}

func (f *fakeLedger) Submit(ctx context.Context, env *rpc.Envelope) (*rpc.SubmitResult, error) {
	f.submitCalls++
	f.lastSubmitted = env
	if f.submit == nil {
		return &rpc.SubmitResult{Status: rpc.SubmitPending, Hash: "hash-1"}, nil
	}
	return f.submit(env)
}

func (f *fakeLedger) GetStatus(ctx context.Context, hash string) (*rpc.StatusResult, error) {
	f.statusCalls++
	if f.status == nil {
		return &rpc.StatusResult{Status: rpc.TxSuccess}, nil
	}
	return f.status(f.statusCalls, hash)
}

func (f *fakeLedger) ReadLedgerEntry(ctx context.Context, key codec.Value) (*rpc.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeLedger) AccountSequence(ctx context.Context, account string) (uint64, error) {
	f.sequenceCalls++
	f.sequence++
	return f.sequence, nil
}

// fakeSigner signs by stamping markers; it can be told to reject.
type fakeSigner struct {
	reject          bool
	envelopeSigned  int
	obligationCalls int
}

func (f *fakeSigner) SignEnvelope(ctx context.Context, env *rpc.Envelope, identity string) (*rpc.Envelope, error) {
	if f.reject {
		return nil, fmt.Errorf("wallet: %w", ErrSigningRejected)
	}
	f.envelopeSigned++
	signed := env.Clone()
	signed.Signature = "sig-" + identity
	return signed, nil
}

func (f *fakeSigner) SignObligations(ctx context.Context, obligations []rpc.AuthObligation, identity string) ([]rpc.AuthObligation, error) {
	if f.reject {
		return nil, fmt.Errorf("wallet: %w", ErrSigningRejected)
	}
	f.obligationCalls++
	signed := make([]rpc.AuthObligation, len(obligations))
	for i, ob := range obligations {
		ob.Signature = json.RawMessage(`"signed"`)
		signed[i] = ob
	}
	return signed, nil
}

func newTestRunner(t *testing.T, ledger *fakeLedger, signer *fakeSigner) *Runner {
	t.Helper()
	r, err := NewRunner(ledger, signer, WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	return r
}

func invocation() Invocation {
	return Invocation{
		Contract: "CESCROW",
		Function: "approve_milestone",
		Args:     []codec.Value{codec.NewU32(1), codec.NewU32(0)},
		Source:   "GDEPOSITOR",
	}
}

func TestRunHappyPathWithoutObligations(t *testing.T) {
	ledger := &fakeLedger{
		simulate: func(call int, env *rpc.Envelope) (*rpc.SimulateResult, error) {
			return &rpc.SimulateResult{ReturnValue: json.RawMessage(`{"void":null}`)}, nil
		},
	}
	signer := &fakeSigner{}
	outcome, err := newTestRunner(t, ledger, signer).Run(context.Background(), invocation())
	require.NoError(t, err)
	require.Equal(t, "hash-1", outcome.Hash)
	require.Nil(t, outcome.Return)
	require.False(t, outcome.Duplicate)
	require.Equal(t, 1, ledger.simulateCalls)
	require.Equal(t, 1, signer.envelopeSigned)
	require.Equal(t, 0, signer.obligationCalls)
	require.Equal(t, "sig-GDEPOSITOR", ledger.lastSubmitted.Signature)
}

func TestRunSignsObligationsAndRefetchesSequence(t *testing.T) {
	ledger := &fakeLedger{
		simulate: func(call int, env *rpc.Envelope) (*rpc.SimulateResult, error) {
			if call == 1 {
				return &rpc.SimulateResult{
					Auth: []rpc.AuthObligation{{Identity: "GDEPOSITOR", Invocation: json.RawMessage(`{}`)}},
				}, nil
			}
			// Second simulation must see the signed obligations and a fresh
			// sequence.
			if len(env.Auth) != 1 || !env.Auth[0].Signed() {
				return nil, fmt.Errorf("obligations not attached")
			}
			return &rpc.SimulateResult{ReturnValue: json.RawMessage(`{"u32":5}`)}, nil
		},
	}
	signer := &fakeSigner{}
	outcome, err := newTestRunner(t, ledger, signer).Run(context.Background(), invocation())
	require.NoError(t, err)
	require.Equal(t, 2, ledger.simulateCalls)
	require.Equal(t, 1, signer.obligationCalls)
	// Sequence fetched once to build, once after signing.
	require.Equal(t, 2, ledger.sequenceCalls)
	id, err := outcome.ReturnU32()
	require.NoError(t, err)
	require.Equal(t, uint32(5), id)
}

func TestRunSimulationErrorIsFatalAndNotRetried(t *testing.T) {
	ledger := &fakeLedger{
		simulate: func(call int, env *rpc.Envelope) (*rpc.SimulateResult, error) {
			return &rpc.SimulateResult{Error: "HostError: contract error 1104"}, nil
		},
	}
	_, err := newTestRunner(t, ledger, &fakeSigner{}).Run(context.Background(), invocation())
	var simErr *SimulationError
	require.ErrorAs(t, err, &simErr)
	require.Contains(t, simErr.Message, "contract error 1104")
	name, ok := simErr.ContractErrorName()
	require.True(t, ok)
	require.Equal(t, "WorkNotStarted", name)
	require.Equal(t, 1, ledger.simulateCalls)
	require.Equal(t, 0, ledger.submitCalls)
}

func TestRunSigningRejectedSurfaces(t *testing.T) {
	ledger := &fakeLedger{}
	_, err := newTestRunner(t, ledger, &fakeSigner{reject: true}).Run(context.Background(), invocation())
	require.ErrorIs(t, err, ErrSigningRejected)
	require.Equal(t, 0, ledger.submitCalls)
}

func TestRunDuplicateIsSuccessWithOriginalHash(t *testing.T) {
	ledger := &fakeLedger{
		simulate: func(call int, env *rpc.Envelope) (*rpc.SimulateResult, error) {
			return &rpc.SimulateResult{ReturnValue: json.RawMessage(`{"u32":7}`)}, nil
		},
		submit: func(env *rpc.Envelope) (*rpc.SubmitResult, error) {
			return &rpc.SubmitResult{Status: rpc.SubmitDuplicate, Hash: "hash-original"}, nil
		},
	}
	outcome, err := newTestRunner(t, ledger, &fakeSigner{}).Run(context.Background(), invocation())
	require.NoError(t, err)
	require.True(t, outcome.Duplicate)
	require.Equal(t, "hash-original", outcome.Hash)
	// Not resubmitted and never polled.
	require.Equal(t, 1, ledger.submitCalls)
	require.Equal(t, 0, ledger.statusCalls)
}

func TestRunSubmitErrorIsTyped(t *testing.T) {
	ledger := &fakeLedger{
		submit: func(env *rpc.Envelope) (*rpc.SubmitResult, error) {
			return &rpc.SubmitResult{Status: rpc.SubmitError, Error: "bad envelope"}, nil
		},
	}
	_, err := newTestRunner(t, ledger, &fakeSigner{}).Run(context.Background(), invocation())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, rpc.SubmitError, subErr.Status)
}

func TestRunPollTimesOutDistinctFromFailed(t *testing.T) {
	ledger := &fakeLedger{
		status: func(call int, hash string) (*rpc.StatusResult, error) {
			return &rpc.StatusResult{Status: rpc.TxPending}, nil
		},
	}
	r, err := NewRunner(ledger, &fakeSigner{}, WithPollInterval(time.Millisecond), WithMaxPollAttempts(5))
	require.NoError(t, err)
	_, err = r.Run(context.Background(), invocation())
	require.ErrorIs(t, err, ErrConfirmationTimedOut)
	var failedErr *ConfirmationFailedError
	require.False(t, errors.As(err, &failedErr))
	require.Equal(t, 5, ledger.statusCalls)
}

func TestRunConfirmationFailed(t *testing.T) {
	ledger := &fakeLedger{
		status: func(call int, hash string) (*rpc.StatusResult, error) {
			if call < 3 {
				return &rpc.StatusResult{Status: rpc.TxNotFound}, nil
			}
			return &rpc.StatusResult{Status: rpc.TxFailed}, nil
		},
	}
	_, err := newTestRunner(t, ledger, &fakeSigner{}).Run(context.Background(), invocation())
	var failedErr *ConfirmationFailedError
	require.ErrorAs(t, err, &failedErr)
	require.Equal(t, "hash-1", failedErr.Hash)
	require.NotErrorIs(t, err, ErrConfirmationTimedOut)
}

func TestRunPollToleratesTransientStatusErrors(t *testing.T) {
	// A dropped status request consumes one attempt; the write still
	// confirms once the next poll answers.
	ledger := &fakeLedger{
		status: func(call int, hash string) (*rpc.StatusResult, error) {
			if call == 1 {
				return nil, fmt.Errorf("connection reset")
			}
			return &rpc.StatusResult{Status: rpc.TxSuccess}, nil
		},
	}
	outcome, err := newTestRunner(t, ledger, &fakeSigner{}).Run(context.Background(), invocation())
	require.NoError(t, err)
	require.Equal(t, "hash-1", outcome.Hash)
	require.Equal(t, 2, ledger.statusCalls)
}

func TestRunRecoversReturnValueFromResult(t *testing.T) {
	// Simulation yields nothing; the committed result carries the new ID.
	ledger := &fakeLedger{
		status: func(call int, hash string) (*rpc.StatusResult, error) {
			if call == 1 {
				return &rpc.StatusResult{Status: rpc.TxPending}, nil
			}
			return &rpc.StatusResult{
				Status:        rpc.TxSuccess,
				ResultPayload: json.RawMessage(`{"_arm":"u32","_value":3}`),
			}, nil
		},
	}
	outcome, err := newTestRunner(t, ledger, &fakeSigner{}).Run(context.Background(), invocation())
	require.NoError(t, err)
	id, err := outcome.ReturnU32()
	require.NoError(t, err)
	require.Equal(t, uint32(3), id)
}

func TestRunPollIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ledger := &fakeLedger{
		status: func(call int, hash string) (*rpc.StatusResult, error) {
			if call == 1 {
				cancel()
			}
			return &rpc.StatusResult{Status: rpc.TxPending}, nil
		},
	}
	r, err := NewRunner(ledger, &fakeSigner{}, WithPollInterval(time.Hour))
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx, invocation())
		done <- err
	}()
	// First wait is interrupted by cancellation despite the hour-long
	// interval.
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatalf("poll loop leaked past cancellation")
	}
}

func TestRunValidatesInvocation(t *testing.T) {
	r := newTestRunner(t, &fakeLedger{}, &fakeSigner{})
	for _, inv := range []Invocation{
		{Function: "f", Source: "G"},
		{Contract: "C", Source: "G"},
		{Contract: "C", Function: "f"},
	} {
		if _, err := r.Run(context.Background(), inv); err == nil {
			t.Fatalf("expected validation error for %+v", inv)
		}
	}
}
