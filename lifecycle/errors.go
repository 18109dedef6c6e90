package lifecycle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"decentpay/escrow"
	"decentpay/rpc"
)

// ErrSigningRejected is returned when the external signer explicitly declined
// to sign. It is user-actionable and distinct from every other failure.
var ErrSigningRejected = errors.New("lifecycle: signing rejected")

// ErrConfirmationTimedOut is returned when polling exhausted its attempts
// without the transaction reaching a terminal status. Distinct from
// ConfirmationFailedError: the ledger may still confirm the transaction
// later.
var ErrConfirmationTimedOut = errors.New("lifecycle: confirmation timed out")

var contractErrorPattern = regexp.MustCompile(`contract error (?:#|code )?(\d{4})`)

// SimulationError reports that the node rejected the call during trial
// execution, before any state change. It is fatal for the attempt and never
// retried automatically; the node's message is preserved verbatim for
// diagnostics.
type SimulationError struct {
	Function string
	Message  string
}

func (e *SimulationError) Error() string {
	if name, ok := e.ContractErrorName(); ok {
		return fmt.Sprintf("lifecycle: simulate %s: %s (%s)", e.Function, e.Message, name)
	}
	return fmt.Sprintf("lifecycle: simulate %s: %s", e.Function, e.Message)
}

// ContractErrorCode extracts the numeric contract error code, if the node
// message carries one.
func (e *SimulationError) ContractErrorCode() (uint32, bool) {
	match := contractErrorPattern.FindStringSubmatch(e.Message)
	if match == nil {
		return 0, false
	}
	code, err := strconv.ParseUint(match[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(code), true
}

// ContractErrorName extracts the symbolic contract error, if the node message
// carries a known error code.
func (e *SimulationError) ContractErrorName() (string, bool) {
	code, ok := e.ContractErrorCode()
	if !ok {
		return "", false
	}
	return escrow.ContractErrorName(code)
}

// SubmissionError reports a failed broadcast of the signed envelope.
type SubmissionError struct {
	Status  rpc.SubmitStatus
	Message string
}

func (e *SubmissionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lifecycle: submit: status %s", e.Status)
	}
	return fmt.Sprintf("lifecycle: submit: status %s: %s", e.Status, e.Message)
}

// ConfirmationFailedError reports that the ledger accepted the transaction
// and then explicitly rejected it.
type ConfirmationFailedError struct {
	Hash string
}

func (e *ConfirmationFailedError) Error() string {
	return fmt.Sprintf("lifecycle: transaction %s failed on ledger", e.Hash)
}
