package rpc

import (
	"encoding/json"

	"decentpay/codec"
)

// SubmitStatus is the immediate disposition returned by transaction
// submission.
type SubmitStatus string

const (
	SubmitPending       SubmitStatus = "PENDING"
	SubmitError         SubmitStatus = "ERROR"
	SubmitDuplicate     SubmitStatus = "DUPLICATE"
	SubmitTryAgainLater SubmitStatus = "TRY_AGAIN_LATER"
)

// TxStatus is the status of a previously submitted transaction.
type TxStatus string

const (
	TxSuccess  TxStatus = "SUCCESS"
	TxFailed   TxStatus = "FAILED"
	TxNotFound TxStatus = "NOT_FOUND"
	TxPending  TxStatus = "PENDING"
)

// AuthObligation is one per-operation signature requirement surfaced by
// simulation. Each obligation is scoped to a single signing identity and one
// sub-invocation; the sub-invocation body stays opaque to this layer and is
// handed to the signer verbatim.
type AuthObligation struct {
	Identity   string          `json:"identity"`
	Invocation json.RawMessage `json:"invocation"`
	Signature  json.RawMessage `json:"signature,omitempty"`
}

// Signed reports whether the obligation already carries a signature.
func (o AuthObligation) Signed() bool {
	return len(o.Signature) > 0
}

// Envelope is one contract invocation in transit through the lifecycle.
// Build one with the contract, function, encoded args and the paying source
// identity; simulate and prepare fill in the rest.
type Envelope struct {
	Contract  string           `json:"contract"`
	Function  string           `json:"function"`
	Args      []codec.Value    `json:"args"`
	Source    string           `json:"source"`
	Sequence  uint64           `json:"sequence"`
	Fee       uint64           `json:"fee,omitempty"`
	Resources json.RawMessage  `json:"resources,omitempty"`
	Auth      []AuthObligation `json:"auth,omitempty"`
	Signature string           `json:"signature,omitempty"`
}

// Clone returns a deep copy of the envelope so lifecycle steps never mutate a
// caller-held instance.
func (e *Envelope) Clone() *Envelope {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Args = append([]codec.Value(nil), e.Args...)
	if e.Resources != nil {
		clone.Resources = append(json.RawMessage(nil), e.Resources...)
	}
	if e.Auth != nil {
		clone.Auth = make([]AuthObligation, len(e.Auth))
		copy(clone.Auth, e.Auth)
	}
	return &clone
}

// SimulateResult is the outcome of a read-only trial execution.
type SimulateResult struct {
	ReturnValue json.RawMessage  `json:"returnValue,omitempty"`
	Auth        []AuthObligation `json:"auth,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// SubmitResult mirrors the node response for a submission.
type SubmitResult struct {
	Status SubmitStatus `json:"status"`
	Hash   string       `json:"hash,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// StatusResult mirrors the node response for a status poll.
type StatusResult struct {
	Status        TxStatus        `json:"status"`
	ResultPayload json.RawMessage `json:"resultPayload,omitempty"`
}

// LedgerEntry is one raw storage record fetched by key.
type LedgerEntry struct {
	Key                json.RawMessage `json:"key"`
	Value              json.RawMessage `json:"value"`
	LastModifiedLedger uint32          `json:"lastModifiedLedger,omitempty"`
}
