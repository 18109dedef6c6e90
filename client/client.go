// Package client exposes the contract-interaction layer for the DeCentPay
// escrow contract: typed read and write operations, entity discovery, and
// the transaction lifecycle behind every write.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"decentpay/codec"
	"decentpay/lifecycle"
	"decentpay/rpc"
)

// Client is the high-level SDK facade. It is stateless per call: the ledger
// is the only source of truth and records are re-read after every write.
type Client struct {
	contract     string
	ledger       rpc.Ledger
	signer       lifecycle.Signer
	runner       *lifecycle.Runner
	log          *slog.Logger
	probeRetries int
}

// Option configures the client.
type Option func(*Client)

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithProbeRetries bounds how often a transient probe failure is retried
// during discovery before the ID is treated as absent.
func WithProbeRetries(retries int) Option {
	return func(c *Client) {
		if retries > 0 {
			c.probeRetries = retries
		}
	}
}

// New wires a client to a deployed contract, a ledger endpoint and an
// external signer.
func New(contract string, ledger rpc.Ledger, signer lifecycle.Signer, opts ...Option) (*Client, error) {
	if contract == "" {
		return nil, fmt.Errorf("client: contract address required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("client: ledger required")
	}
	if signer == nil {
		return nil, fmt.Errorf("client: signer required")
	}
	c := &Client{
		contract:     contract,
		ledger:       ledger,
		signer:       signer,
		log:          slog.Default(),
		probeRetries: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	runner, err := lifecycle.NewRunner(ledger, signer, lifecycle.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	c.runner = runner
	return c, nil
}

// write runs one lifecycle against a contract entry point.
func (c *Client) write(ctx context.Context, function, source string, args ...codec.Value) (*lifecycle.Outcome, error) {
	return c.runner.Run(ctx, lifecycle.Invocation{
		Contract: c.contract,
		Function: function,
		Args:     args,
		Source:   source,
	})
}

// view simulates a read-only invocation and returns the parsed result. No
// signature is produced and nothing is submitted.
func (c *Client) view(ctx context.Context, function string, args ...codec.Value) (codec.Value, error) {
	sim, err := c.ledger.Simulate(ctx, &rpc.Envelope{
		Contract: c.contract,
		Function: function,
		Args:     args,
	})
	if err != nil {
		return codec.Value{}, fmt.Errorf("client: %s: %w", function, err)
	}
	if sim.Error != "" {
		return codec.Value{}, &lifecycle.SimulationError{Function: function, Message: sim.Error}
	}
	if len(sim.ReturnValue) == 0 {
		return codec.Void(), nil
	}
	result, err := codec.Parse(sim.ReturnValue)
	if err != nil {
		return codec.Value{}, fmt.Errorf("client: %s: %w", function, err)
	}
	return result, nil
}

// addressArg validates and encodes an address argument.
func addressArg(addr string) (codec.Value, error) {
	return codec.Encode(addr, codec.KindAddress)
}

// optionalAddressArg encodes an absent address as void.
func optionalAddressArg(addr string) (codec.Value, error) {
	if addr == "" {
		return codec.Void(), nil
	}
	return addressArg(addr)
}

// amountArg encodes a 128-bit amount.
func amountArg(amount any) (codec.Value, error) {
	return codec.Encode(amount, codec.KindI128)
}
