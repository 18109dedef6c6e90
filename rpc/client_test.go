package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"decentpay/codec"
)

type rpcCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int64             `json:"id"`
}

func newTestServer(t *testing.T, handler func(call rpcCall) (any, *jsonRPCErrorObj)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, rpcErr := handler(call)
		resp := map[string]any{"jsonrpc": "2.0", "id": call.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestClientSimulate(t *testing.T) {
	var sawMethod string
	srv := newTestServer(t, func(call rpcCall) (any, *jsonRPCErrorObj) {
		sawMethod = call.Method
		return SimulateResult{
			ReturnValue: json.RawMessage(`{"u32":7}`),
			Auth:        []AuthObligation{{Identity: "GWORKER", Invocation: json.RawMessage(`{}`)}},
		}, nil
	})
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Simulate(context.Background(), &Envelope{
		Contract: "CESCROW",
		Function: "get_escrow",
		Args:     []codec.Value{codec.NewU32(1)},
		Source:   "GDEPOSITOR",
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if sawMethod != "contract_simulate" {
		t.Fatalf("called %q", sawMethod)
	}
	if len(result.Auth) != 1 || result.Auth[0].Identity != "GWORKER" {
		t.Fatalf("unexpected result %+v", result)
	}
	ret, err := codec.Parse(result.ReturnValue)
	if err != nil {
		t.Fatalf("parse return: %v", err)
	}
	if !ret.Equal(codec.NewU32(7)) {
		t.Fatalf("return value %+v", ret)
	}
}

func TestClientSurfacesRPCError(t *testing.T) {
	srv := newTestServer(t, func(call rpcCall) (any, *jsonRPCErrorObj) {
		return nil, &jsonRPCErrorObj{Code: -32000, Message: "contract error 1100"}
	})
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GetStatus(context.Background(), "abc"); err == nil {
		t.Fatalf("expected rpc error")
	}
}

func TestClientReadLedgerEntryMissing(t *testing.T) {
	srv := newTestServer(t, func(call rpcCall) (any, *jsonRPCErrorObj) {
		return nil, nil
	})
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	entry, err := client.ReadLedgerEntry(context.Background(), codec.NewU32(9))
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry, got %+v", entry)
	}
}

func TestClientAuthToken(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"sequence":42}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithAuthToken(" secret "))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	seq, err := client.AccountSequence(context.Background(), "GDEPOSITOR")
	if err != nil {
		t.Fatalf("account sequence: %v", err)
	}
	if seq != 42 {
		t.Fatalf("sequence = %d", seq)
	}
	if sawAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", sawAuth)
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected endpoint error")
	}
}

func TestEnvelopeCloneIsDeep(t *testing.T) {
	env := &Envelope{
		Contract: "CESCROW",
		Args:     []codec.Value{codec.NewU32(1)},
		Auth:     []AuthObligation{{Identity: "GWORKER"}},
	}
	clone := env.Clone()
	clone.Args[0] = codec.NewU32(2)
	clone.Auth[0].Identity = "GOTHER"
	if !env.Args[0].Equal(codec.NewU32(1)) {
		t.Fatalf("clone shares args")
	}
	if env.Auth[0].Identity != "GWORKER" {
		t.Fatalf("clone shares auth")
	}
}
