package escrow

import (
	"encoding/json"
	"fmt"
	"testing"

	"decentpay/codec"
)

func mustParse(t *testing.T, raw string) codec.Value {
	t.Helper()
	v, err := codec.Parse(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return v
}

func TestEscrowFromValueAbsence(t *testing.T) {
	for name, raw := range map[string]string{
		"void":              `null`,
		"empty map":         `{"map":[]}`,
		"missing depositor": `{"map":[{"key":{"symbol":"total_amount"},"val":{"i128":"1000"}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			e, err := EscrowFromValue(mustParse(t, raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e != nil {
				t.Fatalf("expected absence, got %+v", e)
			}
		})
	}
}

func TestEscrowFromValueFullRecord(t *testing.T) {
	raw := `{"map":[
		{"key":{"symbol":"depositor"},"val":{"address":"GDEPOSITOR"}},
		{"key":{"symbol":"beneficiary"},"val":{"address":"GWORKER"}},
		{"key":{"symbol":"arbiters"},"val":{"vec":[{"address":"GARBITER"}]}},
		{"key":{"symbol":"required_confirmations"},"val":{"u32":1}},
		{"key":{"symbol":"token"},"val":{"void":null}},
		{"key":{"symbol":"total_amount"},"val":{"i128":{"hi":"0","lo":"10000000000"}}},
		{"key":{"symbol":"paid_amount"},"val":{"i128":"0"}},
		{"key":{"symbol":"platform_fee"},"val":{"i128":"250"}},
		{"key":{"symbol":"deadline"},"val":{"u32":1700000000}},
		{"key":{"symbol":"status"},"val":{"vec":[{"symbol":"InProgress"}]}},
		{"key":{"symbol":"work_started"},"val":{"bool":true}},
		{"key":{"symbol":"created_at"},"val":{"u32":1690000000}},
		{"key":{"symbol":"milestone_count"},"val":{"u32":2}},
		{"key":{"symbol":"is_open_job"},"val":{"bool":false}},
		{"key":{"symbol":"project_title"},"val":{"string":"Site build"}},
		{"key":{"symbol":"project_description"},"val":{"string":"Two milestones"}},
		{"key":{"symbol":"future_field"},"val":{"u32":1}}
	]}`
	e, err := EscrowFromValue(mustParse(t, raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e == nil {
		t.Fatalf("expected escrow, got absence")
	}
	if e.Depositor != "GDEPOSITOR" || e.Beneficiary != "GWORKER" {
		t.Fatalf("bad parties: %+v", e)
	}
	if e.Token != "" {
		t.Fatalf("void token should decode to empty, got %q", e.Token)
	}
	if e.TotalAmount.String() != "10000000000" {
		t.Fatalf("total = %s", e.TotalAmount)
	}
	if e.Status != StatusInProgress || !e.WorkStarted {
		t.Fatalf("bad lifecycle state: %+v", e)
	}
	if e.MilestoneCount != 2 || len(e.Arbiters) != 1 {
		t.Fatalf("bad counts: %+v", e)
	}
}

func TestEscrowFromValueStatusShapes(t *testing.T) {
	base := `{"map":[
		{"key":{"symbol":"depositor"},"val":{"address":"GDEPOSITOR"}},
		{"key":{"symbol":"total_amount"},"val":{"i128":"1"}},
		{"key":{"symbol":"paid_amount"},"val":{"i128":"0"}},
		{"key":{"symbol":"status"},"val":%s}
	]}`
	for name, statusRaw := range map[string]string{
		"symbol":       `{"symbol":"Disputed"}`,
		"unit variant": `{"vec":[{"symbol":"Disputed"}]}`,
		"integer code": `{"u32":4}`,
	} {
		t.Run(name, func(t *testing.T) {
			e, err := EscrowFromValue(mustParse(t, fmt.Sprintf(base, statusRaw)))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if e.Status != StatusDisputed {
				t.Fatalf("status = %s, want Disputed", e.Status)
			}
		})
	}
}

func TestEscrowFromValueRejectsUndecodableRequired(t *testing.T) {
	for name, raw := range map[string]string{
		"missing total": `{"map":[
			{"key":{"symbol":"depositor"},"val":{"address":"GDEPOSITOR"}},
			{"key":{"symbol":"paid_amount"},"val":{"i128":"0"}},
			{"key":{"symbol":"status"},"val":{"u32":0}}
		]}`,
		"bool amount": `{"map":[
			{"key":{"symbol":"depositor"},"val":{"address":"GDEPOSITOR"}},
			{"key":{"symbol":"total_amount"},"val":{"bool":true}},
			{"key":{"symbol":"paid_amount"},"val":{"i128":"0"}},
			{"key":{"symbol":"status"},"val":{"u32":0}}
		]}`,
		"unknown status": `{"map":[
			{"key":{"symbol":"depositor"},"val":{"address":"GDEPOSITOR"}},
			{"key":{"symbol":"total_amount"},"val":{"i128":"1"}},
			{"key":{"symbol":"paid_amount"},"val":{"i128":"0"}},
			{"key":{"symbol":"status"},"val":{"symbol":"Vanished"}}
		]}`,
		"not a map": `{"u32":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := EscrowFromValue(mustParse(t, raw)); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}

func TestMilestoneFromValue(t *testing.T) {
	raw := `{"map":[
		{"key":{"symbol":"description"},"val":{"string":"Design"}},
		{"key":{"symbol":"amount"},"val":{"i128":"60000"}},
		{"key":{"symbol":"status"},"val":{"vec":[{"symbol":"Rejected"}]}},
		{"key":{"symbol":"submitted_at"},"val":{"u32":100}},
		{"key":{"symbol":"rejection_reason"},"val":{"string":"incomplete"}},
		{"key":{"symbol":"disputed_by"},"val":{"void":null}}
	]}`
	m, err := MilestoneFromValue(mustParse(t, raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Status != MilestoneRejected || m.RejectionReason != "incomplete" {
		t.Fatalf("bad milestone: %+v", m)
	}
	if m.Amount.String() != "60000" || m.SubmittedAt != 100 {
		t.Fatalf("bad milestone fields: %+v", m)
	}
	if m.DisputedBy != "" {
		t.Fatalf("void disputed_by should decode to empty")
	}
}

func TestApplicationFromValue(t *testing.T) {
	raw := `{"map":[
		{"key":{"symbol":"freelancer"},"val":{"address":"GWORKER"}},
		{"key":{"symbol":"cover_letter"},"val":{"string":"hi"}},
		{"key":{"symbol":"proposed_timeline"},"val":{"u32":14}},
		{"key":{"symbol":"applied_at"},"val":{"u32":1690000000}}
	]}`
	a, err := ApplicationFromValue(mustParse(t, raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Freelancer != "GWORKER" || a.ProposedTimeline != 14 {
		t.Fatalf("bad application: %+v", a)
	}

	missing := `{"map":[{"key":{"symbol":"cover_letter"},"val":{"string":"hi"}}]}`
	if _, err := ApplicationFromValue(mustParse(t, missing)); err == nil {
		t.Fatalf("expected error for missing freelancer")
	}
}
