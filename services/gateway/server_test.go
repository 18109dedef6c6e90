package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"decentpay/client"
	"decentpay/codec"
	"decentpay/escrow"
	"decentpay/lifecycle"
)

type fakeReader struct {
	escrows map[uint32]*escrow.Escrow
	err     error
}

func (f *fakeReader) GetEscrow(ctx context.Context, id uint32) (*escrow.Escrow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.escrows[id], nil
}

func (f *fakeReader) GetMilestones(ctx context.Context, escrowID uint32) ([]*escrow.Milestone, error) {
	return []*escrow.Milestone{
		{Description: "design", Amount: big.NewInt(600), Status: escrow.MilestoneApproved, ApprovedAt: 1700000000},
		{Description: "build", Amount: big.NewInt(400), Status: escrow.MilestoneNotStarted},
	}, nil
}

func (f *fakeReader) GetApplications(ctx context.Context, escrowID uint32) ([]*escrow.Application, error) {
	return []*escrow.Application{{Freelancer: testAccount(5), CoverLetter: "hire me"}}, nil
}

func (f *fakeReader) GetRating(ctx context.Context, escrowID uint32) (*escrow.Rating, error) {
	if escrowID == 404 {
		return nil, nil
	}
	return &escrow.Rating{EscrowID: escrowID, Rating: 5, Review: "great"}, nil
}

func (f *fakeReader) GetReputation(ctx context.Context, freelancer string) (*client.Reputation, error) {
	return &client.Reputation{
		Score:     42,
		Average:   escrow.AverageRating{Total: 9, Count: 2},
		Completed: 16,
		Badge:     escrow.BadgeAdvanced,
	}, nil
}

func (f *fakeReader) GetUserEscrows(ctx context.Context, user string) ([]uint32, error) {
	return []uint32{1, 4}, nil
}

func (f *fakeReader) FindHighestEscrowID(ctx context.Context, upperBound uint32) (uint32, error) {
	var highest uint32
	for id := range f.escrows {
		if id > highest && id <= upperBound {
			highest = id
		}
	}
	return highest, nil
}

func (f *fakeReader) GetOwner(ctx context.Context) (string, error) {
	return testAccount(1), nil
}

func (f *fakeReader) IsJobCreationPaused(ctx context.Context) (bool, error) {
	return false, nil
}

func testAccount(b byte) string {
	var payload [32]byte
	payload[0] = b
	return codec.FormatStrkey(0x30, payload)
}

func newTestServer(t *testing.T, reader *fakeReader) *Server {
	t.Helper()
	srv, err := New(Config{Reader: reader})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
	}
}

func TestGetEscrow(t *testing.T) {
	reader := &fakeReader{escrows: map[uint32]*escrow.Escrow{
		7: {
			ID:          7,
			Depositor:   testAccount(1),
			Beneficiary: testAccount(2),
			TotalAmount: big.NewInt(1000),
			PaidAmount:  big.NewInt(600),
			Status:      escrow.StatusInProgress,
			WorkStarted: true,
		},
	}}
	rec := get(t, newTestServer(t, reader), "/api/v1/escrows/7")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "InProgress" {
		t.Fatalf("unexpected escrow status: %v", body["status"])
	}
	if body["total_amount"] != "1000" || body["remaining"] != "400" {
		t.Fatalf("unexpected amounts: %v / %v", body["total_amount"], body["remaining"])
	}
}

func TestGetEscrowNotFound(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/api/v1/escrows/9")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetEscrowRejectsBadID(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/api/v1/escrows/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	reader := &fakeReader{err: fmt.Errorf("connection refused")}
	rec := get(t, newTestServer(t, reader), "/api/v1/escrows/1")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestContractErrorMapsToBadGateway(t *testing.T) {
	reader := &fakeReader{err: &lifecycle.SimulationError{Function: "get_escrow", Message: "contract error 1601"}}
	rec := get(t, newTestServer(t, reader), "/api/v1/escrows/1")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGetMilestones(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/api/v1/escrows/1/milestones")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body []map[string]any
	decodeBody(t, rec, &body)
	if len(body) != 2 {
		t.Fatalf("expected 2 milestones, got %d", len(body))
	}
	if body[0]["status"] != "Approved" || body[0]["amount"] != "600" {
		t.Fatalf("unexpected first milestone: %v", body[0])
	}
	if _, ok := body[1]["approved_at"]; ok {
		t.Fatalf("unstarted milestone should omit approval timestamp")
	}
}

func TestRatingNotFound(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/api/v1/escrows/404/rating")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetReputation(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/api/v1/freelancers/"+testAccount(5)+"/reputation")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["badge"] != "Advanced" {
		t.Fatalf("unexpected badge: %v", body["badge"])
	}
	if body["average_rating"].(float64) != 4.5 {
		t.Fatalf("unexpected average: %v", body["average_rating"])
	}
	if body["score"].(float64) != 42 {
		t.Fatalf("unexpected score: %v", body["score"])
	}
}

func TestReputationRejectsMalformedAddress(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/api/v1/freelancers/nope/reputation")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHighestEscrowHonorsUpperParam(t *testing.T) {
	reader := &fakeReader{escrows: map[uint32]*escrow.Escrow{1: {}, 2: {}, 5: {}}}
	rec := get(t, newTestServer(t, reader), "/api/v1/escrows/highest?upper=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body map[string]uint32
	decodeBody(t, rec, &body)
	if body["highest"] != 2 {
		t.Fatalf("unexpected highest: %d", body["highest"])
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeReader{}), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
