// Package gateway serves a read-only HTTP facade over the escrow contract:
// JSON views of escrows, milestones, applications and reputation, plus
// health and Prometheus metrics endpoints. All writes stay with the SDK and
// CLI; the gateway holds no signing capability.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"decentpay/client"
	"decentpay/codec"
	"decentpay/escrow"
	"decentpay/lifecycle"
)

// Reader is the slice of the SDK the gateway consumes.
type Reader interface {
	GetEscrow(ctx context.Context, id uint32) (*escrow.Escrow, error)
	GetMilestones(ctx context.Context, escrowID uint32) ([]*escrow.Milestone, error)
	GetApplications(ctx context.Context, escrowID uint32) ([]*escrow.Application, error)
	GetRating(ctx context.Context, escrowID uint32) (*escrow.Rating, error)
	GetReputation(ctx context.Context, freelancer string) (*client.Reputation, error)
	GetUserEscrows(ctx context.Context, user string) ([]uint32, error)
	FindHighestEscrowID(ctx context.Context, upperBound uint32) (uint32, error)
	GetOwner(ctx context.Context) (string, error)
	IsJobCreationPaused(ctx context.Context) (bool, error)
}

// Config captures the dependencies required to construct the server.
type Config struct {
	Reader Reader
	Logger *slog.Logger
	// DiscoveryUpperBound caps the /escrows/highest scan.
	DiscoveryUpperBound uint32
}

// Server encapsulates the HTTP API.
type Server struct {
	reader     Reader
	log        *slog.Logger
	upperBound uint32
	router     http.Handler
}

// New constructs a configured router.
func New(cfg Config) (*Server, error) {
	if cfg.Reader == nil {
		return nil, errors.New("gateway: reader required")
	}
	s := &Server{
		reader:     cfg.Reader,
		log:        cfg.Logger,
		upperBound: cfg.DiscoveryUpperBound,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.upperBound == 0 {
		s.upperBound = 1_000_000
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/status", s.handleStatus)
		api.Get("/escrows/highest", s.handleHighestEscrow)
		api.Get("/escrows/{id}", s.handleGetEscrow)
		api.Get("/escrows/{id}/milestones", s.handleGetMilestones)
		api.Get("/escrows/{id}/applications", s.handleGetApplications)
		api.Get("/escrows/{id}/rating", s.handleGetRating)
		api.Get("/freelancers/{address}/reputation", s.handleGetReputation)
		api.Get("/users/{address}/escrows", s.handleGetUserEscrows)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	owner, err := s.reader.GetOwner(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	paused, err := s.reader.IsJobCreationPaused(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"owner":               owner,
		"job_creation_paused": paused,
	})
}

func (s *Server) handleHighestEscrow(w http.ResponseWriter, r *http.Request) {
	upper := s.upperBound
	if raw := r.URL.Query().Get("upper"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("upper must be an unsigned integer"))
			return
		}
		if parsed > 0 && uint32(parsed) < upper {
			upper = uint32(parsed)
		}
	}
	highest, err := s.reader.FindHighestEscrowID(r.Context(), upper)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint32{"highest": highest})
}

func (s *Server) handleGetEscrow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.escrowID(w, r)
	if !ok {
		return
	}
	e, err := s.reader.GetEscrow(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if e == nil {
		writeJSON(w, http.StatusNotFound, errorBody("escrow not found"))
		return
	}
	writeJSON(w, http.StatusOK, escrowView(e))
}

func (s *Server) handleGetMilestones(w http.ResponseWriter, r *http.Request) {
	id, ok := s.escrowID(w, r)
	if !ok {
		return
	}
	milestones, err := s.reader.GetMilestones(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]map[string]any, 0, len(milestones))
	for i, m := range milestones {
		views = append(views, milestoneView(i, m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := s.escrowID(w, r)
	if !ok {
		return
	}
	apps, err := s.reader.GetApplications(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]map[string]any, 0, len(apps))
	for _, a := range apps {
		views = append(views, map[string]any{
			"freelancer":        a.Freelancer,
			"cover_letter":      a.CoverLetter,
			"proposed_timeline": a.ProposedTimeline,
			"applied_at":        a.AppliedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := s.escrowID(w, r)
	if !ok {
		return
	}
	rating, err := s.reader.GetRating(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rating == nil {
		writeJSON(w, http.StatusNotFound, errorBody("rating not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"escrow_id":  rating.EscrowID,
		"freelancer": rating.Freelancer,
		"client":     rating.Client,
		"rating":     rating.Rating,
		"review":     rating.Review,
		"rated_at":   rating.RatedAt,
	})
}

func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.address(w, r)
	if !ok {
		return
	}
	rep, err := s.reader.GetReputation(r.Context(), addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"score":          rep.Score,
		"average_rating": rep.Average.Stars(),
		"rating_count":   rep.Average.Count,
		"completed":      rep.Completed,
		"badge":          rep.Badge.String(),
	})
}

func (s *Server) handleGetUserEscrows(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.address(w, r)
	if !ok {
		return
	}
	ids, err := s.reader.GetUserEscrows(r.Context(), addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []uint32{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"escrows": ids})
}

func (s *Server) escrowID(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("escrow id must be an unsigned integer"))
		return 0, false
	}
	return uint32(id), true
}

func (s *Server) address(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr := chi.URLParam(r, "address")
	if err := codec.ValidateAddress(addr); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed address"))
		return "", false
	}
	return addr, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var simErr *lifecycle.SimulationError
	if errors.As(err, &simErr) {
		s.log.Warn("contract rejected read", "path", r.URL.Path, "error", simErr.Message)
		writeJSON(w, http.StatusBadGateway, errorBody(simErr.Error()))
		return
	}
	s.log.Error("read failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusBadGateway, errorBody("upstream ledger unavailable"))
}

func escrowView(e *escrow.Escrow) map[string]any {
	return map[string]any{
		"id":                     e.ID,
		"depositor":              e.Depositor,
		"beneficiary":            e.Beneficiary,
		"arbiters":               e.Arbiters,
		"required_confirmations": e.RequiredConfirmations,
		"token":                  e.Token,
		"total_amount":           amountString(e.TotalAmount),
		"paid_amount":            amountString(e.PaidAmount),
		"platform_fee":           amountString(e.PlatformFee),
		"remaining":              amountString(e.Remaining()),
		"deadline":               e.Deadline,
		"created_at":             e.CreatedAt,
		"milestone_count":        e.MilestoneCount,
		"status":                 e.Status.String(),
		"work_started":           e.WorkStarted,
		"is_open_job":            e.IsOpenJob,
		"project_title":          e.ProjectTitle,
		"project_description":    e.ProjectDescription,
	}
}

func milestoneView(index int, m *escrow.Milestone) map[string]any {
	view := map[string]any{
		"index":       index,
		"description": m.Description,
		"amount":      amountString(m.Amount),
		"status":      m.Status.String(),
	}
	if m.SubmittedAt != 0 {
		view["submitted_at"] = m.SubmittedAt
	}
	if m.ApprovedAt != 0 {
		view["approved_at"] = m.ApprovedAt
	}
	if m.DisputedAt != 0 {
		view["disputed_at"] = m.DisputedAt
		view["disputed_by"] = m.DisputedBy
		view["dispute_reason"] = m.DisputeReason
	}
	if m.RejectionReason != "" {
		view["rejection_reason"] = m.RejectionReason
	}
	if m.Resolver != "" {
		view["resolver"] = m.Resolver
		view["resolution_amount"] = amountString(m.ResolutionAmount)
	}
	return view
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
