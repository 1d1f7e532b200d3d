package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"omerta/internal/config"
	"omerta/internal/game"
)

// Server is the operations API: read-only game state plus a few admin
// actions. Player-facing writes go through the bot, not here.
type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/turfs", s.handleTurfs)
		r.Get("/turfs/{name}", s.handleTurfDetail)
		r.Get("/hits", s.handleOpenHits)
		r.Get("/leaderboard/players", s.handlePlayerLeaderboard)
		r.Get("/leaderboard/families", s.handleFamilyLeaderboard)
		r.Get("/accounts/{id}", s.handleAccount)
		r.Get("/families/{name}", s.handleFamily)

		r.Post("/admin/seed-turfs", s.handleSeedTurfs)
		r.Post("/admin/sweep-income", s.handleSweepIncome)
	})
}

func (s *Server) handleTurfs(w http.ResponseWriter, r *http.Request) {
	turfs, err := s.game.ListTurfs(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turfs": turfs})
}

func (s *Server) handleTurfDetail(w http.ResponseWriter, r *http.Request) {
	turf, err := s.game.TurfByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turf)
}

func (s *Server) handleOpenHits(w http.ResponseWriter, r *http.Request) {
	hits, err := s.game.ListOpenHits(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": hits})
}

func (s *Server) handlePlayerLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.game.Leaderboard(r.Context(), limitParam(r, 10))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}

func (s *Server) handleFamilyLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.game.FamilyLeaderboard(r.Context(), limitParam(r, 10))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.game.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleFamily(w http.ResponseWriter, r *http.Request) {
	fam, err := s.game.FamilyByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	members, err := s.game.FamilyMembers(r.Context(), fam.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"family":  fam,
		"members": members,
	})
}

func (s *Server) handleSeedTurfs(w http.ResponseWriter, r *http.Request) {
	if err := s.game.SeedTurfs(r.Context(), time.Now()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seeded": true})
}

// handleSweepIncome pays out accrued turf income for every family that
// holds turf. The worker loop calls the same core method on a ticker.
func (s *Server) handleSweepIncome(w http.ResponseWriter, r *http.Request) {
	report, err := s.game.SweepTurfIncome(r.Context(), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100 {
		return fallback
	}
	return n
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrInvalidParticipantCount),
		errors.Is(err, game.ErrUnknownEventType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrCaptureConflict),
		errors.Is(err, game.ErrContractClosed),
		errors.Is(err, game.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		if _, ok := game.IsCooldown(err); ok {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
