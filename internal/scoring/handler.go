// Gente Networking | 2026
// handler.go

package scoring

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/middleware"
)

type Handler struct {
	recalc          *Recalculator
	store           Store
	historyPageSize int
	historyMaxSize  int
}

type HandlerConfig struct {
	Recalculator    *Recalculator
	Store           Store
	HistoryPageSize int
	HistoryMaxSize  int
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.HistoryPageSize < 1 {
		cfg.HistoryPageSize = 50
	}
	if cfg.HistoryMaxSize < cfg.HistoryPageSize {
		cfg.HistoryMaxSize = cfg.HistoryPageSize
	}

	return &Handler{
		recalc:          cfg.Recalculator,
		store:           cfg.Store,
		historyPageSize: cfg.HistoryPageSize,
		historyMaxSize:  cfg.HistoryMaxSize,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/scoring", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/rules", h.GetRules)
		r.Get("/me/history", h.GetMyHistory)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/scoring", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/history", h.GetAllHistory)
		r.Get("/history/{memberID}", h.GetMemberHistory)
		r.Post("/recalculate", h.RecalculateAll)
		r.Post("/recalculate/{memberID}", h.RecalculateMember)
	})
}

// GetRules exposes the active rule table so clients can render weights and
// tier thresholds without hardcoding them.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ToRulesResponse(h.recalc.Rules()))
}

func (h *Handler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	if memberID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	entries, err := h.store.History(r.Context(), memberID, h.limit(r))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHistoryResponse(entries))
}

func (h *Handler) GetMemberHistory(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	entries, err := h.store.History(r.Context(), memberID, h.limit(r))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHistoryResponse(entries))
}

func (h *Handler) GetAllHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.History(r.Context(), "", h.limit(r))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHistoryResponse(entries))
}

func (h *Handler) RecalculateMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	result, err := h.recalc.RecalculateMember(r.Context(), memberID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "member")
		case errors.Is(err, core.ErrConflict):
			core.Conflict(w, "recalculation already in progress")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, result)
}

// RecalculateAll reports aggregate counts only; per-member failures are in
// the logs, not the response.
func (h *Handler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.recalc.RecalculateAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) limit(r *http.Request) int {
	val := r.URL.Query().Get("limit")
	if val == "" {
		return h.historyPageSize
	}

	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 1 {
		return h.historyPageSize
	}

	if parsed > h.historyMaxSize {
		return h.historyMaxSize
	}

	return parsed
}
