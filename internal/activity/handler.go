// Gente Networking | 2026
// handler.go

package activity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/activities", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/meetings", h.RegisterMeeting)
		r.Post("/attendances", h.RecordAttendance)
		r.Post("/testimonials", h.WriteTestimonial)
		r.Post("/referrals", h.MakeReferral)
		r.Post("/deals", h.CloseDeal)
	})

	r.Route("/invitations", func(r chi.Router) {
		r.With(authenticator).Post("/", h.Invite)

		// Redeemed by guests who are not members yet.
		r.Post("/accept", h.AcceptInvitation)
	})
}

func (h *Handler) RegisterMeeting(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	var req CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	meeting, err := h.service.RegisterMeeting(r.Context(), memberID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToMeetingResponse(meeting))
}

func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	var req RecordAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	attendance, err := h.service.RecordAttendance(r.Context(), memberID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToAttendanceResponse(attendance))
}

func (h *Handler) WriteTestimonial(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.GetMemberID(r.Context())

	var req WriteTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	testimonial, err := h.service.WriteTestimonial(r.Context(), authorID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToTestimonialResponse(testimonial))
}

func (h *Handler) MakeReferral(w http.ResponseWriter, r *http.Request) {
	giverID := middleware.GetMemberID(r.Context())

	var req MakeReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	referral, err := h.service.MakeReferral(r.Context(), giverID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToReferralResponse(referral))
}

func (h *Handler) CloseDeal(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	var req CloseDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	deal, err := h.service.CloseDeal(r.Context(), memberID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToDealResponse(deal))
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	inviterID := middleware.GetMemberID(r.Context())

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	invitation, token, err := h.service.Invite(r.Context(), inviterID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToInvitationResponse(invitation, token))
}

func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	invitation, newMember, err := h.service.AcceptInvitation(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, AcceptInvitationResponse{
		InvitationID: invitation.ID,
		MemberID:     newMember.ID,
		Email:        newMember.Email,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *core.AppError
	if errors.As(err, &appErr) {
		core.JSONError(w, appErr)
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "member")
	case errors.Is(err, core.ErrDuplicateKey):
		core.Conflict(w, "already registered")
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "invitation already redeemed")
	default:
		core.InternalServerError(w, err)
	}
}
