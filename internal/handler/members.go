package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/store"
)

const (
	minNameLength = 2
	maxNameLength = 100
	minAreaLength = 2
	maxAreaLength = 100

	publicPageSize = 12
	maxPublicPage  = 1000
	adminPageSize  = 20
	maxAdminPage   = 500
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)

// MemberHandler serves the members collection. Registration and the public
// listing are open; the full listing and visibility toggles require a session.
type MemberHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewMemberHandler(st *store.Store, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{store: st, logger: logger}
}

// ListPublic returns publicly visible members, newest first, 12 per page.
// GET /api/members
func (h *MemberHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	page := clampInt(queryInt(r, "page", 1), 1, maxPublicPage)

	members, total, err := h.store.ListMembers(r.Context(), true, page, publicPageSize)
	if err != nil {
		serverError(w, h.logger, "list public members", err)
		return
	}

	// Project to the public shape so phone numbers never leave the server.
	summaries := make([]model.MemberSummary, 0, len(members))
	for i := range members {
		summaries = append(summaries, members[i].Summary())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"members":    summaries,
		"pagination": model.NewPagination(total, page, publicPageSize),
	})
}

// ListAll returns every member, including hidden ones, 20 per page.
// GET /api/admin/members
func (h *MemberHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page := clampInt(queryInt(r, "page", 1), 1, maxAdminPage)

	members, total, err := h.store.ListMembers(r.Context(), false, page, adminPageSize)
	if err != nil {
		serverError(w, h.logger, "list all members", err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"members":    members,
		"pagination": model.NewPagination(total, page, adminPageSize),
	})
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Area  string `json:"area"`
}

// Create registers a new member from the public join form.
// POST /api/members
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Area = strings.TrimSpace(req.Area)

	if msg := validateMemberInput(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	member := &model.Member{
		Name:     req.Name,
		Phone:    req.Phone,
		Area:     req.Area,
		IsPublic: true,
	}
	if err := h.store.CreateMember(r.Context(), member); err != nil {
		serverError(w, h.logger, "create member", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "You have successfully joined!",
		"member":  member.Summary(),
	})
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// ToggleVisibility shows or hides a member on the public listing.
// PATCH /api/members/{id}/visibility
func (h *MemberHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	var req visibilityRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	member, err := h.store.GetMember(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Member not found")
			return
		}
		serverError(w, h.logger, "get member", err)
		return
	}

	// Explicit value wins; absent means flip the current state.
	next := !member.IsPublic
	if req.IsPublic != nil {
		next = *req.IsPublic
	}

	if err := h.store.SetMemberVisibility(r.Context(), id, next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Member not found")
			return
		}
		serverError(w, h.logger, "set member visibility", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"member": map[string]interface{}{"id": id, "isPublic": next},
	})
}

func validateMemberInput(req createMemberRequest) string {
	switch {
	case req.Name == "":
		return "Name is required"
	case len(req.Name) < minNameLength || len(req.Name) > maxNameLength:
		return fmt.Sprintf("Name must be between %d and %d characters", minNameLength, maxNameLength)
	case req.Phone == "":
		return "Phone is required"
	case !phoneRegex.MatchString(req.Phone):
		return "Phone must be a valid phone number"
	case req.Area == "":
		return "Area is required"
	case len(req.Area) < minAreaLength || len(req.Area) > maxAreaLength:
		return fmt.Sprintf("Area must be between %d and %d characters", minAreaLength, maxAreaLength)
	}
	return ""
}
