package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/store"
)

const (
	maxHeroTitleLength       = 200
	maxHeroSubtitleLength    = 300
	maxCTATextLength         = 100
	maxImageURLLength        = 2048
	maxBioLength             = 5000
	maxInitiativeTitleLength = 200
	maxInitiativeDescLength  = 500
	maxIconLength            = 50
	maxInitiatives           = 12
)

// ContentHandler serves the two singleton documents: site settings and the
// editable landing page. Reads are public, writes require a session.
type ContentHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewContentHandler(st *store.Store, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{store: st, logger: logger}
}

// GetSettings returns the site settings singleton.
// GET /api/settings
func (h *ContentHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSiteSettings(r.Context())
	if err != nil {
		serverError(w, h.logger, "get site settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

type settingsUpdateRequest struct {
	HeroTitle *string `json:"heroTitle"`
	HeroImage *string `json:"heroImage"`
}

// UpdateSettings applies a partial update to the settings singleton.
// PUT /api/settings
func (h *ContentHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsUpdateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.HeroTitle == nil && req.HeroImage == nil {
		writeError(w, http.StatusBadRequest, "Provide at least one field: heroTitle or heroImage")
		return
	}
	if req.HeroTitle != nil {
		title := strings.TrimSpace(*req.HeroTitle)
		if title == "" {
			writeError(w, http.StatusBadRequest, "heroTitle must not be empty")
			return
		}
		if len(title) > maxHeroTitleLength {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("heroTitle must be at most %d characters", maxHeroTitleLength))
			return
		}
		req.HeroTitle = &title
	}
	if req.HeroImage != nil {
		// Empty string clears the image; otherwise it must be a web URL.
		if *req.HeroImage != "" && !validImageURL(*req.HeroImage) {
			writeError(w, http.StatusBadRequest, "heroImage must be an http(s) URL")
			return
		}
	}

	settings, err := h.store.UpdateSiteSettings(r.Context(), store.SiteSettingsPatch{
		HeroTitle: req.HeroTitle,
		HeroImage: req.HeroImage,
	})
	if err != nil {
		serverError(w, h.logger, "update site settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

// GetContent returns the landing-page content singleton.
// GET /api/content
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.store.GetPageContent(r.Context())
	if err != nil {
		serverError(w, h.logger, "get page content", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"content": content})
}

type heroPatch struct {
	Title           *string `json:"title"`
	Subtitle        *string `json:"subtitle"`
	CTAText         *string `json:"ctaText"`
	BackgroundImage *string `json:"backgroundImage"`
}

type aboutPatch struct {
	Bio         *string `json:"bio"`
	LeaderImage *string `json:"leaderImage"`
}

type contentUpdateRequest struct {
	Hero        *heroPatch         `json:"hero"`
	About       *aboutPatch        `json:"about"`
	Initiatives []model.Initiative `json:"initiatives"`
}

func (req *contentUpdateRequest) empty() bool {
	return req.Hero == nil && req.About == nil && req.Initiatives == nil
}

// UpdateContent applies a partial update to the landing-page singleton.
// PUT /api/content
//
// Sections are patched independently; a present initiatives array replaces
// the whole list.
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req contentUpdateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.empty() {
		writeError(w, http.StatusBadRequest, "Provide at least one field to update: hero, about, or initiatives")
		return
	}
	if msg := validateContentPatch(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	patch := store.PageContentPatch{Initiatives: req.Initiatives}
	if req.Hero != nil {
		patch.HeroTitle = req.Hero.Title
		patch.HeroSubtitle = req.Hero.Subtitle
		patch.HeroCTAText = req.Hero.CTAText
		patch.HeroBackgroundImage = req.Hero.BackgroundImage
	}
	if req.About != nil {
		patch.AboutBio = req.About.Bio
		patch.AboutLeaderImage = req.About.LeaderImage
	}

	content, err := h.store.UpdatePageContent(r.Context(), patch)
	if err != nil {
		serverError(w, h.logger, "update page content", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"content": content})
}

// validateContentPatch checks every provided field and trims the values that
// will be persisted, in place. Text fields must not be blank when present;
// image fields may be empty, which clears them.
func validateContentPatch(req *contentUpdateRequest) string {
	if req.Hero != nil {
		if msg := trimRequired(req.Hero.Title, "hero.title", maxHeroTitleLength); msg != "" {
			return msg
		}
		if msg := trimRequired(req.Hero.Subtitle, "hero.subtitle", maxHeroSubtitleLength); msg != "" {
			return msg
		}
		if msg := trimRequired(req.Hero.CTAText, "hero.ctaText", maxCTATextLength); msg != "" {
			return msg
		}
		if msg := trimImage(req.Hero.BackgroundImage, "hero.backgroundImage"); msg != "" {
			return msg
		}
	}
	if req.About != nil {
		if msg := trimRequired(req.About.Bio, "about.bio", maxBioLength); msg != "" {
			return msg
		}
		if msg := trimImage(req.About.LeaderImage, "about.leaderImage"); msg != "" {
			return msg
		}
	}
	if req.Initiatives != nil {
		if len(req.Initiatives) == 0 {
			return "initiatives must contain at least 1 item"
		}
		if len(req.Initiatives) > maxInitiatives {
			return fmt.Sprintf("initiatives must contain at most %d items", maxInitiatives)
		}
		for i := range req.Initiatives {
			init := &req.Initiatives[i]
			init.Title = strings.TrimSpace(init.Title)
			init.Description = strings.TrimSpace(init.Description)
			init.Icon = strings.TrimSpace(init.Icon)
			switch {
			case init.Title == "":
				return fmt.Sprintf("initiatives[%d].title is required", i)
			case len(init.Title) > maxInitiativeTitleLength:
				return fmt.Sprintf("initiatives[%d].title must be at most %d characters", i, maxInitiativeTitleLength)
			case init.Description == "":
				return fmt.Sprintf("initiatives[%d].description is required", i)
			case len(init.Description) > maxInitiativeDescLength:
				return fmt.Sprintf("initiatives[%d].description must be at most %d characters", i, maxInitiativeDescLength)
			case init.Icon == "":
				return fmt.Sprintf("initiatives[%d].icon is required", i)
			case len(init.Icon) > maxIconLength:
				return fmt.Sprintf("initiatives[%d].icon must be at most %d characters", i, maxIconLength)
			}
		}
	}
	return ""
}

// trimRequired trims an optional text field in place and rejects blank or
// oversized values. A nil field is untouched.
func trimRequired(val *string, name string, max int) string {
	if val == nil {
		return ""
	}
	*val = strings.TrimSpace(*val)
	if *val == "" {
		return name + " must not be empty"
	}
	if len(*val) > max {
		return fmt.Sprintf("%s must be at most %d characters", name, max)
	}
	return ""
}

// trimImage trims an optional image field in place. Empty clears the image;
// anything else must be a web URL.
func trimImage(val *string, name string) string {
	if val == nil {
		return ""
	}
	*val = strings.TrimSpace(*val)
	if *val != "" && !validImageURL(*val) {
		return name + " must be an http(s) URL"
	}
	return ""
}

func validImageURL(raw string) bool {
	if len(raw) > maxImageURLLength {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
