package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/civicsite/civicsite/internal/model"
)

// Both content documents are singletons pinned to row id 1. Creation is a
// single insert-if-absent statement, never a read-then-write, so concurrent
// first access cannot produce duplicates.
const singletonID = 1

// ---------------------------------------------------------------------------
// Site settings
// ---------------------------------------------------------------------------

// SiteSettingsPatch carries the fields of a partial settings update. Nil
// pointers mean "leave unchanged".
type SiteSettingsPatch struct {
	HeroTitle *string
	HeroImage *string
}

type siteSettingsRow struct {
	HeroTitle string `db:"hero_title"`
	HeroImage string `db:"hero_image"`
}

// GetSiteSettings returns the settings singleton, creating it with defaults
// on first access.
func (s *Store) GetSiteSettings(ctx context.Context) (*model.SiteSettings, error) {
	if err := s.seedSiteSettings(ctx); err != nil {
		return nil, err
	}
	var row siteSettingsRow
	err := s.db.GetContext(ctx, &row,
		s.rebind(`SELECT hero_title, hero_image FROM site_settings WHERE id = ?`), singletonID)
	if err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return &model.SiteSettings{HeroTitle: row.HeroTitle, HeroImage: row.HeroImage}, nil
}

// UpdateSiteSettings applies a partial update and returns the full document.
func (s *Store) UpdateSiteSettings(ctx context.Context, patch SiteSettingsPatch) (*model.SiteSettings, error) {
	if err := s.seedSiteSettings(ctx); err != nil {
		return nil, err
	}

	set, args := []string{}, []interface{}{}
	if patch.HeroTitle != nil {
		set, args = append(set, "hero_title = ?"), append(args, *patch.HeroTitle)
	}
	if patch.HeroImage != nil {
		set, args = append(set, "hero_image = ?"), append(args, *patch.HeroImage)
	}
	if len(set) > 0 {
		set, args = append(set, "updated_at = ?"), append(args, time.Now().UTC())
		args = append(args, singletonID)
		query := "UPDATE site_settings SET " + strings.Join(set, ", ") + " WHERE id = ?"
		if _, err := s.db.ExecContext(ctx, s.rebind(query), args...); err != nil {
			return nil, fmt.Errorf("update site settings: %w", err)
		}
	}
	return s.GetSiteSettings(ctx)
}

func (s *Store) seedSiteSettings(ctx context.Context) error {
	def := model.DefaultSiteSettings()
	now := time.Now().UTC()
	query := `INSERT INTO site_settings (id, hero_title, hero_image, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)`
	if s.driver == "mysql" {
		query = "INSERT IGNORE" + query[len("INSERT"):]
	} else {
		query += " ON CONFLICT (id) DO NOTHING"
	}
	_, err := s.db.ExecContext(ctx, s.rebind(query), singletonID, def.HeroTitle, def.HeroImage, now, now)
	if err != nil {
		return fmt.Errorf("seed site settings: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Page content
// ---------------------------------------------------------------------------

// PageContentPatch carries the fields of a partial page-content update. Nil
// means "leave unchanged"; a non-nil Initiatives slice replaces the whole list.
type PageContentPatch struct {
	HeroTitle           *string
	HeroSubtitle        *string
	HeroCTAText         *string
	HeroBackgroundImage *string
	AboutBio            *string
	AboutLeaderImage    *string
	Initiatives         []model.Initiative
}

type pageContentRow struct {
	HeroTitle           string `db:"hero_title"`
	HeroSubtitle        string `db:"hero_subtitle"`
	HeroCTAText         string `db:"hero_cta_text"`
	HeroBackgroundImage string `db:"hero_background_image"`
	AboutBio            string `db:"about_bio"`
	AboutLeaderImage    string `db:"about_leader_image"`
	Initiatives         string `db:"initiatives"`
}

func (r pageContentRow) toModel() (*model.PageContent, error) {
	var initiatives []model.Initiative
	if err := json.Unmarshal([]byte(r.Initiatives), &initiatives); err != nil {
		return nil, fmt.Errorf("decode initiatives: %w", err)
	}
	return &model.PageContent{
		Hero: model.HeroContent{
			Title:           r.HeroTitle,
			Subtitle:        r.HeroSubtitle,
			CTAText:         r.HeroCTAText,
			BackgroundImage: r.HeroBackgroundImage,
		},
		About: model.AboutContent{
			Bio:         r.AboutBio,
			LeaderImage: r.AboutLeaderImage,
		},
		Initiatives: initiatives,
	}, nil
}

// GetPageContent returns the page-content singleton, creating it with
// defaults on first access.
func (s *Store) GetPageContent(ctx context.Context) (*model.PageContent, error) {
	if err := s.seedPageContent(ctx); err != nil {
		return nil, err
	}
	var row pageContentRow
	err := s.db.GetContext(ctx, &row, s.rebind(
		`SELECT hero_title, hero_subtitle, hero_cta_text, hero_background_image,
		        about_bio, about_leader_image, initiatives
		 FROM page_content WHERE id = ?`), singletonID)
	if err != nil {
		return nil, fmt.Errorf("get page content: %w", err)
	}
	return row.toModel()
}

// UpdatePageContent applies a partial update and returns the full document.
func (s *Store) UpdatePageContent(ctx context.Context, patch PageContentPatch) (*model.PageContent, error) {
	if err := s.seedPageContent(ctx); err != nil {
		return nil, err
	}

	set, args := []string{}, []interface{}{}
	add := func(col string, val interface{}) {
		set, args = append(set, col+" = ?"), append(args, val)
	}
	if patch.HeroTitle != nil {
		add("hero_title", *patch.HeroTitle)
	}
	if patch.HeroSubtitle != nil {
		add("hero_subtitle", *patch.HeroSubtitle)
	}
	if patch.HeroCTAText != nil {
		add("hero_cta_text", *patch.HeroCTAText)
	}
	if patch.HeroBackgroundImage != nil {
		add("hero_background_image", *patch.HeroBackgroundImage)
	}
	if patch.AboutBio != nil {
		add("about_bio", *patch.AboutBio)
	}
	if patch.AboutLeaderImage != nil {
		add("about_leader_image", *patch.AboutLeaderImage)
	}
	if patch.Initiatives != nil {
		encoded, err := json.Marshal(patch.Initiatives)
		if err != nil {
			return nil, fmt.Errorf("encode initiatives: %w", err)
		}
		add("initiatives", string(encoded))
	}

	if len(set) > 0 {
		add("updated_at", time.Now().UTC())
		args = append(args, singletonID)
		query := "UPDATE page_content SET " + strings.Join(set, ", ") + " WHERE id = ?"
		if _, err := s.db.ExecContext(ctx, s.rebind(query), args...); err != nil {
			return nil, fmt.Errorf("update page content: %w", err)
		}
	}
	return s.GetPageContent(ctx)
}

func (s *Store) seedPageContent(ctx context.Context) error {
	def := model.DefaultPageContent()
	encoded, err := json.Marshal(def.Initiatives)
	if err != nil {
		return fmt.Errorf("encode default initiatives: %w", err)
	}
	now := time.Now().UTC()
	query := `INSERT INTO page_content (id, hero_title, hero_subtitle, hero_cta_text,
	          hero_background_image, about_bio, about_leader_image, initiatives,
	          created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if s.driver == "mysql" {
		query = "INSERT IGNORE" + query[len("INSERT"):]
	} else {
		query += " ON CONFLICT (id) DO NOTHING"
	}
	_, err = s.db.ExecContext(ctx, s.rebind(query),
		singletonID, def.Hero.Title, def.Hero.Subtitle, def.Hero.CTAText,
		def.Hero.BackgroundImage, def.About.Bio, def.About.LeaderImage,
		string(encoded), now, now)
	if err != nil {
		return fmt.Errorf("seed page content: %w", err)
	}
	return nil
}
