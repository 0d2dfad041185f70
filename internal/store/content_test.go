package store

import (
	"context"
	"sync"
	"testing"

	"github.com/civicsite/civicsite/internal/model"
)

func strptr(s string) *string { return &s }

func TestSiteSettingsLazyDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings, err := s.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("GetSiteSettings: %v", err)
	}
	if settings.HeroTitle != "Community Leader" {
		t.Errorf("HeroTitle = %q, want default", settings.HeroTitle)
	}
	if settings.HeroImage != "" {
		t.Errorf("HeroImage = %q, want empty default", settings.HeroImage)
	}
}

func TestSiteSettingsPartialPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	updated, err := s.UpdateSiteSettings(ctx, SiteSettingsPatch{HeroTitle: strptr("New Title")})
	if err != nil {
		t.Fatalf("UpdateSiteSettings: %v", err)
	}
	if updated.HeroTitle != "New Title" {
		t.Errorf("HeroTitle = %q, want %q", updated.HeroTitle, "New Title")
	}
	if updated.HeroImage != "" {
		t.Errorf("HeroImage changed by unrelated patch: %q", updated.HeroImage)
	}

	// Patch the other field; the first must survive.
	updated, err = s.UpdateSiteSettings(ctx, SiteSettingsPatch{HeroImage: strptr("https://example.com/hero.jpg")})
	if err != nil {
		t.Fatalf("UpdateSiteSettings: %v", err)
	}
	if updated.HeroTitle != "New Title" {
		t.Errorf("HeroTitle = %q, want untouched %q", updated.HeroTitle, "New Title")
	}
	if updated.HeroImage != "https://example.com/hero.jpg" {
		t.Errorf("HeroImage = %q", updated.HeroImage)
	}

	// Round-trip through a fresh read.
	got, err := s.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("GetSiteSettings: %v", err)
	}
	if *got != *updated {
		t.Errorf("read-back = %+v, want %+v", got, updated)
	}
}

// Concurrent first access must create exactly one document, not N.
func TestSiteSettingsConcurrentFirstAccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetSiteSettings(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("GetSiteSettings: %v", err)
		}
	}

	var count int
	if err := s.db.Get(&count, "SELECT COUNT(*) FROM site_settings"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("site_settings rows = %d, want exactly 1", count)
	}
}

func TestPageContentLazyDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	content, err := s.GetPageContent(ctx)
	if err != nil {
		t.Fatalf("GetPageContent: %v", err)
	}
	def := model.DefaultPageContent()
	if content.Hero != def.Hero {
		t.Errorf("Hero = %+v, want defaults", content.Hero)
	}
	if content.About != def.About {
		t.Errorf("About = %+v, want defaults", content.About)
	}
	if len(content.Initiatives) != len(def.Initiatives) {
		t.Fatalf("initiatives = %d, want %d", len(content.Initiatives), len(def.Initiatives))
	}
	if content.Initiatives[0] != def.Initiatives[0] {
		t.Errorf("Initiatives[0] = %+v, want %+v", content.Initiatives[0], def.Initiatives[0])
	}
}

func TestPageContentPartialPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	def := model.DefaultPageContent()

	updated, err := s.UpdatePageContent(ctx, PageContentPatch{HeroTitle: strptr("Jane Doe")})
	if err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}
	if updated.Hero.Title != "Jane Doe" {
		t.Errorf("Hero.Title = %q", updated.Hero.Title)
	}
	if updated.Hero.Subtitle != def.Hero.Subtitle {
		t.Error("Hero.Subtitle changed by unrelated patch")
	}
	if updated.About != def.About {
		t.Error("About changed by unrelated patch")
	}
	if len(updated.Initiatives) != len(def.Initiatives) {
		t.Error("Initiatives changed by unrelated patch")
	}

	// Replace the initiatives list only.
	initiatives := []model.Initiative{
		{Title: "Clean Streets", Description: "Weekly street cleaning drives.", Icon: "broom"},
	}
	updated, err = s.UpdatePageContent(ctx, PageContentPatch{Initiatives: initiatives})
	if err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}
	if len(updated.Initiatives) != 1 || updated.Initiatives[0].Title != "Clean Streets" {
		t.Errorf("Initiatives = %+v", updated.Initiatives)
	}
	if updated.Hero.Title != "Jane Doe" {
		t.Error("earlier patch lost by later patch")
	}
}
