package model

// SiteSettings is a singleton document: exactly one row exists at all times,
// created lazily with defaults on first access.
type SiteSettings struct {
	HeroTitle string `json:"heroTitle" db:"hero_title"`
	HeroImage string `json:"heroImage" db:"hero_image"`
}

// DefaultSiteSettings returns the payload used to seed the settings singleton.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		HeroTitle: "Community Leader",
		HeroImage: "",
	}
}

// Initiative is one entry of the initiatives section of the landing page.
type Initiative struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// HeroContent is the hero section of the landing page.
type HeroContent struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	CTAText         string `json:"ctaText"`
	BackgroundImage string `json:"backgroundImage"`
}

// AboutContent is the about section of the landing page.
type AboutContent struct {
	Bio         string `json:"bio"`
	LeaderImage string `json:"leaderImage"`
}

// PageContent is the second singleton document: the full editable landing
// page. Initiatives are bounded to 1..12 items.
type PageContent struct {
	Hero        HeroContent  `json:"hero"`
	About       AboutContent `json:"about"`
	Initiatives []Initiative `json:"initiatives"`
}

// DefaultPageContent returns the payload used to seed the content singleton.
func DefaultPageContent() PageContent {
	return PageContent{
		Hero: HeroContent{
			Title:           "Sarah Martinez",
			Subtitle:        "Serving the Community with Integrity and Vision",
			CTAText:         "Join Community",
			BackgroundImage: "https://images.unsplash.com/photo-1529156069898-49953e39b3ac?w=1920&q=80",
		},
		About: AboutContent{
			Bio: "For over twelve years, I have had the privilege of serving our community, " +
				"first as a school board member, then as a city council representative. My work " +
				"has centered on education reform, infrastructure upgrades, and youth empowerment " +
				"programs that give every child a fair start. I believe that strong schools, safe " +
				"streets, and well-maintained public spaces are the foundation of a thriving " +
				"neighborhood.\n\nTransparency and accountability are non-negotiable. Every decision " +
				"I make is informed by resident input, public data, and a commitment to doing what " +
				"is right for the long term, not just what is convenient. I invite you to hold me " +
				"to that standard.",
			LeaderImage: "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2?w=600&h=750&fit=crop",
		},
		Initiatives: []Initiative{
			{
				Title:       "Youth Development Programs",
				Description: "Supporting skill-building workshops and mentorship initiatives.",
				Icon:        "academic",
			},
			{
				Title:       "Women Empowerment",
				Description: "Promoting entrepreneurship and financial literacy programs.",
				Icon:        "users",
			},
			{
				Title:       "Infrastructure Improvement",
				Description: "Roads, sanitation, and public facilities upgrades.",
				Icon:        "tools",
			},
			{
				Title:       "Health & Awareness Drives",
				Description: "Free medical camps and wellness awareness campaigns.",
				Icon:        "heart",
			},
		},
	}
}
