package model

import "time"

// Member is a community member created through public self-registration.
// Phone numbers are collected at signup but never exposed on public endpoints.
type Member struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"-" db:"phone"`
	Area      string    `json:"area" db:"area"`
	JoinedAt  time.Time `json:"joinedAt" db:"joined_at"`
	IsPublic  bool      `json:"isPublic" db:"is_public"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// MemberSummary is the public projection of a member: no phone, no flags.
type MemberSummary struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Area     string    `json:"area"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Summary returns the public projection of m.
func (m *Member) Summary() MemberSummary {
	return MemberSummary{ID: m.ID, Name: m.Name, Area: m.Area, JoinedAt: m.JoinedAt}
}
