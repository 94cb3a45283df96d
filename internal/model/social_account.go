package model

import (
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
)

// Platforms is the order upload actions are offered in.
var Platforms = []Platform{PlatformYouTube, PlatformInstagram, PlatformLinkedIn}

func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformInstagram, PlatformLinkedIn:
		return true
	}
	return false
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// SocialAccount is a per-platform credential placeholder. There is at most one
// per (owner, platform) and Connected is never set by this service.
type SocialAccount struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Platform  Platform  `db:"platform" json:"platform"`
	Username  string    `db:"username" json:"username"`
	AccountID *string   `db:"account_id" json:"account_id,omitempty"`
	Connected bool      `db:"is_connected" json:"is_connected"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
