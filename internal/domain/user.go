// Package domain contains entities without logic, just meta-data
// and the few pure functions the services agree on.
package domain

import "errors"

const (
	MaxUserIDLen = 64
	MaxNameLen   = 36
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
	ErrNameTooLong   = errors.New("name too long")
)

type UserID string

// AnonymityLevel controls how much of a profile the peer may see.
type AnonymityLevel string

const (
	// AnonymityOpen exposes name and photo.
	AnonymityOpen AnonymityLevel = "open"
	// AnonymityPartial exposes the name only.
	AnonymityPartial AnonymityLevel = "partial"
	// AnonymityFull exposes nothing beyond the anonymity flags.
	AnonymityFull AnonymityLevel = "full"
)

// Profile is the state a user registers with. It is immutable for the
// lifetime of a session; re-registering replaces the whole profile.
type Profile struct {
	UserID         UserID         `json:"userId"`
	Name           string         `json:"name"`
	Photo          string         `json:"photo"`
	Anonymous      bool           `json:"isAnonymous"`
	AnonymityLevel AnonymityLevel `json:"anonymityLevel"`
}

// NewProfile validates the registration fields and normalizes the
// anonymity level. Unknown levels degrade to full anonymity.
func NewProfile(id UserID, name, photo string, anonymous bool, level AnonymityLevel) (Profile, error) {
	if id == "" {
		return Profile{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Profile{}, ErrUserIDTooLong
	}
	if len(name) > MaxNameLen {
		return Profile{}, ErrNameTooLong
	}
	switch level {
	case AnonymityOpen, AnonymityPartial, AnonymityFull:
	default:
		level = AnonymityFull
	}
	return Profile{
		UserID:         id,
		Name:           name,
		Photo:          photo,
		Anonymous:      anonymous,
		AnonymityLevel: level,
	}, nil
}

// PublicName returns the name the peer is allowed to see.
func (p Profile) PublicName() string {
	if p.Anonymous && p.AnonymityLevel == AnonymityFull {
		return ""
	}
	return p.Name
}

// PublicPhoto returns the photo reference the peer is allowed to see.
func (p Profile) PublicPhoto() string {
	if p.Anonymous && p.AnonymityLevel != AnonymityOpen {
		return ""
	}
	return p.Photo
}
