package session

import (
	"slices"
	"time"
)

// Credential is the opaque bearer token authorizing API calls.
// Its expiry is never inspected; the API reports it with a 401.
type Credential string

// IsZero reports whether no credential is present.
func (c Credential) IsZero() bool {
	return c == ""
}

// String returns a redacted form suitable for logs.
func (c Credential) String() string {
	if len(c) <= 8 {
		return "[redacted]"
	}
	return string(c[:4]) + "…" + string(c[len(c)-4:])
}

// PrivacyLevel controls who can see a user: 1 public, 2 friends, 3 private.
type PrivacyLevel int

const (
	PrivacyPublic  PrivacyLevel = 1
	PrivacyFriends PrivacyLevel = 2
	PrivacyPrivate PrivacyLevel = 3
)

// Valid reports whether the level is one of the known values.
func (p PrivacyLevel) Valid() bool {
	return p >= PrivacyPublic && p <= PrivacyPrivate
}

// Profile holds a user's bio and matching preferences.
type Profile struct {
	Bio         string   `json:"bio,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	LookingFor  []string `json:"lookingFor,omitempty"`
	AgeMin      int      `json:"ageMin,omitempty"`
	AgeMax      int      `json:"ageMax,omitempty"`
	MaxDistance float64  `json:"maxDistance,omitempty"` // kilometers
}

// User is the identity of the signed-in account.
type User struct {
	ID                string       `json:"id"`
	PhoneNumber       string       `json:"phoneNumber"`
	DisplayName       string       `json:"displayName,omitempty"`
	ProfileImage      string       `json:"profileImage,omitempty"`
	DateOfBirth       *time.Time   `json:"dateOfBirth,omitempty"`
	Gender            string       `json:"gender,omitempty"`
	SexualOrientation string       `json:"sexualOrientation,omitempty"`
	IsActive          bool         `json:"isActive"`
	PrivacyLevel      PrivacyLevel `json:"privacyLevel"`
	LastSeen          time.Time    `json:"lastSeen"`
	Profile           *Profile     `json:"profile,omitempty"`
}

func (u User) clone() User {
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		u.DateOfBirth = &dob
	}
	if u.Profile != nil {
		p := *u.Profile
		p.Interests = slices.Clone(p.Interests)
		p.LookingFor = slices.Clone(p.LookingFor)
		u.Profile = &p
	}
	return u
}

// Session is the process-wide authentication state.
type Session struct {
	IsAuthenticated bool
	Credential      Credential
	RefreshToken    string
	User            *User
}

// IsZero reports whether the session is in its empty state.
func (s Session) IsZero() bool {
	return !s.IsAuthenticated && s.Credential.IsZero() && s.RefreshToken == "" && s.User == nil
}

func (s Session) clone() Session {
	if s.User != nil {
		u := s.User.clone()
		s.User = &u
	}
	return s
}
