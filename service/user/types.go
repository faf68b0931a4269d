package user

import (
	"time"

	"github.com/dmitrymomot/nearby/core/session"
)

// LookingFor values accepted by the API.
const (
	LookingForDating     = "dating"
	LookingForFriendship = "friendship"
	LookingForTrading    = "trading"
	LookingForEvents     = "events"
)

// ProfileUpdate changes profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string  `json:"displayName,omitempty" sanitize:"single_line,strip_html,max:50" validate:"min:2"`
	Bio         *string  `json:"bio,omitempty" sanitize:"user_input,max:500"`
	Interests   []string `json:"interests,omitempty" sanitize:"single_line,strip_html,max:40" validate:"max:20"`
	LookingFor  []string `json:"lookingFor,omitempty"`
	AgeMin      *int     `json:"ageMin,omitempty" validate:"between:18,120"`
	AgeMax      *int     `json:"ageMax,omitempty" validate:"between:18,120"`
	MaxDistance *float64 `json:"maxDistance,omitempty" validate:"positive"`
}

// Preferences changes notification and visibility settings. Nil fields are
// left untouched.
type Preferences struct {
	Notifications   *bool                 `json:"notifications,omitempty"`
	LocationSharing *bool                 `json:"locationSharing,omitempty"`
	ShowOnMap       *bool                 `json:"showOnMap,omitempty"`
	PrivacyLevel    *session.PrivacyLevel `json:"privacyLevel,omitempty" validate:"between:1,3"`
}

// UserUpdate changes account fields through PUT /users.
type UserUpdate struct {
	DisplayName       *string               `json:"displayName,omitempty" sanitize:"single_line,strip_html,max:50" validate:"min:2"`
	DateOfBirth       *time.Time            `json:"dateOfBirth,omitempty" validate:"past"`
	Gender            *string               `json:"gender,omitempty" sanitize:"trim_lower"`
	SexualOrientation *string               `json:"sexualOrientation,omitempty" sanitize:"trim_lower"`
	PrivacyLevel      *session.PrivacyLevel `json:"privacyLevel,omitempty" validate:"between:1,3"`
}

type reportRequest struct {
	Reason string `json:"reason" sanitize:"user_input,max:500" validate:"required"`
}

type imageResponse struct {
	ProfileImage string `json:"profileImage"`
	URL          string `json:"url"`
}
