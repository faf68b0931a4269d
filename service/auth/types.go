package auth

import (
	"time"

	"github.com/dmitrymomot/nearby/core/session"
)

// LoginCredentials is the payload of a phone login.
type LoginCredentials struct {
	PhoneNumber      string `json:"phoneNumber" sanitize:"phone" validate:"required;phone"`
	VerificationCode string `json:"verificationCode" sanitize:"digits" validate:"required;digits"`
}

// SignupData is the payload of an account creation.
type SignupData struct {
	PhoneNumber string    `json:"phoneNumber" sanitize:"phone" validate:"required;phone"`
	DisplayName string    `json:"displayName" sanitize:"single_line,strip_html,max:50" validate:"required;min:2"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required;past"`
}

// Result is what login and signup return.
type Result struct {
	User         session.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	IsNewUser    bool         `json:"isNewUser,omitempty"`
}

type sendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" sanitize:"phone" validate:"required;phone"`
}
