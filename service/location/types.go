package location

import (
	"encoding/json"
	"time"
)

// Realtime event names.
const (
	EventLocationUpdate      = "location-update"
	EventNearbyUserUpdate    = "nearby-user-update"
	EventUserLocationChanged = "user-location-changed"
)

// DefaultHistoryLimit is used when History is called with limit <= 0.
const DefaultHistoryLimit = 50

// Location is a position report of the signed-in user.
type Location struct {
	Latitude  float64   `json:"latitude" validate:"latitude"`
	Longitude float64   `json:"longitude" validate:"longitude"`
	Accuracy  float64   `json:"accuracy" validate:"min:0"`
	Timestamp time.Time `json:"timestamp"`
	IsCurrent bool      `json:"isCurrent"`
}

// UserLocation is a stored position of any user.
type UserLocation struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Location
}

// NearbyQuery selects users around a point. Radius is in meters.
type NearbyQuery struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Radius    float64 `json:"radius" validate:"positive"`
}

// NearbyUser is a user returned by a nearby search. Distance is in meters.
type NearbyUser struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Distance     float64   `json:"distance"`
	LastSeen     time.Time `json:"lastSeen"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

// PrivacySettings controls who sees the user on the map. MaxDistance is in meters.
type PrivacySettings struct {
	ShowOnMap    bool     `json:"showOnMap"`
	MaxDistance  float64  `json:"maxDistance" validate:"min:0"`
	AllowedUsers []string `json:"allowedUsers,omitempty"`
}

// Geofence is a named circular area. Radius is in meters.
type Geofence struct {
	Name      string  `json:"name" sanitize:"single_line,strip_html,max:100" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Radius    float64 `json:"radius" validate:"positive"`
}

// UpdateHandler receives realtime location events.
type UpdateHandler func(event string, data json.RawMessage)
