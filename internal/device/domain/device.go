package domain

import "time"

// DeviceToken is a Firebase Cloud Messaging token registered for reminder pushes
type DeviceToken struct {
	ID         string    `json:"id"`
	Token      string    `json:"-"` // Don't expose token in JSON
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
