// Package db stores devices, the voice catalog and TTS settings in SQLite for
// the reference backend.
package db

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Device is a hardware registration within a space.
type Device struct {
	ID              uint64
	SpaceID         uint64
	DeviceID        string
	Name            string
	Description     string
	AppID           *uint64
	Status          string
	FirmwareVersion *string
	MacAddress      *string
	LastPingAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Voice is a catalog entry. A nil SpaceID marks a voice shared by every space.
type Voice struct {
	ID        uint64
	SpaceID   *uint64
	Provider  string
	Model     *string
	VoiceType string
	Name      string
	VoiceCode string
	Language  *string
	Gender    *string
	SampleURL *string
	CreatedAt time.Time
}

// TTSSetting is a provider/model/voice triple stored for an app or a device.
type TTSSetting struct {
	Provider  string
	Model     string
	Voice     string
	VoiceRef  *uint64
	UpdatedAt time.Time
}

// DeviceFilter selects one page of devices.
type DeviceFilter struct {
	SpaceID  uint64
	Keyword  string
	Page     int
	PageSize int
}

// VoiceFilter selects one page of voices. Empty fields do not filter.
type VoiceFilter struct {
	SpaceID  *uint64
	Provider string
	Language string
	Gender   string
	Page     int
	PageSize int
}
