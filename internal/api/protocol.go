// Package api provides the client and wire types for the IoT admin HTTP API:
// device registrations, device/app TTS settings and the voice catalog.
package api

// Device lifecycle statuses accepted by the backend.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusPairing = "pairing"
	StatusBlocked = "blocked"
)

// Statuses lists device statuses in display order.
var Statuses = []string{StatusOnline, StatusOffline, StatusPairing, StatusBlocked}

// Effective config sources, highest priority first.
const (
	SourceDevice  = "device"
	SourceApp     = "app"
	SourceDefault = "default"
)

// Defaults used when no device or app setting exists.
const (
	DefaultProvider = "doubao"
	DefaultModel    = "speech-1"
	DefaultVoice    = "doubao-standard"
)

// PreviewText is the sample sentence synthesized for previews.
const PreviewText = "Hello"

// Provider is a selectable TTS vendor.
type Provider struct {
	Code  string
	Label string
}

// Providers lists the TTS vendors offered in selectors.
var Providers = []Provider{
	{Code: "doubao", Label: "Doubao"},
	{Code: "aliyun", Label: "Aliyun"},
	{Code: "tencent", Label: "Tencent"},
	{Code: "minimax", Label: "MiniMax"},
}

// ProviderCodes returns the codes of Providers in order.
func ProviderCodes() []string {
	codes := make([]string, len(Providers))
	for i, p := range Providers {
		codes[i] = p.Code
	}
	return codes
}

// Device is a hardware registration inside a space.
type Device struct {
	ID              uint64  `json:"id"`
	DeviceID        string  `json:"device_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	AppID           *uint64 `json:"app_id,omitempty"`
	SpaceID         uint64  `json:"space_id"`
	Status          string  `json:"status"`
	CreatedAt       uint64  `json:"created_at,omitempty"`
	UpdatedAt       uint64  `json:"updated_at,omitempty"`
	FirmwareVersion *string `json:"firmware_version,omitempty"`
	MacAddress      *string `json:"mac_address,omitempty"`
	LastPingAt      *uint64 `json:"last_ping_at,omitempty"`
}

// ListDevicesRequest is the body of POST /api/iot/devices/list.
type ListDevicesRequest struct {
	SpaceID  uint64 `json:"space_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Keyword  string `json:"keyword,omitempty"`
}

// DeviceList is one page of devices plus the total across pages.
type DeviceList struct {
	List  []Device `json:"list"`
	Total int64    `json:"total"`
}

// UpsertDeviceRequest is the body of POST /api/iot/devices/upsert.
// ID 0 creates a device; any other ID updates that row.
type UpsertDeviceRequest struct {
	ID          uint64  `json:"id"`
	SpaceID     uint64  `json:"space_id"`
	DeviceID    string  `json:"device_id"`
	Name        string  `json:"name"`
	AppID       *uint64 `json:"app_id"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
}

// EffectiveTTS is the configuration in force for a device and the layer it
// came from.
type EffectiveTTS struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Voice    string `json:"voice"`
	Source   string `json:"source"`
}

// SetDeviceTTSRequest is the body of POST /api/iot/devices/tts/set.
type SetDeviceTTSRequest struct {
	DeviceID string  `json:"device_id"`
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Voice    string  `json:"voice"`
	VoiceRef *uint64 `json:"voice_ref,omitempty"`
}

// Voice is a catalog entry for a provider.
type Voice struct {
	ID        uint64  `json:"id,omitempty"`
	Provider  string  `json:"provider,omitempty"`
	Model     *string `json:"model,omitempty"`
	VoiceType string  `json:"voice_type,omitempty"`
	Name      string  `json:"name"`
	VoiceCode string  `json:"voice_code"`
	Language  *string `json:"language,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	SampleURL *string `json:"sample_url,omitempty"`
}

// ListVoicesRequest is the body of POST /api/tts/voices/list. A nil SpaceID
// applies no space filter.
type ListVoicesRequest struct {
	SpaceID  *uint64 `json:"space_id"`
	Provider string  `json:"provider"`
	Language string  `json:"language,omitempty"`
	Gender   string  `json:"gender,omitempty"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// VoiceList is one page of catalog voices.
type VoiceList struct {
	List  []Voice `json:"list"`
	Total int64   `json:"total"`
}

// PreviewRequest is the body of POST /api/tts/preview.
type PreviewRequest struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Voice    string  `json:"voice"`
	Text     string  `json:"text"`
	SpaceID  *uint64 `json:"space_id"`
}

// PreviewResult carries the sample audio location.
type PreviewResult struct {
	SampleURL string `json:"sample_url"`
}

// SetAppTTSRequest is the body of POST /api/apps/tts/set.
type SetAppTTSRequest struct {
	AppID    uint64  `json:"app_id"`
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Voice    string  `json:"voice"`
	VoiceRef *uint64 `json:"voice_ref,omitempty"`
}

// Uint64Ptr returns a pointer to v. Convenience for building requests.
func Uint64Ptr(v uint64) *uint64 { return &v }

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
