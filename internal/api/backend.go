package api

import "context"

// Backend is the set of admin operations the console pages depend on.
// *Client implements it over HTTP.
type Backend interface {
	ListDevices(ctx context.Context, req ListDevicesRequest) (*DeviceList, error)
	UpsertDevice(ctx context.Context, req UpsertDeviceRequest) error
	GetDeviceTTS(ctx context.Context, deviceID string) (*EffectiveTTS, error)
	SetDeviceTTS(ctx context.Context, req SetDeviceTTSRequest) error
	ListVoices(ctx context.Context, req ListVoicesRequest) (*VoiceList, error)
	Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error)
	SetAppTTS(ctx context.Context, req SetAppTTSRequest) error
}

var _ Backend = (*Client)(nil)
