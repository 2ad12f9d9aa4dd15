// Package apitest provides an in-memory api.Backend that records calls.
package apitest

import (
	"context"
	"sync"

	"github.com/jwulff/iotconsole/internal/api"
)

// Backend is a scripted api.Backend. Set the response and error fields before
// use; every call is recorded in order.
type Backend struct {
	mu sync.Mutex

	Devices    api.DeviceList
	DevicesErr error
	UpsertErr  error

	Effective    api.EffectiveTTS
	EffectiveErr error
	SetTTSErr    error

	// Voices maps provider code to its catalog.
	Voices    map[string][]api.Voice
	VoicesErr error

	PreviewURL string
	PreviewErr error

	SetAppErr error

	DeviceListCalls []api.ListDevicesRequest
	UpsertCalls     []api.UpsertDeviceRequest
	GetTTSCalls     []string
	SetTTSCalls     []api.SetDeviceTTSRequest
	VoiceCalls      []api.ListVoicesRequest
	PreviewCalls    []api.PreviewRequest
	SetAppCalls     []api.SetAppTTSRequest
}

var _ api.Backend = (*Backend)(nil)

// New returns a Backend with an empty catalog and the default effective config.
func New() *Backend {
	return &Backend{
		Effective: api.EffectiveTTS{
			Provider: api.DefaultProvider,
			Model:    api.DefaultModel,
			Voice:    api.DefaultVoice,
			Source:   api.SourceDefault,
		},
		Voices: map[string][]api.Voice{},
	}
}

func (b *Backend) ListDevices(_ context.Context, req api.ListDevicesRequest) (*api.DeviceList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DeviceListCalls = append(b.DeviceListCalls, req)
	if b.DevicesErr != nil {
		return nil, b.DevicesErr
	}
	out := api.DeviceList{List: append([]api.Device(nil), b.Devices.List...), Total: b.Devices.Total}
	return &out, nil
}

func (b *Backend) UpsertDevice(_ context.Context, req api.UpsertDeviceRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.UpsertCalls = append(b.UpsertCalls, req)
	return b.UpsertErr
}

func (b *Backend) GetDeviceTTS(_ context.Context, deviceID string) (*api.EffectiveTTS, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.GetTTSCalls = append(b.GetTTSCalls, deviceID)
	if b.EffectiveErr != nil {
		return nil, b.EffectiveErr
	}
	out := b.Effective
	return &out, nil
}

func (b *Backend) SetDeviceTTS(_ context.Context, req api.SetDeviceTTSRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SetTTSCalls = append(b.SetTTSCalls, req)
	return b.SetTTSErr
}

func (b *Backend) ListVoices(_ context.Context, req api.ListVoicesRequest) (*api.VoiceList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.VoiceCalls = append(b.VoiceCalls, req)
	if b.VoicesErr != nil {
		return nil, b.VoicesErr
	}
	list := append([]api.Voice(nil), b.Voices[req.Provider]...)
	return &api.VoiceList{List: list, Total: int64(len(list))}, nil
}

func (b *Backend) Preview(_ context.Context, req api.PreviewRequest) (*api.PreviewResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PreviewCalls = append(b.PreviewCalls, req)
	if b.PreviewErr != nil {
		return nil, b.PreviewErr
	}
	return &api.PreviewResult{SampleURL: b.PreviewURL}, nil
}

func (b *Backend) SetAppTTS(_ context.Context, req api.SetAppTTSRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SetAppCalls = append(b.SetAppCalls, req)
	return b.SetAppErr
}

// Calls returns the total number of recorded calls.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.DeviceListCalls) + len(b.UpsertCalls) + len(b.GetTTSCalls) +
		len(b.SetTTSCalls) + len(b.VoiceCalls) + len(b.PreviewCalls) + len(b.SetAppCalls)
}
