package app

import (
	"context"
	"time"

	"github.com/jwulff/iotconsole/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// Defaults for Options.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultPreviewDelay   = 300 * time.Millisecond
	DevicePageSize        = 50
	VoicePageSize         = 100
)

// Options tunes page behavior.
type Options struct {
	// RequestTimeout bounds each backend call.
	RequestTimeout time.Duration
	// PreviewDelay is the quiet period before a debounced preview fires.
	PreviewDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.PreviewDelay <= 0 {
		o.PreviewDelay = DefaultPreviewDelay
	}
	return o
}

func (o Options) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.RequestTimeout)
}

// spacePtr returns nil for an absent space so the backend sees null.
func spacePtr(spaceID uint64) *uint64 {
	if spaceID == 0 {
		return nil
	}
	return api.Uint64Ptr(spaceID)
}

// listDevicesCmd fetches the first page of devices in a space.
func listDevicesCmd(b api.Backend, o Options, seq int, spaceID uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		out, err := b.ListDevices(ctx, api.ListDevicesRequest{
			SpaceID:  spaceID,
			Page:     1,
			PageSize: DevicePageSize,
		})
		if err != nil {
			return DevicesLoadedMsg{Seq: seq, Err: err}
		}
		return DevicesLoadedMsg{Seq: seq, List: out.List, Total: out.Total}
	}
}

// upsertDeviceCmd submits the device form.
func upsertDeviceCmd(b api.Backend, o Options, req api.UpsertDeviceRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		return DeviceSavedMsg{Err: b.UpsertDevice(ctx, req)}
	}
}

// effectiveCmd fetches the effective TTS configuration of a device.
func effectiveCmd(b api.Backend, o Options, seq int, deviceID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		tts, err := b.GetDeviceTTS(ctx, deviceID)
		return EffectiveLoadedMsg{Seq: seq, TTS: tts, Err: err}
	}
}

// setDeviceTTSCmd stores a device-level override.
func setDeviceTTSCmd(b api.Backend, o Options, req api.SetDeviceTTSRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		return DeviceTTSSavedMsg{Err: b.SetDeviceTTS(ctx, req)}
	}
}

// voicesCmd fetches the catalog for a (space, provider) pair.
func voicesCmd(b api.Backend, o Options, seq int, spaceID uint64, provider string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		out, err := b.ListVoices(ctx, api.ListVoicesRequest{
			SpaceID:  spacePtr(spaceID),
			Provider: provider,
			Page:     1,
			PageSize: VoicePageSize,
		})
		if err != nil {
			return VoicesLoadedMsg{Seq: seq, Provider: provider, Err: err}
		}
		return VoicesLoadedMsg{Seq: seq, Provider: provider, Voices: out.List}
	}
}

// previewCmd asks the backend for a sample of the given voice.
func previewCmd(b api.Backend, o Options, seq int, req api.PreviewRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		out, err := b.Preview(ctx, req)
		if err != nil {
			return PreviewDoneMsg{Seq: seq, Err: err}
		}
		return PreviewDoneMsg{Seq: seq, URL: out.SampleURL}
	}
}

// setAppTTSCmd stores an application's TTS assignment.
func setAppTTSCmd(b api.Backend, o Options, req api.SetAppTTSRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := o.context()
		defer cancel()
		return AppTTSSavedMsg{Err: b.SetAppTTS(ctx, req)}
	}
}
