package app

import "github.com/jwulff/iotconsole/internal/api"

// DevicesLoadedMsg carries the response to a device list fetch.
type DevicesLoadedMsg struct {
	Seq   int
	List  []api.Device
	Total int64
	Err   error
}

// DeviceSavedMsg reports the outcome of a device upsert.
type DeviceSavedMsg struct {
	Err error
}

// EffectiveLoadedMsg carries a device's effective TTS configuration.
type EffectiveLoadedMsg struct {
	Seq int
	TTS *api.EffectiveTTS
	Err error
}

// DeviceTTSSavedMsg reports the outcome of a device TTS override.
type DeviceTTSSavedMsg struct {
	Err error
}

// VoicesLoadedMsg carries the voice catalog for one provider.
type VoicesLoadedMsg struct {
	Seq      int
	Provider string
	Voices   []api.Voice
	Err      error
}

// PreviewDoneMsg carries the sample URL produced by a preview request.
type PreviewDoneMsg struct {
	Seq int
	URL string
	Err error
}

// AppTTSSavedMsg reports the outcome of an app TTS assignment.
type AppTTSSavedMsg struct {
	Err error
}
