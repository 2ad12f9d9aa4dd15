package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/db"

	"go.uber.org/zap"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

var okBody = map[string]bool{"ok": true}

// upsertDeviceResponse echoes the stored row so callers can pick up the id.
type upsertDeviceResponse struct {
	OK     bool       `json:"ok"`
	Device api.Device `json:"device"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Msg: msg})
}

// internalError logs err against the request and answers 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	var req api.ListDevicesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SpaceID == 0 {
		writeError(w, http.StatusBadRequest, "space_id required")
		return
	}

	devices, total, err := s.store.ListDevices(r.Context(), db.DeviceFilter{
		SpaceID:  req.SpaceID,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	out := api.DeviceList{List: make([]api.Device, 0, len(devices)), Total: total}
	for _, d := range devices {
		out.List = append(out.List, toAPIDevice(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertDevice(w http.ResponseWriter, r *http.Request) {
	var req api.UpsertDeviceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SpaceID == 0 || req.DeviceID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "space_id, device_id, name are required")
		return
	}
	if req.Status == "" {
		req.Status = api.StatusOnline
	}
	if !slices.Contains(api.Statuses, req.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	d := &db.Device{
		ID:          req.ID,
		SpaceID:     req.SpaceID,
		DeviceID:    req.DeviceID,
		Name:        req.Name,
		Description: req.Description,
		AppID:       req.AppID,
		Status:      req.Status,
	}
	if err := s.store.UpsertDevice(r.Context(), d); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("device %d not found", req.ID))
			return
		}
		s.internalError(w, r, err)
		return
	}
	saved, err := s.store.GetDevice(r.Context(), d.ID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.logger.Info("device saved",
		zap.Uint64("id", saved.ID),
		zap.Uint64("space_id", saved.SpaceID),
		zap.String("device_id", saved.DeviceID),
	)
	writeJSON(w, http.StatusOK, upsertDeviceResponse{OK: true, Device: toAPIDevice(*saved)})
}

func (s *Server) handleGetDeviceTTS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deviceID := q.Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id required")
		return
	}

	var appID *uint64
	if raw := q.Get("app_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid app_id %q", raw))
			return
		}
		appID = &v
	}

	eff, err := s.effective(r.Context(), deviceID, appID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eff)
}

// effective resolves the configuration in force for deviceID: the device
// override, then the app setting, then the built-in default. Without an
// explicit appID the app bound to the device is used.
func (s *Server) effective(ctx context.Context, deviceID string, appID *uint64) (api.EffectiveTTS, error) {
	dev, err := s.store.DeviceTTS(ctx, deviceID)
	switch {
	case err == nil:
		return api.EffectiveTTS{Provider: dev.Provider, Model: dev.Model, Voice: dev.Voice, Source: api.SourceDevice}, nil
	case !errors.Is(err, db.ErrNotFound):
		return api.EffectiveTTS{}, err
	}

	if appID == nil {
		if appID, err = s.store.DeviceAppID(ctx, deviceID); err != nil {
			return api.EffectiveTTS{}, err
		}
	}
	if appID != nil {
		app, err := s.store.AppTTS(ctx, *appID)
		switch {
		case err == nil:
			return api.EffectiveTTS{Provider: app.Provider, Model: app.Model, Voice: app.Voice, Source: api.SourceApp}, nil
		case !errors.Is(err, db.ErrNotFound):
			return api.EffectiveTTS{}, err
		}
	}

	return api.EffectiveTTS{
		Provider: api.DefaultProvider,
		Model:    api.DefaultModel,
		Voice:    api.DefaultVoice,
		Source:   api.SourceDefault,
	}, nil
}

func (s *Server) handleSetDeviceTTS(w http.ResponseWriter, r *http.Request) {
	var req api.SetDeviceTTSRequest
	if !decode(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id required")
		return
	}
	if !knownProvider(req.Provider) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider %q", req.Provider))
		return
	}

	setting := db.TTSSetting{Provider: req.Provider, Model: req.Model, Voice: req.Voice, VoiceRef: req.VoiceRef}
	if err := s.store.UpsertDeviceTTS(r.Context(), req.DeviceID, setting); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	var req api.ListVoicesRequest
	if !decode(w, r, &req) {
		return
	}

	voices, total, err := s.store.ListVoices(r.Context(), db.VoiceFilter{
		SpaceID:  req.SpaceID,
		Provider: req.Provider,
		Language: req.Language,
		Gender:   req.Gender,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	out := api.VoiceList{List: make([]api.Voice, 0, len(voices)), Total: total}
	for _, v := range voices {
		out.List = append(out.List, toAPIVoice(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePreview answers with the catalog sample for the voice. Synthesis of
// arbitrary text is not available locally; unknown voices get an empty URL.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req api.PreviewRequest
	if !decode(w, r, &req) {
		return
	}

	url, err := s.store.VoiceSampleURL(r.Context(), req.Provider, req.Voice, req.SpaceID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.PreviewResult{SampleURL: url})
}

func (s *Server) handleSetAppTTS(w http.ResponseWriter, r *http.Request) {
	var req api.SetAppTTSRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AppID == 0 {
		writeError(w, http.StatusBadRequest, "app_id required")
		return
	}
	if !knownProvider(req.Provider) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider %q", req.Provider))
		return
	}

	setting := db.TTSSetting{Provider: req.Provider, Model: req.Model, Voice: req.Voice, VoiceRef: req.VoiceRef}
	if err := s.store.UpsertAppTTS(r.Context(), req.AppID, setting); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func knownProvider(code string) bool {
	return slices.Contains(api.ProviderCodes(), code)
}

func toAPIDevice(d db.Device) api.Device {
	out := api.Device{
		ID:              d.ID,
		DeviceID:        d.DeviceID,
		Name:            d.Name,
		Description:     d.Description,
		AppID:           d.AppID,
		SpaceID:         d.SpaceID,
		Status:          d.Status,
		CreatedAt:       uint64(d.CreatedAt.UnixMilli()),
		UpdatedAt:       uint64(d.UpdatedAt.UnixMilli()),
		FirmwareVersion: d.FirmwareVersion,
		MacAddress:      d.MacAddress,
	}
	if d.LastPingAt != nil {
		ms := uint64(d.LastPingAt.UnixMilli())
		out.LastPingAt = &ms
	}
	return out
}

func toAPIVoice(v db.Voice) api.Voice {
	return api.Voice{
		ID:        v.ID,
		Provider:  v.Provider,
		Model:     v.Model,
		VoiceType: v.VoiceType,
		Name:      v.Name,
		VoiceCode: v.VoiceCode,
		Language:  v.Language,
		Gender:    v.Gender,
		SampleURL: v.SampleURL,
	}
}
