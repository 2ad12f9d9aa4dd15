package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Endpoint paths, relative to the backend base URL.
const (
	PathListDevices  = "/api/iot/devices/list"
	PathUpsertDevice = "/api/iot/devices/upsert"
	PathGetDeviceTTS = "/api/iot/devices/tts/get"
	PathSetDeviceTTS = "/api/iot/devices/tts/set"
	PathListVoices   = "/api/tts/voices/list"
	PathPreview      = "/api/tts/preview"
	PathSetAppTTS    = "/api/apps/tts/set"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds a single request when no context deadline is set.
const DefaultTimeout = 15 * time.Second

// Client talks to the admin backend over HTTP. Requests are never retried.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout overrides DefaultTimeout. Non-positive durations are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithHeaders adds static headers to every request, e.g. a session cookie.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.http.SetHeaders(h) }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("backend response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("elapsed", resp.Time()),
			zap.String("request_id", resp.Request.Header.Get(RequestIDHeader)),
		)
		return nil
	})
	return c
}

// ListDevices fetches one page of devices in a space.
func (c *Client) ListDevices(ctx context.Context, req ListDevicesRequest) (*DeviceList, error) {
	var out DeviceList
	if err := c.post(ctx, PathListDevices, req, &out); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return &out, nil
}

// UpsertDevice creates (ID 0) or updates a device.
func (c *Client) UpsertDevice(ctx context.Context, req UpsertDeviceRequest) error {
	if err := c.post(ctx, PathUpsertDevice, req, nil); err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

// GetDeviceTTS fetches the effective TTS configuration for a device.
func (c *Client) GetDeviceTTS(ctx context.Context, deviceID string) (*EffectiveTTS, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("device_id", deviceID).
		Get(PathGetDeviceTTS)
	if err := c.check(resp, err); err != nil {
		return nil, fmt.Errorf("get device tts: %w", err)
	}

	var out EffectiveTTS
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("get device tts: unmarshal response: %w", err)
	}
	return &out, nil
}

// SetDeviceTTS stores a device-level TTS override.
func (c *Client) SetDeviceTTS(ctx context.Context, req SetDeviceTTSRequest) error {
	if err := c.post(ctx, PathSetDeviceTTS, req, nil); err != nil {
		return fmt.Errorf("set device tts: %w", err)
	}
	return nil
}

// ListVoices fetches the voice catalog for a provider.
func (c *Client) ListVoices(ctx context.Context, req ListVoicesRequest) (*VoiceList, error) {
	var out VoiceList
	if err := c.post(ctx, PathListVoices, req, &out); err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return &out, nil
}

// Preview requests a sample rendition of the given voice.
func (c *Client) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	var out PreviewResult
	if err := c.post(ctx, PathPreview, req, &out); err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return &out, nil
}

// SetAppTTS stores an application's TTS assignment.
func (c *Client) SetAppTTS(ctx context.Context, req SetAppTTSRequest) error {
	if err := c.post(ctx, PathSetAppTTS, req, nil); err != nil {
		return fmt.Errorf("set app tts: %w", err)
	}
	return nil
}

// post sends body as JSON and decodes a successful response into out when
// out is non-nil.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err := c.check(resp, err); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Warn("backend request failed", zap.Error(err))
		return err
	}
	if !resp.IsSuccess() {
		c.logger.Warn("backend returned error status",
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.String("request_id", resp.Request.Header.Get(RequestIDHeader)),
		)
		return &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
