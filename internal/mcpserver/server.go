// Package mcpserver exposes the console's backend operations as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jwulff/iotconsole/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Server wraps an MCP server whose tools call an api.Backend.
type Server struct {
	backend api.Backend
	logger  *zap.Logger
	mcp     *server.MCPServer
}

// New registers every tool against backend.
func New(backend api.Backend, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		backend: backend,
		logger:  logger,
		mcp:     server.NewMCPServer("iotconsole", version, server.WithToolCapabilities(false)),
	}
	s.register()
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool("list_devices",
		mcp.WithDescription("List hardware devices registered in a space, newest first."),
		mcp.WithNumber("space_id", mcp.Required(), mcp.Description("Space id")),
		mcp.WithNumber("page", mcp.Description("1-based page, default 1")),
		mcp.WithNumber("page_size", mcp.Description("Rows per page, default 50")),
		mcp.WithString("keyword", mcp.Description("Match against device id or name")),
	), s.listDevices)

	s.mcp.AddTool(mcp.NewTool("upsert_device",
		mcp.WithDescription("Create a device (id 0 or omitted) or update the device with the given id."),
		mcp.WithNumber("space_id", mcp.Required(), mcp.Description("Space id")),
		mcp.WithString("device_id", mcp.Required(), mcp.Description("Hardware identifier")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
		mcp.WithNumber("id", mcp.Description("Row id to update; 0 creates")),
		mcp.WithNumber("app_id", mcp.Description("Bound application id; 0 or omitted unbinds")),
		mcp.WithString("status", mcp.Description("online, offline, pairing or blocked"), mcp.Enum(api.Statuses...)),
		mcp.WithString("description", mcp.Description("Free text")),
	), s.upsertDevice)

	s.mcp.AddTool(mcp.NewTool("get_device_tts",
		mcp.WithDescription("Get the TTS configuration in force for a device and where it comes from (device, app or default)."),
		mcp.WithString("device_id", mcp.Required(), mcp.Description("Hardware identifier")),
	), s.getDeviceTTS)

	s.mcp.AddTool(mcp.NewTool("set_device_tts",
		mcp.WithDescription("Store a device-level TTS override."),
		mcp.WithString("device_id", mcp.Required(), mcp.Description("Hardware identifier")),
		mcp.WithString("provider", mcp.Required(), mcp.Description("Provider code"), mcp.Enum(api.ProviderCodes()...)),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model name")),
		mcp.WithString("voice", mcp.Required(), mcp.Description("Voice code")),
	), s.setDeviceTTS)

	s.mcp.AddTool(mcp.NewTool("list_voices",
		mcp.WithDescription("List catalog voices of a provider visible in a space."),
		mcp.WithString("provider", mcp.Required(), mcp.Description("Provider code"), mcp.Enum(api.ProviderCodes()...)),
		mcp.WithNumber("space_id", mcp.Description("Space id; omitted means no space filter")),
		mcp.WithString("language", mcp.Description("Language filter, e.g. zh-CN")),
		mcp.WithString("gender", mcp.Description("Gender filter")),
	), s.listVoices)

	s.mcp.AddTool(mcp.NewTool("preview_tts",
		mcp.WithDescription("Get a sample audio URL for a voice."),
		mcp.WithString("provider", mcp.Required(), mcp.Description("Provider code")),
		mcp.WithString("voice", mcp.Required(), mcp.Description("Voice code")),
		mcp.WithString("model", mcp.Description("Model name, default "+api.DefaultModel)),
		mcp.WithString("text", mcp.Description("Text to speak, default "+api.PreviewText)),
		mcp.WithNumber("space_id", mcp.Description("Space id")),
	), s.previewTTS)

	s.mcp.AddTool(mcp.NewTool("set_app_tts",
		mcp.WithDescription("Assign a provider, model and voice to an application."),
		mcp.WithNumber("app_id", mcp.Required(), mcp.Description("Application id")),
		mcp.WithString("provider", mcp.Required(), mcp.Description("Provider code"), mcp.Enum(api.ProviderCodes()...)),
		mcp.WithString("voice", mcp.Required(), mcp.Description("Voice code")),
		mcp.WithString("model", mcp.Description("Model name, default "+api.DefaultModel)),
	), s.setAppTTS)
}

// optionalID reads a positive integer argument; absent or non-positive is nil.
func optionalID(req mcp.CallToolRequest, key string) *uint64 {
	v := req.GetInt(key, 0)
	if v <= 0 {
		return nil
	}
	id := uint64(v)
	return &id
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// backendError turns a failed call into a tool error the model can read.
func (s *Server) backendError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool call failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %s", tool, api.Describe(err)))
}

func (s *Server) listDevices(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID := optionalID(req, "space_id")
	if spaceID == nil {
		return mcp.NewToolResultError("space_id is required"), nil
	}

	list, err := s.backend.ListDevices(ctx, api.ListDevicesRequest{
		SpaceID:  *spaceID,
		Page:     req.GetInt("page", 1),
		PageSize: req.GetInt("page_size", 50),
		Keyword:  req.GetString("keyword", ""),
	})
	if err != nil {
		return s.backendError("list_devices", err), nil
	}
	return jsonResult(list)
}

func (s *Server) upsertDevice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID := optionalID(req, "space_id")
	if spaceID == nil {
		return mcp.NewToolResultError("space_id is required"), nil
	}
	deviceID, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := req.GetString("status", api.StatusOnline)
	if !slices.Contains(api.Statuses, status) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", status)), nil
	}

	var id uint64
	if p := optionalID(req, "id"); p != nil {
		id = *p
	}
	err = s.backend.UpsertDevice(ctx, api.UpsertDeviceRequest{
		ID:          id,
		SpaceID:     *spaceID,
		DeviceID:    deviceID,
		Name:        name,
		AppID:       optionalID(req, "app_id"),
		Status:      status,
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return s.backendError("upsert_device", err), nil
	}
	if id == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Saved device %s in space %d.", deviceID, *spaceID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated device %d (%s).", id, deviceID)), nil
}

func (s *Server) getDeviceTTS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eff, err := s.backend.GetDeviceTTS(ctx, deviceID)
	if err != nil {
		return s.backendError("get_device_tts", err), nil
	}
	return jsonResult(eff)
}

func (s *Server) setDeviceTTS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var vals [4]string
	for i, key := range []string{"device_id", "provider", "model", "voice"} {
		v, err := req.RequireString(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		vals[i] = v
	}

	err := s.backend.SetDeviceTTS(ctx, api.SetDeviceTTSRequest{
		DeviceID: vals[0],
		Provider: vals[1],
		Model:    vals[2],
		Voice:    vals[3],
	})
	if err != nil {
		return s.backendError("set_device_tts", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Device %s now uses %s/%s/%s.", vals[0], vals[1], vals[2], vals[3])), nil
}

func (s *Server) listVoices(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	provider, err := req.RequireString("provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	voices, err := s.backend.ListVoices(ctx, api.ListVoicesRequest{
		SpaceID:  optionalID(req, "space_id"),
		Provider: provider,
		Language: req.GetString("language", ""),
		Gender:   req.GetString("gender", ""),
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		return s.backendError("list_voices", err), nil
	}
	return jsonResult(voices)
}

func (s *Server) previewTTS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	provider, err := req.RequireString("provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	voice, err := req.RequireString("voice")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.backend.Preview(ctx, api.PreviewRequest{
		Provider: provider,
		Model:    req.GetString("model", api.DefaultModel),
		Voice:    voice,
		Text:     req.GetString("text", api.PreviewText),
		SpaceID:  optionalID(req, "space_id"),
	})
	if err != nil {
		return s.backendError("preview_tts", err), nil
	}
	if res.SampleURL == "" {
		return mcp.NewToolResultText("No sample available for " + voice + "."), nil
	}
	return mcp.NewToolResultText(res.SampleURL), nil
}

func (s *Server) setAppTTS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID := optionalID(req, "app_id")
	if appID == nil {
		return mcp.NewToolResultError("app_id must be a positive integer"), nil
	}
	provider, err := req.RequireString("provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	voice, err := req.RequireString("voice")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	model := req.GetString("model", api.DefaultModel)

	err = s.backend.SetAppTTS(ctx, api.SetAppTTSRequest{AppID: *appID, Provider: provider, Model: model, Voice: voice})
	if err != nil {
		return s.backendError("set_app_tts", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("App %d now uses %s/%s/%s.", *appID, provider, model, voice)), nil
}
