package api

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestLiveBackend lists devices and voices from a running backend.
// Skipped unless IOTCONSOLE_LIVE_URL is set.
func TestLiveBackend(t *testing.T) {
	base := os.Getenv("IOTCONSOLE_LIVE_URL")
	if base == "" {
		t.Skip("IOTCONSOLE_LIVE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := New(base)
	devices, err := c.ListDevices(ctx, ListDevicesRequest{SpaceID: 1, Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	t.Logf("devices: %d of %d", len(devices.List), devices.Total)

	voices, err := c.ListVoices(ctx, ListVoicesRequest{Provider: DefaultProvider, Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("list voices: %v", err)
	}
	t.Logf("voices for %s: %d", DefaultProvider, len(voices.List))
}
