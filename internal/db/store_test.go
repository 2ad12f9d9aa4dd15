package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh database whose clock advances one second per read.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func u64(v uint64) *uint64 { return &v }

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dev.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err, "schema should apply over an existing database")
	require.NoError(t, second.Close())
}

func TestUpsertDeviceCreatesThenMatchesByDeviceID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	d := &Device{SpaceID: 9, DeviceID: "abc123", Name: "Kitchen", Status: "online", AppID: u64(7)}
	require.NoError(t, store.UpsertDevice(ctx, d))
	require.NotZero(t, d.ID)
	firstID := d.ID

	again := &Device{SpaceID: 9, DeviceID: "abc123", Name: "Kitchen speaker", Status: "offline"}
	require.NoError(t, store.UpsertDevice(ctx, again))
	assert.Equal(t, firstID, again.ID, "id 0 with a known device_id updates the existing row")

	got, err := store.GetDevice(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen speaker", got.Name)
	assert.Equal(t, "offline", got.Status)
	assert.Nil(t, got.AppID, "null app id clears the binding")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	other := &Device{SpaceID: 10, DeviceID: "abc123", Name: "Elsewhere", Status: "online"}
	require.NoError(t, store.UpsertDevice(ctx, other))
	assert.NotEqual(t, firstID, other.ID, "same device_id in another space is a new row")
}

func TestUpsertDeviceByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	d := &Device{SpaceID: 9, DeviceID: "abc123", Name: "Kitchen", Status: "online"}
	require.NoError(t, store.UpsertDevice(ctx, d))

	update := &Device{ID: d.ID, SpaceID: 9, DeviceID: "abc123-renamed", Name: "Hall", Status: "blocked", Description: "moved"}
	require.NoError(t, store.UpsertDevice(ctx, update))

	got, err := store.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc123-renamed", got.DeviceID)
	assert.Equal(t, "blocked", got.Status)
	assert.Equal(t, "moved", got.Description)

	missing := &Device{ID: 999, SpaceID: 9, DeviceID: "x", Name: "x", Status: "online"}
	assert.ErrorIs(t, store.UpsertDevice(ctx, missing), ErrNotFound)
}

func TestGetDeviceNotFound(t *testing.T) {
	_, err := newTestStore(t).GetDevice(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDevices(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"lamp-1", "lamp-2", "speaker-1"} {
		require.NoError(t, store.UpsertDevice(ctx, &Device{SpaceID: 9, DeviceID: id, Name: id, Status: "online"}))
	}
	require.NoError(t, store.UpsertDevice(ctx, &Device{SpaceID: 10, DeviceID: "lamp-x", Name: "lamp-x", Status: "online"}))

	devices, total, err := store.ListDevices(ctx, DeviceFilter{SpaceID: 9, Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, devices, 3)
	assert.Equal(t, "speaker-1", devices[0].DeviceID, "newest first")

	devices, total, err = store.ListDevices(ctx, DeviceFilter{SpaceID: 9, Keyword: "lamp"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, devices, 2)

	devices, total, err = store.ListDevices(ctx, DeviceFilter{SpaceID: 9, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total, "total counts every page")
	require.Len(t, devices, 1)
	assert.Equal(t, "lamp-1", devices[0].DeviceID)

	devices, total, err = store.ListDevices(ctx, DeviceFilter{SpaceID: 404})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-1, 50, 1, 50},
		{3, 200, 3, 200},
		{2, 201, 2, 20},
		{1, -5, 1, 20},
	}
	for _, tt := range tests {
		page, size := normalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page, "page for %d/%d", tt.page, tt.size)
		assert.Equal(t, tt.wantSize, size, "size for %d/%d", tt.page, tt.size)
	}
}

func TestListVoicesScopesAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	zh, en := "zh-CN", "en-US"
	female := "female"
	voices := []Voice{
		{Provider: "doubao", Name: "Shared", VoiceCode: "d-shared", Language: &zh, Gender: &female},
		{Provider: "doubao", Name: "Space 9", VoiceCode: "d-9", SpaceID: u64(9), Language: &en},
		{Provider: "doubao", Name: "Space 10", VoiceCode: "d-10", SpaceID: u64(10)},
		{Provider: "aliyun", Name: "Ali", VoiceCode: "a-shared"},
	}
	for i := range voices {
		require.NoError(t, store.InsertVoice(ctx, &voices[i]))
	}

	got, total, err := store.ListVoices(ctx, VoiceFilter{SpaceID: u64(9), Provider: "doubao", PageSize: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	codes := []string{}
	for _, v := range got {
		codes = append(codes, v.VoiceCode)
	}
	assert.ElementsMatch(t, []string{"d-shared", "d-9"}, codes)

	got, total, err = store.ListVoices(ctx, VoiceFilter{Provider: "doubao"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total, "no space filter lists every space")
	assert.Len(t, got, 3)

	got, _, err = store.ListVoices(ctx, VoiceFilter{SpaceID: u64(9), Language: "zh-CN", Gender: "female"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d-shared", got[0].VoiceCode)
	assert.Equal(t, "system", got[0].VoiceType)
	assert.Nil(t, got[0].SpaceID)
}

func TestVoiceSampleURL(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	shared, own := "https://s/shared.mp3", "https://s/own.mp3"
	require.NoError(t, store.InsertVoice(ctx, &Voice{Provider: "doubao", Name: "A", VoiceCode: "v1", SampleURL: &shared}))
	require.NoError(t, store.InsertVoice(ctx, &Voice{Provider: "doubao", Name: "A", VoiceCode: "v1", SpaceID: u64(9), SampleURL: &own}))

	url, err := store.VoiceSampleURL(ctx, "doubao", "v1", u64(9))
	require.NoError(t, err)
	assert.Equal(t, own, url, "space entry wins over the shared one")

	url, err = store.VoiceSampleURL(ctx, "doubao", "v1", nil)
	require.NoError(t, err)
	assert.Equal(t, shared, url)

	url, err = store.VoiceSampleURL(ctx, "doubao", "unknown", u64(9))
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestTTSSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AppTTS(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.DeviceTTS(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.UpsertAppTTS(ctx, 7, TTSSetting{Provider: "aliyun", Model: "m1", Voice: "xiaoyun"}))
	require.NoError(t, store.UpsertAppTTS(ctx, 7, TTSSetting{Provider: "aliyun", Model: "m2", Voice: "xiaogang", VoiceRef: u64(3)}))
	app, err := store.AppTTS(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "m2", app.Model)
	assert.Equal(t, "xiaogang", app.Voice)
	require.NotNil(t, app.VoiceRef)
	assert.EqualValues(t, 3, *app.VoiceRef)

	require.NoError(t, store.UpsertDeviceTTS(ctx, "abc123", TTSSetting{Provider: "doubao", Model: "speech-1", Voice: "v1"}))
	require.NoError(t, store.UpsertDeviceTTS(ctx, "abc123", TTSSetting{Provider: "tencent", Model: "speech-1", Voice: "101001"}))
	dev, err := store.DeviceTTS(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "tencent", dev.Provider)
	assert.Nil(t, dev.VoiceRef)
}

func TestDeviceAppID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	appID, err := store.DeviceAppID(ctx, "abc123")
	require.NoError(t, err)
	assert.Nil(t, appID)

	require.NoError(t, store.UpsertDevice(ctx, &Device{SpaceID: 9, DeviceID: "abc123", Name: "a", Status: "online", AppID: u64(7)}))
	require.NoError(t, store.UpsertDevice(ctx, &Device{SpaceID: 10, DeviceID: "abc123", Name: "b", Status: "online", AppID: u64(8)}))

	appID, err = store.DeviceAppID(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, appID)
	assert.EqualValues(t, 8, *appID, "most recently updated binding wins")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	n, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seedVoices), n)

	n, err = store.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding a populated catalog is a no-op")

	for _, code := range []string{"doubao", "aliyun", "tencent", "minimax"} {
		_, total, err := store.ListVoices(ctx, VoiceFilter{Provider: code})
		require.NoError(t, err)
		assert.Positive(t, total, "provider %s", code)
	}
}
