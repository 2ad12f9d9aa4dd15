package app

import (
	"strings"
	"testing"

	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/api/apitest"
	"github.com/jwulff/iotconsole/internal/route"

	tea "github.com/charmbracelet/bubbletea"
)

func appBackend() *apitest.Backend {
	b := apitest.New()
	zh := "zh-CN"
	sample := "https://cdn.example/warm.mp3"
	b.Voices["doubao"] = []api.Voice{
		{Provider: "doubao", Name: "Warm", VoiceCode: "zh_warm", Language: &zh, SampleURL: &sample},
		{Provider: "doubao", Name: "Plain", VoiceCode: "zh_plain"},
	}
	b.Voices["aliyun"] = []api.Voice{{Provider: "aliyun", Name: "Xiaoyun", VoiceCode: "xiaoyun"}}
	return b
}

func loadedAppTTS(t *testing.T, b *apitest.Backend) AppTTSPage {
	t.Helper()
	m := NewAppTTSPage(route.Params{SpaceID: 3}, b, testOpts)
	return settle(m, m.Init())
}

func TestAppTTSLoadsDefaultProvider(t *testing.T) {
	b := appBackend()
	m := loadedAppTTS(t, b)

	if len(b.VoiceCalls) != 1 {
		t.Fatalf("voice calls = %d, want 1", len(b.VoiceCalls))
	}
	req := b.VoiceCalls[0]
	if req.Provider != "doubao" || req.SpaceID == nil || *req.SpaceID != 3 {
		t.Errorf("request = %+v, want doubao in space 3", req)
	}

	rows := m.rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := []string{"Warm", "zh_warm", "zh-CN", "https://cdn.example/warm.mp3", "选择"}
	for i, cell := range want {
		if rows[0][i] != cell {
			t.Errorf("row 0 col %d = %q, want %q", i, rows[0][i], cell)
		}
	}
	if rows[1][2] != "-" || rows[1][3] != "-" {
		t.Errorf("missing language/sample should render -, got %v", rows[1])
	}
	if got := m.form.get(fieldAssignModel); got != "speech-1" {
		t.Errorf("model = %q, want speech-1", got)
	}
}

func TestAppTTSProviderCycle(t *testing.T) {
	b := appBackend()
	m := loadedAppTTS(t, b)

	m, cmd := update(m, key(tea.KeyRight))
	if m.providerCode() != "aliyun" {
		t.Fatalf("provider = %q, want aliyun", m.providerCode())
	}
	if len(m.voices) != 0 {
		t.Error("catalog should clear while the new provider loads")
	}
	m = settle(m, cmd)
	if len(b.VoiceCalls) != 2 || b.VoiceCalls[1].Provider != "aliyun" {
		t.Errorf("voice calls = %+v", b.VoiceCalls)
	}
	if len(m.voices) != 1 {
		t.Errorf("voices = %d, want 1", len(m.voices))
	}

	m, _ = update(m, key(tea.KeyLeft))
	m, _ = update(m, key(tea.KeyLeft))
	if m.providerCode() != "minimax" {
		t.Errorf("provider = %q, want wrap to minimax", m.providerCode())
	}
}

func TestAppTTSStaleCatalogIgnored(t *testing.T) {
	b := appBackend()
	m := loadedAppTTS(t, b)
	old := m.voicesSeq

	m, _ = update(m, key(tea.KeyRight))
	m, _ = update(m, VoicesLoadedMsg{Seq: old, Provider: "doubao", Voices: b.Voices["doubao"]})
	if len(m.voices) != 0 {
		t.Error("response for the previous provider should be dropped")
	}
}

func TestAppTTSSelectCopiesVoiceCode(t *testing.T) {
	m := loadedAppTTS(t, appBackend())

	m, _ = update(m, runes(KeyJ))
	m, _ = update(m, key(tea.KeyEnter))
	if got := m.form.get(fieldAssignVoice); got != "zh_plain" {
		t.Errorf("voice = %q, want zh_plain", got)
	}
}

func TestAppTTSAssign(t *testing.T) {
	b := appBackend()
	m := loadedAppTTS(t, b)

	m, _ = update(m, key(tea.KeyEnter))
	m, _ = update(m, key(tea.KeyTab))
	if m.focus != focusAssign {
		t.Fatal("tab should focus the assignment form")
	}
	m = typeText(m, "77")

	m, cmd := update(m, key(tea.KeyCtrlS))
	m = settle(m, cmd)

	if len(b.SetAppCalls) != 1 {
		t.Fatalf("assign calls = %d, want 1", len(b.SetAppCalls))
	}
	want := api.SetAppTTSRequest{AppID: 77, Provider: "doubao", Model: "speech-1", Voice: "zh_warm"}
	if b.SetAppCalls[0] != want {
		t.Errorf("request = %+v, want %+v", b.SetAppCalls[0], want)
	}
	if !strings.Contains(m.View(), "已保存") {
		t.Error("view should confirm the save")
	}
}

func TestAppTTSAssignWithoutAppIDIsNoop(t *testing.T) {
	for _, id := range []string{"", "0", "abc"} {
		b := appBackend()
		m := loadedAppTTS(t, b)
		before := b.Calls()

		m, _ = update(m, key(tea.KeyTab))
		m = typeText(m, id)
		m, cmd := update(m, key(tea.KeyCtrlS))
		if cmd != nil {
			t.Errorf("app id %q: assign should return no command", id)
		}
		settle(m, cmd)

		if got := b.Calls(); got != before {
			t.Errorf("app id %q: backend calls = %d, want %d", id, got, before)
		}
	}
}

func TestAppTTSAssignFailure(t *testing.T) {
	b := appBackend()
	b.SetAppErr = &api.StatusError{StatusCode: 500}
	m := loadedAppTTS(t, b)

	m, _ = update(m, key(tea.KeyTab))
	m = typeText(m, "5")
	m, cmd := update(m, key(tea.KeyEnter))
	m = settle(m, cmd)

	if !strings.Contains(m.errMessage, "HTTP 500") {
		t.Errorf("errMessage = %q", m.errMessage)
	}
	if m.notice != "" {
		t.Error("failure should not show the saved notice")
	}
	if m.saving {
		t.Error("saving should clear after failure")
	}
}

func TestAppTTSFormFocusCycle(t *testing.T) {
	m := loadedAppTTS(t, appBackend())

	m, _ = update(m, key(tea.KeyTab))
	m, _ = update(m, key(tea.KeyTab))
	m, _ = update(m, key(tea.KeyTab))
	if m.focus != focusAssign || m.form.focus != 2 {
		t.Fatalf("focus = %v/%d, want form field 2", m.focus, m.form.focus)
	}
	m, _ = update(m, key(tea.KeyTab))
	if m.focus != focusCatalog {
		t.Error("tab past the last field should return to the catalog")
	}

	m, _ = update(m, key(tea.KeyTab))
	m, _ = update(m, runes("q"))
	if got := m.form.get(fieldAssignApp); got != "q" {
		t.Errorf("typing in the form should not quit, app id = %q", got)
	}
	m, _ = update(m, key(tea.KeyEsc))
	if m.focus != focusCatalog {
		t.Error("esc should return to the catalog")
	}
}
