package app

import (
	"strings"

	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/route"
	"github.com/jwulff/iotconsole/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// App assignment form field keys.
const (
	fieldAssignApp   = "app_id"
	fieldAssignModel = "model"
	fieldAssignVoice = "voice"
)

var voiceHeaders = []string{"名称", "编码", "语言", "示例", "操作"}

// appFocus tracks which part of the TTS page has keyboard focus.
type appFocus int

const (
	focusCatalog appFocus = iota
	focusAssign
)

// AppTTSPage browses the voice catalog of a provider and assigns a voice to an
// application.
type AppTTSPage struct {
	backend api.Backend
	opts    Options
	spaceID uint64

	// Catalog
	provider  int
	voices    []api.Voice
	voicesSeq int
	voicesErr string
	selected  int

	// Assignment
	form       form
	saving     bool
	notice     string
	errMessage string

	focus  appFocus
	width  int
	height int
}

// NewAppTTSPage creates the page for params.SpaceID with the default provider
// selected.
func NewAppTTSPage(params route.Params, backend api.Backend, opts Options) AppTTSPage {
	return AppTTSPage{
		backend:   backend,
		opts:      opts.withDefaults(),
		spaceID:   params.SpaceID,
		voicesSeq: 1,
		form: form{fields: []field{
			{key: fieldAssignApp, label: "AppID"},
			{key: fieldAssignModel, label: "模型", value: api.DefaultModel},
			{key: fieldAssignVoice, label: "音色", hint: "从上方列表选择或手填"},
		}},
	}
}

func (m AppTTSPage) providerCode() string {
	return api.Providers[m.provider].Code
}

// Init fetches the catalog of the default provider.
func (m AppTTSPage) Init() tea.Cmd {
	return voicesCmd(m.backend, m.opts, m.voicesSeq, m.spaceID, m.providerCode())
}

// cycleProvider moves the provider selector and re-fetches the catalog.
func (m *AppTTSPage) cycleProvider(delta int) tea.Cmd {
	n := len(api.Providers)
	m.provider = ((m.provider+delta)%n + n) % n
	m.voices = nil
	m.voicesErr = ""
	m.selected = 0
	m.voicesSeq++
	return voicesCmd(m.backend, m.opts, m.voicesSeq, m.spaceID, m.providerCode())
}

// assign submits the form. Without a usable app id nothing is sent.
func (m *AppTTSPage) assign() tea.Cmd {
	appID := parseAppID(m.form.get(fieldAssignApp))
	if appID == nil || m.saving {
		return nil
	}
	m.saving = true
	m.notice = ""
	m.errMessage = ""
	return setAppTTSCmd(m.backend, m.opts, api.SetAppTTSRequest{
		AppID:    *appID,
		Provider: m.providerCode(),
		Model:    m.form.get(fieldAssignModel),
		Voice:    m.form.get(fieldAssignVoice),
	})
}

// Update processes messages and returns the updated page and any commands.
func (m AppTTSPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case VoicesLoadedMsg:
		if msg.Seq != m.voicesSeq || msg.Provider != m.providerCode() {
			return m, nil
		}
		if msg.Err != nil {
			m.voicesErr = "音色加载失败: " + api.Describe(msg.Err)
			return m, nil
		}
		m.voicesErr = ""
		m.voices = msg.Voices
		m.selected = clamp(m.selected, len(m.voices))
		return m, nil

	case AppTTSSavedMsg:
		m.saving = false
		if msg.Err != nil {
			m.errMessage = "保存失败: " + api.Describe(msg.Err)
			return m, nil
		}
		m.notice = "已保存"
		return m, nil
	}

	return m, nil
}

func (m AppTTSPage) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC:
		return m, tea.Quit
	case KeySave:
		return m, m.assign()
	}

	if m.focus == focusAssign {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case KeyQuit, KeyEsc:
		return m, tea.Quit
	case KeyLeft:
		return m, m.cycleProvider(-1)
	case KeyRight:
		return m, m.cycleProvider(1)
	case KeyJ, KeyDown:
		if m.selected < len(m.voices)-1 {
			m.selected++
		}
		return m, nil
	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case KeyEnter:
		if m.selected < len(m.voices) {
			m.form.set(fieldAssignVoice, m.voices[m.selected].VoiceCode)
		}
		return m, nil
	case KeyTab:
		m.focus = focusAssign
		m.form.focus = 0
		return m, nil
	}
	return m, nil
}

func (m AppTTSPage) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc:
		m.focus = focusCatalog
		return m, nil
	case KeyTab, KeyDown:
		if m.form.focus == len(m.form.fields)-1 {
			m.focus = focusCatalog
			return m, nil
		}
		m.form.next()
		return m, nil
	case KeyShiftTab, KeyUp:
		if m.form.focus == 0 {
			m.focus = focusCatalog
			return m, nil
		}
		m.form.prev()
		return m, nil
	case KeyEnter:
		return m, m.assign()
	}

	if f := m.form.focused(); f != nil {
		f.handleKey(msg)
	}
	return m, nil
}

// rows returns the catalog table cells.
func (m AppTTSPage) rows() [][]string {
	rows := make([][]string, 0, len(m.voices))
	for _, v := range m.voices {
		lang := api.StringValue(v.Language)
		if lang == "" {
			lang = "-"
		}
		sample := api.StringValue(v.SampleURL)
		if sample == "" {
			sample = "-"
		}
		rows = append(rows, []string{v.Name, v.VoiceCode, lang, sample, "选择"})
	}
	return rows
}

// View renders the page.
func (m AppTTSPage) View() string {
	var sections []string

	selector := ui.DimStyle.Render("◀ ") + ui.SelectedStyle.Render(api.Providers[m.provider].Label) + ui.DimStyle.Render(" ▶")
	sections = append(sections, ui.TitleStyle.Render("TTS 音色")+"   "+selector)

	if m.voicesErr != "" {
		sections = append(sections, ui.ErrorTextStyle.Render(m.voicesErr))
	}
	selected := -1
	if m.focus == focusCatalog {
		selected = m.selected
	}
	sections = append(sections, ui.Table(voiceHeaders, m.rows(), selected))

	parts := []string{
		ui.SectionTitleStyle.Render("应用 TTS 设置"),
		"",
		m.form.view(m.focus == focusAssign),
		"",
	}
	save := ui.ButtonStyle.Render("保存")
	if m.saving {
		save = ui.DisabledButtonStyle.Render("保存中...")
	}
	switch {
	case m.errMessage != "":
		save += "  " + ui.ErrorTextStyle.Render(m.errMessage)
	case m.notice != "":
		save += "  " + ui.NoticeStyle.Render(m.notice)
	}
	parts = append(parts, save)
	sections = append(sections, ui.PanelStyle.Width(60).Render(strings.Join(parts, "\n")))

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m AppTTSPage) renderFooter() string {
	if m.focus == focusAssign {
		return footer(
			ui.Key("Tab", "下一项"),
			ui.Key("Enter/ctrl+s", "保存"),
			ui.Key("Esc", "返回列表"),
		)
	}
	return footer(
		ui.Key("←/→", "Provider"),
		ui.Key("j/k", "选择行"),
		ui.Key("Enter", "选择音色"),
		ui.Key("Tab", "编辑设置"),
		ui.Key("q", "退出"),
	)
}
