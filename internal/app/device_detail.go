package app

import (
	"fmt"
	"strings"

	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/debounce"
	"github.com/jwulff/iotconsole/internal/route"
	"github.com/jwulff/iotconsole/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// TTS form field keys.
const (
	fieldProvider = "provider"
	fieldModel    = "model"
	fieldVoice    = "voice"
)

// DeviceDetailPage shows a device's effective TTS configuration, saves a
// device-level override and previews the selected voice.
type DeviceDetailPage struct {
	backend  api.Backend
	opts     Options
	spaceID  uint64
	deviceID string

	// Effective config; the form is shown only when neither loading nor errored.
	loading      bool
	errMessage   string
	effective    *api.EffectiveTTS
	effectiveSeq int
	form         form

	// Voice catalog for the selected provider
	provider  string
	voices    []api.Voice
	voicesSeq int
	voicesErr string

	// Preview
	previewTimer   debounce.Timer
	previewSeq     int
	previewLoading bool
	previewURL     string
	previewErr     string

	width  int
	height int
}

// NewDeviceDetailPage creates the page for params.DeviceID within
// params.SpaceID.
func NewDeviceDetailPage(params route.Params, backend api.Backend, opts Options) DeviceDetailPage {
	m := DeviceDetailPage{
		backend:      backend,
		opts:         opts.withDefaults(),
		spaceID:      params.SpaceID,
		deviceID:     params.DeviceID,
		form:         newTTSForm(),
		provider:     api.DefaultProvider,
		voicesSeq:    1,
		previewTimer: debounce.New(),
	}
	if m.deviceID != "" {
		m.loading = true
		m.effectiveSeq = 1
	}
	return m
}

func newTTSForm() form {
	providerLabels := make(map[string]string, len(api.Providers))
	for _, p := range api.Providers {
		providerLabels[p.Code] = p.Label
	}
	f := form{fields: []field{
		{key: fieldProvider, label: "Provider", value: api.DefaultProvider, options: api.ProviderCodes(), labels: providerLabels},
		{key: fieldModel, label: "Model", value: api.DefaultModel},
		{key: fieldVoice, label: "Voice", value: api.DefaultVoice},
	}}
	setVoiceOptions(&f, nil)
	return f
}

// setVoiceOptions rebuilds the voice select from the catalog. The empty option
// stands for "no voice chosen".
func setVoiceOptions(f *form, voices []api.Voice) {
	fl := f.field(fieldVoice)
	opts := make([]string, 0, len(voices)+1)
	labels := make(map[string]string, len(voices)+1)
	opts = append(opts, "")
	labels[""] = "请选择音色"
	for _, v := range voices {
		opts = append(opts, v.VoiceCode)
		labels[v.VoiceCode] = fmt.Sprintf("%s (%s)", v.Name, v.VoiceCode)
	}
	fl.options = opts
	fl.labels = labels
}

// Init fetches the effective config and the catalog of the initial provider.
func (m DeviceDetailPage) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.deviceID != "" {
		cmds = append(cmds, effectiveCmd(m.backend, m.opts, m.effectiveSeq, m.deviceID))
	}
	cmds = append(cmds, voicesCmd(m.backend, m.opts, m.voicesSeq, m.spaceID, m.provider))
	return tea.Batch(cmds...)
}

func (m *DeviceDetailPage) fetchEffective() tea.Cmd {
	if m.deviceID == "" {
		return nil
	}
	m.loading = true
	m.errMessage = ""
	m.effectiveSeq++
	return effectiveCmd(m.backend, m.opts, m.effectiveSeq, m.deviceID)
}

// selectProvider switches the catalog provider. The old list is dropped at
// once so its voices cannot be picked while the new one loads.
func (m *DeviceDetailPage) selectProvider(p string) tea.Cmd {
	if p == m.provider {
		return nil
	}
	m.provider = p
	m.voices = nil
	m.voicesErr = ""
	setVoiceOptions(&m.form, nil)
	m.voicesSeq++
	return voicesCmd(m.backend, m.opts, m.voicesSeq, m.spaceID, m.provider)
}

// startPreview runs a preview now, superseding any scheduled one.
func (m *DeviceDetailPage) startPreview() tea.Cmd {
	m.previewTimer.Cancel()
	m.previewLoading = true
	m.previewURL = ""
	m.previewErr = ""
	m.previewSeq++
	return previewCmd(m.backend, m.opts, m.previewSeq, api.PreviewRequest{
		Provider: m.form.get(fieldProvider),
		Model:    m.form.get(fieldModel),
		Voice:    m.form.get(fieldVoice),
		Text:     api.PreviewText,
		SpaceID:  spacePtr(m.spaceID),
	})
}

func (m *DeviceDetailPage) save() tea.Cmd {
	m.errMessage = ""
	return setDeviceTTSCmd(m.backend, m.opts, api.SetDeviceTTSRequest{
		DeviceID: m.deviceID,
		Provider: m.form.get(fieldProvider),
		Model:    m.form.get(fieldModel),
		Voice:    m.form.get(fieldVoice),
	})
}

// Update processes messages and returns the updated page and any commands.
func (m DeviceDetailPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case EffectiveLoadedMsg:
		if msg.Seq != m.effectiveSeq {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.errMessage = api.Describe(msg.Err)
			return m, nil
		}
		m.effective = msg.TTS
		m.form.set(fieldProvider, msg.TTS.Provider)
		m.form.set(fieldModel, msg.TTS.Model)
		m.form.set(fieldVoice, msg.TTS.Voice)
		return m, m.selectProvider(msg.TTS.Provider)

	case VoicesLoadedMsg:
		if msg.Seq != m.voicesSeq || msg.Provider != m.provider {
			return m, nil
		}
		if msg.Err != nil {
			m.voicesErr = "音色加载失败: " + api.Describe(msg.Err)
			return m, nil
		}
		m.voicesErr = ""
		m.voices = msg.Voices
		setVoiceOptions(&m.form, m.voices)
		return m, nil

	case DeviceTTSSavedMsg:
		if msg.Err != nil {
			m.errMessage = "保存失败: " + api.Describe(msg.Err)
			return m, nil
		}
		return m, m.fetchEffective()

	case debounce.FireMsg:
		if m.previewTimer.Fired(msg) {
			return m, m.startPreview()
		}
		return m, nil

	case PreviewDoneMsg:
		if msg.Seq != m.previewSeq {
			return m, nil
		}
		m.previewLoading = false
		if msg.Err != nil {
			m.previewErr = "预听失败: " + api.Describe(msg.Err)
			return m, nil
		}
		m.previewURL = msg.URL
		return m, nil
	}

	return m, nil
}

func (m DeviceDetailPage) formVisible() bool {
	return !m.loading && m.errMessage == ""
}

func (m DeviceDetailPage) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, KeyEsc:
		return m, tea.Quit
	case KeyReloadC:
		return m, m.fetchEffective()
	}

	if !m.formVisible() {
		switch msg.String() {
		case KeyQuit:
			return m, tea.Quit
		case KeyReload:
			return m, m.fetchEffective()
		}
		return m, nil
	}

	switch msg.String() {
	case KeyTab, KeyDown:
		m.form.next()
		return m, nil
	case KeyShiftTab, KeyUp:
		m.form.prev()
		return m, nil
	case KeySave:
		return m, m.save()
	case KeyPreview:
		if m.previewLoading {
			return m, nil
		}
		return m, m.startPreview()
	}

	f := m.form.focused()
	if f == nil || !f.handleKey(msg) {
		return m, nil
	}

	var cmds []tea.Cmd
	if f.key == fieldProvider {
		cmds = append(cmds, m.selectProvider(f.value))
	}
	cmds = append(cmds, m.previewTimer.Schedule(m.opts.PreviewDelay))
	return m, tea.Batch(cmds...)
}

// View renders the page: a loading line, an error, or the full form.
func (m DeviceDetailPage) View() string {
	var sections []string

	crumb := ui.BreadcrumbStyle.Render(fmt.Sprintf("AI 硬件 (/space/%d/hardware)", m.spaceID)) +
		ui.DimStyle.Render(" / ") + m.deviceID
	sections = append(sections, crumb)
	sections = append(sections, ui.TitleStyle.Render("设备详情"))

	switch {
	case m.loading:
		sections = append(sections, ui.SpinnerStyle.Render("加载中..."))
	case m.errMessage != "":
		sections = append(sections, ui.ErrorTextStyle.Render(m.errMessage))
	default:
		sections = append(sections, m.renderSettings())
	}

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m DeviceDetailPage) renderSettings() string {
	source := ""
	if m.effective != nil {
		source = m.effective.Source
	}

	parts := []string{
		ui.SectionTitleStyle.Render("TTS 设置"),
		ui.DimStyle.Render("生效来源：" + source),
		"",
		m.form.view(true),
	}
	if m.voicesErr != "" {
		parts = append(parts, ui.ErrorTextStyle.Render(m.voicesErr))
	}

	preview := ui.ButtonStyle.Render("预听")
	if m.previewLoading {
		preview = ui.DisabledButtonStyle.Render("预听中...")
	}
	actions := ui.ButtonStyle.Render("保存") + " " + preview
	switch {
	case m.previewErr != "":
		actions += "  " + ui.ErrorTextStyle.Render(m.previewErr)
	case m.previewURL != "":
		actions += "  " + ui.LinkStyle.Render("打开样音 "+m.previewURL)
	}
	parts = append(parts, "", actions)

	return ui.PanelStyle.Render(strings.Join(parts, "\n"))
}

func (m DeviceDetailPage) renderFooter() string {
	if !m.formVisible() {
		return footer(ui.Key("r", "重新加载"), ui.Key("q", "退出"))
	}
	return footer(
		ui.Key("Tab", "下一项"),
		ui.Key("←/→", "选择"),
		ui.Key("ctrl+s", "保存"),
		ui.Key("ctrl+p", "预听"),
		ui.Key("ctrl+r", "刷新"),
		ui.Key("esc", "退出"),
	)
}
