package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/route"
	"github.com/jwulff/iotconsole/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Device form field keys.
const (
	fieldDeviceID    = "device_id"
	fieldName        = "name"
	fieldAppID       = "app_id"
	fieldStatus      = "status"
	fieldDescription = "description"
)

var deviceHeaders = []string{"设备ID", "名称", "绑定应用", "状态", "操作"}

// DeviceListPage lists the hardware devices of a space and edits them in a
// modal form.
type DeviceListPage struct {
	backend api.Backend
	opts    Options
	spaceID uint64

	// List state
	list       []api.Device
	total      int64
	loading    bool
	listSeq    int
	selected   int
	errMessage string

	// Modal state
	showModal bool
	editID    uint64
	form      form
	saving    bool
	modalErr  string

	width  int
	height int
}

// NewDeviceListPage creates the page for params.SpaceID. A zero space id
// leaves the page idle.
func NewDeviceListPage(params route.Params, backend api.Backend, opts Options) DeviceListPage {
	m := DeviceListPage{
		backend: backend,
		opts:    opts.withDefaults(),
		spaceID: params.SpaceID,
		form:    newDeviceForm(),
	}
	if params.HasSpace() {
		m.loading = true
		m.listSeq = 1
	}
	return m
}

func newDeviceForm() form {
	return form{fields: []field{
		{key: fieldDeviceID, label: "设备ID"},
		{key: fieldName, label: "名称"},
		{key: fieldAppID, label: "绑定应用 AppID（可选）"},
		{key: fieldStatus, label: "状态", value: api.StatusOnline, options: api.Statuses},
		{key: fieldDescription, label: "描述"},
	}}
}

// Init fetches the device list when a space is known.
func (m DeviceListPage) Init() tea.Cmd {
	if m.spaceID == 0 {
		return nil
	}
	return listDevicesCmd(m.backend, m.opts, m.listSeq, m.spaceID)
}

// reload re-fetches the list, replacing it when the response arrives.
func (m *DeviceListPage) reload() tea.Cmd {
	if m.spaceID == 0 {
		return nil
	}
	m.loading = true
	m.listSeq++
	return listDevicesCmd(m.backend, m.opts, m.listSeq, m.spaceID)
}

// Update processes messages and returns the updated page and any commands.
func (m DeviceListPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case DevicesLoadedMsg:
		if msg.Seq != m.listSeq {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.errMessage = "加载失败: " + api.Describe(msg.Err)
			return m, nil
		}
		m.errMessage = ""
		m.list = msg.List
		m.total = msg.Total
		m.selected = clamp(m.selected, len(m.list))
		return m, nil

	case DeviceSavedMsg:
		m.saving = false
		if msg.Err != nil {
			// The modal may have been closed while the request was in flight.
			if m.showModal {
				m.modalErr = "保存失败: " + api.Describe(msg.Err)
			} else {
				m.errMessage = "保存失败: " + api.Describe(msg.Err)
			}
			return m, nil
		}
		m.showModal = false
		m.modalErr = ""
		return m, m.reload()
	}

	return m, nil
}

func (m DeviceListPage) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}
	if m.showModal {
		return m.handleModalKey(msg)
	}

	switch msg.String() {
	case KeyQuit, KeyEsc:
		return m, tea.Quit

	case KeyNew:
		m.openModal(0, nil)
		return m, nil

	case KeyEdit, KeyEnter:
		if m.selected < len(m.list) {
			d := m.list[m.selected]
			m.openModal(d.ID, &d)
		}
		return m, nil

	case KeyJ, KeyDown:
		if m.selected < len(m.list)-1 {
			m.selected++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case KeyReload:
		return m, m.reload()
	}
	return m, nil
}

func (m DeviceListPage) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc:
		m.showModal = false
		m.modalErr = ""
		return m, nil
	case KeyTab, KeyDown:
		m.form.next()
		return m, nil
	case KeyShiftTab, KeyUp:
		m.form.prev()
		return m, nil
	case KeySave, KeyEnter:
		return m, m.save()
	}

	if f := m.form.focused(); f != nil {
		f.handleKey(msg)
	}
	return m, nil
}

// openModal shows the form, blank for id 0 or filled from d.
func (m *DeviceListPage) openModal(id uint64, d *api.Device) {
	m.form = newDeviceForm()
	m.editID = id
	if d != nil {
		m.form.set(fieldDeviceID, d.DeviceID)
		m.form.set(fieldName, d.Name)
		if d.AppID != nil {
			m.form.set(fieldAppID, strconv.FormatUint(*d.AppID, 10))
		}
		m.form.set(fieldStatus, d.Status)
		m.form.set(fieldDescription, d.Description)
	}
	m.modalErr = ""
	m.showModal = true
}

// request builds the upsert payload from the form. The id is passed through
// untouched: 0 creates, anything else updates.
func (m DeviceListPage) request() api.UpsertDeviceRequest {
	return api.UpsertDeviceRequest{
		ID:          m.editID,
		SpaceID:     m.spaceID,
		DeviceID:    m.form.get(fieldDeviceID),
		Name:        m.form.get(fieldName),
		AppID:       parseAppID(m.form.get(fieldAppID)),
		Status:      m.form.get(fieldStatus),
		Description: m.form.get(fieldDescription),
	}
}

func (m *DeviceListPage) save() tea.Cmd {
	if m.spaceID == 0 || m.saving {
		return nil
	}
	m.saving = true
	m.modalErr = ""
	return upsertDeviceCmd(m.backend, m.opts, m.request())
}

// parseAppID reads an optional app id; empty, zero or malformed input is nil.
func parseAppID(s string) *uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

// rows returns the table cells for the current list.
func (m DeviceListPage) rows() [][]string {
	rows := make([][]string, 0, len(m.list))
	for _, d := range m.list {
		app := "-"
		if d.AppID != nil {
			app = strconv.FormatUint(*d.AppID, 10)
		}
		rows = append(rows, []string{d.DeviceID, d.Name, app, ui.Status(d.Status), "编辑"})
	}
	return rows
}

// View renders the page.
func (m DeviceListPage) View() string {
	var sections []string

	title := ui.TitleStyle.Render(fmt.Sprintf("AI 硬件设备（%d）", m.total))
	sections = append(sections, title+"   "+ui.ButtonStyle.Render("n 新增设备"))

	if m.errMessage != "" {
		sections = append(sections, ui.ErrorTextStyle.Render(m.errMessage))
	}

	switch {
	case m.showModal:
		sections = append(sections, m.renderModal())
	case m.loading:
		sections = append(sections, ui.SpinnerStyle.Render("Loading..."))
	default:
		sections = append(sections, ui.Table(deviceHeaders, m.rows(), m.selected))
	}

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m DeviceListPage) renderModal() string {
	title := "新增设备"
	if m.editID != 0 {
		title = "编辑设备"
	}

	parts := []string{ui.SectionTitleStyle.Render(title), "", m.form.view(true), ""}
	if m.modalErr != "" {
		parts = append(parts, ui.ErrorTextStyle.Render(m.modalErr))
	}
	save := ui.ButtonStyle.Render("保存")
	if m.saving {
		save = ui.DisabledButtonStyle.Render("保存中...")
	}
	parts = append(parts, ui.DimStyle.Render("esc 取消")+"  "+save)

	box := ui.ModalStyle.Width(56).Render(strings.Join(parts, "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, max(0, m.height-3), lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m DeviceListPage) renderFooter() string {
	if m.showModal {
		return footer(
			ui.Key("Tab", "下一项"),
			ui.Key("←/→", "切换状态"),
			ui.Key("Enter", "保存"),
			ui.Key("Esc", "取消"),
		)
	}
	return footer(
		ui.Key("n", "新增"),
		ui.Key("e", "编辑"),
		ui.Key("j/k", "选择"),
		ui.Key("r", "刷新"),
		ui.Key("q", "退出"),
	)
}
