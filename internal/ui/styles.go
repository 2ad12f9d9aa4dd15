// Package ui holds the lipgloss styles and table rendering shared by the
// console pages.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorBlue    = lipgloss.Color("#3B82F6")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by the pages.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite)

	BreadcrumbStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Underline(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FieldStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	FocusedFieldStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCyan).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorDimGray).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	HeaderCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	SelectedCellStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Bold(true).
				Padding(0, 1)
)

// statusStyles colors a device status value.
var statusStyles = map[string]lipgloss.Style{
	"online":  lipgloss.NewStyle().Foreground(ColorGreen),
	"offline": lipgloss.NewStyle().Foreground(ColorGray),
	"pairing": lipgloss.NewStyle().Foreground(ColorYellow),
	"blocked": lipgloss.NewStyle().Foreground(ColorRed),
}

// Status renders a device status with its color.
func Status(s string) string {
	if st, ok := statusStyles[s]; ok {
		return st.Render(s)
	}
	return s
}

// Key renders a footer key hint such as "n 新增设备".
func Key(key, desc string) string {
	return FooterKeyStyle.Render(key) + FooterDescStyle.Render(" "+desc)
}
