package app

// Key binding constants used by the pages' key handlers.
const (
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyEsc      = "esc"
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyLeft     = "left"
	KeyRight    = "right"
	KeyJ        = "j"
	KeyK        = "k"
	KeyEnter    = "enter"
	KeyNew      = "n"
	KeyEdit     = "e"
	KeyReload   = "r"
	KeySave     = "ctrl+s"
	KeyPreview  = "ctrl+p"
	KeyReloadC  = "ctrl+r"
)
