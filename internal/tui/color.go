package tui

import "github.com/charmbracelet/lipgloss"

const (
	Black     = lipgloss.Color("#000000")
	Red       = lipgloss.Color("#FF5353")
	Pink      = lipgloss.Color("205")
	Yellow    = lipgloss.Color("#DBBD70")
	Green     = lipgloss.Color("34")
	Blue      = lipgloss.Color("63")
	LightGrey = lipgloss.Color("245")
	White     = lipgloss.Color("#ffffff")
)

var (
	DebugLogLevel = Blue
	InfoLogLevel  = lipgloss.AdaptiveColor{Dark: string(LightGrey), Light: string(Green)}
	ErrorLogLevel = Red
	WarnLogLevel  = Yellow

	SelectedBackground = lipgloss.Color("110")
	SelectedForeground = Black
)
