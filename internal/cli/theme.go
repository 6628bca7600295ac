package cli

import "github.com/charmbracelet/lipgloss"

var (
	Success = lipgloss.Color("#00FF88")
	Error   = lipgloss.Color("#FF6B6B")
	Info    = lipgloss.Color("#87CEEB")
	Dim     = lipgloss.Color("#B0B0B0")

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error).Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(Info)
	DimStyle     = lipgloss.NewStyle().Foreground(Dim)
)
