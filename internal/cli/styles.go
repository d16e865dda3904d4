package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "SoundCheck 🎧"

// Palette shared by the help printer and the version/error output.
var (
	primaryColor = lipgloss.Color("#7D56F4") // SoundCheck violet
	accentColor  = lipgloss.Color("#FFA500")
	flagColor    = lipgloss.Color("#00AA00")
	argColor     = lipgloss.Color("#00AAAA")
	errorColor   = lipgloss.Color("#D7005F")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints the styled version banner.
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(appTitle))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError writes a styled error line to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
