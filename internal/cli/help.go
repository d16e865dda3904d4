package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = TitleStyle

	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(flagColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(argColor).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// helpEntry is one line of a help section: a styled left column plus an
// optional description and default annotation.
type helpEntry struct {
	label      string
	help       string
	defaultVal string
}

// StyledHelpPrinter returns a kong help printer rendered with lipgloss
// instead of kong's plain formatter.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render(appTitle))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Interactive listening test for sound preference profiling"))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString(fmt.Sprintf("\n  %s [flags]\n", ctx.Model.Name))

		writeSection(&sb, "Arguments:", helpArgStyle, positionalEntries(ctx))
		writeSection(&sb, "Flags:", helpFlagStyle, flagEntries(ctx))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

func writeSection(sb *strings.Builder, title string, labelStyle lipgloss.Style, entries []helpEntry) {
	if len(entries) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(labelStyle.Render(e.label))
		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}
		if e.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + e.defaultVal + ")"))
		}
		sb.WriteString("\n")
	}
}

func positionalEntries(ctx *kong.Context) []helpEntry {
	var entries []helpEntry
	for _, arg := range ctx.Model.Node.Positional {
		entries = append(entries, helpEntry{label: arg.Summary(), help: arg.Help})
	}
	return entries
}

func flagEntries(ctx *kong.Context) []helpEntry {
	entries := []helpEntry{{label: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue
		}
		entries = append(entries, helpEntry{
			label:      flagLabel(f),
			help:       f.Help,
			defaultVal: f.FormatPlaceHolder(),
		})
	}
	return entries
}

func flagLabel(f *kong.Flag) string {
	label := "--" + f.Name
	if f.Short != 0 {
		label = fmt.Sprintf("-%c, %s", f.Short, label)
	}
	if !f.IsBool() && f.PlaceHolder != "" {
		label += "=" + strings.ToUpper(f.PlaceHolder)
	}
	return label
}
