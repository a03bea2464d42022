package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFA500")).
				MarginTop(1)

	helpCommandStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	helpFlagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	helpArgStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA")).Bold(true)
	helpDefaultStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

// helpRow is one line of a help section: a styled name column, its help
// text and an optional default.
type helpRow struct {
	name       string
	help       string
	defaultVal string
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// Root help lists commands; command help lists that command's arguments.
// Application flags are shown in both.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		root := ctx.Model.Node
		node := ctx.Selected()
		if node == nil {
			node = root
		}

		var sb strings.Builder
		sb.WriteString(helpTitleStyle.Render("Clearscribe"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Court-reporting audio analysis, enhancement and transcription"))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		fmt.Fprintf(&sb, "\n  %s\n", usageLine(ctx.Model.Name, node))
		if node != root && node.Help != "" {
			fmt.Fprintf(&sb, "\n  %s\n", node.Help)
		}

		writeHelpSection(&sb, "Commands:", helpCommandStyle, commandRows(node))
		writeHelpSection(&sb, "Arguments:", helpArgStyle, argumentRows(node))
		writeHelpSection(&sb, "Flags:", helpFlagStyle, flagRows(root, node))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

func usageLine(app string, node *kong.Node) string {
	if node.Parent == nil {
		return fmt.Sprintf("%s [flags] <command> ...", app)
	}
	parts := []string{app, node.Name, "[flags]"}
	for _, arg := range node.Positional {
		parts = append(parts, arg.Summary())
	}
	return strings.Join(parts, " ")
}

// writeHelpSection renders rows with the name column padded to a common
// width. Empty sections are skipped.
func writeHelpSection(sb *strings.Builder, title string, style lipgloss.Style, rows []helpRow) {
	if len(rows) == 0 {
		return
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r.name))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, r := range rows {
		line := "  " + style.Render(r.name)
		if r.help != "" || r.defaultVal != "" {
			line += strings.Repeat(" ", width-len(r.name)+2) + r.help
		}
		if r.defaultVal != "" {
			line += " " + helpDefaultStyle.Render("(default: "+r.defaultVal+")")
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}
}

func commandRows(node *kong.Node) []helpRow {
	var rows []helpRow
	for _, child := range node.Children {
		if !child.Hidden {
			rows = append(rows, helpRow{name: child.Name, help: child.Help})
		}
	}
	return rows
}

func argumentRows(node *kong.Node) []helpRow {
	var rows []helpRow
	for _, arg := range node.Positional {
		rows = append(rows, helpRow{name: arg.Summary(), help: arg.Help})
	}
	return rows
}

// flagRows lists the application flags followed by those of the selected
// command.
func flagRows(root, node *kong.Node) []helpRow {
	rows := []helpRow{{name: "-h, --help", help: "Show context-sensitive help."}}

	flags := root.Flags
	if node != root {
		flags = append(append([]*kong.Flag(nil), root.Flags...), node.Flags...)
	}

	for _, f := range flags {
		if f.Name == "help" || f.Hidden {
			continue
		}

		name := "--" + f.Name
		if f.Short != 0 {
			name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() {
			name += "=" + strings.ToUpper(f.FormatPlaceHolder())
		}

		row := helpRow{name: name, help: f.Help}
		if f.HasDefault {
			row.defaultVal = f.Default
		}
		rows = append(rows, row)
	}
	return rows
}
