package scope

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	headingColor = "#7C3AED" // Purple
	labelColor   = "#10B981" // Green
	dimColor     = "#6B7280" // Gray
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(headingColor)).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(labelColor))

	followUpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(headingColor)).
			Italic(true)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(dimColor))
)

// Render formats a classified reply for the terminal. width bounds the
// effort-estimation table; zero means unbounded.
func Render(r Rendering, width int) string {
	switch r.Kind {
	case KindWorkScope:
		return renderDocument(r.Doc, width, true)
	case KindTechStack:
		return renderDocument(r.Doc, width, false)
	case KindStructured:
		return renderFields(r.Fields)
	default:
		return r.Text
	}
}

func renderDocument(doc *Document, width int, full bool) string {
	var b strings.Builder

	if doc.Overview != "" {
		b.WriteString(headingStyle.Render("Overview"))
		b.WriteString("\n")
		b.WriteString(doc.Overview)
		b.WriteString("\n")
	}

	for _, sec := range doc.Sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render(sec.Title))
		b.WriteString("\n")
		b.WriteString(sec.Content)
		b.WriteString("\n")
	}

	if len(doc.TechStack) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render("Tech Stack"))
		b.WriteString("\n")
		b.WriteString(renderFields(stackFields(doc.TechStack)))
		b.WriteString("\n")
	}

	if full && doc.EffortTable != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render("Effort Estimation"))
		b.WriteString("\n")
		b.WriteString(renderTable(doc.EffortTable, width))
		b.WriteString("\n")
	}

	if doc.FollowUpQuestion != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(followUpStyle.Render(doc.FollowUpQuestion))
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderTable(et *EffortTable, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(et.Headers...).
		Rows(et.Rows...)
	if width > 0 {
		t = t.Width(width)
	}
	return t.String()
}

func renderFields(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, labelStyle.Render(f.Key+": ")+f.Value)
	}
	return strings.Join(lines, "\n")
}

func stackFields(stack map[string]string) []Field {
	keys := make([]string, 0, len(stack))
	for k := range stack {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: stack[k]})
	}
	return fields
}
