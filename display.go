package convbrowse

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dhamidi/convbrowse/conversation"
)

// TextDisplayer prints conversations for the non-interactive commands.
type TextDisplayer interface {
	DisplaySummaries(items []conversation.Summary)
	DisplaySummary(s conversation.Summary)
	DisplayMessages(msgs []conversation.Message)
	DisplayTags(tags []conversation.Tag)
	DisplayError(format string, args ...interface{})
	DisplayNotice(format string, args ...interface{})
}

// TextDisplay is a TextDisplayer writing colored text to an io.Writer.
// Colors are dropped automatically when the output is not a terminal.
type TextDisplay struct {
	out io.Writer

	id        func(a ...interface{}) string
	title     func(a ...interface{}) string
	dim       func(a ...interface{}) string
	user      func(a ...interface{}) string
	assistant func(a ...interface{}) string
	errorText func(a ...interface{}) string
}

var _ TextDisplayer = (*TextDisplay)(nil)

// NewTextDisplay returns a TextDisplay writing to out.
func NewTextDisplay(out io.Writer) *TextDisplay {
	return &TextDisplay{
		out:       out,
		id:        color.New(color.FgCyan).SprintFunc(),
		title:     color.New(color.Bold).SprintFunc(),
		dim:       color.New(color.FgHiBlack).SprintFunc(),
		user:      color.New(color.FgHiBlue, color.Bold).SprintFunc(),
		assistant: color.New(color.FgHiYellow, color.Bold).SprintFunc(),
		errorText: color.New(color.FgHiRed).SprintFunc(),
	}
}

// DisplaySummaries prints one line per conversation.
func (d *TextDisplay) DisplaySummaries(items []conversation.Summary) {
	for _, s := range items {
		d.DisplaySummary(s)
	}
}

// DisplaySummary prints a conversation's ID, title and metadata on one line.
func (d *TextDisplay) DisplaySummary(s conversation.Summary) {
	meta := []string{}
	if s.Provider != "" || s.Model != "" {
		meta = append(meta, strings.Trim(s.Provider+"/"+s.Model, "/"))
	}
	if !s.UpdatedAt.IsZero() {
		meta = append(meta, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	for _, tag := range s.Tags {
		meta = append(meta, "#"+tag.Name)
	}
	line := fmt.Sprintf("%s  %s", d.id(s.ID), d.title(s.Title))
	if len(meta) > 0 {
		line += "  " + d.dim(strings.Join(meta, " "))
	}
	fmt.Fprintln(d.out, line)
}

// DisplayMessages prints each message prefixed by its role.
func (d *TextDisplay) DisplayMessages(msgs []conversation.Message) {
	for _, m := range msgs {
		role := d.user("You")
		if m.Role == conversation.RoleAssistant {
			role = d.assistant("Assistant")
		}
		fmt.Fprintf(d.out, "%s: %s\n", role, m.Content)
	}
}

// DisplayTags prints one tag per line.
func (d *TextDisplay) DisplayTags(tags []conversation.Tag) {
	for _, t := range tags {
		if t.Color != "" {
			fmt.Fprintf(d.out, "%s  %s\n", t.Name, d.dim(t.Color))
			continue
		}
		fmt.Fprintln(d.out, t.Name)
	}
}

// DisplayError prints a formatted error message.
func (d *TextDisplay) DisplayError(format string, args ...interface{}) {
	fmt.Fprintf(d.out, "%s: %s\n", d.errorText("Error"), fmt.Sprintf(format, args...))
}

// DisplayNotice prints a dimmed informational line.
func (d *TextDisplay) DisplayNotice(format string, args ...interface{}) {
	fmt.Fprintln(d.out, d.dim(fmt.Sprintf(format, args...)))
}
