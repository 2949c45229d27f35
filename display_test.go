package convbrowse

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/dhamidi/convbrowse/conversation"
)

func withoutColor(t *testing.T) {
	t.Helper()
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestDisplaySummary(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	d := NewTextDisplay(&buf)

	d.DisplaySummaries([]conversation.Summary{
		{ID: "c1", Title: "Hello", Provider: "openai", Model: "gpt-4o", Tags: []conversation.Tag{{Name: "work"}}},
		{ID: "c2", Title: conversation.UntitledTitle},
	})

	assert.Equal(t, "c1  Hello  openai/gpt-4o #work\nc2  Untitled conversation\n", buf.String())
}

func TestDisplayMessages(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	d := NewTextDisplay(&buf)

	d.DisplayMessages([]conversation.Message{
		{Role: conversation.RoleUser, Content: "hi"},
		{Role: conversation.RoleAssistant, Content: "hello"},
	})

	assert.Equal(t, "You: hi\nAssistant: hello\n", buf.String())
}

func TestDisplayErrorAndTags(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	d := NewTextDisplay(&buf)

	d.DisplayError("failed to load page %d", 2)
	d.DisplayTags([]conversation.Tag{{Name: "work", Color: "#fff"}, {Name: "misc"}})

	assert.Equal(t, "Error: failed to load page 2\nwork  #fff\nmisc\n", buf.String())
}
