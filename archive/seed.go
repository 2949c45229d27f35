package archive

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dhamidi/convbrowse/conversation"
)

var seedModels = []struct{ provider, model string }{
	{"openai", "gpt-4o"},
	{"openai", "gpt-4o-mini"},
	{"anthropic", "claude-sonnet-4"},
	{"google", "gemini-2.5-pro"},
	{"ollama", "llama3.1"},
}

var seedTopics = []string{
	"Refactoring the payment service",
	"Weekly planning",
	"SQL index tuning",
	"Travel itinerary for Lisbon",
	"Explain goroutine leaks",
	"Kubernetes readiness probes",
	"Draft release notes",
	"Debugging flaky tests",
	"",
	"Recipe ideas for a dinner party",
}

var seedTags = []conversation.Tag{
	{ID: "tag-work", Name: "work", Color: "#3b82f6"},
	{ID: "tag-personal", Name: "personal", Color: "#22c55e"},
	{ID: "tag-research", Name: "research", Color: "#a855f7"},
}

// Seed writes n generated conversations for userID. Timestamps are spread
// backwards from now so the newest conversation is listed first.
func (a *DB) Seed(ctx context.Context, userID string, n int, rng *rand.Rand) error {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	base := now().UTC().Truncate(time.Second)

	for i := 0; i < n; i++ {
		created := base.Add(-time.Duration(n-i) * time.Hour)
		m := seedModels[rng.Intn(len(seedModels))]
		topic := seedTopics[rng.Intn(len(seedTopics))]
		title := topic
		if title != "" {
			title = fmt.Sprintf("%s #%d", topic, i+1)
		}

		conv := &Conversation{
			Summary: conversation.Summary{
				ID:        ulid.Make().String(),
				UserID:    userID,
				Title:     title,
				Provider:  m.provider,
				Model:     m.model,
				CreatedAt: created,
				UpdatedAt: created.Add(time.Duration(rng.Intn(50)) * time.Minute),
			},
		}
		if rng.Intn(2) == 0 {
			conv.Tags = []conversation.Tag{seedTags[rng.Intn(len(seedTags))]}
		}

		turns := 1 + rng.Intn(3)
		for t := 0; t < turns; t++ {
			at := created.Add(time.Duration(2*t) * time.Minute)
			conv.Messages = append(conv.Messages,
				conversation.Message{
					ID:        ulid.Make().String(),
					Role:      conversation.RoleUser,
					Content:   fmt.Sprintf("Question %d about %s", t+1, topicOrDefault(topic)),
					CreatedAt: at,
				},
				conversation.Message{
					ID:        ulid.Make().String(),
					Role:      conversation.RoleAssistant,
					Content:   fmt.Sprintf("Answer %d from %s", t+1, m.model),
					CreatedAt: at.Add(time.Minute),
				},
			)
		}

		if err := a.Save(ctx, conv); err != nil {
			return fmt.Errorf("archive: failed to seed conversation %d: %w", i, err)
		}
	}
	return nil
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return "something"
	}
	return topic
}
