package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Keyhole-Koro/snackPersona/internal/config"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
)

const topicsSystemPrompt = "You are a social media trend analyst."

// generateTopics asks the backend for Config.TopicCount distinct
// trending topics, falling back to the static catalog on any failure
// (spec.md §4.7 step 2).
func (e *Engine) generateTopics(ctx context.Context) []string {
	prompt := fmt.Sprintf(
		"Generate exactly %d diverse, specific trending discussion topics that people "+
			"might debate on social media right now. Cover different domains (tech, "+
			"culture, science, politics, lifestyle, etc.). Return ONLY a JSON array of "+
			"strings, e.g. [\"topic1\", \"topic2\", ...]. No markdown, no explanation.",
		e.Config.TopicCount,
	)

	response, err := e.Backend.Generate(ctx, topicsSystemPrompt, prompt)
	if err != nil || strings.TrimSpace(response) == "" {
		logging.GetLogger().Warn(ctx, "topic generation failed, using fallback topics")
		return config.DefaultTopics()
	}

	topics, ok := parseTopics(response)
	if !ok || len(topics) == 0 {
		logging.GetLogger().Warn(ctx, "topic generation response unparsable, using fallback topics")
		return config.DefaultTopics()
	}
	return topics
}

func parseTopics(response string) ([]string, bool) {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var topics []string
	if err := json.Unmarshal([]byte(text), &topics); err != nil {
		return nil, false
	}
	return topics, true
}
