// Package prompts assembles the message list for a persona conversation
// turn. The persona prompt rides in the system message; everything the
// model must treat as ground truth or imitation material rides in one
// developer message, separated into a facts block, a style block, and a
// retrieved-context block.
package prompts

import (
	"fmt"
	"strings"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

const (
	maxFactItems        = 20
	maxFactDescriptions = 5

	blockSeparator = "\n\n---\n\n"
)

// antiCopyRules keep the style exemplars from bleeding verbatim into
// replies.
var antiCopyRules = []string{
	"Never quote the excerpts directly.",
	"Never mention the excerpts, letters, or any source material.",
	"Do not reuse distinctive phrases of more than three consecutive words.",
	"Imitate tone, rhythm, and word choice only.",
}

// FactsBlock renders the museum record as the authoritative source,
// instructing the model to admit uncertainty for anything not listed.
// An empty record yields an empty block.
func FactsBlock(meta models.CachedMetadata) string {
	if meta.Facts.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("MUSEUM METADATA (ground truth, use as authoritative source):\n")
	b.WriteString("If a user asks about techniques or materials and the answer is not present here, say you are not sure.\n")
	fmt.Fprintf(&b, "- objectNumber: %s\n", meta.ObjectNumber)
	fmt.Fprintf(&b, "- title: %s\n", deref(meta.Facts.Title))
	fmt.Fprintf(&b, "- artist: %s\n", deref(meta.Facts.Artist))
	fmt.Fprintf(&b, "- date: %s\n", deref(meta.Facts.Date))
	fmt.Fprintf(&b, "- classified_as: %s\n", strings.Join(capped(meta.Facts.ClassifiedAs, maxFactItems), ", "))
	fmt.Fprintf(&b, "- materials: %s\n", strings.Join(capped(meta.Facts.Materials, maxFactItems), ", "))
	fmt.Fprintf(&b, "- dimensions: %s\n", strings.Join(capped(meta.Facts.Dimensions, maxFactItems), ", "))
	fmt.Fprintf(&b, "- descriptions: %s", strings.Join(capped(meta.Facts.Descriptions, maxFactDescriptions), " | "))
	return b.String()
}

// StyleBlock renders the anti-copy rules and the numbered exemplars.
// No exemplars yields an empty block.
func StyleBlock(exemplars []string) string {
	if len(exemplars) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Use the following excerpts ONLY to imitate writing style (tone, rhythm, word choice).\n")
	b.WriteString("Do not copy text directly.\n\nANTI-COPY RULES:\n")
	for _, rule := range antiCopyRules {
		fmt.Fprintf(&b, "- %s\n", rule)
	}
	b.WriteString("\nSTYLE EXAMPLES:")
	for i, ex := range exemplars {
		fmt.Fprintf(&b, "\n\nEXAMPLE %d:\n%s", i+1, ex)
	}
	return b.String()
}

// ContextBlock renders retrieved background passages. Empty input yields
// an empty block.
func ContextBlock(retrieved string) string {
	retrieved = strings.TrimSpace(retrieved)
	if retrieved == "" {
		return ""
	}
	return "BACKGROUND (relevant passages, use to inform your answer):\n" + retrieved
}

// BuildMessages assembles the full prompt: system persona first, one
// developer message holding the non-empty blocks in facts, style,
// context order, then the history. The history must already include the
// latest user message.
func BuildMessages(systemPrompt string, meta models.CachedMetadata, exemplars []string, retrieved string, history []models.Message) []models.Message {
	var blocks []string
	for _, block := range []string{FactsBlock(meta), StyleBlock(exemplars), ContextBlock(retrieved)} {
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: systemPrompt})
	if len(blocks) > 0 {
		messages = append(messages, models.Message{
			Role:    models.RoleDeveloper,
			Content: strings.Join(blocks, blockSeparator),
		})
	}
	return append(messages, history...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func capped(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
