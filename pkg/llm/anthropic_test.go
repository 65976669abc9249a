package llm

import (
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

func TestSplitMessages_SeedFirstHistory(t *testing.T) {
	system, chat := splitMessages([]models.Message{
		{Role: models.RoleSystem, Content: "You are Vermeer."},
		{Role: models.RoleDeveloper, Content: "FACTS:\n- oil on canvas"},
		{Role: models.RoleAssistant, Content: "Welcome. Ask me about my milkmaid."},
		{Role: models.RoleUser, Content: "Why the blue apron?"},
		{Role: models.RoleAssistant, Content: "Ultramarine was dear, but worth it."},
		{Role: models.RoleUser, Content: "How long did it take?"},
	})

	// The seeded greeting moves into the system prompt so the first chat
	// message carries the user role.
	assert.Contains(t, system, "You are Vermeer.")
	assert.Contains(t, system, "FACTS:\n- oil on canvas")
	assert.Contains(t, system, "Ask me about my milkmaid")

	require.Len(t, chat, 3)
	assert.Equal(t, anthropic.RoleUser, chat[0].Role)
	assert.Equal(t, "Why the blue apron?", chat[0].Content[0].GetText())
	assert.Equal(t, anthropic.RoleAssistant, chat[1].Role)
	assert.Equal(t, anthropic.RoleUser, chat[2].Role)
}

func TestSplitMessages_MidConversationAssistantKept(t *testing.T) {
	_, chat := splitMessages([]models.Message{
		{Role: models.RoleUser, Content: "Who taught you?"},
		{Role: models.RoleAssistant, Content: "That is much debated."},
	})

	require.Len(t, chat, 2)
	assert.Equal(t, anthropic.RoleUser, chat[0].Role)
	assert.Equal(t, anthropic.RoleAssistant, chat[1].Role)
	assert.Equal(t, "That is much debated.", chat[1].Content[0].GetText())
}
