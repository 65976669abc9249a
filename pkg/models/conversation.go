package models

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the per-(session, artwork) chat state. History always
// starts with the artwork's seed assistant message; QuestionsAsked counts
// completed user turns against the quota.
type ConversationState struct {
	History        []Message `json:"history"`
	QuestionsAsked int       `json:"questions_asked"`
}

// NewConversationState seeds a fresh state with the artwork's initial message.
func NewConversationState(initialMessage string) *ConversationState {
	return &ConversationState{
		History: []Message{{Role: RoleAssistant, Content: initialMessage}},
	}
}
