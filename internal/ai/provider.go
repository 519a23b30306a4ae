package ai

import "context"

// Roles on the generation boundary.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one role-tagged unit of conversation text sent to a model.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Provider returns a single full-text completion for an ordered list of turns.
type Provider interface {
	Chat(ctx context.Context, turns []Turn) (string, error)
}

// chatRole maps generation roles onto the OpenAI-style vocabulary used by
// Ollama and OpenRouter.
func chatRole(role string) string {
	if role == RoleModel {
		return "assistant"
	}
	return "user"
}
