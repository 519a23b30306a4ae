package chat

import "github.com/suPer8Hu/notechat/internal/ai"

// ModelRole translates a storage role into the generation vocabulary.
// "model" is accepted as already translated so the mapping is idempotent.
func ModelRole(role string) string {
	switch role {
	case RoleAssistant, ai.RoleModel:
		return ai.RoleModel
	default:
		return ai.RoleUser
	}
}

// BuildContextWindow turns a newest-first page of messages into the
// chronological turn list for one generation call. Text is not modified.
func BuildContextWindow(newestFirst []Message) []ai.Turn {
	turns := make([]ai.Turn, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		turns = append(turns, ai.Turn{Role: ModelRole(m.Role), Text: m.Text})
	}
	return turns
}
