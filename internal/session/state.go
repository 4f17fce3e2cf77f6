package session

import (
	"encoding/json"

	"github.com/rianxlewis/routine-builder/internal/models"
)

// ToggleSelection returns the selection with product added when absent and
// removed when present, keyed by id. Additions append, so the slice keeps
// insertion order. The input is never mutated.
func ToggleSelection(selected []models.Product, product models.Product) []models.Product {
	out := make([]models.Product, 0, len(selected)+1)
	removed := false
	for _, p := range selected {
		if p.ID == product.ID {
			removed = true
			continue
		}
		out = append(out, p)
	}
	if !removed {
		out = append(out, product)
	}
	return out
}

// IsSelected reports membership by product id.
func IsSelected(selected []models.Product, id int) bool {
	for _, p := range selected {
		if p.ID == id {
			return true
		}
	}
	return false
}

// seedLen is the number of pinned seed messages at the head of a routine
// conversation: the system persona plus the product-embedding user message.
const seedLen = 2

// TrimHistory applies the retention window: the seed messages stay pinned
// and only the most recent limit messages of the tail are kept. A limit of
// zero or less disables trimming.
func TrimHistory(history []models.ChatMessage, limit int) []models.ChatMessage {
	if limit <= 0 || len(history) <= seedLen+limit {
		return history
	}
	out := make([]models.ChatMessage, 0, seedLen+limit)
	out = append(out, history[:seedLen]...)
	out = append(out, history[len(history)-limit:]...)
	return out
}

// BuildRoutineMessages assembles the two-message seed conversation for
// routine generation: the fixed system persona and a user message embedding
// the selected products as indented JSON plus the fixed five-part request.
func BuildRoutineMessages(products []models.Product) []models.ChatMessage {
	prompt := make([]models.PromptProduct, len(products))
	for i, p := range products {
		prompt[i] = models.PromptProduct{
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Description: p.Description,
		}
	}
	data, _ := json.MarshalIndent(prompt, "", "  ")

	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: routineSystemPrompt},
		{Role: models.RoleUser, Content: routineUserPromptPrefix + string(data) + routineUserPromptSuffix},
	}
}

// BuildFollowUpMessages prepends the fixed follow-up-context system message
// to the accumulated conversation history.
func BuildFollowUpMessages(history []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(history)+1)
	out = append(out, models.ChatMessage{Role: models.RoleSystem, Content: followUpSystemPrompt})
	out = append(out, history...)
	return out
}
