package history

import "docupy/internal/models"

// Format turns a session transcript into (question, answer) turns usable as
// conversational context. The first message is the fixed greeting and the
// last is the question currently being answered; both are excluded. The
// remaining messages are walked pairwise and a pair is kept only when a
// user message is immediately followed by an assistant message; anything
// malformed is skipped rather than reported.
func Format(messages []models.Message) []models.Turn {
	if len(messages) <= 2 {
		return nil
	}
	between := messages[1 : len(messages)-1]

	var turns []models.Turn
	for i := 0; i+1 < len(between); i += 2 {
		first, second := between[i], between[i+1]
		if first.Role != models.RoleUser || second.Role != models.RoleAssistant {
			continue
		}
		turns = append(turns, models.Turn{
			Question: first.Content,
			Answer:   second.Content,
		})
	}
	return turns
}

// Window keeps only the most recent maxTurns turns. Long sessions would
// otherwise grow the prompt past the model's context limit. maxTurns <= 0
// disables the cap.
func Window(turns []models.Turn, maxTurns int) []models.Turn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}
