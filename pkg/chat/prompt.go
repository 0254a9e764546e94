package chat

import (
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"docupy/internal/models"
)

// NotFoundAnswer is the sentinel the model is instructed to emit when the
// retrieved context does not contain the answer.
const NotFoundAnswer = "The information you are looking for is not in the context I have available."

const groundingTemplate = `You are DocuPy, an expert assistant for the reference document loaded into this
session. Your purpose is to help developers find precise answers and understand
concepts, based solely on the provided context.

Available context (fragments of the reference document):
{{.context}}

Specific instructions:
1. Strict role: your knowledge is limited strictly to the provided context.
2. Absolute precision: base every answer on the context. If the answer
   contains a code fragment, reproduce it exactly as it appears.
3. Handling uncertainty: if the answer is not in the context, do not guess.
   Reply clearly and honestly: "` + NotFoundAnswer + `"
4. Professional tone: stay technical, precise and helpful, like a senior
   developer helping a colleague.
5. Concise answers: get to the point. Give the information or code the user
   needs without padding.

Conversation history:
{{.chat_history}}

Developer question: {{.question}}

Answer as DocuPy:`

var groundingPrompt = prompts.NewPromptTemplate(
	groundingTemplate,
	[]string{"context", "chat_history", "question"},
)

// renderPrompt fills the grounding template with the retrieved chunks, the
// formatted conversation turns and the current question.
func renderPrompt(results []models.SearchResult, turns []models.Turn, question string) (string, error) {
	var context strings.Builder
	for i, r := range results {
		if i > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(r.Content)
	}

	var hist strings.Builder
	for _, turn := range turns {
		hist.WriteString("Human: ")
		hist.WriteString(turn.Question)
		hist.WriteString("\nAssistant: ")
		hist.WriteString(turn.Answer)
		hist.WriteString("\n")
	}

	return groundingPrompt.Format(map[string]any{
		"context":      context.String(),
		"chat_history": hist.String(),
		"question":     question,
	})
}
