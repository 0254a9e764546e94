package chat

import (
	"context"
	"fmt"
	"log"

	"docupy/internal/models"
	"docupy/internal/types"
	"docupy/pkg/history"
)

// FallbackAnswer is returned verbatim whenever a query degrades. The real
// failure reason goes to the log, never to the user.
const FallbackAnswer = "Hi! I'm DocuPy. Sorry, I ran into a technical problem. Could you rephrase your question?"

type EngineConfig struct {
	TopK     int
	MaxTurns int // most recent turns kept in the prompt; -1 removes the cap
}

// Engine runs the retrieve-then-generate pipeline for one question: fetch
// the top-k relevant chunks, render the grounding prompt with conversation
// history, and invoke the generator. The caller must have built or loaded
// the index first; an unready index is a precondition violation, not a
// runtime condition this engine handles.
type Engine struct {
	config    EngineConfig
	retriever types.Retriever
	generator types.Generator
}

func NewWithConfig(retriever types.Retriever, generator types.Generator, config EngineConfig) *Engine {
	if config.TopK <= 0 {
		config.TopK = 10
	}
	if config.MaxTurns == 0 {
		config.MaxTurns = 20
	}
	return &Engine{
		config:    config,
		retriever: retriever,
		generator: generator,
	}
}

// Outcome is the full result of one query. Result is always populated;
// when Degraded is set it holds the scripted fallback with zeroed usage
// and Reason explains what actually went wrong.
type Outcome struct {
	Result   models.QueryResult
	Degraded bool
	Reason   string
}

// Answer processes one question against the transcript and always returns
// a usable QueryResult. Callers never need to handle an error from this.
func (e *Engine) Answer(ctx context.Context, question string, transcript []models.Message) models.QueryResult {
	return e.Run(ctx, question, transcript).Result
}

// Run is Answer with the degradation taxonomy left visible for logs and
// tests. Failures in retrieval or generation collapse to the fallback.
func (e *Engine) Run(ctx context.Context, question string, transcript []models.Message) Outcome {
	result, err := e.run(ctx, question, transcript)
	if err != nil {
		log.Printf("query degraded: %v", err)
		return Outcome{
			Result:   models.QueryResult{Answer: FallbackAnswer},
			Degraded: true,
			Reason:   err.Error(),
		}
	}
	return Outcome{Result: *result}
}

func (e *Engine) run(ctx context.Context, question string, transcript []models.Message) (*models.QueryResult, error) {
	results, err := e.retriever.Query(ctx, question, e.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	turns := history.Window(history.Format(transcript), e.config.MaxTurns)

	prompt, err := renderPrompt(results, turns, question)
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}

	result, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	return result, nil
}
