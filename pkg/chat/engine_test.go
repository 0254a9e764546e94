package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docupy/internal/models"
	"docupy/pkg/chat"
)

type fakeRetriever struct {
	results []models.SearchResult
	err     error
	gotK    int
}

func (f *fakeRetriever) Query(ctx context.Context, question string, k int) ([]models.SearchResult, error) {
	f.gotK = k
	return f.results, f.err
}

type fakeGenerator struct {
	result    *models.QueryResult
	err       error
	gotPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (*models.QueryResult, error) {
	f.gotPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func transcript() []models.Message {
	return []models.Message{
		{Role: models.RoleGreeting, Content: "welcome"},
		{Role: models.RoleUser, Content: "what is a slice?"},
		{Role: models.RoleAssistant, Content: "a view over an array"},
		{Role: models.RoleUser, Content: "and a map?"},
	}
}

func TestAnswerPassesThroughGeneration(t *testing.T) {
	retriever := &fakeRetriever{results: []models.SearchResult{
		{Content: "maps are hash tables", Score: 0.9},
		{Content: "slices are views", Score: 0.7},
	}}
	generator := &fakeGenerator{result: &models.QueryResult{
		Answer:           "A map is a hash table.",
		PromptTokens:     120,
		CompletionTokens: 30,
		TotalTokens:      150,
		TotalCostUSD:     0.000105,
	}}

	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{TopK: 10})
	result := engine.Answer(context.Background(), "and a map?", transcript())

	assert.Equal(t, "A map is a hash table.", result.Answer)
	assert.Equal(t, 120, result.PromptTokens)
	assert.Equal(t, 30, result.CompletionTokens)
	assert.Equal(t, 150, result.TotalTokens)
	assert.InDelta(t, 0.000105, result.TotalCostUSD, 1e-12)
	assert.Equal(t, 10, retriever.gotK)
}

func TestAnswerRendersGroundingPrompt(t *testing.T) {
	retriever := &fakeRetriever{results: []models.SearchResult{
		{Content: "first retrieved chunk", Score: 0.9},
		{Content: "second retrieved chunk", Score: 0.5},
	}}
	generator := &fakeGenerator{result: &models.QueryResult{Answer: "ok"}}

	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{})
	engine.Answer(context.Background(), "and a map?", transcript())

	prompt := generator.gotPrompt
	require.NotEmpty(t, prompt)

	// Retrieved chunks appear in relevance order.
	assert.Contains(t, prompt, "first retrieved chunk")
	assert.Contains(t, prompt, "second retrieved chunk")
	assert.Less(t,
		strings.Index(prompt, "first retrieved chunk"),
		strings.Index(prompt, "second retrieved chunk"))

	// Prior turns appear, but not the greeting or the in-flight question
	// as history.
	assert.Contains(t, prompt, "Human: what is a slice?")
	assert.Contains(t, prompt, "Assistant: a view over an array")
	assert.NotContains(t, prompt, "welcome")

	assert.Contains(t, prompt, "Developer question: and a map?")
	assert.Contains(t, prompt, chat.NotFoundAnswer)
}

func TestAnswerDegradesOnGenerationFailure(t *testing.T) {
	retriever := &fakeRetriever{results: []models.SearchResult{{Content: "chunk"}}}
	generator := &fakeGenerator{err: errors.New("rate limited")}

	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{})
	outcome := engine.Run(context.Background(), "and a map?", transcript())

	assert.True(t, outcome.Degraded)
	assert.Contains(t, outcome.Reason, "generation")
	assert.Contains(t, outcome.Reason, "rate limited")

	result := outcome.Result
	assert.Equal(t, chat.FallbackAnswer, result.Answer)
	assert.Zero(t, result.PromptTokens)
	assert.Zero(t, result.CompletionTokens)
	assert.Zero(t, result.TotalTokens)
	assert.Zero(t, result.TotalCostUSD)
}

func TestAnswerDegradesOnRetrievalFailure(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("store offline")}
	generator := &fakeGenerator{result: &models.QueryResult{Answer: "unused"}}

	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{})
	outcome := engine.Run(context.Background(), "and a map?", transcript())

	assert.True(t, outcome.Degraded)
	assert.Contains(t, outcome.Reason, "retrieval")
	assert.Equal(t, chat.FallbackAnswer, outcome.Result.Answer)
	assert.Empty(t, generator.gotPrompt)
}

func longTranscript(turns int) []models.Message {
	messages := []models.Message{{Role: models.RoleGreeting, Content: "welcome"}}
	for i := 0; i < turns; i++ {
		messages = append(messages,
			models.Message{Role: models.RoleUser, Content: fmt.Sprintf("question %d", i)},
			models.Message{Role: models.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}
	return append(messages, models.Message{Role: models.RoleUser, Content: "current question"})
}

func TestAnswerWindowsHistory(t *testing.T) {
	retriever := &fakeRetriever{results: []models.SearchResult{{Content: "chunk"}}}
	generator := &fakeGenerator{result: &models.QueryResult{Answer: "ok"}}

	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{MaxTurns: 3})
	engine.Answer(context.Background(), "current question", longTranscript(10))

	prompt := generator.gotPrompt
	assert.NotContains(t, prompt, "Human: question 6")
	assert.Contains(t, prompt, "Human: question 7")
	assert.Contains(t, prompt, "Human: question 9")
}

func TestAnswerUncappedHistory(t *testing.T) {
	retriever := &fakeRetriever{results: []models.SearchResult{{Content: "chunk"}}}
	generator := &fakeGenerator{result: &models.QueryResult{Answer: "ok"}}

	// MaxTurns -1 keeps every turn, even past the default cap of 20.
	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{MaxTurns: -1})
	engine.Answer(context.Background(), "current question", longTranscript(30))

	prompt := generator.gotPrompt
	assert.Contains(t, prompt, "Human: question 0")
	assert.Contains(t, prompt, "Human: question 29")
}

func TestAnswerNeverReturnsError(t *testing.T) {
	// Answer has no error return; a failing pipeline still hands the
	// caller a usable result.
	retriever := &fakeRetriever{err: errors.New("boom")}
	generator := &fakeGenerator{}

	engine := chat.NewWithConfig(retriever, generator, chat.EngineConfig{})
	result := engine.Answer(context.Background(), "anything", nil)

	assert.Equal(t, chat.FallbackAnswer, result.Answer)
}
