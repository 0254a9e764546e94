package models

// Role identifies who produced a transcript message.
type Role string

const (
	RoleGreeting  Role = "greeting"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged utterance in a session transcript.
type Message struct {
	Role    Role
	Content string
}

// Turn pairs a user question with the assistant answer that followed it.
type Turn struct {
	Question string
	Answer   string
}

// EmbeddingRecord is a persisted (chunk text, vector) pair. Records are
// written once at index build time and never mutated afterwards.
type EmbeddingRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Content string
	Score   float32
}

// QueryResult is the outcome of one engine invocation. It is produced for
// every query, including degraded ones, where all usage fields are zero.
type QueryResult struct {
	Answer           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	TotalCostUSD     float64
}

// Usage holds running token and cost totals for a session.
type Usage struct {
	TotalTokens  int
	TotalCostUSD float64
}
