package session

import (
	"docupy/internal/models"
	"docupy/pkg/usage"
)

// Greeting is the fixed first message of every session transcript.
const Greeting = `Hi! I'm DocuPy, an assistant specialized in the reference document loaded into this session.

You can ask me about anything the document covers: concepts, functions, and code examples that appear in it. Just type your question and I'll find the most relevant information for you.`

// Session owns one conversation: the append-only transcript and the usage
// totals. It is created at session start and passed into the engine by the
// UI; the core never keeps ambient session state of its own.
type Session struct {
	messages []models.Message
	Usage    *usage.Tracker
}

func New() *Session {
	return &Session{
		messages: []models.Message{{Role: models.RoleGreeting, Content: Greeting}},
		Usage:    usage.NewTracker(),
	}
}

// AppendUser appends the user's question to the transcript.
func (s *Session) AppendUser(content string) {
	s.messages = append(s.messages, models.Message{Role: models.RoleUser, Content: content})
}

// AppendAssistant appends the assistant's answer to the transcript.
func (s *Session) AppendAssistant(content string) {
	s.messages = append(s.messages, models.Message{Role: models.RoleAssistant, Content: content})
}

// Transcript returns the messages in order, greeting first.
func (s *Session) Transcript() []models.Message {
	return s.messages
}
