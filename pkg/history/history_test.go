package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docupy/internal/models"
	"docupy/pkg/history"
)

func msg(role models.Role, content string) models.Message {
	return models.Message{Role: role, Content: content}
}

func TestFormatPairsTurns(t *testing.T) {
	messages := []models.Message{
		msg(models.RoleGreeting, "welcome"),
		msg(models.RoleUser, "user_1"),
		msg(models.RoleAssistant, "bot_1"),
		msg(models.RoleUser, "user_2"),
		msg(models.RoleAssistant, "bot_2"),
		msg(models.RoleUser, "user_3"), // in-flight, not yet answered
	}

	turns := history.Format(messages)

	assert.Equal(t, []models.Turn{
		{Question: "user_1", Answer: "bot_1"},
		{Question: "user_2", Answer: "bot_2"},
	}, turns)
}

func TestFormatDropsMalformedPairs(t *testing.T) {
	messages := []models.Message{
		msg(models.RoleGreeting, "welcome"),
		msg(models.RoleUser, "user_1"),
		msg(models.RoleUser, "user_1_retry"), // two user messages in a row
		msg(models.RoleAssistant, "bot_1"),
		msg(models.RoleUser, "in-flight"),
	}

	turns := history.Format(messages)

	// The malformed pair is skipped silently; the odd leftover pairing
	// (assistant-first) is skipped too.
	assert.Empty(t, turns)
}

func TestFormatShortTranscripts(t *testing.T) {
	assert.Nil(t, history.Format(nil))
	assert.Nil(t, history.Format([]models.Message{msg(models.RoleGreeting, "welcome")}))
	assert.Nil(t, history.Format([]models.Message{
		msg(models.RoleGreeting, "welcome"),
		msg(models.RoleUser, "first question"),
	}))
}

func TestFormatOddLeftoverDropped(t *testing.T) {
	messages := []models.Message{
		msg(models.RoleGreeting, "welcome"),
		msg(models.RoleUser, "user_1"),
		msg(models.RoleAssistant, "bot_1"),
		msg(models.RoleUser, "user_2"), // answer never arrived
		msg(models.RoleUser, "in-flight"),
	}

	turns := history.Format(messages)

	assert.Equal(t, []models.Turn{{Question: "user_1", Answer: "bot_1"}}, turns)
}

func TestWindowCapsToMostRecent(t *testing.T) {
	turns := []models.Turn{
		{Question: "q1"}, {Question: "q2"}, {Question: "q3"}, {Question: "q4"},
	}

	capped := history.Window(turns, 2)
	assert.Equal(t, []models.Turn{{Question: "q3"}, {Question: "q4"}}, capped)

	assert.Len(t, history.Window(turns, 10), 4)
	assert.Len(t, history.Window(turns, 0), 4)
}
