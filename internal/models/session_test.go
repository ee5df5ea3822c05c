package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bentswoodworking/bents-api/internal/models"
)

func TestSessionDecodeDropsUndeclaredFields(t *testing.T) {
	raw := `{
		"id": "s1",
		"pinned": true,
		"conversations": [{
			"question": "Best glue?",
			"text": "Titebond III.",
			"video": [],
			"videoLinks": {"Glue-ups": {"links": ["https://youtu.be/AAAAAAAAAAA"]}},
			"products": [{"title": "Clamp"}],
			"rating": 5
		}]
	}`

	var session models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &session))
	require.Len(t, session.Conversations, 1)
	assert.Equal(t, "Titebond III.", session.Conversations[0].Text)
	assert.Contains(t, session.Conversations[0].VideoLinks, "Glue-ups")

	encoded, err := json.Marshal(session)
	require.NoError(t, err)
	for _, field := range []string{"pinned", "products", "rating"} {
		assert.NotContains(t, string(encoded), field)
	}
}

func TestSessionRecordSessions(t *testing.T) {
	empty := models.SessionRecord{}
	list, err := empty.Sessions()
	require.NoError(t, err)
	assert.Empty(t, list)

	record := models.SessionRecord{SessionData: json.RawMessage(`[{"id":"s1","conversations":[]}]`)}
	list, err = record.Sessions()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)
}
