package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bentswoodworking/bents-api/internal/llm"
)

func TestForwardRelaysBodyVerbatim(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Use a hand plane."}`))
	}))
	defer server.Close()

	client := llm.NewClient(server.URL+"/", time.Second)
	body := []byte(`{"message":"How do I flatten a tabletop?","extra":true}`)

	reply, err := client.Forward(context.Background(), body)

	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(received))
	assert.JSONEq(t, `{"response":"Use a hand plane."}`, string(reply))
}

func TestForwardReportsUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 400)))
	}))
	defer server.Close()

	_, err := llm.NewClient(server.URL, time.Second).Forward(context.Background(), []byte(`{}`))

	var upstream *llm.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.True(t, strings.HasSuffix(upstream.Snippet, "..."))
	assert.Len(t, upstream.Snippet, 259)
}

func TestChatFillsDefaultsAndDecodes(t *testing.T) {
	var got llm.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{
			"response": "formatted answer",
			"initial_answer": "raw answer",
			"urls": ["https://youtu.be/AAAAAAAAAAA", null],
			"video_links": {"[video0]": {"links": ["https://youtu.be/AAAAAAAAAAA"]}},
			"video_titles": ["Shop Tour"]
		}`))
	}))
	defer server.Close()

	reply, err := llm.NewClient(server.URL, time.Second).Chat(context.Background(), llm.ChatRequest{Message: "  Which glue?  "})

	require.NoError(t, err)
	assert.Equal(t, "Which glue?", got.Message)
	assert.Equal(t, llm.DefaultSelectedIndex, got.SelectedIndex)
	assert.NotNil(t, got.ChatHistory)
	assert.Equal(t, "raw answer", reply.InitialAnswer)
	assert.Equal(t, []string{"https://youtu.be/AAAAAAAAAAA"}, reply.VideoURLs())
	assert.Contains(t, reply.VideoLinks, "[video0]")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	_, err := llm.NewClient("http://127.0.0.1:1", time.Second).Chat(context.Background(), llm.ChatRequest{Message: "   "})

	assert.ErrorIs(t, err, llm.ErrEmptyMessage)
}
