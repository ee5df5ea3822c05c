// Package llm talks to the external chat service that answers woodworking
// questions. The service owns retrieval and prompting; this package only
// relays requests and decodes the replies the session manager stores.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const (
	chatPath             = "/chat"
	DefaultSelectedIndex = "bents"
	maxSnippetRunes      = 256
)

var ErrEmptyMessage = errors.New("llm: message cannot be empty")

// UpstreamError reports a non-2xx reply from the chat service.
type UpstreamError struct {
	StatusCode int
	Snippet    string
}

func (e *UpstreamError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("llm: upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Snippet)
}

// ChatRequest is the body the chat service expects.
type ChatRequest struct {
	Message       string   `json:"message"`
	SelectedIndex string   `json:"selected_index"`
	ChatHistory   []string `json:"chat_history"`
}

// ChatReply is the subset of the chat service reply that is persisted.
type ChatReply struct {
	Response        string                     `json:"response"`
	InitialAnswer   string                     `json:"initial_answer"`
	URLs            []string                   `json:"urls"`
	VideoLinks      map[string]json.RawMessage `json:"video_links"`
	VideoTitles     []string                   `json:"video_titles"`
	RelatedProducts json.RawMessage            `json:"related_products,omitempty"`
}

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// Forward posts body to the chat endpoint unchanged and returns the raw reply.
func (c *Client) Forward(ctx context.Context, body []byte) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(chatPath)
	if err != nil {
		return nil, fmt.Errorf("llm: call chat service: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return nil, &UpstreamError{StatusCode: status, Snippet: snippet(resp.Body())}
	}

	return resp.Body(), nil
}

// Chat sends a typed request and decodes the reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	if req.SelectedIndex == "" {
		req.SelectedIndex = DefaultSelectedIndex
	}
	if req.ChatHistory == nil {
		req.ChatHistory = []string{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal chat request: %w", err)
	}

	raw, err := c.Forward(ctx, body)
	if err != nil {
		return nil, err
	}

	var reply ChatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("llm: decode chat reply: %w", err)
	}

	return &reply, nil
}

// VideoURLs drops the null entries the chat service emits for videos
// without a known URL.
func (r *ChatReply) VideoURLs() []string {
	urls := make([]string, 0, len(r.URLs))
	for _, url := range r.URLs {
		if strings.TrimSpace(url) != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(text) <= maxSnippetRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxSnippetRunes]) + "..."
}
