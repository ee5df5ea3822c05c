package sessions

import (
	"encoding/json"
	"regexp"
	"sort"

	"github.com/bentswoodworking/bents-api/internal/models"
)

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// YouTubeID returns the 11 character video id embedded in url, or "".
func YouTubeID(url string) string {
	match := youtubeIDPattern.FindStringSubmatch(url)
	if len(match) < 3 || len(match[2]) != 11 {
		return ""
	}
	return match[2]
}

// VideoIDs collects the distinct YouTube ids referenced by a conversation,
// in first-seen order: plain video URLs first, then videoLinks by key.
func VideoIDs(conv models.Conversation) []string {
	ids := newIDSet()
	for _, url := range conv.Video {
		ids.add(YouTubeID(url))
	}

	keys := make([]string, 0, len(conv.VideoLinks))
	for key := range conv.VideoLinks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, url := range linkURLs(conv.VideoLinks[key]) {
			ids.add(YouTubeID(url))
		}
	}
	return ids.list
}

func SessionVideoIDs(s models.Session) []string {
	ids := newIDSet()
	for _, conv := range s.Conversations {
		for _, id := range VideoIDs(conv) {
			ids.add(id)
		}
	}
	return ids.list
}

// linkURLs accepts either ["url", ...], {"links": ["url", ...]} or "url".
func linkURLs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var entry struct {
		Links []string `json:"links"`
	}
	if err := json.Unmarshal(raw, &entry); err == nil && len(entry.Links) > 0 {
		return entry.Links
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	return nil
}

type idSet struct {
	seen map[string]struct{}
	list []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{}), list: []string{}}
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.list = append(s.list, id)
}
