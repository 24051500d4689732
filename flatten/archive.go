package flatten

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Archive is a parsed conversations export, in document order.
type Archive []Conversation

// Conversation is one exported thread. Mapping keeps the node order of the source document.
type Conversation struct {
	ID             string                               `json:"id"`
	ConversationID string                               `json:"conversation_id"`
	Title          *string                              `json:"title"`
	CreateTime     *float64                             `json:"create_time"`
	Mapping        *orderedmap.OrderedMap[string, Node] `json:"mapping"`
}

// Node is a slot in a conversation tree. Message is nil for placeholder nodes.
type Node struct {
	Message *Message `json:"message"`
	Parent  *string  `json:"parent"`
}

// Message is the payload of a node.
type Message struct {
	ID         *string        `json:"id"`
	Author     *Author        `json:"author"`
	Content    *Content       `json:"content"`
	CreateTime *float64       `json:"create_time"`
	Status     string         `json:"status"`
	Metadata   map[string]any `json:"metadata"`
}

type Author struct {
	Role string `json:"role"`
}

// Content holds the message parts. Parts are either JSON strings or structured objects
// (image pointers, tool payloads, ...).
type Content struct {
	ContentType string            `json:"content_type"`
	Parts       []json.RawMessage `json:"parts"`
}

const defaultTitle = "Untitled"

// Key returns the conversation identifier, preferring id over conversation_id.
func (c Conversation) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.ConversationID
}

// DisplayTitle returns the title, or "Untitled" when the export has none.
func (c Conversation) DisplayTitle() string {
	if c.Title == nil {
		return defaultTitle
	}
	return *c.Title
}

// NodeCount returns the number of mapping entries across all conversations.
func (a Archive) NodeCount() int {
	n := 0
	for _, c := range a {
		if c.Mapping != nil {
			n += c.Mapping.Len()
		}
	}
	return n
}

// DecodeOptions controls how DecodeArchive locates the conversations array.
type DecodeOptions struct {
	// ArrayField names the field holding the conversations when the top-level JSON value is
	// an object. If empty, the first array-valued field (in document order) is used.
	ArrayField string
}

// ReadArchive reads and decodes the export at path. The whole file is loaded into memory.
func ReadArchive(path string, opts DecodeOptions) (Archive, error) {
	if path == "" {
		return nil, errors.New("ReadArchive: path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadArchive: open input: %w", err)
	}
	defer f.Close()

	a, err := DecodeArchive(f, opts)
	if err != nil {
		return nil, fmt.Errorf("ReadArchive: %s: %w", path, err)
	}
	return a, nil
}

// DecodeArchive decodes an export that is either a top-level array of conversations or an
// object wrapping that array. Malformed input is returned as an error.
func DecodeArchive(r io.Reader, opts DecodeOptions) (Archive, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("decode archive: input is empty")
	}

	switch data[0] {
	case '[':
		return unmarshalConversations(data)
	case '{':
		arr, err := findConversationsArray(data, opts.ArrayField)
		if err != nil {
			return nil, err
		}
		return unmarshalConversations(arr)
	default:
		return nil, fmt.Errorf("decode archive: expected JSON array or object, got %q", data[0])
	}
}

func unmarshalConversations(data []byte) (Archive, error) {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return a, nil
}

func findConversationsArray(data []byte, field string) (json.RawMessage, error) {
	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, fields); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}

	if field != "" {
		v, ok := fields.Get(field)
		if !ok {
			return nil, fmt.Errorf("decode archive: field %q not found in top-level object", field)
		}
		if !isJSONArray(v) {
			return nil, fmt.Errorf("decode archive: field %q is not an array", field)
		}
		return v, nil
	}

	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if isJSONArray(pair.Value) {
			return pair.Value, nil
		}
	}
	return nil, errors.New("decode archive: no conversations array found in top-level object")
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
