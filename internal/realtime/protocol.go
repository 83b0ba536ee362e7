package realtime

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/chaines-io/chat-hub/internal/chat"
)

// Inbound frame types.
const (
	TypeJoin         = "join"
	TypeBroadcaster  = "broadcaster"
	TypeEndBroadcast = "end-broadcast"
	TypeJoinRequest  = "join-request"
	TypeApproveJoin  = "approve-join"
	TypeDenyJoin     = "deny-join"
	TypeWatcher      = "watcher"
	TypeUnwatcher    = "unwatcher"
	TypeThumb        = "thumb"
	TypeCaption      = "caption"
	TypeComment      = "comment"
	TypeLike         = "like"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeCandidate    = "candidate"
	TypeBye          = "bye"
	TypeChat         = "chat"
	TypeSearch       = "search"
)

// Outbound-only frame types.
const (
	TypeSystem       = "system"
	TypeHistory      = "history"
	TypeID           = "id"
	TypeUsers        = "users"
	TypeListeners    = "listeners"
	TypeJoinDenied   = "join-denied"
	TypeJoinApproved = "join-approved"
)

// frame is every inbound message decoded once at the connection boundary.
// Fields whose JSON type varies between clients are kept raw.
type frame struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	User       string          `json:"user"`
	Text       *string         `json:"text"`
	Message    *string         `json:"message"`
	Room       string          `json:"room"`
	Image      string          `json:"image"`
	File       string          `json:"file"`
	FileName   string          `json:"fileName"`
	FileType   string          `json:"fileType"`
	LegacyName string          `json:"file_name"`
	LegacyType string          `json:"file_type"`
	TS         json.RawMessage `json:"ts"`
	Thumb      json.RawMessage `json:"thumb"`
	MessageID  json.RawMessage `json:"messageId"`
	SDP        json.RawMessage `json:"sdp"`
	Candidate  json.RawMessage `json:"candidate"`
	Q          string          `json:"q"`
}

func parseFrame(raw []byte) (*frame, bool) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil || f.Type == "" {
		return nil, false
	}
	return &f, true
}

// chatInput maps a chat frame onto the gateway input, honoring legacy aliases.
func (f *frame) chatInput() chat.PostInput {
	text := ""
	switch {
	case f.Text != nil:
		text = *f.Text
	case f.Message != nil:
		text = *f.Message
	}
	in := chat.PostInput{
		User:     f.User,
		Room:     f.Room,
		Text:     text,
		Image:    f.Image,
		File:     f.File,
		FileName: firstNonEmpty(f.LegacyName, f.FileName),
		FileType: firstNonEmpty(f.LegacyType, f.FileType),
	}
	var ts float64
	if len(f.TS) > 0 && json.Unmarshal(f.TS, &ts) == nil && ts > 0 {
		in.TS = int64(ts)
	}
	return in
}

// messageID accepts both numeric and string ids. Zero means absent or invalid.
func (f *frame) messageID() int64 {
	raw := bytes.TrimSpace(f.MessageID)
	if len(raw) == 0 {
		return 0
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		raw = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// thumb returns the thumbnail only when it is a JSON string.
func (f *frame) thumb() (string, bool) {
	var s string
	if len(f.Thumb) == 0 || json.Unmarshal(f.Thumb, &s) != nil {
		return "", false
	}
	return s, true
}

// present reports whether an opaque payload carries a value worth relaying.
func present(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && !bytes.Equal(v, []byte("null")) && !bytes.Equal(v, []byte(`""`)) &&
		!bytes.Equal(v, []byte("false")) && !bytes.Equal(v, []byte("0"))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type systemMsg struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type historyMsg struct {
	Type     string             `json:"type"`
	Messages []chat.MessageView `json:"messages"`
}

type idMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type typeOnly struct {
	Type string `json:"type"`
}

type rosterEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Live bool   `json:"live"`
}

type usersMsg struct {
	Type  string        `json:"type"`
	Users []rosterEntry `json:"users"`
	Count int           `json:"count"`
}

type listenersMsg struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type thumbMsg struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Thumb string `json:"thumb"`
}

type joinRequestMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	User string `json:"user"`
}

type captionMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

type signalMsg struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

func encode(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
