package chat

import "github.com/chaines-io/chat-hub/internal/models"

// MessageView is the wire shape of a chat message in history and in the chat echo.
// The echo also carries the legacy message/file_name/file_type spellings; message is
// always present on the echo, even when the text is empty.
type MessageView struct {
	Type     string        `json:"type"`
	ID       int64         `json:"id"`
	User     string        `json:"user"`
	Room     *string       `json:"room"`
	Text     string        `json:"text"`
	Message  *string       `json:"message,omitempty"`
	Image    *string       `json:"image"`
	File     *string       `json:"file"`
	FileName *string       `json:"fileName"`
	FileType *string       `json:"fileType"`
	LegacyFN *string       `json:"file_name,omitempty"`
	LegacyFT *string       `json:"file_type,omitempty"`
	TS       int64         `json:"ts"`
	Likes    int           `json:"likes"`
	Comments []CommentView `json:"comments"`
}

// CommentView is a comment nested under its message.
type CommentView struct {
	ID   int64  `json:"id"`
	User string `json:"user"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// CommentEvent is fanned out when a comment is posted.
type CommentEvent struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	MessageID int64  `json:"messageId"`
	User      string `json:"user"`
	Text      string `json:"text"`
	TS        int64  `json:"ts"`
}

// LikeEvent is fanned out with a message's like total.
type LikeEvent struct {
	Type      string `json:"type"`
	MessageID int64  `json:"messageId"`
	Count     int    `json:"count"`
}

// Echo returns the copy sent back to every connection after a post.
func (v MessageView) Echo() MessageView {
	text := v.Text
	v.Message = &text
	v.LegacyFN = v.FileName
	v.LegacyFT = v.FileType
	v.Likes = 0
	v.Comments = []CommentView{}
	return v
}

func messageView(m models.ChatMessage) MessageView {
	return MessageView{
		Type:     "chat",
		ID:       m.ID,
		User:     m.User,
		Room:     m.Room,
		Text:     m.Text,
		Image:    m.Image,
		File:     m.File,
		FileName: m.FileName,
		FileType: m.FileType,
		TS:       m.TS(),
		Likes:    0,
		Comments: []CommentView{},
	}
}

func commentView(c models.Comment) CommentView {
	return CommentView{ID: c.ID, User: c.User, Text: c.Text, TS: c.Timestamp.UnixMilli()}
}
