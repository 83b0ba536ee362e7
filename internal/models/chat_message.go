package models

import "time"

// ChatMessage is one durable chat log row. Likes and comments are not stored on the
// row; they are joined in when history is assembled.
type ChatMessage struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Room      *string   `json:"room"`
	Text      string    `json:"text"`
	Image     *string   `json:"image"`
	File      *string   `json:"file"`
	FileName  *string   `json:"fileName"`
	FileType  *string   `json:"fileType"`
	Timestamp time.Time `json:"timestamp"`
}

// TS returns the timestamp in Unix milliseconds, the unit clients use.
func (m ChatMessage) TS() int64 {
	return m.Timestamp.UnixMilli()
}
