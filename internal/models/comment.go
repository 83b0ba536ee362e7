package models

import "time"

// Comment is a reply attached to a chat message. MessageID is not checked against chat_messages.
type Comment struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"messageId"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
