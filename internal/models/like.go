package models

import "time"

// Like records that User liked MessageID. (MessageID, User) is unique.
type Like struct {
	MessageID int64     `json:"messageId"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}
