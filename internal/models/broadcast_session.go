package models

import "time"

// BroadcastSession tracks one live broadcast from start to end.
type BroadcastSession struct {
	ID            int64      `json:"id"`
	Identity      string     `json:"identity"`
	Username      string     `json:"username"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	PeakListeners int        `json:"peak_listeners"`
}
