package models

import "time"

// WeakTopicRecord is the persisted rolling accuracy estimate for one
// (subject, topic) pair. Created on the first session touching the topic,
// updated after every graded session, never deleted automatically.
type WeakTopicRecord struct {
	Subject         string    `json:"subject" db:"subject"`
	Topic           string    `json:"topic" db:"topic"`
	Accuracy        float64   `json:"accuracy" db:"accuracy"`
	TotalAttempted  int       `json:"total_attempted" db:"total_attempted"`
	LastAttemptedAt time.Time `json:"last_attempted_at" db:"last_attempted_at"`
}
