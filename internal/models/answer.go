package models

import "time"

// Answer is owned by exactly one question and is keyed by
// (question_id, id). Position records insertion order; display order is
// computed at render time and never written back.
type Answer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	QuestionID string    `gorm:"primaryKey;size:36" json:"-"`
	Content    string    `gorm:"not null" json:"content"`
	Votes      int       `gorm:"default:0" json:"votes"`
	UserVote   int       `gorm:"default:0" json:"userVote"`
	Position   int       `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateAnswerRequest struct {
	Content string `json:"content"`
}
