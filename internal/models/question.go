package models

import "time"

type Question struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"not null" json:"content"`
	Category  string    `gorm:"not null" json:"category"`
	Votes     int       `gorm:"default:0" json:"votes"`
	UserVote  int       `gorm:"default:0" json:"userVote"`
	Answers   []Answer  `gorm:"foreignKey:QuestionID" json:"answers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateQuestionRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// VoteRequest carries the raw wire vote. A pointer distinguishes a missing
// field from an explicit 0.
type VoteRequest struct {
	Vote *int `json:"vote"`
}

// Clone returns a deep copy; the answer list is duplicated so the copy can be
// mutated without touching the original.
func (q Question) Clone() Question {
	out := q
	out.Answers = make([]Answer, len(q.Answers))
	copy(out.Answers, q.Answers)
	return out
}
