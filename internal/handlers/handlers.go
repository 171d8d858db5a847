package handlers

import (
	"github.com/devhive/qna/backend/internal/database"
	"github.com/devhive/qna/backend/internal/store"
)

// Handler combines all handler types
type Handler struct {
	Question *QuestionHandler
	Answer   *AnswerHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *database.Database) *Handler {
	// Get the GORM DB instance from the service
	dbService := database.New()
	st := store.New(dbService.GetDB())

	return &Handler{
		Question: NewQuestionHandler(st),
		Answer:   NewAnswerHandler(st),
	}
}
