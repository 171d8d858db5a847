package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devhive/qna/backend/internal/models"
	"github.com/devhive/qna/backend/internal/store"
	"github.com/devhive/qna/backend/internal/vote"
)

type AnswerHandler struct {
	store *store.Store
}

func NewAnswerHandler(st *store.Store) *AnswerHandler {
	return &AnswerHandler{store: st}
}

// CreateAnswer appends an answer to a question and returns the updated
// question document
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide answer content"})
		return
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide answer content"})
		return
	}

	question, err := h.store.AppendAnswer(c.Param("id"), content)
	if err != nil {
		respondStoreError(c, err, "Failed to add answer")
		return
	}

	c.JSON(http.StatusCreated, question)
}

// VoteAnswer applies a vote to an answer nested in a question. The whole
// question document is returned so the client can reconcile in one step.
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
	value, ok := bindVote(c)
	if !ok {
		return
	}

	question, err := h.store.GetQuestion(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Failed to fetch question")
		return
	}

	answerID := c.Param("answerId")
	idx := -1
	for i := range question.Answers {
		if question.Answers[i].ID == answerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}

	answer := &question.Answers[idx]
	answer.Votes, value = vote.Apply(answer.Votes, vote.Value(answer.UserVote), value)
	answer.UserVote = int(value)

	saved, err := h.store.SaveQuestion(question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save vote"})
		return
	}

	c.JSON(http.StatusOK, saved)
}
