package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devhive/qna/backend/internal/models"
	"github.com/devhive/qna/backend/internal/store"
	"github.com/devhive/qna/backend/internal/vote"
)

type QuestionHandler struct {
	store *store.Store
}

func NewQuestionHandler(st *store.Store) *QuestionHandler {
	return &QuestionHandler{store: st}
}

// respondStoreError maps adapter errors onto the wire: unresolved identifiers
// become 404 with their own message, anything else is a generic 500.
func respondStoreError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, store.ErrQuestionNotFound) || errors.Is(err, store.ErrAnswerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
}

// bindVote reads the request body and rejects anything outside {-1, 0, 1}
// before the tally logic can see it. A missing vote field is invalid too.
func bindVote(c *gin.Context) (vote.Value, bool) {
	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Vote == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": vote.ErrInvalidValue.Error()})
		return vote.None, false
	}

	value, err := vote.Parse(*input.Vote)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return vote.None, false
	}

	return value, true
}

// GetQuestions returns every question, newest first
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	questions, err := h.store.ListQuestions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch questions"})
		return
	}

	c.JSON(http.StatusOK, questions)
}

// GetQuestion returns a single question with its answers
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.store.GetQuestion(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Failed to fetch question")
		return
	}

	c.JSON(http.StatusOK, question)
}

// CreateQuestion creates a new question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide title, content, and category"})
		return
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	category := strings.TrimSpace(input.Category)
	if title == "" || content == "" || category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide title, content, and category"})
		return
	}

	question, err := h.store.CreateQuestion(title, content, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create question"})
		return
	}

	c.JSON(http.StatusCreated, question)
}

// VoteQuestion applies a vote to a question. The server recomputes the tally
// from its own stored state; the client's optimistic arithmetic is never
// trusted.
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
	value, ok := bindVote(c)
	if !ok {
		return
	}

	question, err := h.store.GetQuestion(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Failed to fetch question")
		return
	}

	question.Votes, value = vote.Apply(question.Votes, vote.Value(question.UserVote), value)
	question.UserVote = int(value)

	saved, err := h.store.SaveQuestion(question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save vote"})
		return
	}

	c.JSON(http.StatusOK, saved)
}
