// Package store is the document-store adapter for questions. A question and
// its answers form one document: answers are rows keyed (question_id, id)
// but are only reachable through their parent.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhive/qna/backend/internal/models"
)

var (
	ErrQuestionNotFound = errors.New("Question not found")
	ErrAnswerNotFound   = errors.New("Answer not found")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListQuestions returns all questions newest-created first, each with its
// answers in insertion order.
func (s *Store) ListQuestions() ([]models.Question, error) {
	var questions []models.Question

	err := s.db.
		Preload("Answers", answerOrder).
		Order("created_at desc").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	for i := range questions {
		if questions[i].Answers == nil {
			questions[i].Answers = []models.Answer{}
		}
	}

	// Empty board is an empty array, not null
	if questions == nil {
		questions = []models.Question{}
	}

	return questions, nil
}

// GetQuestion resolves a question by its opaque identifier.
func (s *Store) GetQuestion(id string) (*models.Question, error) {
	var question models.Question

	err := s.db.
		Preload("Answers", answerOrder).
		First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}

	if question.Answers == nil {
		question.Answers = []models.Answer{}
	}

	return &question, nil
}

// CreateQuestion persists a new question with a fresh identifier and default
// vote state.
func (s *Store) CreateQuestion(title, content, category string) (*models.Question, error) {
	question := models.Question{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		Category: strings.TrimSpace(category),
		Answers:  []models.Answer{},
	}

	if err := s.db.Omit("Answers").Create(&question).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

// SaveQuestion replaces the stored document with q in one transaction and
// returns the persisted copy. Answers must already exist; appending goes
// through AppendAnswer.
func (s *Store) SaveQuestion(q *models.Question) (*models.Question, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Answers").Save(q).Error; err != nil {
			return err
		}
		for i := range q.Answers {
			q.Answers[i].QuestionID = q.ID
			if err := tx.Save(&q.Answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetQuestion(q.ID)
}

// AppendAnswer adds a new answer to the end of a question's answer list and
// returns the updated question. The identifier is assigned here and cannot
// collide with existing answers.
func (s *Store) AppendAnswer(questionID, content string) (*models.Question, error) {
	question, err := s.GetQuestion(questionID)
	if err != nil {
		return nil, err
	}

	answer := models.Answer{
		ID:         uuid.NewString(),
		QuestionID: question.ID,
		Content:    strings.TrimSpace(content),
		Position:   len(question.Answers),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answer).Error; err != nil {
			return err
		}
		// Touch the parent so updatedAt tracks the append
		return tx.Model(&models.Question{}).
			Where("id = ?", question.ID).
			Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetQuestion(questionID)
}

func answerOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
