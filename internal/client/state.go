package client

import (
	"sort"

	"github.com/devhive/qna/backend/internal/models"
)

// State is the cached board: the question list plus the currently open
// question. Operations never mutate a State in place; they return the next
// one, so the value passed in doubles as the rollback snapshot.
type State struct {
	Questions []models.Question
	Selected  *models.Question
}

// Question looks up a cached question by id.
func (s State) Question(id string) (models.Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return s.Questions[i], true
		}
	}
	return models.Question{}, false
}

// withQuestion returns a new State with q swapped into the list and, when q
// is the open question, into the selection. The receiver's slice is left
// intact for snapshot rollback.
func (s State) withQuestion(q models.Question) State {
	next := State{
		Questions: make([]models.Question, len(s.Questions)),
		Selected:  s.Selected,
	}
	for i := range s.Questions {
		if s.Questions[i].ID == q.ID {
			next.Questions[i] = q
		} else {
			next.Questions[i] = s.Questions[i]
		}
	}
	if s.Selected != nil && s.Selected.ID == q.ID {
		sel := q.Clone()
		next.Selected = &sel
	}
	return next
}

// DisplayAnswers is the render-time answer order: highest tally first,
// insertion order on ties. It sorts a copy; the stored order is never
// touched.
func DisplayAnswers(q models.Question) []models.Answer {
	out := make([]models.Answer, len(q.Answers))
	copy(out, q.Answers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Votes > out[j].Votes
	})
	return out
}
