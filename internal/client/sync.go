package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/devhive/qna/backend/internal/models"
	"github.com/devhive/qna/backend/internal/vote"
)

// ErrNotCached means the target record is absent from the local state, so
// there is nothing to mutate optimistically.
var ErrNotCached = errors.New("record not in cached state")

// runOptimistic is the two-phase protocol shared by all vote operations:
// capture snapshot → apply the local transform and publish it → attempt the
// remote effect → on success adopt the server's authoritative document, on
// any failure return the snapshot exactly as captured.
func (c *Client) runOptimistic(
	ctx context.Context,
	st State,
	questionID string,
	local func(models.Question) models.Question,
	remote func(context.Context) (*models.Question, error),
) (State, error) {
	current, ok := st.Question(questionID)
	if !ok {
		return st, fmt.Errorf("question %s: %w", questionID, ErrNotCached)
	}

	snapshot := st
	optimistic := st.withQuestion(local(current.Clone()))
	c.observe(optimistic)

	authoritative, err := remote(ctx)
	if err != nil {
		return snapshot, err
	}

	return optimistic.withQuestion(authoritative.Clone()), nil
}

// VoteQuestion runs the optimistic vote protocol for a question. Clicking
// the direction that is already active clears the vote instead of
// re-affirming it; the effective vote — not the raw click — is what goes to
// the server.
func (c *Client) VoteQuestion(ctx context.Context, st State, questionID string, clicked vote.Value) (State, error) {
	current, ok := st.Question(questionID)
	if !ok {
		return st, fmt.Errorf("question %s: %w", questionID, ErrNotCached)
	}

	effective := vote.Toggle(vote.Value(current.UserVote), clicked)

	return c.runOptimistic(ctx, st, questionID,
		func(q models.Question) models.Question {
			var v vote.Value
			q.Votes, v = vote.Apply(q.Votes, vote.Value(q.UserVote), effective)
			q.UserVote = int(v)
			return q
		},
		func(ctx context.Context) (*models.Question, error) {
			return c.patchVote(ctx, "/questions/"+url.PathEscape(questionID)+"/vote", effective)
		},
	)
}

// VoteAnswer runs the same protocol against an answer nested in a question.
// The server responds with the whole question document, so reconciliation is
// identical to the question case.
func (c *Client) VoteAnswer(ctx context.Context, st State, questionID, answerID string, clicked vote.Value) (State, error) {
	current, ok := st.Question(questionID)
	if !ok {
		return st, fmt.Errorf("question %s: %w", questionID, ErrNotCached)
	}

	var old vote.Value
	found := false
	for i := range current.Answers {
		if current.Answers[i].ID == answerID {
			old = vote.Value(current.Answers[i].UserVote)
			found = true
			break
		}
	}
	if !found {
		return st, fmt.Errorf("answer %s: %w", answerID, ErrNotCached)
	}

	effective := vote.Toggle(old, clicked)

	return c.runOptimistic(ctx, st, questionID,
		func(q models.Question) models.Question {
			for i := range q.Answers {
				if q.Answers[i].ID == answerID {
					var v vote.Value
					q.Answers[i].Votes, v = vote.Apply(q.Answers[i].Votes, vote.Value(q.Answers[i].UserVote), effective)
					q.Answers[i].UserVote = int(v)
				}
			}
			return q
		},
		func(ctx context.Context) (*models.Question, error) {
			path := "/questions/" + url.PathEscape(questionID) + "/answers/" + url.PathEscape(answerID) + "/vote"
			return c.patchVote(ctx, path, effective)
		},
	)
}

// SubmitAnswer is one-phase: nothing is inserted optimistically. On success
// the cached question is replaced with the server's copy (which includes the
// new answer) and becomes the open question; on failure the state comes back
// untouched alongside the error.
func (c *Client) SubmitAnswer(ctx context.Context, st State, questionID, content string) (State, error) {
	updated, err := c.postAnswer(ctx, questionID, content)
	if err != nil {
		return st, err
	}

	next := st.withQuestion(updated.Clone())
	sel := updated.Clone()
	next.Selected = &sel
	return next, nil
}

// LoadQuestions replaces the cached list with the server's, newest first.
func (c *Client) LoadQuestions(ctx context.Context, st State) (State, error) {
	questions, err := c.fetchQuestions(ctx)
	if err != nil {
		return st, err
	}
	return State{Questions: questions, Selected: st.Selected}, nil
}

// CreateQuestion posts a new question and prepends it to the cache; the view
// returns to the board, so the selection is cleared.
func (c *Client) CreateQuestion(ctx context.Context, st State, title, content, category string) (State, error) {
	created, err := c.postQuestion(ctx, models.CreateQuestionRequest{
		Title:    title,
		Content:  content,
		Category: category,
	})
	if err != nil {
		return st, err
	}

	questions := make([]models.Question, 0, len(st.Questions)+1)
	questions = append(questions, created.Clone())
	questions = append(questions, st.Questions...)
	return State{Questions: questions}, nil
}

// OpenQuestion fetches the authoritative copy for the detail view. If the
// fetch fails but the question is cached, the cached copy is shown instead;
// only an unknown question surfaces the error.
func (c *Client) OpenQuestion(ctx context.Context, st State, questionID string) (State, error) {
	fetched, err := c.fetchQuestion(ctx, questionID)
	if err != nil {
		if cached, ok := st.Question(questionID); ok {
			sel := cached.Clone()
			next := st
			next.Selected = &sel
			return next, nil
		}
		return st, err
	}

	sel := fetched.Clone()
	next := st
	next.Selected = &sel
	return next, nil
}
