package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devhive/qna/backend/internal/models"
	"github.com/devhive/qna/backend/internal/vote"
)

func testQuestion() models.Question {
	return models.Question{
		ID:       "q1",
		Title:    "Why?",
		Content:  "Explain X",
		Category: "Backend",
		Answers: []models.Answer{
			{ID: "a1", QuestionID: "q1", Content: "Because Y", Position: 0},
			{ID: "a2", QuestionID: "q1", Content: "Because Z", Position: 1},
		},
	}
}

func testState() State {
	return State{Questions: []models.Question{testQuestion()}}
}

func newTestClient(t *testing.T, fn http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL, srv.Client())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestVoteQuestionOptimisticThenReconcile(t *testing.T) {
	var gotMethod, gotPath string
	var gotVote int

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		var body struct {
			Vote int `json:"vote"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotVote = body.Vote

		// The server is the source of truth: respond with a tally the
		// client could not have guessed.
		q := testQuestion()
		q.Votes = 42
		q.UserVote = body.Vote
		writeJSON(t, w, http.StatusOK, q)
	})

	var optimistic State
	c.Observe = func(st State) { optimistic = st }

	st := testState()
	next, err := c.VoteQuestion(context.Background(), st, "q1", vote.Up)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/questions/q1/vote", gotPath)
	assert.Equal(t, 1, gotVote)

	// Optimistic phase applied the delta locally before the round trip
	q, ok := optimistic.Question("q1")
	require.True(t, ok)
	assert.Equal(t, 1, q.Votes)
	assert.Equal(t, 1, q.UserVote)

	// Reconciled state adopts the authoritative document
	q, ok = next.Question("q1")
	require.True(t, ok)
	assert.Equal(t, 42, q.Votes)

	// The baseline state is untouched
	q, _ = st.Question("q1")
	assert.Equal(t, 0, q.Votes)
}

func TestVoteQuestionToggleSendsZero(t *testing.T) {
	var gotVote int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vote int `json:"vote"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotVote = body.Vote

		q := testQuestion()
		q.Votes = 0
		q.UserVote = body.Vote
		writeJSON(t, w, http.StatusOK, q)
	})

	st := testState()
	st.Questions[0].Votes = 1
	st.Questions[0].UserVote = 1

	next, err := c.VoteQuestion(context.Background(), st, "q1", vote.Up)
	require.NoError(t, err)

	// Clicking the active direction clears the vote rather than re-affirming
	assert.Equal(t, 0, gotVote)
	q, _ := next.Question("q1")
	assert.Equal(t, 0, q.Votes)
	assert.Equal(t, 0, q.UserVote)
}

func TestVoteQuestionRollbackOnServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]string{"message": "Failed to save vote"})
	})

	st := testState()
	next, err := c.VoteQuestion(context.Background(), st, "q1", vote.Up)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to save vote", apiErr.Message)

	// Cache equals the pre-optimistic snapshot exactly
	assert.Equal(t, st, next)
}

func TestVoteQuestionRollbackOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := NewWithHTTPClient(srv.URL, srv.Client())
	srv.Close() // connection refused from here on

	st := testState()
	next, err := c.VoteQuestion(context.Background(), st, "q1", vote.Down)
	require.Error(t, err)
	assert.Equal(t, st, next)
}

func TestVoteQuestionRollbackOnMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	})

	st := testState()
	next, err := c.VoteQuestion(context.Background(), st, "q1", vote.Up)
	require.Error(t, err)
	assert.Equal(t, st, next)
}

func TestVoteQuestionUnknownTarget(t *testing.T) {
	c := New("http://localhost:0")

	st := testState()
	next, err := c.VoteQuestion(context.Background(), st, "missing", vote.Up)
	require.ErrorIs(t, err, ErrNotCached)
	assert.Equal(t, st, next)
}

func TestVoteAnswerOptimisticThenReconcile(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		q := testQuestion()
		q.Answers[1].Votes = 7
		q.Answers[1].UserVote = 1
		writeJSON(t, w, http.StatusOK, q)
	})

	var optimistic State
	c.Observe = func(st State) { optimistic = st }

	st := testState()
	next, err := c.VoteAnswer(context.Background(), st, "q1", "a2", vote.Up)
	require.NoError(t, err)
	assert.Equal(t, "/questions/q1/answers/a2/vote", gotPath)

	q, _ := optimistic.Question("q1")
	assert.Equal(t, 1, q.Answers[1].Votes)
	assert.Equal(t, 1, q.Answers[1].UserVote)
	assert.Equal(t, 0, q.Answers[0].Votes, "sibling answers stay put")

	q, _ = next.Question("q1")
	assert.Equal(t, 7, q.Answers[1].Votes)

	// The baseline answer record is untouched
	q, _ = st.Question("q1")
	assert.Equal(t, 0, q.Answers[1].Votes)
}

func TestVoteAnswerRollbackOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"message": "Answer not found"})
	})

	st := testState()
	st.Questions[0].Answers[0].Votes = 3

	next, err := c.VoteAnswer(context.Background(), st, "q1", "a1", vote.Down)
	require.Error(t, err)
	assert.Equal(t, st, next)

	q, _ := next.Question("q1")
	assert.Equal(t, 3, q.Answers[0].Votes)
	assert.Equal(t, 0, q.Answers[0].UserVote)
}

func TestVoteAnswerUnknownAnswer(t *testing.T) {
	c := New("http://localhost:0")

	st := testState()
	next, err := c.VoteAnswer(context.Background(), st, "q1", "nope", vote.Up)
	require.ErrorIs(t, err, ErrNotCached)
	assert.Equal(t, st, next)
}

// A second vote issued while the first is still in flight uses the latest
// optimistic state as its baseline; nothing queues or locks.
func TestOverlappingVotesUseLatestOptimisticBaseline(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	var secondVote int

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var body struct {
			Vote int `json:"vote"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if n == 1 {
			<-release // hold the first write open
		} else {
			secondVote = body.Vote
		}

		q := testQuestion()
		q.UserVote = body.Vote
		q.Votes = body.Vote
		writeJSON(t, w, http.StatusOK, q)
	})

	optimistic := make(chan State, 1)
	c.Observe = func(st State) {
		select {
		case optimistic <- st:
		default:
		}
	}

	st := testState()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.VoteQuestion(context.Background(), st, "q1", vote.Up)
	}()

	// The first action's optimistic state is the second action's baseline
	base := <-optimistic
	q, _ := base.Question("q1")
	require.Equal(t, 1, q.UserVote)

	next, err := c.VoteQuestion(context.Background(), base, "q1", vote.Up)
	require.NoError(t, err)

	close(release)
	<-done

	// Against the optimistic baseline the second click is a toggle-off
	assert.Equal(t, 0, secondVote)
	q, _ = next.Question("q1")
	assert.Equal(t, 0, q.UserVote)
}

func TestSubmitAnswerSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/questions/q1/answers", r.URL.Path)

		q := testQuestion()
		q.Answers = append(q.Answers, models.Answer{ID: "a3", QuestionID: "q1", Content: "Fresh", Position: 2})
		writeJSON(t, w, http.StatusCreated, q)
	})

	st := testState()
	next, err := c.SubmitAnswer(context.Background(), st, "q1", "Fresh")
	require.NoError(t, err)

	q, _ := next.Question("q1")
	assert.Len(t, q.Answers, 3)

	// The view advances to the updated question
	require.NotNil(t, next.Selected)
	assert.Equal(t, "q1", next.Selected.ID)
	assert.Len(t, next.Selected.Answers, 3)
}

func TestSubmitAnswerFailureLeavesStateUntouched(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"message": "Please provide answer content"})
	})

	st := testState()
	next, err := c.SubmitAnswer(context.Background(), st, "q1", "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Please provide answer content", apiErr.Message)
	assert.Equal(t, st, next)
}

func TestLoadQuestions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/questions", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []models.Question{
			{ID: "q2", Title: "Newest"},
			{ID: "q1", Title: "Oldest"},
		})
	})

	next, err := c.LoadQuestions(context.Background(), State{})
	require.NoError(t, err)
	require.Len(t, next.Questions, 2)
	assert.Equal(t, "q2", next.Questions[0].ID)
}

func TestCreateQuestionPrepends(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateQuestionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, http.StatusCreated, models.Question{
			ID:       "q9",
			Title:    req.Title,
			Content:  req.Content,
			Category: req.Category,
			Answers:  []models.Answer{},
		})
	})

	st := testState()
	next, err := c.CreateQuestion(context.Background(), st, "New?", "Body", "Frontend")
	require.NoError(t, err)
	require.Len(t, next.Questions, 2)
	assert.Equal(t, "q9", next.Questions[0].ID)
	assert.Equal(t, "q1", next.Questions[1].ID)
	assert.Nil(t, next.Selected)
}

func TestOpenQuestionFallsBackToCache(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch question"})
	})

	st := testState()
	next, err := c.OpenQuestion(context.Background(), st, "q1")
	require.NoError(t, err)
	require.NotNil(t, next.Selected)
	assert.Equal(t, "q1", next.Selected.ID)

	// Unknown questions still surface the error
	_, err = c.OpenQuestion(context.Background(), st, "missing")
	require.Error(t, err)
}

func TestDisplayAnswersSortsWithoutMutating(t *testing.T) {
	q := models.Question{
		ID: "q1",
		Answers: []models.Answer{
			{ID: "a1", Votes: 1, Position: 0},
			{ID: "a2", Votes: 5, Position: 1},
			{ID: "a3", Votes: 3, Position: 2},
			{ID: "a4", Votes: 5, Position: 3},
		},
	}

	display := DisplayAnswers(q)

	ids := make([]string, len(display))
	for i, a := range display {
		ids[i] = a.ID
	}
	// Descending tally, ties in insertion order
	assert.Equal(t, []string{"a2", "a4", "a3", "a1"}, ids)

	// Storage order untouched
	assert.Equal(t, "a1", q.Answers[0].ID)
	assert.Equal(t, "a2", q.Answers[1].ID)
	assert.Equal(t, "a3", q.Answers[2].ID)
	assert.Equal(t, "a4", q.Answers[3].ID)
}
