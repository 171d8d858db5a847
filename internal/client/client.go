// Package client is the board's sync layer. It keeps a cached State of
// questions, applies vote mutations optimistically so the interface can
// paint with zero latency, and reconciles against the server's
// authoritative documents — rolling the cache back when the remote write
// fails.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devhive/qna/backend/internal/models"
	"github.com/devhive/qna/backend/internal/vote"
)

// APIError is a non-success response from the server. Message carries the
// server's message body verbatim when one could be decoded.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	// Observe, when set, receives the optimistic state published before the
	// remote phase of a vote. The caller's UI can render it immediately; the
	// state returned by the operation is the reconciled (or rolled back) one.
	Observe func(State)
}

// New returns a client for an API base URL, e.g. "http://localhost:8080/api".
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: 10 * time.Second})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) observe(st State) {
	if c.Observe != nil {
		c.Observe(st)
	}
}

// do issues one request and decodes the response into out. Non-2xx statuses
// become *APIError; network and decode failures come back as-is. There is no
// retry: every failure is terminal for the triggering action.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
		}
		var msg struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) fetchQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := c.do(ctx, http.MethodGet, "/questions", nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Client) fetchQuestion(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := c.do(ctx, http.MethodGet, "/questions/"+url.PathEscape(id), nil, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (c *Client) postQuestion(ctx context.Context, req models.CreateQuestionRequest) (*models.Question, error) {
	var question models.Question
	if err := c.do(ctx, http.MethodPost, "/questions", req, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (c *Client) postAnswer(ctx context.Context, questionID, content string) (*models.Question, error) {
	var question models.Question
	path := "/questions/" + url.PathEscape(questionID) + "/answers"
	if err := c.do(ctx, http.MethodPost, path, models.CreateAnswerRequest{Content: content}, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (c *Client) patchVote(ctx context.Context, path string, v vote.Value) (*models.Question, error) {
	var question models.Question
	body := struct {
		Vote int `json:"vote"`
	}{Vote: int(v)}
	if err := c.do(ctx, http.MethodPatch, path, body, &question); err != nil {
		return nil, err
	}
	return &question, nil
}
