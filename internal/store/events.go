package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// LLMRequestEventData captures a single generation request for the audit log.
type LLMRequestEventData struct {
	Model        string
	Capability   string // "text", "image", "speech", "video"
	Purpose      string // e.g. "question_sentence", "explanation"
	LatencyMs    int64
	Success      bool
	InputTokens  int
	OutputTokens int
	RequestBody  string
	ResponseBody string
	ErrorMessage string
}

// LLMEvent is a stored generation event row.
type LLMEvent struct {
	ID           int64     `db:"id"`
	Model        string    `db:"model"`
	Capability   string    `db:"capability"`
	Purpose      string    `db:"purpose"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}

// EventRepo appends and queries generation events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMEvent, error)
}

type eventRepo struct {
	db *sqlx.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_events
		   (model, capability, purpose, latency_ms, success,
		    input_tokens, output_tokens, request_body, response_body, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Model, data.Capability, data.Purpose, data.LatencyMs, data.Success,
		data.InputTokens, data.OutputTokens, data.RequestBody, data.ResponseBody, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("append llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentLLMRequests(ctx context.Context, limit int) ([]LLMEvent, error) {
	var events []LLMEvent
	err := r.db.SelectContext(ctx, &events,
		`SELECT id, model, capability, purpose, latency_ms, success,
		        input_tokens, output_tokens, request_body, response_body,
		        error_message, created_at
		 FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list llm events: %w", err)
	}
	return events, nil
}
