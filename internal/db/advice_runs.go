package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/upskill-advisor/internal/types"
)

// AdviceRun is one stored advise request and its response.
type AdviceRun struct {
	ID        uuid.UUID            `json:"id"`
	GoalRole  string               `json:"goal_role"`
	Level     string               `json:"level"`
	JDFound   bool                 `json:"jd_found"`
	Request   types.AdviseRequest  `json:"request"`
	Response  types.AdviseResponse `json:"response"`
	CreatedAt time.Time            `json:"created_at"`
}

// SaveAdviceRun stores a request/response pair and returns its new ID.
func (db *DB) SaveAdviceRun(ctx context.Context, req *types.AdviseRequest, resp *types.AdviseResponse) (uuid.UUID, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO advice_runs (id, goal_role, level, jd_found, request, response)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, req.GoalRole, string(req.Level), resp.Usage.JDFound, reqJSON, respJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save advice run: %w", err)
	}
	return id, nil
}

// GetAdviceRun loads a stored run. A missing run returns nil, nil.
func (db *DB) GetAdviceRun(ctx context.Context, id uuid.UUID) (*AdviceRun, error) {
	var run AdviceRun
	var reqJSON, respJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, goal_role, level, jd_found, request, response, created_at
		 FROM advice_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.GoalRole, &run.Level, &run.JDFound, &reqJSON, &respJSON, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get advice run: %w", err)
	}

	if err := json.Unmarshal(reqJSON, &run.Request); err != nil {
		return nil, fmt.Errorf("failed to decode stored request: %w", err)
	}
	if err := json.Unmarshal(respJSON, &run.Response); err != nil {
		return nil, fmt.Errorf("failed to decode stored response: %w", err)
	}
	return &run, nil
}
