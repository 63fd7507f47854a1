package ranking

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/upskill-advisor/internal/llm"
	"github.com/jonathan/upskill-advisor/internal/prompts"
)

const defaultJudgeConcurrency = 4

// llmJudgeResponse represents the expected JSON response from the LLM.
type llmJudgeResponse struct {
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// LLMJudge is an Oracle that asks an LLM to rate each course document
// against the learner query.
type LLMJudge struct {
	client      llm.Client
	concurrency int
}

// NewLLMJudge creates a judge issuing at most concurrency requests at once.
// A nil client yields an unavailable judge.
func NewLLMJudge(client llm.Client, concurrency int) *LLMJudge {
	if concurrency <= 0 {
		concurrency = defaultJudgeConcurrency
	}
	return &LLMJudge{client: client, concurrency: concurrency}
}

// Available reports whether an LLM client is configured.
func (j *LLMJudge) Available() bool {
	return j != nil && j.client != nil
}

// Name returns the model used for judgments.
func (j *LLMJudge) Name() string {
	if !j.Available() {
		return "none"
	}
	return j.client.GetModel(llm.TierLite)
}

// Score rates every document. Any failed judgment fails the whole call so
// the caller can fall back to retrieval order.
func (j *LLMJudge) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if !j.Available() {
		return nil, fmt.Errorf("LLM judge not configured")
	}

	scores := make([]float64, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for i, doc := range documents {
		g.Go(func() error {
			score, err := JudgeCourseRelevance(gctx, j.client, query, doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// JudgeCourseRelevance asks the LLM how relevant one course document is to
// the query. The score is clamped to [0, 1].
func JudgeCourseRelevance(ctx context.Context, client llm.Client, query, document string) (float64, error) {
	prompt, err := prompts.Render(prompts.JudgeCourseRelevance, prompts.JudgeInput{
		Query:    query,
		Document: document,
	})
	if err != nil {
		return 0, err
	}

	jsonResp, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return 0, fmt.Errorf("LLM generation failed: %w", err)
	}

	jsonResp = llm.CleanJSONBlock(jsonResp)

	var response llmJudgeResponse
	if err := json.Unmarshal([]byte(jsonResp), &response); err != nil {
		return 0, fmt.Errorf("failed to parse LLM response: %w (content: %s)", err, jsonResp)
	}

	if response.RelevanceScore < 0.0 {
		response.RelevanceScore = 0.0
	}
	if response.RelevanceScore > 1.0 {
		response.RelevanceScore = 1.0
	}
	return response.RelevanceScore, nil
}
