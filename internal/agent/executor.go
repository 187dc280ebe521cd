package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"doc-qa-agent/internal/models"
	"doc-qa-agent/internal/oracle"
)

// defaultMaxSteps bounds one reasoning turn. The model is untrusted and may
// loop; the budget guarantees termination.
const defaultMaxSteps = 10

// BudgetExhaustedAnswer is returned when the step budget runs out before a
// final answer.
const BudgetExhaustedAnswer = "I was not able to reach a final answer within the allowed number of reasoning steps. " +
	"Please rephrase the question or ask something more specific."

// ingestionQuery is the canned analysis run when a document is first taken in.
const ingestionQuery = "First, classify this document as a 'thesis' or a 'paper'. " +
	"Then, if it is a thesis, analyze its structure to see if it's a compilation of papers. " +
	"Provide a summary of your findings."

// Ask runs one reasoning turn for a user question. The loop alternates
// between asking the model for a reasoning step and executing the requested
// tool until the model produces a final answer or the step budget runs out.
//
// The caller's history slice is never mutated; the returned TurnResult
// carries a new history with this turn's two entries appended. Only model
// transport failures surface as errors; every tool-level failure is fed
// back to the model as an observation.
func (s *Session) Ask(ctx context.Context, question string, history []models.ChatTurn) (models.TurnResult, error) {
	system := systemPrompt()
	var steps []models.ScratchpadStep

	for step := 0; step < s.maxSteps; step++ {
		raw, err := s.oracle.Complete(ctx, oracle.Request{
			System:  system,
			History: history,
			User:    userPrompt(s.path, question, steps),
		})
		if err != nil {
			return models.TurnResult{}, fmt.Errorf("reasoning step failed: %w", err)
		}

		parsed, perr := parseReAct(raw)
		if perr != nil {
			s.log.Warn("unparseable reasoning output", zap.Error(perr), zap.Int("step", step))
			steps = append(steps, models.ScratchpadStep{
				Observation: recoveryObservation(raw, perr),
			})
			continue
		}

		if parsed.IsFinal {
			s.log.Info("final answer reached", zap.Int("steps", step+1))
			return s.finishTurn(question, history, parsed.FinalAnswer), nil
		}

		observation := s.runTool(ctx, parsed.Action, parsed.ActionInput)
		steps = append(steps, models.ScratchpadStep{
			Thought:     parsed.Thought,
			Action:      parsed.Action,
			ActionInput: parsed.ActionInput,
			Observation: observation,
		})
	}

	s.log.Warn("step budget exhausted without a final answer", zap.Int("budget", s.maxSteps))
	return s.finishTurn(question, history, BudgetExhaustedAnswer), nil
}

// runTool parses and dispatches one tool invocation. Whatever goes wrong,
// an unknown tool, malformed input, or a failing capability, comes back as
// observation text the model can react to.
func (s *Session) runTool(ctx context.Context, action, input string) string {
	req, err := parseToolRequest(action, input)
	if err != nil {
		return err.Error()
	}

	observation, err := s.dispatch(ctx, req)
	if err != nil {
		s.log.Warn("tool execution failed", zap.String("tool", action), zap.Error(err))
		return fmt.Sprintf("Error: the tool %s failed: %v", action, err)
	}
	return observation
}

// finishTurn builds the turn result with a fresh, extended history.
func (s *Session) finishTurn(question string, history []models.ChatTurn, answer string) models.TurnResult {
	updated := make([]models.ChatTurn, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		models.ChatTurn{Role: models.RoleUser, Content: question},
		models.ChatTurn{Role: models.RoleAssistant, Content: answer},
	)
	return models.TurnResult{FinalAnswer: answer, ChatHistory: updated}
}

// ClassifyAndSummarize runs the ingestion-time analysis: classify the
// document and, for a thesis, describe its composition. It is a plain agent
// turn with an empty history.
func (s *Session) ClassifyAndSummarize(ctx context.Context) (string, error) {
	result, err := s.Ask(ctx, ingestionQuery, nil)
	if err != nil {
		return "", err
	}
	return result.FinalAnswer, nil
}
