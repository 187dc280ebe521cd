package agent

import (
	"fmt"
	"strings"
)

// parsedStep is the structured form of one model response: either a tool
// invocation or a final answer, always with a thought.
type parsedStep struct {
	Thought     string
	Action      string
	ActionInput string
	FinalAnswer string
	IsFinal     bool
}

// parseError reports a model response that fits neither response shape. Raw
// is quoted back to the model so it can correct itself.
type parseError struct {
	Raw    string
	Reason string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("could not parse reasoning output: %s", e.Reason)
}

const (
	thoughtMarker     = "Thought:"
	actionMarker      = "Action:"
	actionInputMarker = "Action Input:"
	finalAnswerMarker = "Final Answer:"
)

// parseReAct parses a raw completion into a parsedStep. The accepted grammar
// is the two ReAct response shapes:
//
//	Thought: ...
//	Action: <tool name>
//	Action Input: <single line>
//
//	Thought: ...
//	Final Answer: <text to end of output>
func parseReAct(raw string) (parsedStep, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return parsedStep{}, &parseError{Raw: raw, Reason: "empty response"}
	}

	hasAction := strings.Contains(text, actionMarker)
	hasFinal := strings.Contains(text, finalAnswerMarker)

	switch {
	case hasAction && hasFinal:
		return parsedStep{}, &parseError{Raw: raw, Reason: "response contains both an Action and a Final Answer"}
	case hasFinal:
		idx := strings.Index(text, finalAnswerMarker)
		answer := strings.TrimSpace(text[idx+len(finalAnswerMarker):])
		if answer == "" {
			return parsedStep{}, &parseError{Raw: raw, Reason: "Final Answer is empty"}
		}
		return parsedStep{
			Thought:     extractThought(text[:idx]),
			FinalAnswer: answer,
			IsFinal:     true,
		}, nil
	case hasAction:
		idx := strings.Index(text, actionMarker)
		action, input, err := parseActionBlock(text[idx:])
		if err != "" {
			return parsedStep{}, &parseError{Raw: raw, Reason: err}
		}
		return parsedStep{
			Thought:     extractThought(text[:idx]),
			Action:      action,
			ActionInput: input,
		}, nil
	default:
		return parsedStep{}, &parseError{Raw: raw, Reason: "response contains neither an Action nor a Final Answer"}
	}
}

// extractThought pulls the text after "Thought:"; when the marker is absent
// the whole prefix is treated as the thought.
func extractThought(text string) string {
	if idx := strings.Index(text, thoughtMarker); idx != -1 {
		text = text[idx+len(thoughtMarker):]
	}
	return strings.TrimSpace(text)
}

// parseActionBlock parses "Action: name" followed by "Action Input: value".
// It returns a reason string instead of an error to keep the caller's
// wrapping uniform.
func parseActionBlock(text string) (action, input, reason string) {
	text = strings.TrimPrefix(text, actionMarker)

	inputIdx := strings.Index(text, actionInputMarker)
	if inputIdx == -1 {
		return "", "", "Action has no Action Input line"
	}

	action = strings.TrimSpace(text[:inputIdx])
	if action == "" {
		return "", "", "Action name is empty"
	}

	input = text[inputIdx+len(actionInputMarker):]
	// Keep only the first line: anything beyond it is model chatter.
	if nl := strings.IndexAny(input, "\r\n"); nl != -1 {
		input = input[:nl]
	}
	input = strings.TrimSpace(input)
	input = strings.Trim(input, `"`)
	return action, input, ""
}
