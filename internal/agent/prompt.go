package agent

import (
	"fmt"
	"strings"

	"doc-qa-agent/internal/models"
)

const systemPromptTemplate = `You are a ReAct-style agent. You must follow the response format precisely.

You have access to the following tools:
%s

**RESPONSE FORMAT (CRITICAL):**
After every "Thought:", you must choose one of two options:

**OPTION 1: Use a tool to gather more information.**
The format MUST be a three-line block:

Thought: [Your reasoning to use a tool]
Action: [tool_name]
Action Input: [The input for the tool. Use an empty string "" if the tool takes no input.]

**OPTION 2: Give the final answer because you have enough information.**
The format MUST be a two-line block:

Thought: [Your reasoning that you have the final answer]
Final Answer: [The direct answer to the user's question]

**Operational Rules:**
1. Always start by classifying the document if the type is unknown.
2. For a thesis, if asked about its composition (e.g., "are there sub-papers?"), use analyze_thesis_structure.
3. Use the other tools as needed, but always aim to reach a Final Answer.

When providing an action, it MUST be one of the following: [%s]

Begin!`

// systemPrompt renders the fixed instructions with the tool registry.
func systemPrompt() string {
	var tools strings.Builder
	for _, spec := range toolSpecs {
		fmt.Fprintf(&tools, "%s: %s\n", spec.Name, spec.Description)
	}
	return fmt.Sprintf(systemPromptTemplate, strings.TrimRight(tools.String(), "\n"), strings.Join(toolNames(), ", "))
}

// userPrompt renders the current turn: document identity, question, and the
// scratchpad accumulated so far in this turn.
func userPrompt(path, question string, steps []models.ScratchpadStep) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DOCUMENT PATH: %s\n\nQUESTION: %s", path, question)
	if len(steps) > 0 {
		sb.WriteString("\n\nThis is your work so far:\n\n")
		sb.WriteString(renderScratchpad(steps))
		sb.WriteString("\nContinue from here.")
	}
	return sb.String()
}

// renderScratchpad replays reasoning steps in the same format the model
// emits them, each followed by its observation.
func renderScratchpad(steps []models.ScratchpadStep) string {
	var sb strings.Builder
	for _, step := range steps {
		if step.Thought != "" {
			fmt.Fprintf(&sb, "Thought: %s\n", step.Thought)
		}
		if step.Action != "" {
			fmt.Fprintf(&sb, "Action: %s\nAction Input: %s\n", step.Action, step.ActionInput)
		}
		if step.Observation != "" {
			fmt.Fprintf(&sb, "Observation: %s\n", step.Observation)
		}
	}
	return sb.String()
}

// recoveryObservation is fed back to the model after an unparseable
// response. It quotes the faulty output so the model can see its own
// mistake.
func recoveryObservation(raw string, err error) string {
	return fmt.Sprintf(
		"Your previous response was not formatted correctly. "+
			"You must always use the ReAct format with a 'Thought:', and then an 'Action:' or 'Final Answer:'.\n\n"+
			"Here was the faulty response: ```%s```\n"+
			"Here is the error from the parser: %v\n\n"+
			"Try again, making sure to use the correct format.",
		raw, err)
}
