package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/port"
)

// DescriptionFlow turns staff notes into a public mission description.
type DescriptionFlow struct {
	ai port.AIProvider
}

func NewDescriptionFlow(ai port.AIProvider) *DescriptionFlow {
	return &DescriptionFlow{ai: ai}
}

func (f *DescriptionFlow) Name() string { return "mission_description" }
func (f *DescriptionFlow) Description() string {
	return "Draft a public mission description from staff notes"
}

func (f *DescriptionFlow) Run(ctx context.Context, in port.FlowInput) (*port.FlowOutput, error) {
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		return nil, errors.New("mission description: notes are required")
	}

	systemPrompt := `You write mission announcements for a local Red Cross committee website.

Produce Markdown with:
1. A short title line (##)
2. One paragraph describing the mission and its purpose
3. A bullet list: date and time, meeting point, required skills or training, what to bring
4. One closing sentence inviting volunteers to register

Rules:
- Use only facts present in the notes. If something is missing, leave it out, never invent it.
- Neutral, humanitarian tone consistent with the Red Cross principles.
- No personal data about beneficiaries.
` + languageInstruction(in.Language)

	response, err := f.ai.Chat(ctx, systemPrompt, "Write the mission description.", []string{"Staff notes:\n" + notes})
	if err != nil {
		return nil, fmt.Errorf("mission description: %w", err)
	}

	return &port.FlowOutput{Flow: f.Name(), Text: strings.TrimSpace(response), Model: f.ai.ModelName()}, nil
}
