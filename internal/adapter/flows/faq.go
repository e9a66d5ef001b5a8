package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/port"
)

// FAQFlow answers volunteer questions about the committee.
type FAQFlow struct {
	ai        port.AIProvider
	knowledge []string
}

// NewFAQFlow creates the flow. knowledge holds committee facts (opening hours,
// training, contacts) given to the model with every question.
func NewFAQFlow(ai port.AIProvider, knowledge []string) *FAQFlow {
	return &FAQFlow{ai: ai, knowledge: knowledge}
}

func (f *FAQFlow) Name() string { return "volunteer_faq" }
func (f *FAQFlow) Description() string {
	return "Answer volunteer questions from committee information"
}

func (f *FAQFlow) Run(ctx context.Context, in port.FlowInput) (*port.FlowOutput, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, errors.New("volunteer faq: question is required")
	}

	systemPrompt := `You answer questions from volunteers and visitors of a local Red Cross committee.

Rules:
- Base your answer on the reference information. If it does not contain the answer, say so and suggest contacting the committee.
- Never give medical advice beyond pointing to emergency services (15 or 112) when relevant.
- Keep answers short: a few sentences or a short list.
` + languageInstruction(in.Language)

	refs := make([]string, 0, len(f.knowledge)+1)
	refs = append(refs, f.knowledge...)
	if len(in.Missions) > 0 {
		refs = append(refs, "Open missions:\n"+formatMissions(in.Missions))
	}

	response, err := f.ai.Chat(ctx, systemPrompt, question, refs)
	if err != nil {
		return nil, fmt.Errorf("volunteer faq: %w", err)
	}

	return &port.FlowOutput{Flow: f.Name(), Text: strings.TrimSpace(response), Model: f.ai.ModelName()}, nil
}
