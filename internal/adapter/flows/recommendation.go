package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/port"
)

// RecommendationFlow matches a volunteer profile with open missions.
type RecommendationFlow struct {
	ai port.AIProvider
}

func NewRecommendationFlow(ai port.AIProvider) *RecommendationFlow {
	return &RecommendationFlow{ai: ai}
}

func (f *RecommendationFlow) Name() string { return "mission_recommendation" }
func (f *RecommendationFlow) Description() string {
	return "Suggest open missions that fit a volunteer's skills and availability"
}

func (f *RecommendationFlow) Run(ctx context.Context, in port.FlowInput) (*port.FlowOutput, error) {
	if in.Volunteer == nil {
		return nil, errors.New("mission recommendation: volunteer profile is required")
	}
	if len(in.Missions) == 0 {
		return &port.FlowOutput{Flow: f.Name(), Text: "Aucune mission ouverte pour le moment.", Model: f.ai.ModelName()}, nil
	}

	systemPrompt := `You are the volunteer coordinator of a local Red Cross committee. You help volunteers choose missions.

Rules:
- Only recommend missions from the provided list, never invent one.
- Rank at most 3 missions, best fit first, with one or two sentences each explaining the fit (skills, availability, location).
- Be warm and concise. Do not promise a seat; the volunteer still has to register.
- End your answer with a single line of the form:
MISSION_IDS: <id>, <id>, <id>
` + languageInstruction(in.Language)

	profile := fmt.Sprintf("Volunteer: %s\nSkills: %s\nAvailability: %s",
		in.Volunteer.Name, strings.Join(in.Volunteer.Skills, ", "), in.Volunteer.Availability)
	missionContext := []string{profile, "Open missions:\n" + formatMissions(in.Missions)}

	question := "Which missions would suit me best?"
	if q := strings.TrimSpace(in.Question); q != "" {
		question = q
	}

	response, err := f.ai.Chat(ctx, systemPrompt, question, missionContext)
	if err != nil {
		return nil, fmt.Errorf("mission recommendation: %w", err)
	}

	return &port.FlowOutput{
		Flow:       f.Name(),
		Text:       stripMarker(response),
		Model:      f.ai.ModelName(),
		MissionIDs: extractMissionIDs(response, in.Missions),
	}, nil
}
