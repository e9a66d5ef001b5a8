package port

import (
	"context"
	"sort"
)

// Flow is a named prompt template run against an AIProvider (Strategy Pattern).
type Flow interface {
	// Name returns the unique name of this flow (e.g. "mission_recommendation").
	Name() string

	// Description returns a human-readable description of what the flow produces.
	Description() string

	// Run executes the flow on the given input.
	Run(ctx context.Context, in FlowInput) (*FlowOutput, error)
}

// FlowInput carries everything a flow may use. Flows ignore the fields they do not need.
type FlowInput struct {
	Question  string            `json:"question,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Language  string            `json:"language,omitempty"`
	Volunteer *VolunteerProfile `json:"volunteer,omitempty"`
	Missions  []MissionSummary  `json:"missions,omitempty"`
}

// VolunteerProfile is the part of a volunteer shown to the model.
type VolunteerProfile struct {
	Name         string   `json:"name"`
	Skills       []string `json:"skills"`
	Availability string   `json:"availability"`
}

// MissionSummary is the part of a mission shown to the model.
type MissionSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartAt     string `json:"start_at"`
	Remaining   int    `json:"remaining"` // -1 = unlimited
}

// FlowOutput holds the model answer.
type FlowOutput struct {
	Flow  string `json:"flow"`
	Text  string `json:"text"`
	Model string `json:"model"`

	// MissionIDs lists recommended missions, in rank order, when the flow recommends.
	MissionIDs []string `json:"mission_ids,omitempty"`
}

// FlowEngine dispatches to registered flows.
type FlowEngine struct {
	flows map[string]Flow
}

// NewFlowEngine creates a new engine with the given flows.
func NewFlowEngine(flows ...Flow) *FlowEngine {
	m := make(map[string]Flow, len(flows))
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &FlowEngine{flows: m}
}

// Run executes the named flow.
func (e *FlowEngine) Run(ctx context.Context, name string, in FlowInput) (*FlowOutput, error) {
	f, ok := e.flows[name]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f.Run(ctx, in)
}

// AvailableFlows returns the names of all registered flows, sorted.
func (e *FlowEngine) AvailableFlows() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
