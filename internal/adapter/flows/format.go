package flows

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/port"
)

const missionIDsMarker = "MISSION_IDS:"

func formatMissions(missions []port.MissionSummary) string {
	if len(missions) == 0 {
		return "No mission is currently open."
	}

	var b strings.Builder
	for _, m := range missions {
		seats := "unlimited"
		if m.Remaining >= 0 {
			seats = fmt.Sprintf("%d", m.Remaining)
		}
		fmt.Fprintf(&b, "- id=%s | %s | %s | starts %s | seats left: %s\n", m.ID, m.Title, m.Location, m.StartAt, seats)
		if d := strings.TrimSpace(m.Description); d != "" {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	return b.String()
}

func languageInstruction(lang string) string {
	if lang == "" {
		lang = "fr"
	}
	return fmt.Sprintf("Answer in the language with BCP 47 tag %q.", lang)
}

// extractMissionIDs reads the last MISSION_IDS line of response and keeps
// the IDs that belong to missions, in the order the model gave them.
func extractMissionIDs(response string, missions []port.MissionSummary) []string {
	known := make(map[string]bool, len(missions))
	for _, m := range missions {
		known[m.ID] = true
	}

	lines := strings.Split(response, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.Trim(strings.TrimSpace(lines[i]), "*`")
		rest, ok := strings.CutPrefix(line, missionIDsMarker)
		if !ok {
			continue
		}

		var ids []string
		seen := map[string]bool{}
		for _, id := range strings.Split(rest, ",") {
			id = strings.TrimSpace(id)
			if known[id] && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return ids
	}
	return nil
}

// stripMarker removes the MISSION_IDS line from the text shown to users.
func stripMarker(response string) string {
	lines := strings.Split(response, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.Trim(strings.TrimSpace(l), "*`"), missionIDsMarker) {
			continue
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
