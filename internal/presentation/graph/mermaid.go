package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
)

// Overlay marks the path a question took through the pipeline.
type Overlay struct {
	Visited []domain.Stage
	Topic   string // matched topic, empty when none matched
	Current domain.Stage
}

// OverlayFromState derives the traversed path from a final state.
func OverlayFromState(s *domain.QAState) *Overlay {
	o := &Overlay{Topic: s.Topic, Current: s.Stage}
	if s.Outcome == domain.OutcomeEmptyQuestion {
		o.Visited = []domain.Stage{domain.StageStart, domain.StageTerminated}
		return o
	}
	o.Visited = []domain.Stage{
		domain.StageStart,
		domain.StageValidated,
		domain.StageContextResolved,
		domain.StageAnswered,
		domain.StageTerminated,
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the pipeline for a topic set.
// Stages are rectangles (start and terminated are circles) and every topic is a
// parallelogram between validation and context resolution, labelled with its triggers.
func GenerateMermaid(topics []domain.Topic, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", domain.StageStart, domain.StageStart))
	sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", domain.StageValidated, domain.StageValidated))
	sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", domain.StageContextResolved, domain.StageContextResolved))
	sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", domain.StageAnswered, domain.StageAnswered))
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", domain.StageTerminated, domain.StageTerminated))

	sb.WriteString(fmt.Sprintf("    %s --> %s\n", domain.StageStart, domain.StageValidated))
	sb.WriteString(fmt.Sprintf("    %s -. \"empty question\" .-> %s\n", domain.StageStart, domain.StageTerminated))

	for _, t := range topics {
		id := topicID(t.Name)
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", id, escapeLabel(t.Name)))
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", domain.StageValidated, escapeLabel(strings.Join(t.Triggers, ", ")), id))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, domain.StageContextResolved))
	}
	sb.WriteString(fmt.Sprintf("    %s -. \"no match\" .-> %s\n", domain.StageValidated, domain.StageContextResolved))
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", domain.StageContextResolved, domain.StageAnswered))
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", domain.StageAnswered, domain.StageTerminated))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Stage]bool)
		for _, stage := range overlay.Visited {
			if !seen[stage] && stage != overlay.Current {
				seen[stage] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", stage))
			}
		}
		if overlay.Topic != "" {
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", topicID(overlay.Topic)))
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", overlay.Current))
		}
	}

	return sb.String()
}

// topicID prefixes topic names so they never collide with stage IDs.
func topicID(name string) string {
	return "topic_" + sanitizeMermaidID(name)
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
