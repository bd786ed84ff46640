package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Overlay contains dynamic record data to visualize on the graph.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayFromRecord builds an overlay from a record's history and current state.
func OverlayFromRecord(rec *domain.Record, stateField string) *Overlay {
	o := &Overlay{}
	for _, h := range rec.History {
		if h.From != "" {
			o.VisitedSteps = append(o.VisitedSteps, h.From)
		}
		o.VisitedSteps = append(o.VisitedSteps, h.To)
	}
	if v, ok := rec.Attributes[stateField]; ok && v != nil {
		o.CurrentStep = fmt.Sprint(v)
	}
	return o
}

// GenerateMermaid produces a Mermaid state flowchart for a machine configuration.
// It applies semantic styling:
// - Terminal step (no outbound transitions): ((Circle))
// - Default: [Rectangle]
// Transitions targeting undeclared steps are drawn dotted.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(cfg domain.Config, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, id := range cfg.Steps.IDs() {
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		if len(cfg.From(id)) == 0 {
			opener, closer = "((", "))"
		}

		label := id
		if text := cfg.Steps[id]; text != "" {
			label = text
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escape(label), closer))
	}

	for _, name := range cfg.TransitionNames() {
		t := cfg.Transitions[name]

		label := name
		if t.Text != "" {
			label = t.Text
		}

		arrow := fmt.Sprintf("-- \"%s\" -->", escape(label))
		if !cfg.Steps.Has(t.To) || !cfg.Steps.Has(t.From) {
			arrow = fmt.Sprintf("-. \"%s\" .->", escape(label))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(t.From), arrow, sanitizeMermaidID(t.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
