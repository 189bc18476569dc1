package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a matrix build.
// Causes feed the parent build, which fans out to one node per run:
// - Cause: ([Stadium])
// - Parent: [[Subroutine]]
// - Run: [Rectangle], styled run or skip by its decision
func GenerateMermaid(parent *domain.Build, runs []runcondition.RunDecision) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	parentID := sanitizeMermaidID(parent.ID)
	sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", parentID, escapeLabel(parent.ID)))

	for i, c := range parent.CauseList() {
		causeID := fmt.Sprintf("cause_%d", i)
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", causeID, escapeLabel(c.ShortDescription())))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", causeID, parentID))
	}

	for _, r := range runs {
		runID := sanitizeMermaidID(r.BuildID)
		label := r.BuildID
		if strings.HasPrefix(r.BuildID, parent.ID+"/") {
			label = strings.TrimPrefix(r.BuildID, parent.ID+"/")
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", runID, escapeLabel(label)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, runID))
	}

	if len(runs) > 0 {
		sb.WriteString("\n    %% Decision Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef run fill:#dcfce7,stroke:#16a34a,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skip fill:#ffe4e6,stroke:#e11d48,stroke-width:2px,color:#000;\n")
		for _, r := range runs {
			class := "skip"
			if r.Result {
				class = "run"
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(r.BuildID), class))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(
		".", "_", "-", "_", "/", "_", "\\", "_",
		"=", "_", ",", "_", " ", "_", "#", "_",
	)
	return r.Replace(id)
}
