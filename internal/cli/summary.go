package cli

import (
	"fmt"
	"strings"

	"github.com/sinedied/azd-infra/internal/graph"
)

// CheckSummary is the machine-readable output of check --json.
type CheckSummary struct {
	Mode         string              `json:"mode"`
	RootPath     string              `json:"root_path"`
	InfraPath    string              `json:"infra_path"`
	Dialect      string              `json:"dialect"`
	Clean        bool                `json:"clean"`
	Modules      int                 `json:"modules"`
	MissingCount int                 `json:"missing_count"`
	UnusedCount  int                 `json:"unused_count"`
	UsedBy       map[string][]string `json:"used_by,omitempty"`
	Reasons      map[string]string   `json:"reasons,omitempty"`

	*graph.DependencyInfo
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
