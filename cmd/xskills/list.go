package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xskills/xskills/pkg/agents"
	"github.com/xskills/xskills/pkg/presenter"
	"github.com/xskills/xskills/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills",
	Long: `List skills installed for an agent and scope, with the description
from each skill's SKILL.md frontmatter.

Examples:
  xskills list
  xskills list --agent codex --scope global
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		agent, _ := cmd.Flags().GetString("agent")
		scope, _ := cmd.Flags().GetString("scope")

		discovery, err := skills.NewDiscovery(skills.WithAgentScope(agent, scope, "", ""))
		if err != nil {
			return err
		}

		installed, err := discovery.Discover()
		if err != nil {
			return err
		}

		if len(installed) == 0 {
			presenter.Info("No skills installed")
			return nil
		}
		for _, skill := range installed {
			if skill.Description != "" {
				presenter.Info(fmt.Sprintf("%s - %s", skill.ID, skill.Description))
			} else {
				presenter.Info(skill.ID)
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("agent", agents.DefaultAgent, "Target agent")
	listCmd.Flags().String("scope", string(agents.ScopeProject), "Install scope (project or global)")

	rootCmd.AddCommand(listCmd)
}
