package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xskills/xskills/pkg/agents"
	"github.com/xskills/xskills/pkg/installer"
	"github.com/xskills/xskills/pkg/presenter"
)

var removeCmd = &cobra.Command{
	Use:   "remove <skill-id>",
	Short: "Remove an installed skill",
	Long: `Remove an installed skill from an agent's skills directory.

Examples:
  xskills remove commit-helper
  xskills remove commit-helper --agent codex --scope global
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, _ := cmd.Flags().GetString("agent")
		scope, _ := cmd.Flags().GetString("scope")

		inst := installer.New()
		dest, err := inst.Remove(installer.Options{
			SkillID: args[0],
			Agent:   agent,
			Scope:   scope,
		})
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Removed skill %q from %s", args[0], dest))
		return nil
	},
}

func init() {
	removeCmd.Flags().String("agent", agents.DefaultAgent, "Target agent")
	removeCmd.Flags().String("scope", string(agents.ScopeProject), "Install scope (project or global)")

	rootCmd.AddCommand(removeCmd)
}
