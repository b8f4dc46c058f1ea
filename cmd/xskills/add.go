package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xskills/xskills/pkg/agents"
	"github.com/xskills/xskills/pkg/installer"
	"github.com/xskills/xskills/pkg/presenter"
	"github.com/xskills/xskills/pkg/registry"
)

var addCmd = &cobra.Command{
	Use:   "add <skill-id>",
	Short: "Install a skill from the registry",
	Long: `Install a skill bundle into an agent's skills directory.

The skill is looked up in the registry, streamed from its source
repository tarball, and extracted into the agent- and scope-specific
skills directory. If the destination already exists, nothing is
installed or overwritten.

Examples:
  xskills add commit-helper                       # Install for the default agent
  xskills add commit-helper --agent codex         # Install for a specific agent
  xskills add commit-helper --scope global        # Install under the home directory
  xskills add commit-helper --registry <url>      # Use an alternative registry
  xskills add commit-helper --ref v2.0.0          # Pin the source ref
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, _ := cmd.Flags().GetString("agent")
		scope, _ := cmd.Flags().GetString("scope")
		registryFlag, _ := cmd.Flags().GetString("registry")
		refFlag, _ := cmd.Flags().GetString("ref")

		ref := refFlag
		if ref == "" {
			ref = viper.GetString("ref")
		}

		inst := installer.New()
		result, err := inst.Install(cmd.Context(), installer.Options{
			SkillID:     args[0],
			Agent:       agent,
			Scope:       scope,
			RegistryURL: registry.ResolveURL(registryFlag, viper.GetString("registry")),
			Ref:         ref,
		})
		if err != nil {
			return err
		}

		if result.UsedFallback {
			presenter.Warning(fmt.Sprintf("Registry path for %q was stale; skill located by archive discovery", result.SkillID))
		}
		presenter.Success(fmt.Sprintf("Installed skill %q to %s", result.SkillID, result.Destination))
		return nil
	},
}

func init() {
	addCmd.Flags().String("agent", agents.DefaultAgent, "Target agent")
	addCmd.Flags().String("scope", string(agents.ScopeProject), "Install scope (project or global)")
	addCmd.Flags().String("registry", "", "Registry base URL (overrides XSKILLS_REGISTRY)")
	addCmd.Flags().String("ref", "", "Source ref override (overrides XSKILLS_REF)")

	rootCmd.AddCommand(addCmd)
}
