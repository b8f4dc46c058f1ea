package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xskills/xskills/pkg/builder"
	"github.com/xskills/xskills/pkg/presenter"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Maintain the generated registry documents",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var registryBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the registry documents from metadata records",
	Long: `Rebuild index.json, categories.json, and search-index.json from the
per-skill metadata records, synchronizing the source cache first.
Missing createdAt/updatedAt timestamps are backfilled once and then
never rewritten, keeping repeated builds reproducible.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repoRoot, _ := cmd.Flags().GetString("repo-root")

		docs, err := builder.New(builder.Config{RepoRoot: repoRoot}).Build(cmd.Context())
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Registry built: %d skills, %d categories",
			len(docs.Index.Skills), len(docs.Categories.Categories)))
		return nil
	},
}

var registryCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the committed registry matches the metadata records",
	Long: `Recompute the registry documents in memory and compare them against
the committed files, ignoring the generation timestamp. Intended as a
CI gate; nothing on disk is modified.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repoRoot, _ := cmd.Flags().GetString("repo-root")

		if err := builder.New(builder.Config{RepoRoot: repoRoot}).Check(cmd.Context()); err != nil {
			return err
		}

		presenter.Success("Registry is consistent with metadata records")
		return nil
	},
}

func init() {
	registryCmd.PersistentFlags().String("repo-root", ".", "Repository root containing the registry tree")

	registryCmd.AddCommand(registryBuildCmd)
	registryCmd.AddCommand(registryCheckCmd)
	rootCmd.AddCommand(registryCmd)
}
