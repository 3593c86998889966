package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bugbasher/internal/triage"
)

var (
	triageBug      bugFlags
	triageProvider string
	triageModel    string
	triageLocal    bool
)

var triageCmd = &cobra.Command{
	Use:   "triage [issue-key]",
	Short: "Rank repositories by how likely they are to contain a bug",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		if key == "" && triageBug.summary == "" {
			return errors.New("provide an issue key or --summary")
		}

		ctx := cmd.Context()
		bug, err := fetchBug(ctx, key, triageBug)
		if err != nil {
			return err
		}

		triageCfg := cfg.Triage
		if triageProvider != "" {
			triageCfg.Provider = triageProvider
		}
		if triageModel != "" {
			triageCfg.Model = triageModel
		}
		if triageLocal {
			triageCfg.ForceSubprocess = true
		}

		ranker, err := triage.NewRanker(triageCfg, logger)
		if err != nil {
			return err
		}

		repos, err := loadCatalog(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Triaging %s: %s\n", bug.Key, bug.Summary)
		if bug.Description != "" {
			desc := bug.Description
			if len(desc) > 120 {
				desc = desc[:120] + "..."
			}
			fmt.Printf("  %s\n", desc)
		}
		fmt.Printf("Against %d repositories...\n\n", len(repos))

		results := ranker.Rank(ctx, bug, repos)
		if len(results) == 0 {
			fmt.Println("No relevant repositories identified.")
			return nil
		}

		for _, r := range results {
			fmt.Printf("  %3.0f%%  %s\n", r.Confidence*100, r.Repo)
			if r.Reasoning != "" {
				fmt.Printf("        %s\n", r.Reasoning)
			}
		}
		return nil
	},
}

func init() {
	registerBugFlags(triageCmd, &triageBug)
	triageCmd.Flags().StringVar(&triageProvider, "provider", "", "LLM provider: claude or codex")
	triageCmd.Flags().StringVar(&triageModel, "model", "", "model override for triage")
	triageCmd.Flags().BoolVar(&triageLocal, "local", false, "force CLI subprocess mode (claude only; codex always uses a subprocess)")
}

func registerBugFlags(cmd *cobra.Command, flags *bugFlags) {
	cmd.Flags().StringVar(&flags.summary, "summary", "", "bug summary (used instead of a tracker fetch)")
	cmd.Flags().StringVar(&flags.description, "description", "", "bug description")
	cmd.Flags().StringSliceVar(&flags.components, "components", nil, "bug components")
	cmd.Flags().StringVar(&flags.priority, "priority", "P3", "bug priority")
}
