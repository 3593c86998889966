package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bugbasher/internal/githubclient"
	"bugbasher/internal/investigate"
	"bugbasher/internal/jira"
	"bugbasher/internal/models"
	"bugbasher/internal/report"
	"bugbasher/internal/slack"
	"bugbasher/internal/triage"
)

var (
	investigateBug       bugFlags
	investigateProvider  string
	investigateTriageMdl string
	investigateAgentMdl  string
	investigateLocal     bool
	investigateBudget    float64
	investigateReport    bool
	investigateDryRun    bool
)

var investigateCmd = &cobra.Command{
	Use:   "investigate [issue-key]",
	Short: "Investigate a bug end-to-end: triage, clone, agents, verdict",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		if key == "" && investigateBug.summary == "" {
			return errors.New("provide an issue key or --summary")
		}

		ctx := cmd.Context()
		bug, err := fetchBug(ctx, key, investigateBug)
		if err != nil {
			return err
		}

		triageCfg := cfg.Triage
		invCfg := cfg.Investigation
		if investigateProvider != "" {
			triageCfg.Provider = investigateProvider
			invCfg.Provider = investigateProvider
		}
		if investigateTriageMdl != "" {
			triageCfg.Model = investigateTriageMdl
		}
		if investigateAgentMdl != "" {
			invCfg.Model = investigateAgentMdl
		}
		if investigateLocal {
			triageCfg.ForceSubprocess = true
		}
		if cmd.Flags().Changed("budget") {
			invCfg.MaxBudgetUSD = investigateBudget
		}

		ranker, err := triage.NewRanker(triageCfg, logger)
		if err != nil {
			return err
		}
		orchestrator, err := investigate.NewOrchestrator(invCfg, logger)
		if err != nil {
			return err
		}

		repos, err := loadCatalog(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Triaging %s: %s\n", bug.Key, bug.Summary)
		ranked := ranker.Rank(ctx, bug, repos)
		if len(ranked) == 0 {
			fmt.Println("No relevant repositories identified.")
			return nil
		}

		fmt.Printf("Triage identified %d repositories:\n", len(ranked))
		for _, r := range ranked {
			fmt.Printf("  %3.0f%%  %s\n", r.Confidence*100, r.Repo)
		}
		fmt.Println()

		fmt.Println("Investigating...")
		results := orchestrator.InvestigateAll(ctx, bug, ranked, repos)
		findings := investigate.Aggregate(bug, results, invCfg)

		printFindings(findings)

		if !investigateReport {
			return nil
		}
		return reportFindings(ctx, findings, repos)
	},
}

func printFindings(findings models.AggregatedFindings) {
	fmt.Println()
	if best := findings.BestResult; best != nil {
		fmt.Printf("Best result: %s (confidence: %.0f%%)\n", best.Repo, best.Confidence*100)
		if best.RootCause != "" {
			fmt.Printf("  Root cause: %s\n", best.RootCause)
		}
		if len(best.Evidence) > 0 {
			fmt.Println("  Evidence:")
			for _, e := range best.Evidence {
				fmt.Printf("    - %s\n", e)
			}
		}
		if best.HasFix() {
			fmt.Printf("  Proposed fix: %s\n", best.ProposedFix.Description)
			for _, fc := range best.ProposedFix.FilesChanged {
				fmt.Printf("    - %s\n", fc.Path)
			}
		}
	} else {
		fmt.Println("No findings.")
	}
	fmt.Printf("\nRecommended action: %s\n", findings.Action.Type)
}

func reportFindings(ctx context.Context, findings models.AggregatedFindings, repos []models.Repository) error {
	if investigateDryRun {
		payload, err := json.MarshalIndent(report.FormatJiraComment(findings, ""), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println("\n[DRY RUN] Tracker comment payload:")
		fmt.Println(string(payload))
		fmt.Println("\n[DRY RUN] Skipping PR creation, tracker comment, and chat notification.")
		return nil
	}

	var host report.SourceHost
	if cfg.GitHub.Token != "" {
		host = githubclient.NewClient(cfg.GitHub)
	}
	var notifier report.Notifier
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		notifier = slack.NewClient(cfg.Slack)
	}

	reporter := report.NewReporter(jira.NewClient(cfg.Jira), host, notifier, cfg.Slack.Channel, logger)
	if prURL := reporter.ReportFindings(ctx, findings, repos); prURL != "" {
		fmt.Printf("\nPR created: %s\n", prURL)
	} else {
		fmt.Println("\nFindings reported (no PR created).")
	}
	return nil
}

func init() {
	registerBugFlags(investigateCmd, &investigateBug)
	investigateCmd.Flags().StringVar(&investigateProvider, "provider", "", "LLM provider: claude or codex")
	investigateCmd.Flags().StringVar(&investigateTriageMdl, "triage-model", "", "model override for triage")
	investigateCmd.Flags().StringVar(&investigateAgentMdl, "agent-model", "", "model override for the investigation agent")
	investigateCmd.Flags().BoolVar(&investigateLocal, "local", false, "force CLI subprocess mode for triage (claude only)")
	investigateCmd.Flags().Float64Var(&investigateBudget, "budget", 0.50, "max budget per agent in USD")
	investigateCmd.Flags().BoolVar(&investigateReport, "report", false, "report findings: create PR, comment on the tracker, notify chat")
	investigateCmd.Flags().BoolVar(&investigateDryRun, "dry-run", true, "with --report, print the tracker payload and skip side effects")
}
