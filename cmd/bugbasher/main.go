// Bug Basher triages production bugs against the service catalog, runs
// investigation agents over the likely repositories, and reports the
// findings back to the tracker and chat.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bugbasher/internal/config"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bugbasher",
	Short: "Bug Basher - automated bug triage and investigation",
	Long: `Bug Basher takes a bug report, ranks the team's repositories by how
likely they are to contain the defect, clones the top candidates, and runs
an investigation agent against each checkout. Findings can be reported as
a pull request, a tracker comment, and a chat notification.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Optional; environment wins over file values either way.
		_ = godotenv.Load()

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("run_id", uuid.NewString()))

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bugbasher.yaml", "path to config file")

	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(triageCmd)
	rootCmd.AddCommand(investigateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
