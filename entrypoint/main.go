package main

import (
	"os"

	"github.com/spf13/cobra"
	"petrovich.ru/petrovich/logger"
)

func main() {
	logger.SetupLogging()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var config Config
	var rulesPath string

	root := &cobra.Command{
		Use:          "petrovich",
		Short:        "Inflection of Russian personal names",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if config, err = readConfig(); err != nil {
				return err
			}
			if cmd.Flags().Changed("rules") {
				config.RulesPath = rulesPath
				config.RulesS3Key = ""
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&rulesPath, "rules", "", "rule table file (overrides PETROVICH_RULES_PATH and PETROVICH_RULES_S3_KEY)")

	root.AddCommand(
		newServeCommand(&config),
		newWorkerCommand(&config),
		newCheckCommand(&config),
		newEvalCommand(&config),
	)
	return root
}
