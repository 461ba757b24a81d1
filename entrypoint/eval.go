package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"petrovich.ru/petrovich/evaluation"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/rules"
)

func newEvalCommand(config *Config) *cobra.Command {
	var minAccuracy float64
	var showFailures int
	cmd := &cobra.Command{
		Use:   "eval <firstname|lastname|middlename> <corpus.tsv>...",
		Short: "Measure the rule table against inflection corpora",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := rules.RoleOf(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}
			table, _, err := loadRules(cmd.Context(), *config)
			if err != nil {
				return err
			}
			engine := inflector.NewFromRules(table)

			out := cmd.OutOrStdout()
			var total, failed int
			for _, corpus := range args[1:] {
				samples, err := evaluation.ReadFile(corpus)
				if err != nil {
					return err
				}
				report := evaluation.Run(engine, role, samples)
				total += report.Total
				failed += len(report.Failures)
				fmt.Fprintf(out, "%s: %d/%d correct (%.2f%%)\n",
					corpus, report.Total-len(report.Failures), report.Total, report.Accuracy()*100)
				for i, failure := range report.Failures {
					if i >= showFailures {
						break
					}
					fmt.Fprintf(out, "  line %d: %s (%s, %s) expected %q, got %q\n",
						failure.Line, failure.Name, failure.Gender, failure.Case, failure.Expected, failure.Actual)
				}
			}

			accuracy := 0.0
			if total > 0 {
				accuracy = float64(total-failed) / float64(total)
			}
			if accuracy < minAccuracy {
				return fmt.Errorf("accuracy %.4f is below %.4f", accuracy, minAccuracy)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&minAccuracy, "min-accuracy", 0, "fail when accuracy is lower (0..1)")
	cmd.Flags().IntVar(&showFailures, "show-failures", 10, "number of failures to print per corpus")
	return cmd
}
