package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"petrovich.ru/petrovich/rules"
)

func newCheckCommand(config *Config) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the rule table and report what was skipped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, name, err := loadRules(cmd.Context(), *config)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source: %s\n", name)
			fmt.Fprintf(out, "fingerprint: %016x\n", table.Fingerprint())
			for _, role := range rules.Roles() {
				group := table.Group(role)
				fmt.Fprintf(out, "%s: %d exceptions, %d suffixes\n", role, len(group.Exceptions()), len(group.Suffixes()))
			}
			skipped := table.Skipped()
			fmt.Fprintf(out, "skipped: %d\n", len(skipped))
			for _, record := range skipped {
				fmt.Fprintf(out, "  %s\n", record)
			}
			if strict && len(skipped) > 0 {
				return fmt.Errorf("%d rule records were skipped", len(skipped))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any record was skipped")
	return cmd
}
