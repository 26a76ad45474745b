package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	bootSteps []string

	bootCmd = &cobra.Command{
		Use:   "boot",
		Short: "Run the boot sequence",
		Long:  "Run the configured boot steps in order, stopping at the first failure. --step overrides the configured list.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cfg, done, err := openBoard()
			if err != nil {
				return err
			}
			defer done()
			if len(bootSteps) > 0 {
				cfg.Boot = bootSteps
				err = cfg.Validate()
				if err != nil {
					return err
				}
			}
			return b.Boot()
		},
	}

	clockCmd = &cobra.Command{
		Use:   "clock <recipe>",
		Short: "Run one subsystem clock recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, done, err := openBoard()
			if err != nil {
				return err
			}
			defer done()
			recipes := b.Recipes()
			f, ok := recipes[args[0]]
			if !ok {
				var names []string
				for n := range recipes {
					names = append(names, n)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown recipe %q, want one of %s", args[0], strings.Join(names, ", "))
			}
			return f()
		},
	}
)

func init() {
	bootCmd.Flags().StringSliceVar(&bootSteps, "step", nil, "boot steps to run instead of the configured ones")
}
