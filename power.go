package main

import (
	"fmt"
	"time"

	"github.com/Jon-Bright/mcom03clk/ppolicy"
	"github.com/platinasystems/log"
	"github.com/spf13/cobra"
)

var (
	powerStatusWait time.Duration
	powerBypass0    uint32
	powerBypass1    uint32

	policies = map[string]ppolicy.Policy{
		"on":    ppolicy.PP_ON,
		"off":   ppolicy.PP_OFF,
		"reset": ppolicy.PP_WARM_RESET,
	}

	powerCmd = &cobra.Command{
		Use:   "power <domain> [on|off|reset]",
		Short: "Show or change a power domain's policy",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cfg, done, err := openBoard()
			if err != nil {
				return err
			}
			defer done()
			domain := args[0]
			if len(args) == 1 {
				p, err := b.PolicyStatus(domain)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %v\n", domain, p)
				return nil
			}
			p, ok := policies[args[1]]
			if !ok {
				return fmt.Errorf("unknown policy %q, want on, off or reset", args[1])
			}
			if powerStatusWait > 0 {
				cfg.PPolicy.TimeoutUS = uint32(powerStatusWait / time.Microsecond)
			}
			log.Printf("Power %s %v", domain, p)
			return b.SetPolicy(domain, p, powerBypass0, powerBypass1)
		},
	}
)

func init() {
	powerCmd.Flags().DurationVar(&powerStatusWait, "wait", 0, "how long to wait for the domain to report its new policy, 0 uses the config")
	powerCmd.Flags().Uint32Var(&powerBypass0, "bp0", 0, "TOP UCG0 channels to bypass during the change")
	powerCmd.Flags().Uint32Var(&powerBypass1, "bp1", 0, "TOP UCG1 channels to bypass during the change")
}
