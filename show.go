package main

import (
	"fmt"
	"strconv"

	"github.com/Jon-Bright/mcom03clk/pll"
	"github.com/Jon-Bright/mcom03clk/soc"
	"github.com/Jon-Bright/mcom03clk/ucg"
	"github.com/spf13/cobra"
)

var (
	otpRaw bool

	pllCmd = &cobra.Command{
		Use:   "pll",
		Short: "Show the service, top and CPU PLLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, done, err := openBoard()
			if err != nil {
				return err
			}
			defer done()
			for _, p := range []struct {
				name string
				get  func() (*pll.Config, error)
			}{
				{"service", b.ServicePLL},
				{"top", b.TopPLL},
				{"cpu", b.CPUPLL},
			} {
				cfg, err := p.get()
				if err != nil {
					return fmt.Errorf("couldn't read %s pll: %v", p.name, err)
				}
				fmt.Printf("%-8s %v\n", p.name, cfg)
			}
			return nil
		},
	}

	ucgCmd = &cobra.Command{
		Use:   "ucg <subsystem> [unit]",
		Short: "Show a clock gate unit's channels",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subsys, err := soc.ParseSubsystem(args[0])
			if err != nil {
				return err
			}
			id := uint64(0)
			if len(args) == 2 {
				id, err = strconv.ParseUint(args[1], 0, 32)
				if err != nil {
					return fmt.Errorf("couldn't parse unit %q: %v", args[1], err)
				}
			}
			b, _, done, err := openBoard()
			if err != nil {
				return err
			}
			defer done()
			u, err := b.Unit(subsys, uint32(id))
			if err != nil {
				return err
			}
			fmt.Printf("%s (sync %v)\n", u, u.Sync())
			for ch := uint32(0); ch < ucg.UCG_CHANNELS; ch++ {
				div, enabled, err := u.State(ch)
				if err != nil {
					return err
				}
				fsm, err := u.FSM(ch)
				if err != nil {
					return err
				}
				fmt.Printf("  %2d div %-7d enabled %-5v %v\n", ch, div, enabled, fsm)
			}
			return nil
		},
	}

	otpCmd = &cobra.Command{
		Use:   "otp",
		Short: "Dump the OTP fuse block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, done, err := openBoard()
			if err != nil {
				return err
			}
			defer done()
			if otpRaw {
				words, err := b.OTPWords()
				if err != nil {
					return err
				}
				for i, w := range words {
					if i%4 == 0 {
						fmt.Printf("%03X:", i*4)
					}
					fmt.Printf(" %08X", w)
					if i%4 == 3 {
						fmt.Println()
					}
				}
				return nil
			}
			o, err := b.OTPDump()
			if err != nil {
				return err
			}
			fmt.Printf("fuse0 %08X (redundant %08X)\n", o.Fuse0, o.Fuse0Redundant)
			fmt.Printf("fuse1 %08X (redundant %08X)\n", o.Fuse1, o.Fuse1Redundant)
			fmt.Printf("serial %08X\n", o.Serial)
			fmt.Printf("flags %08X: force sign %v, force encrypt %v, disable log %v, enable watchdog %v\n",
				o.Flags, o.ForceSign(), o.ForceEncrypt(), o.DisableLog(), o.EnableWatchdog())
			fmt.Printf("crls %X\n", o.CRLs)
			fmt.Printf("crl protection %X\n", o.CRLProtection)
			return nil
		},
	}
)

func init() {
	otpCmd.Flags().BoolVar(&otpRaw, "raw", false, "print the raw words")
}
