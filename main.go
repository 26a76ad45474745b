// Command mcom03clk brings up the clocks and power domains of an MCom-03 SoC
// from Linux, through /dev/mem.
package main

import (
	"fmt"
	"os"

	"github.com/Jon-Bright/mcom03clk/config"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/soc"
	"github.com/platinasystems/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	force      bool

	rootCmd = &cobra.Command{
		Use:           "mcom03clk",
		Short:         "MCom-03 clock and power sequencer",
		Long:          "Program the MCom-03 PLLs, clock gate units and power policies in the order the boot loader does.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file overriding the built-in board config")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "run even if the device tree doesn't describe an MCom-03")
	rootCmd.AddCommand(bootCmd, clockCmd, powerCmd, pllCmd, ucgCmd, otpCmd)
}

// openBoard loads the config and maps the SoC. The returned func unmaps it.
func openBoard() (*soc.Board, *config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if !force {
		name, err := soc.Detect(soc.DT_COMPATIBLE)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%v (use --force to override)", err)
		}
		log.Printf("Running on %s", name)
	}
	dm := mmio.NewDevMem(cfg.MemFile)
	host := mmio.NewHost(cfg.CounterHz, dm)
	b, err := soc.NewBoard(dm, host, cfg, func() uint32 { return cfg.CounterHz })
	if err != nil {
		dm.Close() // Ignore error
		return nil, nil, nil, err
	}
	return b, cfg, func() {
		err := dm.Close()
		if err != nil {
			log.Printf("warning: couldn't unmap registers: %v", err)
		}
	}, nil
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mcom03clk:", err)
		os.Exit(1)
	}
}
