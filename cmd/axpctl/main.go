/*
 * AXP-CORE - axpctl control CLI.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// axpctl is a standalone control surface driving an axp.System the way
// an SRM console drives a real Alpha. Its subcommands are init
// (validate the configuration), start, load (--binary, --base),
// load-hex (--hex) and restore (--file, --run); there are no pause,
// resume, stop, reset or save subcommands. Every invocation is a
// single short-lived process: each subcommand other than init boots
// the machine from the configuration, and start, load, load-hex and
// restore --run then run it until SIGINT or SIGTERM.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/axp"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/config"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "axpctl",
		Short: "Control surface for the AXP-CORE Alpha AXP emulator",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "axp.cfg", "Configuration file")

	boot := func() (*axp.System, error) {
		cfg, err := config.LoadJSONFile(configPath)
		if err != nil {
			return nil, err
		}
		return axp.Initialize(*cfg, nil)
	}

	var binaryPath string
	var loadBase uint64
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load a raw binary image and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := boot()
			if err != nil {
				return err
			}
			if binaryPath != "" {
				if err := sys.LoadBinary(binaryPath, loadBase); err != nil {
					return err
				}
			}
			return runUntilSignal(sys)
		},
	}
	loadCmd.Flags().StringVar(&binaryPath, "binary", "", "Raw binary image path")
	loadCmd.Flags().Uint64Var(&loadBase, "base", 0, "Physical load address")

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Boot the configured machine and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := boot()
			if err != nil {
				return err
			}
			return runUntilSignal(sys)
		},
	}

	var hexPath string
	ihexCmd := &cobra.Command{
		Use:   "load-hex",
		Short: "Load an Intel HEX image and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := boot()
			if err != nil {
				return err
			}
			if err := sys.LoadIntelHex(hexPath); err != nil {
				return err
			}
			return runUntilSignal(sys)
		},
	}
	ihexCmd.Flags().StringVar(&hexPath, "hex", "", "Intel HEX image path")

	var restorePath string
	var restoreRun bool
	restoreCmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a saved machine state snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := boot()
			if err != nil {
				return err
			}
			if err := sys.LoadState(restorePath); err != nil {
				return err
			}
			fmt.Println("state restored")
			if restoreRun {
				return runUntilSignal(sys)
			}
			return nil
		},
	}
	restoreCmd.Flags().StringVar(&restorePath, "file", "", "Snapshot file to restore")
	restoreCmd.Flags().BoolVar(&restoreRun, "run", false, "Resume execution after restoring")
	_ = restoreCmd.MarkFlagRequired("file")

	var validateOnly bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Validate the configuration without booting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadJSONFile(configPath)
			if err != nil {
				return err
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(os.Stderr, e)
				}
				return fmt.Errorf("%d configuration error(s)", len(errs))
			}
			fmt.Printf("configuration OK: %d cpu(s), %d bytes ram, %d device(s)\n",
				cfg.CPUCount, cfg.MemorySize, len(cfg.Devices))
			_ = validateOnly
			return nil
		},
	}

	rootCmd.AddCommand(initCmd, startCmd, loadCmd, ihexCmd, restoreCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runUntilSignal starts the machine and blocks until SIGINT/SIGTERM,
// then stops it cleanly; this is axpctl's only long-running mode since
// pause/resume/save require a second process attaching to a live one,
// which this standalone CLI does not implement (spec section 6 scopes
// that to the embedding application, not the demo console).
func runUntilSignal(sys *axp.System) error {
	sys.Start()
	fmt.Println("machine running, Ctrl-C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("stopping")
	sys.Stop()
	return nil
}
