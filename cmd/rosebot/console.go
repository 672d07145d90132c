package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/rosebot/cli"
	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine"
	"github.com/nathoo/rosebot/store"
)

var (
	consolePlain  bool
	consoleTrace  bool
	consoleScript string
)

// consoleCmd feeds typed or scripted game lines to the engine.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Feed game output by hand and see what the bot would send",
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

func init() {
	consoleCmd.Flags().BoolVar(&consolePlain, "plain", false, "Disable styling")
	consoleCmd.Flags().BoolVar(&consoleTrace, "trace", false, "Print classified events for every line")
	consoleCmd.Flags().StringVar(&consoleScript, "script", "", "Read lines from a file instead of stdin")
}

func runConsole(cmd *cobra.Command, args []string) error {
	auto, err := loadProfile()
	if err != nil {
		return err
	}
	eng := engine.New(config.NewStore(auto), engineOptions(), logger)

	c := cli.New(eng)
	if appCfg.Store.Path != "" {
		hist, err := store.Open(appCfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer hist.Close()
		hist.Attach(eng.Bus())
		c.Archive = hist
	}
	c.Trace = consoleTrace
	c.Plain = consolePlain || !isTerminal()

	// Script mode: open file, force plain, echo lines.
	if consoleScript != "" {
		f, err := os.Open(consoleScript)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.Plain = true
		c.EchoInput = true
	}

	c.Run()
	return nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
