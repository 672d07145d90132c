package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathoo/rosebot/replay"
)

// replayCmd runs a recorded transcript through the pipeline offline.
var replayCmd = &cobra.Command{
	Use:   "replay <transcript.yaml>",
	Short: "Replay a YAML transcript and print the commands it produces",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	tr, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	auto, err := loadProfile()
	if err != nil {
		return err
	}

	res := replay.Run(tr, auto, engineOptions(), logger)

	out := cmd.OutOrStdout()
	if tr.Name != "" {
		fmt.Fprintf(out, "%s\n\n", tr.Name)
	}
	for _, c := range res.Commands {
		if c.Disconnect {
			fmt.Fprintf(out, "%8s  <disconnect>\n", c.At)
			continue
		}
		fmt.Fprintf(out, "%8s  %s\n", c.At, c.Cmd)
	}
	s := res.Stats
	fmt.Fprintf(out, "\n%d events, %d combats (%d victories, %d deaths, %d fled, %d timeouts), %d xp, phase %s\n",
		res.Events, s.Total, s.Victories, s.Deaths, s.Fled, s.Timeouts, s.Experience, res.Phase)

	if problems := res.Check(tr.Expect); len(problems) > 0 {
		return errors.New("transcript expectations failed:\n  " + strings.Join(problems, "\n  "))
	}
	return nil
}
