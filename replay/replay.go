package replay

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine"
	"github.com/nathoo/rosebot/types"
)

// Command is one outbound command and when it was sent, relative to the
// transcript start.
type Command struct {
	At         time.Duration
	Cmd        string
	Disconnect bool
}

// Result is the outcome of a replay.
type Result struct {
	Commands []Command
	Events   int
	History  []types.CombatEntry
	Stats    types.CombatStats
	Phase    types.Phase
}

// Sent returns the command strings in order, with disconnects as
// "<disconnect>".
func (r *Result) Sent() []string {
	out := make([]string, 0, len(r.Commands))
	for _, c := range r.Commands {
		if c.Disconnect {
			out = append(out, "<disconnect>")
			continue
		}
		out = append(out, c.Cmd)
	}
	return out
}

// Check compares r against exp and returns every mismatch.
func (r *Result) Check(exp *Expect) []string {
	if exp == nil {
		return nil
	}
	var out []string
	if exp.Commands != nil && !slices.Equal(r.Sent(), exp.Commands) {
		out = append(out, fmt.Sprintf("commands: got %q, want %q", r.Sent(), exp.Commands))
	}
	if exp.Victories != nil && r.Stats.Victories != *exp.Victories {
		out = append(out, fmt.Sprintf("victories: got %d, want %d", r.Stats.Victories, *exp.Victories))
	}
	if exp.Experience != nil && r.Stats.Experience != *exp.Experience {
		out = append(out, fmt.Sprintf("experience: got %d, want %d", r.Stats.Experience, *exp.Experience))
	}
	if exp.Phase != "" && r.Phase.String() != exp.Phase {
		out = append(out, fmt.Sprintf("phase: got %s, want %s", r.Phase, exp.Phase))
	}
	return out
}

// Run replays tr against a fresh engine built from cfg. The transcript's
// toggles are applied on top of cfg. log may be nil.
func Run(tr *Transcript, cfg config.AutomationConfig, opts engine.Options, log *zap.Logger) *Result {
	cfg = cfg.Clone()
	tr.Auto.apply(&cfg)

	e := engine.New(config.NewStore(cfg), opts, log)
	rec := &recorder{}
	e.Attach(rec)

	origin := tr.origin()
	res := &Result{}
	for _, s := range tr.Steps {
		now := origin.Add(s.At)
		rec.setAt(s.At)
		switch {
		case s.Line != "":
			res.Events += len(e.HandleLine(s.Line, now))
		case s.Room != nil:
			e.SetRoom(s.Room.snapshot(), now)
		case s.Vitals != nil:
			e.SetVitals(s.Vitals.vitals())
		case s.Tick:
			e.Tick(now)
		}
	}

	res.Commands = rec.commands()
	res.History = e.Tracker().History(0)
	res.Stats = e.Tracker().Stats()
	res.Phase = e.Policy().Phase()
	return res
}

// recorder is the replay's sender. It stamps each command with the step
// time it was produced at.
type recorder struct {
	mu   sync.Mutex
	at   time.Duration
	sent []Command
}

func (r *recorder) setAt(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.at = d
}

func (r *recorder) Send(cmd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Command{At: r.at, Cmd: cmd})
}

func (r *recorder) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Command{At: r.at, Disconnect: true})
}

func (r *recorder) commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.sent...)
}
