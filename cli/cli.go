// Package cli is an offline console for the engine. Each input line is fed
// to the pipeline as if the game had sent it; commands the policy would
// send are printed instead. Lines starting with '/' are meta-commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine"
	"github.com/nathoo/rosebot/engine/classify"
	"github.com/nathoo/rosebot/types"
)

// Archive is persisted combat history.
type Archive interface {
	Recent(ctx context.Context, limit int) ([]types.CombatEntry, error)
	Count(ctx context.Context) (int, error)
}

// CLI handles terminal interaction.
type CLI struct {
	Engine    *engine.Engine
	Archive   Archive // optional; enables /archive
	In        io.Reader
	Out       io.Writer
	Trace     bool
	Plain     bool             // no styling
	EchoInput bool             // echo each input line (for script playback)
	Now       func() time.Time // clock; defaults to time.Now

	skew time.Duration // added by /tick <duration>
}

// New creates a CLI wired to the given engine and attaches it as the
// engine's sender.
func New(eng *engine.Engine) *CLI {
	c := &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
		Now:    time.Now,
	}
	eng.Attach(c)
	return c
}

// Send prints a command the engine would send.
func (c *CLI) Send(cmd string) {
	c.printStyled(styleCommand, "→ "+cmd)
}

// Disconnect prints the engine's disconnect request.
func (c *CLI) Disconnect() {
	c.printStyled(styleDisconnect, "→ <disconnect>")
}

// Run loops: prompt → input → dispatch → output, until EOF or /quit.
func (c *CLI) Run() {
	c.printSystem("Type game output to feed the engine, /help for commands.")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printStyled(styleGame, input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		evs := c.Engine.HandleLine(input, c.now())
		if c.Trace {
			c.printTrace(evs)
		}
	}
}

func (c *CLI) now() time.Time {
	if c.Now == nil {
		return time.Now().Add(c.skew)
	}
	return c.Now().Add(c.skew)
}

// handleMeta dispatches meta-commands. Returns true if the console should exit.
func (c *CLI) handleMeta(input string) bool {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/stats":
		c.cmdStats()

	case "/history":
		c.cmdHistory(arg)

	case "/archive":
		c.cmdArchive(arg)

	case "/auto":
		c.cmdAuto(arg)

	case "/active":
		c.cmdActive()

	case "/state":
		c.cmdState()

	case "/vitals":
		c.cmdVitals(arg)

	case "/room":
		c.cmdRoom(arg)

	case "/tick":
		c.cmdTick(arg)

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printError(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Meta-commands:",
		"  /stats                    Combat totals and rates",
		"  /history [n]              Last n finished combats (default 10)",
		"  /archive [n]              Last n combats saved to the store",
		"  /auto [toggle on|off]     Show or set shield, gong, attack, heal, loot",
		"  /active                   Encounters in progress",
		"  /state                    Policy phase and cooldowns",
		"  /vitals hp/max [mp/max] [at ac]",
		"                            Set vitals without a prompt line",
		"  /room id[, monster]...    Enter a room; suffix ! for aggressive, *n for a stack",
		"  /tick [duration]          Advance the clock by duration, then tick",
		"  /trace                    Toggle classified-event output",
		"  /quit                     Exit",
		"",
		"Anything else is treated as a line from the game.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdStats() {
	s := c.Engine.Tracker().Stats()
	c.printStyled(styleHeader, "Combat statistics")
	c.printLine(fmt.Sprintf("  Total: %d  Victories: %d  Deaths: %d  Fled: %d  Timeouts: %d",
		s.Total, s.Victories, s.Deaths, s.Fled, s.Timeouts))
	c.printLine(fmt.Sprintf("  Win rate: %.0f%%  Death rate: %.0f%%  Flee rate: %.0f%%",
		s.WinRate*100, s.DeathRate*100, s.FleeRate*100))
	c.printLine(fmt.Sprintf("  Dealt: %d  Taken: %d  Experience: %d",
		s.DamageDealt, s.DamageTaken, s.Experience))
	c.printLine(fmt.Sprintf("  Time in combat: %s  Average DPS: %.1f",
		s.TotalCombatTime.Round(time.Second), s.AverageDPS))
}

func (c *CLI) cmdHistory(arg string) {
	n, ok := countArg(arg)
	if !ok {
		c.printError("usage: /history [n]")
		return
	}
	entries := c.Engine.Tracker().History(n)
	if len(entries) == 0 {
		c.printSystem("No finished combats.")
		return
	}
	c.printEntries(entries)
}

func (c *CLI) cmdArchive(arg string) {
	if c.Archive == nil {
		c.printError("No combat store configured (store.path).")
		return
	}
	n, ok := countArg(arg)
	if !ok {
		c.printError("usage: /archive [n]")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	total, err := c.Archive.Count(ctx)
	if err != nil {
		c.printError(err.Error())
		return
	}
	entries, err := c.Archive.Recent(ctx, n)
	if err != nil {
		c.printError(err.Error())
		return
	}
	c.printSystem(fmt.Sprintf("%d saved combat(s), showing %d.", total, len(entries)))
	c.printEntries(entries)
}

// countArg parses an optional positive count, defaulting to 10.
func countArg(arg string) (int, bool) {
	if arg == "" {
		return 10, true
	}
	v, err := strconv.Atoi(arg)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func (c *CLI) printEntries(entries []types.CombatEntry) {
	for _, e := range entries {
		status := c.render(statusStyle(string(e.Status)), fmt.Sprintf("%-7s", e.Status))
		c.printLine(fmt.Sprintf("  %s %-20s dealt %-5d taken %-5d xp %-6d %s",
			status, e.Monster, e.DamageDealt, e.DamageTaken, e.Experience, e.Duration.Round(100*time.Millisecond)))
	}
}

// cmdAuto shows the automation toggles, or sets one: "/auto gong on".
func (c *CLI) cmdAuto(arg string) {
	store := c.Engine.Config()
	f := strings.Fields(arg)
	if len(f) == 0 {
		cfg := store.Snapshot()
		c.printSystem(fmt.Sprintf("shield %s  gong %s  attack %s  heal %s  loot %s",
			onOff(cfg.AutoShield), onOff(cfg.AutoGong), onOff(cfg.AutoAttack), onOff(cfg.AutoHeal), onOff(cfg.AutoLoot)))
		return
	}
	const usage = "usage: /auto [shield|gong|attack|heal|loot on|off]"
	if len(f) != 2 || (f[1] != "on" && f[1] != "off") {
		c.printError(usage)
		return
	}
	on := f[1] == "on"
	var field func(*config.AutomationConfig) *bool
	switch f[0] {
	case "shield":
		field = func(a *config.AutomationConfig) *bool { return &a.AutoShield }
	case "gong":
		field = func(a *config.AutomationConfig) *bool { return &a.AutoGong }
	case "attack":
		field = func(a *config.AutomationConfig) *bool { return &a.AutoAttack }
	case "heal":
		field = func(a *config.AutomationConfig) *bool { return &a.AutoHeal }
	case "loot":
		field = func(a *config.AutomationConfig) *bool { return &a.AutoLoot }
	default:
		c.printError(usage)
		return
	}
	store.Update(func(a *config.AutomationConfig) { *field(a) = on })
	c.printSystem(fmt.Sprintf("Auto %s %s.", f[0], f[1]))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (c *CLI) cmdActive() {
	active := c.Engine.Tracker().Active()
	awaiting := c.Engine.Tracker().Awaiting()
	if len(active)+len(awaiting) == 0 {
		c.printSystem("No encounters in progress.")
		return
	}
	now := c.now()
	for _, a := range active {
		mark := ""
		if a.Targeted {
			mark = " (target)"
		}
		c.printLine(fmt.Sprintf("  fighting %s%s: dealt %d, taken %d, %s",
			a.Monster, mark, a.DamageDealt, a.DamageTaken, now.Sub(a.Started).Round(time.Second)))
	}
	for _, a := range awaiting {
		c.printLine(fmt.Sprintf("  %s died %s ago, awaiting experience",
			a.Monster, now.Sub(a.DiedAt).Round(time.Second)))
	}
}

func (c *CLI) cmdState() {
	st := c.Engine.Policy().Status()
	v := c.Engine.World().Vitals()
	c.printSystem(fmt.Sprintf("Phase: %s", st.Phase))
	c.printSystem(fmt.Sprintf("Vitals: HP %d/%d MP %d/%d AT %d AC %d", v.HP, v.MaxHP, v.MP, v.MaxMP, v.AT, v.AC))
	c.printSystem(fmt.Sprintf("Shield up: %v  Critical: %v", st.ShieldUp, st.InBreach))
	if len(st.Attacked) > 0 {
		c.printSystem(fmt.Sprintf("Attacked this wave: %s", strings.Join(st.Attacked, ", ")))
	}
	now := c.now()
	for _, t := range []struct {
		name string
		at   time.Time
	}{
		{"ring", st.LastRing},
		{"shield", st.LastShield},
		{"heal", st.LastHeal},
		{"loot", st.LastLoot},
	} {
		if !t.at.IsZero() {
			c.printSystem(fmt.Sprintf("Last %s: %s ago", t.name, now.Sub(t.at).Round(100*time.Millisecond)))
		}
	}
}

// cmdVitals parses "hp/max [mp/max] [at ac]".
func (c *CLI) cmdVitals(arg string) {
	const usage = "usage: /vitals hp/max [mp/max] [at ac]"
	f := strings.Fields(arg)
	if len(f) == 0 {
		c.printError(usage)
		return
	}
	v := c.Engine.World().Vitals()
	var err error
	if v.HP, v.MaxHP, err = pair(f[0]); err != nil {
		c.printError(usage)
		return
	}
	rest := f[1:]
	if len(rest) > 0 && strings.Contains(rest[0], "/") {
		if v.MP, v.MaxMP, err = pair(rest[0]); err != nil {
			c.printError(usage)
			return
		}
		rest = rest[1:]
	}
	if len(rest) == 2 {
		at, err1 := strconv.Atoi(rest[0])
		ac, err2 := strconv.Atoi(rest[1])
		if err1 != nil || err2 != nil {
			c.printError(usage)
			return
		}
		v.AT, v.AC = at, ac
	} else if len(rest) != 0 {
		c.printError(usage)
		return
	}
	c.Engine.SetVitals(v)
	c.printSystem(fmt.Sprintf("HP %d/%d MP %d/%d AT %d AC %d", v.HP, v.MaxHP, v.MP, v.MaxMP, v.AT, v.AC))
}

func pair(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("expected cur/max, got %q", s)
	}
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// cmdRoom parses "id, an orc!, a rat*3".
func (c *CLI) cmdRoom(arg string) {
	room, err := parseRoom(arg)
	if err != nil {
		c.printError(err.Error())
		return
	}
	c.Engine.SetRoom(room, c.now())
	c.printSystem(fmt.Sprintf("Entered %s with %d monster kind(s).", room.ID, len(room.Monsters)))
}

func parseRoom(arg string) (types.RoomSnapshot, error) {
	parts := strings.Split(arg, ",")
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return types.RoomSnapshot{}, fmt.Errorf("usage: /room id[, monster]...")
	}
	room := types.RoomSnapshot{ID: id}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m := types.Monster{Count: 1}
		if name, n, ok := strings.Cut(p, "*"); ok {
			count, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil || count < 1 {
				return types.RoomSnapshot{}, fmt.Errorf("bad stack count in %q", p)
			}
			m.Count = count
			p = strings.TrimSpace(name)
		}
		if strings.HasSuffix(p, "!") {
			m.Disposition = types.Aggressive
			p = strings.TrimSpace(strings.TrimSuffix(p, "!"))
		}
		m.Name = p
		room.Monsters = append(room.Monsters, m)
	}
	return room, nil
}

func (c *CLI) cmdTick(arg string) {
	if arg != "" {
		d, err := time.ParseDuration(arg)
		if err != nil || d < 0 {
			c.printError("usage: /tick [duration]")
			return
		}
		c.skew += d
	}
	c.Engine.Tick(c.now())
}

func (c *CLI) printTrace(evs []classify.Event) {
	if len(evs) == 0 {
		c.printStyled(styleTrace, "[trace] no events")
		return
	}
	for _, ev := range evs {
		c.printStyled(styleTrace, fmt.Sprintf("[trace] %T %+v", ev, ev))
	}
}

func (c *CLI) render(s lipgloss.Style, text string) string {
	if c.Plain {
		return text
	}
	return s.Render(text)
}

func (c *CLI) printStyled(s lipgloss.Style, text string) {
	c.printLine(c.render(s, text))
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	c.printLine(c.render(styleSystem, "["+text+"]"))
}

func (c *CLI) printError(text string) {
	c.printLine(c.render(styleError, "["+text+"]"))
}
