package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine/classify"
	"github.com/nathoo/rosebot/engine/world"
	"github.com/nathoo/rosebot/types"
)

var t0 = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

const tick = 500 * time.Millisecond

type recorder struct {
	sent         []string
	disconnected int
}

func (r *recorder) Send(cmd string) { r.sent = append(r.sent, cmd) }
func (r *recorder) Disconnect()     { r.disconnected++ }

func (r *recorder) take() []string {
	out := r.sent
	r.sent = nil
	return out
}

type targets struct {
	name   string
	active []types.ActiveCombat
}

func (t *targets) Targeted() (string, bool)     { return t.name, t.name != "" }
func (t *targets) Active() []types.ActiveCombat { return t.active }

type fixture struct {
	eng   *Engine
	cfg   *config.Store
	world *world.State
	tgt   *targets
	out   *recorder
}

// quiet is a config with every toggle off.
func quiet() config.AutomationConfig {
	return config.Defaults()
}

func newFixture(cfg config.AutomationConfig) *fixture {
	f := &fixture{
		cfg:   config.NewStore(cfg),
		world: world.New(),
		tgt:   &targets{},
		out:   &recorder{},
	}
	f.world.SetVitals(types.Vitals{HP: 100, MaxHP: 100, MP: 100, MaxMP: 100})
	f.eng = New(f.cfg, f.world, f.world, f.tgt, f.out, nil)
	return f
}

func (f *fixture) hp(n int) {
	v := f.world.Vitals()
	v.HP = n
	f.world.SetVitals(v)
}

func (f *fixture) cooldowns(at, ac int) {
	v := f.world.Vitals()
	v.AT, v.AC = at, ac
	f.world.SetVitals(v)
}

func aggressive(names ...string) types.RoomSnapshot {
	r := types.RoomSnapshot{ID: "arena"}
	for _, n := range names {
		r.Monsters = append(r.Monsters, types.Monster{Name: n, Disposition: types.Aggressive, Count: 1})
	}
	return r
}

func at(d time.Duration) time.Time { return t0.Add(d) }

// --- Critical ---

func TestCritical_OncePerSustainedBreach(t *testing.T) {
	cfg := quiet()
	cfg.CriticalHP = 25
	cfg.WarningHP = 30
	f := newFixture(cfg)
	f.hp(20)

	var sent []string
	for i := 0; i < 19; i++ { // 0s .. 9s
		f.eng.Evaluate(at(time.Duration(i) * tick))
		sent = append(sent, f.out.take()...)
	}
	if len(sent) != 1 || sent[0] != "stop" {
		t.Fatalf("expected a single stop, got %v", sent)
	}

	f.eng.Evaluate(at(10 * time.Second))
	if got := f.out.take(); len(got) != 1 {
		t.Fatalf("expected repeat after the repeat interval, got %v", got)
	}
}

func TestCritical_RearmsAfterRecovery(t *testing.T) {
	cfg := quiet()
	cfg.CriticalHP = 25
	f := newFixture(cfg)

	f.hp(20)
	f.eng.Evaluate(at(0))
	f.hp(80)
	f.eng.Evaluate(at(tick))
	if f.eng.Status().InBreach {
		t.Fatal("breach should clear on recovery")
	}
	f.hp(20)
	f.eng.Evaluate(at(2 * tick))

	if got := f.out.take(); len(got) != 2 {
		t.Errorf("expected one action per breach, got %v", got)
	}
}

func TestCritical_ShortCircuitsEverything(t *testing.T) {
	cfg := quiet()
	cfg.CriticalHP = 25
	cfg.MinCombatHP = 0
	cfg.AutoHealHP = 100
	cfg.AutoShield, cfg.AutoAttack, cfg.AutoHeal, cfg.AutoGong = true, true, true, true
	cfg.TopShield = "armor"
	cfg.Shields = []config.Spell{{Name: "armor", Command: "c armor"}}
	cfg.Heals = []config.HealSpell{{Name: "cure", Tier: config.HealSmall, Command: "c cure"}}
	f := newFixture(cfg)
	f.world.SetRoom(aggressive("an orc"))
	f.hp(20)

	f.eng.Evaluate(at(0))

	got := f.out.take()
	if len(got) != 1 || got[0] != "stop" {
		t.Fatalf("only the critical action may be sent, got %v", got)
	}
	if f.eng.Phase() != types.PhaseWaitingForHealTimers {
		t.Errorf("expected heal wait, got %s", f.eng.Phase())
	}
}

func TestCriticalActions(t *testing.T) {
	tests := []struct {
		name       string
		action     config.CriticalAction
		script     string
		want       []string
		disconnect int
	}{
		{name: "stop", action: config.CriticalStop, want: []string{"stop"}},
		{name: "disconnect", action: config.CriticalDisconnect, want: []string{"stop"}, disconnect: 1},
		{
			name:       "script directives",
			action:     config.CriticalScript,
			script:     "{stop}; quaff red ; {gong};{disconnect}",
			want:       []string{"stop", "quaff red", "r g"},
			disconnect: 1,
		},
		{
			name:   "unknown directive sent literally",
			action: config.CriticalScript,
			script: "{flee};recall",
			want:   []string{"{flee}", "recall"},
		},
		{name: "empty script", action: config.CriticalScript, script: " ; ", want: []string{"stop"}},
		{name: "unknown action", action: "explode", want: []string{"stop"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := quiet()
			cfg.CriticalAction = tt.action
			cfg.CriticalScript = tt.script
			f := newFixture(cfg)
			f.hp(10)

			f.eng.Evaluate(at(0))

			if strings.Join(f.out.sent, "|") != strings.Join(tt.want, "|") {
				t.Errorf("sent %q, want %q", f.out.sent, tt.want)
			}
			if f.out.disconnected != tt.disconnect {
				t.Errorf("disconnects = %d, want %d", f.out.disconnected, tt.disconnect)
			}
		})
	}
}

func TestCritical_UnknownMaxHPNeverBreaches(t *testing.T) {
	f := newFixture(quiet())
	f.world.SetVitals(types.Vitals{})
	f.eng.Evaluate(at(0))
	if len(f.out.sent) != 0 {
		t.Errorf("no prompt yet, expected nothing, got %v", f.out.sent)
	}
}

// --- Warning ---

func TestWarning_StopsOffenseUntilTimersClear(t *testing.T) {
	cfg := quiet()
	cfg.AutoAttack = true
	cfg.MinCombatHP = 50
	f := newFixture(cfg)
	f.world.SetRoom(aggressive("an orc"))
	f.hp(30)
	f.cooldowns(2, 0)

	f.eng.Evaluate(at(0))
	if got := f.out.take(); len(got) != 1 || got[0] != "stop" {
		t.Fatalf("expected stop, got %v", got)
	}
	if f.eng.Phase() != types.PhaseWaitingForHealTimers {
		t.Fatalf("expected heal wait, got %s", f.eng.Phase())
	}

	f.eng.Evaluate(at(tick))
	if got := f.out.take(); len(got) != 0 {
		t.Errorf("nothing while waiting, got %v", got)
	}

	f.hp(90)
	f.cooldowns(0, 0)
	f.eng.Evaluate(at(2 * tick))
	if f.eng.Phase() == types.PhaseWaitingForHealTimers {
		t.Fatal("should leave heal wait once timers clear")
	}
	if got := f.out.take(); len(got) != 1 || got[0] != "kill o" {
		t.Errorf("expected offense to resume, got %v", got)
	}
}

func TestWarning_NotOffensiveDoesNothing(t *testing.T) {
	f := newFixture(quiet())
	f.hp(30)
	f.eng.Evaluate(at(0))
	if len(f.out.sent) != 0 || f.eng.Phase() != types.PhaseIdle {
		t.Errorf("no fight, no warning: sent %v phase %s", f.out.sent, f.eng.Phase())
	}
}

// --- Shield ---

func shieldConfig() config.AutomationConfig {
	cfg := quiet()
	cfg.AutoShield = true
	cfg.TopShield = "sanctuary"
	cfg.Shields = []config.Spell{
		{Name: "sanctuary", Command: "c sanc", Mana: 50},
		{Name: "armor", Command: "c armor", Mana: 10},
		{Name: "skin", Command: "c skin", Mana: 5},
	}
	return cfg
}

func TestShield_TopThenFallback(t *testing.T) {
	f := newFixture(shieldConfig())
	f.eng.Evaluate(at(0))
	if got := f.out.take(); len(got) != 1 || got[0] != "c sanc" {
		t.Fatalf("expected top shield, got %v", got)
	}

	v := f.world.Vitals()
	v.MP = 8
	f.world.SetVitals(v)
	f.eng.Evaluate(at(31 * time.Second))
	if got := f.out.take(); len(got) != 1 || got[0] != "c skin" {
		t.Fatalf("expected cheapest affordable fallback, got %v", got)
	}
}

func TestShield_Gates(t *testing.T) {
	f := newFixture(shieldConfig())
	f.eng.Evaluate(at(0))
	f.out.take()

	f.eng.Evaluate(at(10 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("refresh interval not elapsed")
	}

	f.eng.OnEvents([]classify.Event{classify.ShieldChange{Active: true}}, at(11*time.Second))
	f.eng.Evaluate(at(40 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("shield is up")
	}

	f.eng.OnEvents([]classify.Event{classify.ShieldChange{Active: false}}, at(41*time.Second))
	f.cooldowns(1, 0)
	f.eng.Evaluate(at(42 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("cooldowns must be clear")
	}

	f.cooldowns(0, 0)
	f.eng.Evaluate(at(43 * time.Second))
	if len(f.out.take()) != 1 {
		t.Error("expected recast")
	}
}

func TestShield_EmergencyDuringEncounter(t *testing.T) {
	f := newFixture(shieldConfig())
	f.eng.Evaluate(at(0))
	f.out.take()
	f.world.SetRoom(types.RoomSnapshot{Monsters: []types.Monster{{Name: "an orc", Disposition: types.Aggressive}}})

	f.eng.Evaluate(at(60 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("fight in progress: emergency interval not elapsed")
	}
	f.eng.Evaluate(at(2 * time.Minute))
	if got := f.out.take(); len(got) != 1 || got[0] != "c sanc" {
		t.Errorf("expected emergency recast, got %v", got)
	}
}

// --- Encounter ---

func gongConfig() config.AutomationConfig {
	cfg := quiet()
	cfg.AutoGong = true
	return cfg
}

func TestEncounter_RingAndCycle(t *testing.T) {
	f := newFixture(gongConfig())

	f.eng.Evaluate(at(0))
	if got := f.out.take(); len(got) != 1 || got[0] != "r g" {
		t.Fatalf("expected ring, got %v", got)
	}
	if f.eng.Phase() != types.PhaseInEncounter {
		t.Fatalf("expected in-encounter, got %s", f.eng.Phase())
	}

	f.world.SetRoom(aggressive("an orc"))
	f.cooldowns(3, 1)
	f.eng.Evaluate(at(tick))
	if got := f.out.take(); len(got) != 1 || got[0] != "kill o" {
		t.Fatalf("in-encounter offense expected, got %v", got)
	}

	f.world.SetRoom(types.RoomSnapshot{})
	f.eng.Evaluate(at(2 * tick))
	if f.eng.Phase() != types.PhaseWaitingForEncounterTimers {
		t.Fatalf("expected waiting for timers, got %s", f.eng.Phase())
	}

	f.eng.Evaluate(at(3 * tick))
	if len(f.out.take()) != 0 || f.eng.Phase() != types.PhaseWaitingForEncounterTimers {
		t.Fatal("must not ring while cooldowns run")
	}

	f.cooldowns(0, 0)
	f.eng.Evaluate(at(4 * tick))
	if f.eng.Phase() != types.PhaseIdle {
		t.Fatalf("expected idle once timers clear, got %s", f.eng.Phase())
	}
	f.eng.Evaluate(at(5 * tick))
	if got := f.out.take(); len(got) != 1 || got[0] != "r g" {
		t.Errorf("expected next ring, got %v", got)
	}
}

func TestEncounter_RingInterval(t *testing.T) {
	f := newFixture(gongConfig())
	f.eng.Evaluate(at(0))
	f.out.take()

	// Nothing spawns; once the spawn timeout passes the engine may ring again.
	f.eng.Evaluate(at(time.Second))
	if f.eng.Phase() != types.PhaseInEncounter {
		t.Fatalf("still waiting for a spawn, got %s", f.eng.Phase())
	}
	f.eng.Evaluate(at(10 * time.Second))
	if f.eng.Phase() != types.PhaseWaitingForEncounterTimers {
		t.Fatalf("expected spawn timeout, got %s", f.eng.Phase())
	}
	f.eng.Evaluate(at(10*time.Second + tick))
	f.eng.Evaluate(at(11 * time.Second))
	if got := f.out.take(); len(got) != 1 || got[0] != "r g" {
		t.Errorf("expected a second ring, got %v", got)
	}
}

func TestEncounter_AggressiveSkipsRing(t *testing.T) {
	f := newFixture(gongConfig())
	f.world.SetRoom(aggressive("a wolf"))
	f.eng.Evaluate(at(0))

	for _, cmd := range f.out.take() {
		if cmd == "r g" {
			t.Fatal("must not ring with an aggressive monster present")
		}
	}
	if f.eng.Phase() != types.PhaseInEncounter {
		t.Errorf("expected in-encounter, got %s", f.eng.Phase())
	}
}

func TestEncounter_LowHPWaits(t *testing.T) {
	f := newFixture(gongConfig())
	f.hp(40)
	f.eng.Evaluate(at(0))
	if len(f.out.sent) != 0 || f.eng.Phase() != types.PhaseIdle {
		t.Errorf("expected to wait for hp, sent %v phase %s", f.out.sent, f.eng.Phase())
	}
}

func TestEncounter_DisabledStaysIdle(t *testing.T) {
	f := newFixture(quiet())
	f.world.SetRoom(aggressive("an orc"))
	f.eng.Evaluate(at(0))
	if f.eng.Phase() != types.PhaseIdle || len(f.out.sent) != 0 {
		t.Errorf("all toggles off: phase %s sent %v", f.eng.Phase(), f.out.sent)
	}
}

// --- Offense ---

func attackConfig() config.AutomationConfig {
	cfg := quiet()
	cfg.AutoAttack = true
	return cfg
}

func TestOffense_OneAttackPerTickThenWaveDone(t *testing.T) {
	f := newFixture(attackConfig())
	f.world.SetRoom(aggressive("an orc", "a goblin"))

	var per [][]string
	for i := 0; i < 4; i++ {
		f.eng.Evaluate(at(time.Duration(i) * tick))
		per = append(per, f.out.take())
	}

	if len(per[0]) != 1 || per[0][0] != "kill o" {
		t.Errorf("tick 0: %v", per[0])
	}
	if len(per[1]) != 1 || per[1][0] != "kill g" {
		t.Errorf("tick 1: %v", per[1])
	}
	if len(per[2]) != 0 || len(per[3]) != 0 {
		t.Errorf("wave done, expected silence: %v %v", per[2], per[3])
	}

	st := f.eng.Status()
	if strings.Join(st.Attacked, ",") != "goblin#1,orc#1" {
		t.Errorf("unexpected wave: %v", st.Attacked)
	}
}

func TestOffense_WaveRearms(t *testing.T) {
	f := newFixture(attackConfig())
	f.world.SetRoom(aggressive("an orc"))

	f.eng.Evaluate(at(0))
	f.eng.Evaluate(at(5 * time.Second))
	if got := f.out.take(); len(got) != 1 {
		t.Fatalf("expected one attack, got %v", got)
	}
	f.eng.Evaluate(at(10 * time.Second))
	if got := f.out.take(); len(got) != 1 {
		t.Errorf("expected re-arm after interval, got %v", got)
	}
}

func TestOffense_WaveResetsWhenRoomClears(t *testing.T) {
	f := newFixture(attackConfig())
	f.world.SetRoom(aggressive("an orc"))
	f.eng.Evaluate(at(0))
	f.world.SetRoom(types.RoomSnapshot{})
	f.eng.Evaluate(at(tick))
	f.world.SetRoom(aggressive("an orc"))
	f.eng.Evaluate(at(2 * tick))

	if got := f.out.take(); len(got) != 2 {
		t.Errorf("expected a fresh wave, got %v", got)
	}
}

func TestOffense_PrefersTrackedTarget(t *testing.T) {
	f := newFixture(attackConfig())
	f.world.SetRoom(aggressive("an orc", "a goblin"))
	f.tgt.name = "goblin"

	f.eng.Evaluate(at(0))
	if got := f.out.take(); len(got) != 1 || got[0] != "kill g" {
		t.Errorf("expected targeted goblin first, got %v", got)
	}
}

func TestOffense_DuplicateNames(t *testing.T) {
	f := newFixture(attackConfig())
	r := aggressive("an orc")
	r.Monsters[0].Count = 2
	f.world.SetRoom(r)

	f.eng.Evaluate(at(0))
	f.eng.Evaluate(at(tick))
	f.eng.Evaluate(at(2 * tick))
	if got := f.out.take(); len(got) != 2 {
		t.Errorf("expected one attack per orc, got %v", got)
	}
}

func TestOffense_Gates(t *testing.T) {
	f := newFixture(attackConfig())
	r := aggressive("an orc")
	r.Monsters = append(r.Monsters, types.Monster{Name: "a rabbit", Disposition: types.Neutral})
	f.world.SetRoom(r)
	f.hp(45)

	f.eng.Evaluate(at(0))
	if len(f.out.take()) != 0 {
		t.Error("below MinCombatHP")
	}
}

func TestAttackCommand(t *testing.T) {
	tests := []struct {
		format, name, want string
	}{
		{"kill %s", "orc", "kill o"},
		{"kill %s", "Goblin warrior", "kill g"},
		{"kill %s", "2-headed troll", "kill 2-headed"},
		{"k", "orc", "k o"},
	}
	for _, tt := range tests {
		if got := attackCommand(tt.format, tt.name); got != tt.want {
			t.Errorf("attackCommand(%q, %q) = %q, want %q", tt.format, tt.name, got, tt.want)
		}
	}
}

// --- Heal ---

func healConfig() config.AutomationConfig {
	cfg := quiet()
	cfg.AutoHeal = true
	cfg.Heals = []config.HealSpell{
		{Name: "light", Tier: config.HealSmall, Command: "c light", Mana: 5, MinDeficit: 0},
		{Name: "serious", Tier: config.HealMedium, Command: "c serious", Mana: 15, MinDeficit: 30},
		{Name: "heal", Tier: config.HealLarge, Command: "c heal", Mana: 40, MinDeficit: 50},
	}
	return cfg
}

func TestPickHeal(t *testing.T) {
	heals := healConfig().Heals
	tests := []struct {
		name    string
		deficit int
		mana    int
		want    string
		ok      bool
	}{
		{"small deficit", 10, 100, "light", true},
		{"medium deficit", 35, 100, "serious", true},
		{"large deficit", 60, 100, "heal", true},
		{"large deficit short mana", 60, 20, "serious", true},
		{"no mana", 60, 1, "", false},
		{"no deficit", 0, 100, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickHeal(heals, tt.deficit, tt.mana)
			if ok != tt.ok || got.Name != tt.want {
				t.Errorf("got %q %v, want %q %v", got.Name, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHeal_Gates(t *testing.T) {
	f := newFixture(healConfig())
	f.hp(60)
	f.eng.Evaluate(at(0))
	if got := f.out.take(); len(got) != 1 || got[0] != "c serious" {
		t.Fatalf("expected medium heal, got %v", got)
	}

	f.eng.Evaluate(at(time.Second))
	if len(f.out.take()) != 0 {
		t.Error("heal interval not elapsed")
	}

	f.cooldowns(0, 1)
	f.eng.Evaluate(at(4 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("cooldown running")
	}

	f.cooldowns(0, 0)
	f.hp(75)
	f.eng.Evaluate(at(5 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("above AutoHealHP")
	}
}

// --- Loot ---

func lootConfig() config.AutomationConfig {
	cfg := quiet()
	cfg.AutoLoot = true
	return cfg
}

func TestLoot_OnCoins(t *testing.T) {
	f := newFixture(lootConfig())
	coins := []classify.Event{classify.LootSighted{Raw: "12 gold coins"}}

	f.eng.OnEvents(coins, at(0))
	f.eng.OnEvents(coins, at(time.Second))
	f.eng.OnEvents(coins, at(2*time.Second))

	got := f.out.take()
	if len(got) != 2 || got[0] != "get all" {
		t.Errorf("expected two loots, got %v", got)
	}
}

func TestLoot_WithheldDuringCriticalBreach(t *testing.T) {
	f := newFixture(lootConfig())
	coins := []classify.Event{classify.LootSighted{Raw: "12 gold coins"}}
	f.hp(10)

	// Coins before any evaluation has recorded the breach.
	f.eng.OnEvents(coins, at(0))
	if got := f.out.take(); len(got) != 0 {
		t.Fatalf("no loot at critical HP, got %v", got)
	}

	f.eng.Evaluate(at(time.Second))
	if got := f.out.take(); len(got) != 1 || got[0] != "stop" {
		t.Fatalf("expected the critical stop, got %v", got)
	}
	f.eng.OnEvents(coins, at(2*time.Second))
	if got := f.out.take(); len(got) != 0 {
		t.Fatalf("no loot during the breach, got %v", got)
	}

	f.hp(100)
	f.eng.Evaluate(at(3 * time.Second))
	f.out.take()
	f.eng.OnEvents(coins, at(4*time.Second))
	if got := f.out.take(); len(got) != 1 || got[0] != "get all" {
		t.Errorf("loot should resume after recovery, got %v", got)
	}
}

func TestLoot_RoomSettle(t *testing.T) {
	f := newFixture(lootConfig())
	f.eng.RoomEntered(at(0))

	f.eng.Evaluate(at(tick))
	if len(f.out.take()) != 0 {
		t.Fatal("room has not settled")
	}
	f.eng.Evaluate(at(time.Second))
	if got := f.out.take(); len(got) != 1 || got[0] != "get all" {
		t.Fatalf("expected settle loot, got %v", got)
	}
	f.eng.Evaluate(at(2 * time.Second))
	if len(f.out.take()) != 0 {
		t.Error("settle loot is one-shot")
	}
}

func TestLoot_Disabled(t *testing.T) {
	f := newFixture(quiet())
	f.eng.OnEvents([]classify.Event{classify.LootSighted{}}, at(0))
	f.eng.RoomEntered(at(0))
	f.eng.Evaluate(at(5 * time.Second))
	if len(f.out.sent) != 0 {
		t.Errorf("looting disabled, got %v", f.out.sent)
	}
}

// --- Lifecycle ---

func TestConfigReadEveryEvaluation(t *testing.T) {
	f := newFixture(quiet())
	f.world.SetRoom(aggressive("an orc"))
	f.eng.Evaluate(at(0))
	if len(f.out.take()) != 0 {
		t.Fatal("attack disabled")
	}

	f.cfg.Update(func(c *config.AutomationConfig) { c.AutoAttack = true })
	f.eng.Evaluate(at(tick))
	if got := f.out.take(); len(got) != 1 {
		t.Errorf("config change should apply on the next evaluation, got %v", got)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(gongConfig())
	f.eng.Evaluate(at(0))
	f.eng.OnEvents([]classify.Event{classify.ShieldChange{Active: true}}, at(0))

	f.eng.Reset()

	st := f.eng.Status()
	if st.Phase != types.PhaseIdle || st.ShieldUp || !st.LastRing.IsZero() || len(st.Attacked) != 0 {
		t.Errorf("reset left state behind: %+v", st)
	}
	f.out.take()
	f.eng.Evaluate(at(tick))
	if got := f.out.take(); len(got) != 1 || got[0] != "r g" {
		t.Errorf("ring interval should be forgotten, got %v", got)
	}
}

func TestPlayerDeathReturnsToIdle(t *testing.T) {
	f := newFixture(gongConfig())
	f.eng.Evaluate(at(0))
	f.eng.OnEvents([]classify.Event{classify.PlayerDeath{}}, at(tick))
	if f.eng.Phase() != types.PhaseIdle {
		t.Errorf("expected idle, got %s", f.eng.Phase())
	}
}
