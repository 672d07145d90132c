package classify

import (
	"reflect"
	"testing"
	"time"

	"github.com/nathoo/rosebot/types"
)

func orcRoom() types.RoomSnapshot {
	return types.RoomSnapshot{
		ID: "cave",
		Monsters: []types.Monster{
			{Name: "an orc", Disposition: types.Aggressive},
			{Name: "a giant rat", Disposition: types.Neutral},
		},
	}
}

func line(s string) types.TextLine {
	return types.TextLine{Text: s, At: time.Unix(0, 0)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		// No-ops
		{name: "empty", input: "", want: nil},
		{name: "ansi only", input: "\x1b[0m\x1b[1;31m", want: nil},
		{name: "chatter", input: "Bob says, 'hello there.'", want: nil},
		{name: "room description", input: "A damp tunnel leads north.", want: nil},

		// Player damage
		{
			name:  "player hits resolved monster",
			input: "You hit the orc and do 42 damage!",
			want:  []Event{PlayerDamage{Target: "orc", Amount: 42}},
		},
		{
			name:  "largest number wins",
			input: "You slash the giant rat 3 times for 17 damage.",
			want:  []Event{PlayerDamage{Target: "giant rat", Amount: 17}},
		},
		{
			name:  "thousands separator",
			input: "You blast the orc for 1,250 damage!",
			want:  []Event{PlayerDamage{Target: "orc", Amount: 1250}},
		},
		{
			name:  "unresolved target falls back to stripped text",
			input: "You viciously stab the shadow wraith for 9 damage.",
			want:  []Event{PlayerDamage{Target: "shadow wraith", Amount: 9}},
		},
		{
			name:  "passive you line is not player damage",
			input: "You take 12 damage.",
			want:  nil,
		},
		{
			name:  "no number",
			input: "You hit the orc but do no damage.",
			want:  nil,
		},

		// Monster damage
		{
			name:  "monster hits player",
			input: "The orc hits you for 8 damage.",
			want:  []Event{MonsterDamage{Monster: "orc", Amount: 8}},
		},
		{
			name:  "unresolved monster strips trailing verb",
			input: "A shadowy figure savagely claws you for 11 damage!",
			want:  []Event{MonsterDamage{Monster: "shadowy figure", Amount: 11}},
		},
		{
			name:  "monster line without article",
			input: "Orc hits you for 8 damage.",
			want:  nil,
		},

		// Area damage
		{
			name:  "area effect",
			input: "The fireball explodes, hitting you for 20 damage.",
			want:  []Event{AreaDamage{Source: "fireball", Amount: 20}},
		},

		// Death
		{
			name:  "death with room monster",
			input: "The orc dies.",
			want:  []Event{Death{Monsters: []string{"orc"}, Raw: "The orc dies."}},
		},
		{
			name:  "death vortex",
			input: "The giant rat is sucked into the vortex!",
			want: []Event{Death{
				Monsters: []string{"giant rat"},
				Raw:      "The giant rat is sucked into the vortex!",
			}},
		},
		{
			name:  "death grammar but no tracked monster",
			input: "The goblin dies.",
			want:  nil,
		},
		{
			name:  "death word not last",
			input: "The orc dies slowly.",
			want:  nil,
		},
		{
			name:  "no prefix matching on death vocabulary",
			input: "The orc is diesel-powered.",
			want:  nil,
		},

		// Targeting
		{
			name:  "melee focus",
			input: "You begin to focus on the orc.",
			want:  []Event{MeleeTargeting{Monster: "orc"}},
		},
		{
			name:  "melee focus on unknown monster",
			input: "You begin to focus on a Cave Bat!",
			want:  []Event{MeleeTargeting{Monster: "Cave Bat"}},
		},

		// Independent detectors
		{
			name:  "shield up",
			input: "You are surrounded by a shimmering shield.",
			want:  []Event{ShieldChange{Active: true}},
		},
		{
			name:  "shield down",
			input: "Your shield fades away.",
			want:  []Event{ShieldChange{Active: false}},
		},
		{
			name:  "hungry",
			input: "You are hungry.",
			want:  []Event{NeedChange{Kind: types.NeedHunger, State: types.NeedWanting}},
		},
		{
			name:  "no longer thirsty",
			input: "You are no longer thirsty.",
			want:  []Event{NeedChange{Kind: types.NeedThirst, State: types.NeedSatisfied}},
		},
		{
			name:  "starving",
			input: "You are starving!",
			want:  []Event{NeedChange{Kind: types.NeedHunger, State: types.NeedCritical}},
		},
		{
			name:  "coins dropped",
			input: "The orc drops 12 gold coins.",
			want:  []Event{LootSighted{Raw: "The orc drops 12 gold coins."}},
		},
		{
			name:  "coin pickup does not re-trigger",
			input: "You get 12 gold coins.",
			want:  nil,
		},
		{
			name:  "player death",
			input: "You have died!",
			want:  []Event{PlayerDeath{Raw: "You have died!"}},
		},

		// Cleanup before matching
		{
			name:  "colored damage line",
			input: "\x1b[1;33mYou hit the orc and do 42 damage!\x1b[0m\r",
			want:  []Event{PlayerDamage{Target: "orc", Amount: 42}},
		},
		{
			name:  "prompt fragment glued to death line",
			input: "[HP=80/100 MP=20/40]: The orc dies.",
			want:  []Event{Death{Monsters: []string{"orc"}, Raw: "The orc dies."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0)
			got := c.Classify(line(tt.input), orcRoom())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q)\n got  %#v\n want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassify_ExperienceBaseline(t *testing.T) {
	c := New(0)
	room := orcRoom()

	if got := c.Classify(line("[Cur: 1000 Nxt: 2000 Left: 1000]"), room); len(got) != 0 {
		t.Fatalf("first observation should only set the baseline, got %v", got)
	}

	got := c.Classify(line("[Cur: 1050 Nxt: 2000 Left: 950]"), room)
	want := []Event{ExperienceGain{Amount: 50}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	// No change, no event.
	if got := c.Classify(line("[Cur: 1050 Nxt: 2000 Left: 950]"), room); len(got) != 0 {
		t.Errorf("unchanged status should yield nothing, got %v", got)
	}
}

func TestClassify_ExperienceResetRestartsBaseline(t *testing.T) {
	c := New(0)
	room := orcRoom()
	c.Classify(line("[Cur: 1000 Nxt: 2000 Left: 1000]"), room)

	c.Reset()

	if got := c.Classify(line("[Cur: 5000 Nxt: 6000 Left: 1000]"), room); len(got) != 0 {
		t.Errorf("observation after reset should be a baseline, got %v", got)
	}
}

func TestExperienceMeter(t *testing.T) {
	tests := []struct {
		name        string
		readings    [][2]int // {cur, left}
		ceiling     int
		wantGain    int
		wantClamped bool
		wantOK      bool
	}{
		{name: "cur delta", readings: [][2]int{{100, 900}, {160, 840}}, wantGain: 60, wantOK: true},
		{name: "left delta when cur resets", readings: [][2]int{{100, 900}, {0, 850}}, wantGain: 50, wantOK: true},
		{name: "no gain", readings: [][2]int{{100, 900}, {100, 900}}, wantOK: false},
		{name: "both negative", readings: [][2]int{{100, 900}, {10, 5000}}, wantOK: false},
		{name: "clamped", readings: [][2]int{{0, 0}, {500, 0}}, ceiling: 200, wantGain: 200, wantClamped: true, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewExperienceMeter(tt.ceiling)
			var gain int
			var clamped, ok bool
			for _, r := range tt.readings {
				gain, clamped, ok = m.Observe(r[0], r[1])
			}
			if gain != tt.wantGain || clamped != tt.wantClamped || ok != tt.wantOK {
				t.Errorf("Observe = (%d, %v, %v), want (%d, %v, %v)",
					gain, clamped, ok, tt.wantGain, tt.wantClamped, tt.wantOK)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"\x1b[1;31mred\x1b[0m text", "red text"},
		{"\x1b]0;window title\x07The orc dies.", "The orc dies."},
		{"  padded\r\n", "padded"},
		{"[HP=10/20]: [HP=10/20]: hello", "hello"},
		{"[Cur: 10 Nxt: 20 Left: 10]", "[Cur: 10 Nxt: 20 Left: 10]"},
		{"tab\tseparated", "tab separated"},
	}
	for _, tt := range tests {
		got := Clean(tt.in)
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := Clean(got); again != got {
			t.Errorf("Clean not idempotent on %q: %q then %q", tt.in, got, again)
		}
	}
}

func TestIsDeathLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"The orc dies.", true},
		{"An imp is banished!", true},
		{"the wisp vanishes ...", true},
		{"Orc dies.", false},
		{"The orc died laughing.", false},
		{"The", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDeathLine(tt.line); got != tt.want {
			t.Errorf("IsDeathLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestClassify_DeathListsEveryNamedMonster(t *testing.T) {
	room := types.RoomSnapshot{Monsters: []types.Monster{
		{Name: "an orc"}, {Name: "a goblin"}, {Name: "an orc"},
	}}
	got := New(0).Classify(line("The orc and the goblin are destroyed."), room)
	want := []Event{Death{
		Monsters: []string{"orc", "goblin"},
		Raw:      "The orc and the goblin are destroyed.",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestName(t *testing.T) {
	if Name(PlayerDamage{}) != "player-damage" {
		t.Error("unexpected name for PlayerDamage")
	}
	if Name(nil) != "unknown" {
		t.Error("nil event should be unknown")
	}
}
