package loader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/rosebot/config"
)

// rawSpell holds a Shield or Heal table before compilation.
type rawSpell struct {
	name  string
	table *lua.LTable
}

// compile converts the collected Lua tables into an AutomationConfig.
// Anything the profile leaves out keeps its default.
func compile(coll *collector) (config.AutomationConfig, error) {
	cfg := config.Defaults()

	if p := coll.profile; p != nil {
		coll.checkKeys("Profile", p, "thresholds", "intervals", "auto", "commands", "critical", "top_shield")

		if t := getTable(p, "thresholds"); t != nil {
			coll.checkKeys("thresholds", t, "min_combat_hp", "auto_heal_hp", "warning_hp", "critical_hp")
			setInt(t, "min_combat_hp", &cfg.MinCombatHP)
			setInt(t, "auto_heal_hp", &cfg.AutoHealHP)
			setInt(t, "warning_hp", &cfg.WarningHP)
			setInt(t, "critical_hp", &cfg.CriticalHP)
		}

		if t := getTable(p, "intervals"); t != nil {
			fields := map[string]*time.Duration{
				"shield_refresh":          &cfg.ShieldRefresh,
				"shield_emergency":        &cfg.ShieldEmergency,
				"ring":                    &cfg.RingInterval,
				"heal":                    &cfg.HealInterval,
				"attack_rearm":            &cfg.AttackRearm,
				"loot":                    &cfg.LootInterval,
				"loot_settle":             &cfg.LootSettle,
				"critical_repeat":         &cfg.CriticalRepeat,
				"encounter_spawn_timeout": &cfg.EncounterSpawnTimeout,
			}
			coll.checkKeys("intervals", t, mapKeys(fields)...)
			for key, dst := range fields {
				d, ok, err := getDuration(t, key)
				if err != nil {
					return cfg, fmt.Errorf("intervals.%s: %w", key, err)
				}
				if ok {
					*dst = d
				}
			}
		}

		if t := getTable(p, "auto"); t != nil {
			coll.checkKeys("auto", t, "shield", "gong", "attack", "heal", "loot")
			cfg.AutoShield = getBool(t, "shield", cfg.AutoShield)
			cfg.AutoGong = getBool(t, "gong", cfg.AutoGong)
			cfg.AutoAttack = getBool(t, "attack", cfg.AutoAttack)
			cfg.AutoHeal = getBool(t, "heal", cfg.AutoHeal)
			cfg.AutoLoot = getBool(t, "loot", cfg.AutoLoot)
		}

		if t := getTable(p, "commands"); t != nil {
			coll.checkKeys("commands", t, "gong", "stop", "attack", "loot")
			setString(t, "gong", &cfg.GongCommand)
			setString(t, "stop", &cfg.StopCommand)
			setString(t, "attack", &cfg.AttackCommand)
			setString(t, "loot", &cfg.LootCommand)
		}

		if t := getTable(p, "critical"); t != nil {
			coll.checkKeys("critical", t, "action", "script")
			if a := getString(t, "action"); a != "" {
				cfg.CriticalAction = config.CriticalAction(strings.ToLower(a))
			}
			setString(t, "script", &cfg.CriticalScript)
		}

		setString(p, "top_shield", &cfg.TopShield)
	}

	for _, rs := range coll.shields {
		coll.checkKeys(fmt.Sprintf("Shield %q", rs.name), rs.table, "command", "mana")
		cfg.Shields = append(cfg.Shields, config.Spell{
			Name:    rs.name,
			Command: getString(rs.table, "command"),
			Mana:    getInt(rs.table, "mana"),
		})
	}

	for _, rh := range coll.heals {
		coll.checkKeys(fmt.Sprintf("Heal %q", rh.name), rh.table, "tier", "command", "mana", "min_deficit")
		cfg.Heals = append(cfg.Heals, config.HealSpell{
			Name:       rh.name,
			Tier:       config.HealTier(strings.ToLower(getString(rh.table, "tier"))),
			Command:    getString(rh.table, "command"),
			Mana:       getInt(rh.table, "mana"),
			MinDeficit: getInt(rh.table, "min_deficit"),
		})
	}

	return cfg, nil
}

// checkKeys records a warning for every string key of tbl not in known.
func (c *collector) checkKeys(where string, tbl *lua.LTable, known ...string) {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	var unknown []string
	tbl.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok && !allowed[string(ks)] {
			unknown = append(unknown, string(ks))
		}
	})
	sort.Strings(unknown)
	for _, k := range unknown {
		c.warnings = append(c.warnings, fmt.Sprintf("%s: unknown key %q", where, k))
	}
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// setInt overwrites *dst when key holds a number.
func setInt(tbl *lua.LTable, key string, dst *int) {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		*dst = int(n)
	}
}

// setString overwrites *dst when key holds a string.
func setString(tbl *lua.LTable, key string, dst *string) {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		*dst = string(s)
	}
}

// getDuration reads a duration field. Strings use time.ParseDuration
// syntax; numbers are seconds.
func getDuration(tbl *lua.LTable, key string) (time.Duration, bool, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		d, err := time.ParseDuration(string(v))
		if err != nil {
			return 0, false, err
		}
		return d, true, nil
	case lua.LNumber:
		return time.Duration(float64(v) * float64(time.Second)), true, nil
	case *lua.LNilType:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("expected a duration, got %s", v.Type())
	}
}

// sortedLuaFiles returns Lua filenames sorted with profile.lua first, then
// alphabetical.
func sortedLuaFiles(files []string) []string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i] == "profile.lua" {
			return true
		}
		if sorted[j] == "profile.lua" {
			return false
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}
