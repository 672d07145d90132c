package loader

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Profile { thresholds = {...}, intervals = {...}, ... }
	L.SetGlobal("Profile", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if coll.profile != nil {
			L.RaiseError("Profile{} defined more than once")
		}
		coll.profile = tbl
		return 0
	}))

	// Shield "name" { command = "...", mana = n }. Curried.
	L.SetGlobal("Shield", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.shields = append(coll.shields, rawSpell{name: name, table: tbl})
			return 0
		}))
		return 1
	}))

	// Heal "name" { tier = "small", command = "...", mana = n, min_deficit = n }. Curried.
	L.SetGlobal("Heal", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.heals = append(coll.heals, rawSpell{name: name, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerHelpers(L *lua.LState) {
	// Script { "{stop}", "recall" } → "{stop};recall"
	L.SetGlobal("Script", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		var parts []string
		for i := 1; i <= tbl.MaxN(); i++ {
			parts = append(parts, lua.LVAsString(tbl.RawGetInt(i)))
		}
		L.Push(lua.LString(strings.Join(parts, ";")))
		return 1
	}))

	// Stop, Disconnect and Gong are directive tokens for Script.
	for name, tok := range map[string]string{
		"Stop":       "{stop}",
		"Disconnect": "{disconnect}",
		"Gong":       "{gong}",
	} {
		L.SetGlobal(name, lua.LString(tok))
	}

	// Seconds(n) and Minutes(n) build duration strings.
	L.SetGlobal("Seconds", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckNumber(1)
		L.Push(lua.LString(n.String() + "s"))
		return 1
	}))
	L.SetGlobal("Minutes", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckNumber(1)
		L.Push(lua.LString(n.String() + "m"))
		return 1
	}))
}
