package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/rosebot/config"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	profile  *lua.LTable
	shields  []rawSpell
	heals    []rawSpell
	warnings []string // filled during compile
}

// Load reads an automation profile and returns the compiled, validated
// configuration. path may be a single .lua file or a directory of them, in
// which case profile.lua runs first and the rest alphabetically. The Lua VM
// is discarded after loading. Validation warnings are logged to log, which
// may be nil.
func Load(path string, log *zap.Logger) (config.AutomationConfig, error) {
	if log == nil {
		log = zap.NewNop()
	}

	files, err := discover(path)
	if err != nil {
		return config.AutomationConfig{}, err
	}

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Open safe libs only.
	openSafeLibs(L)

	// Sandbox: remove dangerous globals.
	sandbox(L)

	// Register API.
	coll := &collector{}
	registerAPI(L, coll)

	// Execute each file.
	for _, f := range files {
		if err := L.DoFile(f); err != nil {
			return config.AutomationConfig{}, fmt.Errorf("executing %s: %w", filepath.Base(f), err)
		}
	}

	// Compile.
	cfg, err := compile(coll)
	if err != nil {
		return config.AutomationConfig{}, fmt.Errorf("compiling profile: %w", err)
	}

	// Validate.
	warnings, err := validate(cfg, coll)
	for _, w := range warnings {
		log.Warn("profile", zap.String("path", path), zap.String("warning", w))
	}
	if err != nil {
		return config.AutomationConfig{}, err
	}

	return cfg, nil
}

// discover lists the Lua files to execute for path.
func discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile directory %s: %w", path, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", path)
	}

	var out []string
	for _, f := range sortedLuaFiles(luaFiles) {
		out = append(out, filepath.Join(path, f))
	}
	return out, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.concat, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
}
