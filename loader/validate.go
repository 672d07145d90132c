package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/rosebot/config"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled config for consistency. Warnings are
// returned even when there are no errors.
func validate(cfg config.AutomationConfig, coll *collector) ([]string, error) {
	ve := &ValidationError{}

	ve.Errors = append(ve.Errors, cfg.Problems()...)

	// Duplicate spell names.
	seen := map[string]bool{}
	for _, s := range cfg.Shields {
		k := "shield " + strings.ToLower(s.Name)
		if seen[k] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("shield %q defined more than once", s.Name))
		}
		seen[k] = true
	}
	for _, h := range cfg.Heals {
		k := "heal " + strings.ToLower(h.Name)
		if seen[k] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("heal %q defined more than once", h.Name))
		}
		seen[k] = true
	}

	if cfg.CriticalAction == config.CriticalScript && strings.TrimSpace(cfg.CriticalScript) == "" {
		ve.Errors = append(ve.Errors, "critical action is script but no script is set")
	}

	// Warnings.
	ve.Warnings = append(ve.Warnings, coll.warnings...)
	if coll.profile == nil {
		ve.Warnings = append(ve.Warnings, "no Profile{} defined, using defaults")
	}
	if cfg.AutoHeal && len(cfg.Heals) == 0 {
		ve.Warnings = append(ve.Warnings, "auto.heal is on but no Heal spells are defined")
	}
	if cfg.AutoShield && len(cfg.Shields) == 0 {
		ve.Warnings = append(ve.Warnings, "auto.shield is on but no Shield spells are defined")
	}
	if cfg.AutoAttack && !strings.Contains(cfg.AttackCommand, "%s") {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("commands.attack %q has no %%s, the target key is appended", cfg.AttackCommand))
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}
