package domain

import (
	"fmt"
	"strings"
)

// UnitSystem selects metric or imperial report formatting.
type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

// ParseUnitSystem parses "metric" or "imperial", case-insensitively.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric":
		return Metric, nil
	case "imperial":
		return Imperial, nil
	default:
		return Metric, fmt.Errorf("unknown unit system %q (want metric or imperial)", s)
	}
}

func (u UnitSystem) String() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}
