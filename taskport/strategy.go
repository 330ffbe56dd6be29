// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Strategy selects how the task handle is acquired.
type Strategy string

const (
	// StrategyDirect calls task_for_pid.
	StrategyDirect Strategy = "direct"
	// StrategyEnumerate walks the host's processor sets.
	StrategyEnumerate Strategy = "enumerate"
)

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = StrategyDirect

// Strategies lists the canonical strategy names.
var Strategies = []Strategy{StrategyDirect, StrategyEnumerate}

var strategyAliases = map[string]Strategy{
	"direct":      StrategyDirect,
	"traditional": StrategyDirect,
	"enumerate":   StrategyEnumerate,
	"wrapper":     StrategyEnumerate,
}

// Canonical resolves aliases and reports whether s names a known strategy.
func (s Strategy) Canonical() (Strategy, bool) {
	c, ok := strategyAliases[strings.ToLower(strings.TrimSpace(string(s)))]
	if !ok {
		return s, false
	}
	return c, true
}

// ParseStrategy resolves a strategy name, accepting the "traditional" and
// "wrapper" aliases.
func ParseStrategy(name string) (Strategy, error) {
	s, ok := Strategy(name).Canonical()
	if !ok {
		return s, fmt.Errorf("%w: unknown strategy %q (valid options: direct, enumerate)", ErrInvalidConfiguration, name)
	}
	return s, nil
}

var _ pflag.Value = (*Strategy)(nil)

// Set implements pflag.Value. Unknown names are kept as given so the
// dispatcher can report them as InvalidConfiguration.
func (s *Strategy) Set(name string) error {
	if c, ok := Strategy(name).Canonical(); ok {
		*s = c
		return nil
	}
	*s = Strategy(name)
	return nil
}

func (s *Strategy) String() string {
	return string(*s)
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}
