// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rules builds upscale.ErrorHandler values from declarative
// fallback rules. Conditions are expr-lang expressions evaluated against
// Env:
//
//	set, err := rules.Compile(
//	    rules.Rule{Name: "vendor", When: `Technique in ["DLSS", "XeSS"]`, Technique: "FSR2"},
//	    rules.Rule{Name: "oom", When: `Status == "OutOfGPUMemory"`, Quality: "Performance"},
//	)
//	u.SetErrorHandler(set.Handler())
//
// The first matching rule rewrites the desired configuration. When no rule
// matches the handler leaves it untouched and the Upscaler disables the
// technique.
package rules

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/gogpu/upscale"
)

// Rule errors.
var (
	ErrEmptyCondition   = errors.New("rules: condition must not be empty")
	ErrUnknownTechnique = errors.New("rules: unknown technique")
	ErrUnknownQuality   = errors.New("rules: unknown quality")
	ErrNoAction         = errors.New("rules: rule changes nothing")
)

// Env is the environment rule conditions see.
type Env struct {
	Status      string
	Category    string
	Recoverable bool
	Message     string

	Technique string
	Quality   string
	HDR       bool
	Width     uint32
	Height    uint32
}

func newEnv(status upscale.Status, message string, cfg upscale.Configuration) Env {
	return Env{
		Status:      status.String(),
		Category:    status.Category().String(),
		Recoverable: status.Recoverable(),
		Message:     message,
		Technique:   cfg.Technique.String(),
		Quality:     cfg.Quality.String(),
		HDR:         cfg.HDR,
		Width:       cfg.OutputResolution.Width,
		Height:      cfg.OutputResolution.Height,
	}
}

// Rule is one fallback: when When holds, apply the listed changes.
type Rule struct {
	Name string
	When string

	// Technique and Quality name the replacement values; empty keeps the
	// current one.
	Technique string
	Quality   string

	// DisableHDR turns HDR output off.
	DisableHDR bool
}

type compiledRule struct {
	Rule
	program   *vm.Program
	technique upscale.Technique
	quality   upscale.Quality
}

// apply rewrites cfg and reports whether anything changed.
func (r *compiledRule) apply(cfg *upscale.Configuration) bool {
	before := *cfg
	if r.Technique != "" {
		cfg.Technique = r.technique
	}
	if r.Quality != "" {
		cfg.Quality = r.quality
	}
	if r.DisableHDR {
		cfg.HDR = false
	}
	return *cfg != before
}

// Set is an ordered list of compiled rules.
type Set struct {
	rules []compiledRule
}

// Compile checks and compiles rules in order.
func Compile(rules ...Rule) (*Set, error) {
	s := &Set{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		c, err := compile(r)
		if err != nil {
			name := r.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		s.rules = append(s.rules, c)
	}
	return s, nil
}

func compile(r Rule) (compiledRule, error) {
	c := compiledRule{Rule: r}
	if r.When == "" {
		return c, ErrEmptyCondition
	}
	if r.Technique == "" && r.Quality == "" && !r.DisableHDR {
		return c, ErrNoAction
	}
	if r.Technique != "" {
		t, ok := upscale.ParseTechnique(r.Technique)
		if !ok {
			return c, fmt.Errorf("%w %q", ErrUnknownTechnique, r.Technique)
		}
		c.technique = t
	}
	if r.Quality != "" {
		q, ok := upscale.ParseQuality(r.Quality)
		if !ok {
			return c, fmt.Errorf("%w %q", ErrUnknownQuality, r.Quality)
		}
		c.quality = q
	}
	program, err := expr.Compile(r.When, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return c, fmt.Errorf("rules: compile %q: %w", r.When, err)
	}
	c.program = program
	return c, nil
}

// Len returns the number of rules.
func (s *Set) Len() int { return len(s.rules) }

// Apply runs the first rule whose condition holds and whose changes alter
// desired. It returns the rule name, or "" when none applied.
func (s *Set) Apply(status upscale.Status, message string, desired *upscale.Configuration) (string, error) {
	env := newEnv(status, message, *desired)
	var errs []error
	for i := range s.rules {
		r := &s.rules[i]
		out, err := expr.Run(r.program, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", r.Name, err))
			continue
		}
		if matched, _ := out.(bool); matched && r.apply(desired) {
			return r.Name, errors.Join(errs...)
		}
	}
	return "", errors.Join(errs...)
}

// Handler returns an upscale.ErrorHandler backed by the set.
func (s *Set) Handler() upscale.ErrorHandler {
	return func(status upscale.Status, message string, desired *upscale.Configuration) {
		name, err := s.Apply(status, message, desired)
		if err != nil {
			upscale.Logger().Warn("rules: evaluation failed", "status", status, "error", err)
		}
		if name != "" {
			upscale.Logger().Info("rules: fallback applied", "rule", name, "status", status,
				"technique", desired.Technique, "quality", desired.Quality)
		}
	}
}

// DefaultRules is a fallback chain from vendor techniques down to the
// spatial filter.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "out-of-memory",
			When:    `Status == "OutOfGPUMemory" && Quality not in ["Performance", "UltraPerformance"]`,
			Quality: "Performance",
		},
		{
			Name:      "vendor-fallback",
			When:      `Technique in ["DLSS", "XeSS"] && Category in ["Hardware", "Software", "Settings"]`,
			Technique: "FSR2",
		},
		{
			Name:      "temporal-fallback",
			When:      `Technique == "FSR2" && Category in ["Hardware", "Software"]`,
			Technique: "FSR1",
		},
		{
			Name:       "hdr-fallback",
			When:       `HDR && Category == "Settings"`,
			DisableHDR: true,
		},
	}
}
