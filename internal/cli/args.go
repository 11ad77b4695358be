// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits command arguments into flags and positionals.
//
// Accepted forms:
//
//	--flag value     only for flags declared as value flags
//	--flag=value     any flag
//	-f value         short form of a declared value flag
//	--flag           boolean flag
//	--               everything after is positional
//
// Flags that were not declared as taking a value never consume the next
// argument, so `ask --json hello` keeps "hello" as text.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser parses raw. valueFlags names the flags that take a separate
// value argument.
//
// Example:
//
//	p := NewArgParser([]string{"export", "2", "--format", "html", "--open"}, "format", "output")
//	p.Subcommand()     // "export"
//	p.Positional(1)    // "2"
//	p.Flag("format")   // "html"
//	p.BoolFlag("open") // true
func NewArgParser(raw []string, valueFlags ...string) *ArgParser {
	takesValue := make(map[string]bool, len(valueFlags))
	for _, name := range valueFlags {
		takesValue[name] = true
	}

	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
		raw:       raw,
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			p.positional = append(p.positional, raw[i+1:]...)
			break
		}
		if !isFlag(arg) {
			p.positional = append(p.positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if k, v, ok := strings.Cut(name, "="); ok {
			if !takesValue[k] && (v == "true" || v == "false") {
				p.boolFlags[k] = v == "true"
			} else {
				p.flags[k] = v
			}
			continue
		}

		if takesValue[name] && i+1 < len(raw) {
			p.flags[name] = raw[i+1]
			i++
			continue
		}
		p.boolFlags[name] = true
	}

	return p
}

// isFlag reports whether arg looks like a flag. A lone "-" and negative
// numbers are positionals.
func isFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return true
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.Positional(0)
}

// Flag returns the value of a string flag, or "".
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or def when unset.
func (p *ArgParser) FlagOrDefault(name, def string) string {
	if v := p.Flag(name); v != "" {
		return v
	}
	return def
}

// FlagInt parses an integer flag. def is returned when the flag is unset.
func (p *ArgParser) FlagInt(name string, def int) (int, error) {
	v := p.Flag(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, NewValidationError(name, v, "must be an integer")
	}
	return n, nil
}

// FlagFloat parses a float flag. def is returned when the flag is unset.
func (p *ArgParser) FlagFloat(name string, def float64) (float64, error) {
	v := p.Flag(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, NewValidationError(name, v, "must be a number")
	}
	return f, nil
}

// FlagDuration parses a duration flag such as "500ms" or "2s". A bare
// number is read as milliseconds.
func (p *ArgParser) FlagDuration(name string, def time.Duration) (time.Duration, error) {
	v := p.Flag(name)
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, NewValidationErrorWithExample(name, v, "must be a duration", "--"+name+" 1.5s")
	}
	return d, nil
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// HasFlag reports whether the flag appeared in either form.
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, isString := p.flags[name]
	_, isBool := p.boolFlags[name]
	return isString || isBool
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns the positionals from index on.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return nil
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positionals.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Raw returns the arguments as given.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// RequirePositional returns the positional at index or a usage error naming
// what is missing.
func (p *ArgParser) RequirePositional(index int, what, usage string) (string, error) {
	v := p.Positional(index)
	if v == "" {
		return "", ErrMissingArgument(what, usage)
	}
	return v, nil
}

// String is used in debug logging.
func (p *ArgParser) String() string {
	return fmt.Sprintf("positional=%v flags=%v bools=%v", p.positional, p.flags, p.boolFlags)
}
