// Package config loads sandbox profiles: the resource limits and builtin
// allowlist a host applies to scripts it does not trust equally.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Profile is one named sandbox configuration.
//
//	limits:
//	  steps: 100000
//	  depth: 64
//	  wall: 2s
//	  memory: 1048576
//	builtins: [len, range, print]
//
// An absent limit is unlimited; an absent builtins list enables them all.
type Profile struct {
	Limits   Limits   `yaml:"limits"`
	Builtins []string `yaml:"builtins"`
}

type Limits struct {
	Steps  int64  `yaml:"steps"`
	Depth  int    `yaml:"depth"`
	Wall   string `yaml:"wall"`
	Memory int64  `yaml:"memory"`
}

// WallDuration parses the wall limit; empty means unlimited.
func (l Limits) WallDuration() (time.Duration, error) {
	if l.Wall == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(l.Wall)
	if err != nil {
		return 0, fmt.Errorf("limits.wall: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("limits.wall: negative duration %s", l.Wall)
	}
	return d, nil
}

func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseProfile(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a profile strictly: unknown keys are an error, so a
// typo never silently weakens a sandbox.
func ParseProfile(b []byte) (*Profile, error) {
	var p Profile
	if err := yaml.UnmarshalWithOptions(b, &p, yaml.Strict()); err != nil {
		return nil, err
	}
	if p.Limits.Steps < 0 || p.Limits.Depth < 0 || p.Limits.Memory < 0 {
		return nil, fmt.Errorf("limits must not be negative")
	}
	if _, err := p.Limits.WallDuration(); err != nil {
		return nil, err
	}
	return &p, nil
}
