// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/copytx/pkg/step"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for plan parsers
type Parser interface {
	// 📝 Parse parses the plan from bytes
	Parse(ctx context.Context, data []byte) (*Plan, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🗑️ TrashConfig locates the recoverable holding area for rolled-back targets
type TrashConfig struct {
	Dir     string   `json:"dir" yaml:"dir"`                             // holding area root
	Protect []string `json:"protect,omitempty" yaml:"protect,omitempty"` // patterns that must never be trashed
}

// 🔧 StepConfig declares one copy step of the plan
type StepConfig struct {
	Name        string   `json:"name" yaml:"name"`                                     // unique step name
	Source      string   `json:"source" yaml:"source"`                                 // path that must pre-exist
	Target      string   `json:"target" yaml:"target"`                                 // full destination path
	Owner       string   `json:"owner,omitempty" yaml:"owner,omitempty"`               // optional post-copy owner
	Group       string   `json:"group,omitempty" yaml:"group,omitempty"`               // optional post-copy group
	SyncOptions []string `json:"sync_options,omitempty" yaml:"sync_options,omitempty"` // mirror tool options
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`           // patterns handed to the mirror as excludes
}

// 📚 Plan represents a complete transaction: an ordered list of copy steps
// plus the trash area that receives rolled-back targets
type Plan struct {
	Trash TrashConfig  `json:"trash" yaml:"trash"`
	Steps []StepConfig `json:"steps" yaml:"steps"`
}

// 🎯 Load loads a plan from a file
func Load(ctx context.Context, path string) (*Plan, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading plan")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading plan file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	plan, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing plan: %w", err)
	}

	if err := plan.Validate(); err != nil {
		return nil, errors.Errorf("validating plan: %w", err)
	}

	return plan, nil
}

// 🔍 Validate checks if the plan is valid
func (p *Plan) Validate() error {
	if p.Trash.Dir == "" {
		return errors.Errorf("trash.dir is required")
	}
	for _, pattern := range p.Trash.Protect {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("trash.protect: invalid pattern %q", pattern)
		}
	}

	if len(p.Steps) == 0 {
		return errors.Errorf("at least one step is required")
	}

	seen := map[string]bool{}
	for i, s := range p.Steps {
		if s.Name == "" {
			return errors.Errorf("step %d: name is required", i)
		}
		if seen[s.Name] {
			return errors.Errorf("step %q: duplicate name", s.Name)
		}
		seen[s.Name] = true

		if s.Source == "" {
			return errors.Errorf("step %q: source is required", s.Name)
		}
		if s.Target == "" {
			return errors.Errorf("step %q: target is required", s.Name)
		}
		for _, pattern := range s.Exclude {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("step %q: invalid exclude pattern %q", s.Name, pattern)
			}
		}
	}

	return nil
}

// 📝 String returns a string representation of the step
func (s StepConfig) String() string {
	return fmt.Sprintf("%s: %s -> %s", s.Name, s.Source, s.Target)
}

// Request materializes the base request this step hands to the copy step.
// Sync options default to archive mode, and each exclude pattern rides along
// as a mirror option. Phase and replay flags are the runner's to fill in.
func (s StepConfig) Request() step.Request {
	opts := make([]string, 0, len(s.SyncOptions)+len(s.Exclude))
	if len(s.SyncOptions) == 0 {
		opts = append(opts, step.DefaultSyncOptions()...)
	} else {
		opts = append(opts, s.SyncOptions...)
	}
	for _, pattern := range s.Exclude {
		opts = append(opts, "--exclude="+pattern)
	}

	return step.Request{
		Source:      s.Source,
		Target:      s.Target,
		Owner:       s.Owner,
		Group:       s.Group,
		SyncOptions: opts,
	}
}
