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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the plan from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Plan, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "plan.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclPlan struct {
		Trash *struct {
			Dir     string   `hcl:"dir"`
			Protect []string `hcl:"protect,optional"`
		} `hcl:"trash,block"`
		Steps []struct {
			Name        string   `hcl:"name,label"`
			Source      string   `hcl:"source"`
			Target      string   `hcl:"target"`
			Owner       string   `hcl:"owner,optional"`
			Group       string   `hcl:"group,optional"`
			SyncOptions []string `hcl:"sync_options,optional"`
			Exclude     []string `hcl:"exclude,optional"`
		} `hcl:"step,block"`
	}

	// Decode HCL
	var hclCfg hclPlan
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	plan := &Plan{}
	if hclCfg.Trash != nil {
		plan.Trash = TrashConfig{
			Dir:     hclCfg.Trash.Dir,
			Protect: hclCfg.Trash.Protect,
		}
	}
	for _, s := range hclCfg.Steps {
		plan.Steps = append(plan.Steps, StepConfig{
			Name:        s.Name,
			Source:      s.Source,
			Target:      s.Target,
			Owner:       s.Owner,
			Group:       s.Group,
			SyncOptions: s.SyncOptions,
			Exclude:     s.Exclude,
		})
	}

	return plan, nil
}
