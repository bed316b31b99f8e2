// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package recipe reads YAML descriptions of processing graphs and turns them
// into graph documents.
//
// A recipe looks like:
//
//	base: existing-graph.xml    # optional, nodes are merged into it
//	nodes:
//	  - id: Read
//	    operator: Read
//	    parameters:
//	      file: /data/S1A.zip
//	  - id: Calibration
//	    operator: Calibration
//	    sources: [Read]
//	    defaults: true
//	    parameters:
//	      outputSigmaBand: true
//	      selectedPolarisations: ~
//	metadata:
//	  title: Sigma0
package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/venicegeo/bf-snap/graph"
	"github.com/venicegeo/bf-snap/metadata"
	"gopkg.in/yaml.v3"
)

// DefaultsSource supplies the default parameters of an operator
type DefaultsSource interface {
	Defaults(ctx context.Context, operator string) (graph.Parameters, error)
}

// Recipe is a declarative graph
type Recipe struct {
	Base     string           `yaml:"base,omitempty"`
	Nodes    []NodeSpec       `yaml:"nodes"`
	Metadata *metadata.Record `yaml:"metadata,omitempty"`

	dir string
}

// NodeSpec is one node of a recipe. Nodes sharing an id are merged in order.
type NodeSpec struct {
	ID         string            `yaml:"id"`
	Operator   string            `yaml:"operator"`
	Sources    []string          `yaml:"sources,omitempty"`
	Defaults   bool              `yaml:"defaults,omitempty"`
	Parameters OrderedParameters `yaml:"parameters,omitempty"`
}

// OrderedParameters keeps the parameters in the order they appear in the
// recipe. A null value becomes an empty parameter.
type OrderedParameters graph.Parameters

// UnmarshalYAML implements yaml.Unmarshaler
func (p *OrderedParameters) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameters must be a mapping", value.Line)
	}
	params := make(OrderedParameters, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: parameter %s must be a scalar or an XML string", val.Line, key.Value)
		}
		if val.Tag == "!!null" {
			params = append(params, graph.EmptyParam(key.Value))
			continue
		}
		params = append(params, graph.Param(key.Value, val.Value))
	}
	*p = params
	return nil
}

// Load decodes a recipe and checks that it is well formed
func Load(r io.Reader) (*Recipe, error) {
	var recipe Recipe
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&recipe); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("recipe is empty")
		}
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// LoadFile reads a recipe from disk. A relative base graph is resolved
// against the recipe's directory.
func LoadFile(filename string) (*Recipe, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	recipe, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	recipe.dir = filepath.Dir(filename)
	return recipe, nil
}

// Validate checks node ids, operators and source references
func (r *Recipe) Validate() error {
	if len(r.Nodes) == 0 && r.Base == "" {
		return errors.New("recipe has no nodes")
	}
	ids := map[string]bool{}
	var errs []error
	for i, n := range r.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("node %d has no id", i))
			continue
		}
		if n.Operator == "" && !ids[n.ID] && r.Base == "" {
			errs = append(errs, fmt.Errorf("node %s has no operator", n.ID))
		}
		ids[n.ID] = true
	}
	// a base graph may declare sources the recipe does not
	if r.Base == "" {
		for _, n := range r.Nodes {
			for _, s := range n.Sources {
				if s != "" && !ids[s] {
					errs = append(errs, fmt.Errorf("node %s references unknown source %s", n.ID, s))
				}
			}
		}
	}
	if r.Metadata != nil {
		if err := r.Metadata.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("metadata: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Build produces the graph document. defaults may be nil when no node asks
// for operator defaults.
func (r *Recipe) Build(ctx context.Context, defaults DefaultsSource) (*graph.Graph, error) {
	g := graph.New()
	if r.Base != "" {
		base := r.Base
		if !filepath.IsAbs(base) && r.dir != "" {
			base = filepath.Join(r.dir, base)
		}
		var err error
		if g, err = graph.LoadFile(base); err != nil {
			return nil, fmt.Errorf("load base graph: %w", err)
		}
	}

	for _, n := range r.Nodes {
		operator := n.Operator
		if operator == "" {
			existing, ok := g.Node(n.ID)
			if !ok {
				return nil, fmt.Errorf("node %s has no operator", n.ID)
			}
			operator = existing.Operator
		}

		params := graph.Parameters(n.Parameters)
		if n.Defaults {
			if defaults == nil {
				return nil, fmt.Errorf("node %s asks for defaults but no operator registry is available", n.ID)
			}
			seed, err := defaults.Defaults(ctx, operator)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
			params = seed.Merge(params)
		}
		if err := g.AddNode(n.ID, operator, params, n.Sources...); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	return g, nil
}
