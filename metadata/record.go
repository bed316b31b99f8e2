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

// Package metadata renders the sidecar files published next to a processed
// product: an OGC EarthObservation XML document and a flat .properties file.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record holds the metadata of one product. Every field is optional; a
// field is present when it is non-empty.
type Record struct {
	Title          string     `yaml:"title,omitempty" json:"title,omitempty"`
	StartDate      string     `yaml:"startdate,omitempty" json:"startdate,omitempty"`
	EndDate        string     `yaml:"enddate,omitempty" json:"enddate,omitempty"`
	WKT            string     `yaml:"wkt,omitempty" json:"wkt,omitempty"`
	ProductType    string     `yaml:"product_type,omitempty" json:"product_type,omitempty"`
	Identifier     string     `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	VendorSpecific []KeyValue `yaml:"vs,omitempty" json:"vs,omitempty"`
	Categories     []Category `yaml:"cat,omitempty" json:"cat,omitempty"`
}

// KeyValue is a single vendor-specific attribute
type KeyValue struct {
	Attribute string `yaml:"attribute" json:"attribute"`
	Value     string `yaml:"value" json:"value"`
}

// Category is a named group of category terms
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms"`
}

// HasTimeRange reports whether both ends of the time range are present
func (r Record) HasTimeRange() bool {
	return r.StartDate != "" && r.EndDate != ""
}

// CategoryExpression renders the categories as terms joined by "," within a
// group and groups joined by "|"
func (r Record) CategoryExpression() string {
	groups := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		groups[i] = strings.Join(c.Terms, ",")
	}
	return strings.Join(groups, "|")
}

// Validate checks the presence rules and that present values parse
func (r Record) Validate() error {
	var errs []error
	// each of these ends up on a single properties line
	for _, field := range []struct{ key, value string }{
		{"title", r.Title},
		{"startdate", r.StartDate},
		{"enddate", r.EndDate},
	} {
		if strings.ContainsAny(field.value, "\r\n") {
			errs = append(errs, fmt.Errorf("%s must not contain line breaks", field.key))
		}
	}
	for _, c := range r.Categories {
		for _, term := range c.Terms {
			if strings.ContainsAny(term, "\r\n") {
				errs = append(errs, fmt.Errorf("category %s: terms must not contain line breaks", c.Name))
				break
			}
		}
	}
	if (r.StartDate == "") != (r.EndDate == "") {
		errs = append(errs, errors.New("startdate and enddate must be given together"))
	}
	for _, d := range []string{r.StartDate, r.EndDate} {
		if d == "" {
			continue
		}
		if _, err := ParseTime(d); err != nil {
			errs = append(errs, err)
		}
	}
	if r.WKT != "" {
		if _, err := ParseFootprint(r.WKT); err != nil {
			errs = append(errs, err)
		}
	}
	if r.ProductType != "" && r.Identifier == "" {
		errs = append(errs, errors.New("identifier is required with product_type"))
	}
	for _, kv := range r.VendorSpecific {
		if kv.Attribute == "" {
			errs = append(errs, errors.New("vendor-specific attribute names must not be empty"))
			break
		}
	}
	return errors.Join(errs...)
}

// LoadRecord decodes a YAML (or JSON) metadata record and validates it
func LoadRecord(r io.Reader) (*Record, error) {
	var record Record
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&record); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode metadata record: %w", err)
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata record: %w", err)
	}
	return &record, nil
}
