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

// Package graph builds SNAP Graph Processing Framework documents: a chain of
// operator nodes, each with its parameters and references to the nodes it
// reads from.
package graph

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/beevik/etree"
)

// Version is the graph format version written into every document
const Version = "1.0"

// ParametersClass is the binding class SNAP expects on every parameters element
const ParametersClass = "com.bc.ceres.binding.dom.XppDomElement"

const (
	tagGraph         = "graph"
	tagVersion       = "version"
	tagNode          = "node"
	tagOperator      = "operator"
	tagSources       = "sources"
	tagParameters    = "parameters"
	tagSourceProduct = "sourceProduct"
	attrID           = "id"
	attrRefID        = "refid"
	attrClass        = "class"
)

// Graph is a mutable SNAP graph document
type Graph struct {
	doc *etree.Document
}

// Node is a read-only view of a single graph node
type Node struct {
	ID         string
	Operator   string
	Sources    []string
	Parameters Parameters
}

// New creates an empty graph
func New() *Graph {
	doc := etree.NewDocument()
	root := doc.CreateElement(tagGraph)
	root.CreateElement(tagVersion).SetText(Version)
	return &Graph{doc: doc}
}

// Load parses an existing graph document
func Load(r io.Reader) (*Graph, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != tagGraph {
		return nil, fmt.Errorf("parse graph: root element is not <%s>", tagGraph)
	}
	doc.Indent(etree.NoIndent)

	// The declaration is rewritten on every save.
	for _, child := range append([]etree.Token{}, doc.Child...) {
		if _, ok := child.(*etree.ProcInst); ok {
			doc.RemoveChild(child)
		}
	}
	return &Graph{doc: doc}, nil
}

// LoadFile parses the graph document stored in filename
func LoadFile(filename string) (*Graph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

// AddNode creates the node with the given id or, if it already exists, merges
// into it: the operator is overwritten, each parameter is overwritten in place
// (or created), and sources are replaced only when some are given.
func (g *Graph) AddNode(id string, operator string, params Parameters, sources ...string) error {
	if id == "" {
		return fmt.Errorf("graph node id must not be empty")
	}
	sources = nonEmpty(sources)

	nodeElem := g.findNode(id)
	if nodeElem == nil {
		return g.createNode(id, operator, params, sources)
	}
	return g.mergeNode(nodeElem, operator, params, sources)
}

func (g *Graph) createNode(id string, operator string, params Parameters, sources []string) error {
	// Fragments are parsed up front so a bad one leaves the graph untouched.
	fragments, err := parseFragments(params)
	if err != nil {
		return err
	}

	nodeElem := g.doc.Root().CreateElement(tagNode)
	nodeElem.CreateAttr(attrID, id)
	nodeElem.CreateElement(tagOperator).SetText(operator)
	writeSources(nodeElem.CreateElement(tagSources), sources)

	paramsElem := nodeElem.CreateElement(tagParameters)
	paramsElem.CreateAttr(attrClass, ParametersClass)
	for i, p := range params {
		if p.Name == TargetBandDescriptors {
			if fragments[i] != nil {
				paramsElem.AddChild(fragments[i])
			}
			continue
		}
		paramElem := paramsElem.CreateElement(p.Name)
		setValue(paramElem, p, fragments[i])
	}
	return nil
}

func (g *Graph) mergeNode(nodeElem *etree.Element, operator string, params Parameters, sources []string) error {
	fragments, err := parseFragments(params)
	if err != nil {
		return err
	}

	operatorElem := ensureChild(nodeElem, tagOperator)
	operatorElem.SetText(operator)

	if len(sources) > 0 {
		sourcesElem := ensureChild(nodeElem, tagSources)
		for _, child := range sourcesElem.ChildElements() {
			sourcesElem.RemoveChild(child)
		}
		writeSources(sourcesElem, sources)
	}

	paramsElem := nodeElem.SelectElement(tagParameters)
	if paramsElem == nil {
		paramsElem = nodeElem.CreateElement(tagParameters)
		paramsElem.CreateAttr(attrClass, ParametersClass)
	}
	for i, p := range params {
		if p.Name == TargetBandDescriptors {
			if fragments[i] != nil {
				paramsElem.AddChild(fragments[i])
			}
			continue
		}
		paramElem := paramsElem.SelectElement(p.Name)
		if paramElem == nil {
			paramElem = paramsElem.CreateElement(p.Name)
		}
		if p.Value == nil {
			continue
		}
		for _, child := range paramElem.ChildElements() {
			paramElem.RemoveChild(child)
		}
		setValue(paramElem, p, fragments[i])
	}
	return nil
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	nodeElem := g.findNode(id)
	if nodeElem == nil {
		return nil, false
	}
	return readNode(nodeElem), true
}

// Nodes returns every node in document order
func (g *Graph) Nodes() []*Node {
	elems := g.doc.Root().SelectElements(tagNode)
	nodes := make([]*Node, len(elems))
	for i, elem := range elems {
		nodes[i] = readNode(elem)
	}
	return nodes
}

// Len returns the number of nodes in the graph
func (g *Graph) Len() int {
	return len(g.doc.Root().SelectElements(tagNode))
}

// WriteTo writes the XML declaration and the indented graph document to w
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	out := g.doc.Copy()
	out.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
	out.Indent(2)
	return out.WriteTo(w)
}

// Bytes returns the serialized graph document
func (g *Graph) Bytes() ([]byte, error) {
	var sb strings.Builder
	if _, err := g.WriteTo(&sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Save writes the graph document to filename
func (g *Graph) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err = g.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// String returns the indented graph document, for viewing
func (g *Graph) String() string {
	out := g.doc.Copy()
	out.Indent(2)
	s, err := out.WriteToString()
	if err != nil {
		return fmt.Sprintf("<!-- %v -->", err)
	}
	return s
}

// Plot writes one line per node: the node's primary source, if it has one,
// followed by the node id
func (g *Graph) Plot(w io.Writer) error {
	for _, node := range g.Nodes() {
		if len(node.Sources) > 0 {
			if _, err := fmt.Fprintln(w, node.Sources[0]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, node.ID); err != nil {
			return err
		}
	}
	return nil
}

// Edge is a source reference from one node to another
type Edge struct {
	From string
	To   string
}

// Edges returns every source reference in the graph, in document order
func (g *Graph) Edges() []Edge {
	edges := []Edge{}
	for _, node := range g.Nodes() {
		for _, source := range node.Sources {
			edges = append(edges, Edge{From: source, To: node.ID})
		}
	}
	return edges
}

func (g *Graph) findNode(id string) *etree.Element {
	for _, elem := range g.doc.Root().SelectElements(tagNode) {
		if elem.SelectAttrValue(attrID, "") == id {
			return elem
		}
	}
	return nil
}

func readNode(elem *etree.Element) *Node {
	node := &Node{
		ID:         elem.SelectAttrValue(attrID, ""),
		Sources:    []string{},
		Parameters: Parameters{},
	}
	if op := elem.SelectElement(tagOperator); op != nil {
		node.Operator = strings.TrimSpace(op.Text())
	}
	if sources := elem.SelectElement(tagSources); sources != nil {
		for _, s := range sources.ChildElements() {
			if ref := s.SelectAttrValue(attrRefID, ""); ref != "" {
				node.Sources = append(node.Sources, ref)
			} else if text := strings.TrimSpace(s.Text()); text != "" {
				// Hand-written graphs may carry the reference as text.
				node.Sources = append(node.Sources, text)
			}
		}
	}
	if params := elem.SelectElement(tagParameters); params != nil {
		for _, p := range params.ChildElements() {
			node.Parameters = append(node.Parameters, readParam(p))
		}
	}
	return node
}

func readParam(elem *etree.Element) Parameter {
	children := elem.ChildElements()
	if len(children) == 0 {
		text := elem.Text()
		if text == "" {
			return EmptyParam(elem.Tag)
		}
		return Param(elem.Tag, text)
	}
	var sb strings.Builder
	for _, child := range children {
		doc := etree.NewDocumentWithRoot(child.Copy())
		s, _ := doc.WriteToString()
		sb.WriteString(s)
	}
	return Param(elem.Tag, sb.String())
}

func writeSources(sourcesElem *etree.Element, sources []string) {
	for i, source := range sources {
		tag := tagSourceProduct
		if i > 0 {
			tag = tagSourceProduct + "." + strconv.Itoa(i)
		}
		sourcesElem.CreateElement(tag).CreateAttr(attrRefID, source)
	}
}

func setValue(elem *etree.Element, p Parameter, fragment *etree.Element) {
	switch {
	case p.Value == nil:
	case fragment != nil:
		elem.SetText("")
		elem.AddChild(fragment)
	default:
		elem.SetText(*p.Value)
	}
}

// parseFragments checks every parameter name and parses the fragment values.
// The result is indexed like params, with nil for plain values.
func parseFragments(params Parameters) ([]*etree.Element, error) {
	fragments := make([]*etree.Element, len(params))
	for i, p := range params {
		if !isXMLName(p.Name) {
			return nil, fmt.Errorf("parameter name %q is not a valid XML element name", p.Name)
		}
		if p.Name == TargetBandDescriptors && p.Value != nil && !p.IsFragment() {
			return nil, fmt.Errorf("parameter %s: value must be an XML fragment", p.Name)
		}
		if !p.IsFragment() {
			continue
		}
		frag, err := ParseFragment(*p.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		fragments[i] = frag
	}
	return fragments, nil
}

// isXMLName reports whether name is an XML name without a namespace prefix
func isXMLName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

// ParseFragment parses an XML fragment with a single root element
func ParseFragment(value string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(value); err != nil {
		return nil, fmt.Errorf("invalid XML fragment: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("invalid XML fragment: no root element in %q", value)
	}
	doc.Indent(etree.NoIndent)
	return root, nil
}

func ensureChild(parent *etree.Element, tag string) *etree.Element {
	if child := parent.SelectElement(tag); child != nil {
		return child
	}
	return parent.CreateElement(tag)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
