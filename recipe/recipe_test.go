package recipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venicegeo/bf-snap/graph"
)

type mockDefaults struct {
	params graph.Parameters
	err    error
	calls  []string
}

func (m *mockDefaults) Defaults(ctx context.Context, operator string) (graph.Parameters, error) {
	m.calls = append(m.calls, operator)
	return m.params, m.err
}

const calibrationRecipe = `
nodes:
  - id: Read
    operator: Read
    parameters:
      file: /data/S1A.zip
      formatName: SENTINEL-1
  - id: Calibration
    operator: Calibration
    sources: [Read]
    defaults: true
    parameters:
      outputSigmaBand: true
      selectedPolarisations: ~
  - id: Write
    operator: Write
    sources: [Calibration]
    parameters:
      file: /data/out.dim
metadata:
  title: Sigma0
  product_type: S1_SIGMA0
  identifier: S1A_0001
`

func TestLoadAndBuild(t *testing.T) {
	// Mock
	defaults := &mockDefaults{params: graph.Parameters{
		graph.Param("outputSigmaBand", "false"),
		graph.Param("outputBetaBand", "false"),
		graph.EmptyParam("selectedPolarisations"),
	}}

	// Tested code
	r, err := Load(strings.NewReader(calibrationRecipe))
	require.Nil(t, err)
	g, err := r.Build(context.Background(), defaults)

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, []string{"Calibration"}, defaults.calls)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, "Sigma0", r.Metadata.Title)

	read, ok := g.Node("Read")
	require.True(t, ok)
	assert.Equal(t, graph.Parameters{
		graph.Param("file", "/data/S1A.zip"),
		graph.Param("formatName", "SENTINEL-1"),
	}, read.Parameters)

	cal, ok := g.Node("Calibration")
	require.True(t, ok)
	assert.Equal(t, "Calibration", cal.Operator)
	assert.Equal(t, []string{"Read"}, cal.Sources)
	assert.Equal(t, graph.Parameters{
		graph.Param("outputSigmaBand", "true"),
		graph.Param("outputBetaBand", "false"),
		graph.EmptyParam("selectedPolarisations"),
	}, cal.Parameters)

	assert.Equal(t, []graph.Edge{{From: "Read", To: "Calibration"}, {From: "Calibration", To: "Write"}}, g.Edges())
}

func TestParameterOrder(t *testing.T) {
	input := `
nodes:
  - id: Resample
    operator: Resample
    parameters:
      zeta: 1
      alpha: 2
      mid: 3
`
	r, err := Load(strings.NewReader(input))
	require.Nil(t, err)

	names := []string{}
	for _, p := range r.Nodes[0].Parameters {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestRepeatedNodeMerges(t *testing.T) {
	input := `
nodes:
  - id: Read
    operator: Read
    parameters:
      file: a.zip
  - id: Read
    parameters:
      file: b.zip
`
	r, err := Load(strings.NewReader(input))
	require.Nil(t, err)

	g, err := r.Build(context.Background(), nil)

	require.Nil(t, err)
	assert.Equal(t, 1, g.Len())
	read, _ := g.Node("Read")
	assert.Equal(t, "Read", read.Operator)
	v, _ := read.Parameters.Get("file")
	assert.Equal(t, "b.zip", v)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"no nodes":       `nodes: []`,
		"no id":          "nodes:\n  - operator: Read\n",
		"no operator":    "nodes:\n  - id: Read\n",
		"unknown source": "nodes:\n  - id: Write\n    operator: Write\n    sources: [Read]\n",
		"unknown field":  "nodes:\n  - id: Read\n    operator: Read\n    params: {}\n",
		"nested param":   "nodes:\n  - id: Read\n    operator: Read\n    parameters:\n      region: [1, 2]\n",
		"bad metadata":   "nodes:\n  - id: Read\n    operator: Read\nmetadata:\n  startdate: 2018-01-01\n",
	}
	for name, input := range cases {
		_, err := Load(strings.NewReader(input))
		assert.NotNil(t, err, name)
	}
}

func TestBuild_DefaultsErrors(t *testing.T) {
	r := &Recipe{Nodes: []NodeSpec{{ID: "Cal", Operator: "Calibration", Defaults: true}}}

	_, err := r.Build(context.Background(), nil)
	assert.NotNil(t, err)

	_, err = r.Build(context.Background(), &mockDefaults{err: errors.New("no gpt")})
	assert.NotNil(t, err)
}

func TestBuild_TextBandDescriptors(t *testing.T) {
	r := &Recipe{Nodes: []NodeSpec{{
		ID:         "BandMaths",
		Operator:   "BandMaths",
		Parameters: OrderedParameters{graph.Param(graph.TargetBandDescriptors, "not a fragment")},
	}}}

	_, err := r.Build(context.Background(), nil)

	assert.NotNil(t, err)
}

func TestLoadFile_Base(t *testing.T) {
	// Mock
	dir := t.TempDir()
	base := graph.New()
	require.Nil(t, base.AddNode("Read", "Read", graph.Parameters{graph.Param("file", "a.zip")}))
	require.Nil(t, base.AddNode("Write", "Write", graph.Parameters{graph.Param("file", "out.dim")}, "Read"))
	require.Nil(t, base.Save(filepath.Join(dir, "base.xml")))

	recipePath := filepath.Join(dir, "recipe.yaml")
	input := `
base: base.xml
nodes:
  - id: Read
    parameters:
      file: b.zip
  - id: Terrain
    operator: Terrain-Correction
    sources: [Read]
  - id: Write
    sources: [Terrain]
`
	require.Nil(t, os.WriteFile(recipePath, []byte(input), 0644))

	// Tested code
	r, err := LoadFile(recipePath)
	require.Nil(t, err)
	g, err := r.Build(context.Background(), nil)

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, 3, g.Len())
	read, _ := g.Node("Read")
	assert.Equal(t, "Read", read.Operator)
	v, _ := read.Parameters.Get("file")
	assert.Equal(t, "b.zip", v)
	write, _ := g.Node("Write")
	assert.Equal(t, []string{"Terrain"}, write.Sources)
	v, _ = write.Parameters.Get("file")
	assert.Equal(t, "out.dim", v)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}
