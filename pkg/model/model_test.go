package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
	"github.com/dd0wney/cluso-attacktree/pkg/probability"
	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

func TestLoadVault(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "vault.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "bank-vault", m.Name)
	assert.False(t, m.Analytic)
	assert.Equal(t, 2500, m.Runs)
	assert.Equal(t, 7, m.Registry.Len())

	root := m.Root
	assert.Equal(t, tree.KindOr, root.Kind)
	assert.Equal(t, "or", root.Name)
	require.Len(t, root.Children, 2)

	lock := root.Children[0]
	assert.Equal(t, "pick lock", lock.Name)
	assert.Equal(t, tree.KindThreat, lock.Kind)
	assert.Equal(t, 1.0, lock.Frequency)
	assert.True(t, lock.IsLeaf())
	require.Len(t, lock.Children, 1)
	assert.Equal(t, tree.KindMeasure, lock.Children[0].Kind)

	seq := root.Children[1]
	assert.Equal(t, tree.KindSeq, seq.Kind)
	assert.Equal(t, "seq", seq.Name)
	require.Len(t, seq.Children, 3)
	assert.Equal(t, 0.5, seq.Children[1].Frequency)
	assert.Equal(t, tree.DefaultFrequency, seq.Children[2].Frequency)
}

func TestRegistryOrderIsPostOrder(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "vault.yaml"))
	require.NoError(t, err)

	nodes := m.Registry.Nodes()
	assert.Same(t, m.Root, nodes[len(nodes)-1])
	assert.Equal(t, "alarm", nodes[0].Name)
}

func TestCountByKind(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "vault.yaml"))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"or":      1,
		"seq":     1,
		"threat":  3,
		"measure": 2,
	}, m.CountByKind())
}

func TestLoadAnalytic(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "analytic.yaml"))
	require.NoError(t, err)
	assert.True(t, m.Analytic)
	assert.Zero(t, m.Runs)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unknown_field.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidModel)
	assert.Contains(t, err.Error(), "capabilty")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidModel)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantErr  error
		contains string
	}{
		{
			name:    "empty document",
			yaml:    "",
			wantErr: ErrInvalidModel,
		},
		{
			name:     "missing tree",
			yaml:     "name: x\n",
			wantErr:  ErrInvalidModel,
			contains: "missing tree",
		},
		{
			name:     "negative runs",
			yaml:     "runs: -5\ntree: {name: t, kind: threat, capability: 1, difficulty: 1}\n",
			wantErr:  ErrInvalidModel,
			contains: "runs",
		},
		{
			name:     "unknown kind",
			yaml:     "tree: {name: t, kind: group}\n",
			wantErr:  tree.ErrUnknownKind,
			contains: "tree",
		},
		{
			name:     "unnamed action",
			yaml:     "tree: {kind: threat, capability: 1, difficulty: 1}\n",
			wantErr:  ErrInvalidModel,
			contains: "needs a name",
		},
		{
			name:     "capability out of range",
			yaml:     "tree:\n  kind: or\n  children:\n    - {name: t, kind: threat, capability: 7, difficulty: 1}\n",
			wantErr:  probability.ErrInvalidLevel,
			contains: "tree.children[0]",
		},
		{
			name:    "negative frequency",
			yaml:    "tree: {name: t, kind: threat, frequency: -1, capability: 1, difficulty: 1}\n",
			wantErr: tree.ErrInvalidFrequency,
		},
		{
			name:    "empty group",
			yaml:    "tree: {kind: and}\n",
			wantErr: tree.ErrModelShape,
		},
		{
			name:     "null child",
			yaml:     "tree:\n  kind: or\n  children:\n    - null\n",
			wantErr:  ErrInvalidModel,
			contains: "empty node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidModel)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestExplicitZeroFrequency(t *testing.T) {
	m, err := Parse([]byte("tree: {name: t, kind: threat, frequency: 0, capability: 1, difficulty: 1}\n"))
	require.NoError(t, err)
	assert.Zero(t, m.Root.Frequency)
}

func TestEncodeRoundTrip(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "vault.yaml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	assert.NotContains(t, buf.String(), "name: or")

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m.Name, again.Name)
	assert.Equal(t, m.Runs, again.Runs)
	assert.Equal(t, m.CountByKind(), again.CountByKind())

	var names, againNames []string
	m.Root.Walk(func(n *tree.Node, _ int) bool {
		names = append(names, n.Name)
		return true
	})
	again.Root.Walk(func(n *tree.Node, _ int) bool {
		againNames = append(againNames, n.Name)
		return true
	})
	assert.Equal(t, names, againNames)
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.Gauge.GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.Counter.GetValue()
}

func TestLoaderRecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	l := &Loader{Metrics: reg}

	_, err := l.Load(filepath.Join("testdata", "vault.yaml"))
	require.NoError(t, err)
	_, err = l.Parse([]byte("tree: {kind: and}\n"))
	require.Error(t, err)

	assert.Equal(t, 1.0, counterValue(t, reg.ModelLoadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, counterValue(t, reg.ModelLoadsTotal.WithLabelValues("error")))
	assert.Equal(t, 3.0, gaugeValue(t, reg.ModelNodesTotal.WithLabelValues("threat")))
}
