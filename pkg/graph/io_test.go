package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depscope/depscope/pkg/errors"
)

func TestWriteGraph_ReadGraph(t *testing.T) {
	g := graphOf("app", "x", "y")

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph failed: %v", err)
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph failed: %v", err)
	}
	if len(got.Nodes) != len(g.Nodes) || len(got.Edges) != len(g.Edges) {
		t.Errorf("roundtrip changed shape: %d/%d vs %d/%d",
			len(got.Nodes), len(got.Edges), len(g.Nodes), len(g.Edges))
	}
	if got.Stats.NodeCount != g.Stats.NodeCount {
		t.Errorf("stats lost in roundtrip: %+v", got.Stats)
	}
}

func TestReadGraph_RejectsDanglingEdges(t *testing.T) {
	raw := `{
		"nodes": [{"id": "a@1.0.0", "name": "a", "version": "1.0.0"}],
		"edges": [{"from": "a@1.0.0", "to": "ghost@1.0.0", "type": "direct"}]
	}`

	_, err := ReadGraph(strings.NewReader(raw))
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("expected ErrCodeInvalidGraph, got %v", err)
	}
}

func TestReadGraph_RejectsEmptyNodeID(t *testing.T) {
	raw := `{"nodes": [{"id": "", "name": "a", "version": "1.0.0"}], "edges": []}`

	_, err := ReadGraph(strings.NewReader(raw))
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("expected ErrCodeInvalidGraph, got %v", err)
	}
}

func TestReadGraph_RejectsMalformedJSON(t *testing.T) {
	_, err := ReadGraph(strings.NewReader("{nope"))
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("expected ErrCodeInvalidGraph, got %v", err)
	}
}

func TestWriteGraphFile_ReadGraphFile(t *testing.T) {
	g := graphOf("app", "x")
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile failed: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile failed: %v", err)
	}
	if len(got.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(got.Nodes))
	}
}

func TestMarshalGraph(t *testing.T) {
	data, err := MarshalGraph(graphOf("app"))
	if err != nil {
		t.Fatalf("MarshalGraph failed: %v", err)
	}
	if !strings.Contains(string(data), `"app@1.0.0"`) {
		t.Errorf("marshaled graph missing node id: %s", data)
	}
}
