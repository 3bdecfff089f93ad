package tree

import (
	"testing"
)

func sampleTree() *Node {
	//   root
	//   ├── a
	//   │   └── c
	//   └── b
	return &Node{
		Name: "root", Version: "1.0.0", Depth: 0,
		Dependencies: []*Node{
			{
				Name: "a", Version: "2.0.0", Depth: 1,
				Dependencies: []*Node{
					{Name: "c", Version: "3.0.0", Depth: 2},
				},
			},
			{Name: "b", Version: "1.5.0", Depth: 1},
		},
	}
}

func TestNode_ID(t *testing.T) {
	n := &Node{Name: "express", Version: "4.18.2"}
	if got := n.ID(); got != "express@4.18.2" {
		t.Errorf("expected express@4.18.2, got %s", got)
	}
}

func TestNode_Terminal(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"plain", Node{}, false},
		{"circular", Node{Circular: true}, true},
		{"truncated", Node{Truncated: true}, true},
		{"errored", Node{Error: "boom"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk_PreOrder(t *testing.T) {
	var order []string
	Walk(sampleTree(), func(n *Node) bool {
		order = append(order, n.Name)
		return true
	})

	want := []string{"root", "a", "c", "b"}
	if len(order) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("visit %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

func TestWalk_EarlyStop(t *testing.T) {
	count := 0
	Walk(sampleTree(), func(n *Node) bool {
		count++
		return n.Name != "a"
	})
	if count != 2 {
		t.Errorf("expected walk to stop after 2 visits, got %d", count)
	}
}

func TestWalk_NilRoot(t *testing.T) {
	called := false
	Walk(nil, func(*Node) bool {
		called = true
		return true
	})
	if called {
		t.Error("fn should not be called for a nil root")
	}
}

func TestFlatten(t *testing.T) {
	nodes := Flatten(sampleTree())
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}
	if nodes[0].Name != "root" || nodes[3].Name != "b" {
		t.Errorf("unexpected order: %s ... %s", nodes[0].Name, nodes[3].Name)
	}
}

func TestCount(t *testing.T) {
	if got := Count(sampleTree()); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
	if got := Count(nil); got != 0 {
		t.Errorf("Count(nil) = %d, want 0", got)
	}
}
