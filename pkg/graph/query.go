package graph

import "slices"

// FindPath runs a breadth-first search over the directed edge set and
// returns the first-discovered path from rootID to targetID as an ordered
// id list, or nil if the target is unreachable. Neighbors are explored in
// edge-list order, so the result is deterministic. The visited set
// guarantees termination even though dedup edges can reintroduce
// already-visited ids.
func FindPath(edges []Edge, rootID, targetID string) []string {
	if rootID == targetID {
		return []string{rootID}
	}

	adjacency := make(map[string][]string)
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	visited := map[string]bool{rootID: true}
	parent := make(map[string]string)
	queue := []string{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current

			if next == targetID {
				return reconstructPath(parent, rootID, targetID)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstructPath(parent map[string]string, rootID, targetID string) []string {
	path := []string{targetID}
	for id := targetID; id != rootID; {
		id = parent[id]
		path = append(path, id)
	}
	slices.Reverse(path)
	return path
}

// Dependents returns the direct predecessors of targetID: every node with
// an edge pointing at it, in edge-list order, without duplicates.
func Dependents(edges []Edge, targetID string) []string {
	var dependents []string
	seen := make(map[string]bool)
	for _, e := range edges {
		if e.To == targetID && !seen[e.From] {
			seen[e.From] = true
			dependents = append(dependents, e.From)
		}
	}
	return dependents
}
