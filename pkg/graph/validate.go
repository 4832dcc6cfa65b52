package graph

import (
	"errors"
	"fmt"
)

// Validate checks that the link projection and the topology index agree
// with the parent pointers: every non-root has exactly one link from its
// parent, depths follow the parent chain, and the structure is acyclic.
func (s *Store) Validate() error {
	var errs []error

	for id, n := range s.nodes {
		if s.topo.Node(id) == nil {
			errs = append(errs, fmt.Errorf("node %d missing from topology", id))
		}

		pid, hasParent := n.Parent()
		if !hasParent {
			if n.Depth != 0 {
				errs = append(errs, fmt.Errorf("root %d has depth %d", id, n.Depth))
			}
			if _, ok := s.links[id]; ok {
				errs = append(errs, fmt.Errorf("root %d has an incoming link", id))
			}
			continue
		}

		p, ok := s.nodes[pid]
		if !ok {
			errs = append(errs, fmt.Errorf("node %d: parent %d: %w", id, pid, ErrNodeNotFound))
			continue
		}
		if n.Depth != p.Depth+1 {
			errs = append(errs, fmt.Errorf("node %d has depth %d, parent %d has %d", id, n.Depth, pid, p.Depth))
		}

		l, ok := s.links[id]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("node %d has no link from parent %d", id, pid))
		case l.Source != p || l.Target != n:
			errs = append(errs, fmt.Errorf("link to %d does not join it to parent %d", id, pid))
		case l.RestingDistance <= 0:
			errs = append(errs, fmt.Errorf("link to %d has resting distance %g", id, l.RestingDistance))
		}

		if !s.topo.HasEdgeFromTo(pid, id) {
			errs = append(errs, fmt.Errorf("topology lacks edge %d->%d", pid, id))
		}
	}

	for id := range s.links {
		if _, ok := s.nodes[id]; !ok {
			errs = append(errs, fmt.Errorf("link targets removed node %d", id))
		}
	}
	if n := s.topo.Nodes().Len(); n != len(s.nodes) {
		errs = append(errs, fmt.Errorf("topology has %d nodes, store has %d", n, len(s.nodes)))
	}
	if n := s.topo.Edges().Len(); n != len(s.links) {
		errs = append(errs, fmt.Errorf("topology has %d edges, store has %d links", n, len(s.links)))
	}
	for _, cycle := range findCycles(s.topo) {
		errs = append(errs, fmt.Errorf("cycle through nodes %v", cycle))
	}

	return errors.Join(errs...)
}
