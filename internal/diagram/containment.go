package diagram

// ReassignContainment recomputes a node's lane membership from its current
// geometry. The node leaves any lane that lists it, then joins the first
// lane, in pool order and then top to bottom, whose band contains its
// center. Band edges count as inside. Connections touching the node are
// rerouted so their midpoints follow the new membership.
func (s *Store) ReassignContainment(nodeID string) {
	n, ok := s.nodes[nodeID]
	if !ok {
		return
	}
	prevPool, prevLane := n.PoolID, n.LaneID
	s.detach(n)

	center := n.Center()
	for _, pid := range s.poolOrder {
		p := s.pools[pid]
		if !p.Bounds().Contains(center) {
			continue
		}
		for i, l := range p.Lanes {
			if p.LaneBand(i).Contains(center) {
				s.attach(n, p, l)
				break
			}
		}
		if n.assigned() {
			break
		}
	}

	if n.PoolID != prevPool || n.LaneID != prevLane {
		s.log.Debug().Str("node", n.ID).Str("pool", n.PoolID).Str("lane", n.LaneID).Msg("lane membership changed")
	}
	s.recomputeNode(n.ID)
	s.emit(EventNodeChanged, n.ID)
}

// detach removes a node from every lane that lists it and clears its membership.
func (s *Store) detach(n *Node) {
	for _, p := range s.pools {
		for _, l := range p.Lanes {
			l.remove(n.ID)
		}
	}
	n.PoolID, n.LaneID, n.Offset = "", "", nil
}

func (s *Store) attach(n *Node, p *Pool, l *Lane) {
	if !l.has(n.ID) {
		l.Children = append(l.Children, n.ID)
	}
	n.PoolID = p.ID
	n.LaneID = l.ID
	off := p.ToRelative(n.Position)
	n.Offset = &off
}
