package diagram

import "fmt"

// Severity grades a Check finding.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one finding of Check.
type Issue struct {
	Severity Severity
	ID       string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Severity, i.ID, i.Message)
}

// Check verifies the structural invariants of the store. Dangling
// connection endpoints are reported as warnings; everything else is an error.
func (s *Store) Check() []Issue {
	var issues []Issue
	errorf := func(id, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, ID: id, Message: fmt.Sprintf(format, args...)})
	}

	listedIn := make(map[string]int)
	for _, p := range s.Pools() {
		if len(p.Lanes) == 0 {
			errorf(p.ID, "pool has no lanes")
		}
		for _, l := range p.Lanes {
			for _, nid := range l.Children {
				listedIn[nid]++
				n, ok := s.nodes[nid]
				switch {
				case !ok:
					errorf(l.ID, "lane lists unknown node %s", nid)
				case n.LaneID != l.ID || n.PoolID != p.ID:
					errorf(nid, "listed in lane %s of %s but assigned to %q/%q", l.ID, p.ID, n.PoolID, n.LaneID)
				}
			}
		}
	}

	for _, n := range s.Nodes() {
		if !n.assigned() {
			if n.PoolID != "" || n.Offset != nil {
				errorf(n.ID, "unassigned node carries pool %q or an offset", n.PoolID)
			}
			continue
		}
		p, ok := s.pools[n.PoolID]
		if !ok {
			errorf(n.ID, "assigned to unknown pool %s", n.PoolID)
			continue
		}
		if l, ok := p.Lane(n.LaneID); !ok || !l.has(n.ID) {
			errorf(n.ID, "not listed by lane %s of %s", n.LaneID, n.PoolID)
		}
		if listedIn[n.ID] > 1 {
			errorf(n.ID, "listed by %d lanes", listedIn[n.ID])
		}
	}

	seen := make(map[[4]string]string)
	for _, c := range s.Connections() {
		for _, end := range []string{c.SourceID, c.TargetID} {
			if _, ok := s.nodes[end]; !ok {
				issues = append(issues, Issue{Severity: SeverityWarning, ID: c.ID, Message: "endpoint " + end + " does not exist"})
			}
		}
		if c.SourceID == c.TargetID {
			errorf(c.ID, "connects %s to itself", c.SourceID)
		}
		key := [4]string{c.SourceID, string(c.SourcePort), c.TargetID, string(c.TargetPort)}
		if prev, ok := seen[key]; ok {
			errorf(c.ID, "duplicates %s", prev)
		}
		seen[key] = c.ID
		if c.MidPoint != nil && !c.sameOrientation() {
			errorf(c.ID, "midpoint on %s/%s ports", c.SourcePort, c.TargetPort)
		}
	}
	return issues
}

// Errors filters a Check result down to errors.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}
