package workspace

// SortMembers orders the workspace members so that every member appears
// after the members it depends on. Publishing in this order guarantees a
// package's registry dependencies exist before the package itself.
//
// The traversal is a memoized post-order depth-first search over edges
// between workspace members, restricted to non-dev dependency kinds. Each
// member is visited at most once, so cycles that exist only through
// dev-dependencies are broken by construction. Roots are visited in
// workspace declaration order, keeping the output deterministic when no
// edge constrains two members.
func SortMembers(ws *Workspace) []*Member {
	visited := make(map[string]bool, len(ws.Members))
	ordered := make([]*Member, 0, len(ws.Members))

	var visit func(m *Member)
	visit = func(m *Member) {
		if visited[m.Name] {
			return
		}
		visited[m.Name] = true
		for _, d := range m.Dependencies {
			if d.Kind == KindDev {
				continue
			}
			if dep, ok := ws.byName[d.Name]; ok {
				visit(dep)
			}
		}
		ordered = append(ordered, m)
	}

	for _, m := range ws.Members {
		visit(m)
	}
	return ordered
}
