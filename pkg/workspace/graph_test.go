package workspace

import "testing"

func memberNames(members []*Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func buildWorkspace(members ...*Member) *Workspace {
	ws := &Workspace{byName: make(map[string]*Member)}
	for _, m := range members {
		ws.add(m)
	}
	return ws
}

func TestSortMembers_DependenciesFirst(t *testing.T) {
	ws := buildWorkspace(
		&Member{Name: "app", Dependencies: []Dependency{
			{Name: "api", Kind: KindNormal},
			{Name: "core", Kind: KindNormal},
		}},
		&Member{Name: "api", Dependencies: []Dependency{
			{Name: "core", Kind: KindNormal},
		}},
		&Member{Name: "core"},
	)

	names := memberNames(SortMembers(ws))
	if len(names) != 3 {
		t.Fatalf("SortMembers() = %v, want 3 members", names)
	}
	if indexOf(names, "core") > indexOf(names, "api") {
		t.Errorf("order %v: core must precede api", names)
	}
	if indexOf(names, "api") > indexOf(names, "app") {
		t.Errorf("order %v: api must precede app", names)
	}
}

func TestSortMembers_DevCycleTerminates(t *testing.T) {
	// core dev-depends on testkit, testkit depends on core: a cycle only
	// through a dev edge must neither loop nor drop a member.
	ws := buildWorkspace(
		&Member{Name: "core", Dependencies: []Dependency{
			{Name: "testkit", Kind: KindDev},
		}},
		&Member{Name: "testkit", Dependencies: []Dependency{
			{Name: "core", Kind: KindNormal},
		}},
	)

	names := memberNames(SortMembers(ws))
	if len(names) != 2 {
		t.Fatalf("SortMembers() = %v, want both members", names)
	}
	if indexOf(names, "core") > indexOf(names, "testkit") {
		t.Errorf("order %v: core must precede testkit (dev edge ignored)", names)
	}
}

func TestSortMembers_DeclarationOrderForRoots(t *testing.T) {
	ws := buildWorkspace(
		&Member{Name: "zeta"},
		&Member{Name: "alpha"},
		&Member{Name: "mid"},
	)

	names := memberNames(SortMembers(ws))
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("SortMembers() = %v, want declaration order %v", names, want)
		}
	}
}

func TestSortMembers_BuildEdgeOrders(t *testing.T) {
	ws := buildWorkspace(
		&Member{Name: "gen", Dependencies: []Dependency{
			{Name: "codegen", Kind: KindBuild},
		}},
		&Member{Name: "codegen"},
	)

	names := memberNames(SortMembers(ws))
	if indexOf(names, "codegen") > indexOf(names, "gen") {
		t.Errorf("order %v: build dependency must precede dependent", names)
	}
}

func TestSortMembers_ExternalDepsIgnored(t *testing.T) {
	ws := buildWorkspace(
		&Member{Name: "only", Dependencies: []Dependency{
			{Name: "serde", Kind: KindNormal},
		}},
	)

	names := memberNames(SortMembers(ws))
	if len(names) != 1 || names[0] != "only" {
		t.Errorf("SortMembers() = %v, want [only]", names)
	}
}
