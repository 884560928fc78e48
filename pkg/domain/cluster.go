package domain

// ClusterGroup is one level of the cluster hierarchy.
type ClusterGroup struct {
	Name     string
	Parent   int // index of the parent group, -1 for top-level groups
	Depth    int
	Children []int   // indexes into ClusterTree.Groups, in creation order
	Members  []*Node // nodes placed directly in this group

	// Meta is the first node placed in this group. Its cluster attributes style the
	// whole container. Intermediate groups created only to reach a deeper path have
	// no Meta until a node is placed in them.
	Meta *Node
}

// ClusterTree is an arena of cluster groups addressed by index.
type ClusterTree struct {
	Groups []ClusterGroup
	Roots  []int
}

// BuildClusterTree groups the diagram's clustered nodes by cluster path.
// Nodes without a cluster are left out. A fresh tree is built on every call.
func BuildClusterTree(d *Diagram) *ClusterTree {
	t := &ClusterTree{}
	for _, n := range d.Nodes() {
		if !n.Clustered() {
			continue
		}
		parent := -1
		for _, name := range n.ClusterPath {
			parent = t.child(parent, name)
		}
		idx := t.child(parent, n.Cluster)
		g := &t.Groups[idx]
		g.Members = append(g.Members, n)
		if g.Meta == nil {
			g.Meta = n
		}
	}
	return t
}

// child returns the index of the group named name under parent, creating it if needed.
func (t *ClusterTree) child(parent int, name string) int {
	siblings := t.Roots
	if parent >= 0 {
		siblings = t.Groups[parent].Children
	}
	for _, idx := range siblings {
		if t.Groups[idx].Name == name {
			return idx
		}
	}

	depth := 0
	if parent >= 0 {
		depth = t.Groups[parent].Depth + 1
	}
	t.Groups = append(t.Groups, ClusterGroup{Name: name, Parent: parent, Depth: depth})
	idx := len(t.Groups) - 1
	if parent >= 0 {
		t.Groups[parent].Children = append(t.Groups[parent].Children, idx)
	} else {
		t.Roots = append(t.Roots, idx)
	}
	return idx
}

// Len returns the number of groups in the tree.
func (t *ClusterTree) Len() int {
	return len(t.Groups)
}

// Group returns the group at index i.
func (t *ClusterTree) Group(i int) *ClusterGroup {
	return &t.Groups[i]
}

// Find returns the index of the group reached by following path from the roots.
func (t *ClusterTree) Find(path ...string) (int, bool) {
	if len(path) == 0 {
		return -1, false
	}
	siblings := t.Roots
	idx := -1
	for _, name := range path {
		idx = -1
		for _, c := range siblings {
			if t.Groups[c].Name == name {
				idx = c
				break
			}
		}
		if idx < 0 {
			return -1, false
		}
		siblings = t.Groups[idx].Children
	}
	return idx, true
}

// Path returns the names from the root down to the group at index i.
func (t *ClusterTree) Path(i int) []string {
	var rev []string
	for i >= 0 {
		rev = append(rev, t.Groups[i].Name)
		i = t.Groups[i].Parent
	}
	path := make([]string, len(rev))
	for j := range rev {
		path[j] = rev[len(rev)-1-j]
	}
	return path
}

// Walk visits every group depth-first, children in creation order.
// enter is called before a group's children and leave after them; either may be nil.
func (t *ClusterTree) Walk(enter, leave func(idx int, g *ClusterGroup)) {
	var visit func(idx int)
	visit = func(idx int) {
		if enter != nil {
			enter(idx, &t.Groups[idx])
		}
		for _, c := range t.Groups[idx].Children {
			visit(c)
		}
		if leave != nil {
			leave(idx, &t.Groups[idx])
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
}
