package domain

import "encoding/json"

// Diagram is the graph model produced by the parser.
// Nodes are kept in an ordered map: the first insertion of a key fixes its position,
// later insertions with the same key replace the value in that slot.
type Diagram struct {
	keys      []string
	nodes     map[string]*Node
	relations []Relation

	// Stylesheet is an external stylesheet reference (path or URL).
	Stylesheet string
	// InlineStylesheet is injected verbatim into the rendered output.
	InlineStylesheet string
}

// NewDiagram creates an empty diagram.
func NewDiagram() *Diagram {
	return &Diagram{nodes: make(map[string]*Node)}
}

// AddNode inserts a node, replacing any node already registered under the same key.
// It reports whether an existing node was replaced.
func (d *Diagram) AddNode(n *Node) bool {
	if d.nodes == nil {
		d.nodes = make(map[string]*Node)
	}
	_, replaced := d.nodes[n.Key]
	if !replaced {
		d.keys = append(d.keys, n.Key)
	}
	d.nodes[n.Key] = n
	return replaced
}

// Node returns the node with the given key, or nil if not found.
func (d *Diagram) Node(key string) *Node {
	return d.nodes[key]
}

// HasNode reports whether a node with the given key exists.
func (d *Diagram) HasNode(key string) bool {
	_, ok := d.nodes[key]
	return ok
}

// Keys returns node keys in iteration order.
func (d *Diagram) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Nodes returns all nodes in iteration order.
func (d *Diagram) Nodes() []*Node {
	out := make([]*Node, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.nodes[k])
	}
	return out
}

// Len returns the number of distinct node keys.
func (d *Diagram) Len() int {
	return len(d.keys)
}

// AddRelation appends a relation. Declaration order is the draw order.
func (d *Diagram) AddRelation(r Relation) {
	d.relations = append(d.relations, r)
}

// Relations returns the relations in declaration order.
func (d *Diagram) Relations() []Relation {
	out := make([]Relation, len(d.relations))
	copy(out, d.relations)
	return out
}

// Empty reports whether the diagram has neither nodes nor relations.
func (d *Diagram) Empty() bool {
	return len(d.keys) == 0 && len(d.relations) == 0
}

// diagramJSON is the wire shape of a Diagram.
type diagramJSON struct {
	Nodes            []*Node    `json:"nodes"`
	Relations        []Relation `json:"relations"`
	Stylesheet       string     `json:"stylesheet,omitempty"`
	InlineStylesheet string     `json:"inline_stylesheet,omitempty"`
}

// MarshalJSON encodes the diagram with nodes in iteration order.
func (d *Diagram) MarshalJSON() ([]byte, error) {
	return json.Marshal(diagramJSON{
		Nodes:            d.Nodes(),
		Relations:        d.Relations(),
		Stylesheet:       d.Stylesheet,
		InlineStylesheet: d.InlineStylesheet,
	})
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (d *Diagram) UnmarshalJSON(data []byte) error {
	var raw diagramJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Diagram{nodes: make(map[string]*Node)}
	for _, n := range raw.Nodes {
		if n != nil {
			d.AddNode(n)
		}
	}
	d.relations = raw.Relations
	d.Stylesheet = raw.Stylesheet
	d.InlineStylesheet = raw.InlineStylesheet
	return nil
}
