package domain

// Relation is a directed edge between two node keys.
// Keys are not checked against the diagram's nodes: dangling references are kept and
// left to the renderer.
type Relation struct {
	SourceKey string `json:"source_key" yaml:"source_key"`
	TargetKey string `json:"target_key" yaml:"target_key"`
	Label     string `json:"label" yaml:"label"`

	Style     string `json:"style,omitempty" yaml:"style,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	CSSClass  string `json:"css_class,omitempty" yaml:"css_class,omitempty"`
	ArrowHead string `json:"arrowhead,omitempty" yaml:"arrowhead,omitempty"`
	ArrowTail string `json:"arrowtail,omitempty" yaml:"arrowtail,omitempty"`
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty"` // forward | back | both | none
}

// Reversed returns a copy with source and target swapped.
// Arrow attributes are swapped too so the rendered arrow keeps its visual side.
func (r Relation) Reversed() Relation {
	rev := r
	rev.SourceKey, rev.TargetKey = r.TargetKey, r.SourceKey
	rev.ArrowHead, rev.ArrowTail = r.ArrowTail, r.ArrowHead
	return rev
}
