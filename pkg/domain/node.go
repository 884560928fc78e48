package domain

import (
	"net/url"
	"strconv"
)

// Node represents one entity of the diagram.
// A node is created when its block header is parsed and is only populated from that
// block's option lines and sections.
type Node struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`

	// Variables and Functions are rendered as list sections, in declaration order.
	Variables []string `json:"variables" yaml:"variables"`
	Functions []string `json:"functions" yaml:"functions"`

	// Styling
	Color       string `json:"color,omitempty" yaml:"color,omitempty"` // "#RRGGBB"
	Shape       string `json:"shape" yaml:"shape"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	CSSClass    string `json:"css_class,omitempty" yaml:"css_class,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Clustering. ClusterPath holds the ancestors (root first) and excludes Cluster itself.
	Cluster        string   `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	ClusterPath    []string `json:"cluster_path,omitempty" yaml:"cluster_path,omitempty"`
	ClusterClass   string   `json:"cluster_class,omitempty" yaml:"cluster_class,omitempty"`
	ClusterColor   string   `json:"cluster_color,omitempty" yaml:"cluster_color,omitempty"`
	ClusterStyle   string   `json:"cluster_style,omitempty" yaml:"cluster_style,omitempty"`
	ClusterBgColor string   `json:"cluster_bgcolor,omitempty" yaml:"cluster_bgcolor,omitempty"`
}

// NewNode creates a node with the default record shape and empty sections.
func NewNode(name, key string) *Node {
	return &Node{
		Name:      name,
		Key:       key,
		Variables: []string{},
		Functions: []string{},
		Shape:     DefaultShape,
	}
}

// AddVariable appends an entry to the variables section.
func (n *Node) AddVariable(v string) {
	n.Variables = append(n.Variables, v)
}

// AddFunction appends an entry to the functions section.
func (n *Node) AddFunction(f string) {
	n.Functions = append(n.Functions, f)
}

// FillColor returns the node color, falling back to DefaultFillColor.
func (n *Node) FillColor() string {
	if n.Color == "" {
		return DefaultFillColor
	}
	return n.Color
}

// Clustered reports whether the node belongs to a cluster.
func (n *Node) Clustered() bool {
	return n.Cluster != ""
}

// FullClusterPath returns the ancestors followed by the immediate cluster.
// It returns nil for nodes outside any cluster.
func (n *Node) FullClusterPath() []string {
	if n.Cluster == "" {
		return nil
	}
	path := make([]string, 0, len(n.ClusterPath)+1)
	path = append(path, n.ClusterPath...)
	return append(path, n.Cluster)
}

// ImageSize reads the optional width/height query parameters (in pixels) of the image URL.
// ok is false when the node has no image or the URL carries neither dimension.
func (n *Node) ImageSize() (width, height int, ok bool) {
	if n.Image == "" {
		return 0, 0, false
	}
	u, err := url.Parse(n.Image)
	if err != nil {
		return 0, 0, false
	}
	q := u.Query()
	width, _ = strconv.Atoi(q.Get("width"))
	height, _ = strconv.Atoi(q.Get("height"))
	if width <= 0 && height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}
