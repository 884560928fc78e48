package domain

// Rendering defaults applied when a node block does not override them.
const (
	// DefaultShape is the shape assigned to every node at creation.
	DefaultShape = "record"
	// DefaultFillColor is used when a node declares no COLOR option.
	DefaultFillColor = "lightblue"
)

// Direction keywords accepted in a relation section.
const (
	DirectionTo   = "TO"
	DirectionFrom = "FROM"
	DirectionBi   = "BI"
)
