// Package render turns DOT documents into final artifacts.
//
// Graphviz is the layout backend. The package also post-processes SVG output
// (stylesheet injection), localizes remote node images so graphviz can embed them,
// and caches rendered bytes behind a pluggable Store.
package render
