/*
Package mdgraph turns a lightweight Markdown-like notation into class-diagram style graphs.

A document is a sequence of blocks. Each block declares one node with a "# {Name} [key]"
header, optional "### OPT" lines (color, image, shape, CSS class, description, cluster)
and optional VAR, FUNC and F_RELA sections. Relations point at other nodes by key and
may carry a label and edge attributes.

# Concept

Parsing produces a domain.Diagram: an ordered set of nodes and a list of relations.
The diagram is serialized to Graphviz DOT (record nodes, nested clusters, images) or to
a Mermaid flowchart, and rendered to SVG, PNG or PDF through the graphviz "dot" binary.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/mdgraph"
	)

	func main() {
		eng := mdgraph.New(mdgraph.WithLayout("TB", 0, 0))

		svg, err := eng.RenderFile(context.Background(), "services.md", "svg")
		if err != nil {
			log.Fatal(err)
		}
		_ = os.WriteFile("services.svg", svg, 0o644)
	}

# Notation

	# {UserService} [svc_user]
	### OPT COLOR FF00FF
	### OPT CLUSTER Backend>Services [style=filled bgcolor=EEEEEE]
	## VAR
	- id: int
	## END VAR
	## FUNC
	- create()
	## END FUNC
	## F_RELA
	- TO [svc_auth] {calls} style=dashed
	## END F_RELA

Parsing is permissive by default: malformed lines are skipped and reported at debug
level. WithStrict turns the collected diagnostics into an error.
*/
package mdgraph
