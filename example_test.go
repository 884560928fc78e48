package mdgraph_test

import (
	"fmt"
	"log"

	"github.com/aretw0/mdgraph"
)

// ExampleEngine_Mermaid shows the export path that does not need graphviz.
func ExampleEngine_Mermaid() {
	eng := mdgraph.New()

	d, err := eng.Parse(`# {Client} [client]
## F_RELA
- TO [api] {requests}
## END F_RELA

# {API} [api]
### OPT SHAPE ellipse
`)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(eng.Mermaid(d))
	// Output:
	// flowchart LR
	//     client["Client"]
	//     api(["API"])
	//     client -->|"requests"| api
}
