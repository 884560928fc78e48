/*
Package domain contains the in-memory diagram model produced by the mdgraph parser.

It defines the entities a diagram document describes, such as Nodes, Relations and the
Diagram aggregate that owns them, plus the Cluster Tree derived from node cluster paths.
This package is kept pure and free of I/O so that every consumer (DOT writer, Mermaid
writer, HTTP and MCP adapters) works from the same values.

# Key Entities

  - Node: One diagram entity with variables, functions, styling and cluster membership.
  - Relation: A directed, labeled edge between two node keys.
  - Diagram: Ordered node set keyed by node key, ordered relations and stylesheet references.
  - ClusterTree: Arena of nested groups built from the node cluster paths.
*/
package domain
