// Package dag provides the directed graph that records dependencies between
// the components of a design.
//
// # Overview
//
// An edge parent → child means the child's geometry is derived from the
// parent (a route attached to a qubit's pin, for example). When the parent
// is rebuilt the child must follow, so whole-design rebuilds walk the graph
// in [DAG.TopoSort] order.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode] or
// [DAG.EnsureNode], and edges with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "Q1"})
//	g.AddNode(dag.Node{ID: "R1"})
//	g.AddEdge(dag.Edge{From: "Q1", To: "R1"})
//
// Query the structure with [DAG.Children], [DAG.Parents] and
// [DAG.Descendants]. Renaming a component maps to [DAG.RenameNode], which
// rewrites every edge.
//
// # Rendering
//
// [ToDOT] emits Graphviz DOT text and [RenderSVG] turns it into SVG through
// the embedded Graphviz library.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The design container
// guards its graph with its own mutex.
package dag
