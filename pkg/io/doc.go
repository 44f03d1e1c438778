// Package io provides JSON import and export for component dependency
// graphs.
//
// The format has two top-level arrays. Node ids are component names and
// meta carries whatever the graph recorded, such as the component id and
// type key:
//
//	{
//	  "meta": {"design": "demo"},
//	  "nodes": [
//	    {"id": "launch", "meta": {"id": 1, "type": "qmetal.library.OpenToGround"}},
//	    {"id": "feed", "meta": {"id": 3, "type": "qmetal.library.RouteStraight"}}
//	  ],
//	  "edges": [
//	    {"from": "launch", "to": "feed"}
//	  ]
//	}
//
// Nodes and edges are written in sorted order so exports of the same design
// are byte-identical. JSON numbers in meta decode as float64.
package io
