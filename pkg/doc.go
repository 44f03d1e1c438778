// Package pkg provides the core libraries of qmetal, a registration core for
// chip component geometry.
//
// # Overview
//
// A [design] owns everything shared by its components: the id counter, the
// name index, the template cache, the expression parser and the geometry
// tables. A [component] is registered into a design, resolves its options
// through its type's ancestry and builds geometry by calling its variant's
// Make hook. The directory is organized as:
//
//  1. [design], [component] - Lifecycle: registration, templates, rebuild, delete
//  2. [options], [parse] - Option mappings, type registry, value parsing
//  3. [geometry], [qgeometry] - Shapes and the per-kind element tables
//  4. [dag], [io] - Component dependency graph and its DOT/SVG/JSON export
//  5. [library], [config] - Built-in variants and TOML design files
//  6. [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
// The typical data flow when a design file is loaded:
//
//	design.toml
//	     ↓
//	[config] package (decode, validate)
//	     ↓
//	[design] package (variables, units, registry)
//	     ↓
//	[component] package (template + overrides, Make)
//	     ↓
//	[qgeometry] tables and pins
//
// # Quick Start
//
//	d, _ := design.New(design.WithTypes(library.Catalog()), design.WithUnits("um"))
//	v, _ := library.New("Rectangle")
//	c, err := component.New(d, "pad", v, component.WithOptions(options.Options{
//	    "width": "200um",
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.ElementsTable(qgeometry.KindPoly)[0].Geometry.Bounds())
//
// [design]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/design
// [component]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/component
// [options]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/options
// [parse]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/parse
// [geometry]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/geometry
// [qgeometry]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/qgeometry
// [dag]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/dag
// [io]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/io
// [library]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/library
// [config]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/qmetal/pkg/buildinfo
package pkg
