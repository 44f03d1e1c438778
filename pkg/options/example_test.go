package options_test

import (
	"fmt"

	"github.com/matzehuels/qmetal/pkg/options"
)

func ExampleRegistry_Resolve() {
	reg := options.NewRegistry()
	reg.MustRegister(
		options.Type{Key: "lib.Component", Root: true},
		options.Type{Key: "lib.Rect", Parent: "lib.Component",
			Defaults: options.Options{"width": "500um", "height": "300um"}},
		options.Type{Key: "lib.Square", Parent: "lib.Rect",
			Defaults: options.Options{"height": "500um"}},
	)

	chain, _ := reg.Ancestry("lib.Square")
	opts, _ := reg.Resolve("lib.Square")

	fmt.Println("Ancestry:", chain)
	for _, k := range opts.Keys() {
		fmt.Printf("%s = %v\n", k, opts[k])
	}
	// Output:
	// Ancestry: [lib.Component lib.Rect lib.Square]
	// height = 500um
	// width = 500um
}
