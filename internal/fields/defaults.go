package fields

import (
	"embed"
	"fmt"
)

//go:embed schemas/defaults.json
var defaultsFS embed.FS

// Default returns the built-in invoice schema. It covers the common
// commercial/sales-tax invoice fields and ships with three presets.
func Default() *Schema {
	raw, err := defaultsFS.ReadFile("schemas/defaults.json")
	if err != nil {
		panic(fmt.Sprintf("embedded default schema missing: %v", err))
	}
	s, err := Decode(raw)
	if err != nil {
		panic(fmt.Sprintf("embedded default schema invalid: %v", err))
	}
	return s
}
