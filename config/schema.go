package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// platformSchema is the JSON Schema every configuration layer must
// satisfy. It constrains field types and enums but requires nothing,
// since layers may be partial; Config.Validate enforces the required
// fields on the merged result.
//
//go:embed platform_schema.json
var platformSchema []byte

// validateFileSchema checks one raw configuration layer against the
// embedded schema before it is decoded. A failing file reports every
// violation, not just the first.
func validateFileSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(platformSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var b strings.Builder
	b.WriteString("config file does not match schema:")
	for _, violation := range result.Errors() {
		fmt.Fprintf(&b, "\n  %s: %s", violation.Field(), violation.Description())
	}
	return fmt.Errorf("%s", b.String())
}
