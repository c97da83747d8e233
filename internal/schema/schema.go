// Package schema exports the JSON Schema (draft 2020-12) of a memory map
// document and validates instances against it.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/memmap/internal/memmap"
	"github.com/google/jsonschema-go/jsonschema"
)

const Draft = "https://json-schema.org/draft/2020-12/schema"

var ErrInvalid = errors.New("schema: document does not match the memory map schema")

func ref(name string) *jsonschema.Schema {
	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}

func ptr[T any](v T) *T { return &v }

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Required: required, Properties: props}
}

// tagged is a single-key object {tag: body}.
func tagged(tag string, body *jsonschema.Schema) *jsonschema.Schema {
	s := object([]string{tag}, map[string]*jsonschema.Schema{tag: body})
	s.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	return s
}

func uintSchema(maximum float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Minimum: ptr(0.0), Maximum: ptr(maximum)}
}

func fieldProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"name":    {Type: "string", Description: "Identifier used in diagnostics."},
		"address": {Ref: "#/$defs/hexOrUnsigned", Description: "Explicit start address; assigned by elaboration when absent."},
		"access":  {Ref: "#/$defs/access", Description: "Access permission; inherited when absent."},
		"type":    ref("fieldType"),
		"contains": {
			Description: "Children of a set field.",
			AnyOf: []*jsonschema.Schema{
				ref("field"),
				{Type: "array", Items: ref("field")},
			},
		},
		"value": ref("value"),
		"unit":  {Type: "string"},
		"min":   {Type: "number"},
		"max":   {Type: "number"},
		"range": {Type: "string", ReadOnly: true, Description: "Rendered by elaboration."},
	}
}

// For builds the schema of a whole document: the protocol table plus the
// root field's keys.
func For() *jsonschema.Schema {
	props := fieldProperties()
	props["protocol"] = ref("protocol")
	root := object([]string{"protocol", "name", "type"}, props)
	root.Schema = Draft
	root.Title = "MemoryMap"
	root.Defs = map[string]*jsonschema.Schema{
		"hexOrUnsigned": {
			AnyOf: []*jsonschema.Schema{
				{Type: "integer", Minimum: ptr(0.0)},
				{Type: "string", Pattern: "^0x[0-9A-Fa-f_]*[0-9A-Fa-f][0-9A-Fa-f_]*$"},
			},
		},
		"access": {Type: "string", Enum: []any{"r", "w", "rw"}},
		"protocol": object([]string{"addressMax", "dataMin"}, map[string]*jsonschema.Schema{
			"name":       {Type: "string"},
			"addressMax": ref("hexOrUnsigned"),
			"dataMin":    uintSchema(255),
		}),
		"fixed": object([]string{"high", "low"}, map[string]*jsonschema.Schema{
			"high": {Type: "integer"},
			"low":  {Type: "integer"},
		}),
		"fieldType": {
			OneOf: []*jsonschema.Schema{
				{Type: "string", Enum: []any{"set"}},
				tagged("string", &jsonschema.Schema{Type: "integer", Minimum: ptr(0.0)}),
				tagged("unsigned", uintSchema(4294967295)),
				tagged("signed", uintSchema(4294967295)),
				tagged("ufixed", ref("fixed")),
				tagged("sfixed", ref("fixed")),
				tagged("enum", object([]string{"length", "map"}, map[string]*jsonschema.Schema{
					"length": uintSchema(4294967295),
					"map":    {Type: "object", AdditionalProperties: uintSchema(4294967295)},
				})),
				tagged("bitfield", object([]string{"length", "bits"}, map[string]*jsonschema.Schema{
					"length": uintSchema(4294967295),
					"bits": {AnyOf: []*jsonschema.Schema{
						{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						{Type: "object", AdditionalProperties: uintSchema(4294967295)},
					}},
				})),
			},
		},
		"value": {Types: []string{"string", "number"}},
		"field": object([]string{"name", "type"}, fieldProperties()),
	}
	return root
}

// JSON renders the document schema.
func JSON() ([]byte, error) {
	return json.MarshalIndent(For(), "", "  ")
}

var (
	resolveOnce sync.Once
	resolved    *jsonschema.Resolved
	resolveErr  error
)

func compiled() (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = For().Resolve(nil)
	})
	return resolved, resolveErr
}

// Validate checks a decoded JSON instance (maps, slices, float64, string)
// against the document schema.
func Validate(instance any) error {
	rs, err := compiled()
	if err != nil {
		return fmt.Errorf("schema: resolve failed: %w", err)
	}
	if err := rs.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func ValidateJSON(data []byte) error {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Validate(instance)
}

// ValidateDocument validates a decoded document through its JSON form so
// TOML and JSON inputs are checked the same way.
func ValidateDocument(doc *memmap.Document) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	return ValidateJSON(data)
}
