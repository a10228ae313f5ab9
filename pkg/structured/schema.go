// Package structured derives JSON schemas from Go types, asks a model for a reply
// constrained by them and validates the reply back into the type.
package structured

import (
	"encoding/json"
	"reflect"
	"slices"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

type compiledSchema struct {
	raw       json.RawMessage
	validator *validator
}

var schemaCache sync.Map // reflect.Type -> *compiledSchema

// Schema returns the JSON schema sent to the model for T.
// Fields tagged `jsonschema:"required"` are required, the others are optional.
func Schema[T any]() (json.RawMessage, error) {
	s, err := schemaFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return s.raw, nil
}

func schemaFor(t reflect.Type) (*compiledSchema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*compiledSchema), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema type must be a struct, got %s", t)
	}

	// only fields tagged `jsonschema:"required"` are required, so optional
	// pointers keep their null in encoded output
	reflector := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.ReflectFromType(t)
	if schema == nil {
		return nil, errors.Errorf("schema reflection returned nil for %s", t)
	}
	allowNulls(schema)

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal schema for %s", t)
	}
	v, err := newValidator(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile schema for %s", t)
	}
	compiled := &compiledSchema{raw: raw, validator: v}
	actual, _ := schemaCache.LoadOrStore(t, compiled)
	return actual.(*compiledSchema), nil
}

// allowNulls lets optional properties carry an explicit null as well as being absent.
func allowNulls(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	allowNulls(s.Items)
	if s.Properties == nil {
		return
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		allowNulls(prop)
		if slices.Contains(s.Required, pair.Key) || prop.Type == "" || prop.Type == "null" {
			continue
		}
		prop.AnyOf = []*jsonschema.Schema{{Type: prop.Type}, {Type: "null"}}
		prop.Type = ""
	}
}
