package structured

import (
	"encoding/json"

	jsv "github.com/google/jsonschema-go/jsonschema"
	"github.com/pkg/errors"
)

type validator struct {
	resolved *jsv.Resolved
}

func newValidator(raw json.RawMessage) (*validator, error) {
	var schema jsv.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, errors.Wrapf(err, "failed to read schema")
	}
	resolved, err := schema.Resolve(&jsv.ResolveOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve schema")
	}
	return &validator{resolved: resolved}, nil
}

// Validate checks a decoded JSON instance (maps, slices, float64...) against the schema.
func (v *validator) Validate(instance any) error {
	return v.resolved.Validate(instance)
}
