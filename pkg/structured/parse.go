package structured

import (
	"context"
	"encoding/json"
	"math"
	"reflect"

	"github.com/pkg/errors"

	"github.com/integrail/pets-cli/pkg/llm"
	"github.com/integrail/pets-cli/pkg/log"
)

var (
	ErrMalformed = errors.New("response is not valid json")
	ErrSchema    = errors.New("response does not match schema")
	ErrDecode    = errors.New("response does not fit go type")
)

// Parse validates text against the schema of T and decodes it.
// Fields unknown to T are ignored.
func Parse[T any](text string) (*T, error) {
	schema, err := schemaFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal([]byte(text), &instance); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%v", err)
	}
	if err := schema.validator.Validate(instance); err != nil {
		return nil, errors.Wrapf(ErrSchema, "%v", err)
	}
	normalized, err := json.Marshal(wholeNumbers(instance))
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	var out T
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	return &out, nil
}

// wholeNumbers turns integral floats such as 5.0 into int64 so they decode into
// Go integer fields. Values outside the int64 range are left as floats.
func wholeNumbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = wholeNumbers(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = wholeNumbers(e)
		}
		return v
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v)
		}
		return v
	default:
		return v
	}
}

// Generate asks client for a reply constrained to the schema of T and parses it.
func Generate[T any](ctx context.Context, client llm.Client, request llm.ChatRequest) (*T, *llm.ChatResponse, error) {
	format, err := Schema[T]()
	if err != nil {
		return nil, nil, err
	}
	request.Format = format
	res, err := client.Chat(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	log.Debug(ctx, "model replied", "model", res.Model, "content", res.Content)
	if res.DoneReason == "length" {
		log.Warn(ctx, "reply hit the token limit and may be truncated", "model", res.Model)
	}
	out, err := Parse[T](res.Content)
	if err != nil {
		return nil, res, errors.Wrapf(err, "failed to parse reply of model %q", res.Model)
	}
	return out, res, nil
}
