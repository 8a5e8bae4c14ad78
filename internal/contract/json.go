package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-ats/internal/schemas"
)

// Shape is the expected top-level JSON type of a reply
type Shape byte

// Supported shapes
const (
	Object Shape = '{'
	Array  Shape = '['
)

type jsonContract[T any] struct {
	name   string
	shape  Shape
	schema *schemas.Schema
}

// JSON builds a contract that decodes an embedded JSON value of the given shape into T.
// The schema (an embedded contract schema name) fixes the top-level type and required keys;
// field values are not checked beyond their JSON types.
func JSON[T any](name string, shape Shape, schemaName string) Contract[T] {
	return &jsonContract[T]{
		name:   name,
		shape:  shape,
		schema: schemas.MustLoad(schemaName),
	}
}

func (c *jsonContract[T]) Name() string {
	return c.name
}

func (c *jsonContract[T]) Parse(raw string) Result[T] {
	text := StripFences(raw)
	if text == "" {
		return Fail[T](c.name, "empty reply", raw)
	}

	candidate := text
	if !json.Valid([]byte(candidate)) || !strings.HasPrefix(candidate, string(c.shape)) {
		isolated, ok := IsolateJSON(text, byte(c.shape))
		if !ok {
			return Fail[T](c.name, fmt.Sprintf("no JSON %s found in reply", c.shape), raw)
		}
		candidate = isolated
	}

	if err := c.schema.Validate([]byte(candidate)); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return Fail[T](c.name, "shape mismatch: "+validationErr.First(), raw)
		}
		return Fail[T](c.name, err.Error(), raw)
	}

	var value T
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	if err := dec.Decode(&value); err != nil {
		return Fail[T](c.name, "decode: "+err.Error(), raw)
	}

	return Ok(value)
}

func (s Shape) String() string {
	if s == Array {
		return "array"
	}
	return "object"
}
