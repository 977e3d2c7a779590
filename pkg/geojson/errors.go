package geojson

import "fmt"

// DecodeError is returned when the input is neither valid JSON text nor
// an already-parsed value of the expected shape. It wraps the
// underlying cause when one exists.
type DecodeError struct {
	Reason string
	Err    error
}

func (e DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geojson: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("geojson: %s", e.Reason)
}

func (e DecodeError) Unwrap() error { return e.Err }

// UnknownGeometryTypeError is returned when the type discriminator is
// absent or not one of the seven geometry kinds.
type UnknownGeometryTypeError struct {
	Type string
}

func (e UnknownGeometryTypeError) Error() string {
	if e.Type == "" {
		return "geojson: geometry object carries no type"
	}
	return fmt.Sprintf("geojson: unknown geometry type %q", e.Type)
}

// TypeMismatchError is returned when a decoded geometry does not match
// the statically requested target kind.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("geojson: expected geometry of type %q, got %q", e.Expected, e.Got)
}

// SchemaError is returned when a required member of a Feature or
// FeatureCollection object is missing or malformed.
type SchemaError struct {
	Member string
	Reason string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("geojson: member %q: %s", e.Member, e.Reason)
}
