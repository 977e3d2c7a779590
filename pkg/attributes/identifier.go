// Package attributes holds opaque attribute values shared by the
// feature model, currently feature identifiers.
package attributes

import "strconv"

type identifierKind uint8

const (
	identifierNone identifierKind = iota
	identifierInt
	identifierString
)

// Identifier is an opaque feature identifier built from either an
// integer or a string. The zero value means "no identifier".
type Identifier struct {
	str  string
	num  int64
	kind identifierKind
}

func NewIntIdentifier(v int64) Identifier {
	return Identifier{num: v, kind: identifierInt}
}

func NewStringIdentifier(s string) Identifier {
	return Identifier{str: s, kind: identifierString}
}

// IsZero reports whether the identifier is absent.
func (id Identifier) IsZero() bool {
	return id.kind == identifierNone
}

// Int64 returns the integer value when the identifier was built from an
// integer.
func (id Identifier) Int64() (int64, bool) {
	return id.num, id.kind == identifierInt
}

// String returns the identifier in string form; integer identifiers are
// formatted in base 10. An absent identifier formats as the empty
// string.
func (id Identifier) String() string {
	if id.kind == identifierInt {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

func (id Identifier) Equals(other Identifier) bool {
	return id == other
}
