// Package schema infers the structure of definition types from the
// elements observed during a build.
package schema

import "fmt"

// Kind is the inferred shape of a member. Kinds are ordered and a
// member's recorded kind only ever moves up that order.
type Kind int

const (
	Scalar Kind = iota
	List
	Map
	Class
)

var kindNames = [...]string{"Scalar", "List", "Map", "Class"}

func (k Kind) String() string {
	if k < Scalar || k > Class {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < Scalar || k > Class {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return Scalar, fmt.Errorf("unknown kind %q", s)
}
