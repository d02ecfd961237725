package tree

import "fmt"

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindOr Kind = iota
	KindAnd
	KindSeq
	KindThreat
	KindMeasure
)

var kindNames = [...]string{
	KindOr:      "or",
	KindAnd:     "and",
	KindSeq:     "seq",
	KindThreat:  "threat",
	KindMeasure: "measure",
}

// String returns the lowercase model-file name of the kind
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// IsGroup reports whether the kind combines children without an intrinsic probability
func (k Kind) IsGroup() bool {
	switch k {
	case KindOr, KindAnd, KindSeq:
		return true
	default:
		return false
	}
}

// ParseKind converts a model-file name to a Kind
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
