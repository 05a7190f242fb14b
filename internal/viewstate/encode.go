package viewstate

import (
	"errors"
	"fmt"
	"math"
)

// Encode serializes root, preceded by Preamble and followed by mac, so that
// Decode(Encode(root, mac)) reproduces root. A nil or empty mac produces
// ViewState without integrity protection.
func Encode(root Node, mac []byte) ([]byte, error) {
	b, err := appendNodes(append([]byte{}, Preamble[:]...), root)
	if err != nil {
		return nil, err
	}
	return append(b, mac...), nil
}

func appendVarUint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendNodes(b []byte, nodes ...Node) ([]byte, error) {
	var err error
	for _, n := range nodes {
		if n == nil {
			return nil, errors.New("nil object")
		}
		if b, err = n.appendTo(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func appendFixed(b []byte, tag byte, raw []byte) ([]byte, error) {
	if want := fixedWidthDecoders[tag].width; len(raw) != want {
		return nil, fmt.Errorf("object type 0x%02x needs %d bytes, got %d", tag, want, len(raw))
	}
	return append(append(b, tag), raw...), nil
}

func (n UnsignedInt) appendTo(b []byte) ([]byte, error) {
	return appendVarUint(append(b, TagUnsignedInt), n.Value), nil
}

func (n LengthPrefixedString) appendTo(b []byte) ([]byte, error) {
	b = appendVarUint(append(b, n.Tag()), uint64(len(n.Value)))
	return append(b, n.Value...), nil
}

func (n NullTerminatedString) appendTo(b []byte) ([]byte, error) {
	b = append(append(b, TagNullTerminatedString), n.Value...)
	return append(b, 0x00), nil
}

func (n Pair) appendTo(b []byte) ([]byte, error) {
	return appendNodes(append(b, TagPair), n.First, n.Second)
}

func (n Triple) appendTo(b []byte) ([]byte, error) {
	return appendNodes(append(b, TagTriple), n.First, n.Second, n.Third)
}

func (n StringArray) appendTo(b []byte) ([]byte, error) {
	b = appendVarUint(append(b, TagStringArray), uint64(len(n.Values)))
	for _, v := range n.Values {
		if len(v) > math.MaxUint8 {
			return nil, fmt.Errorf("string array element of %d bytes exceeds %d", len(v), math.MaxUint8)
		}
		b = append(append(b, byte(len(v))), v...)
	}
	return b, nil
}

func (n ObjectContainer) appendTo(b []byte) ([]byte, error) {
	b = appendVarUint(append(b, TagObjectContainer), uint64(len(n.Items)))
	return appendNodes(b, n.Items...)
}

func (n BooleanContainer) appendTo(b []byte) ([]byte, error) {
	b = appendVarUint(append(b, TagBooleanContainer), uint64(len(n.Items)))
	return appendNodes(b, n.Items...)
}

func (n RGBAColor) appendTo(b []byte) ([]byte, error) {
	return appendFixed(b, TagRGBAColor, n.Raw)
}

func (n Unit) appendTo(b []byte) ([]byte, error) {
	return appendFixed(b, TagUnit, n.Raw)
}

func (n UUID) appendTo(b []byte) ([]byte, error) {
	return appendFixed(b, TagUUID, n.Raw)
}

func (n StringReference) appendTo(b []byte) ([]byte, error) {
	return appendVarUint(append(b, TagStringReference), n.Index), nil
}

func (n ControlState) appendTo(b []byte) ([]byte, error) {
	b = appendVarUint(append(b, TagControlState), n.Size)
	return appendNodes(b, n.First, n.Second)
}

func (n EmptyNode) appendTo(b []byte) ([]byte, error)   { return append(b, n.Tag()), nil }
func (n EmptyString) appendTo(b []byte) ([]byte, error) { return append(b, n.Tag()), nil }
func (n Zero) appendTo(b []byte) ([]byte, error)        { return append(b, n.Tag()), nil }
func (n True) appendTo(b []byte) ([]byte, error)        { return append(b, n.Tag()), nil }
func (n False) appendTo(b []byte) ([]byte, error)       { return append(b, n.Tag()), nil }
