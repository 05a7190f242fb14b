// Package viewstate decodes unencrypted ASP.NET ViewState data into a tree of
// objects and detects whether the data is protected by a trailing MAC.
//
// No attempt is made to decrypt ViewState data; encrypted ViewState fails to
// decode with ErrInvalidPreamble.
package viewstate

import (
	"errors"
	"fmt"
)

// MaxDepth limits how deeply objects may nest before decoding is abandoned.
const MaxDepth = 256

// Preamble is the two byte header of serialized ViewState data.
var Preamble = [2]byte{0xFF, 0x01}

var (
	ErrInvalidPreamble = errors.New("invalid ViewState preamble")
	ErrUnsupportedTag  = errors.New("unsupported object type")
	ErrTooDeep         = errors.New("object nesting too deep")
)

// UnsupportedTagError records a type tag the decoder does not know about.
// It matches ErrUnsupportedTag with errors.Is.
type UnsupportedTagError struct {
	Tag    byte
	Offset int
}

func (e *UnsupportedTagError) Error() string {
	return fmt.Sprintf("%v 0x%02x at offset %d", ErrUnsupportedTag, e.Tag, e.Offset)
}

func (e *UnsupportedTagError) Is(target error) bool {
	return target == ErrUnsupportedTag
}

// Result is a successfully decoded ViewState.
type Result struct {
	Root Node

	// MAC holds any bytes left over after the root object. It is nil when the
	// ViewState is not integrity protected.
	MAC []byte
}

// HasMAC reports whether the ViewState carries a MAC.
func (r *Result) HasMAC() bool {
	return len(r.MAC) > 0
}

// MACLength returns the length of the MAC in bytes.
func (r *Result) MACLength() int {
	return len(r.MAC)
}

// MACAlgorithm returns the name of the algorithm the MAC length corresponds
// to, or "" if there is no MAC.
func (r *Result) MACAlgorithm() string {
	return MACAlgorithmName(len(r.MAC))
}

/*
Decode parses data as serialized ViewState.

The first two bytes must equal Preamble, otherwise ErrInvalidPreamble is
returned regardless of the rest of the data. A single root object is then
decoded; any bytes left over afterwards are taken to be the MAC.

Errors wrapping ErrOutOfData, ErrVarUintOverflow, ErrUnsupportedTag or
ErrTooDeep mean the data has a ViewState preamble but is not decodable.
*/
func Decode(data []byte) (*Result, error) {
	c := NewCursor(data)
	p, err := c.ReadBytes(len(Preamble))
	if err != nil || p[0] != Preamble[0] || p[1] != Preamble[1] {
		return nil, ErrInvalidPreamble
	}

	d := decoder{c: c}
	root, err := d.decodeObject()
	if err != nil {
		return nil, err
	}

	r := &Result{Root: root}
	if c.Remaining() > 0 {
		r.MAC, _ = c.ReadBytes(c.Remaining())
	}
	return r, nil
}

type decoder struct {
	c     *Cursor
	depth int
}

func (d *decoder) decodeObject() (Node, error) {
	offset := d.c.Offset()
	tag, err := d.c.ReadByte()
	if err != nil {
		return nil, err
	}

	if n, ok, err := decodeLeaf(d.c, tag); ok {
		return n, err
	}

	switch tag {
	case TagString, TagIndexedString:
		size, err := d.readCount()
		if err != nil {
			return nil, err
		}
		b, err := d.c.ReadBytes(size)
		if err != nil {
			return nil, err
		}
		return LengthPrefixedString{Value: string(b), Indexed: tag == TagIndexedString}, nil

	case TagNullTerminatedString:
		return NullTerminatedString{Value: d.c.ReadNullTerminatedString()}, nil

	case TagStringArray:
		count, err := d.readCount()
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, count)
		for i := 0; i < count; i++ {
			length, err := d.c.ReadByte()
			if err != nil {
				return nil, err
			}
			b, err := d.c.ReadBytes(int(length))
			if err != nil {
				return nil, err
			}
			values = append(values, string(b))
		}
		return StringArray{Values: values}, nil

	case TagPair:
		items, err := d.decodeChildren(2)
		if err != nil {
			return nil, err
		}
		return Pair{First: items[0], Second: items[1]}, nil

	case TagTriple:
		items, err := d.decodeChildren(3)
		if err != nil {
			return nil, err
		}
		return Triple{First: items[0], Second: items[1], Third: items[2]}, nil

	case TagObjectContainer, TagBooleanContainer:
		count, err := d.readCount()
		if err != nil {
			return nil, err
		}
		items, err := d.decodeChildren(count)
		if err != nil {
			return nil, err
		}
		if tag == TagBooleanContainer {
			return BooleanContainer{Items: items}, nil
		}
		return ObjectContainer{Items: items}, nil

	case TagControlState:
		// The declared size is informational; control state is always two objects.
		size, err := d.c.ReadVarUint()
		if err != nil {
			return nil, err
		}
		items, err := d.decodeChildren(2)
		if err != nil {
			return nil, err
		}
		return ControlState{Size: size, First: items[0], Second: items[1]}, nil

	default:
		return nil, &UnsupportedTagError{Tag: tag, Offset: offset}
	}
}

// decodeChildren decodes n consecutive objects one nesting level down.
func (d *decoder) decodeChildren(n int) ([]Node, error) {
	if d.depth >= MaxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
	}
	d.depth++
	defer func() { d.depth-- }()

	items := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		obj, err := d.decodeObject()
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

// readCount reads a var-uint element count or byte length. Every element takes
// at least one byte, so counts larger than the remaining data are rejected
// before anything is allocated.
func (d *decoder) readCount() (int, error) {
	v, err := d.c.ReadVarUint()
	if err != nil {
		return 0, err
	}
	if v > uint64(d.c.Remaining()) {
		return 0, fmt.Errorf("%w: count %d exceeds %d remaining bytes", ErrOutOfData, v, d.c.Remaining())
	}
	return int(v), nil
}
