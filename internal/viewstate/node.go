package viewstate

// Type tags of the ViewState object serialization format.
const (
	TagUnsignedInt          byte = 0x02
	TagBooleanContainer     byte = 0x03
	TagString               byte = 0x05
	TagRGBAColor            byte = 0x09
	TagNullTerminatedString byte = 0x0B
	TagPair                 byte = 0x0F
	TagTriple               byte = 0x10
	TagStringArray          byte = 0x15
	TagObjectContainer      byte = 0x16
	TagControlState         byte = 0x18
	TagUnit                 byte = 0x1B
	TagIndexedString        byte = 0x1E
	TagStringReference      byte = 0x1F
	TagUUID                 byte = 0x24
	TagEmptyNode            byte = 0x64
	TagEmptyString          byte = 0x65
	TagZero                 byte = 0x66
	TagTrue                 byte = 0x67
	TagFalse                byte = 0x68
)

// Node is a single decoded ViewState object. The set of implementations is
// closed: one type per tag family.
type Node interface {
	// Tag returns the type tag the node is serialized with.
	Tag() byte

	writeXML(w *xmlWriter)
	appendTo(b []byte) ([]byte, error)
}

type UnsignedInt struct {
	Value uint64
}

// LengthPrefixedString is a string preceded by its var-uint byte length.
// Indexed strings (tag 0x1E) are also added to the format's string table.
type LengthPrefixedString struct {
	Value   string
	Indexed bool
}

type NullTerminatedString struct {
	Value string
}

type Pair struct {
	First, Second Node
}

type Triple struct {
	First, Second, Third Node
}

// StringArray holds strings whose lengths are single bytes on the wire.
type StringArray struct {
	Values []string
}

type ObjectContainer struct {
	Items []Node
}

type BooleanContainer struct {
	Items []Node
}

type RGBAColor struct {
	Raw []byte
}

type Unit struct {
	Raw []byte
}

// StringReference is an index into the string table built from indexed
// strings. The table is not resolved.
type StringReference struct {
	Index uint64
}

// ControlState carries a declared size followed by exactly two objects.
type ControlState struct {
	Size          uint64
	First, Second Node
}

type UUID struct {
	Raw []byte
}

type EmptyNode struct{}

type EmptyString struct{}

type Zero struct{}

type True struct{}

type False struct{}

func (UnsignedInt) Tag() byte { return TagUnsignedInt }

func (s LengthPrefixedString) Tag() byte {
	if s.Indexed {
		return TagIndexedString
	}
	return TagString
}

func (NullTerminatedString) Tag() byte { return TagNullTerminatedString }
func (Pair) Tag() byte                 { return TagPair }
func (Triple) Tag() byte               { return TagTriple }
func (StringArray) Tag() byte          { return TagStringArray }
func (ObjectContainer) Tag() byte      { return TagObjectContainer }
func (BooleanContainer) Tag() byte     { return TagBooleanContainer }
func (RGBAColor) Tag() byte            { return TagRGBAColor }
func (Unit) Tag() byte                 { return TagUnit }
func (StringReference) Tag() byte      { return TagStringReference }
func (ControlState) Tag() byte         { return TagControlState }
func (UUID) Tag() byte                 { return TagUUID }
func (EmptyNode) Tag() byte            { return TagEmptyNode }
func (EmptyString) Tag() byte          { return TagEmptyString }
func (Zero) Tag() byte                 { return TagZero }
func (True) Tag() byte                 { return TagTrue }
func (False) Tag() byte                { return TagFalse }

// Walk calls fn for n and each of its descendants in depth-first order.
// Children are skipped when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range children(n) {
		Walk(child, fn)
	}
}

func children(n Node) []Node {
	switch v := n.(type) {
	case Pair:
		return []Node{v.First, v.Second}
	case Triple:
		return []Node{v.First, v.Second, v.Third}
	case ControlState:
		return []Node{v.First, v.Second}
	case ObjectContainer:
		return v.Items
	case BooleanContainer:
		return v.Items
	default:
		return nil
	}
}

// Strings returns every string payload in the tree rooted at n, in document order.
func Strings(n Node) []string {
	var out []string
	Walk(n, func(n Node) bool {
		switch v := n.(type) {
		case LengthPrefixedString:
			out = append(out, v.Value)
		case NullTerminatedString:
			out = append(out, v.Value)
		case StringArray:
			out = append(out, v.Values...)
		}
		return true
	})
	return out
}
