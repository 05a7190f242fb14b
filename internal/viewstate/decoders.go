package viewstate

// Leaf objects that need no recursion are decoded from these tables. Composite
// objects are handled by decoder.decodeObject.

type fixedWidthDecoder struct {
	width int
	build func(raw []byte) Node
}

// fixedWidthDecoders maps tags to objects made of a fixed number of raw bytes.
var fixedWidthDecoders = map[byte]fixedWidthDecoder{
	TagRGBAColor: {width: 4, build: func(raw []byte) Node { return RGBAColor{Raw: raw} }},
	TagUnit:      {width: 12, build: func(raw []byte) Node { return Unit{Raw: raw} }},
	TagUUID:      {width: 36, build: func(raw []byte) Node { return UUID{Raw: raw} }},
}

// varUintDecoders maps tags to objects carrying a single var-uint.
var varUintDecoders = map[byte]func(v uint64) Node{
	TagUnsignedInt:     func(v uint64) Node { return UnsignedInt{Value: v} },
	TagStringReference: func(v uint64) Node { return StringReference{Index: v} },
}

// markerNodes maps tags to objects with no payload at all.
var markerNodes = map[byte]Node{
	TagEmptyNode:   EmptyNode{},
	TagEmptyString: EmptyString{},
	TagZero:        Zero{},
	TagTrue:        True{},
	TagFalse:       False{},
}

// decodeLeaf decodes tag using the leaf tables. ok is false if tag is not a leaf tag.
func decodeLeaf(c *Cursor, tag byte) (n Node, ok bool, err error) {
	if m, found := markerNodes[tag]; found {
		return m, true, nil
	}
	if build, found := varUintDecoders[tag]; found {
		v, err := c.ReadVarUint()
		if err != nil {
			return nil, true, err
		}
		return build(v), true, nil
	}
	if d, found := fixedWidthDecoders[tag]; found {
		raw, err := c.ReadBytes(d.width)
		if err != nil {
			return nil, true, err
		}
		return d.build(raw), true, nil
	}
	return nil, false, nil
}
