package viewstate

import (
	"errors"
	"reflect"
	"testing"
)

func TestReadVarUint(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint64
		rest  int
	}{
		{"zero", []byte{0x00}, 0, 0},
		{"one byte max", []byte{0x7F}, 127, 0},
		{"300", []byte{0xAC, 0x02}, 300, 0},
		{"two bytes min", []byte{0x80, 0x01}, 128, 0},
		{"trailing data untouched", []byte{0x05, 0xFF, 0xFF}, 5, 2},
		{"uint32 max", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 1<<32 - 1, 0},
		{"uint64 max", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}, 1<<64 - 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.input)
			got, err := c.ReadVarUint()
			if err != nil {
				t.Fatalf("ReadVarUint() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadVarUint() = %d, want %d", got, tt.want)
			}
			if c.Remaining() != tt.rest {
				t.Errorf("Remaining() = %d, want %d", c.Remaining(), tt.rest)
			}
		})
	}
}

func TestReadVarUintErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"empty", []byte{}, ErrOutOfData},
		{"truncated", []byte{0xAC}, ErrOutOfData},
		{"truncated long", []byte{0x80, 0x80, 0x80}, ErrOutOfData},
		{"overflow tenth byte", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x02}, ErrVarUintOverflow},
		{"overflow eleven bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x81, 0x00}, ErrVarUintOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCursor(tt.input).ReadVarUint()
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadVarUint() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVarUintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 16383, 16384, 1 << 32, 1<<64 - 1} {
		b := appendVarUint(nil, v)
		got, err := NewCursor(b).ReadVarUint()
		if err != nil {
			t.Fatalf("ReadVarUint(%x) error = %v", b, err)
		}
		if got != v {
			t.Errorf("ReadVarUint(%x) = %d, want %d", b, got, v)
		}
	}
	if got := appendVarUint(nil, 300); !reflect.DeepEqual(got, []byte{0xAC, 0x02}) {
		t.Errorf("appendVarUint(300) = %x, want ac02", got)
	}
	if got := appendVarUint(nil, 0); !reflect.DeepEqual(got, []byte{0x00}) {
		t.Errorf("appendVarUint(0) = %x, want 00", got)
	}
}

func TestReadByte(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	for _, want := range []byte{0x01, 0x02} {
		got, err := c.ReadByte()
		if err != nil || got != want {
			t.Fatalf("ReadByte() = %#x, %v; want %#x, nil", got, err, want)
		}
	}
	if _, err := c.ReadByte(); !errors.Is(err, ErrOutOfData) {
		t.Errorf("ReadByte() at end error = %v, want ErrOutOfData", err)
	}
	if c.Offset() != 2 {
		t.Errorf("Offset() = %d, want 2", c.Offset())
	}
}

func TestReadBytes(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	c := NewCursor(buf)

	got, err := c.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes(2) error = %v", err)
	}
	if !reflect.DeepEqual(got, []byte{0x01, 0x02}) {
		t.Errorf("ReadBytes(2) = %x, want 0102", got)
	}

	// the result must not alias the buffer
	got[0] = 0xFF
	if buf[0] != 0x01 {
		t.Error("ReadBytes() returned a slice aliasing the buffer")
	}

	if _, err := c.ReadBytes(2); !errors.Is(err, ErrOutOfData) {
		t.Errorf("ReadBytes(2) error = %v, want ErrOutOfData", err)
	}
	if c.Remaining() != 1 {
		t.Errorf("Remaining() after failed read = %d, want 1", c.Remaining())
	}

	if got, err := c.ReadBytes(0); err != nil || len(got) != 0 {
		t.Errorf("ReadBytes(0) = %x, %v; want empty, nil", got, err)
	}
}

func TestReadNullTerminatedString(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
		rest  int
	}{
		{"terminated", []byte("abc\x00def"), "abc", 3},
		{"empty string", []byte{0x00, 0x01}, "", 1},
		{"unterminated", []byte("abc"), "abc", 0},
		{"empty buffer", []byte{}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.input)
			if got := c.ReadNullTerminatedString(); got != tt.want {
				t.Errorf("ReadNullTerminatedString() = %q, want %q", got, tt.want)
			}
			if c.Remaining() != tt.rest {
				t.Errorf("Remaining() = %d, want %d", c.Remaining(), tt.rest)
			}
		})
	}
}
