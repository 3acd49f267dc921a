package protocol

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"google.golang.org/protobuf/encoding/protowire"
)

// fieldFunc handles one field of a message and returns how many bytes of b
// its value consumed.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walk iterates the fields of one message.
func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeErr("tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

// skip consumes a field the decoder does not know about.
func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, decodeErr("field %d: %v", num, protowire.ParseError(n))
	}
	return n, nil
}

func consumeVarint(num protowire.Number, typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, decodeErr("field %d: want varint, got wire type %d", num, typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, decodeErr("field %d: %v", num, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeSint(num protowire.Number, typ protowire.Type, b []byte) (int64, int, error) {
	v, n, err := consumeVarint(num, typ, b)
	return protowire.DecodeZigZag(v), n, err
}

func consumeDouble(num protowire.Number, typ protowire.Type, b []byte) (float64, int, error) {
	if typ != protowire.Fixed64Type {
		return 0, 0, decodeErr("field %d: want fixed64, got wire type %d", num, typ)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, decodeErr("field %d: %v", num, protowire.ParseError(n))
	}
	return math.Float64frombits(v), n, nil
}

func consumeBytes(num protowire.Number, typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, decodeErr("field %d: want bytes, got wire type %d", num, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, decodeErr("field %d: %v", num, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumePosition(num protowire.Number, typ protowire.Type, b []byte) (mgl64.Vec2, int, error) {
	raw, n, err := consumeBytes(num, typ, b)
	if err != nil {
		return mgl64.Vec2{}, 0, err
	}
	var pos mgl64.Vec2
	err = walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldPositionX, fieldPositionY:
			v, m, err := consumeDouble(num, typ, b)
			pos[num-1] = v
			return m, err
		}
		return skip(num, typ, b)
	})
	return pos, n, err
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendPosition(b []byte, num protowire.Number, pos mgl64.Vec2) []byte {
	var msg []byte
	msg = appendDouble(msg, fieldPositionX, pos.X())
	msg = appendDouble(msg, fieldPositionY, pos.Y())
	return appendMessage(b, num, msg)
}
