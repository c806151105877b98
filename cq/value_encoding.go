package cq

import (
	"encoding/binary"
	"fmt"
)

// AppendBytes appends a self-delimiting encoding of c to buf: one kind byte,
// then 8 big-endian bytes for integers or a uvarint length plus the bytes
// for strings.
func AppendBytes(buf []byte, c Constant) []byte {
	buf = append(buf, byte(c.kind))
	switch c.kind {
	case KindInteger:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(c.i))
		buf = append(buf, tmp[:]...)
	case KindString:
		buf = binary.AppendUvarint(buf, uint64(len(c.s)))
		buf = append(buf, c.s...)
	default:
		panic(fmt.Sprintf("cannot encode invalid constant %#v", c))
	}
	return buf
}

// EncodeRow encodes a row of constants into a single byte slice.
func EncodeRow(values []Constant) []byte {
	buf := make([]byte, 0, len(values)*9)
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	for _, v := range values {
		buf = AppendBytes(buf, v)
	}
	return buf
}

// DecodeRow is the inverse of EncodeRow.
func DecodeRow(data []byte) ([]Constant, error) {
	n, read := binary.Uvarint(data)
	if read <= 0 {
		return nil, fmt.Errorf("decode row: bad length prefix")
	}
	data = data[read:]

	values := make([]Constant, 0, n)
	for i := uint64(0); i < n; i++ {
		c, rest, err := decodeConstant(data)
		if err != nil {
			return nil, fmt.Errorf("decode row column %d: %w", i, err)
		}
		values = append(values, c)
		data = rest
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("decode row: %d trailing bytes", len(data))
	}
	return values, nil
}

func decodeConstant(data []byte) (Constant, []byte, error) {
	if len(data) == 0 {
		return Constant{}, nil, fmt.Errorf("unexpected end of data")
	}
	kind := Kind(data[0])
	data = data[1:]

	switch kind {
	case KindInteger:
		if len(data) < 8 {
			return Constant{}, nil, fmt.Errorf("int value must be 8 bytes, got %d", len(data))
		}
		return Int(int64(binary.BigEndian.Uint64(data[:8]))), data[8:], nil
	case KindString:
		l, read := binary.Uvarint(data)
		if read <= 0 || uint64(len(data)-read) < l {
			return Constant{}, nil, fmt.Errorf("bad string length")
		}
		data = data[read:]
		return Str(string(data[:l])), data[l:], nil
	default:
		return Constant{}, nil, fmt.Errorf("unknown value kind: %d", kind)
	}
}
