// Package leb128 implements the little-endian base-128 variable-length
// integer encoding WASM uses for lengths, indices, and constants.
package leb128

import "fmt"

// EncodeUint32 encodes n as unsigned LEB128.
func EncodeUint32(n uint32) []byte {
	return EncodeUint64(uint64(n))
}

// EncodeUint64 encodes n as unsigned LEB128.
func EncodeUint64(n uint64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

// EncodeInt32 encodes n as signed LEB128.
func EncodeInt32(n int32) []byte {
	return EncodeInt64(int64(n))
}

// EncodeInt64 encodes n as signed LEB128.
func EncodeInt64(n int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(n & 0x7f)
		n >>= 7
		signBitSet := b&0x40 != 0
		if (n == 0 && !signBitSet) || (n == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// LoadUint32 decodes an unsigned LEB128 value from the start of buf,
// returning the value and the number of bytes consumed. Encodings longer
// than the 5 bytes a uint32 needs are rejected as overflow.
func LoadUint32(buf []byte) (uint32, uint64, error) {
	v, n, err := LoadUint64(buf)
	if err != nil {
		return 0, 0, err
	}
	if n > 5 || v > 0xffffffff {
		return 0, 0, fmt.Errorf("leb128: uint32 overflow")
	}
	return uint32(v), n, nil
}

// LoadUint64 decodes an unsigned LEB128 value from the start of buf,
// returning the value and the number of bytes consumed.
func LoadUint64(buf []byte) (uint64, uint64, error) {
	var result uint64
	var shift uint
	var n uint64
	for {
		if int(n) >= len(buf) {
			return 0, 0, fmt.Errorf("leb128: unexpected end of buffer")
		}
		b := buf[n]
		n++
		if shift >= 64 {
			return 0, 0, fmt.Errorf("leb128: varint too long")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, n, nil
		}
		shift += 7
	}
}

// LoadInt32 decodes a signed LEB128 value from the start of buf, returning
// the value and the number of bytes consumed.
func LoadInt32(buf []byte) (int32, uint64, error) {
	v, n, err := LoadInt64(buf)
	if err != nil {
		return 0, 0, err
	}
	if v < -(1<<31) || v > (1<<31)-1 {
		return 0, 0, fmt.Errorf("leb128: int32 overflow")
	}
	return int32(v), n, nil
}

// LoadInt64 decodes a signed LEB128 value from the start of buf, returning
// the value and the number of bytes consumed.
func LoadInt64(buf []byte) (int64, uint64, error) {
	var result int64
	var shift uint
	var n uint64
	var b byte
	for {
		if int(n) >= len(buf) {
			return 0, 0, fmt.Errorf("leb128: unexpected end of buffer")
		}
		b = buf[n]
		n++
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 64 {
			return 0, 0, fmt.Errorf("leb128: varint too long")
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}
