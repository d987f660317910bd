// Package endian separates the two byte-order concerns of the converter:
// reading fields out of JSF buffers, whose order is fixed by the EdgeTech
// format, and producing SEG-Y fields, whose order is fixed big-endian by the
// SEG-Y standard. Both are independent of the host's own byte order.
package endian

import (
	"encoding/binary"
	"math"
	"math/bits"
	"unsafe"
)

// Engine combines ByteOrder and AppendByteOrder from encoding/binary.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Source is the byte order of every multi-byte field in a JSF stream.
var Source Engine = binary.LittleEndian

// Output is the byte order mandated for every SEG-Y binary field.
var Output Engine = binary.BigEndian

var nativeLittle = CheckEndianness() == binary.LittleEndian

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256: the first byte in memory is 0x01 only on big-endian hosts.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return nativeLittle
}

func IsNativeBigEndian() bool {
	return !nativeLittle
}

// ReadUint16 interprets buf[off:off+2] in source order.
func ReadUint16(buf []byte, off int) uint16 {
	return Source.Uint16(buf[off : off+2])
}

// ReadInt16 is the signed form of ReadUint16.
func ReadInt16(buf []byte, off int) int16 {
	return int16(ReadUint16(buf, off))
}

// ReadUint32 interprets buf[off:off+4] in source order.
func ReadUint32(buf []byte, off int) uint32 {
	return Source.Uint32(buf[off : off+4])
}

// ReadInt32 is the signed form of ReadUint32.
func ReadInt32(buf []byte, off int) int32 {
	return int32(ReadUint32(buf, off))
}

// ReadFloat32 interprets buf[off:off+4] as an IEEE single in source order.
func ReadFloat32(buf []byte, off int) float32 {
	return math.Float32frombits(ReadUint32(buf, off))
}

// ReadFloat64 interprets buf[off:off+8] as an IEEE double in source order.
func ReadFloat64(buf []byte, off int) float64 {
	return math.Float64frombits(Source.Uint64(buf[off : off+8]))
}

// Swap16 reverses the byte order of v unconditionally.
func Swap16(v uint16) uint16 {
	return bits.ReverseBytes16(v)
}

func SwapInt16(v int16) int16 {
	return int16(bits.ReverseBytes16(uint16(v)))
}

// Swap32 reverses the byte order of v unconditionally.
func Swap32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

func SwapInt32(v int32) int32 {
	return int32(bits.ReverseBytes32(uint32(v)))
}

// Swap64 reverses the byte order of v unconditionally.
func Swap64(v uint64) uint64 {
	return bits.ReverseBytes64(v)
}

func SwapInt64(v int64) int64 {
	return int64(bits.ReverseBytes64(uint64(v)))
}

// HostToBig16 returns v rearranged so that its in-memory representation on
// this host is big-endian.
func HostToBig16(v uint16) uint16 {
	if nativeLittle {
		return Swap16(v)
	}
	return v
}

// HostToBig32 is the 32-bit form of HostToBig16.
func HostToBig32(v uint32) uint32 {
	if nativeLittle {
		return Swap32(v)
	}
	return v
}

// HostToBig64 is the 64-bit form of HostToBig16.
func HostToBig64(v uint64) uint64 {
	if nativeLittle {
		return Swap64(v)
	}
	return v
}
