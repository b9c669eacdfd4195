// Package wire encodes extracted CoT fields into the compact binary record
// understood by the ATAK mesh-radio plugin. The layout is a restricted,
// hard-coded subset of the protobuf wire format: a fixed table of field
// numbers, wire types, and optionality rules, not a schema-driven encoder.
package wire

import "encoding/binary"

// Wire types used by the layout.
const (
	wtVarint  byte = 0
	wtLen     byte = 2
	wtFixed32 byte = 5
)

// appendUvarint appends the base-128 varint encoding of v: low seven bits
// per byte with the continuation bit set on all but the last.
func appendUvarint(b []byte, v uint64) []byte {
	for v > 0x7f {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// appendTag appends the tag byte (field_number << 3) | wire_type.
// Every field number in the layout is below 16, so one byte always
// suffices.
func appendTag(b []byte, field int, wt byte) []byte {
	return append(b, byte(field)<<3|wt)
}

func appendVarintField(b []byte, field int, v uint64) []byte {
	b = appendTag(b, field, wtVarint)
	return appendUvarint(b, v)
}

// appendFixed32Field appends a little-endian 32-bit signed value.
func appendFixed32Field(b []byte, field int, v int32) []byte {
	b = appendTag(b, field, wtFixed32)
	return binary.LittleEndian.AppendUint32(b, uint32(v))
}

func appendBytesField(b []byte, field int, p []byte) []byte {
	b = appendTag(b, field, wtLen)
	b = appendUvarint(b, uint64(len(p)))
	return append(b, p...)
}

func appendStringField(b []byte, field int, s string) []byte {
	b = appendTag(b, field, wtLen)
	b = appendUvarint(b, uint64(len(s)))
	return append(b, s...)
}
