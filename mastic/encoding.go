package mastic

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/mastic/vidpf"
)

// ErrMalformedAggParam is returned by DecodeAggParam when the input does
// not match the wire format in spec §6.
var ErrMalformedAggParam = errors.New("mastic: malformed aggregation parameter encoding")

// EncodeAggParam renders p as the canonical big-endian wire format:
// 2-byte level, 4-byte prefix count, 1-byte do_weight_check flag, then
// each prefix packed MSB-first into ceil((level+1)/8) bytes.
func EncodeAggParam(p AggregationParam) []byte {
	packedLen := (int(p.Level) + 1 + 7) / 8
	out := make([]byte, 0, 7+packedLen*len(p.Prefixes))

	var levelBuf [2]byte
	binary.BigEndian.PutUint16(levelBuf[:], p.Level)
	out = append(out, levelBuf[:]...)

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(p.Prefixes)))
	out = append(out, countBuf[:]...)

	if p.DoWeightCheck {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}

	for _, prefix := range p.Prefixes {
		out = append(out, packBits(prefix, packedLen)...)
	}
	return out
}

// DecodeAggParam parses the wire format produced by EncodeAggParam.
func DecodeAggParam(b []byte) (AggregationParam, error) {
	if len(b) < 7 {
		return AggregationParam{}, ErrMalformedAggParam
	}
	level := binary.BigEndian.Uint16(b[0:2])
	count := binary.BigEndian.Uint32(b[2:6])
	var doWeightCheck bool
	switch b[6] {
	case 0:
		doWeightCheck = false
	case 1:
		doWeightCheck = true
	default:
		return AggregationParam{}, ErrMalformedAggParam
	}

	packedLen := (int(level) + 1 + 7) / 8
	rest := b[7:]
	if len(rest) != packedLen*int(count) {
		return AggregationParam{}, ErrMalformedAggParam
	}

	prefixes := make([]vidpf.Bits, count)
	for i := 0; i < int(count); i++ {
		prefixes[i] = unpackBits(rest[i*packedLen:(i+1)*packedLen], int(level)+1)
	}

	return AggregationParam{Level: level, Prefixes: prefixes, DoWeightCheck: doWeightCheck}, nil
}

// packBits packs bits MSB-first into outLen bytes, zero-padding the
// final byte.
func packBits(bits vidpf.Bits, outLen int) []byte {
	out := make([]byte, outLen)
	for i, bit := range bits {
		if !bit {
			continue
		}
		out[i/8] |= 1 << uint(7-i%8)
	}
	return out
}

// unpackBits is the inverse of packBits, reading exactly n bits.
func unpackBits(b []byte, n int) vidpf.Bits {
	out := make(vidpf.Bits, n)
	for i := 0; i < n; i++ {
		out[i] = b[i/8]&(1<<uint(7-i%8)) != 0
	}
	return out
}
