package vectorstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

// Format layout, little-endian:
//
//	magic   [6]byte "RAGVS\x00"
//	version uint16
//	count   uint32
//	dim     uint32
//	count × { textLen uint32, text []byte, dim × float64 }
//	crc32   uint32 (IEEE) over every preceding byte
const (
	FormatVersion uint16 = 1

	headerSize  = 6 + 2 + 4 + 4
	trailerSize = 4
)

var magic = [6]byte{'R', 'A', 'G', 'V', 'S', 0}

var (
	ErrBadMagic           = errors.New("vectorstore: not a vector store file")
	ErrUnsupportedVersion = errors.New("vectorstore: unsupported format version")
	ErrTruncated          = errors.New("vectorstore: truncated data")
	ErrChecksum           = errors.New("vectorstore: checksum mismatch")
	ErrInconsistent       = errors.New("vectorstore: inconsistent records")
)

// Encode serializes parallel texts and embeddings. All embeddings must share one dimension.
func Encode(texts []string, embeddings [][]float64) ([]byte, error) {
	if len(texts) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d texts, %d embeddings", ErrInconsistent, len(texts), len(embeddings))
	}
	dim := 0
	if len(embeddings) > 0 {
		dim = len(embeddings[0])
	}
	size := headerSize + trailerSize
	for i, t := range texts {
		if len(embeddings[i]) != dim {
			return nil, fmt.Errorf("%w: record %d has dimension %d, want %d", ErrInconsistent, i, len(embeddings[i]), dim)
		}
		size += 4 + len(t) + 8*dim
	}

	out := make([]byte, 0, size)
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint16(out, FormatVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(texts)))
	out = binary.LittleEndian.AppendUint32(out, uint32(dim))
	for i, t := range texts {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(t)))
		out = append(out, t...)
		for _, v := range embeddings[i] {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
		}
	}
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out))
	return out, nil
}

// Decode parses data produced by Encode.
func Decode(data []byte) ([]string, [][]float64, error) {
	if len(data) < headerSize+trailerSize {
		return nil, nil, ErrTruncated
	}
	if !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, nil, ErrBadMagic
	}
	body := data[:len(data)-trailerSize]
	want := binary.LittleEndian.Uint32(data[len(data)-trailerSize:])
	if crc32.ChecksumIEEE(body) != want {
		return nil, nil, ErrChecksum
	}

	r := reader{buf: body, off: len(magic)}
	version := r.u16()
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	count := int(r.u32())
	dim := int(r.u32())
	// every record costs at least 4+8*dim bytes
	remaining := len(body) - r.off
	if dim > remaining/8 || (count > 0 && count > remaining/(4+8*dim)) {
		return nil, nil, fmt.Errorf("%w: header claims %d records of dimension %d", ErrTruncated, count, dim)
	}

	texts := make([]string, 0, count)
	embeddings := make([][]float64, 0, count)
	for i := 0; i < count; i++ {
		n := int(r.u32())
		text, ok := r.bytes(n)
		if !ok {
			return nil, nil, fmt.Errorf("%w: record %d text", ErrTruncated, i)
		}
		vec := make([]float64, dim)
		for j := range vec {
			vec[j] = math.Float64frombits(r.u64())
		}
		if r.short {
			return nil, nil, fmt.Errorf("%w: record %d embedding", ErrTruncated, i)
		}
		texts = append(texts, string(text))
		embeddings = append(embeddings, vec)
	}
	if r.short {
		return nil, nil, ErrTruncated
	}
	if r.off != len(body) {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrInconsistent, len(body)-r.off)
	}
	return texts, embeddings, nil
}

// reader walks a byte slice and latches short once any read runs past the end.
type reader struct {
	buf   []byte
	off   int
	short bool
}

func (r *reader) bytes(n int) ([]byte, bool) {
	if r.short || n < 0 || r.off+n > len(r.buf) {
		r.short = true
		return nil, false
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, true
}

func (r *reader) u16() uint16 {
	b, ok := r.bytes(2)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b, ok := r.bytes(4)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b, ok := r.bytes(8)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
