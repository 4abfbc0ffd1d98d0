package sevenz

import (
	"bytes"
	"encoding/binary"
)

// Property ids of the 7z header database.
const (
	idEnd              = 0x00
	idHeader           = 0x01
	idMainStreamsInfo  = 0x04
	idFilesInfo        = 0x05
	idPackInfo         = 0x06
	idUnpackInfo       = 0x07
	idSubStreamsInfo   = 0x08
	idSize             = 0x09
	idCRC              = 0x0a
	idFolder           = 0x0b
	idCodersUnpackSize = 0x0c
	idEmptyStream      = 0x0e
	idEmptyFile        = 0x0f
	idName             = 0x11
	idMTime            = 0x14
	idWinAttributes    = 0x15
)

// headerBuffer accumulates header bytes using the 7z primitive encodings.
type headerBuffer struct {
	bytes.Buffer
}

func (b *headerBuffer) id(v byte) {
	b.WriteByte(v)
}

// number writes v in the 7z variable-length NUMBER encoding: the count of
// leading one bits in the first byte gives the number of little-endian bytes
// that follow, and the remaining bits of the first byte hold the high part.
func (b *headerBuffer) number(v uint64) {
	b.Write(appendNumber(nil, v))
}

func appendNumber(dst []byte, v uint64) []byte {
	for extra := 0; extra < 8; extra++ {
		if v < 1<<(7*(extra+1)) {
			first := byte(0xff<<(8-extra)) | byte(v>>(8*extra))
			dst = append(dst, first)
			for i := 0; i < extra; i++ {
				dst = append(dst, byte(v>>(8*i)))
			}
			return dst
		}
	}

	dst = append(dst, 0xff)
	return binary.LittleEndian.AppendUint64(dst, v)
}

func (b *headerBuffer) uint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func (b *headerBuffer) uint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}

// property writes a FilesInfo property: id, payload size, payload.
func (b *headerBuffer) property(id byte, payload []byte) {
	b.id(id)
	b.number(uint64(len(payload)))
	b.Write(payload)
}

// bitVector packs bits most significant bit first, as 7z stores them.
func bitVector(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

func anySet(bits []bool) bool {
	for _, set := range bits {
		if set {
			return true
		}
	}
	return false
}
