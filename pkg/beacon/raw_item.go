// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package beacon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"
)

// CBOR major types and simple values, RFC 8949 section 3.
const (
	majorUInt     = 0
	majorNegInt   = 1
	majorBytes    = 2
	majorText     = 3
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7
	infoHalf      = 25
	infoSingle    = 26
	infoDouble    = 27
	infoIndefLen  = 31
	maxItemDepth  = 32
	maxStringSize = 1 << 16
)

// readRawItem reads exactly one CBOR data item from r and returns its encoded bytes.
func readRawItem(r io.Reader) ([]byte, error) {
	buff := new(bytes.Buffer)
	if isBreak, err := copyItem(r, buff, 0); err != nil {
		return nil, err
	} else if isBreak {
		return nil, fmt.Errorf("unexpected break code")
	}
	return buff.Bytes(), nil
}

// readHead reads a CBOR item head and copies it to w. For an indefinite length, arg is zero
// and indef is set.
func readHead(r io.Reader, w *bytes.Buffer) (major, info byte, arg uint64, indef bool, err error) {
	var b [9]byte
	if _, err = io.ReadFull(r, b[:1]); err != nil {
		return
	}

	major, info = b[0]>>5, b[0]&0x1f

	var n int
	switch {
	case info < 24:
		arg = uint64(info)
	case info == 24:
		n = 1
	case info == 25:
		n = 2
	case info == 26:
		n = 4
	case info == 27:
		n = 8
	case info == infoIndefLen:
		indef = true
	default:
		err = fmt.Errorf("reserved additional information %d", info)
		return
	}

	if n > 0 {
		if _, err = io.ReadFull(r, b[1:1+n]); err != nil {
			return
		}
		for _, x := range b[1 : 1+n] {
			arg = arg<<8 | uint64(x)
		}
	}

	w.Write(b[:1+n])
	return
}

func copyItem(r io.Reader, w *bytes.Buffer, depth int) (isBreak bool, err error) {
	if depth > maxItemDepth {
		return false, fmt.Errorf("items nested deeper than %d", maxItemDepth)
	}

	major, info, arg, indef, err := readHead(r, w)
	if err != nil {
		return false, err
	}

	switch major {
	case majorUInt, majorNegInt:
		if indef {
			return false, fmt.Errorf("integer with indefinite length")
		}
		return false, nil

	case majorBytes, majorText:
		if !indef {
			return false, copyN(r, w, arg)
		}
		for {
			chunkBreak, err := copyChunk(r, w, major)
			if err != nil || chunkBreak {
				return false, err
			}
		}

	case majorArray, majorMap:
		items := arg
		if major == majorMap {
			if items > math.MaxUint64/2 {
				return false, fmt.Errorf("map length %d overflows", arg)
			}
			items *= 2
		}

		if !indef {
			for i := uint64(0); i < items; i++ {
				if isBreak, err := copyItem(r, w, depth+1); err != nil {
					return false, err
				} else if isBreak {
					return false, fmt.Errorf("unexpected break code in definite length container")
				}
			}
			return false, nil
		}

		for i := 0; ; i++ {
			isBreak, err := copyItem(r, w, depth+1)
			if err != nil {
				return false, err
			} else if isBreak {
				if major == majorMap && i%2 != 0 {
					return false, fmt.Errorf("map with a key but no value")
				}
				return false, nil
			}
		}

	case majorTag:
		if indef {
			return false, fmt.Errorf("tag with indefinite length")
		}
		if isBreak, err := copyItem(r, w, depth+1); err != nil {
			return false, err
		} else if isBreak {
			return false, fmt.Errorf("tag without content")
		}
		return false, nil

	default: // majorSimple
		if indef {
			return true, nil
		}
		if info == 24 && arg < 32 {
			return false, fmt.Errorf("invalid simple value %d", arg)
		}
		return false, nil
	}
}

// copyChunk copies one chunk of an indefinite length string.
func copyChunk(r io.Reader, w *bytes.Buffer, major byte) (isBreak bool, err error) {
	chunkMajor, _, arg, indef, err := readHead(r, w)
	if err != nil {
		return false, err
	}

	switch {
	case chunkMajor == majorSimple && indef:
		return true, nil
	case chunkMajor != major || indef:
		return false, fmt.Errorf("invalid chunk of major type %d in string of major type %d", chunkMajor, major)
	default:
		return false, copyN(r, w, arg)
	}
}

func copyN(r io.Reader, w *bytes.Buffer, n uint64) error {
	if n > maxStringSize {
		return fmt.Errorf("string of %d bytes exceeds limit", n)
	}
	_, err := io.CopyN(w, r, int64(n))
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// readFloat32 reads a CBOR floating point number. Half and double precision values are
// accepted as well, since encoders may pick the shortest lossless representation.
func readFloat32(r io.Reader) (float32, error) {
	var b [9]byte
	if _, err := io.ReadFull(r, b[:1]); err != nil {
		return 0, err
	}

	if major := b[0] >> 5; major != majorSimple {
		return 0, fmt.Errorf("expected float, got major type %d", major)
	}

	switch info := b[0] & 0x1f; info {
	case infoHalf:
		if _, err := io.ReadFull(r, b[1:3]); err != nil {
			return 0, err
		}
		return float16.Frombits(binary.BigEndian.Uint16(b[1:3])).Float32(), nil

	case infoSingle:
		if _, err := io.ReadFull(r, b[1:5]); err != nil {
			return 0, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b[1:5])), nil

	case infoDouble:
		if _, err := io.ReadFull(r, b[1:9]); err != nil {
			return 0, err
		}
		return float32(math.Float64frombits(binary.BigEndian.Uint64(b[1:9]))), nil

	default:
		return 0, fmt.Errorf("expected float, got simple value %d", info)
	}
}

// writeFloat32 writes a single precision CBOR float.
func writeFloat32(f float32, w io.Writer) error {
	var b [5]byte
	b[0] = majorSimple<<5 | infoSingle
	binary.BigEndian.PutUint32(b[1:], math.Float32bits(f))
	_, err := w.Write(b[:])
	return err
}
