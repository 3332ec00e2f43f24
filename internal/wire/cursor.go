package wire

import "github.com/prplmesh/go1905/pkg/errors"

// cursor walks a byte slice left to right, the Go analogue of the
// original stack's packet_tools.h _E1BL/_E2BL/_E4BL/_EnBL helpers:
// each read advances the cursor and fails loudly on underrun instead of
// panicking, so a malformed TLV aborts the whole parse (spec.md 4.2).
type cursor struct {
	buf []byte
}

func (c *cursor) remaining() int { return len(c.buf) }

func (c *cursor) readUint8() (uint8, error) {
	if len(c.buf) < 1 {
		return 0, errors.WireError("cursor", errTruncated)
	}
	v := c.buf[0]
	c.buf = c.buf[1:]
	return v, nil
}

func (c *cursor) readUint16() (uint16, error) {
	if len(c.buf) < 2 {
		return 0, errors.WireError("cursor", errTruncated)
	}
	v := uint16(c.buf[0])<<8 | uint16(c.buf[1])
	c.buf = c.buf[2:]
	return v, nil
}

func (c *cursor) readUint32() (uint32, error) {
	if len(c.buf) < 4 {
		return 0, errors.WireError("cursor", errTruncated)
	}
	v := uint32(c.buf[0])<<24 | uint32(c.buf[1])<<16 | uint32(c.buf[2])<<8 | uint32(c.buf[3])
	c.buf = c.buf[4:]
	return v, nil
}

func (c *cursor) readUint(size int) (uint64, error) {
	switch size {
	case 1:
		v, err := c.readUint8()
		return uint64(v), err
	case 2:
		v, err := c.readUint16()
		return uint64(v), err
	case 4:
		v, err := c.readUint32()
		return uint64(v), err
	default:
		return 0, errors.InternalError("cursor", errBadFieldSize)
	}
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if len(c.buf) < n {
		return nil, errors.WireError("cursor", errTruncated)
	}
	v := make([]byte, n)
	copy(v, c.buf[:n])
	c.buf = c.buf[n:]
	return v, nil
}

func putUint8(out []byte, v uint8) []byte   { return append(out, v) }
func putUint16(out []byte, v uint16) []byte { return append(out, byte(v>>8), byte(v)) }
func putUint32(out []byte, v uint32) []byte {
	return append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func putUint(out []byte, size int, v uint64) []byte {
	switch size {
	case 1:
		return putUint8(out, uint8(v))
	case 2:
		return putUint16(out, uint16(v))
	case 4:
		return putUint32(out, uint32(v))
	default:
		panic("wire: unsupported scalar field size")
	}
}
