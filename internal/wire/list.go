package wire

import (
	"fmt"
	"io"
)

// headerSize is the 3-byte TLV wire header: 1-byte type, 2-byte
// big-endian length (spec.md section 4.2).
const headerSize = 3

// ParseList walks buf and returns the TLVs found, stopping at the
// end-of-message marker (type 0, length 0). Any failure — truncated
// buffer, sub-parser error, leftover bytes inside a TLV body — drops
// the whole list built so far and returns an error (spec.md 4.2).
func ParseList(defs Registry, buf []byte) ([]Tlv, error) {
	var out []Tlv
	for {
		if len(buf) < headerSize {
			return nil, fmt.Errorf("tlv list: %w", errTruncated)
		}
		tlvType := buf[0]
		tlvLen := int(buf[1])<<8 | int(buf[2])
		buf = buf[headerSize:]

		if tlvType == TlvTypeEndOfMessage && tlvLen == 0 {
			return out, nil
		}
		if tlvLen > len(buf) {
			return nil, fmt.Errorf("tlv type %d: declares length %d but only %d bytes remain: %w",
				tlvType, tlvLen, len(buf), errTruncated)
		}
		body := buf[:tlvLen]
		buf = buf[tlvLen:]

		factory, known := defs[tlvType]
		var t Tlv
		if !known {
			t = &UnknownTlv{TlvType: tlvType}
		} else {
			t = factory()
		}
		if err := t.ParseBody(body); err != nil {
			return nil, fmt.Errorf("tlv type %d: %w", tlvType, err)
		}
		out = append(out, t)
	}
}

// ForgeList serializes tlvs plus the end-of-message marker, failing if
// the result would exceed maxLength (spec.md 4.2). maxLength <= 0 means
// unbounded.
func ForgeList(tlvs []Tlv, maxLength int) ([]byte, error) {
	total := headerSize // end-of-message marker
	bodies := make([][]byte, len(tlvs))
	for i, t := range tlvs {
		body, err := t.ForgeBody()
		if err != nil {
			return nil, fmt.Errorf("tlv type %d: %w", t.Type(), err)
		}
		bodies[i] = body
		total += headerSize + len(body)
	}
	if maxLength > 0 && total > maxLength {
		return nil, fmt.Errorf("tlv list: %d bytes > max %d: %w", total, maxLength, errDoesNotFit)
	}

	out := make([]byte, 0, total)
	for i, t := range tlvs {
		body := bodies[i]
		out = append(out, t.Type(), byte(len(body)>>8), byte(len(body)))
		out = append(out, body...)
	}
	out = append(out, TlvTypeEndOfMessage, 0, 0)
	return out, nil
}

// Length returns the forged wire size of a single TLV, including its
// 3-byte header.
func Length(t Tlv) (int, error) {
	body, err := t.ForgeBody()
	if err != nil {
		return 0, err
	}
	return headerSize + len(body), nil
}

// Compare implements the ordered-list contract spec.md section 9
// adopts explicitly (in preference to the original's same-order
// assumption left implicit): two TLV lists compare equal iff they have
// the same length and each position's TLV compares equal; a shorter
// list compares less than a longer one with an otherwise-equal prefix.
func Compare(a, b []Tlv) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareTypes(a[i].Type(), b[i].Type()); c != 0 {
			return c
		}
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Printable is implemented by TLV types that know how to render their
// own fields (usually by delegating to a Descriptor's Print method).
type Printable interface {
	Print(w io.Writer, prefix string)
}

// PrintList writes every TLV in tlvs to w, one per line plus any
// fields the TLV's own Print contributes.
func PrintList(w io.Writer, tlvs []Tlv, prefix string) {
	for _, t := range tlvs {
		fmt.Fprintf(w, "%sTLV type=%d\n", prefix, t.Type())
		if p, ok := t.(Printable); ok {
			p.Print(w, prefix+"  ")
		}
	}
}
