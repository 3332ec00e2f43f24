package wire

import "fmt"

// TlvTypeEndOfMessage terminates a CMDU's TLV list on the wire. It is
// never exposed as an element of a parsed TLV list (spec.md 4.2).
const TlvTypeEndOfMessage uint8 = 0

// Tlv is implemented by every TLV record, known or unknown. It is the
// "trait each TLV type implements" option from spec.md section 9's
// design notes on reflection.
type Tlv interface {
	// Type returns the TLV's wire type byte.
	Type() uint8
	// ParseBody fills the receiver from a TLV body (the bytes after
	// the 3-byte type+length header). It must consume the body
	// exactly; leftover bytes are a parse error (spec.md 4.2).
	ParseBody(body []byte) error
	// ForgeBody serializes the receiver's body, not including the
	// 3-byte header.
	ForgeBody() ([]byte, error)
	// Compare orders the receiver against another Tlv of the same
	// concrete type. Implementations may assume same-type; the list
	// comparator in list.go checks types first.
	Compare(other Tlv) int
}

// Factory constructs a new zero-value Tlv for a registered type.
type Factory func() Tlv

// Registry maps TLV wire type to the factory that parses it. Types with
// no entry are parsed as UnknownTlv (spec.md 4.2: "no descriptor:
// allocates an unknown TLV holding a raw copy of the value").
type Registry map[uint8]Factory

// UnknownTlv preserves an unrecognized TLV's raw bytes so a forge
// round-trip reproduces them byte-for-byte (spec.md 4.2 and 8).
type UnknownTlv struct {
	TlvType uint8
	Raw     []byte
}

func (u *UnknownTlv) Type() uint8 { return u.TlvType }

func (u *UnknownTlv) ParseBody(body []byte) error {
	u.Raw = append([]byte(nil), body...)
	return nil
}

func (u *UnknownTlv) ForgeBody() ([]byte, error) {
	return append([]byte(nil), u.Raw...), nil
}

func (u *UnknownTlv) Compare(other Tlv) int {
	o, ok := other.(*UnknownTlv)
	if !ok {
		return compareTypes(u.Type(), other.Type())
	}
	return compareBytes(u.Raw, o.Raw)
}

func compareTypes(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (u *UnknownTlv) String() string {
	return fmt.Sprintf("UnknownTlv{type=%d, len=%d}", u.TlvType, len(u.Raw))
}
