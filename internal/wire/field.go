package wire

import (
	"fmt"
	"io"
	"net"
)

// Format selects how Print renders a field's value. It plays the same
// role as the original tlv_struct_field_description print-format enum
// (spec.md section 3: "print format {hex, dec, unsigned, mac, ipv4,
// ipv6}").
type Format int

const (
	FormatHex Format = iota
	FormatDec
	FormatUnsigned
	FormatMAC
	FormatIPv4
	FormatIPv6
	FormatBytes
)

// part is either a scalar field or a byte field; Descriptor keeps parts
// in a single ordered slice so wire layout follows declaration order
// exactly, the way the original tlv_struct_description.fields[] does
// (spec.md section 3).
type part[T any] struct {
	name       string
	size       int // scalar: 1/2/4; bytes: N, or 0 for "rest of buffer"
	format     Format
	isBytes    bool
	getUint    func(*T) uint64
	setUint    func(*T, uint64)
	getBytes   func(*T) []byte
	setBytes   func(*T, []byte)
}

// Field describes one fixed-size big-endian scalar field of a TLV
// record: byte width, print format, and typed accessors into the
// concrete Go struct. This is the declarative descriptor spec.md
// section 3 calls for, generalized from "byte offset into a C struct"
// to "typed get/set closures over T" — the same reflection contract,
// expressed the way a strongly typed language does it (spec.md section
// 9, design note "Reflection over field descriptors", option b).
type Field[T any] struct {
	Name   string
	Size   int // 1, 2 or 4
	Format Format
	Get    func(*T) uint64
	Set    func(*T, uint64)
}

// BytesField describes an opaque or fixed-width byte field (MAC
// addresses, raw blobs, SSIDs) that doesn't fit the scalar Field shape.
// Size == 0 means "variable length, consumes the rest of the TLV body";
// such fields must be declared last.
type BytesField[T any] struct {
	Name   string
	Size   int
	Format Format
	Get    func(*T) []byte
	Set    func(*T, []byte)
}

// Descriptor is the per-TLV-type field table: the uniform driver for
// parse/forge/length/compare/print (spec.md section 4.2). Build one
// with NewDescriptor, appending Field/BytesField values with AddField/
// AddBytes in wire order.
type Descriptor[T any] struct {
	Name  string
	parts []part[T]
}

func NewDescriptor[T any](name string) *Descriptor[T] {
	return &Descriptor[T]{Name: name}
}

func (d *Descriptor[T]) AddField(f Field[T]) *Descriptor[T] {
	d.parts = append(d.parts, part[T]{
		name: f.Name, size: f.Size, format: f.Format,
		getUint: f.Get, setUint: f.Set,
	})
	return d
}

func (d *Descriptor[T]) AddBytes(b BytesField[T]) *Descriptor[T] {
	d.parts = append(d.parts, part[T]{
		name: b.Name, size: b.Size, format: b.Format, isBytes: true,
		getBytes: b.Get, setBytes: b.Set,
	})
	return d
}

// Parse extracts every field of d, in declaration order, advancing c.
func (d *Descriptor[T]) Parse(t *T, c *cursor) error {
	for _, p := range d.parts {
		if p.isBytes {
			size := p.size
			if size == 0 {
				size = c.remaining()
			}
			v, err := c.readBytes(size)
			if err != nil {
				return fmt.Errorf("field %s: %w", p.name, err)
			}
			p.setBytes(t, v)
			continue
		}
		v, err := c.readUint(p.size)
		if err != nil {
			return fmt.Errorf("field %s: %w", p.name, err)
		}
		p.setUint(t, v)
	}
	return nil
}

// Forge appends the wire representation of every field of t to out.
func (d *Descriptor[T]) Forge(t *T, out []byte) []byte {
	for _, p := range d.parts {
		if p.isBytes {
			out = append(out, p.getBytes(t)...)
			continue
		}
		out = putUint(out, p.size, p.getUint(t))
	}
	return out
}

// Length returns the wire size in bytes of every field of t.
func (d *Descriptor[T]) Length(t *T) int {
	n := 0
	for _, p := range d.parts {
		if p.isBytes {
			n += len(p.getBytes(t))
			continue
		}
		n += p.size
	}
	return n
}

// Compare does a field-wise comparison of a and b in declaration order,
// the generalized form of the original's field-by-field memcmp
// (spec.md section 4.2 and section 9's ordered-list contract).
func (d *Descriptor[T]) Compare(a, b *T) int {
	for _, p := range d.parts {
		if p.isBytes {
			if c := compareBytes(p.getBytes(a), p.getBytes(b)); c != 0 {
				return c
			}
			continue
		}
		va, vb := p.getUint(a), p.getUint(b)
		if va != vb {
			if va < vb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func compareBytes(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Print writes every field of t to w using its declared Format.
func (d *Descriptor[T]) Print(w io.Writer, prefix string, t *T) {
	for _, p := range d.parts {
		if p.isBytes {
			fmt.Fprintf(w, "%s%s: %s\n", prefix, p.name, formatBytes(p.format, p.getBytes(t)))
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", prefix, p.name, formatUint(p.format, p.getUint(t)))
	}
}

func formatUint(f Format, v uint64) string {
	switch f {
	case FormatHex:
		return fmt.Sprintf("0x%x", v)
	default:
		return fmt.Sprintf("%d", v)
	}
}

func formatBytes(f Format, v []byte) string {
	switch f {
	case FormatMAC:
		if len(v) == 6 {
			return net.HardwareAddr(v).String()
		}
		return fmt.Sprintf("% x", v)
	case FormatIPv4, FormatIPv6:
		return net.IP(v).String()
	default:
		return fmt.Sprintf("% x", v)
	}
}
