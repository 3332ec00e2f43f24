package wire

import (
	"encoding/binary"
	"fmt"
)

// MessageType is the CMDU's 2-byte big-endian message type field.
type MessageType uint16

// CMDU message types this core generates or consumes (spec.md sections
// 4.5, 4.6, 8).
const (
	MsgTopologyDiscovery      MessageType = 0x0000
	MsgTopologyNotification   MessageType = 0x0001
	MsgTopologyQuery          MessageType = 0x0002
	MsgTopologyResponse       MessageType = 0x0003
	MsgVendorSpecific         MessageType = 0x0004
	MsgLinkMetricQuery        MessageType = 0x0005
	MsgLinkMetricResponse     MessageType = 0x0006
	MsgApAutoconfigSearch     MessageType = 0x0007
	MsgApAutoconfigResponse   MessageType = 0x0008
	MsgApAutoconfigWscM1M2    MessageType = 0x0009
	MsgApAutoconfigRenew      MessageType = 0x000A
	MsgPushButtonEventNotif   MessageType = 0x000B
	MsgPushButtonJoinNotif    MessageType = 0x000C
)

// EtherType1905 is the IEEE 1905 assigned EtherType (spec.md section 6).
const EtherType1905 = 0x893A

// MulticastAddress is the 1905 multicast destination for discovery and
// notification CMDUs (spec.md section 6).
var MulticastAddress = [6]byte{0x01, 0x80, 0xC2, 0x00, 0x00, 0x13}

// relayable lists the message types whose relay_indicator bit is
// honored; spec.md section 9 mandates a per-type policy table rather
// than the original's inconsistent handling.
var relayable = map[MessageType]bool{
	MsgTopologyDiscovery:    true,
	MsgTopologyNotification: true,
	MsgVendorSpecific:       true,
}

// Relayable reports whether mt's relay_indicator bit is meaningful.
// Non-relayable types always force the bit to 0 on send and ignore it
// on receive (spec.md section 4.3, "Forbidden combinations").
func Relayable(mt MessageType) bool { return relayable[mt] }

var messageTypeNames = map[MessageType]string{
	MsgTopologyDiscovery:    "topology_discovery",
	MsgTopologyNotification: "topology_notification",
	MsgTopologyQuery:        "topology_query",
	MsgTopologyResponse:     "topology_response",
	MsgVendorSpecific:       "vendor_specific",
	MsgLinkMetricQuery:      "link_metric_query",
	MsgLinkMetricResponse:   "link_metric_response",
	MsgApAutoconfigSearch:   "ap_autoconfig_search",
	MsgApAutoconfigResponse: "ap_autoconfig_response",
	MsgApAutoconfigWscM1M2:  "ap_autoconfig_wsc",
	MsgApAutoconfigRenew:    "ap_autoconfig_renew",
	MsgPushButtonEventNotif: "push_button_event_notif",
	MsgPushButtonJoinNotif:  "push_button_join_notif",
}

// MessageTypeName returns a stable, low-cardinality label for mt,
// suitable for a metrics label (internal/metrics) or a log field.
func MessageTypeName(mt MessageType) string {
	if name, ok := messageTypeNames[mt]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", uint16(mt))
}

const cmduHeaderSize = 8

// Header is the 8-byte CMDU header (spec.md section 3 and 6).
type Header struct {
	Version        uint8
	MessageType    MessageType
	MessageID      uint16
	FragmentID     uint8
	LastFragment   bool
	RelayIndicator bool
}

// ParseHeader decodes an 8-byte CMDU header from payload (the bytes
// immediately after the Ethernet header).
func ParseHeader(payload []byte) (Header, error) {
	if len(payload) < cmduHeaderSize {
		return Header{}, fmt.Errorf("cmdu header: %w", errTruncated)
	}
	var h Header
	h.Version = payload[0]
	if h.Version != 0 {
		return Header{}, fmt.Errorf("cmdu header: version %d: %w", h.Version, errBadVersion)
	}
	h.MessageType = MessageType(binary.BigEndian.Uint16(payload[2:4]))
	h.MessageID = binary.BigEndian.Uint16(payload[4:6])
	h.FragmentID = payload[6]
	flags := payload[7]
	h.LastFragment = flags&0x80 != 0
	h.RelayIndicator = flags&0x40 != 0
	if !Relayable(h.MessageType) {
		h.RelayIndicator = false
	}
	return h, nil
}

// Forge serializes the header to 8 bytes.
func (h Header) Forge() []byte {
	out := make([]byte, cmduHeaderSize)
	out[0] = 0 // version, always 0
	out[1] = 0 // reserved
	binary.BigEndian.PutUint16(out[2:4], uint16(h.MessageType))
	binary.BigEndian.PutUint16(out[4:6], h.MessageID)
	out[6] = h.FragmentID
	var flags byte
	if h.LastFragment {
		flags |= 0x80
	}
	if h.RelayIndicator && Relayable(h.MessageType) {
		flags |= 0x40
	}
	out[7] = flags
	return out
}

// Fragment is one on-wire CMDU fragment: header plus its slice of the
// TLV byte stream.
type Fragment struct {
	Header  Header
	Payload []byte // TLV bytes carried by this fragment (no EOM marker)
}

// Bytes returns the fragment's full CMDU payload (header || TLV bytes).
func (f Fragment) Bytes() []byte {
	return append(f.Header.Forge(), f.Payload...)
}

// Fragments forges tlvs and packs them into one or more fragments whose
// payload each fits within mss (spec.md section 4.3: MSS is derived
// from MTU, never greater than 1500-14-8), reserving room for the
// 3-byte end-of-message marker that it appends to the last fragment. A
// single TLV must not be split across fragments; if one (plus that
// reserve) exceeds mss this fails (spec.md 4.3).
func Fragments(mt MessageType, mid uint16, relay bool, tlvs []Tlv, mss int) ([]Fragment, error) {
	type sized struct {
		tlv  Tlv
		body []byte
	}
	items := make([]sized, len(tlvs))
	for i, t := range tlvs {
		body, err := t.ForgeBody()
		if err != nil {
			return nil, fmt.Errorf("tlv type %d: %w", t.Type(), err)
		}
		items[i] = sized{tlv: t, body: body}
		if headerSize+len(body)+headerSize > mss { // + end-of-message marker reserve
			return nil, fmt.Errorf("tlv type %d: %d bytes > mss %d: %w", t.Type(), headerSize+len(body), mss, errTlvTooLarge)
		}
	}

	var fragments []Fragment
	var cur []byte
	flush := func(last bool) {
		payload := cur
		if last {
			payload = append(payload, TlvTypeEndOfMessage, 0, 0)
		}
		fragments = append(fragments, Fragment{
			Header: Header{
				MessageType: mt, MessageID: mid,
				FragmentID: uint8(len(fragments)), LastFragment: last,
				RelayIndicator: relay && Relayable(mt),
			},
			Payload: payload,
		})
		cur = nil
	}

	for _, it := range items {
		tlvBytes := make([]byte, 0, headerSize+len(it.body))
		tlvBytes = append(tlvBytes, it.tlv.Type(), byte(len(it.body)>>8), byte(len(it.body)))
		tlvBytes = append(tlvBytes, it.body...)

		if len(cur)+len(tlvBytes)+headerSize > mss {
			flush(false)
		}
		cur = append(cur, tlvBytes...)
	}
	flush(true)
	return fragments, nil
}

// Reassembler buffers fragments for in-flight CMDUs keyed by
// (source AL MAC, message ID) until the last fragment arrives
// (spec.md section 4.3).
type Reassembler struct {
	pending map[reassemblyKey]*pendingCmdu
}

type reassemblyKey struct {
	srcAlMac [6]byte
	mid      uint16
}

type pendingCmdu struct {
	fragments map[uint8][]byte // fragment id -> payload
	lastSeen  uint8
	haveLast  bool
	mt        MessageType
}

func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[reassemblyKey]*pendingCmdu)}
}

// Add buffers one fragment. When the fragment completes the set (the
// last-fragment fragment has arrived and every fragment id in
// [0, lastSeen] is present) it returns the concatenated payload and
// clears the buffered state (idempotent: re-delivering an already
// completed fragment id just replaces its bytes, spec.md 4.3).
func (r *Reassembler) Add(srcAlMac [6]byte, h Header, payload []byte) (complete []byte, done bool) {
	key := reassemblyKey{srcAlMac: srcAlMac, mid: h.MessageID}
	p, ok := r.pending[key]
	if !ok {
		p = &pendingCmdu{fragments: make(map[uint8][]byte), mt: h.MessageType}
		r.pending[key] = p
	}
	p.fragments[h.FragmentID] = payload
	if h.LastFragment {
		p.haveLast = true
		p.lastSeen = h.FragmentID
	}

	if !p.haveLast {
		return nil, false
	}
	var out []byte
	for i := uint8(0); ; i++ {
		frag, ok := p.fragments[i]
		if !ok {
			return nil, false
		}
		out = append(out, frag...)
		if i == p.lastSeen {
			break
		}
	}
	delete(r.pending, key)
	return out, true
}

// Drop discards the reassembly state buffered for (srcAlMac, mid). The
// Reassembler keeps no timestamps: the caller tracks each key's age for
// the 10-second timeout spec.md section 4.3 mandates and calls Drop once
// it expires (spec.md section 9, "single-threaded I/O loop with
// timers").
func (r *Reassembler) Drop(srcAlMac [6]byte, mid uint16) {
	delete(r.pending, reassemblyKey{srcAlMac: srcAlMac, mid: mid})
}

// Pending reports the (srcAlMac, mid) pairs currently buffered, for a
// caller-side age tracker to consult.
func (r *Reassembler) Pending() [](struct {
	SrcAlMac [6]byte
	Mid      uint16
}) {
	out := make([]struct {
		SrcAlMac [6]byte
		Mid      uint16
	}, 0, len(r.pending))
	for k := range r.pending {
		out = append(out, struct {
			SrcAlMac [6]byte
			Mid      uint16
		}{SrcAlMac: k.srcAlMac, Mid: k.mid})
	}
	return out
}
