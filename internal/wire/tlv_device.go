package wire

import "fmt"

// parseRepeated reads a 1-byte count followed by that many records
// described by d, the generic form of the original's
// tlv_struct_parse_list (spec.md 4.2: "children lists are preceded on
// the wire by a 1-byte count").
func parseRepeated[C any](d *Descriptor[C], c *cursor) ([]C, error) {
	count, err := c.readUint8()
	if err != nil {
		return nil, fmt.Errorf("child count: %w", err)
	}
	items := make([]C, count)
	for i := range items {
		if err := d.Parse(&items[i], c); err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
	}
	return items, nil
}

// forgeRepeated is parseRepeated's inverse.
func forgeRepeated[C any](d *Descriptor[C], items []C, out []byte) ([]byte, error) {
	if len(items) > 255 {
		return nil, errChildCountLimit
	}
	out = append(out, byte(len(items)))
	for i := range items {
		out = d.Forge(&items[i], out)
	}
	return out, nil
}

// --- Device Information TLV ---

type DeviceInterfaceRecord struct {
	MacAddress [6]byte
	MediaType  uint16
}

var deviceInterfaceRecordDesc = NewDescriptor[DeviceInterfaceRecord]("DeviceInterfaceRecord").
	AddBytes(BytesField[DeviceInterfaceRecord]{
		Name: "mac_address", Size: 6, Format: FormatMAC,
		Get: func(t *DeviceInterfaceRecord) []byte { return t.MacAddress[:] },
		Set: func(t *DeviceInterfaceRecord, v []byte) { copy(t.MacAddress[:], v) },
	}).
	AddField(Field[DeviceInterfaceRecord]{
		Name: "media_type", Size: 2, Format: FormatHex,
		Get: func(t *DeviceInterfaceRecord) uint64 { return uint64(t.MediaType) },
		Set: func(t *DeviceInterfaceRecord, v uint64) { t.MediaType = uint16(v) },
	})

// DeviceInformationTlv answers a Topology Query with every local
// interface and its media type (spec.md section 4.5).
type DeviceInformationTlv struct {
	AlMacAddress [6]byte
	Interfaces   []DeviceInterfaceRecord
}

func (t *DeviceInformationTlv) Type() uint8 { return TlvTypeDeviceInformation }

func (t *DeviceInformationTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	mac, err := c.readBytes(6)
	if err != nil {
		return err
	}
	copy(t.AlMacAddress[:], mac)
	ifaces, err := parseRepeated(deviceInterfaceRecordDesc, c)
	if err != nil {
		return err
	}
	t.Interfaces = ifaces
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *DeviceInformationTlv) ForgeBody() ([]byte, error) {
	out := append([]byte(nil), t.AlMacAddress[:]...)
	return forgeRepeated(deviceInterfaceRecordDesc, t.Interfaces, out)
}

func (t *DeviceInformationTlv) Compare(other Tlv) int {
	o, ok := other.(*DeviceInformationTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	if c := compareBytes(t.AlMacAddress[:], o.AlMacAddress[:]); c != 0 {
		return c
	}
	return compareRecordSlices(deviceInterfaceRecordDesc, t.Interfaces, o.Interfaces)
}

func compareRecordSlices[C any](d *Descriptor[C], a, b []C) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := d.Compare(&a[i], &b[i]); c != 0 {
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

// --- Device Bridging Capability TLV ---

// BridgingTuple lists the interfaces bridged together into one L2
// segment (the hierarchical grammar's "two fixed child lists" reduced
// to one list-of-lists: a list of tuples, each tuple a list of MACs).
type BridgingTuple struct {
	Macs [][6]byte
}

type DeviceBridgingCapabilityTlv struct {
	Tuples []BridgingTuple
}

func (t *DeviceBridgingCapabilityTlv) Type() uint8 { return TlvTypeDeviceBridgingCapability }

func (t *DeviceBridgingCapabilityTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	count, err := c.readUint8()
	if err != nil {
		return err
	}
	tuples := make([]BridgingTuple, count)
	for i := range tuples {
		n, err := c.readUint8()
		if err != nil {
			return err
		}
		macs := make([][6]byte, n)
		for j := range macs {
			b, err := c.readBytes(6)
			if err != nil {
				return err
			}
			copy(macs[j][:], b)
		}
		tuples[i] = BridgingTuple{Macs: macs}
	}
	t.Tuples = tuples
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *DeviceBridgingCapabilityTlv) ForgeBody() ([]byte, error) {
	if len(t.Tuples) > 255 {
		return nil, errChildCountLimit
	}
	out := []byte{byte(len(t.Tuples))}
	for _, tuple := range t.Tuples {
		if len(tuple.Macs) > 255 {
			return nil, errChildCountLimit
		}
		out = append(out, byte(len(tuple.Macs)))
		for _, m := range tuple.Macs {
			out = append(out, m[:]...)
		}
	}
	return out, nil
}

func (t *DeviceBridgingCapabilityTlv) Compare(other Tlv) int {
	o, ok := other.(*DeviceBridgingCapabilityTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	n := len(t.Tuples)
	if len(o.Tuples) < n {
		n = len(o.Tuples)
	}
	for i := 0; i < n; i++ {
		a, b := t.Tuples[i], o.Tuples[i]
		m := len(a.Macs)
		if len(b.Macs) < m {
			m = len(b.Macs)
		}
		for j := 0; j < m; j++ {
			if c := compareBytes(a.Macs[j][:], b.Macs[j][:]); c != 0 {
				return c
			}
		}
		if len(a.Macs) != len(b.Macs) {
			if len(a.Macs) < len(b.Macs) {
				return -1
			}
			return 1
		}
	}
	if len(t.Tuples) != len(o.Tuples) {
		if len(t.Tuples) < len(o.Tuples) {
			return -1
		}
		return 1
	}
	return 0
}

// --- Non-1905 and 1905 neighbor device lists ---

type Non1905NeighborDeviceListTlv struct {
	LocalMacAddress [6]byte
	NeighborMacs    [][6]byte
}

func (t *Non1905NeighborDeviceListTlv) Type() uint8 { return TlvTypeNon1905NeighborDeviceList }

func (t *Non1905NeighborDeviceListTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	mac, err := c.readBytes(6)
	if err != nil {
		return err
	}
	copy(t.LocalMacAddress[:], mac)
	count, err := c.readUint8()
	if err != nil {
		return err
	}
	macs := make([][6]byte, count)
	for i := range macs {
		b, err := c.readBytes(6)
		if err != nil {
			return err
		}
		copy(macs[i][:], b)
	}
	t.NeighborMacs = macs
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *Non1905NeighborDeviceListTlv) ForgeBody() ([]byte, error) {
	if len(t.NeighborMacs) > 255 {
		return nil, errChildCountLimit
	}
	out := append([]byte(nil), t.LocalMacAddress[:]...)
	out = append(out, byte(len(t.NeighborMacs)))
	for _, m := range t.NeighborMacs {
		out = append(out, m[:]...)
	}
	return out, nil
}

func (t *Non1905NeighborDeviceListTlv) Compare(other Tlv) int {
	o, ok := other.(*Non1905NeighborDeviceListTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	if c := compareBytes(t.LocalMacAddress[:], o.LocalMacAddress[:]); c != 0 {
		return c
	}
	return compareMacSlices(t.NeighborMacs, o.NeighborMacs)
}

func compareMacSlices(a, b [][6]byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareBytes(a[i][:], b[i][:]); c != 0 {
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

// NeighborRecord is one entry of a 1905 Neighbor Device List TLV: the
// neighbor AL's MAC plus whether the underlying link is bridged
// (spec.md section 4.5 query handling).
type NeighborRecord struct {
	NeighborAlMac [6]byte
	IsBridged     uint8 // 0 or 1
}

var neighborRecordDesc = NewDescriptor[NeighborRecord]("NeighborRecord").
	AddBytes(BytesField[NeighborRecord]{
		Name: "neighbor_al_mac", Size: 6, Format: FormatMAC,
		Get: func(t *NeighborRecord) []byte { return t.NeighborAlMac[:] },
		Set: func(t *NeighborRecord, v []byte) { copy(t.NeighborAlMac[:], v) },
	}).
	AddField(Field[NeighborRecord]{
		Name: "is_bridged", Size: 1, Format: FormatUnsigned,
		Get: func(t *NeighborRecord) uint64 { return uint64(t.IsBridged) },
		Set: func(t *NeighborRecord, v uint64) { t.IsBridged = uint8(v) },
	})

type NeighborDeviceListTlv struct {
	LocalMacAddress [6]byte
	Neighbors       []NeighborRecord
}

func (t *NeighborDeviceListTlv) Type() uint8 { return TlvTypeNeighborDeviceList }

func (t *NeighborDeviceListTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	mac, err := c.readBytes(6)
	if err != nil {
		return err
	}
	copy(t.LocalMacAddress[:], mac)
	neighbors, err := parseRepeated(neighborRecordDesc, c)
	if err != nil {
		return err
	}
	t.Neighbors = neighbors
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *NeighborDeviceListTlv) ForgeBody() ([]byte, error) {
	out := append([]byte(nil), t.LocalMacAddress[:]...)
	return forgeRepeated(neighborRecordDesc, t.Neighbors, out)
}

func (t *NeighborDeviceListTlv) Compare(other Tlv) int {
	o, ok := other.(*NeighborDeviceListTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	if c := compareBytes(t.LocalMacAddress[:], o.LocalMacAddress[:]); c != 0 {
		return c
	}
	return compareRecordSlices(neighborRecordDesc, t.Neighbors, o.Neighbors)
}

// --- Power-off interface list, L2 neighbor list ---

type PowerOffInterfaceTlv struct {
	Macs [][6]byte
}

func (t *PowerOffInterfaceTlv) Type() uint8 { return TlvTypePowerOffInterface }

func (t *PowerOffInterfaceTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	count, err := c.readUint8()
	if err != nil {
		return err
	}
	macs := make([][6]byte, count)
	for i := range macs {
		b, err := c.readBytes(6)
		if err != nil {
			return err
		}
		copy(macs[i][:], b)
	}
	t.Macs = macs
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *PowerOffInterfaceTlv) ForgeBody() ([]byte, error) {
	if len(t.Macs) > 255 {
		return nil, errChildCountLimit
	}
	out := []byte{byte(len(t.Macs))}
	for _, m := range t.Macs {
		out = append(out, m[:]...)
	}
	return out, nil
}

func (t *PowerOffInterfaceTlv) Compare(other Tlv) int {
	o, ok := other.(*PowerOffInterfaceTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return compareMacSlices(t.Macs, o.Macs)
}

type L2NeighborDeviceTlv struct {
	LocalMacAddress [6]byte
	NeighborMacs    [][6]byte
}

func (t *L2NeighborDeviceTlv) Type() uint8 { return TlvTypeL2NeighborDevice }

func (t *L2NeighborDeviceTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	mac, err := c.readBytes(6)
	if err != nil {
		return err
	}
	copy(t.LocalMacAddress[:], mac)
	count, err := c.readUint8()
	if err != nil {
		return err
	}
	macs := make([][6]byte, count)
	for i := range macs {
		b, err := c.readBytes(6)
		if err != nil {
			return err
		}
		copy(macs[i][:], b)
	}
	t.NeighborMacs = macs
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *L2NeighborDeviceTlv) ForgeBody() ([]byte, error) {
	if len(t.NeighborMacs) > 255 {
		return nil, errChildCountLimit
	}
	out := append([]byte(nil), t.LocalMacAddress[:]...)
	out = append(out, byte(len(t.NeighborMacs)))
	for _, m := range t.NeighborMacs {
		out = append(out, m[:]...)
	}
	return out, nil
}

func (t *L2NeighborDeviceTlv) Compare(other Tlv) int {
	o, ok := other.(*L2NeighborDeviceTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	if c := compareBytes(t.LocalMacAddress[:], o.LocalMacAddress[:]); c != 0 {
		return c
	}
	return compareMacSlices(t.NeighborMacs, o.NeighborMacs)
}

// --- Multi-AP: Supported Service, AP Operational BSS ---

const (
	ServiceMultiApController uint8 = 0
	ServiceMultiApAgent      uint8 = 1
)

type SupportedServiceTlv struct {
	Services []uint8
}

func (t *SupportedServiceTlv) Type() uint8 { return TlvTypeSupportedService }

func (t *SupportedServiceTlv) ParseBody(body []byte) error {
	if len(body) < 1 {
		return errLeftoverBytes
	}
	n := int(body[0])
	if len(body) != 1+n {
		return errLeftoverBytes
	}
	t.Services = append([]byte(nil), body[1:]...)
	return nil
}

func (t *SupportedServiceTlv) ForgeBody() ([]byte, error) {
	if len(t.Services) > 255 {
		return nil, errChildCountLimit
	}
	return append([]byte{byte(len(t.Services))}, t.Services...), nil
}

func (t *SupportedServiceTlv) Compare(other Tlv) int {
	o, ok := other.(*SupportedServiceTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return compareBytes(t.Services, o.Services)
}

// ApOperationalBssRecord is one configured BSS on one radio.
type ApOperationalBssRecord struct {
	Bssid [6]byte
	Ssid  []byte
}

// ApOperationalBssRadio groups the BSSes configured on one radio —
// the second level of the TLV grammar's "two fixed child lists" (a
// list of radios, each owning a list of BSSes).
type ApOperationalBssRadio struct {
	RadioUid [6]byte
	Bsses    []ApOperationalBssRecord
}

type ApOperationalBssTlv struct {
	Radios []ApOperationalBssRadio
}

func (t *ApOperationalBssTlv) Type() uint8 { return TlvTypeApOperationalBss }

func (t *ApOperationalBssTlv) ParseBody(body []byte) error {
	c := &cursor{buf: body}
	radioCount, err := c.readUint8()
	if err != nil {
		return err
	}
	radios := make([]ApOperationalBssRadio, radioCount)
	for i := range radios {
		uid, err := c.readBytes(6)
		if err != nil {
			return err
		}
		copy(radios[i].RadioUid[:], uid)
		bssCount, err := c.readUint8()
		if err != nil {
			return err
		}
		bsses := make([]ApOperationalBssRecord, bssCount)
		for j := range bsses {
			bssid, err := c.readBytes(6)
			if err != nil {
				return err
			}
			copy(bsses[j].Bssid[:], bssid)
			ssidLen, err := c.readUint8()
			if err != nil {
				return err
			}
			ssid, err := c.readBytes(int(ssidLen))
			if err != nil {
				return err
			}
			bsses[j].Ssid = ssid
		}
		radios[i].Bsses = bsses
	}
	t.Radios = radios
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}

func (t *ApOperationalBssTlv) ForgeBody() ([]byte, error) {
	if len(t.Radios) > 255 {
		return nil, errChildCountLimit
	}
	out := []byte{byte(len(t.Radios))}
	for _, r := range t.Radios {
		out = append(out, r.RadioUid[:]...)
		if len(r.Bsses) > 255 {
			return nil, errChildCountLimit
		}
		out = append(out, byte(len(r.Bsses)))
		for _, b := range r.Bsses {
			if len(b.Ssid) > 255 {
				return nil, errChildCountLimit
			}
			out = append(out, b.Bssid[:]...)
			out = append(out, byte(len(b.Ssid)))
			out = append(out, b.Ssid...)
		}
	}
	return out, nil
}

func (t *ApOperationalBssTlv) Compare(other Tlv) int {
	o, ok := other.(*ApOperationalBssTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	n := len(t.Radios)
	if len(o.Radios) < n {
		n = len(o.Radios)
	}
	for i := 0; i < n; i++ {
		a, b := t.Radios[i], o.Radios[i]
		if c := compareBytes(a.RadioUid[:], b.RadioUid[:]); c != 0 {
			return c
		}
		m := len(a.Bsses)
		if len(b.Bsses) < m {
			m = len(b.Bsses)
		}
		for j := 0; j < m; j++ {
			if c := compareBytes(a.Bsses[j].Bssid[:], b.Bsses[j].Bssid[:]); c != 0 {
				return c
			}
			if c := compareBytes(a.Bsses[j].Ssid, b.Bsses[j].Ssid); c != 0 {
				return c
			}
		}
		if len(a.Bsses) != len(b.Bsses) {
			if len(a.Bsses) < len(b.Bsses) {
				return -1
			}
			return 1
		}
	}
	if len(t.Radios) != len(o.Radios) {
		if len(t.Radios) < len(o.Radios) {
			return -1
		}
		return 1
	}
	return 0
}

// --- Link metrics ---

// TransmitterLinkMetricTlv reports outbound link quality for one
// neighbor pair of interfaces.
type TransmitterLinkMetricTlv struct {
	LocalAlMac            [6]byte
	NeighborAlMac          [6]byte
	LocalIfMac             [6]byte
	NeighborIfMac          [6]byte
	MediaType              uint16
	Bridge                 uint8
	PacketErrors           uint32
	TransmittedPackets     uint32
	MacThroughputCapacity  uint16
	LinkAvailability       uint16
	PhyRate                uint16
}

var transmitterLinkMetricDesc = NewDescriptor[TransmitterLinkMetricTlv]("TransmitterLinkMetric").
	AddBytes(BytesField[TransmitterLinkMetricTlv]{Name: "local_al_mac", Size: 6, Format: FormatMAC,
		Get: func(t *TransmitterLinkMetricTlv) []byte { return t.LocalAlMac[:] },
		Set: func(t *TransmitterLinkMetricTlv, v []byte) { copy(t.LocalAlMac[:], v) }}).
	AddBytes(BytesField[TransmitterLinkMetricTlv]{Name: "neighbor_al_mac", Size: 6, Format: FormatMAC,
		Get: func(t *TransmitterLinkMetricTlv) []byte { return t.NeighborAlMac[:] },
		Set: func(t *TransmitterLinkMetricTlv, v []byte) { copy(t.NeighborAlMac[:], v) }}).
	AddBytes(BytesField[TransmitterLinkMetricTlv]{Name: "local_if_mac", Size: 6, Format: FormatMAC,
		Get: func(t *TransmitterLinkMetricTlv) []byte { return t.LocalIfMac[:] },
		Set: func(t *TransmitterLinkMetricTlv, v []byte) { copy(t.LocalIfMac[:], v) }}).
	AddBytes(BytesField[TransmitterLinkMetricTlv]{Name: "neighbor_if_mac", Size: 6, Format: FormatMAC,
		Get: func(t *TransmitterLinkMetricTlv) []byte { return t.NeighborIfMac[:] },
		Set: func(t *TransmitterLinkMetricTlv, v []byte) { copy(t.NeighborIfMac[:], v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "media_type", Size: 2, Format: FormatHex,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.MediaType) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.MediaType = uint16(v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "bridge", Size: 1, Format: FormatUnsigned,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.Bridge) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.Bridge = uint8(v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "packet_errors", Size: 4, Format: FormatUnsigned,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.PacketErrors) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.PacketErrors = uint32(v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "transmitted_packets", Size: 4, Format: FormatUnsigned,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.TransmittedPackets) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.TransmittedPackets = uint32(v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "mac_throughput_capacity", Size: 2, Format: FormatUnsigned,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.MacThroughputCapacity) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.MacThroughputCapacity = uint16(v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "link_availability", Size: 2, Format: FormatUnsigned,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.LinkAvailability) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.LinkAvailability = uint16(v) }}).
	AddField(Field[TransmitterLinkMetricTlv]{Name: "phy_rate", Size: 2, Format: FormatUnsigned,
		Get: func(t *TransmitterLinkMetricTlv) uint64 { return uint64(t.PhyRate) },
		Set: func(t *TransmitterLinkMetricTlv, v uint64) { t.PhyRate = uint16(v) }})

func (t *TransmitterLinkMetricTlv) Type() uint8 { return TlvTypeTransmitterLinkMetric }
func (t *TransmitterLinkMetricTlv) ParseBody(body []byte) error {
	return parseFixed(transmitterLinkMetricDesc, t, body)
}
func (t *TransmitterLinkMetricTlv) ForgeBody() ([]byte, error) {
	return transmitterLinkMetricDesc.Forge(t, nil), nil
}
func (t *TransmitterLinkMetricTlv) Compare(other Tlv) int {
	o, ok := other.(*TransmitterLinkMetricTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return transmitterLinkMetricDesc.Compare(t, o)
}

// ReceiverLinkMetricTlv reports inbound link quality.
type ReceiverLinkMetricTlv struct {
	LocalAlMac      [6]byte
	NeighborAlMac   [6]byte
	LocalIfMac      [6]byte
	NeighborIfMac   [6]byte
	MediaType       uint16
	PacketErrors    uint32
	PacketsReceived uint32
	RssiDb          uint8
}

var receiverLinkMetricDesc = NewDescriptor[ReceiverLinkMetricTlv]("ReceiverLinkMetric").
	AddBytes(BytesField[ReceiverLinkMetricTlv]{Name: "local_al_mac", Size: 6, Format: FormatMAC,
		Get: func(t *ReceiverLinkMetricTlv) []byte { return t.LocalAlMac[:] },
		Set: func(t *ReceiverLinkMetricTlv, v []byte) { copy(t.LocalAlMac[:], v) }}).
	AddBytes(BytesField[ReceiverLinkMetricTlv]{Name: "neighbor_al_mac", Size: 6, Format: FormatMAC,
		Get: func(t *ReceiverLinkMetricTlv) []byte { return t.NeighborAlMac[:] },
		Set: func(t *ReceiverLinkMetricTlv, v []byte) { copy(t.NeighborAlMac[:], v) }}).
	AddBytes(BytesField[ReceiverLinkMetricTlv]{Name: "local_if_mac", Size: 6, Format: FormatMAC,
		Get: func(t *ReceiverLinkMetricTlv) []byte { return t.LocalIfMac[:] },
		Set: func(t *ReceiverLinkMetricTlv, v []byte) { copy(t.LocalIfMac[:], v) }}).
	AddBytes(BytesField[ReceiverLinkMetricTlv]{Name: "neighbor_if_mac", Size: 6, Format: FormatMAC,
		Get: func(t *ReceiverLinkMetricTlv) []byte { return t.NeighborIfMac[:] },
		Set: func(t *ReceiverLinkMetricTlv, v []byte) { copy(t.NeighborIfMac[:], v) }}).
	AddField(Field[ReceiverLinkMetricTlv]{Name: "media_type", Size: 2, Format: FormatHex,
		Get: func(t *ReceiverLinkMetricTlv) uint64 { return uint64(t.MediaType) },
		Set: func(t *ReceiverLinkMetricTlv, v uint64) { t.MediaType = uint16(v) }}).
	AddField(Field[ReceiverLinkMetricTlv]{Name: "packet_errors", Size: 4, Format: FormatUnsigned,
		Get: func(t *ReceiverLinkMetricTlv) uint64 { return uint64(t.PacketErrors) },
		Set: func(t *ReceiverLinkMetricTlv, v uint64) { t.PacketErrors = uint32(v) }}).
	AddField(Field[ReceiverLinkMetricTlv]{Name: "packets_received", Size: 4, Format: FormatUnsigned,
		Get: func(t *ReceiverLinkMetricTlv) uint64 { return uint64(t.PacketsReceived) },
		Set: func(t *ReceiverLinkMetricTlv, v uint64) { t.PacketsReceived = uint32(v) }}).
	AddField(Field[ReceiverLinkMetricTlv]{Name: "rssi_db", Size: 1, Format: FormatUnsigned,
		Get: func(t *ReceiverLinkMetricTlv) uint64 { return uint64(t.RssiDb) },
		Set: func(t *ReceiverLinkMetricTlv, v uint64) { t.RssiDb = uint8(v) }})

func (t *ReceiverLinkMetricTlv) Type() uint8 { return TlvTypeReceiverLinkMetric }
func (t *ReceiverLinkMetricTlv) ParseBody(body []byte) error {
	return parseFixed(receiverLinkMetricDesc, t, body)
}
func (t *ReceiverLinkMetricTlv) ForgeBody() ([]byte, error) {
	return receiverLinkMetricDesc.Forge(t, nil), nil
}
func (t *ReceiverLinkMetricTlv) Compare(other Tlv) int {
	o, ok := other.(*ReceiverLinkMetricTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return receiverLinkMetricDesc.Compare(t, o)
}

// LinkMetricResultCodeTlv reports that a link metric query could not
// be satisfied (e.g. unknown neighbor).
type LinkMetricResultCodeTlv struct {
	ResultCode uint8
}

const LinkMetricResultInvalidNeighbor uint8 = 1

var linkMetricResultCodeDesc = NewDescriptor[LinkMetricResultCodeTlv]("LinkMetricResultCode").
	AddField(Field[LinkMetricResultCodeTlv]{Name: "result_code", Size: 1, Format: FormatUnsigned,
		Get: func(t *LinkMetricResultCodeTlv) uint64 { return uint64(t.ResultCode) },
		Set: func(t *LinkMetricResultCodeTlv, v uint64) { t.ResultCode = uint8(v) }})

func (t *LinkMetricResultCodeTlv) Type() uint8 { return TlvTypeLinkMetricResultCode }
func (t *LinkMetricResultCodeTlv) ParseBody(body []byte) error {
	return parseFixed(linkMetricResultCodeDesc, t, body)
}
func (t *LinkMetricResultCodeTlv) ForgeBody() ([]byte, error) {
	return linkMetricResultCodeDesc.Forge(t, nil), nil
}
func (t *LinkMetricResultCodeTlv) Compare(other Tlv) int {
	o, ok := other.(*LinkMetricResultCodeTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return linkMetricResultCodeDesc.Compare(t, o)
}
