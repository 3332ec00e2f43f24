package wire

// AlMacAddressTlv carries the sending AL's 48-bit identity. Present on
// Topology Discovery and Topology Notification (spec.md 4.5).
type AlMacAddressTlv struct {
	AlMacAddress [6]byte
}

var alMacAddressDesc = NewDescriptor[AlMacAddressTlv]("AlMacAddress").
	AddBytes(BytesField[AlMacAddressTlv]{
		Name: "al_mac_address", Size: 6, Format: FormatMAC,
		Get: func(t *AlMacAddressTlv) []byte { return t.AlMacAddress[:] },
		Set: func(t *AlMacAddressTlv, v []byte) { copy(t.AlMacAddress[:], v) },
	})

func (t *AlMacAddressTlv) Type() uint8 { return TlvTypeAlMacAddress }
func (t *AlMacAddressTlv) ParseBody(body []byte) error {
	return parseFixed(alMacAddressDesc, t, body)
}
func (t *AlMacAddressTlv) ForgeBody() ([]byte, error) { return alMacAddressDesc.Forge(t, nil), nil }
func (t *AlMacAddressTlv) Compare(other Tlv) int {
	o, ok := other.(*AlMacAddressTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return alMacAddressDesc.Compare(t, o)
}

// MacAddressTlv carries the MAC of the interface the CMDU was sent on
// (Topology Discovery).
type MacAddressTlv struct {
	MacAddress [6]byte
}

var macAddressDesc = NewDescriptor[MacAddressTlv]("MacAddress").
	AddBytes(BytesField[MacAddressTlv]{
		Name: "mac_address", Size: 6, Format: FormatMAC,
		Get: func(t *MacAddressTlv) []byte { return t.MacAddress[:] },
		Set: func(t *MacAddressTlv, v []byte) { copy(t.MacAddress[:], v) },
	})

func (t *MacAddressTlv) Type() uint8               { return TlvTypeMacAddress }
func (t *MacAddressTlv) ParseBody(body []byte) error { return parseFixed(macAddressDesc, t, body) }
func (t *MacAddressTlv) ForgeBody() ([]byte, error)  { return macAddressDesc.Forge(t, nil), nil }
func (t *MacAddressTlv) Compare(other Tlv) int {
	o, ok := other.(*MacAddressTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return macAddressDesc.Compare(t, o)
}

// LinkMetricQueryTlv requests link metrics for all neighbors or one
// specific neighbor (spec.md section 8, scenarios 1-2). The descriptor
// models a fixed 8-byte record — neighbor type, neighbor MAC, metrics
// requested — rather than the variable-length shape a conditional-MAC
// encoding would need, matching both given test vectors exactly: when
// NeighborType is "all", NeighborMac is carried but not meaningful, and
// must still round-trip byte-for-byte (spec.md's forge-equals-wire
// contract leaves no room to canonicalize it away).
type LinkMetricQueryTlv struct {
	NeighborType         uint8
	NeighborMac          [6]byte
	LinkMetricsRequested uint8
}

var linkMetricQueryDesc = NewDescriptor[LinkMetricQueryTlv]("LinkMetricQuery").
	AddField(Field[LinkMetricQueryTlv]{
		Name: "neighbor_type", Size: 1, Format: FormatUnsigned,
		Get: func(t *LinkMetricQueryTlv) uint64 { return uint64(t.NeighborType) },
		Set: func(t *LinkMetricQueryTlv, v uint64) { t.NeighborType = uint8(v) },
	}).
	AddBytes(BytesField[LinkMetricQueryTlv]{
		Name: "neighbor_mac", Size: 6, Format: FormatMAC,
		Get: func(t *LinkMetricQueryTlv) []byte { return t.NeighborMac[:] },
		Set: func(t *LinkMetricQueryTlv, v []byte) { copy(t.NeighborMac[:], v) },
	}).
	AddField(Field[LinkMetricQueryTlv]{
		Name: "link_metrics_requested", Size: 1, Format: FormatUnsigned,
		Get: func(t *LinkMetricQueryTlv) uint64 { return uint64(t.LinkMetricsRequested) },
		Set: func(t *LinkMetricQueryTlv, v uint64) { t.LinkMetricsRequested = uint8(v) },
	})

func (t *LinkMetricQueryTlv) Type() uint8 { return TlvTypeLinkMetricQuery }
func (t *LinkMetricQueryTlv) ParseBody(body []byte) error {
	return parseFixed(linkMetricQueryDesc, t, body)
}
func (t *LinkMetricQueryTlv) ForgeBody() ([]byte, error) {
	return linkMetricQueryDesc.Forge(t, nil), nil
}
func (t *LinkMetricQueryTlv) Compare(other Tlv) int {
	o, ok := other.(*LinkMetricQueryTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return linkMetricQueryDesc.Compare(t, o)
}

// SearchedRoleTlv and SupportedRoleTlv carry the single defined role
// value (0x00 = registrar) per the AP-autoconfiguration handshake.
type SearchedRoleTlv struct{ Role uint8 }
type SupportedRoleTlv struct{ Role uint8 }

const RoleRegistrar uint8 = 0

var searchedRoleDesc = NewDescriptor[SearchedRoleTlv]("SearchedRole").
	AddField(Field[SearchedRoleTlv]{Name: "role", Size: 1, Format: FormatUnsigned,
		Get: func(t *SearchedRoleTlv) uint64 { return uint64(t.Role) },
		Set: func(t *SearchedRoleTlv, v uint64) { t.Role = uint8(v) }})

func (t *SearchedRoleTlv) Type() uint8                 { return TlvTypeSearchedRole }
func (t *SearchedRoleTlv) ParseBody(body []byte) error { return parseFixed(searchedRoleDesc, t, body) }
func (t *SearchedRoleTlv) ForgeBody() ([]byte, error)  { return searchedRoleDesc.Forge(t, nil), nil }
func (t *SearchedRoleTlv) Compare(other Tlv) int {
	o, ok := other.(*SearchedRoleTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return searchedRoleDesc.Compare(t, o)
}

var supportedRoleDesc = NewDescriptor[SupportedRoleTlv]("SupportedRole").
	AddField(Field[SupportedRoleTlv]{Name: "role", Size: 1, Format: FormatUnsigned,
		Get: func(t *SupportedRoleTlv) uint64 { return uint64(t.Role) },
		Set: func(t *SupportedRoleTlv, v uint64) { t.Role = uint8(v) }})

func (t *SupportedRoleTlv) Type() uint8 { return TlvTypeSupportedRole }
func (t *SupportedRoleTlv) ParseBody(body []byte) error {
	return parseFixed(supportedRoleDesc, t, body)
}
func (t *SupportedRoleTlv) ForgeBody() ([]byte, error) { return supportedRoleDesc.Forge(t, nil), nil }
func (t *SupportedRoleTlv) Compare(other Tlv) int {
	o, ok := other.(*SupportedRoleTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return supportedRoleDesc.Compare(t, o)
}

// RF band values for AutoconfigFreqBandTlv / SupportedFreqBandTlv
// (spec.md section 6, registrar_bands).
const (
	Band2_4GHz uint8 = 0
	Band5GHz   uint8 = 1
	Band60GHz  uint8 = 2
)

type AutoconfigFreqBandTlv struct{ Band uint8 }
type SupportedFreqBandTlv struct{ Band uint8 }

var autoconfigFreqBandDesc = NewDescriptor[AutoconfigFreqBandTlv]("AutoconfigFreqBand").
	AddField(Field[AutoconfigFreqBandTlv]{Name: "band", Size: 1, Format: FormatUnsigned,
		Get: func(t *AutoconfigFreqBandTlv) uint64 { return uint64(t.Band) },
		Set: func(t *AutoconfigFreqBandTlv, v uint64) { t.Band = uint8(v) }})

func (t *AutoconfigFreqBandTlv) Type() uint8 { return TlvTypeAutoconfigFreqBand }
func (t *AutoconfigFreqBandTlv) ParseBody(body []byte) error {
	return parseFixed(autoconfigFreqBandDesc, t, body)
}
func (t *AutoconfigFreqBandTlv) ForgeBody() ([]byte, error) {
	return autoconfigFreqBandDesc.Forge(t, nil), nil
}
func (t *AutoconfigFreqBandTlv) Compare(other Tlv) int {
	o, ok := other.(*AutoconfigFreqBandTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return autoconfigFreqBandDesc.Compare(t, o)
}

var supportedFreqBandDesc = NewDescriptor[SupportedFreqBandTlv]("SupportedFreqBand").
	AddField(Field[SupportedFreqBandTlv]{Name: "band", Size: 1, Format: FormatUnsigned,
		Get: func(t *SupportedFreqBandTlv) uint64 { return uint64(t.Band) },
		Set: func(t *SupportedFreqBandTlv, v uint64) { t.Band = uint8(v) }})

func (t *SupportedFreqBandTlv) Type() uint8 { return TlvTypeSupportedFreqBand }
func (t *SupportedFreqBandTlv) ParseBody(body []byte) error {
	return parseFixed(supportedFreqBandDesc, t, body)
}
func (t *SupportedFreqBandTlv) ForgeBody() ([]byte, error) {
	return supportedFreqBandDesc.Forge(t, nil), nil
}
func (t *SupportedFreqBandTlv) Compare(other Tlv) int {
	o, ok := other.(*SupportedFreqBandTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return supportedFreqBandDesc.Compare(t, o)
}

// WscTlv carries an opaque WSC M1/M2 blob, produced and consumed by the
// external WSC engine trait (spec.md section 4.6). The core never
// inspects its contents.
type WscTlv struct {
	Payload []byte
}

func (t *WscTlv) Type() uint8 { return TlvTypeWsc }
func (t *WscTlv) ParseBody(body []byte) error {
	t.Payload = append([]byte(nil), body...)
	return nil
}
func (t *WscTlv) ForgeBody() ([]byte, error) { return append([]byte(nil), t.Payload...), nil }
func (t *WscTlv) Compare(other Tlv) int {
	o, ok := other.(*WscTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return compareBytes(t.Payload, o.Payload)
}

// PushButtonEventNotifTlv carries the RF bands a push-button event was
// triggered for (spec.md section 13 supplemented feature).
type PushButtonEventNotifTlv struct {
	Bands []uint8
}

func (t *PushButtonEventNotifTlv) Type() uint8 { return TlvTypePushButtonEventNotif }
func (t *PushButtonEventNotifTlv) ParseBody(body []byte) error {
	if len(body) < 1 {
		return errLeftoverBytes
	}
	n := int(body[0])
	if len(body) != 1+n {
		return errLeftoverBytes
	}
	t.Bands = append([]byte(nil), body[1:]...)
	return nil
}
func (t *PushButtonEventNotifTlv) ForgeBody() ([]byte, error) {
	out := append([]byte{byte(len(t.Bands))}, t.Bands...)
	return out, nil
}
func (t *PushButtonEventNotifTlv) Compare(other Tlv) int {
	o, ok := other.(*PushButtonEventNotifTlv)
	if !ok {
		return compareTypes(t.Type(), other.Type())
	}
	return compareBytes(t.Bands, o.Bands)
}

// parseFixed consumes body with d and requires it be consumed exactly
// — the "leftover bytes inside the TLV body" failure mode from spec.md
// section 4.2.
func parseFixed[T any](d *Descriptor[T], t *T, body []byte) error {
	c := &cursor{buf: body}
	if err := d.Parse(t, c); err != nil {
		return err
	}
	if c.remaining() != 0 {
		return errLeftoverBytes
	}
	return nil
}
