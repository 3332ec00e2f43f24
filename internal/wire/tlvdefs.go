package wire

// TLV wire types for the subset of 1905/Multi-AP TLVs this core
// understands natively. Everything else round-trips through
// UnknownTlv (spec.md 4.2 — this is also how vendor-specific TLVs,
// explicitly out of scope per spec.md section 1, are carried).
const (
	TlvTypeAlMacAddress              uint8 = 1
	TlvTypeMacAddress                uint8 = 2
	TlvTypeDeviceInformation         uint8 = 3
	TlvTypeDeviceBridgingCapability  uint8 = 4
	TlvTypeNon1905NeighborDeviceList uint8 = 6
	TlvTypeNeighborDeviceList        uint8 = 7
	TlvTypeLinkMetricQuery           uint8 = 8
	TlvTypeTransmitterLinkMetric     uint8 = 9
	TlvTypeReceiverLinkMetric        uint8 = 10
	TlvTypeLinkMetricResultCode      uint8 = 12
	TlvTypeSearchedRole              uint8 = 13
	TlvTypeAutoconfigFreqBand        uint8 = 14
	TlvTypeSupportedRole             uint8 = 15
	TlvTypeSupportedFreqBand         uint8 = 16
	TlvTypeWsc                       uint8 = 17
	TlvTypePushButtonEventNotif      uint8 = 18
	TlvTypePowerOffInterface         uint8 = 20
	TlvTypeL2NeighborDevice          uint8 = 21
	TlvTypeSupportedService          uint8 = 22
	TlvTypeApOperationalBss          uint8 = 23
)

// Link metric query neighbor-type and link-metrics-requested values
// (spec.md section 8, scenarios 1 and 2).
const (
	NeighborTypeAllNeighbors  uint8 = 0
	NeighborTypeSpecific      uint8 = 1
	LinkMetricsTxOnly         uint8 = 0
	LinkMetricsRxOnly         uint8 = 1
	LinkMetricsBothTxAndRx    uint8 = 2
)

// StandardRegistry returns a Registry populated with every TLV type
// this package knows how to parse/forge natively.
func StandardRegistry() Registry {
	return Registry{
		TlvTypeAlMacAddress:              func() Tlv { return &AlMacAddressTlv{} },
		TlvTypeMacAddress:                func() Tlv { return &MacAddressTlv{} },
		TlvTypeDeviceInformation:         func() Tlv { return &DeviceInformationTlv{} },
		TlvTypeDeviceBridgingCapability:  func() Tlv { return &DeviceBridgingCapabilityTlv{} },
		TlvTypeNon1905NeighborDeviceList: func() Tlv { return &Non1905NeighborDeviceListTlv{} },
		TlvTypeNeighborDeviceList:        func() Tlv { return &NeighborDeviceListTlv{} },
		TlvTypeLinkMetricQuery:           func() Tlv { return &LinkMetricQueryTlv{} },
		TlvTypeTransmitterLinkMetric:     func() Tlv { return &TransmitterLinkMetricTlv{} },
		TlvTypeReceiverLinkMetric:        func() Tlv { return &ReceiverLinkMetricTlv{} },
		TlvTypeLinkMetricResultCode:      func() Tlv { return &LinkMetricResultCodeTlv{} },
		TlvTypeSearchedRole:              func() Tlv { return &SearchedRoleTlv{} },
		TlvTypeAutoconfigFreqBand:        func() Tlv { return &AutoconfigFreqBandTlv{} },
		TlvTypeSupportedRole:             func() Tlv { return &SupportedRoleTlv{} },
		TlvTypeSupportedFreqBand:         func() Tlv { return &SupportedFreqBandTlv{} },
		TlvTypeWsc:                       func() Tlv { return &WscTlv{} },
		TlvTypePushButtonEventNotif:      func() Tlv { return &PushButtonEventNotifTlv{} },
		TlvTypePowerOffInterface:         func() Tlv { return &PowerOffInterfaceTlv{} },
		TlvTypeL2NeighborDevice:          func() Tlv { return &L2NeighborDeviceTlv{} },
		TlvTypeSupportedService:          func() Tlv { return &SupportedServiceTlv{} },
		TlvTypeApOperationalBss:          func() Tlv { return &ApOperationalBssTlv{} },
	}
}
