// Package platform holds the external traits spec.md section 1 and 6
// name as out-of-scope collaborators — WifiDriver, RadioEnumerator, and
// the debug-logging sink — plus mock implementations that the
// autoconfig tests and cmd/al1905d use, since the real netlink/ubus
// backends are explicitly not part of this core (spec.md section 1,
// "Out of scope").
package platform

import (
	"context"
	"fmt"

	"github.com/prplmesh/go1905/internal/datamodel"
	goerrors "github.com/prplmesh/go1905/pkg/errors"
)

// RadioInfo is one enumerated radio, matching the tuple spec.md section
// 6 names: "{uid, name, index, bands, max_ap_stations, max_bss,
// monitor, antennas_rx, antennas_tx}".
type RadioInfo struct {
	UID           [6]byte
	Name          string
	Index         int
	Bands         []datamodel.Band
	MaxAPStations int
	MaxBSS        int
	Monitor       bool
	AntennasRx    int
	AntennasTx    int
}

// RadioEnumerator lists the local radios, called once at startup and on
// demand after configuration changes (spec.md section 6).
type RadioEnumerator interface {
	Enumerate(ctx context.Context) ([]RadioInfo, error)
}

// WifiDriver configures APs and STAs on a radio (spec.md section 6).
// All operations are synchronous and idempotent with respect to the
// underlying system configuration store.
type WifiDriver interface {
	AddAP(ctx context.Context, radio [6]byte, info datamodel.BssInfo) (datamodel.InterfaceWifi, error)
	AddSTA(ctx context.Context, radio [6]byte, info datamodel.BssInfo) (datamodel.InterfaceWifi, error)
	SetBackhaulSSID(ctx context.Context, radio [6]byte, ssid, key string) error
	TearDown(ctx context.Context, iface [6]byte) error
}

// WscEngine builds an M2 response from a registered band's credentials
// and the peer's M1 (spec.md section 4.6). The core treats both payloads
// as opaque; only the external engine understands WSC internals.
type WscEngine interface {
	BuildM2(ctx context.Context, info datamodel.WscRegistrarInfo, m1 []byte) ([]byte, error)
}

// MockRadioEnumerator returns a fixed radio list, for tests and for a
// development build with no netlink backend wired up.
type MockRadioEnumerator struct {
	Radios []RadioInfo
	Err    error
}

func (m *MockRadioEnumerator) Enumerate(ctx context.Context) ([]RadioInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Radios, nil
}

// MockWifiDriver records every call it receives instead of touching any
// real configuration store; used by internal/autoconfig tests and by
// cmd/al1905d.
type MockWifiDriver struct {
	AddAPCalls  []struct {
		Radio [6]byte
		Info  datamodel.BssInfo
	}
	AddSTACalls []struct {
		Radio [6]byte
		Info  datamodel.BssInfo
	}
	TornDown []  [6]byte
	NextBSSID  [6]byte
	FailAddAP  error
}

func (m *MockWifiDriver) AddAP(ctx context.Context, radio [6]byte, info datamodel.BssInfo) (datamodel.InterfaceWifi, error) {
	if m.FailAddAP != nil {
		return datamodel.InterfaceWifi{}, goerrors.DriverError("AddAP", m.FailAddAP)
	}
	m.AddAPCalls = append(m.AddAPCalls, struct {
		Radio [6]byte
		Info  datamodel.BssInfo
	}{radio, info})
	return datamodel.InterfaceWifi{BSSID: m.NextBSSID, Info: info}, nil
}

func (m *MockWifiDriver) AddSTA(ctx context.Context, radio [6]byte, info datamodel.BssInfo) (datamodel.InterfaceWifi, error) {
	m.AddSTACalls = append(m.AddSTACalls, struct {
		Radio [6]byte
		Info  datamodel.BssInfo
	}{radio, info})
	return datamodel.InterfaceWifi{BSSID: m.NextBSSID, Info: info}, nil
}

func (m *MockWifiDriver) SetBackhaulSSID(ctx context.Context, radio [6]byte, ssid, key string) error {
	return nil
}

func (m *MockWifiDriver) TearDown(ctx context.Context, iface [6]byte) error {
	m.TornDown = append(m.TornDown, iface)
	return nil
}

// MockWscEngine returns a fixed M2 payload, or echoes M1 back if none
// is set, so tests can assert the glue code forwarded the right bytes
// without depending on real WSC crypto.
type MockWscEngine struct {
	M2 []byte
}

func (m *MockWscEngine) BuildM2(ctx context.Context, info datamodel.WscRegistrarInfo, m1 []byte) ([]byte, error) {
	if m.M2 != nil {
		return m.M2, nil
	}
	return append([]byte(fmt.Sprintf("m2:%s:", info.SSID)), m1...), nil
}
