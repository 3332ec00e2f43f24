package platform

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prplmesh/go1905/internal/datamodel"
	goerrors "github.com/prplmesh/go1905/pkg/errors"
)

func TestMockRadioEnumeratorReturnsFixedList(t *testing.T) {
	m := &MockRadioEnumerator{Radios: []RadioInfo{{Name: "wlan0"}}}
	radios, err := m.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, radios, 1)
	require.Equal(t, "wlan0", radios[0].Name)
}

func TestMockRadioEnumeratorPropagatesError(t *testing.T) {
	m := &MockRadioEnumerator{Err: goerrors.ResourceError("enumerate", goerrors.New("no netlink"))}
	_, err := m.Enumerate(context.Background())
	require.Error(t, err)
}

func TestMockWifiDriverRecordsAddAPCalls(t *testing.T) {
	m := &MockWifiDriver{NextBSSID: [6]byte{1, 2, 3, 4, 5, 6}}
	info := datamodel.BssInfo{SSID: "test", Fronthaul: true}
	iface, err := m.AddAP(context.Background(), [6]byte{9}, info)
	require.NoError(t, err)
	require.Equal(t, m.NextBSSID, iface.BSSID)
	require.Len(t, m.AddAPCalls, 1)
	require.Equal(t, info, m.AddAPCalls[0].Info)
}

func TestMockWifiDriverAddAPFailure(t *testing.T) {
	m := &MockWifiDriver{FailAddAP: goerrors.New("driver busy")}
	_, err := m.AddAP(context.Background(), [6]byte{9}, datamodel.BssInfo{})
	require.Error(t, err)
	kind, ok := goerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, goerrors.KindDriver, kind)
}

func TestMockWifiDriverTearDownRecordsIface(t *testing.T) {
	m := &MockWifiDriver{}
	require.NoError(t, m.TearDown(context.Background(), [6]byte{1}))
	require.Equal(t, [][6]byte{{1}}, m.TornDown)
}

func TestMockWscEngineEchoesM1WhenNoFixedM2(t *testing.T) {
	m := &MockWscEngine{}
	out, err := m.BuildM2(context.Background(), datamodel.WscRegistrarInfo{SSID: "net"}, []byte("m1-bytes"))
	require.NoError(t, err)
	require.Contains(t, string(out), "net")
	require.Contains(t, string(out), "m1-bytes")
}

func TestMockWscEngineReturnsFixedM2(t *testing.T) {
	m := &MockWscEngine{M2: []byte("fixed-m2")}
	out, err := m.BuildM2(context.Background(), datamodel.WscRegistrarInfo{}, []byte("m1"))
	require.NoError(t, err)
	require.Equal(t, []byte("fixed-m2"), out)
}

func TestLogSinkFormatsKeyValues(t *testing.T) {
	var got string
	log := NewLogSink(func(level int, format string, args ...any) {
		got = fmt.Sprintf(format, args...)
	})
	log.WithName("sub").Info("hello", "k", "v")
	require.Contains(t, got, "sub")
	require.Contains(t, got, "k=v")
}
