package topology

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/prplmesh/go1905/internal/datamodel"
	"github.com/prplmesh/go1905/internal/dispatch"
	"github.com/prplmesh/go1905/internal/metrics"
	"github.com/prplmesh/go1905/internal/wire"
)

type fakeTransport struct {
	sent      [][]byte
	localMacs map[string][6]byte
}

func (f *fakeTransport) Send(ifaceName string, frame []byte) error {
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeTransport) LocalMAC(ifaceName string) ([6]byte, error) {
	return f.localMacs[ifaceName], nil
}

func mac(b byte) [6]byte { return [6]byte{b, b, b, b, b, b} }

func newTestManager(t *testing.T) (*Manager, *datamodel.Context, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{localMacs: map[string][6]byte{"eth0": mac(1)}}
	d := dispatch.NewDispatcher(dispatch.Options{
		Logger:    logr.Discard(),
		Metrics:   metrics.NewForTest(),
		Transport: tr,
		ALMac:     mac(1),
	})
	ctx := datamodel.NewContext()
	ctx.SetLocalDevice(&datamodel.AlDevice{ALMac: mac(1)})
	m := NewManager(Options{
		Logger:     logr.Discard(),
		Context:    ctx,
		Dispatcher: d,
		Interfaces: []string{"eth0"},
	})
	return m, ctx, tr
}

func deliverDiscovery(t *testing.T, d *dispatch.Dispatcher, srcMac [6]byte, alMac [6]byte, mid uint16) {
	t.Helper()
	tlvs := []wire.Tlv{
		&wire.AlMacAddressTlv{AlMacAddress: alMac},
		&wire.MacAddressTlv{MacAddress: srcMac},
	}
	frags, err := wire.Fragments(wire.MsgTopologyDiscovery, mid, true, tlvs, 1486)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	frame := wire.ForgeFrame(wire.MulticastAddress, srcMac, frags[0].Header, frags[0].Payload)
	d.HandleFrame(context.Background(), time.Now(), "eth0", frame)
}

func TestFirstDiscoveryAddsDeviceAndSendsQuery(t *testing.T) {
	m, ctx, tr := newTestManager(t)
	peer := mac(2)

	deliverDiscovery(t, mockDispatcher(m), peer, peer, 1)

	_, d, ok := ctx.FindDeviceByMac(peer)
	require.True(t, ok)
	require.Equal(t, datamodel.StateDiscovered, d.State)
	require.Len(t, tr.sent, 1, "expected one probing topology query sent")
}

func TestRepeatedDiscoveryDoesNotRequery(t *testing.T) {
	m, ctx, tr := newTestManager(t)
	peer := mac(2)
	disp := mockDispatcher(m)

	deliverDiscovery(t, disp, peer, peer, 1)
	require.Len(t, tr.sent, 1)

	// A fresh MID, so the dispatcher's dedup window does not drop it
	// before the discovery handler sees it.
	deliverDiscovery(t, disp, peer, peer, 2)
	require.Len(t, tr.sent, 1, "second discovery from an already-discovered peer must not re-query")

	_, d, ok := ctx.FindDeviceByMac(peer)
	require.True(t, ok)
	require.Equal(t, datamodel.StateDiscovered, d.State)
}

func TestHandleQuerySendsResponseWithRequiredTlvSet(t *testing.T) {
	m, ctx, tr := newTestManager(t)
	localH, _, ok := ctx.FindDeviceByMac(mac(1))
	require.True(t, ok)
	ctx.AddInterface(localH, &datamodel.Interface{MAC: mac(1), MediaType: 0x0100})

	disp := mockDispatcher(m)
	peer := mac(3)
	tlvs := []wire.Tlv{}
	frags, err := wire.Fragments(wire.MsgTopologyQuery, 5, false, tlvs, 1486)
	require.NoError(t, err)
	frame := wire.ForgeFrame(mac(1), peer, frags[0].Header, frags[0].Payload)
	disp.HandleFrame(context.Background(), time.Now(), "eth0", frame)

	require.Len(t, tr.sent, 1)
	f, err := wire.ParseFrame(tr.sent[0])
	require.NoError(t, err)
	require.Equal(t, wire.MsgTopologyResponse, f.Header.MessageType)

	got, err := wire.ParseList(wire.StandardRegistry(), f.Payload)
	require.NoError(t, err)
	var types []uint8
	for _, tlv := range got {
		types = append(types, tlv.Type())
	}
	require.Equal(t, []uint8{
		wire.TlvTypeDeviceInformation,
		wire.TlvTypeDeviceBridgingCapability,
		wire.TlvTypeNon1905NeighborDeviceList,
		wire.TlvTypePowerOffInterface,
		wire.TlvTypeL2NeighborDevice,
		wire.TlvTypeSupportedService,
		wire.TlvTypeApOperationalBss,
	}, types)
}

func TestAgeDevicesTransitionsDiscoveredToStaleToGone(t *testing.T) {
	m, ctx, _ := newTestManager(t)
	peer := mac(2)
	h := ctx.AddDevice(&datamodel.AlDevice{ALMac: peer, State: datamodel.StateDiscovered, LastSeen: time.Now()})

	base := time.Now()
	m.ageDevices(base)
	d, ok := ctx.Device(h)
	require.True(t, ok)
	require.Equal(t, datamodel.StateDiscovered, d.State)

	m.ageDevices(base.Add(DiscoveredTimeout + time.Second))
	d, ok = ctx.Device(h)
	require.True(t, ok)
	require.Equal(t, datamodel.StateStale, d.State)

	m.ageDevices(base.Add(GoneTimeout + time.Second))
	_, ok = ctx.Device(h)
	require.False(t, ok, "device must be removed once past the gone timeout")
}

func TestNotifyLocalChangeSendsOnEveryInterface(t *testing.T) {
	m, _, tr := newTestManager(t)
	err := m.NotifyLocalChange(context.Background())
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
}

func TestNotifyPushButtonEventSendsOnEveryInterface(t *testing.T) {
	m, _, tr := newTestManager(t)
	err := m.NotifyPushButtonEvent(context.Background(), []uint8{0, 1})
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
}

// mockDispatcher exposes the *dispatch.Dispatcher the Manager registered
// its handlers on, for tests to feed frames into directly.
func mockDispatcher(m *Manager) *dispatch.Dispatcher {
	return m.disp
}
