package autoconfig

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/prplmesh/go1905/internal/datamodel"
	"github.com/prplmesh/go1905/internal/dispatch"
	"github.com/prplmesh/go1905/internal/metrics"
	"github.com/prplmesh/go1905/internal/platform"
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

func newEnrollee(t *testing.T, radioUID [6]byte, band uint8) (*Manager, *dispatch.Dispatcher, *fakeTransport, *platform.MockWifiDriver) {
	t.Helper()
	tr := &fakeTransport{localMacs: map[string][6]byte{"eth0": mac(1)}}
	d := dispatch.NewDispatcher(dispatch.Options{
		Logger: logr.Discard(), Metrics: metrics.NewForTest(), Transport: tr, ALMac: mac(1),
	})
	ctx := datamodel.NewContext()
	ctx.SetLocalDevice(&datamodel.AlDevice{ALMac: mac(1)})
	drv := &platform.MockWifiDriver{}
	enum := &platform.MockRadioEnumerator{Radios: []platform.RadioInfo{
		{UID: radioUID, Bands: []datamodel.Band{datamodel.Band(band)}},
	}}
	m := NewManager(Options{
		Logger: logr.Discard(), Context: ctx, Dispatcher: d,
		Enumerator: enum, Driver: drv, Interfaces: []string{"eth0"},
	})
	require.NoError(t, m.Discover(context.Background()))
	return m, d, tr, drv
}

func newRegistrar(t *testing.T, band uint8, ssid string) (*Manager, *dispatch.Dispatcher, *fakeTransport, *platform.MockWscEngine) {
	t.Helper()
	tr := &fakeTransport{localMacs: map[string][6]byte{"eth0": mac(2)}}
	d := dispatch.NewDispatcher(dispatch.Options{
		Logger: logr.Discard(), Metrics: metrics.NewForTest(), Transport: tr, ALMac: mac(2),
	})
	ctx := datamodel.NewContext()
	ctx.SetLocalDevice(&datamodel.AlDevice{ALMac: mac(2)})
	*ctx.Registrar() = datamodel.Registrar{
		Enabled: true,
		Infos:   []datamodel.WscRegistrarInfo{{Band: datamodel.Band(band), SSID: ssid, AuthMode: datamodel.AuthOpen}},
	}
	wsc := &platform.MockWscEngine{}
	m := NewManager(Options{
		Logger: logr.Discard(), Context: ctx, Dispatcher: d,
		Wsc: wsc, Interfaces: []string{"eth0"},
	})
	return m, d, tr, wsc
}

func TestPollSendsSearchForUnconfiguredRadio(t *testing.T) {
	m, _, tr, _ := newEnrollee(t, mac(10), 1)
	m.Poll(context.Background(), time.Now())
	require.Len(t, tr.sent, 1)
	f, err := wire.ParseFrame(tr.sent[0])
	require.NoError(t, err)
	require.Equal(t, wire.MsgApAutoconfigSearch, f.Header.MessageType)
}

func TestPollDoesNotResendBeforeInterval(t *testing.T) {
	m, _, tr, _ := newEnrollee(t, mac(10), 1)
	now := time.Now()
	m.Poll(context.Background(), now)
	require.Len(t, tr.sent, 1)
	m.Poll(context.Background(), now.Add(time.Second))
	require.Len(t, tr.sent, 1, "must not resend before SearchInterval elapses")
}

func TestRegistrarAnswersSearchForSupportedBand(t *testing.T) {
	m, d, tr, _ := newRegistrar(t, 1, "test-ssid")
	_ = m

	tlvs := []wire.Tlv{
		&wire.AlMacAddressTlv{AlMacAddress: mac(1)},
		&wire.SearchedRoleTlv{Role: wire.RoleRegistrar},
		&wire.AutoconfigFreqBandTlv{Band: 1},
	}
	frags, err := wire.Fragments(wire.MsgApAutoconfigSearch, 1, false, tlvs, 1486)
	require.NoError(t, err)
	frame := wire.ForgeFrame(wire.MulticastAddress, mac(1), frags[0].Header, frags[0].Payload)
	d.HandleFrame(context.Background(), time.Now(), "eth0", frame)

	require.Len(t, tr.sent, 1)
	f, err := wire.ParseFrame(tr.sent[0])
	require.NoError(t, err)
	require.Equal(t, wire.MsgApAutoconfigResponse, f.Header.MessageType)
}

func TestRegistrarIgnoresSearchForUnsupportedBand(t *testing.T) {
	_, d, tr, _ := newRegistrar(t, 1, "test-ssid")

	tlvs := []wire.Tlv{
		&wire.SearchedRoleTlv{Role: wire.RoleRegistrar},
		&wire.AutoconfigFreqBandTlv{Band: 2},
	}
	frags, err := wire.Fragments(wire.MsgApAutoconfigSearch, 1, false, tlvs, 1486)
	require.NoError(t, err)
	frame := wire.ForgeFrame(wire.MulticastAddress, mac(1), frags[0].Header, frags[0].Payload)
	d.HandleFrame(context.Background(), time.Now(), "eth0", frame)

	require.Empty(t, tr.sent)
}

func TestFullHandshakeConfiguresLocalAP(t *testing.T) {
	enrollee, enrolleeDisp, enrolleeTr, drv := newEnrollee(t, mac(10), 1)
	_, registrarDisp, registrarTr, _ := newRegistrar(t, 1, "test-ssid")

	now := time.Now()
	enrollee.Poll(context.Background(), now)
	require.Len(t, enrolleeTr.sent, 1)

	searchFrame := enrolleeTr.sent[0]
	registrarDisp.HandleFrame(context.Background(), now, "eth0", searchFrame)
	require.Len(t, registrarTr.sent, 1, "registrar must answer the search")

	responseFrame := registrarTr.sent[0]
	enrolleeDisp.HandleFrame(context.Background(), now, "eth0", responseFrame)
	require.Len(t, enrolleeTr.sent, 2, "enrollee must send WSC M1 on response")

	m1Frame := enrolleeTr.sent[1]
	registrarDisp.HandleFrame(context.Background(), now, "eth0", m1Frame)
	require.Len(t, registrarTr.sent, 2, "registrar must answer with WSC M2")

	m2Frame := registrarTr.sent[1]
	enrolleeDisp.HandleFrame(context.Background(), now, "eth0", m2Frame)

	require.Len(t, drv.AddAPCalls, 1)
}
