package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/prplmesh/go1905/internal/metrics"
	"github.com/prplmesh/go1905/internal/wire"
	goerrors "github.com/prplmesh/go1905/pkg/errors"
)

// fakeTransport is an in-memory Transport: Send appends to Sent and
// Recv is never called by HandleFrame directly in these tests (the
// poll loop that would call Recv lives in cmd/al1905d).
type fakeTransport struct {
	Sent      [][]byte
	LocalMacs map[string][6]byte
	FailN     int // fail the next N sends with a retryable error
}

func (f *fakeTransport) Send(ifaceName string, frame []byte) error {
	if f.FailN > 0 {
		f.FailN--
		return goerrors.NewRetryable("would block")
	}
	f.Sent = append(f.Sent, frame)
	return nil
}

func (f *fakeTransport) LocalMAC(ifaceName string) ([6]byte, error) {
	return f.LocalMacs[ifaceName], nil
}

func mac(b byte) [6]byte { return [6]byte{b, b, b, b, b, b} }

func newTestDispatcher(t *testing.T, tr Transport) *Dispatcher {
	t.Helper()
	return NewDispatcher(Options{
		Logger:  logr.Discard(),
		Metrics: metrics.NewForTest(),
		Transport: tr,
		ALMac:   mac(1),
	})
}

func TestSendAllocatesMIDWhenNil(t *testing.T) {
	tr := &fakeTransport{LocalMacs: map[string][6]byte{"eth0": mac(2)}}
	d := newTestDispatcher(t, tr)

	mid, err := d.Send(context.Background(), "eth0", wire.MulticastAddress, wire.MsgTopologyQuery, nil, false, nil, 1500)
	require.NoError(t, err)
	require.EqualValues(t, 0, mid)
	require.Len(t, tr.Sent, 1)

	mid2, err := d.Send(context.Background(), "eth0", wire.MulticastAddress, wire.MsgTopologyQuery, nil, false, nil, 1500)
	require.NoError(t, err)
	require.EqualValues(t, 1, mid2)
}

func TestSendRetriesOnRetryableErrorThenSucceeds(t *testing.T) {
	tr := &fakeTransport{LocalMacs: map[string][6]byte{"eth0": mac(2)}, FailN: 2}
	d := newTestDispatcher(t, tr)

	_, err := d.Send(context.Background(), "eth0", wire.MulticastAddress, wire.MsgTopologyQuery, nil, false, nil, 1500)
	require.NoError(t, err)
	require.Len(t, tr.Sent, 1)
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	tr := &fakeTransport{LocalMacs: map[string][6]byte{"eth0": mac(2)}, FailN: 100}
	d := newTestDispatcher(t, tr)

	_, err := d.Send(context.Background(), "eth0", wire.MulticastAddress, wire.MsgTopologyQuery, nil, false, nil, 1500)
	require.Error(t, err)
}

func TestHandleFrameDropsSelfOriginated(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(t, tr)

	var called bool
	d.RegisterHandler(wire.MsgTopologyQuery, func(ctx context.Context, from FrameMeta, tlvs []wire.Tlv) error {
		called = true
		return nil
	})

	h := wire.Header{MessageType: wire.MsgTopologyQuery, MessageID: 1, LastFragment: true}
	frame := wire.ForgeFrame(mac(9), mac(1) /* == ALMac */, h, []byte{0, 0, 0})
	d.HandleFrame(context.Background(), time.Now(), "eth0", frame)
	require.False(t, called)
}

func TestHandleFrameDispatchesToHandler(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(t, tr)

	var gotMID uint16
	d.RegisterHandler(wire.MsgTopologyQuery, func(ctx context.Context, from FrameMeta, tlvs []wire.Tlv) error {
		gotMID = from.MID
		return nil
	})

	h := wire.Header{MessageType: wire.MsgTopologyQuery, MessageID: 42, LastFragment: true}
	frame := wire.ForgeFrame(mac(9), mac(2), h, []byte{0, 0, 0})
	d.HandleFrame(context.Background(), time.Now(), "eth0", frame)
	require.EqualValues(t, 42, gotMID)
}

func TestHandleFrameDedupDropsRepeatedMID(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(t, tr)

	var calls int
	d.RegisterHandler(wire.MsgTopologyQuery, func(ctx context.Context, from FrameMeta, tlvs []wire.Tlv) error {
		calls++
		return nil
	})

	h := wire.Header{MessageType: wire.MsgTopologyQuery, MessageID: 7, LastFragment: true}
	frame := wire.ForgeFrame(mac(9), mac(2), h, []byte{0, 0, 0})
	now := time.Now()
	d.HandleFrame(context.Background(), now, "eth0", frame)
	d.HandleFrame(context.Background(), now, "eth0", frame)
	require.Equal(t, 1, calls)
}

func TestHandleFrameReassemblesMultiFragmentCMDU(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(t, tr)

	var gotTlvs []wire.Tlv
	d.RegisterHandler(wire.MsgTopologyDiscovery, func(ctx context.Context, from FrameMeta, tlvs []wire.Tlv) error {
		gotTlvs = tlvs
		return nil
	})

	tlvs := []wire.Tlv{
		&wire.AlMacAddressTlv{AlMacAddress: mac(5)},
		&wire.MacAddressTlv{MacAddress: mac(6)},
	}
	frags, err := wire.Fragments(wire.MsgTopologyDiscovery, 11, false, tlvs, 15)
	require.NoError(t, err)
	require.Len(t, frags, 2)

	now := time.Now()
	for _, f := range frags {
		frame := wire.ForgeFrame(mac(9), mac(2), f.Header, f.Payload)
		d.HandleFrame(context.Background(), now, "eth0", frame)
	}
	require.Len(t, gotTlvs, 2)
}

func TestExpireReassemblyDropsStaleBuffer(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(t, tr)

	tlvs := []wire.Tlv{
		&wire.AlMacAddressTlv{AlMacAddress: mac(5)},
		&wire.MacAddressTlv{MacAddress: mac(6)},
	}
	frags, err := wire.Fragments(wire.MsgTopologyDiscovery, 12, false, tlvs, 15)
	require.NoError(t, err)

	start := time.Now()
	frame := wire.ForgeFrame(mac(9), mac(2), frags[0].Header, frags[0].Payload)
	d.HandleFrame(context.Background(), start, "eth0", frame) // only first fragment arrives

	d.ExpireReassembly(start.Add(11 * time.Second))

	// Delivering the last fragment afterward starts a fresh buffer, not
	// completing the original CMDU.
	var called bool
	d.RegisterHandler(wire.MsgTopologyDiscovery, func(ctx context.Context, from FrameMeta, tlvs []wire.Tlv) error {
		called = true
		return nil
	})
	lastFrame := wire.ForgeFrame(mac(9), mac(2), frags[1].Header, frags[1].Payload)
	d.HandleFrame(context.Background(), start.Add(12*time.Second), "eth0", lastFrame)
	require.False(t, called)
}
