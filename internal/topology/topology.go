// Package topology implements the per-remote-AL state machine and the
// periodic/triggered CMDU traffic spec.md section 4.5 describes:
// discovery timeouts, query/response, and change-triggered
// notifications. It owns no sockets itself — it calls dispatch.Send and
// is fed parsed CMDUs via dispatch.Handler callbacks registered by the
// caller (cmd/al1905d), keeping it unit-testable against a fake
// dispatch.Transport the way internal/dispatch's own tests are.
package topology

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/prplmesh/go1905/internal/containers"
	"github.com/prplmesh/go1905/internal/datamodel"
	"github.com/prplmesh/go1905/internal/dispatch"
	"github.com/prplmesh/go1905/internal/wire"
)

// Discovery/stale/gone thresholds (spec.md section 4.5).
const (
	DiscoveredTimeout = 180 * time.Second
	GoneTimeout       = 600 * time.Second

	DiscoveryInterval   = 60 * time.Second
	DiscoveryJitter     = 1 * time.Second
	LinkMetricInterval  = 60 * time.Second
	QueryProbeDeadline  = 3 * time.Second
	ResponseDeadline    = 1 * time.Second
)

// Options configures a Manager.
type Options struct {
	Logger     logr.Logger
	Context    *datamodel.Context
	Dispatcher *dispatch.Dispatcher
	// Interfaces lists the local interface names to send discovery and
	// notification CMDUs on (spec.md section 4.5).
	Interfaces []string
}

// Manager runs the topology state machine. It is driven by Poll (the
// scheduler's timer wheel, spec.md section 9) and by the dispatch
// handlers it registers for incoming CMDUs.
type Manager struct {
	log  logr.Logger
	ctx  *datamodel.Context
	disp *dispatch.Dispatcher
	ifaces []string

	lastDiscoverySent time.Time
	lastLinkMetric    time.Time
}

// NewManager builds a Manager and registers its CMDU handlers on
// opts.Dispatcher.
func NewManager(opts Options) *Manager {
	m := &Manager{
		log:    opts.Logger.WithName("topology"),
		ctx:    opts.Context,
		disp:   opts.Dispatcher,
		ifaces: opts.Interfaces,
	}
	m.disp.RegisterHandler(wire.MsgTopologyDiscovery, m.handleDiscovery)
	m.disp.RegisterHandler(wire.MsgTopologyQuery, m.handleQuery)
	m.disp.RegisterHandler(wire.MsgTopologyResponse, m.handleResponse)
	m.disp.RegisterHandler(wire.MsgTopologyNotification, m.handleNotification)
	return m
}

// Poll runs the periodic tasks due at now: Topology Discovery on every
// local interface every 60±1s, and (optionally) Link Metric Query to
// each known neighbor every 60±1s (spec.md section 4.5). It also ages
// every remote AlDevice through Discovered -> Stale -> Gone.
func (m *Manager) Poll(ctx context.Context, now time.Time) {
	m.ageDevices(now)

	if m.lastDiscoverySent.IsZero() || now.Sub(m.lastDiscoverySent) >= DiscoveryInterval {
		m.sendDiscoveryOnAllInterfaces(ctx)
		m.lastDiscoverySent = now
	}
	if m.lastLinkMetric.IsZero() || now.Sub(m.lastLinkMetric) >= LinkMetricInterval {
		m.sendLinkMetricQueries(ctx)
		m.lastLinkMetric = now
	}
}

// ageDevices transitions Discovered -> Stale -> Gone by elapsed time
// since LastSeen, removing Gone devices from the graph (spec.md section
// 4.5 state machine).
func (m *Manager) ageDevices(now time.Time) {
	for _, h := range m.ctx.Devices() {
		d, ok := m.ctx.Device(h)
		if !ok || d.Local {
			continue
		}
		age := now.Sub(d.LastSeen)
		switch {
		case age >= GoneTimeout:
			m.ctx.RemoveDevice(h)
		case age >= DiscoveredTimeout:
			d.State = datamodel.StateStale
		}
	}
}

func (m *Manager) sendDiscoveryOnAllInterfaces(ctx context.Context) {
	local, ok := m.ctx.LocalDevice()
	if !ok {
		return
	}
	for _, ifaceName := range m.ifaces {
		tlvs := []wire.Tlv{
			&wire.AlMacAddressTlv{AlMacAddress: local.ALMac},
			&wire.MacAddressTlv{MacAddress: local.ALMac},
		}
		if _, err := m.disp.Send(ctx, ifaceName, wire.MulticastAddress, wire.MsgTopologyDiscovery, nil, true, tlvs, 1486); err != nil {
			m.log.Error(err, "send topology discovery failed", "interface", ifaceName)
		}
	}
}

func (m *Manager) sendLinkMetricQueries(ctx context.Context) {
	for _, h := range m.ctx.Devices() {
		d, ok := m.ctx.Device(h)
		if !ok || d.Local || d.State != datamodel.StateDiscovered {
			continue
		}
		tlvs := []wire.Tlv{&wire.LinkMetricQueryTlv{
			NeighborType:         wire.NeighborTypeAllNeighbors,
			LinkMetricsRequested: wire.LinkMetricsBothTxAndRx,
		}}
		ifaceName := m.ifaces[0]
		if _, err := m.disp.Send(ctx, ifaceName, d.ALMac, wire.MsgLinkMetricQuery, nil, false, tlvs, 1486); err != nil {
			m.log.Error(err, "send link metric query failed", "peer", d.ALMac)
		}
	}
}

// handleDiscovery implements the Unknown/Discovered transitions (spec.md
// section 4.5): first Discovery from an AL moves it to Discovered and
// triggers a probing Topology Query; a fresh Discovery from an AL
// already Discovered just resets LastSeen without re-querying.
func (m *Manager) handleDiscovery(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	var alMac [6]byte
	for _, t := range tlvs {
		if a, ok := t.(*wire.AlMacAddressTlv); ok {
			alMac = a.AlMacAddress
		}
	}
	if alMac == ([6]byte{}) {
		return nil
	}

	h, d, ok := m.ctx.FindDeviceByMac(alMac)
	firstDiscovery := !ok
	if !ok {
		h = m.ctx.AddDevice(&datamodel.AlDevice{ALMac: alMac})
		d, _ = m.ctx.Device(h)
	}
	d.State = datamodel.StateDiscovered
	d.LastSeen = time.Now()

	if firstDiscovery && !d.QueryPending {
		d.QueryPending = true
		if _, err := m.disp.Send(ctx, from.Iface, alMac, wire.MsgTopologyQuery, nil, false, nil, 1486); err != nil {
			m.log.Error(err, "send probing topology query failed", "peer", alMac)
		}
		d.QueryPending = false
	}
	return nil
}

// handleQuery builds and sends a Topology Response within the deadline
// spec.md section 4.5 names, carrying the local interface/BSS state.
func (m *Manager) handleQuery(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	local, ok := m.ctx.LocalDevice()
	if !ok {
		return nil
	}

	var records []wire.DeviceInterfaceRecord
	for _, ih := range local.Interfaces.Slice() {
		if ifc, ok := m.ctx.Interface(ih); ok {
			records = append(records, wire.DeviceInterfaceRecord{MacAddress: ifc.MAC, MediaType: ifc.MediaType})
		}
	}

	response := []wire.Tlv{
		&wire.DeviceInformationTlv{AlMacAddress: local.ALMac, Interfaces: records},
		// Bridging capability, non-1905 neighbors, power-off state and
		// L2 neighbor discovery have no corresponding state anywhere in
		// internal/datamodel, so these stay at their zero value (a
		// valid, empty TLV) rather than inventing data.
		&wire.DeviceBridgingCapabilityTlv{},
		&wire.Non1905NeighborDeviceListTlv{},
		&wire.PowerOffInterfaceTlv{},
		&wire.L2NeighborDeviceTlv{},
	}
	response = append(response, m.neighborDeviceListTlvs(local)...)
	response = append(response,
		&wire.SupportedServiceTlv{Services: []uint8{wire.ServiceMultiApAgent}},
		m.apOperationalBssTlv(local),
	)
	_, err := m.disp.Send(ctx, from.Iface, from.SrcMac, wire.MsgTopologyResponse, nil, false, response, 1486)
	return err
}

// neighborDeviceListTlvs builds one Neighbor Device List TLV per local
// interface that has at least one recorded neighbor (spec.md section
// 4.5, "1905 Neighbor list (flagged if the underlying link is
// bridged)"), reading the link state internal/datamodel's
// LinkNeighbors/UnlinkNeighbors maintain.
func (m *Manager) neighborDeviceListTlvs(local *datamodel.AlDevice) []wire.Tlv {
	var out []wire.Tlv
	for _, ih := range local.Interfaces.Slice() {
		ifc, ok := m.ctx.Interface(ih)
		if !ok {
			continue
		}
		neighHandles, bridgedFlags := m.ctx.Neighbors(ih)
		if len(neighHandles) == 0 {
			continue
		}
		var records []wire.NeighborRecord
		for i, nh := range neighHandles {
			owner, ok := m.ctx.OwnerDevice(nh)
			if !ok {
				continue
			}
			var isBridged uint8
			if bridgedFlags[i] {
				isBridged = 1
			}
			records = append(records, wire.NeighborRecord{NeighborAlMac: owner.ALMac, IsBridged: isBridged})
		}
		out = append(out, &wire.NeighborDeviceListTlv{LocalMacAddress: ifc.MAC, Neighbors: records})
	}
	return out
}

// apOperationalBssTlv reports every configured BSS on every local radio
// (spec.md section 4.5 / SPEC_FULL.md section 12's Multi-AP wiring),
// reading internal/datamodel's Radio/InterfaceWifi graph directly.
func (m *Manager) apOperationalBssTlv(local *datamodel.AlDevice) *wire.ApOperationalBssTlv {
	var radios []wire.ApOperationalBssRadio
	for _, rh := range local.Radios.Slice() {
		r, ok := m.ctx.Radio(rh)
		if !ok {
			continue
		}
		var bsses []wire.ApOperationalBssRecord
		for _, wh := range r.BSSes() {
			w, ok := m.ctx.InterfaceWifi(wh)
			if !ok {
				continue
			}
			bsses = append(bsses, wire.ApOperationalBssRecord{Bssid: w.BSSID, Ssid: []byte(w.Info.SSID)})
		}
		if len(bsses) == 0 {
			continue
		}
		radios = append(radios, wire.ApOperationalBssRadio{RadioUid: r.UID, Bsses: bsses})
	}
	return &wire.ApOperationalBssTlv{Radios: radios}
}

// handleResponse applies a peer's neighbor lists to the graph and
// triggers a Topology Notification when the peer's neighbor set
// changed (spec.md section 4.5: "Topology Response with added/removed
// neighbor").
func (m *Manager) handleResponse(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	dh, d, ok := m.ctx.FindDeviceByMac(from.SrcMac)
	if !ok {
		return nil
	}
	d.LastSeen = time.Now()

	changed := false
	for _, t := range tlvs {
		ndl, ok := t.(*wire.NeighborDeviceListTlv)
		if !ok {
			continue
		}
		if m.reconcileNeighborList(dh, ndl) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return m.NotifyLocalChange(ctx)
}

// reconcileNeighborList applies one Neighbor Device List TLV to the
// graph: peerIface is the sender's interface the list was reported on
// (ndl.LocalMacAddress). Each NeighborRecord names a neighbor AL by
// MAC, which this repo represents as a single Interface on that AL
// sharing its AL MAC, since the wire format carries no finer-grained
// interface identity for the far end. Returns whether any link was
// added, removed, or had its bridged flag change.
func (m *Manager) reconcileNeighborList(deviceH containers.Handle, ndl *wire.NeighborDeviceListTlv) bool {
	peerIface := m.ctx.FindOrAddInterface(deviceH, ndl.LocalMacAddress)

	want := make(map[[6]byte]bool, len(ndl.Neighbors))
	for _, n := range ndl.Neighbors {
		want[n.NeighborAlMac] = n.IsBridged != 0
	}

	changed := false
	existingHandles, existingBridgedLive := m.ctx.Neighbors(peerIface)
	existingHandlesCopy := append([]containers.Handle(nil), existingHandles...)
	existingBridged := append([]bool(nil), existingBridgedLive...)
	for i, nh := range existingHandlesCopy {
		nifc, ok := m.ctx.Interface(nh)
		if !ok {
			continue
		}
		if bridged, stillWanted := want[nifc.MAC]; stillWanted && bridged == existingBridged[i] {
			delete(want, nifc.MAC) // unchanged, leave linked
			continue
		}
		m.ctx.UnlinkNeighbors(peerIface, nh)
		changed = true
	}

	for mac, bridged := range want {
		nDeviceH, _, ok := m.ctx.FindDeviceByMac(mac)
		if !ok {
			nDeviceH = m.ctx.AddDevice(&datamodel.AlDevice{ALMac: mac, LastSeen: time.Now()})
		}
		nIface := m.ctx.FindOrAddInterface(nDeviceH, mac)
		m.ctx.LinkNeighbors(peerIface, nIface, bridged)
		changed = true
	}
	return changed
}

// handleNotification refreshes LastSeen for the sending AL; spec.md
// does not require any other state change on receipt.
func (m *Manager) handleNotification(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	if _, d, ok := m.ctx.FindDeviceByMac(from.SrcMac); ok {
		d.LastSeen = time.Now()
	}
	return nil
}

// NotifyLocalChange multicasts a Topology Notification carrying the
// local AL-MAC TLV, on every managed interface (spec.md section 4.5:
// "On any local change: send Topology Notification with the local
// AL-MAC TLV").
func (m *Manager) NotifyLocalChange(ctx context.Context) error {
	local, ok := m.ctx.LocalDevice()
	if !ok {
		return nil
	}
	tlvs := []wire.Tlv{&wire.AlMacAddressTlv{AlMacAddress: local.ALMac}}
	for _, ifaceName := range m.ifaces {
		if _, err := m.disp.Send(ctx, ifaceName, wire.MulticastAddress, wire.MsgTopologyNotification, nil, true, tlvs, 1486); err != nil {
			return err
		}
	}
	return nil
}

// NotifyPushButtonEvent sends a Push-Button-Configuration event
// notification on every managed interface (SPEC_FULL.md section 13,
// the feature the distilled spec.md dropped: al_entity_openwrt.c wires
// a physical button/GPIO trigger to this CMDU for out-of-band WSC
// provisioning). The physical trigger itself stays external, like
// WifiDriver and RadioEnumerator.
func (m *Manager) NotifyPushButtonEvent(ctx context.Context, bands []uint8) error {
	tlvs := []wire.Tlv{&wire.PushButtonEventNotifTlv{Bands: bands}}
	for _, ifaceName := range m.ifaces {
		if _, err := m.disp.Send(ctx, ifaceName, wire.MulticastAddress, wire.MsgPushButtonEventNotif, nil, false, tlvs, 1486); err != nil {
			return err
		}
	}
	return nil
}
