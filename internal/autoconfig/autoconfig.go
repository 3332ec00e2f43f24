// Package autoconfig implements AP-Autoconfiguration and the WSC M1/M2
// provisioning handshake spec.md section 4.6 describes: an enrollee
// radio searches for a registrar on its band, the registrar answers and
// then builds an M2 from its registered credentials via the external
// WscEngine trait, and the enrollee applies the result through
// WifiDriver. The core never inspects the WSC payload itself.
package autoconfig

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/prplmesh/go1905/internal/datamodel"
	"github.com/prplmesh/go1905/internal/dispatch"
	"github.com/prplmesh/go1905/internal/platform"
	"github.com/prplmesh/go1905/internal/wire"
)

// SearchInterval is how often an unconfigured radio repeats its
// AP-Autoconfiguration Search while no registrar has answered.
const SearchInterval = 10 * time.Second

// Options configures a Manager.
type Options struct {
	Logger     logr.Logger
	Context    *datamodel.Context
	Dispatcher *dispatch.Dispatcher
	Enumerator platform.RadioEnumerator
	Driver     platform.WifiDriver
	Wsc        platform.WscEngine
	Interfaces []string
}

// pendingRadio is a local radio this AL is still trying to get
// provisioned, tracked by uid.
type pendingRadio struct {
	info       platform.RadioInfo
	band       uint8
	lastSearch time.Time
	registrar  [6]byte // peer the Search was answered by, once known
}

// Manager drives both sides of the handshake: the local AL's
// unconfigured radios searching for a registrar (enrollee role), and,
// when ctx.Registrar().Enabled, answering Searches and building M2s
// for peers (registrar role).
type Manager struct {
	log  logr.Logger
	ctx  *datamodel.Context
	disp *dispatch.Dispatcher
	enum platform.RadioEnumerator
	drv  platform.WifiDriver
	wsc  platform.WscEngine
	ifaces []string

	pending map[[6]byte]*pendingRadio // radio uid -> state, enrollee side
}

// NewManager builds a Manager and registers its CMDU handlers.
func NewManager(opts Options) *Manager {
	m := &Manager{
		log:     opts.Logger.WithName("autoconfig"),
		ctx:     opts.Context,
		disp:    opts.Dispatcher,
		enum:    opts.Enumerator,
		drv:     opts.Driver,
		wsc:     opts.Wsc,
		ifaces:  opts.Interfaces,
		pending: make(map[[6]byte]*pendingRadio),
	}
	m.disp.RegisterHandler(wire.MsgApAutoconfigSearch, m.handleSearch)
	m.disp.RegisterHandler(wire.MsgApAutoconfigResponse, m.handleResponse)
	m.disp.RegisterHandler(wire.MsgApAutoconfigWscM1M2, m.handleWsc)
	m.disp.RegisterHandler(wire.MsgApAutoconfigRenew, m.handleRenew)
	return m
}

// bandOf maps a datamodel.Band to its wire byte value. The two types
// share the same numbering (spec.md section 6) so this is a plain cast,
// kept as a named function so the mapping has one place to change if
// that ever stops being true.
func bandOf(b datamodel.Band) uint8 { return uint8(b) }

// Discover refreshes the set of local radios from the Enumerator and
// enqueues every radio not already tracked as a pending enrollee
// search, whether or not it has a configured BSS (spec.md section 4.6
// and section 6's RadioEnumerator trait).
func (m *Manager) Discover(ctx context.Context) error {
	if m.enum == nil {
		return nil
	}
	radios, err := m.enum.Enumerate(ctx)
	if err != nil {
		return err
	}
	for _, r := range radios {
		if _, tracked := m.pending[r.UID]; tracked {
			continue
		}
		for _, b := range r.Bands {
			m.pending[r.UID] = &pendingRadio{info: r, band: bandOf(b)}
			break // only the radio's first listed band is tracked and searched; its other bands are not
		}
	}
	return nil
}

// Poll re-sends AP-Autoconfiguration Search for every still-unanswered
// pending radio whose SearchInterval has elapsed.
func (m *Manager) Poll(ctx context.Context, now time.Time) {
	for uid, p := range m.pending {
		if p.registrar != ([6]byte{}) {
			continue // already found a registrar, waiting on WSC M1/M2
		}
		if !p.lastSearch.IsZero() && now.Sub(p.lastSearch) < SearchInterval {
			continue
		}
		m.sendSearch(ctx, uid, p)
		p.lastSearch = now
	}
}

func (m *Manager) sendSearch(ctx context.Context, uid [6]byte, p *pendingRadio) {
	if len(m.ifaces) == 0 {
		return
	}
	tlvs := []wire.Tlv{
		&wire.AlMacAddressTlv{AlMacAddress: m.localMac()},
		&wire.SearchedRoleTlv{Role: wire.RoleRegistrar},
		&wire.AutoconfigFreqBandTlv{Band: p.band},
	}
	if _, err := m.disp.Send(ctx, m.ifaces[0], wire.MulticastAddress, wire.MsgApAutoconfigSearch, nil, false, tlvs, 1486); err != nil {
		m.log.Error(err, "send ap-autoconfig search failed", "radio", uid)
	}
}

func (m *Manager) localMac() [6]byte {
	if local, ok := m.ctx.LocalDevice(); ok {
		return local.ALMac
	}
	return [6]byte{}
}

// handleSearch answers a peer's Search with a Response when this AL is
// a registrar supporting the requested band (spec.md section 4.6: "When
// a peer sends an AP-Autoconfiguration Search for a band this registrar
// supports, respond with a Response directed to the peer").
func (m *Manager) handleSearch(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	reg := m.ctx.Registrar()
	if !reg.Enabled {
		return nil
	}
	var band uint8
	var haveBand bool
	for _, t := range tlvs {
		if f, ok := t.(*wire.AutoconfigFreqBandTlv); ok {
			band, haveBand = f.Band, true
		}
	}
	if !haveBand || !m.registrarSupportsBand(reg, band) {
		return nil
	}
	response := []wire.Tlv{
		&wire.SupportedRoleTlv{Role: wire.RoleRegistrar},
		&wire.SupportedFreqBandTlv{Band: band},
	}
	_, err := m.disp.Send(ctx, from.Iface, from.SrcMac, wire.MsgApAutoconfigResponse, nil, false, response, 1486)
	return err
}

func (m *Manager) registrarSupportsBand(reg *datamodel.Registrar, band uint8) bool {
	for _, info := range reg.Infos {
		if bandOf(info.Band) == band {
			return true
		}
	}
	return false
}

// handleResponse records the answering registrar for whichever pending
// radio matches the response's band and sends WSC M1 to it.
func (m *Manager) handleResponse(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	var band uint8
	var haveBand bool
	for _, t := range tlvs {
		if f, ok := t.(*wire.SupportedFreqBandTlv); ok {
			band, haveBand = f.Band, true
		}
	}
	if !haveBand {
		return nil
	}
	for uid, p := range m.pending {
		if p.band != band || p.registrar != ([6]byte{}) {
			continue
		}
		p.registrar = from.SrcMac
		m1 := []byte("wsc-m1:" + string(uid[:]))
		wsc := []wire.Tlv{&wire.WscTlv{Payload: m1}}
		if _, err := m.disp.Send(ctx, from.Iface, from.SrcMac, wire.MsgApAutoconfigWscM1M2, nil, false, wsc, 1486); err != nil {
			return err
		}
		return nil
	}
	return nil
}

// handleWsc implements both halves of the M1/M2 exchange: a registrar
// receiving M1 builds M2 from the registered credentials and replies; an
// enrollee receiving M2 applies it via WifiDriver.AddAP and stops
// tracking the radio as pending (spec.md section 4.6).
func (m *Manager) handleWsc(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	var payload []byte
	for _, t := range tlvs {
		if w, ok := t.(*wire.WscTlv); ok {
			payload = w.Payload
		}
	}
	if payload == nil {
		return nil
	}

	if m.expectingM2From(from.SrcMac) {
		return m.applyM2(ctx, from, payload)
	}
	reg := m.ctx.Registrar()
	if reg.Enabled && m.wsc != nil {
		return m.respondWithM2(ctx, from, payload, reg)
	}
	return nil
}

// expectingM2From reports whether some pending radio is mid-handshake
// with peer as its recorded registrar. This, not the payload's
// content, is what tells M1 and M2 apart on MsgApAutoconfigWscM1M2: a
// registrar only ever receives M1 here, and an enrollee only ever
// receives M2 for a uid it has a pending entry for with peer as the
// known registrar (spec.md section 4.6).
func (m *Manager) expectingM2From(peer [6]byte) bool {
	for _, p := range m.pending {
		if p.registrar == peer {
			return true
		}
	}
	return false
}

func (m *Manager) respondWithM2(ctx context.Context, from dispatch.FrameMeta, m1 []byte, reg *datamodel.Registrar) error {
	if len(reg.Infos) == 0 {
		return nil
	}
	info := reg.Infos[0]
	m2, err := m.wsc.BuildM2(ctx, info, m1)
	if err != nil {
		return err
	}
	wsc := []wire.Tlv{&wire.WscTlv{Payload: m2}}
	_, err = m.disp.Send(ctx, from.Iface, from.SrcMac, wire.MsgApAutoconfigWscM1M2, nil, false, wsc, 1486)
	return err
}

func (m *Manager) applyM2(ctx context.Context, from dispatch.FrameMeta, m2 []byte) error {
	for uid, p := range m.pending {
		if p.registrar != from.SrcMac {
			continue
		}
		info := datamodel.BssInfo{Fronthaul: true}
		if m.drv != nil {
			if _, err := m.drv.AddAP(ctx, uid, info); err != nil {
				return err
			}
		}
		delete(m.pending, uid)
		return nil
	}
	return nil
}

// handleRenew re-arms every configured-away pending search: a Renew
// from the registrar signals its credentials changed and agents must
// re-run the search/WSC handshake (prplMesh's renew semantics,
// SPEC_FULL.md section 13).
func (m *Manager) handleRenew(ctx context.Context, from dispatch.FrameMeta, tlvs []wire.Tlv) error {
	for _, p := range m.pending {
		p.registrar = [6]byte{}
		p.lastSearch = time.Time{}
	}
	return nil
}

// NotifyRenew multicasts an AP-Autoconfiguration Renew, called when the
// local registrar's credentials change (spec.md section 4.6 /
// section 13 renew semantics).
func (m *Manager) NotifyRenew(ctx context.Context) error {
	for _, ifaceName := range m.ifaces {
		if _, err := m.disp.Send(ctx, ifaceName, wire.MulticastAddress, wire.MsgApAutoconfigRenew, nil, false, nil, 1486); err != nil {
			return err
		}
	}
	return nil
}
