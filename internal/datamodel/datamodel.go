// Package datamodel holds the in-memory network graph spec.md section 3
// describes: AL devices, their interfaces and radios, BSSes, and the
// local registrar. The original C (src/datamodel.c) keeps this as a set
// of process-wide globals (local_device, network, registrar) linked by
// raw pointers and intrusive lists; here it is a single owning Context
// value (spec.md section 9, "Global mutable state") threaded through
// every caller, with containers.Arena handles standing in for pointers
// so neighbor cross-links — symmetric and potentially cyclic — can't
// leak dangling references.
package datamodel

import (
	"time"

	"github.com/prplmesh/go1905/internal/containers"
)

// AuthMode is a BssInfo's security mode (spec.md section 3,
// "BssInfo.auth_mode is one of {open, wpa2, wpa2psk}").
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWPA2
	AuthWPA2PSK
)

// Band identifies an RF band, matching the wire values in
// internal/wire (Band2_4GHz, Band5GHz, Band60GHz).
type Band uint8

// BssInfo is the provisioning state of one Wi-Fi BSS: SSID, key,
// auth mode, and the fronthaul/backhaul role split Multi-AP adds.
type BssInfo struct {
	SSID       string
	Key        string // present iff AuthMode == AuthWPA2PSK
	AuthMode   AuthMode
	Backhaul   bool
	Fronthaul  bool
}

// RadioChannel is one channel a RadioBand advertises as usable.
type RadioChannel struct {
	Number     uint8
	Bandwidth  uint16 // MHz
	DFSOnly    bool
}

// RadioBand is one of a Radio's supported RF bands (spec.md section 3).
type RadioBand struct {
	Band     Band
	Channels []RadioChannel
	// MaxTxPower is the advertised ceiling, in dBm; 0 means unknown.
	MaxTxPower int
}

// Interface is a managed or discovered 1905 interface, identified by
// its 48-bit MAC. Non-Wi-Fi interfaces (Ethernet, MoCA, Powerline) use
// this type directly; Wi-Fi ones embed it in InterfaceWifi.
type Interface struct {
	MAC       [6]byte
	MediaType uint16 // spec.md section 8 scenario 5, "media types"
	Up        bool

	// owner is the AlDevice this interface truly belongs to. A
	// neighbor-link set may reference an Interface whose owner is a
	// different AlDevice (spec.md section 3 invariant 2).
	owner containers.Handle

	// neighbors holds handles of Interfaces on other AL devices this
	// interface has a direct layer-2 link to. The relation is kept
	// symmetric by Context.LinkNeighbors/UnlinkNeighbors (invariant 3).
	neighbors containers.PtrArray[containers.Handle]

	// bridged records, per neighbor handle position, whether that
	// neighbor relation rides a bridged link (spec.md section 4.5,
	// "1905 Neighbor list (flagged if the underlying link is
	// bridged)"). Same length/order as neighbors.
	bridged []bool
}

// InterfaceWifi extends Interface with the Wi-Fi-specific BSS state
// (spec.md section 3: "InterfaceWifi (extends Interface)").
type InterfaceWifi struct {
	Interface
	BSSID [6]byte
	Info  BssInfo
	radio containers.Handle // owning Radio
}

// Radio is one physical radio a local AlDevice exposes, enumerated at
// startup via the external RadioEnumerator trait (spec.md section 6).
type Radio struct {
	UID           [6]byte
	Name          string
	Index         int
	MaxBSS        int
	MaxAPStations int
	Monitor       bool
	AntennasRx    int
	AntennasTx    int

	Bands []RadioBand
	bsses containers.PtrArray[containers.Handle] // configured InterfaceWifi handles

	owner containers.Handle
}

// BSSes returns the handles of every InterfaceWifi configured on r,
// each tagged with wifiHandleTag (resolve via Context.InterfaceWifi).
func (r *Radio) BSSes() []containers.Handle { return r.bsses.Slice() }

// WscRegistrarInfo is one band's provisioning credentials, owned by the
// Registrar (spec.md section 4.6).
type WscRegistrarInfo struct {
	Band     Band
	SSID     string
	Key      string
	AuthMode AuthMode
}

// Registrar is the local AL's Multi-AP registrar state, present only
// when configured as such (spec.md section 6, "registrar").
type Registrar struct {
	Enabled bool
	Infos   []WscRegistrarInfo
}

// AlDevice is one 1905 AL entity, local or remote (spec.md section 3).
type AlDevice struct {
	ALMac [6]byte

	Local      bool
	Configured bool

	Interfaces containers.PtrArray[containers.Handle]
	Radios     containers.PtrArray[containers.Handle]

	// BackhaulSSID/Key are the credentials this AL pushes to its
	// agents when acting as a backhaul AP (spec.md section 6).
	BackhaulSSID string
	BackhaulKey  string

	// discovery tracking for the topology state machine (spec.md
	// section 4.5). Owned here, not in internal/topology, because it
	// is graph state, not protocol-timer state.
	State        DiscoveryState
	LastSeen     time.Time
	QueryPending bool
}

// DiscoveryState is a remote AlDevice's position in the topology state
// machine (spec.md section 4.5).
type DiscoveryState int

const (
	StateUnknown DiscoveryState = iota
	StateDiscovered
	StateStale
	StateGone
)

func (s DiscoveryState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateDiscovered:
		return "discovered"
	case StateStale:
		return "stale"
	case StateGone:
		return "gone"
	default:
		return "invalid"
	}
}

// Context owns every AlDevice, Interface, Radio and the Registrar. It
// replaces the originals' process-wide globals (spec.md section 9): a
// single value threaded through every handler instead of package-level
// state, so the dispatcher's event loop can be tested without globals.
type Context struct {
	devices    *containers.Arena[*AlDevice]
	interfaces *containers.Arena[*Interface]
	wifis      *containers.Arena[*InterfaceWifi]
	radios     *containers.Arena[*Radio]

	localDevice containers.Handle // invariant 1: exactly one local AlDevice
	registrar   Registrar
}

// NewContext returns an empty graph with no local device set yet.
func NewContext() *Context {
	return &Context{
		devices:    containers.New[*AlDevice](),
		interfaces: containers.New[*Interface](),
		wifis:      containers.New[*InterfaceWifi](),
		radios:     containers.New[*Radio](),
	}
}

// SetLocalDevice registers d as the singleton local AlDevice (spec.md
// section 3 invariant 7: "local_device is a singleton set once at
// startup"). Calling it twice replaces the previous local device but
// does not delete it; callers are expected to call this exactly once
// during startup (al_entity_main.c's sequence, SPEC_FULL.md section
// 13).
func (c *Context) SetLocalDevice(d *AlDevice) containers.Handle {
	d.Local = true
	h := c.devices.Add(d)
	c.localDevice = h
	return h
}

// LocalDevice returns the singleton local AlDevice, or ok=false if
// SetLocalDevice has not been called yet.
func (c *Context) LocalDevice() (*AlDevice, bool) {
	return c.devices.Get(c.localDevice)
}

// AddDevice registers a new remote AlDevice and returns its handle.
func (c *Context) AddDevice(d *AlDevice) containers.Handle {
	return c.devices.Add(d)
}

// Device looks up an AlDevice by handle.
func (c *Context) Device(h containers.Handle) (*AlDevice, bool) {
	return c.devices.Get(h)
}

// FindDeviceByMac does a linear scan for the AlDevice with the given AL
// MAC. The graph is small enough (tens of devices on a home network)
// that an index is not worth the bookkeeping.
func (c *Context) FindDeviceByMac(mac [6]byte) (containers.Handle, *AlDevice, bool) {
	var found containers.Handle
	var dev *AlDevice
	var ok bool
	c.devices.ForEach(func(h containers.Handle, d *AlDevice) {
		if ok {
			return
		}
		if d.ALMac == mac {
			found, dev, ok = h, d, true
		}
	})
	return found, dev, ok
}

// RemoveDevice deletes d and cascades to every Interface and Radio it
// owns, mirroring alDeviceDelete in src/datamodel.c (SPEC_FULL.md
// section 13): each owned plain Interface is deleted first, then each
// owned Radio (which itself cascades to its configured InterfaceWifi
// children), then the device itself. Any neighbor relation pointing at
// a deleted interface is unlinked symmetrically so invariant 3 never
// leaves a dangling half of a neighbor pair.
func (c *Context) RemoveDevice(h containers.Handle) {
	d, ok := c.devices.Get(h)
	if !ok {
		return
	}
	for _, ih := range append([]containers.Handle(nil), d.Interfaces.Slice()...) {
		c.RemoveInterface(ih)
	}
	for _, rh := range append([]containers.Handle(nil), d.Radios.Slice()...) {
		c.RemoveRadio(rh)
	}
	if h == c.localDevice {
		c.localDevice = 0
	}
	c.devices.Remove(h)
}

// FindOrAddInterface returns the handle of owner's plain Interface
// with the given MAC, creating one if none exists yet. Used when
// reconciling neighbor lists learned from a peer's Topology Response,
// where the wire format carries only MAC addresses (spec.md section
// 4.5), never handles.
func (c *Context) FindOrAddInterface(owner containers.Handle, mac [6]byte) containers.Handle {
	if d, ok := c.devices.Get(owner); ok {
		for _, ih := range d.Interfaces.Slice() {
			if ifc, ok := c.interfaces.Get(ih); ok && ifc.MAC == mac {
				return ih
			}
		}
	}
	return c.AddInterface(owner, &Interface{MAC: mac})
}

// OwnerDevice returns the AlDevice owning interface handle h, whether
// h names a plain Interface or an InterfaceWifi. Used to turn a
// neighbor link's Interface handle back into the AL MAC the Neighbor
// Device List TLV reports (spec.md section 4.5).
func (c *Context) OwnerDevice(h containers.Handle) (*AlDevice, bool) {
	ifc := c.anyInterface(h)
	if ifc == nil {
		return nil, false
	}
	return c.devices.Get(ifc.owner)
}

// AddInterface attaches a non-Wi-Fi interface to owner and returns its
// handle.
func (c *Context) AddInterface(owner containers.Handle, iface *Interface) containers.Handle {
	iface.owner = owner
	h := c.interfaces.Add(iface)
	if d, ok := c.devices.Get(owner); ok {
		d.Interfaces.Add(h)
	}
	return h
}

// Interface looks up a plain Interface by handle.
func (c *Context) Interface(h containers.Handle) (*Interface, bool) {
	return c.interfaces.Get(h)
}

// RemoveInterface deletes iface, symmetrically unlinking every neighbor
// relation it participates in (invariant 3) and detaching it from its
// owning device's interface list.
func (c *Context) RemoveInterface(h containers.Handle) {
	iface, ok := c.interfaces.Get(h)
	if !ok {
		return
	}
	for _, nh := range append([]containers.Handle(nil), iface.neighbors.Slice()...) {
		c.UnlinkNeighbors(h, nh)
	}
	if d, ok := c.devices.Get(iface.owner); ok {
		d.Interfaces.RemoveElement(h)
	}
	c.interfaces.Remove(h)
}

// AddRadio attaches a Radio to owner and returns its handle.
func (c *Context) AddRadio(owner containers.Handle, r *Radio) containers.Handle {
	r.owner = owner
	h := c.radios.Add(r)
	if d, ok := c.devices.Get(owner); ok {
		d.Radios.Add(h)
	}
	return h
}

// Radio looks up a Radio by handle.
func (c *Context) Radio(h containers.Handle) (*Radio, bool) {
	return c.radios.Get(h)
}

// RemoveRadio deletes r and every InterfaceWifi it owns (configured BSS
// list), mirroring radioDelete's cascade in src/datamodel.c.
func (c *Context) RemoveRadio(h containers.Handle) {
	r, ok := c.radios.Get(h)
	if !ok {
		return
	}
	for _, wh := range append([]containers.Handle(nil), r.bsses.Slice()...) {
		c.RemoveInterfaceWifi(wh)
	}
	if d, ok := c.devices.Get(r.owner); ok {
		d.Radios.RemoveElement(h)
	}
	c.radios.Remove(h)
}

// wifiHandleTag marks a Handle as indexing c.wifis rather than
// c.interfaces. c.interfaces and c.wifis are separate arenas, each
// numbering its own handles from 1, so a plain Interface and an
// InterfaceWifi commonly share the same untagged handle value; the tag
// bit gives wifi handles their own namespace so anyInterface (and
// every neighbor-link caller) can tell the two apart instead of
// probing one arena and falling through to the other. Handle is a
// uint32 and no arena is expected to ever hold anywhere near 1<<31
// live entries, so stealing the top bit leaves the usable range
// untouched.
const wifiHandleTag containers.Handle = 1 << 31

// AddInterfaceWifi configures a new BSS on radio, enforcing the
// maxBSS soft limit from spec.md invariant 5 ("adding more than the
// radio's advertised maxBSS is a configuration error but not a hard
// failure" — reported via overLimit, not rejected). The returned
// handle is tagged (wifiHandleTag) so it never collides with a plain
// Interface handle.
func (c *Context) AddInterfaceWifi(radio containers.Handle, wifi *InterfaceWifi) (h containers.Handle, overLimit bool) {
	wifi.radio = radio
	r, ok := c.radios.Get(radio)
	if ok {
		wifi.owner = r.owner
	}
	raw := c.wifis.Add(wifi)
	h = raw | wifiHandleTag
	if ok {
		r.bsses.Add(h)
		overLimit = r.MaxBSS > 0 && r.bsses.Len() > r.MaxBSS
	}
	return h, overLimit
}

// InterfaceWifi looks up a configured BSS by its tagged handle.
func (c *Context) InterfaceWifi(h containers.Handle) (*InterfaceWifi, bool) {
	if h&wifiHandleTag == 0 {
		return nil, false
	}
	return c.wifis.Get(h &^ wifiHandleTag)
}

// RemoveInterfaceWifi tears down a configured BSS, unlinking its owning
// radio's bss list and any neighbor relations.
func (c *Context) RemoveInterfaceWifi(h containers.Handle) {
	wifi, ok := c.InterfaceWifi(h)
	if !ok {
		return
	}
	for _, nh := range append([]containers.Handle(nil), wifi.neighbors.Slice()...) {
		c.UnlinkNeighbors(h, nh)
	}
	if r, ok := c.radios.Get(wifi.radio); ok {
		r.bsses.RemoveElement(h)
	}
	c.wifis.Remove(h &^ wifiHandleTag)
}

// LinkNeighbors records a, b as neighbors of each other, symmetrically
// (spec.md invariant 3: "if A lists B, B lists A; both are added/
// removed together"). bridged marks whether the underlying link is a
// bridge (spec.md section 4.5). Re-linking an existing pair just
// updates the bridged flag.
func (c *Context) LinkNeighbors(a, b containers.Handle, bridged bool) {
	c.linkOneDirection(a, b, bridged)
	c.linkOneDirection(b, a, bridged)
}

func (c *Context) linkOneDirection(from, to containers.Handle, bridged bool) {
	ifc := c.anyInterface(from)
	if ifc == nil {
		return
	}
	if i := ifc.neighbors.Find(to); i >= 0 {
		ifc.bridged[i] = bridged
		return
	}
	ifc.neighbors.Add(to)
	ifc.bridged = append(ifc.bridged, bridged)
}

// UnlinkNeighbors removes the symmetric neighbor relation between a and
// b, garbage-collecting either side if it is a non-owned neighbor
// interface left with no remaining neighbors and no owner (spec.md
// invariant 3).
func (c *Context) UnlinkNeighbors(a, b containers.Handle) {
	c.unlinkOneDirection(a, b)
	c.unlinkOneDirection(b, a)
}

func (c *Context) unlinkOneDirection(from, to containers.Handle) {
	ifc := c.anyInterface(from)
	if ifc == nil {
		return
	}
	i := ifc.neighbors.Find(to)
	if i < 0 {
		return
	}
	ifc.neighbors.RemoveAt(i)
	ifc.bridged = append(ifc.bridged[:i], ifc.bridged[i+1:]...)
	if ifc.neighbors.Len() > 0 || from&wifiHandleTag != 0 {
		return
	}
	if _, owned := c.devices.Get(ifc.owner); !owned {
		c.interfaces.Remove(from)
	}
}

// anyInterface dispatches on wifiHandleTag to find h in whichever of
// interfaces/wifis owns it, returning the embedded Interface so
// neighbor-link code can stay type-agnostic. Dispatching on the tag
// rather than probing c.interfaces then falling through to c.wifis
// matters because the two arenas number their handles independently,
// so an untagged probe can return the wrong object whenever a plain
// Interface and an InterfaceWifi happen to share a handle value.
func (c *Context) anyInterface(h containers.Handle) *Interface {
	if h&wifiHandleTag != 0 {
		if wifi, ok := c.wifis.Get(h &^ wifiHandleTag); ok {
			return &wifi.Interface
		}
		return nil
	}
	if ifc, ok := c.interfaces.Get(h); ok {
		return ifc
	}
	return nil
}

// Neighbors returns the neighbor handles and per-neighbor bridged flag
// for interface h.
func (c *Context) Neighbors(h containers.Handle) ([]containers.Handle, []bool) {
	ifc := c.anyInterface(h)
	if ifc == nil {
		return nil, nil
	}
	return ifc.neighbors.Slice(), ifc.bridged
}

// SetConfigured sets d.Configured to exactly the passed value,
// cascading to unconfigure every owned Radio when configured is false
// (spec.md section 3, "transitioning back to false cascades to marking
// every owned Radio as unconfigured"). This fixes the open question in
// spec.md section 9: the original localDeviceSetConfigured sets the
// field to true unconditionally regardless of the argument; this is
// treated as a bug and the value here is always "= configured".
func (c *Context) SetConfigured(h containers.Handle, configured bool) {
	d, ok := c.devices.Get(h)
	if !ok {
		return
	}
	d.Configured = configured
	if configured {
		return
	}
	for _, rh := range d.Radios.Slice() {
		if r, ok := c.radios.Get(rh); ok {
			for _, wh := range r.bsses.Slice() {
				if w, ok := c.InterfaceWifi(wh); ok {
					w.Info = BssInfo{}
				}
			}
		}
	}
}

// Registrar returns the local registrar state.
func (c *Context) Registrar() *Registrar { return &c.registrar }

// Devices returns every AlDevice handle currently in the graph.
func (c *Context) Devices() []containers.Handle {
	var out []containers.Handle
	c.devices.ForEach(func(h containers.Handle, _ *AlDevice) { out = append(out, h) })
	return out
}
