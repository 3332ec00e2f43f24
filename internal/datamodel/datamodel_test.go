package datamodel

import (
	"testing"

	"github.com/prplmesh/go1905/internal/containers"
	"github.com/stretchr/testify/require"
)

func mac(b byte) [6]byte { return [6]byte{b, b, b, b, b, b} }

func TestSetLocalDeviceSingleton(t *testing.T) {
	c := NewContext()
	_, ok := c.LocalDevice()
	require.False(t, ok)

	h := c.SetLocalDevice(&AlDevice{ALMac: mac(1)})
	local, ok := c.LocalDevice()
	require.True(t, ok)
	require.True(t, local.Local)
	require.Equal(t, mac(1), local.ALMac)

	dev, ok := c.Device(h)
	require.True(t, ok)
	require.Same(t, local, dev)
}

func TestNeighborLinkIsSymmetric(t *testing.T) {
	c := NewContext()
	aDev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	bDev := c.AddDevice(&AlDevice{ALMac: mac(2)})
	a := c.AddInterface(aDev, &Interface{MAC: mac(10)})
	b := c.AddInterface(bDev, &Interface{MAC: mac(20)})

	c.LinkNeighbors(a, b, true)

	an, ab := c.Neighbors(a)
	require.Equal(t, []containers.Handle{b}, an)
	require.Equal(t, []bool{true}, ab)

	bn, bb := c.Neighbors(b)
	require.Equal(t, []containers.Handle{a}, bn)
	require.Equal(t, []bool{true}, bb)

	c.UnlinkNeighbors(a, b)
	an, _ = c.Neighbors(a)
	bn, _ = c.Neighbors(b)
	require.Empty(t, an)
	require.Empty(t, bn)
}

func TestRemoveDeviceCascadesRadiosAndInterfaces(t *testing.T) {
	c := NewContext()
	dev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	radio := c.AddRadio(dev, &Radio{UID: mac(5), MaxBSS: 2})
	wifi, overLimit := c.AddInterfaceWifi(radio, &InterfaceWifi{BSSID: mac(6)})
	require.False(t, overLimit)
	plain := c.AddInterface(dev, &Interface{MAC: mac(7)})

	c.RemoveDevice(dev)

	_, ok := c.Device(dev)
	require.False(t, ok)
	_, ok = c.Radio(radio)
	require.False(t, ok)
	_, ok = c.InterfaceWifi(wifi)
	require.False(t, ok)
	_, ok = c.Interface(plain)
	require.False(t, ok)
}

func TestRemoveDeviceUnlinksNeighborsSymmetrically(t *testing.T) {
	c := NewContext()
	aDev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	bDev := c.AddDevice(&AlDevice{ALMac: mac(2)})
	a := c.AddInterface(aDev, &Interface{MAC: mac(10)})
	b := c.AddInterface(bDev, &Interface{MAC: mac(20)})
	c.LinkNeighbors(a, b, false)

	c.RemoveDevice(aDev)

	bn, _ := c.Neighbors(b)
	require.Empty(t, bn)
}

func TestAddInterfaceWifiReportsOverLimitWithoutRejecting(t *testing.T) {
	c := NewContext()
	dev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	radio := c.AddRadio(dev, &Radio{UID: mac(5), MaxBSS: 1})

	_, overLimit := c.AddInterfaceWifi(radio, &InterfaceWifi{BSSID: mac(6)})
	require.False(t, overLimit)

	h, overLimit := c.AddInterfaceWifi(radio, &InterfaceWifi{BSSID: mac(7)})
	require.True(t, overLimit)
	// Still configured, not rejected (spec.md invariant 5).
	_, ok := c.InterfaceWifi(h)
	require.True(t, ok)
}

// TestSetConfiguredHonorsArgument guards the spec.md section 9 bug fix:
// the original sets local_device->configured = true unconditionally.
func TestSetConfiguredHonorsArgument(t *testing.T) {
	c := NewContext()
	dev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	c.SetConfigured(dev, true)
	d, _ := c.Device(dev)
	require.True(t, d.Configured)

	c.SetConfigured(dev, false)
	d, _ = c.Device(dev)
	require.False(t, d.Configured)
}

func TestSetConfiguredFalseCascadesUnconfiguresRadios(t *testing.T) {
	c := NewContext()
	dev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	radio := c.AddRadio(dev, &Radio{UID: mac(5)})
	wifi, _ := c.AddInterfaceWifi(radio, &InterfaceWifi{BSSID: mac(6), Info: BssInfo{SSID: "home"}})

	c.SetConfigured(dev, false)

	w, _ := c.InterfaceWifi(wifi)
	require.Equal(t, BssInfo{}, w.Info)
}

// TestNeighborLinkDoesNotCollideAcrossHandleNamespaces guards against a
// plain Interface and an InterfaceWifi landing on the same numeric
// handle value: c.interfaces and c.wifis are independently-numbered
// arenas, so linking a device's first InterfaceWifi (handle 1 in its
// arena) must never be confused with another device's first plain
// Interface (also handle 1 in its own arena).
func TestNeighborLinkDoesNotCollideAcrossHandleNamespaces(t *testing.T) {
	c := NewContext()
	aDev := c.AddDevice(&AlDevice{ALMac: mac(1)})
	radio := c.AddRadio(aDev, &Radio{UID: mac(5)})
	wifi, _ := c.AddInterfaceWifi(radio, &InterfaceWifi{BSSID: mac(6)})

	bDev := c.AddDevice(&AlDevice{ALMac: mac(2)})
	plain := c.AddInterface(bDev, &Interface{MAC: mac(20)})

	require.Equal(t, containers.Handle(1), wifi&^wifiHandleTag, "test assumes both arenas allocate handle 1 first")
	require.Equal(t, containers.Handle(1), plain)

	c.LinkNeighbors(wifi, plain, false)

	wn, _ := c.Neighbors(wifi)
	require.Equal(t, []containers.Handle{plain}, wn)
	pn, _ := c.Neighbors(plain)
	require.Equal(t, []containers.Handle{wifi}, pn)

	w, ok := c.InterfaceWifi(wifi)
	require.True(t, ok)
	require.Equal(t, mac(6), w.BSSID, "wifi handle must resolve to the wifi interface, not the colliding plain one")
}

func TestFindDeviceByMac(t *testing.T) {
	c := NewContext()
	h := c.AddDevice(&AlDevice{ALMac: mac(9)})
	found, dev, ok := c.FindDeviceByMac(mac(9))
	require.True(t, ok)
	require.Equal(t, h, found)
	require.Equal(t, mac(9), dev.ALMac)

	_, _, ok = c.FindDeviceByMac(mac(99))
	require.False(t, ok)
}
