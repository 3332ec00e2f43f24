package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "al1905d.yaml")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestLoadValidConfig(t *testing.T) {
	p := writeTemp(t, `
al_mac_address: "02:00:00:00:00:01"
interfaces_list: [eth0, wlan0]
verbosity: 2
`)
	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "02:00:00:00:00:01", c.ALMacAddress)
	require.Equal(t, []string{"eth0", "wlan0"}, c.Interfaces)
	require.Equal(t, 2, c.Verbosity)
}

func TestLoadMissingMacFails(t *testing.T) {
	p := writeTemp(t, `interfaces_list: [eth0]`)
	_, err := Load(p)
	require.Error(t, err)
}

func TestLoadRegistrarRequiresBandsAndKey(t *testing.T) {
	p := writeTemp(t, `
al_mac_address: "02:00:00:00:00:01"
interfaces_list: [eth0]
registrar: true
registrar_bands: ["5GHz"]
registrar_auth_mode: wpa2psk
`)
	_, err := Load(p)
	require.Error(t, err) // missing registrar_key

	p2 := writeTemp(t, `
al_mac_address: "02:00:00:00:00:01"
interfaces_list: [eth0]
registrar: true
registrar_bands: ["5GHz"]
registrar_auth_mode: wpa2psk
registrar_key: "supersecret"
`)
	c, err := Load(p2)
	require.NoError(t, err)
	require.True(t, c.Registrar)
}

func TestEnvOverlayOverridesYAML(t *testing.T) {
	p := writeTemp(t, `
al_mac_address: "02:00:00:00:00:01"
interfaces_list: [eth0]
`)
	t.Setenv("AL1905D_VERBOSITY", "3")
	t.Setenv("AL1905D_INTERFACES_LIST", "eth1,eth2")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 3, c.Verbosity)
	require.Equal(t, []string{"eth1", "eth2"}, c.Interfaces)
}

func TestParseMAC(t *testing.T) {
	mac, err := ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.Equal(t, [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, mac)

	_, err = ParseMAC("not-a-mac")
	require.Error(t, err)
}
