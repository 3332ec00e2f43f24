//go:build linux

package dispatch

import (
	"fmt"
	"net"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"

	goerrors "github.com/prplmesh/go1905/pkg/errors"
)

// LinuxTransport binds one AF_PACKET socket per managed interface for
// EtherType 0x893A (spec.md section 4.4, "A bound raw socket (layer-2)
// for EtherType 0x893A"), using mdlayher/packet the way a networking
// team reaches for raw L2 sockets in Go (SPEC_FULL.md section 12 —
// nothing in the retrieved pack opens one, so this is the out-of-pack,
// real-ecosystem pick).
type LinuxTransport struct {
	conns map[string]*packet.Conn
	ifis  map[string]*net.Interface
}

// NewLinuxTransport binds a raw socket on every named interface.
func NewLinuxTransport(ifaceNames []string) (*LinuxTransport, error) {
	t := &LinuxTransport{
		conns: make(map[string]*packet.Conn, len(ifaceNames)),
		ifis:  make(map[string]*net.Interface, len(ifaceNames)),
	}
	for _, name := range ifaceNames {
		ifi, err := net.InterfaceByName(name)
		if err != nil {
			return nil, goerrors.ResourceError("lookup interface "+name, err)
		}
		conn, err := packet.Listen(ifi, packet.Raw, int(ethernet.EtherType(0x893A)), nil)
		if err != nil {
			return nil, goerrors.ResourceError("bind raw socket on "+name, err)
		}
		t.conns[name] = conn
		t.ifis[name] = ifi
	}
	return t, nil
}

// Send writes frame on the bound socket for ifaceName.
func (t *LinuxTransport) Send(ifaceName string, frame []byte) error {
	conn, ok := t.conns[ifaceName]
	if !ok {
		return fmt.Errorf("no bound socket for interface %q", ifaceName)
	}
	addr := &packet.Addr{HardwareAddr: t.ifis[ifaceName].HardwareAddr}
	_, err := conn.WriteTo(frame, addr)
	if err == nil {
		return nil
	}
	if isTemporary(err) {
		return goerrors.NewRetryable(err.Error())
	}
	return err
}

// LocalMAC returns the bound interface's hardware address.
func (t *LinuxTransport) LocalMAC(ifaceName string) ([6]byte, error) {
	var out [6]byte
	ifi, ok := t.ifis[ifaceName]
	if !ok {
		return out, fmt.Errorf("no bound socket for interface %q", ifaceName)
	}
	copy(out[:], ifi.HardwareAddr)
	return out, nil
}

// Recv blocks until a frame arrives on ifaceName's socket or deadline
// elapses, returning (0, nil) on timeout so the caller's poll loop
// keeps its cadence instead of blocking forever on an idle interface
// (spec.md section 5: "Only poll() on the set of sockets and timers").
func (t *LinuxTransport) Recv(ifaceName string, buf []byte, deadline time.Duration) (int, error) {
	conn, ok := t.conns[ifaceName]
	if !ok {
		return 0, fmt.Errorf("no bound socket for interface %q", ifaceName)
	}
	if err := conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return 0, err
	}
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Close releases every bound socket.
func (t *LinuxTransport) Close() error {
	var firstErr error
	for _, conn := range t.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func isTemporary(err error) bool {
	type temporary interface {
		Temporary() bool
	}
	te, ok := err.(temporary)
	return ok && te.Temporary()
}
