// Package dispatch implements the per-interface raw-socket message
// dispatcher spec.md section 4.4 describes: a single-threaded
// cooperative event loop that polls sockets and timers, allocates
// message IDs, deduplicates inbound frames, reassembles fragmented
// CMDUs, and retries outgoing sends with backoff on EAGAIN.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/prplmesh/go1905/internal/metrics"
	"github.com/prplmesh/go1905/internal/wire"
	goerrors "github.com/prplmesh/go1905/pkg/errors"
)

// dedupWindowMinEntries and dedupWindowMinAge implement spec.md section
// 4.4's dedup window: "100 entries or 10 seconds, whichever is larger".
const (
	dedupWindowMinEntries = 100
	dedupWindowMinAge     = 10 * time.Second
	reassemblyTimeout     = 10 * time.Second
	maxSendRetries        = 3
	sendRetryBackoff      = 10 * time.Millisecond
)

// Transport sends and receives raw Ethernet frames on named local
// interfaces. The real implementation (socket_linux.go) binds an
// AF_PACKET socket per interface via mdlayher/packet; tests use an
// in-memory fake so the dispatcher's logic is exercised without root
// privileges or a real NIC.
type Transport interface {
	// Send writes frame out ifaceName. An error for which
	// goerrors.Retryable reports true (e.g. one built with
	// goerrors.NewRetryable) triggers the backoff retry path.
	Send(ifaceName string, frame []byte) error
	// LocalMAC returns the MAC address of ifaceName.
	LocalMAC(ifaceName string) ([6]byte, error)
}

// Handler processes one fully-reassembled CMDU. It must return
// promptly (spec.md section 5: "Handlers must not block").
type Handler func(ctx context.Context, from FrameMeta, tlvs []wire.Tlv) error

// FrameMeta carries the per-CMDU metadata a Handler needs beyond the
// TLV list itself.
type FrameMeta struct {
	SrcMac      [6]byte
	Iface       string
	MessageType wire.MessageType
	MID         uint16
}

// Options configures a Dispatcher, following the options-struct
// constructor idiom SPEC_FULL.md section 11 borrows from
// jra3-system-agent.
type Options struct {
	Logger    logr.Logger
	Metrics   *metrics.Registry
	Transport Transport
	ALMac     [6]byte
	Registry  wire.Registry // TLV type registry, normally wire.StandardRegistry()
}

type dedupEntry struct {
	key  dedupKey
	seen time.Time
}

type dedupKey struct {
	srcAlMac   [6]byte
	mid        uint16
	fragmentID uint8
}

// Dispatcher is the single-threaded event-loop core. Every exported
// method runs on the caller's goroutine with no internal locking
// beyond what's needed to make Send safe from a concurrent caller
// (spec.md section 5: the data model/dispatch logic itself is
// single-threaded, but Send may be called from outside the loop, e.g.
// by the topology package's own timers sharing the same thread in
// practice — the mutex exists only to make that contract explicit if a
// caller violates it).
type Dispatcher struct {
	log       logr.Logger
	metrics   *metrics.Registry
	transport Transport
	alMac     [6]byte
	registry  wire.Registry

	mu           sync.Mutex
	nextMIDValue uint16
	handlers     map[wire.MessageType]Handler
	dedup        []dedupEntry
	reassembler  *wire.Reassembler
	firstSeen    map[reassemblyKey]time.Time
}

type reassemblyKey struct {
	srcAlMac [6]byte
	mid      uint16
}

// NewDispatcher builds a Dispatcher. ALMac must be the local AL's own
// address so the receive contract can drop self-originated frames
// (spec.md section 4.4, "Drop if ... source is our own AL MAC").
func NewDispatcher(opts Options) *Dispatcher {
	reg := opts.Registry
	if reg == nil {
		reg = wire.StandardRegistry()
	}
	return &Dispatcher{
		log:          opts.Logger.WithName("dispatch"),
		metrics:      opts.Metrics,
		transport:    opts.Transport,
		alMac:        opts.ALMac,
		registry:     reg,
		handlers:     make(map[wire.MessageType]Handler),
		reassembler:  wire.NewReassembler(),
		firstSeen:    make(map[reassemblyKey]time.Time),
	}
}

// RegisterHandler installs fn as the handler for mt. Only one handler
// per message type is supported; registering twice replaces the prior
// handler.
func (d *Dispatcher) RegisterHandler(mt wire.MessageType, fn Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[mt] = fn
}

// AllocateMID returns the next message ID for this AL, wrapping at
// 16 bits (spec.md GLOSSARY: "MID ... unique per sending AL").
func (d *Dispatcher) AllocateMID() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	mid := d.nextMIDValue
	d.nextMIDValue++
	return mid
}

// Send implements the send contract (spec.md section 4.4): allocates a
// MID if mid is nil, forges the CMDU into one or more fragments, and
// writes each fragment, retrying up to maxSendRetries times with
// sendRetryBackoff on a retryable transport error before dropping the
// whole CMDU (spec.md section 4.4, "Backpressure").
func (d *Dispatcher) Send(ctx context.Context, ifaceName string, dstMac [6]byte, mt wire.MessageType, mid *uint16, relay bool, tlvs []wire.Tlv, mss int) (uint16, error) {
	var m uint16
	if mid != nil {
		m = *mid
	} else {
		m = d.AllocateMID()
	}

	srcMac, err := d.transport.LocalMAC(ifaceName)
	if err != nil {
		return m, goerrors.ResourceError("local mac for "+ifaceName, err)
	}

	fragments, err := wire.Fragments(mt, m, relay, tlvs, mss)
	if err != nil {
		return m, goerrors.WireError("forge cmdu", err)
	}

	for _, frag := range fragments {
		frame := wire.ForgeFrame(dstMac, srcMac, frag.Header, frag.Payload)
		if err := d.sendWithRetry(ctx, ifaceName, frame); err != nil {
			d.countDropped("send_failed")
			return m, goerrors.ResourceError("send fragment", err)
		}
	}
	d.countSent(mt)
	return m, nil
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, ifaceName string, frame []byte) error {
	op := func() (struct{}, error) {
		err := d.transport.Send(ifaceName, frame)
		if err != nil && goerrors.Retryable(err) {
			d.countRetry()
			return struct{}{}, err
		}
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(sendRetryBackoff)),
		backoff.WithMaxTries(maxSendRetries+1),
	)
	return err
}

// HandleFrame implements the receive contract (spec.md section 4.4)
// for one raw Ethernet frame observed on ifaceName at time now.
func (d *Dispatcher) HandleFrame(ctx context.Context, now time.Time, ifaceName string, raw []byte) {
	frame, err := wire.ParseFrame(raw)
	if err != nil {
		d.log.V(1).Info("dropping frame: header parse failed", "error", err)
		d.countDropped("bad_header")
		return
	}
	if frame.SrcMac == d.alMac {
		return // our own transmission, looped back by the switch/bridge
	}
	if frame.SrcMac[0]&0x01 != 0 {
		d.countDropped("multicast_source")
		return // multicast/broadcast source address is never valid
	}

	d.mu.Lock()
	duplicate := d.isDuplicate(now, frame.SrcMac, frame.Header.MessageID, frame.Header.FragmentID)
	d.mu.Unlock()
	if duplicate {
		d.countDedup()
		return
	}

	rkey := reassemblyKey{srcAlMac: frame.SrcMac, mid: frame.Header.MessageID}
	d.mu.Lock()
	_, buffered := d.firstSeen[rkey]
	if !buffered {
		d.firstSeen[rkey] = now
	}
	d.mu.Unlock()

	complete, done := d.reassembler.Add(frame.SrcMac, frame.Header, frame.Payload)
	if !done {
		if !buffered && d.metrics != nil {
			d.metrics.PendingReassembly.Inc()
		}
		return
	}
	d.mu.Lock()
	delete(d.firstSeen, rkey)
	d.mu.Unlock()
	if buffered && d.metrics != nil {
		d.metrics.PendingReassembly.Dec()
	}

	tlvs, err := wire.ParseList(d.registry, complete)
	if err != nil {
		d.log.V(1).Info("dropping cmdu: tlv parse failed", "error", err, "mid", frame.Header.MessageID)
		d.countDropped("bad_tlv")
		return
	}

	d.mu.Lock()
	handler, ok := d.handlers[frame.Header.MessageType]
	d.mu.Unlock()
	if !ok {
		d.countDropped("no_handler")
		return
	}

	meta := FrameMeta{SrcMac: frame.SrcMac, Iface: ifaceName, MessageType: frame.Header.MessageType, MID: frame.Header.MessageID}
	traceID := uuid.New().String() // debug-only correlation tag, never on the wire
	if err := handler(ctx, meta, tlvs); err != nil {
		d.log.Error(err, "handler failed", "trace", traceID, "mid", frame.Header.MessageID)
		return
	}
	d.countReceived(frame.Header.MessageType)
}

// isDuplicate reports whether (srcMac, mid, fragmentID) has already
// been seen within the dedup window, recording it if not. Each
// fragment of a multi-fragment CMDU carries a distinct fragmentID, so
// keying on the triple lets every fragment reach the reassembler while
// still catching a retransmitted fragment (spec.md section 4.4: "if
// already seen and fragment-id already delivered, drop"). Callers must
// hold d.mu.
func (d *Dispatcher) isDuplicate(now time.Time, srcMac [6]byte, mid uint16, fragmentID uint8) bool {
	d.pruneDedupLocked(now)
	key := dedupKey{srcAlMac: srcMac, mid: mid, fragmentID: fragmentID}
	for _, e := range d.dedup {
		if e.key == key {
			return true
		}
	}
	d.dedup = append(d.dedup, dedupEntry{key: key, seen: now})
	return false
}

// pruneDedupLocked drops entries older than dedupWindowMinAge, but
// never below dedupWindowMinEntries kept entries (spec.md section 4.4:
// "100 entries or 10 seconds, whichever is larger").
func (d *Dispatcher) pruneDedupLocked(now time.Time) {
	if len(d.dedup) <= dedupWindowMinEntries {
		return
	}
	cutoff := now.Add(-dedupWindowMinAge)
	keep := d.dedup[:0]
	for i, e := range d.dedup {
		if e.seen.After(cutoff) || len(keep)+len(d.dedup)-i <= dedupWindowMinEntries {
			keep = append(keep, e)
		}
	}
	d.dedup = keep
}

// ExpireReassembly drops any fragment buffer older than
// reassemblyTimeout (spec.md section 4.3: "a reassembly timeout of 10
// seconds. On timeout, partial state is discarded"). Callers invoke
// this from the scheduler's timer wheel (spec.md section 9).
func (d *Dispatcher) ExpireReassembly(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cutoff := now.Add(-reassemblyTimeout)
	for k, t := range d.firstSeen {
		if t.Before(cutoff) {
			d.reassembler.Drop(k.srcAlMac, k.mid)
			delete(d.firstSeen, k)
			if d.metrics != nil {
				d.metrics.ReassemblyTimeouts.Inc()
				d.metrics.PendingReassembly.Dec()
			}
		}
	}
}

func (d *Dispatcher) countSent(mt wire.MessageType) {
	if d.metrics != nil {
		d.metrics.CmdusSent.WithLabelValues(mtLabel(mt)).Inc()
	}
}

func (d *Dispatcher) countReceived(mt wire.MessageType) {
	if d.metrics != nil {
		d.metrics.CmdusReceived.WithLabelValues(mtLabel(mt)).Inc()
	}
}

func (d *Dispatcher) countDropped(reason string) {
	if d.metrics != nil {
		d.metrics.CmdusDropped.WithLabelValues(reason).Inc()
	}
}

func (d *Dispatcher) countDedup() {
	if d.metrics != nil {
		d.metrics.DedupHits.Inc()
	}
}

func (d *Dispatcher) countRetry() {
	if d.metrics != nil {
		d.metrics.SendRetries.Inc()
	}
}

func mtLabel(mt wire.MessageType) string {
	return wire.MessageTypeName(mt)
}
