// Command al1905d is the IEEE 1905.1/1a + Multi-AP Abstraction Layer
// entity. Its startup sequence is al_entity_main.c's (SPEC_FULL.md
// section 13) with the socket step moved ahead: load config, bind
// per-interface sockets, wire the dispatcher and managers, enumerate
// radios, then enter the single-threaded poll loop spec.md section 5
// describes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/prplmesh/go1905/internal/autoconfig"
	"github.com/prplmesh/go1905/internal/config"
	"github.com/prplmesh/go1905/internal/datamodel"
	"github.com/prplmesh/go1905/internal/dispatch"
	"github.com/prplmesh/go1905/internal/metrics"
	"github.com/prplmesh/go1905/internal/platform"
	"github.com/prplmesh/go1905/internal/topology"
	goerrors "github.com/prplmesh/go1905/pkg/errors"
)

// pollInterval is how often the run loop drains sockets and fires
// due timers; spec.md section 5 leaves the concrete suspension
// granularity to the implementation ("poll() on the set of sockets and
// timers").
const pollInterval = 250 * time.Millisecond

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "/etc/al1905d/config.yaml", "path to al1905d config file")
	pflag.Parse()

	log := platform.NewLogSink(func(level int, format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}).WithName("al1905d")

	if err := run(log, configPath); err != nil {
		log.Error(err, "al1905d exited")
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a startup error to the process exit code spec.md
// section 7 assigns per error kind (config: 1, resource: 2, driver: 3).
func exitCodeFor(err error) int {
	kind, ok := goerrors.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case goerrors.KindResource:
		return 2
	case goerrors.KindDriver:
		return 3
	default:
		return 1
	}
}

func run(log logr.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	alMac, err := config.ParseMAC(cfg.ALMacAddress)
	if err != nil {
		return goerrors.ConfigError("al_mac_address", err)
	}

	transport, err := dispatch.NewLinuxTransport(cfg.Interfaces)
	if err != nil {
		return err
	}
	defer transport.Close()

	reg := metrics.New(prometheus.DefaultRegisterer)

	disp := dispatch.NewDispatcher(dispatch.Options{
		Logger:    log,
		Metrics:   reg,
		Transport: transport,
		ALMac:     alMac,
	})

	dm := datamodel.NewContext()
	dm.SetLocalDevice(&datamodel.AlDevice{ALMac: alMac})
	if cfg.Registrar {
		infos := make([]datamodel.WscRegistrarInfo, 0, len(cfg.RegistrarBands))
		for _, b := range cfg.RegistrarBands {
			band, err := config.ParseBand(b)
			if err != nil {
				return goerrors.ConfigError("registrar_bands", err)
			}
			infos = append(infos, datamodel.WscRegistrarInfo{
				Band:     band,
				SSID:     cfg.RegistrarSSID,
				Key:      cfg.RegistrarKey,
				AuthMode: config.ParseAuthModeMust(cfg.RegistrarAuthMode),
			})
		}
		*dm.Registrar() = datamodel.Registrar{Enabled: true, Infos: infos}
	}

	topoMgr := topology.NewManager(topology.Options{
		Logger:     log,
		Context:    dm,
		Dispatcher: disp,
		Interfaces: cfg.Interfaces,
	})

	enumerator := &platform.MockRadioEnumerator{} // real netlink backend is an external trait, spec.md section 1
	driver := &platform.MockWifiDriver{}
	wscEngine := &platform.MockWscEngine{}
	autoMgr := autoconfig.NewManager(autoconfig.Options{
		Logger:     log,
		Context:    dm,
		Dispatcher: disp,
		Enumerator: enumerator,
		Driver:     driver,
		Wsc:        wscEngine,
		Interfaces: cfg.Interfaces,
	})
	if err := autoMgr.Discover(context.Background()); err != nil {
		log.Error(err, "initial radio discovery failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runLoop(ctx, log, transport, cfg.Interfaces, disp, topoMgr, autoMgr)
}

// runLoop is the single-threaded cooperative event loop spec.md section
// 5 mandates: no lock on the data model, every mutation happens here or
// in a Handler invoked from here. The loop waits on a ticker; on each
// tick it runs the timers and then drains every interface, where each
// transport.Recv call blocks on the bound AF_PACKET socket for up to
// pollInterval before reporting a timeout.
func runLoop(ctx context.Context, log logr.Logger, transport *dispatch.LinuxTransport, ifaces []string, disp *dispatch.Dispatcher, topoMgr *topology.Manager, autoMgr *autoconfig.Manager) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case now := <-ticker.C:
			disp.ExpireReassembly(now)
			topoMgr.Poll(ctx, now)
			autoMgr.Poll(ctx, now)
			for _, ifaceName := range ifaces {
				drainInterface(ctx, log, transport, ifaceName, buf, disp, now)
			}
		}
	}
}

// drainInterface reads frames from ifaceName's socket until a read
// times out: each read waits up to pollInterval, and a (0, nil) timeout
// result ends this interface's drain for the tick.
func drainInterface(ctx context.Context, log logr.Logger, transport *dispatch.LinuxTransport, ifaceName string, buf []byte, disp *dispatch.Dispatcher, now time.Time) {
	for {
		n, err := transport.Recv(ifaceName, buf, pollInterval)
		if err != nil {
			log.Error(err, "recv failed", "interface", ifaceName)
			return
		}
		if n == 0 {
			return
		}
		frame := append([]byte(nil), buf[:n]...)
		disp.HandleFrame(ctx, now, ifaceName, frame)
	}
}
