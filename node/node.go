package node

import (
	"context"
	"fmt"
	"math"
	"net"
	"reflect"
	"strconv"
	"time"

	"github.com/NethermindEth/ethcall/outcall"
	"github.com/NethermindEth/ethcall/service"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/NethermindEth/ethcall/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
)

const (
	defaultTimeout            = 30 * time.Second
	defaultMaxConcurrentCalls = 64
)

// Config is the top-level ethcall configuration.
type Config struct {
	LogLevel utils.LogLevel `mapstructure:"log-level"`
	LogFile  string         `mapstructure:"log-file"`
	Colour   bool           `mapstructure:"colour"`
	Network  utils.Network  `mapstructure:"network" validate:"required,network"`

	HTTP     bool   `mapstructure:"http"`
	HTTPHost string `mapstructure:"http-host" validate:"required_with=HTTP"`
	HTTPPort uint16 `mapstructure:"http-port"`
	HTTPCORS bool   `mapstructure:"http-cors"`

	Metrics     bool   `mapstructure:"metrics"`
	MetricsHost string `mapstructure:"metrics-host" validate:"required_with=Metrics"`
	MetricsPort uint16 `mapstructure:"metrics-port"`

	// MaxResponseBytes may not exceed the host's own response limit.
	MaxResponseBytes   uint64        `mapstructure:"max-response-bytes" validate:"lte=2097152"`
	Cycles             uint64        `mapstructure:"cycles"`
	Replicas           uint          `mapstructure:"replicas"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxConcurrentCalls uint          `mapstructure:"max-concurrent-calls"`
	MaxQueuedCalls     uint          `mapstructure:"max-queued-calls"`
}

// OutcallNode is what the command line drives.
type OutcallNode interface {
	Run(ctx context.Context)
	Config() Config
}

type NewOutcallNodeFn func(cfg *Config, version string) (OutcallNode, error)

type Node struct {
	cfg      *Config
	services []service.Service
	log      *utils.ZapLogger
	caller   *ThrottledCaller

	httpAddr    net.Addr
	metricsAddr net.Addr

	version string
}

// New sets the config and logger and prepares every enabled service. Listeners are bound
// here so that address problems surface before Run.
func New(cfg *Config, version string) (*Node, error) { //nolint:funlen
	if cfg.Network == 0 {
		cfg.Network = utils.Mainnet
	}
	if err := validator.Validator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var logFiles []utils.LogFile
	if cfg.LogFile != "" {
		logFiles = append(logFiles, utils.LogFile{Path: cfg.LogFile, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28})
	}
	log, err := utils.NewZapLogger(&cfg.LogLevel, cfg.Colour, logFiles...)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	var (
		outcallListener outcall.EventListener = &outcall.SelectiveListener{}
		httpListener    RequestListener       = &SelectiveListener{}
	)
	if cfg.Metrics {
		outcallListener = makeOutcallMetrics(registry)
		httpListener = makeHTTPMetrics(registry)
	}

	client := outcall.NewClient(newTransport(cfg, outcallListener, log)).
		WithLogger(log).
		WithListener(outcallListener)
	if cfg.MaxResponseBytes != 0 {
		client = client.WithMaxResponseBytes(cfg.MaxResponseBytes)
	}
	if cfg.Cycles != 0 {
		client = client.WithCycles(cfg.Cycles)
	}

	concurrency := cfg.MaxConcurrentCalls
	if concurrency == 0 {
		concurrency = defaultMaxConcurrentCalls
	}
	maxQueued := int32(math.MaxInt32)
	if cfg.MaxQueuedCalls != 0 && cfg.MaxQueuedCalls < math.MaxInt32 {
		maxQueued = int32(cfg.MaxQueuedCalls)
	}
	caller := NewThrottledCaller(client, concurrency, maxQueued)
	if cfg.Metrics {
		makeThrottlerMetrics(registry, caller)
	}
	log.Debugw("Outcall client ready",
		"network", cfg.Network,
		"replicas", cfg.Replicas,
		"maxConcurrentCalls", concurrency,
		"maxQueuedCalls", maxQueued,
	)

	n := &Node{
		cfg:     cfg,
		log:     log,
		caller:  caller,
		version: version,
	}

	if cfg.HTTP {
		listener, err := net.Listen("tcp", net.JoinHostPort(cfg.HTTPHost, strconv.FormatUint(uint64(cfg.HTTPPort), 10)))
		if err != nil {
			n.closeServices()
			return nil, fmt.Errorf("listen on http port: %w", err)
		}
		n.httpAddr = listener.Addr()
		n.services = append(n.services, newHTTPService(listener, makeHTTPHandler(caller, cfg, httpListener, log)))
	}
	if cfg.Metrics {
		listener, err := net.Listen("tcp", net.JoinHostPort(cfg.MetricsHost, strconv.FormatUint(uint64(cfg.MetricsPort), 10)))
		if err != nil {
			n.closeServices()
			return nil, fmt.Errorf("listen on metrics port: %w", err)
		}
		n.metricsAddr = listener.Addr()
		n.services = append(n.services, makeMetrics(listener, registry))
	}

	return n, nil
}

// NewTransport builds the transport described by cfg: one direct HTTP transport, or a
// replicated one when more than one replica is configured.
func NewTransport(cfg *Config) outcall.Transport {
	return newTransport(cfg, &outcall.SelectiveListener{}, utils.NewNopZapLogger())
}

func newTransport(cfg *Config, listener outcall.EventListener, log utils.SimpleLogger) outcall.Transport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	newReplica := func() outcall.Transport {
		return outcall.NewHTTPTransport().WithTimeout(timeout).WithListener(listener)
	}

	if cfg.Replicas <= 1 {
		return newReplica()
	}
	replicas := make([]outcall.Transport, 0, cfg.Replicas)
	for range cfg.Replicas {
		replicas = append(replicas, newReplica())
	}
	return outcall.NewReplicatedTransport(replicas...).WithLogger(log)
}

// closeServices releases what New acquired when construction fails part way.
func (n *Node) closeServices() {
	for _, s := range n.services {
		if h, ok := s.(*httpService); ok {
			if err := h.listener.Close(); err != nil {
				n.log.Warnw("Failed to close listener", "err", err)
			}
		}
	}
	// Nothing is logged afterwards; a write would reopen the log file.
	_ = n.log.Close()
}

// Run starts every service and blocks until ctx is done or a service fails.
// Run will wait for all services to return before exiting.
func (n *Node) Run(ctx context.Context) {
	n.log.Infow("Starting ethcall",
		"version", n.version,
		"network", n.cfg.Network,
		"http", n.httpAddr,
		"metrics", n.metricsAddr,
	)

	defer func() { _ = n.log.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	wg := conc.NewWaitGroup()
	for _, s := range n.services {
		wg.Go(func() {
			if err := s.Run(ctx); err != nil {
				n.log.Errorw("Service error", "name", reflect.TypeOf(s), "err", err)
				cancel()
			}
		})
	}
	defer wg.Wait()

	<-ctx.Done()
	cancel()
	n.log.Infow("Shutting down ethcall...")
}

func (n *Node) Config() Config {
	return *n.cfg
}

// Caller returns the throttled client the HTTP service uses.
func (n *Node) Caller() Caller {
	return n.caller
}

// HTTPAddr is nil when the HTTP service is disabled.
func (n *Node) HTTPAddr() net.Addr {
	return n.httpAddr
}

// MetricsAddr is nil when metrics are disabled.
func (n *Node) MetricsAddr() net.Addr {
	return n.metricsAddr
}
