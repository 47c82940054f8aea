package node

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NethermindEth/ethcall/service"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sourcegraph/conc"
)

type httpService struct {
	srv      *http.Server
	listener net.Listener
}

var _ service.Service = (*httpService)(nil)

func (h *httpService) Run(ctx context.Context) error {
	errCh := make(chan error)
	defer close(errCh)

	var wg conc.WaitGroup
	defer wg.Wait()
	wg.Go(func() {
		if err := h.srv.Serve(h.listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case <-ctx.Done():
		return h.srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func newHTTPService(listener net.Listener, handler http.Handler) *httpService {
	return &httpService{
		srv: &http.Server{
			Addr:    listener.Addr().String(),
			Handler: handler,
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		},
		listener: listener,
	}
}

func makeHTTPHandler(caller Caller, cfg *Config, listener RequestListener, log utils.SimpleLogger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /call", instrument("/call", &callHandler{
		caller:         caller,
		defaultNetwork: cfg.Network,
		log:            log,
	}, listener))
	mux.Handle("GET /abi", instrument("/abi", http.HandlerFunc(handleABINames), listener))
	mux.Handle("GET /abi/{name}", instrument("/abi/{name}", http.HandlerFunc(handleABI), listener))
	mux.HandleFunc("/log/level", func(w http.ResponseWriter, r *http.Request) {
		utils.HTTPLogSettings(w, r, &cfg.LogLevel)
	})

	if cfg.HTTPCORS {
		return cors.Default().Handler(mux)
	}
	return mux
}

func makeMetrics(listener net.Listener, gatherer prometheus.Gatherer) *httpService {
	return newHTTPService(listener, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
