package node

import (
	"strconv"
	"time"

	"github.com/NethermindEth/ethcall/outcall"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/prometheus/client_golang/prometheus"
)

var latencyBuckets = []float64{
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
	1, // 1s
	2.5,
	5,
	10,
	30,
}

// networkLabel keeps label cardinality bounded when callers send arbitrary network names.
func networkLabel(network string) string {
	var n utils.Network
	if err := n.Set(network); err != nil {
		return "unknown"
	}
	return n.String()
}

func makeOutcallMetrics(reg prometheus.Registerer) outcall.EventListener {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "outcall",
		Name:      "calls",
	}, []string{"network", "result"})
	callLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "outcall",
		Name:      "call_latency",
		Buckets:   latencyBuckets,
	}, []string{"network", "result"})
	responseLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "outcall",
		Subsystem: "http",
		Name:      "response_latency",
		Buckets:   latencyBuckets,
	}, []string{"host", "status"})
	reg.MustRegister(calls, callLatency, responseLatency)
	// Successful call series exist from startup so rates start at zero.
	for _, n := range utils.Networks {
		calls.WithLabelValues(n.String(), "ok")
	}

	return &outcall.SelectiveListener{
		OnCallCb: func(network, _ string, took time.Duration, err error) {
			result := "ok"
			if err != nil {
				result = outcall.Classify(err).String()
			}
			network = networkLabel(network)
			calls.WithLabelValues(network, result).Inc()
			callLatency.WithLabelValues(network, result).Observe(took.Seconds())
		},
		OnResponseCb: func(host string, status int, took time.Duration) {
			responseLatency.WithLabelValues(host, strconv.Itoa(status)).Observe(took.Seconds())
		},
	}
}

func makeHTTPMetrics(reg prometheus.Registerer) RequestListener {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "service",
		Subsystem: "http",
		Name:      "requests",
	}, []string{"route", "status"})
	requestLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "service",
		Subsystem: "http",
		Name:      "requests_latency",
		Buckets:   latencyBuckets,
	}, []string{"route"})
	reg.MustRegister(requests, requestLatencies)

	return &SelectiveListener{
		OnRequestHandledCb: func(route string, status int, took time.Duration) {
			requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			requestLatencies.WithLabelValues(route).Observe(took.Seconds())
		},
	}
}

func makeThrottlerMetrics(reg prometheus.Registerer, caller *ThrottledCaller) {
	queued := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "outcall",
		Name:      "queued_calls",
	}, func() float64 {
		return float64(caller.QueueLen())
	})
	running := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "outcall",
		Name:      "running_calls",
	}, func() float64 {
		return float64(caller.JobsRunning())
	})
	reg.MustRegister(queued, running)
}
