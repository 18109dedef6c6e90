package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decentpay",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "Ledger RPC calls issued, by method.",
	}, []string{"method"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decentpay",
		Subsystem: "rpc",
		Name:      "failures_total",
		Help:      "Ledger RPC calls that failed at the transport or protocol layer, by method.",
	}, []string{"method"})
)
