package ast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// parseTotal counts parse attempts by outcome (ok, syntax_error, failed).
var parseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "prism",
	Name:      "parse_total",
	Help:      "Total Python parse attempts by result",
}, []string{"result"})
