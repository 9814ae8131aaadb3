package httptransport

import "expvar"

var (
	metricHandQueries     = expvar.NewInt("hand_query_total")
	metricHandQueryErrors = expvar.NewInt("hand_query_errors_total")
)
