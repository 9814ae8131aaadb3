package room

import "expvar"

var (
	metricHandsStarted    = expvar.NewInt("hands_started_total")
	metricActionsApplied  = expvar.NewInt("actions_applied_total")
	metricActionsRejected = expvar.NewInt("actions_rejected_total")
	metricShowdowns       = expvar.NewInt("showdowns_total")
	metricHandsVoided     = expvar.NewInt("hands_voided_total")
	metricRoomsActive     = expvar.NewInt("rooms_active")
)
