package ports

// CycleMetrics records decision-cycle and command outcomes for the ops
// surface.
type CycleMetrics interface {
	RecordCycle(ok bool)
	RecordCommand(kind string, ok bool)
	RecordRescue()
	RecordExpedition()
}
