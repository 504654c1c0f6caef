package exporter

// NoopExporter is a no-op implementation used when an output is disabled.
type NoopExporter struct{}

func NewNoopExporter() *NoopExporter { return &NoopExporter{} }

func (n *NoopExporter) Export(_ *Report) (string, error) { return "", nil }
func (n *NoopExporter) Name() string                     { return "noop" }
