package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *AnalysisEvent) error { return nil }
func (n *NoopRecorder) RecordDigest(_ *DigestEvent) error     { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
