package commonModels

import (
	"context"
	"time"
)

// Consultation is one answered (or failed) ask, kept for audit.
type Consultation struct {
	TraceId      string
	Question     string
	Conversation string
	Answer       string
	Sources      []string
	Cached       bool
	Error        string
	Latency      time.Duration
	CreatedAt    time.Time
}

type ConsultationRecorder interface {
	Record(ctx context.Context, c Consultation) error
}
