package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	AskInit          InternalStatus = "Init"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	CacheCall        InternalStatus = "CacheCall"
	VectorDBCall     InternalStatus = "VectorDB"
	PromptBuild      InternalStatus = "Prompt"
	LLMCall          InternalStatus = "LLM"
	Sanitize         InternalStatus = "Sanitize"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"

	Complete InternalStatus = "Complete"

	JobTypeAsk    JobType = "Ask"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question     string   `json:"question,omitempty"`
	Conversation string   `json:"translated_conversation,omitempty"`
	Answer       string   `json:"answer,omitempty"`
	Sources      []string `json:"sources,omitempty"`
	Cached       bool     `json:"cached,omitempty"`

	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestURL      string `json:"ingest_url,omitempty"`
}

func (j Job) Failed() bool {
	return j.Status == JobStatusError
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
