package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type RootResponse struct {
	Message string `json:"message" example:"Dermatology Assistant API with RAAG is running."`
}

// AskResponse carries either the answer or the pipeline error, never both.
type AskResponse struct {
	Response     string   `json:"response,omitempty" example:"Topical corticosteroids are first line for mild eczema."`
	ResponseHTML string   `json:"response_html,omitempty"`
	Sources      []string `json:"sources,omitempty" example:"Fitzpatrick Dermatology (page 112)"`
	Cached       bool     `json:"cached,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	JobType   string            `json:"job_type" example:"Ask"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Cached   bool     `json:"cached"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
	IngestedDocument    string       `json:"ingested_document,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type AskRequest struct {
	Message                string `json:"message" validate:"required" example:"What is the first line treatment for mild eczema?"`
	TranslatedConversation string `json:"translated_conversation" example:"Patient: my elbows itch at night."`
}
