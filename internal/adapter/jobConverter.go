package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DermaRAG/internal/api"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/rag"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("/status/%s", id),
	}
}

func ToAskRequest(req api.AskRequest) rag.AskRequest {
	return rag.AskRequest{
		Message:      req.Message,
		Conversation: req.TranslatedConversation,
	}
}

func ToAskResponse(res rag.AskResult) api.AskResponse {
	return api.AskResponse{
		Response: res.Answer,
		Sources:  res.Sources,
		Cached:   res.Cached,
	}
}

func NewAskJob(id, traceId string, req api.AskRequest) jobModel.Job {
	return jobModel.Job{
		Id:          id,
		TraceId:     traceId,
		JobType:     jobModel.JobTypeAsk,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.AskInit,
		JobPayload: jobModel.JobPayload{
			Question:     req.Message,
			Conversation: req.TranslatedConversation,
		},
	}
}

func NewIngestJob(id, traceId, fileName, path string) jobModel.Job {
	return jobModel.Job{
		Id:          id,
		TraceId:     traceId,
		JobType:     jobModel.JobTypeIngest,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
		JobPayload: jobModel.JobPayload{
			IngestFileName: fileName,
			IngestURL:      path,
		},
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
	}
	switch job.JobType {
	case jobModel.JobTypeIngest:
		if job.Status == jobModel.JobStatusComplete {
			result.IngestedDocument = job.JobPayload.IngestFileName
		}
	default:
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		JobType:   string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: ragData.Question,
		Answer:   ragData.Answer,
		Sources:  ragData.Sources,
		Cached:   ragData.Cached,
	}
}

func BadRequest(id string, message string, code int) api.JobResponse {
	return api.JobResponse{
		Id: id,
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
