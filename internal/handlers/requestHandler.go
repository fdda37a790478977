package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DermaRAG/internal/adapter"
	"github.com/akolanti/DermaRAG/internal/adapter/utils"
	"github.com/akolanti/DermaRAG/internal/api"
	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/job"
	"github.com/akolanti/DermaRAG/internal/rag"
	"github.com/akolanti/DermaRAG/internal/render"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

const RootMessage = "Dermatology Assistant API with RAAG is running."

var logRH = logger_i.NewLogger("RequestHandler")

type Handler struct {
	jobs      *job.Service
	rag       rag.Service
	uploadDir string
}

// New builds the request handlers. uploadDir receives ingested documents
// until a worker has processed them; empty means ./temporary_data.
func New(jobs *job.Service, ragService rag.Service, uploadDir string) *Handler {
	return &Handler{jobs: jobs, rag: ragService, uploadDir: uploadDir}
}

// RootHandler godoc
// @Summary      Service banner
// @Description  Liveness message
// @Tags         health
// @Produce      json
// @Success      200  {object}  api.RootResponse
// @Router       / [get]
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.RootResponse{Message: RootMessage})
}

// AskHandler godoc
// @Summary      Ask the dermatology assistant
// @Description  Answers a question from the reference library and the consultation transcript. Pipeline failures are reported in the error field with status 200.
// @Tags         ask
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Question and translated conversation"
// @Param        format   query     string          false "Also return the answer rendered as HTML" Enums(html)
// @Success      200      {object}  api.AskResponse
// @Failure      400      {object}  api.AskResponse
// @Security     BearerAuth
// @Router       /ask [post]
func (h *Handler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.FromContext(r.Context())

	req, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	res, err := h.rag.Ask(r.Context(), adapter.ToAskRequest(req))
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			writeJsonResponse(w, http.StatusBadRequest, api.AskResponse{Error: err.Error()})
			return
		}
		// callers read failures from the body, the status stays 200
		log.Error("Ask failed", "err", err)
		writeJsonResponse(w, http.StatusOK, api.AskResponse{Error: err.Error()})
		return
	}

	resp := adapter.ToAskResponse(res)
	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		if resp.ResponseHTML, err = render.ToHTML(res.Answer); err != nil {
			log.Warn("Could not render answer", "err", err)
		}
	}
	writeJsonResponse(w, http.StatusOK, resp)
}

// AskJobHandler godoc
// @Summary      Ask asynchronously
// @Description  Queues a question for a worker and returns the job id
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest       true  "Question and translated conversation"
// @Success      202      {object}  api.InitJobResponse
// @Failure      400      {object}  api.JobResponse
// @Failure      503      {object}  api.JobResponse
// @Security     BearerAuth
// @Router       /ask/jobs [post]
func (h *Handler) AskJobHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		logRH.FromContext(r.Context()).Warn("Bad ask job request", "err", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "message is required")
		return
	}

	newJob := adapter.NewAskJob(utils.GetNewUUID(), logger_i.TraceID(r.Context()), req)
	h.submit(w, r, newJob.Id, func() error { return h.jobs.Submit(r.Context(), newJob) })
}

// GetStatusHandler godoc
// @Summary      Job status
// @Description  Returns the state of an ask or ingest job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.JobResponse
// @Security     BearerAuth
// @Router       /status/{id} [get]
func (h *Handler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	logRH.FromContext(r.Context()).Debug("Get Status Request", "jobId", idString)

	result, isFound := h.jobs.GetJob(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler godoc
// @Summary      Ingest a reference document
// @Description  Uploads a reference document (pdf, docx, txt, rtf) for chunking and embedding
// @Tags         ingest
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Reference document"
// @Success      202   {object}  api.InitJobResponse
// @Failure      400   {object}  api.JobResponse
// @Security     BearerAuth
// @Router       /ingest [post]
func (h *Handler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.FromContext(r.Context())

	targetDir, err := h.targetDirectory()
	if err != nil {
		log.Error("Couldn't get target directory", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err = r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := filepath.Base(fileMetadata.Filename)
	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), docName)
	tempFilePath := filepath.Join(targetDir, filename)
	if err = saveUpload(tempFilePath, fileReader); err != nil {
		log.Error("Could not store upload", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	newJob := adapter.NewIngestJob(utils.GetNewUUID(), logger_i.TraceID(r.Context()), docName, tempFilePath)
	h.submit(w, r, newJob.Id, func() error {
		err := h.jobs.Submit(r.Context(), newJob)
		if err != nil {
			_ = os.Remove(tempFilePath)
		}
		return err
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, id string, send func() error) {
	if err := send(); err != nil {
		logRH.FromContext(r.Context()).Error("Could not queue job", "jobId", id, "err", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, id, "Job queue unavailable")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(id))
}

func decodeAskRequest(w http.ResponseWriter, r *http.Request) (api.AskRequest, bool) {
	var req api.AskRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the ask handler reader", "err", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRH.FromContext(r.Context()).Warn("Bad ask request", "err", err)
		writeJsonResponse(w, http.StatusBadRequest, api.AskResponse{Error: "invalid request body"})
		return req, false
	}
	return req, true
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return err
	}
	return dst.Close()
}
