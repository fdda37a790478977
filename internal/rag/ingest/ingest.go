package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/rag/embedding"
	"github.com/akolanti/DermaRAG/internal/rag/vectorDB"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

var (
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrEmptyDocument       = errors.New("document has no extractable text")
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("Document Ingestion")

// ProcessDocumentIngestion extracts, chunks, embeds and upserts the uploaded
// reference document, then removes the temporary upload.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) error {
	log := logger.FromContext(ctx).With("jobId", job.Id)

	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL
	log.Debug("Processing document", "filename", docName, "path", docPath)

	if err := vectorDatabase.CreateCollection(ctx, config.ReferenceCollectionName); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	docType := getDocType(docPath)
	if docType == commonModels.ERR {
		return fmt.Errorf("%w: %s", ErrUnsupportedDocument, docPath)
	}

	doc := commonModels.Document{
		Id:                  job.Id,
		Name:                docName,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}

	rawPages, err := extractText(docPath, doc.ContentType)
	if err != nil {
		return err
	}

	chunks := PrepareChunks(rawPages, doc, config.GoogleEmbeddingModel)
	log.Debug("Processing document", "pages", len(rawPages), "chunks", len(chunks))
	if len(chunks) == 0 {
		return ErrEmptyDocument
	}

	if err = BatchIngest(ctx, chunks, vectorDatabase, e); err != nil {
		return err
	}

	if err = os.Remove(docPath); err != nil {
		log.Warn("Error removing file", "error", err)
	}
	return nil
}
