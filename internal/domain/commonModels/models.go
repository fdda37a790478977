package commonModels

import (
	"fmt"
	"time"
)

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	PageNum        int    `json:"page_num"`
	ChunkPageOrder int    `json:"chunk_order"`
	EmbeddingModel string `json:"embeddingModel"`
}

// Reference is one retrieved passage of reference material.
type Reference struct {
	Content string  `json:"content"`
	DocName string  `json:"doc_name"`
	PageNum int64   `json:"page_num"`
	ChunkId string  `json:"chunk_id"`
	Score   float32 `json:"score"`
}

// Source renders the citation shown next to an answer.
func (r Reference) Source() string {
	if r.DocName == "" {
		return r.ChunkId
	}
	return fmt.Sprintf("%s (page %d)", r.DocName, r.PageNum)
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var ERR DocType = "ERROR"
