package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	"github.com/akolanti/DermaRAG/internal/rag/embedding"
	"github.com/akolanti/DermaRAG/internal/rag/vectorDB"
	"github.com/google/uuid"
)

//splitter

// splitTextIntoChunks never cuts inside a multi-byte character; invalid
// UTF-8 from extraction is dropped first.
func splitTextIntoChunks(text string, limit int, overlap int) []string {
	text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	// Separators ordered from "best" to "worst" for semantic meaning
	separators := []string{"\n\n", "\n", ". ", " "}

	splitChar := ""
	for _, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			break
		}
	}
	if splitChar == "" {
		return hardCut(text, limit, overlap)
	}

	var chunks []string
	var currentChunk strings.Builder

	for _, part := range strings.Split(text, splitChar) {
		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
			}

			// start the next chunk with the tail of the previous one
			overlapContent := ""
			if currentChunk.Len() > overlap {
				prev := currentChunk.String()
				overlapContent = prev[runeStartAtOrAfter(prev, len(prev)-overlap):]
			}
			currentChunk.Reset()
			currentChunk.WriteString(overlapContent)
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}
	return chunks
}

// hardCut slices text with no separator into windows of at most limit bytes,
// moving each cut back to a rune boundary.
func hardCut(text string, limit int, overlap int) []string {
	step := limit - overlap
	if step <= 0 {
		step = limit
	}
	var chunks []string
	for start := 0; start < len(text); {
		end := start + limit
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		end = runeStartAtOrBefore(text, end)
		if end <= start {
			// limit is smaller than one character
			end = runeStartAtOrAfter(text, start+1)
		}
		chunks = append(chunks, text[start:end])

		next := runeStartAtOrAfter(text, start+step)
		if next > end || next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func runeStartAtOrBefore(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func runeStartAtOrAfter(s string, i int) int {
	if i < 0 {
		i = 0
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

func getDocType(docPath string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".txt", ".rtf":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX:
		return extractDocxTxtRtf(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}
}

func PrepareChunks(pages []rawPage, doc commonModels.Document, embeddingModel string) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk

	for _, page := range pages {
		for i, text := range splitTextIntoChunks(page.Content, config.ChunkSize, config.ChunkOverlap) {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:            doc,
				ChunkId:        uuid.New().String(),
				Chunk:          text,
				PageNum:        page.Number,
				ChunkPageOrder: i,
				EmbeddingModel: embeddingModel,
			})
		}
	}
	return allChunks
}

func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, vectorDB vectorDB.DataProcessor, embedder embedding.Embedder) error {
	log := logger.FromContext(ctx)

	isHugeDataSet := len(chunks) > config.HugeDataSetLen
	if isHugeDataSet {
		log.Debug("Is a huge dataset", "chunks", len(chunks))
	}

	for i := 0; i < len(chunks); i += config.IngestBatch {
		end := min(i+config.IngestBatch, len(chunks))

		//chunks are never empty here, the splitter drops blank text
		currentBatch := chunks[i:end]
		texts := make([]string, 0, len(currentBatch))
		for _, c := range currentBatch {
			texts = append(texts, c.Chunk)
		}

		log.Debug("Starting embedding call", "batch", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts, isHugeDataSet)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		if err = vectorDB.UpsertBatch(ctx, config.ReferenceCollectionName, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}
	return nil
}
