package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantClient connects once and makes sure both collections exist. It
// returns nil when qdrant is unreachable.
func GetQdrantClient(ctx context.Context, settings config.Settings) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, settings)
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{QObj: qdrantInstance}
}

func newClient(ctx context.Context, settings config.Settings) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.QdrantHost,
		Port:     settings.QdrantPort,
		APIKey:   settings.QdrantKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate", "error", err)
		return nil
	}

	err = createCollection(ctx, client, config.ReferenceCollectionName)
	if err != nil {
		logger.Error("could not create collection", "collectionName", config.ReferenceCollectionName, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("Qdrant client created", "host", settings.QdrantHost, "port", settings.QdrantPort)
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, limit uint64) ([]commonModels.Reference, error) {
	loggr := logger.FromContext(ctx)
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.ReferenceCollectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	refs := make([]commonModels.Reference, 0, len(result))
	for _, hit := range result {
		refs = append(refs, toReference(hit))
	}
	loggr.Debug("Found references", "count", len(refs))
	return refs, nil
}

func toReference(hit *qdrant.ScoredPoint) commonModels.Reference {
	payload := hit.GetPayload()
	return commonModels.Reference{
		Content: payload["content"].GetStringValue(),
		DocName: payload["doc_name"].GetStringValue(),
		PageNum: payload["page_num"].GetIntegerValue(),
		ChunkId: payload["chunk_id"].GetStringValue(),
		Score:   hit.GetScore(),
	}
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	points, err := toPoints(chunks, vectors)
	if err != nil {
		return err
	}

	_, err = db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func toPoints(chunks []commonModels.DocChunk, vectors [][]float32) ([]*qdrant.PointStruct, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload, err := qdrant.TryValueMap(map[string]any{
			"content":       chunk.Chunk,
			"page_num":      chunk.PageNum,
			"source_doc_id": chunk.Doc.Id,
			"doc_name":      chunk.Doc.Name,
			"chunk_order":   chunk.ChunkPageOrder,
			"chunk_id":      chunk.ChunkId,
			"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
		})
		if err != nil {
			return nil, fmt.Errorf("payload for chunk %s: %w", chunk.ChunkId, err)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payload,
		}
	}
	return points, nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
