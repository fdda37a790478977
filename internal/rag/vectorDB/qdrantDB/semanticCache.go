package qdrantDB

import (
	"context"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/qdrant/go-client/qdrant"
)

func initCacheCollection(ctx context.Context, client *qdrant.Client) {
	if err := createCollection(ctx, client, config.SemanticCacheCollectionName); err != nil {
		logger.FromContext(ctx).Error("Semantic cache collection creation failed", "error", err)
	}
}

func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	loggr := logger.FromContext(ctx)

	loggr.Debug("Searching for cached answer")
	searchResult, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.SemanticCacheCollectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Cache query failed", "error", err)
		return "", false, err
	}
	if len(searchResult) == 0 {
		return "", false, nil
	}

	answer, hit := cacheHit(searchResult[0])
	loggr.Debug("Closest cached answer", "score", searchResult[0].GetScore(), "hit", hit)
	return answer, hit, nil
}

// cacheHit accepts a point only above the similarity cutoff and with a
// non-empty answer.
func cacheHit(point *qdrant.ScoredPoint) (string, bool) {
	if point == nil || point.GetScore() < config.CacheSimilarityCutoff {
		return "", false
	}
	answer := point.GetPayload()["answer"].GetStringValue()
	return answer, answer != ""
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, question string, answer string) error {
	loggr := logger.FromContext(ctx)

	loggr.Debug("Saving answer to cache")
	payload, err := cachePayload(question, answer, time.Now())
	if err != nil {
		loggr.Error("Invalid cache payload", "error", err)
		return err
	}
	_, err = db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.SemanticCacheCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}

func cachePayload(question string, answer string, at time.Time) (map[string]*qdrant.Value, error) {
	return qdrant.TryValueMap(map[string]any{
		"question":  question,
		"answer":    answer,
		"timestamp": at.Unix(),
	})
}
