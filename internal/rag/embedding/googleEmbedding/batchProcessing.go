package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	return false
}

func getInlinedBatchRequests(chunks []string) *genai.EmbedContentBatch {
	return &genai.EmbedContentBatch{
		Config:   &genai.EmbedContentConfig{OutputDimensionality: &dimension},
		Contents: getContent(chunks),
	}
}

func (c *client) pollForAnswer(ctx context.Context, batchJobName string, log *logger_i.Logger) (*genai.BatchJob, error) {
	ticker := time.NewTicker(batchPollEvery)
	defer ticker.Stop()
	log.Debug("pollForAnswer", "job", batchJobName)
	for {
		select {
		case <-ctx.Done():
			log.Error("pollForAnswer cancelled", "error", ctx.Err())
			return nil, ctx.Err()

		case <-ticker.C:
			bJob, err := c.genAi.Batches.Get(ctx, batchJobName, nil)
			if err != nil {
				log.Error("Error getting batch job", "error", err)
				continue
			}
			done, err := batchOutcome(bJob)
			if done {
				return bJob, err
			}
		}
	}
}

// batchOutcome reports whether the job reached a terminal state and, if it
// did not succeed, why.
func batchOutcome(bJob *genai.BatchJob) (bool, error) {
	//https://pkg.go.dev/google.golang.org/genai@v1.41.1#JobState
	switch bJob.State {
	case genai.JobStateSucceeded:
		return true, nil
	case genai.JobStateFailed:
		msg := "unknown"
		if bJob.Error != nil {
			msg = bJob.Error.Message
		}
		return true, fmt.Errorf("batch job failed: %s", msg)
	case genai.JobStateCancelled, genai.JobStateExpired, genai.JobStatePartiallySucceeded:
		return true, errors.New("batch job ended prematurely: " + string(bJob.State))
	default:
		return false, nil
	}
}

func downloadAnswerFromClient(answer *genai.BatchJob, log *logger_i.Logger) [][]float32 {
	if answer == nil || answer.Dest == nil || len(answer.Dest.InlinedEmbedContentResponses) == 0 {
		return [][]float32{}
	}
	res := answer.Dest.InlinedEmbedContentResponses
	results := make([][]float32, 0, len(res))

	for _, r := range res {
		if r == nil || r.Error != nil || r.Response == nil || r.Response.Embedding == nil {
			//a nil vector fails the upsert for its chunk, which surfaces the error
			log.Error("Error with a particular result in batch embedding")
			results = append(results, nil)
			continue
		}
		results = append(results, r.Response.Embedding.Values)
	}
	return results
}
