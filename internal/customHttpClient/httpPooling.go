package customHttpClient

import (
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// Shared returns one pooled client so LLM calls reuse connections.
func Shared() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: newTransport(),
			Timeout:   config.AskTimeout + 5*time.Second,
		}
	})
	return client
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = config.MaxIdleConns
	t.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
	t.IdleConnTimeout = config.IdleConnTimeout
	return t
}
