package utils

import (
	"net/http"
	"sync"

	_ "github.com/akolanti/DermaRAG/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

var once sync.Once
var router *chi.Mux

func GetNewUUID() string {
	return uuid.New().String()
}

type RouterClient struct {
	Router *chi.Mux
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

// GetRouter returns the process wide router with swagger and /metrics mounted.
func GetRouter() RouterClient {
	once.Do(func() {
		router = NewRouter().Router
	})

	return RouterClient{Router: router}
}

// NewRouter builds a fresh router; tests use it to avoid sharing routes.
func NewRouter() RouterClient {
	r := chi.NewRouter()
	InitSwagger(r)
	r.Handle("/metrics", promhttp.Handler())
	return RouterClient{Router: r}
}

func InitSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
