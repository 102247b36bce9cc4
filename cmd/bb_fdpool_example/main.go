package main

import (
	"log"
	"net/http"

	"github.com/buildbarn/bb-fdpool/pkg/pool"

	"go.opentelemetry.io/otel"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

// bb_fdpool_example is a small diagnostics server demonstrating the
// descriptor pool against the real filesystem: it opens whichever
// paths are requested of it through the pool, evicting under load
// according to the configured policy, and exposes the pool's
// observable state for inspection.
func main() {
	var (
		limit             = pflag.Int("limit", 0, "Maximum number of simultaneously open file descriptors; 0 discovers the OS limit")
		evictionPolicy    = pflag.String("eviction-policy", "lru", "Eviction policy to use: lru, fifo or random")
		httpListenAddress = pflag.String("http-listen-address", ":8080", "Address to listen on for the metrics and stats web server")
	)
	pflag.Parse()

	var policy pool.EvictionPolicy
	switch *evictionPolicy {
	case "lru":
		policy = pool.NewLRUEvictionPolicy()
	case "fifo":
		policy = pool.NewFIFOEvictionPolicy()
	case "random":
		policy = pool.NewRandomEvictionPolicy()
	default:
		log.Fatalf("Unknown eviction policy %#v", *evictionPolicy)
	}

	manager, err := pool.NewManager(pool.Configuration{
		Limit:          *limit,
		EvictionPolicy: policy,
	})
	if err != nil {
		log.Fatal("Failed to create descriptor pool manager: ", err)
	}
	tracingManager := pool.NewTracingManager(manager, osFileTrait{}, otel.GetTracerProvider())

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/stats", newStatsHandler(manager))
	router.HandleFunc("/files/{path:.*}", newFilesHandler(tracingManager))
	log.Fatal(http.ListenAndServe(*httpListenAddress, router))
}
