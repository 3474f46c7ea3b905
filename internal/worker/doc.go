// Package worker exposes a routing engine over Redis Streams.
//
// The worker reads requests from a consumer group, applies them to the one
// engine it owns, and publishes replies. Requests carry a JSON "data" field:
//
//	{"request_id": "r-1", "op": "route", "code": "ERROR_001"}
//	{"request_id": "r-2", "op": "synthesize", "annotations": {"option_a": "A", "option_b": "B"}}
//	{"request_id": "r-3", "op": "diagnose", "indicators": {"boundary_permeability": 0.8}}
//
// Supported ops: route, resolve, mark_unresolved, diagnose, synthesize, reset.
// Failed requests (bad JSON, unknown op, unknown code) go to the result
// stream suffixed with ".errors". Every message is acknowledged.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	engine := router.NewEngine(registry, logger)
//
//	w := worker.NewWorker(cfg, redisClient, engine, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop(ctx)
//
// Messages are handled serially, so the engine never sees concurrent calls.
// Health checks and Prometheus metrics are provided via a separate HTTP
// server:
//
//	healthServer := worker.NewHealthServer(8082, redisClient, w, registry, logger)
//	healthServer.Start()
//	defer healthServer.Stop(ctx)
package worker
