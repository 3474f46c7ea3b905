package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aescanero/nexus-router/internal/config"
	"github.com/aescanero/nexus-router/internal/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Operations accepted on the request stream
const (
	OpRoute          = "route"
	OpResolve        = "resolve"
	OpMarkUnresolved = "mark_unresolved"
	OpDiagnose       = "diagnose"
	OpSynthesize     = "synthesize"
	OpReset          = "reset"
)

// publishTimeout bounds the reply and ack for one message
const publishTimeout = 5 * time.Second

// Request represents a routing work request
type Request struct {
	RequestID   string             `json:"request_id"`
	Op          string             `json:"op"`
	Code        string             `json:"code,omitempty"`
	Annotations router.Annotations `json:"annotations"`
	Indicators  map[string]float64 `json:"indicators,omitempty"`
}

// Reply is published to the result stream for every handled request
type Reply struct {
	RequestID    string           `json:"request_id"`
	Op           string           `json:"op"`
	Route        *router.Route    `json:"route,omitempty"`
	Diagnosis    router.Diagnosis `json:"diagnosis,omitempty"`
	ActiveRoutes int              `json:"active_routes"`
	Blocking     string           `json:"blocking,omitempty"`
	Unresolved   []string         `json:"unresolved"`
	Timestamp    time.Time        `json:"timestamp"`
}

// Stats is a point-in-time view of the engine, safe to read from other
// goroutines
type Stats struct {
	Processed    int64  `json:"processed"`
	Failed       int64  `json:"failed"`
	ActiveRoutes int64  `json:"active_routes"`
	Blocking     string `json:"blocking,omitempty"`
}

// Worker represents the nexus worker. It owns one engine and handles
// stream messages one at a time.
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	engine        *router.Engine
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	streamKey     string
	consumerGroup string
	resultStream  string
	errorStream   string

	processed    atomic.Int64
	failed       atomic.Int64
	activeRoutes atomic.Int64
	blocking     atomic.Value
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	engine *router.Engine,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		engine:        engine,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
		errorStream:   cfg.ErrorStream(),
	}
	w.blocking.Store("")
	return w
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting nexus worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(w.ctx); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	go w.processWork()

	w.logger.Info("nexus worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the in-flight message
func (w *Worker) Stop(ctx context.Context) error {
	w.logger.Info("stopping nexus worker", zap.String("worker_id", w.id))

	w.cancel()

	select {
	case <-w.done:
	case <-ctx.Done():
		return fmt.Errorf("worker did not stop: %w", ctx.Err())
	}

	w.logger.Info("nexus worker stopped", zap.String("worker_id", w.id))
	return nil
}

// Stats returns the latest engine statistics
func (w *Worker) Stats() Stats {
	return Stats{
		Processed:    w.processed.Load(),
		Failed:       w.failed.Load(),
		ActiveRoutes: w.activeRoutes.Load(),
		Blocking:     w.blocking.Load().(string),
	}
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redisClient.XGroupCreateMkStream(ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	defer close(w.done)
	w.logger.Info("starting work processing loop")

	if err := w.recoverPending(w.ctx); err != nil && w.ctx.Err() == nil {
		w.logger.Error("failed to recover pending messages", zap.Error(err))
	}

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
		}

		if err := w.readBatch(w.ctx); err != nil {
			if w.ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream", zap.Error(err))

			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// readBatch reads and handles one batch of new messages
func (w *Worker) readBatch(ctx context.Context) error {
	_, err := w.readGroup(ctx, ">", w.config.BlockTime)
	return err
}

// recoverPending handles messages this consumer received earlier but never
// acknowledged, such as the rest of a batch cut short by Stop
func (w *Worker) recoverPending(ctx context.Context) error {
	start := "0"
	for ctx.Err() == nil {
		last, err := w.readGroup(ctx, start, -1)
		if err != nil {
			return err
		}
		if last == "" {
			return nil
		}
		start = last
	}
	return ctx.Err()
}

// readGroup reads messages after start and handles them in order. It stops
// between messages once ctx is done, leaving the rest pending, and returns
// the ID of the last message handled.
func (w *Worker) readGroup(ctx context.Context, start string, block time.Duration) (string, error) {
	streams, err := w.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.consumerGroup,
		Consumer: w.id,
		Streams:  []string{w.streamKey, start},
		Count:    10,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}

	last := ""
	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := ctx.Err(); err != nil {
				return last, err
			}
			w.handleMessage(ctx, message)
			last = message.ID
		}
	}
	return last, nil
}

// handleMessage handles a single request message
func (w *Worker) handleMessage(ctx context.Context, message redis.XMessage) {
	messageID := message.ID

	// once handling starts the reply and ack must land even if Stop cancels ctx
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	w.logger.Debug("processing request", zap.String("message_id", messageID))

	request, err := parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.recordStats(err)
		w.publishError(ctx, &Request{RequestID: messageID}, err)
		w.acknowledgeMessage(ctx, messageID)
		return
	}

	reply, err := w.dispatch(request)
	if err != nil {
		w.logger.Error("failed to process request",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.String("op", request.Op),
			zap.Error(err),
		)
		w.publishError(ctx, request, err)
	} else if err := w.publishReply(ctx, reply); err != nil {
		w.logger.Error("failed to publish reply",
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
	}

	w.acknowledgeMessage(ctx, messageID)
}

// parseRequest parses a request from a Redis message
func parseRequest(values map[string]interface{}) (*Request, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request Request
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	return &request, nil
}

// dispatch applies a request to the engine
func (w *Worker) dispatch(request *Request) (*Reply, error) {
	reply := &Reply{
		RequestID: request.RequestID,
		Op:        request.Op,
	}

	var err error
	switch request.Op {
	case OpRoute:
		reply.Route, err = w.engine.Route(request.Code, request.Annotations)
	case OpSynthesize:
		reply.Route, err = w.engine.Synthesize(request.Annotations)
	case OpResolve:
		w.engine.Resolve(request.Code)
	case OpMarkUnresolved:
		w.engine.MarkUnresolved(request.Code)
	case OpDiagnose:
		reply.Diagnosis = w.engine.Diagnose(request.Indicators)
	case OpReset:
		w.engine.Reset()
	default:
		err = fmt.Errorf("unknown op: %q", request.Op)
	}

	w.recordStats(err)
	if err != nil {
		return nil, err
	}

	reply.ActiveRoutes = int(w.activeRoutes.Load())
	reply.Blocking = w.blocking.Load().(string)
	reply.Unresolved = w.engine.Unresolved()
	reply.Timestamp = time.Now().UTC()

	return reply, nil
}

// recordStats refreshes the values the health server reads
func (w *Worker) recordStats(err error) {
	w.processed.Add(1)
	if err != nil {
		w.failed.Add(1)
	}
	w.activeRoutes.Store(int64(len(w.engine.ActiveRoutes())))
	w.blocking.Store(w.engine.Blocking())
}

// publishReply publishes a reply to the result stream
func (w *Worker) publishReply(ctx context.Context, reply *Reply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	fields := []zap.Field{
		zap.String("request_id", reply.RequestID),
		zap.String("op", reply.Op),
	}
	if reply.Route != nil {
		fields = append(fields,
			zap.String("code", reply.Route.Code),
			zap.String("blocked_by", reply.Route.BlockedBy),
		)
	}
	w.logger.Info("published reply", fields...)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(ctx context.Context, request *Request, err error) {
	errorEvent := map[string]interface{}{
		"request_id":   request.RequestID,
		"op":           request.Op,
		"code":         request.Code,
		"error":        err.Error(),
		"unknown_code": errors.Is(err, router.ErrUnknownCode),
		"timestamp":    time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	_, publishErr := w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.errorStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(ctx context.Context, messageID string) {
	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
