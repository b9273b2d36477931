// Package artifact renders ticket images and emails them to purchasers.
// Work is queued in Redis so a slow render or mail server never delays
// the webhook response.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	jobKeyPrefix     = "ticket_artifact:job:"
	jobQueueKey      = "ticket_artifact:pending"
	jobProcessingKey = "ticket_artifact:processing"

	defaultMaxRetries = 3
	jobTTL            = 24 * time.Hour
)

// Job is one artifact generation request, stored as JSON in Redis.
type Job struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	CreatedAt  time.Time `json:"created_at"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
}

// Processor handles a dequeued job.
type Processor interface {
	Process(ctx context.Context, job *Job) error
}

// Queue manages artifact jobs using Redis lists. Jobs move from the
// pending list to the processing list atomically so a crashed worker
// leaves evidence instead of losing work.
type Queue struct {
	client    *redis.Client
	processor Processor
	log       *zap.Logger
	workers   int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewQueue(client *redis.Client, processor Processor, workers int, log *zap.Logger) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		client:    client,
		processor: processor,
		log:       log.Named("ticket.artifact.queue"),
		workers:   workers,
		stopCh:    make(chan struct{}),
	}
}

// Enqueue schedules artifact generation for a ticket.
func (q *Queue) Enqueue(ctx context.Context, ticketID string) error {
	job := &Job{
		ID:         uuid.New().String(),
		TicketID:   ticketID,
		CreatedAt:  time.Now().UTC(),
		MaxRetries: defaultMaxRetries,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal artifact job: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL)
	pipe.LPush(ctx, jobQueueKey, job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue artifact job: %w", err)
	}

	q.log.Info("enqueued artifact job",
		zap.String("job_id", job.ID),
		zap.String("ticket_id", ticketID),
	)
	return nil
}

// Start launches the worker goroutines.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true

	q.log.Info("starting workers", zap.Int("workers", q.workers))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop signals workers to exit and waits for them.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	q.log.Info("all workers stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
			job, err := q.dequeue(ctx)
			if err != nil {
				if err != redis.Nil {
					q.log.Error("dequeue failed", zap.Int("worker", id), zap.Error(err))
				}
				time.Sleep(time.Second)
				continue
			}
			if job != nil {
				q.process(ctx, job)
			}
		}
	}
}

func (q *Queue) dequeue(ctx context.Context) (*Job, error) {
	jobID, err := q.client.BRPopLPush(ctx, jobQueueKey, jobProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	data, err := q.client.Get(ctx, jobKeyPrefix+jobID).Result()
	if err != nil {
		q.client.LRem(ctx, jobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("artifact job %s data missing", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		q.client.LRem(ctx, jobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("unmarshal artifact job %s: %w", jobID, err)
	}
	return &job, nil
}

func (q *Queue) process(ctx context.Context, job *Job) {
	err := q.processor.Process(ctx, job)
	if err == nil {
		pipe := q.client.Pipeline()
		pipe.LRem(ctx, jobProcessingKey, 1, job.ID)
		pipe.Del(ctx, jobKeyPrefix+job.ID)
		pipe.Exec(ctx)
		return
	}

	q.log.Error("artifact job failed",
		zap.String("job_id", job.ID),
		zap.String("ticket_id", job.TicketID),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	)

	q.client.LRem(ctx, jobProcessingKey, 1, job.ID)
	if job.RetryCount >= job.MaxRetries {
		q.client.Del(ctx, jobKeyPrefix+job.ID)
		q.log.Warn("artifact job dropped after max retries",
			zap.String("job_id", job.ID),
			zap.String("ticket_id", job.TicketID),
		)
		return
	}

	job.RetryCount++
	data, merr := json.Marshal(job)
	if merr != nil {
		return
	}
	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL)
	pipe.RPush(ctx, jobQueueKey, job.ID)
	pipe.Exec(ctx)
}
