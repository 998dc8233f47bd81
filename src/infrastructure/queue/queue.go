// Package queue decouples job submission from execution. Jobs are
// published to an in-process watermill GoChannel topic and consumed by a
// router handler that drives the orchestrator; the polling status
// contract is unchanged by queued execution.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"govector/src/log"
)

const jobsTopic = "conversion_jobs"

// JobMessage is the payload published per enqueued job.
type JobMessage struct {
	JobID     string `json:"job_id"`
	InputPath string `json:"input_path"`
}

// Runner executes the pipeline for an already-created job.
type Runner interface {
	Run(ctx context.Context, jobID, inputPath string) error
}

type Queue struct {
	pubSub *gochannel.GoChannel
	router *message.Router
	runner Runner
}

func New(runner Runner) (*Queue, error) {
	logger := watermill.NewStdLogger(false, false)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
	)

	q := &Queue{
		pubSub: pubSub,
		router: router,
		runner: runner,
	}
	router.AddNoPublisherHandler(
		"conversion_job_handler",
		jobsTopic,
		pubSub,
		q.handle,
	)
	return q, nil
}

// Start runs the router until ctx is cancelled. Callers typically run
// this in its own goroutine.
func (q *Queue) Start(ctx context.Context) error {
	return q.router.Run(ctx)
}

// Running unblocks once the router is consuming.
func (q *Queue) Running() <-chan struct{} {
	return q.router.Running()
}

func (q *Queue) Close() error {
	if err := q.router.Close(); err != nil {
		return err
	}
	return q.pubSub.Close()
}

// Enqueue publishes the job for asynchronous execution and returns
// immediately.
func (q *Queue) Enqueue(jobID, inputPath string) error {
	payload, err := json.Marshal(JobMessage{JobID: jobID, InputPath: inputPath})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := q.pubSub.Publish(jobsTopic, msg); err != nil {
		return fmt.Errorf("failed to publish job message: %w", err)
	}
	return nil
}

func (q *Queue) handle(msg *message.Message) error {
	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Payload, &jobMsg); err != nil {
		return fmt.Errorf("failed to unmarshal job message: %w", err)
	}

	// Each job runs at most once: Run records failures on the job itself,
	// so the message is always acked and never redelivered.
	if err := q.runner.Run(context.Background(), jobMsg.JobID, jobMsg.InputPath); err != nil {
		log.Error(err, "job failed", "job_id", jobMsg.JobID)
	}
	return nil
}
