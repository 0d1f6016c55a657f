// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bus connects the toolkit to NATS for distributed execution:
// submitters publish job events, workers split the stream through a queue
// group and publish result events back.
package bus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Client wraps one NATS connection.
type Client struct {
	nc *nats.Conn
}

// Connect dials the NATS server with unlimited reconnects.
func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return &Client{nc: nc}, nil
}

// Close drains the connection, letting in-flight messages finish.
func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

// Flush pushes pending publishes to the server. Short-lived submitters call
// it before exiting.
func (c *Client) Flush() error {
	return c.nc.Flush()
}

// PublishJob sends a job event on the jobs subject.
func (c *Client) PublishJob(subject string, job types.JobDescriptor) error {
	return c.publishJSON(subject, types.JobEvent{Job: job, EnqueuedAt: time.Now().UTC()})
}

// PublishResult sends a result event on the results subject.
func (c *Client) PublishResult(subject, workerID string, res types.JobResult) error {
	return c.publishJSON(subject, types.ResultEvent{Result: res, WorkerID: workerID})
}

// ResultNotifier adapts the client to the notifier contract: every result
// it is handed is published on subject, tagged with workerID. Publish
// errors are logged and swallowed.
func (c *Client) ResultNotifier(subject, workerID string) *ResultNotifier {
	return &ResultNotifier{c: c, subject: subject, workerID: workerID}
}

// ResultNotifier publishes job results on the bus.
type ResultNotifier struct {
	c        *Client
	subject  string
	workerID string
}

// Notify publishes the result.
func (n *ResultNotifier) Notify(res types.JobResult) {
	if err := n.c.PublishResult(n.subject, n.workerID, res); err != nil {
		slog.Error("publishing result", "job_id", res.JobID, "error", err)
	}
}

func (c *Client) publishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

// ConsumeJobs subscribes through the queue group so concurrent workers each
// take a share of the stream. The handler runs on the subscription
// goroutine; malformed events are logged and dropped.
func (c *Client) ConsumeJobs(subject, queue string, handler func(types.JobEvent)) (*nats.Subscription, error) {
	return c.nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var ev types.JobEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("dropping malformed job event", "subject", subject, "error", err)
			return
		}
		handler(ev)
	})
}

// ConsumeResults subscribes to the results subject. Every subscriber sees
// every result.
func (c *Client) ConsumeResults(subject string, handler func(types.ResultEvent)) (*nats.Subscription, error) {
	return c.nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev types.ResultEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("dropping malformed result event", "subject", subject, "error", err)
			return
		}
		handler(ev)
	})
}
