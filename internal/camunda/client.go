package camunda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/medcart/internal/apperr"
)

// Client — REST-клиент external-task API движка. Один клиент на консьюмера:
// workerId входит в каждый запрос.
type Client struct {
	baseURL        string
	workerID       string
	tenantID       string
	maxTasks       int
	lockDurationMs int
	longPollMs     int
	httpc          *http.Client
}

type Options struct {
	BaseURL        string
	WorkerID       string
	TenantID       string
	MaxTasks       int
	LockDurationMs int
	LongPollMs     int
	Timeout        time.Duration
}

func NewClient(opts Options) *Client {
	if opts.MaxTasks <= 0 {
		opts.MaxTasks = 1
	}
	if opts.LockDurationMs <= 0 {
		opts.LockDurationMs = 30000
	}
	if opts.LongPollMs <= 0 {
		opts.LongPollMs = 20000
	}
	if opts.Timeout <= 0 {
		// клиентский таймаут должен переживать long poll
		opts.Timeout = time.Duration(opts.LongPollMs)*time.Millisecond + 15*time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		workerID:       opts.WorkerID,
		tenantID:       opts.TenantID,
		maxTasks:       opts.MaxTasks,
		lockDurationMs: opts.LockDurationMs,
		longPollMs:     opts.LongPollMs,
		httpc:          &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) WorkerID() string { return c.workerID }

type Task struct {
	ID        string    `json:"id"`
	TopicName string    `json:"topicName"`
	TenantID  string    `json:"tenantId"`
	Variables Variables `json:"variables"`
}

type fetchTopic struct {
	TopicName    string   `json:"topicName"`
	LockDuration int      `json:"lockDuration"`
	TenantIDIn   []string `json:"tenantIdIn,omitempty"`
}

type fetchRequest struct {
	WorkerID             string       `json:"workerId"`
	MaxTasks             int          `json:"maxTasks"`
	AsyncResponseTimeout int          `json:"asyncResponseTimeout"`
	UsePriority          bool         `json:"usePriority"`
	Topics               []fetchTopic `json:"topics"`
}

// FetchAndLock блокирует до longPollMs, если задач по топику нет.
func (c *Client) FetchAndLock(ctx context.Context, topic string) ([]Task, error) {
	ft := fetchTopic{TopicName: topic, LockDuration: c.lockDurationMs}
	if c.tenantID != "" {
		ft.TenantIDIn = []string{c.tenantID}
	}
	req := fetchRequest{
		WorkerID:             c.workerID,
		MaxTasks:             c.maxTasks,
		AsyncResponseTimeout: c.longPollMs,
		Topics:               []fetchTopic{ft},
	}

	var tasks []Task
	if err := c.post(ctx, "/external-task/fetchAndLock", req, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Complete отчитывается об успехе с выходными переменными.
func (c *Client) Complete(ctx context.Context, taskID string, vars Variables) error {
	if vars == nil {
		vars = Variables{}
	}
	body := map[string]any{
		"workerId":  c.workerID,
		"variables": vars,
	}
	return c.post(ctx, "/external-task/"+taskID+"/complete", body, nil)
}

// Failure помечает задачу проваленной. retries=0 означает "насовсем, до
// вмешательства оператора" — автоматических повторов у нас нет,
// retryTimeout при этом движку всё равно передаётся.
func (c *Client) Failure(ctx context.Context, taskID, message, details string, retries, retryTimeoutMs int) error {
	body := map[string]any{
		"workerId":     c.workerID,
		"errorMessage": message,
		"errorDetails": details,
		"retries":      retries,
		"retryTimeout": retryTimeoutMs,
	}
	return c.post(ctx, "/external-task/"+taskID+"/failure", body, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperr.Wrap(err, apperr.KindExternal, "engine request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperr.External(
			fmt.Sprintf("engine returned %d for %s", resp.StatusCode, path),
			string(raw),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(err, apperr.KindExternal, "engine response decode failed")
	}
	return nil
}
