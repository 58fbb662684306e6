// Package taskservice is the HTTP client of the external service that owns
// outreach tasks.
package taskservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/logger"

	"github.com/google/uuid"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

type firstTaskRequest struct {
	LeadID    string `json:"lead_id"`
	CadenceID string `json:"cadence_id"`
	NodeID    string `json:"node_id"`
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
}

type recalculateRequest struct {
	UserIDs []string `json:"user_ids"`
}

// NewClient returns nil when TASK_SERVICE_URL is not configured.
func NewClient(cfg config.TaskServiceConfig, log *logger.Logger) *Client {
	if !cfg.IsTaskServiceEnabled() {
		return nil
	}
	timeout := cfg.GetTaskServiceTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetTaskServiceURL(), "/"),
		token:   cfg.GetTaskServiceToken(),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// New returns the HTTP client, or Disabled when no task service is configured.
func New(cfg config.TaskServiceConfig, log *logger.Logger) ports.TaskService {
	if c := NewClient(cfg, log); c != nil {
		return c
	}
	return Disabled{Log: log}
}

// Disabled is a TaskService that only logs. Used when no task service is configured.
type Disabled struct {
	Log *logger.Logger
}

func (d Disabled) CreateFirstTask(ctx context.Context, lead domain.Lead, cadence domain.Cadence, node domain.Node) error {
	d.Log.WithContext(ctx).Debug("task service disabled, skipping first task",
		"lead_id", lead.ID, "cadence_id", cadence.ID, "node_id", node.ID)
	return nil
}

func (d Disabled) RecalculateDailyTasks(ctx context.Context, userIDs []uuid.UUID) error {
	d.Log.WithContext(ctx).Debug("task service disabled, skipping recalculation", "users", len(userIDs))
	return nil
}

// CreateFirstTask asks the task service to create the task of the cadence's first node.
func (c *Client) CreateFirstTask(ctx context.Context, lead domain.Lead, cadence domain.Cadence, node domain.Node) error {
	return c.post(ctx, "/v1/tasks/first", firstTaskRequest{
		LeadID:    lead.ID.String(),
		CadenceID: cadence.ID.String(),
		NodeID:    node.ID.String(),
		UserID:    lead.UserID.String(),
		CompanyID: lead.CompanyID.String(),
	})
}

// RecalculateDailyTasks rebuilds the daily task lists of the given users.
func (c *Client) RecalculateDailyTasks(ctx context.Context, userIDs []uuid.UUID) error {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	return c.post(ctx, "/v1/tasks/recalculate", recalculateRequest{UserIDs: ids})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task service payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("task service request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("task service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.WithContext(ctx).Debug("task service call succeeded", "path", path)
	return nil
}
