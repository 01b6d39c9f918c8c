package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/models"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	contentTypeNoMetadata = "application/json;odata=nometadata"
	contentTypeVerbose    = "application/json;odata=verbose"
	maxErrorBody          = 4096
)

var taskSelectFields = []string{
	"Id", "Title", "Description", "DueDate", "Status", "Bucket", "Priority", "Checklist",
	"AssignedTo/Title", "AssignedTo/EMail",
}

var activitySelectFields = []string{
	"Id", "Title", "TaskId", "Action", "OldBucket", "NewBucket", "Timestamp",
}

// StatusError is a non-2xx answer from the SharePoint REST API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sharepoint returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// SharePointClient talks to the list, user and mail endpoints of one site.
// It implements TaskRepository, ActivityRepository, Directory and Mailer.
type SharePointClient struct {
	siteURL      string
	accessToken  string
	taskList     string
	activityList string
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
	logger       logrus.FieldLogger
}

func NewSharePointClient(cfg config.SharePointConfig, httpClient *http.Client, breaker *gobreaker.CircuitBreaker, logger logrus.FieldLogger) *SharePointClient {
	return &SharePointClient{
		siteURL:      strings.TrimRight(cfg.SiteURL, "/"),
		accessToken:  cfg.AccessToken,
		taskList:     cfg.TaskList,
		activityList: cfg.ActivityList,
		httpClient:   httpClient,
		breaker:      breaker,
		logger:       logger,
	}
}

type spRequest struct {
	method      string
	path        string
	query       url.Values
	headers     map[string]string
	contentType string
	body        interface{}
}

// do runs one request through the circuit breaker. Client errors (4xx other
// than 429) are returned to the caller without counting against the breaker.
func (c *SharePointClient) do(ctx context.Context, req spRequest, out interface{}) error {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		err := c.roundTrip(ctx, req, out)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests {
			return statusErr, nil
		}
		return nil, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("sharepoint unavailable: %w", err)
		}
		return err
	}
	if statusErr, ok := result.(*StatusError); ok && statusErr != nil {
		return statusErr
	}
	return nil
}

func (c *SharePointClient) roundTrip(ctx context.Context, req spRequest, out interface{}) error {
	endpoint := c.siteURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + encodeQuery(req.query)
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", contentTypeNoMetadata)
	if req.body != nil {
		contentType := req.contentType
		if contentType == "" {
			contentType = contentTypeNoMetadata
		}
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method":      req.method,
		"path":        req.path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Event ID: SHAREPOINT_REQUEST, Description: SharePoint request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.path, err)
	}
	return nil
}

// encodeQuery keeps OData expressions readable and encodes spaces as %20.
func encodeQuery(q url.Values) string {
	return strings.ReplaceAll(q.Encode(), "+", "%20")
}

// odataString quotes s as an OData string literal.
func odataString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (c *SharePointClient) listPath(list string) string {
	return "/_api/web/lists/getbytitle(" + url.PathEscape(odataString(list)) + ")/items"
}

func (c *SharePointClient) itemPath(list string, id int) string {
	return c.listPath(list) + "(" + strconv.Itoa(id) + ")"
}

type spCollection[T any] struct {
	Value []T `json:"value"`
}

func parseSharePointTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := models.ParseTimestamp(raw)
	if err != nil {
		return nil
	}
	return &t
}
