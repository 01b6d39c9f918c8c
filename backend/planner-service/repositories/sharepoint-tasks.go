package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"planner-board/backend/planner-service/models"
)

type spTaskItem struct {
	ID          int    `json:"Id"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	DueDate     string `json:"DueDate"`
	Status      string `json:"Status"`
	Bucket      string `json:"Bucket"`
	Priority    string `json:"Priority"`
	Checklist   string `json:"Checklist"`
	AssignedTo  *struct {
		Title string `json:"Title"`
		EMail string `json:"EMail"`
	} `json:"AssignedTo"`
}

func (i spTaskItem) record() models.TaskRecord {
	rec := models.TaskRecord{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		DueDate:     parseSharePointTime(i.DueDate),
		Status:      i.Status,
		Bucket:      i.Bucket,
		Priority:    i.Priority,
		Checklist:   i.Checklist,
	}
	if i.AssignedTo != nil {
		rec.AssigneeName = i.AssignedTo.Title
		rec.AssigneeEmail = i.AssignedTo.EMail
	}
	return rec
}

// taskPayload maps typed fields onto list column names.
func taskPayload(f models.TaskFields) map[string]interface{} {
	payload := map[string]interface{}{}
	if f.Title != nil {
		payload["Title"] = *f.Title
	}
	if f.Description != nil {
		payload["Description"] = *f.Description
	}
	if f.DueDate != nil {
		payload["DueDate"] = models.FormatTimestamp(*f.DueDate)
	}
	if f.Status != nil {
		payload["Status"] = *f.Status
	}
	if f.Bucket != nil {
		payload["Bucket"] = *f.Bucket
	}
	if f.Priority != nil {
		payload["Priority"] = *f.Priority
	}
	if f.Checklist != nil {
		payload["Checklist"] = *f.Checklist
	}
	switch {
	case f.AssigneeID != nil:
		payload["AssignedToId"] = *f.AssigneeID
	case f.ClearAssignee:
		payload["AssignedToId"] = nil
	}
	return payload
}

func taskQuery() url.Values {
	q := url.Values{}
	q.Set("$select", strings.Join(taskSelectFields, ","))
	q.Set("$expand", "AssignedTo")
	return q
}

func (c *SharePointClient) ListTasks(ctx context.Context) ([]models.TaskRecord, error) {
	var page spCollection[spTaskItem]
	err := c.do(ctx, spRequest{method: http.MethodGet, path: c.listPath(c.taskList), query: taskQuery()}, &page)
	if err != nil {
		return nil, fmt.Errorf("list %s items: %w", c.taskList, err)
	}

	records := make([]models.TaskRecord, 0, len(page.Value))
	for _, item := range page.Value {
		records = append(records, item.record())
	}
	return records, nil
}

func (c *SharePointClient) GetTask(ctx context.Context, id int) (models.TaskRecord, error) {
	var item spTaskItem
	err := c.do(ctx, spRequest{method: http.MethodGet, path: c.itemPath(c.taskList, id), query: taskQuery()}, &item)
	if err != nil {
		return models.TaskRecord{}, fmt.Errorf("get %s item %d: %w", c.taskList, id, err)
	}
	return item.record(), nil
}

func (c *SharePointClient) GetTaskBucket(ctx context.Context, id int) (string, error) {
	q := url.Values{}
	q.Set("$select", "Bucket")
	var item struct {
		Bucket string `json:"Bucket"`
	}
	if err := c.do(ctx, spRequest{method: http.MethodGet, path: c.itemPath(c.taskList, id), query: q}, &item); err != nil {
		return "", fmt.Errorf("get bucket of %s item %d: %w", c.taskList, id, err)
	}
	return item.Bucket, nil
}

func (c *SharePointClient) AddTask(ctx context.Context, fields models.TaskFields) (int, error) {
	var created struct {
		ID int `json:"Id"`
	}
	err := c.do(ctx, spRequest{method: http.MethodPost, path: c.listPath(c.taskList), body: taskPayload(fields)}, &created)
	if err != nil {
		return 0, fmt.Errorf("add %s item: %w", c.taskList, err)
	}
	return created.ID, nil
}

func (c *SharePointClient) UpdateTask(ctx context.Context, id int, fields models.TaskFields) error {
	err := c.do(ctx, spRequest{
		method: http.MethodPost,
		path:   c.itemPath(c.taskList, id),
		headers: map[string]string{
			"X-HTTP-Method": "MERGE",
			"IF-MATCH":      "*",
		},
		body: taskPayload(fields),
	}, nil)
	if err != nil {
		return fmt.Errorf("update %s item %d: %w", c.taskList, id, err)
	}
	return nil
}

func (c *SharePointClient) DeleteTask(ctx context.Context, id int) error {
	err := c.do(ctx, spRequest{
		method: http.MethodPost,
		path:   c.itemPath(c.taskList, id),
		headers: map[string]string{
			"X-HTTP-Method": "DELETE",
			"IF-MATCH":      "*",
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("delete %s item %d: %w", c.taskList, id, err)
	}
	return nil
}
