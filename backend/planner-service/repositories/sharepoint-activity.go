package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"planner-board/backend/planner-service/models"
)

type spActivityItem struct {
	ID        int    `json:"Id"`
	Title     string `json:"Title"`
	TaskID    int    `json:"TaskId"`
	Action    string `json:"Action"`
	OldBucket string `json:"OldBucket"`
	NewBucket string `json:"NewBucket"`
	Timestamp string `json:"Timestamp"`
}

func (i spActivityItem) record() models.ActivityRecord {
	rec := models.ActivityRecord{
		ID:        strconv.Itoa(i.ID),
		Title:     i.Title,
		TaskID:    i.TaskID,
		Action:    models.ActivityAction(i.Action),
		OldBucket: models.Bucket(i.OldBucket),
		NewBucket: models.Bucket(i.NewBucket),
	}
	if ts := parseSharePointTime(i.Timestamp); ts != nil {
		rec.Timestamp = *ts
	}
	return rec
}

func (c *SharePointClient) AppendActivity(ctx context.Context, rec models.ActivityRecord) (models.ActivityRecord, error) {
	payload := map[string]interface{}{
		"Title":     rec.Title,
		"TaskId":    rec.TaskID,
		"Action":    string(rec.Action),
		"Timestamp": models.FormatTimestamp(rec.Timestamp),
	}
	if rec.OldBucket != "" {
		payload["OldBucket"] = string(rec.OldBucket)
	}
	if rec.NewBucket != "" {
		payload["NewBucket"] = string(rec.NewBucket)
	}

	var created struct {
		ID int `json:"Id"`
	}
	err := c.do(ctx, spRequest{method: http.MethodPost, path: c.listPath(c.activityList), body: payload}, &created)
	if err != nil {
		return models.ActivityRecord{}, fmt.Errorf("add %s item: %w", c.activityList, err)
	}
	rec.ID = strconv.Itoa(created.ID)
	return rec, nil
}

func (c *SharePointClient) ListActivity(ctx context.Context, taskID int) ([]models.ActivityRecord, error) {
	q := url.Values{}
	q.Set("$select", strings.Join(activitySelectFields, ","))
	q.Set("$filter", "TaskId eq "+strconv.Itoa(taskID))
	q.Set("$orderby", "Timestamp desc")

	var page spCollection[spActivityItem]
	if err := c.do(ctx, spRequest{method: http.MethodGet, path: c.listPath(c.activityList), query: q}, &page); err != nil {
		return nil, fmt.Errorf("list %s items for task %d: %w", c.activityList, taskID, err)
	}

	records := make([]models.ActivityRecord, 0, len(page.Value))
	for _, item := range page.Value {
		records = append(records, item.record())
	}
	return records, nil
}
