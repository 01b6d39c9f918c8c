package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"planner-board/backend/planner-service/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	tasksCollection    = "tasks"
	activityCollection = "activity"
	usersCollection    = "users"
	countersCollection = "counters"
)

type taskDocument struct {
	ID          int            `bson:"_id"`
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	DueDate     *time.Time     `bson:"dueDate,omitempty"`
	Status      string         `bson:"status"`
	Bucket      string         `bson:"bucket"`
	Priority    string         `bson:"priority"`
	Checklist   string         `bson:"checklist"`
	AssigneeID  *int           `bson:"assigneeId,omitempty"`
	Assignee    []userDocument `bson:"assignee,omitempty"`
}

func (d taskDocument) record() models.TaskRecord {
	rec := models.TaskRecord{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Status:      d.Status,
		Bucket:      d.Bucket,
		Priority:    d.Priority,
		Checklist:   d.Checklist,
	}
	if len(d.Assignee) > 0 {
		rec.AssigneeName = d.Assignee[0].Name
		rec.AssigneeEmail = d.Assignee[0].Email
	}
	return rec
}

type activityDocument struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	TaskID    int       `bson:"taskId"`
	Action    string    `bson:"action"`
	OldBucket string    `bson:"oldBucket,omitempty"`
	NewBucket string    `bson:"newBucket,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

type userDocument struct {
	ID    int    `bson:"_id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

// MongoStore keeps the task list, activity list and user directory in
// MongoDB. Task and user IDs are integers drawn from the counters collection.
type MongoStore struct {
	tasks    *mongo.Collection
	activity *mongo.Collection
	users    *mongo.Collection
	counters *mongo.Collection
	logger   logrus.FieldLogger
}

func NewMongoStore(db *mongo.Database, logger logrus.FieldLogger) *MongoStore {
	return &MongoStore{
		tasks:    db.Collection(tasksCollection),
		activity: db.Collection(activityCollection),
		users:    db.Collection(usersCollection),
		counters: db.Collection(countersCollection),
		logger:   logger,
	}
}

// EnsureIndexes creates the per-task activity index and the unique email index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.activity.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create activity index: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	s.logger.Info("Event ID: DB_INDEXES_READY, Description: MongoDB indexes ensured")
	return nil
}

func (s *MongoStore) nextID(ctx context.Context, name string) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func assigneeLookup() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         usersCollection,
		"localField":   "assigneeId",
		"foreignField": "_id",
		"as":           "assignee",
	}}}
}

func (s *MongoStore) ListTasks(ctx context.Context) ([]models.TaskRecord, error) {
	cursor, err := s.tasks.Aggregate(ctx, mongo.Pipeline{assigneeLookup()})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.TaskRecord
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		records = append(records, doc.record())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}

func (s *MongoStore) GetTask(ctx context.Context, id int) (models.TaskRecord, error) {
	cursor, err := s.tasks.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		assigneeLookup(),
	})
	if err != nil {
		return models.TaskRecord{}, fmt.Errorf("failed to retrieve task %d: %w", id, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return models.TaskRecord{}, fmt.Errorf("cursor error: %w", err)
		}
		return models.TaskRecord{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	var doc taskDocument
	if err := cursor.Decode(&doc); err != nil {
		return models.TaskRecord{}, fmt.Errorf("failed to decode task: %w", err)
	}
	return doc.record(), nil
}

func (s *MongoStore) GetTaskBucket(ctx context.Context, id int) (string, error) {
	var doc struct {
		Bucket string `bson:"bucket"`
	}
	err := s.tasks.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"bucket": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read bucket of task %d: %w", id, err)
	}
	return doc.Bucket, nil
}

func (s *MongoStore) AddTask(ctx context.Context, fields models.TaskFields) (int, error) {
	id, err := s.nextID(ctx, tasksCollection)
	if err != nil {
		return 0, err
	}

	doc := taskDocument{
		ID:          id,
		Title:       deref(fields.Title),
		Description: deref(fields.Description),
		Status:      deref(fields.Status),
		Bucket:      deref(fields.Bucket),
		Priority:    deref(fields.Priority),
		Checklist:   deref(fields.Checklist),
		AssigneeID:  fields.AssigneeID,
	}
	if fields.DueDate != nil {
		due := fields.DueDate.UTC()
		doc.DueDate = &due
	}

	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// taskUpdateDocuments splits fields into $set and $unset documents.
func taskUpdateDocuments(f models.TaskFields) (bson.M, bson.M) {
	set := bson.M{}
	unset := bson.M{}
	if f.Title != nil {
		set["title"] = *f.Title
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.DueDate != nil {
		set["dueDate"] = f.DueDate.UTC()
	}
	if f.Status != nil {
		set["status"] = *f.Status
	}
	if f.Bucket != nil {
		set["bucket"] = *f.Bucket
	}
	if f.Priority != nil {
		set["priority"] = *f.Priority
	}
	if f.Checklist != nil {
		set["checklist"] = *f.Checklist
	}
	switch {
	case f.AssigneeID != nil:
		set["assigneeId"] = *f.AssigneeID
	case f.ClearAssignee:
		unset["assigneeId"] = ""
	}
	return set, unset
}

func (s *MongoStore) UpdateTask(ctx context.Context, id int, fields models.TaskFields) error {
	set, unset := taskUpdateDocuments(fields)
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return nil
	}

	result, err := s.tasks.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, id int) error {
	result, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) AppendActivity(ctx context.Context, rec models.ActivityRecord) (models.ActivityRecord, error) {
	rec.ID = uuid.New().String()
	doc := activityDocument{
		ID:        rec.ID,
		Title:     rec.Title,
		TaskID:    rec.TaskID,
		Action:    string(rec.Action),
		OldBucket: string(rec.OldBucket),
		NewBucket: string(rec.NewBucket),
		Timestamp: rec.Timestamp.UTC(),
	}
	if _, err := s.activity.InsertOne(ctx, doc); err != nil {
		return models.ActivityRecord{}, fmt.Errorf("failed to insert activity: %w", err)
	}
	return rec, nil
}

func (s *MongoStore) ListActivity(ctx context.Context, taskID int) ([]models.ActivityRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.activity.Find(ctx, bson.M{"taskId": taskID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}

	records := make([]models.ActivityRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, models.ActivityRecord{
			ID:        d.ID,
			Title:     d.Title,
			TaskID:    d.TaskID,
			Action:    models.ActivityAction(d.Action),
			OldBucket: models.Bucket(d.OldBucket),
			NewBucket: models.Bucket(d.NewBucket),
			Timestamp: d.Timestamp,
		})
	}
	return records, nil
}

// EnsureUser looks the email up in the users collection. Unknown logins are
// not provisioned.
func (s *MongoStore) EnsureUser(ctx context.Context, email string) (models.DirectoryUser, error) {
	var doc userDocument
	filter := bson.M{"email": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"}}
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DirectoryUser{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return models.DirectoryUser{}, fmt.Errorf("failed to find user %s: %w", email, err)
	}
	return models.DirectoryUser{ID: doc.ID, Name: doc.Name, Email: doc.Email}, nil
}

// AddUser inserts a directory user with the next integer ID.
func (s *MongoStore) AddUser(ctx context.Context, name, email string) (models.DirectoryUser, error) {
	id, err := s.nextID(ctx, usersCollection)
	if err != nil {
		return models.DirectoryUser{}, err
	}
	doc := userDocument{ID: id, Name: name, Email: strings.TrimSpace(email)}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return models.DirectoryUser{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return models.DirectoryUser{ID: doc.ID, Name: doc.Name, Email: doc.Email}, nil
}

func (s *MongoStore) SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"email": pattern},
		bson.M{"name": pattern},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	users := make([]models.DirectoryUser, 0, len(docs))
	for _, d := range docs {
		users = append(users, models.DirectoryUser{ID: d.ID, Name: d.Name, Email: d.Email})
	}
	return users, nil
}
