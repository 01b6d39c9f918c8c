package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"planner-board/backend/planner-service/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

var keyspacePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)

// CassandraActivityRepository stores the activity log partitioned by task,
// clustered newest first.
type CassandraActivityRepository struct {
	session *gocql.Session
	logger  logrus.FieldLogger
}

func NewCassandraActivityRepository(hosts []string, keyspace string, logger logrus.FieldLogger) (*CassandraActivityRepository, error) {
	if !keyspacePattern.MatchString(keyspace) {
		return nil, fmt.Errorf("invalid keyspace name %q", keyspace)
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Timeout = 5 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("create keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", keyspace, err)
	}

	logger.Infof("Event ID: DB_CONNECTED, Description: Connected to Cassandra keyspace %s", keyspace)
	repo := &CassandraActivityRepository{session: session, logger: logger}
	if err := repo.CreateTable(); err != nil {
		session.Close()
		return nil, err
	}
	return repo, nil
}

func (r *CassandraActivityRepository) Close() {
	r.session.Close()
	r.logger.Info("Event ID: DB_SESSION_CLOSED, Description: Cassandra session closed")
}

func (r *CassandraActivityRepository) CreateTable() error {
	err := r.session.Query(
		`CREATE TABLE IF NOT EXISTS task_activity (
			task_id int,
			created_at timestamp,
			id timeuuid,
			title text,
			action text,
			old_bucket text,
			new_bucket text,
			PRIMARY KEY ((task_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id DESC)`).Exec()
	if err != nil {
		return fmt.Errorf("create task_activity table: %w", err)
	}
	return nil
}

func (r *CassandraActivityRepository) AppendActivity(ctx context.Context, rec models.ActivityRecord) (models.ActivityRecord, error) {
	id := gocql.UUIDFromTime(rec.Timestamp)
	err := r.session.Query(
		`INSERT INTO task_activity (task_id, created_at, id, title, action, old_bucket, new_bucket)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TaskID, rec.Timestamp.UTC(), id, rec.Title, string(rec.Action), string(rec.OldBucket), string(rec.NewBucket),
	).WithContext(ctx).Exec()
	if err != nil {
		return models.ActivityRecord{}, fmt.Errorf("insert activity for task %d: %w", rec.TaskID, err)
	}
	rec.ID = id.String()
	return rec, nil
}

func (r *CassandraActivityRepository) ListActivity(ctx context.Context, taskID int) ([]models.ActivityRecord, error) {
	iter := r.session.Query(
		`SELECT id, created_at, title, action, old_bucket, new_bucket
		 FROM task_activity WHERE task_id = ?`, taskID,
	).WithContext(ctx).Iter()

	var (
		records   []models.ActivityRecord
		id        gocql.UUID
		createdAt time.Time
		title     string
		action    string
		oldBucket string
		newBucket string
	)
	for iter.Scan(&id, &createdAt, &title, &action, &oldBucket, &newBucket) {
		records = append(records, models.ActivityRecord{
			ID:        id.String(),
			Title:     title,
			TaskID:    taskID,
			Action:    models.ActivityAction(action),
			OldBucket: models.Bucket(oldBucket),
			NewBucket: models.Bucket(newBucket),
			Timestamp: createdAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list activity for task %d: %w", taskID, err)
	}
	return records, nil
}
