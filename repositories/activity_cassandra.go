package repositories

import (
	"context"
	"fmt"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"github.com/gocql/gocql"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ActivityCassandra struct {
	session *gocql.Session
	logger  *log.Logger
	tracer  trace.Tracer
}

// NewActivityCassandra connects to the cluster, creates the keyspace and
// table when missing and returns a repository bound to the keyspace.
func NewActivityCassandra(hosts []string, keyspace string, logger *log.Logger, tracer trace.Tracer) (*ActivityCassandra, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = storeTimeout

	logger.Info("connecting to cassandra", "hosts", hosts)

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connecting to cassandra: %w", err)
	}
	err = ensureKeyspaceExists(session, keyspace)
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("creating keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connecting to keyspace %s: %w", keyspace, err)
	}

	if err := ensureActivityTableExists(session); err != nil {
		session.Close()
		return nil, fmt.Errorf("creating activity table: %w", err)
	}

	logger.Info("connected to cassandra", "keyspace", keyspace)
	return &ActivityCassandra{session: session, logger: logger, tracer: tracer}, nil
}

func (ar *ActivityCassandra) Close() {
	ar.session.Close()
}

func ensureKeyspaceExists(session *gocql.Session, keyspace string) error {
	query := fmt.Sprintf(`
	CREATE KEYSPACE IF NOT EXISTS %s
	WITH replication = {
		'class': 'SimpleStrategy',
		'replication_factor': 1
	};`, keyspace)
	return session.Query(query).Exec()
}

func ensureActivityTableExists(session *gocql.Session) error {
	query := `
	CREATE TABLE IF NOT EXISTS activity (
		user_id TEXT,
		created_at TIMESTAMP,
		id TIMEUUID,
		task_id TEXT,
		action TEXT,
		title TEXT,
		PRIMARY KEY (user_id, created_at, id)
	) WITH CLUSTERING ORDER BY (created_at DESC, id DESC);`
	return session.Query(query).Exec()
}

func (ar *ActivityCassandra) Append(ctx context.Context, activity domain.Activity) error {
	ctx, span := ar.tracer.Start(ctx, "ActivityCassandra.Append")
	defer span.End()

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	err := ar.session.Query(
		"INSERT INTO activity (user_id, created_at, id, task_id, action, title) VALUES (?, ?, ?, ?, ?, ?)",
		activity.User, activity.CreatedAt, gocql.TimeUUID(), activity.Task, string(activity.Action), activity.Title,
	).WithContext(ctx).Exec()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Error("insert activity", "user", activity.User, "err", err)
		return fmt.Errorf("appending activity: %w", err)
	}
	return nil
}

func (ar *ActivityCassandra) GetByUser(ctx context.Context, user string, limit int) (domain.Activities, error) {
	ctx, span := ar.tracer.Start(ctx, "ActivityCassandra.GetByUser")
	defer span.End()

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	iter := ar.session.Query(
		"SELECT user_id, task_id, action, title, created_at FROM activity WHERE user_id = ? LIMIT ?",
		user, limit,
	).WithContext(ctx).Iter()

	activities := make(domain.Activities, 0)
	var (
		a         domain.Activity
		action    string
		createdAt time.Time
	)
	for iter.Scan(&a.User, &a.Task, &action, &a.Title, &createdAt) {
		a.Action = domain.Action(action)
		a.CreatedAt = createdAt.UTC()
		activities = append(activities, a)
	}

	if err := iter.Close(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Error("select activity", "user", user, "err", err)
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return activities, nil
}
