package neo4jdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// schema is applied by EnsureSchema. Every statement is idempotent.
var schema = []string{
	"CREATE CONSTRAINT task_id_unique IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
	"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT user_email_unique IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
	"CREATE CONSTRAINT notification_id_unique IF NOT EXISTS FOR (n:Notification) REQUIRE n.id IS UNIQUE",
	"CREATE INDEX notification_task_id IF NOT EXISTS FOR (n:Notification) ON (n.task_id)",
	"CREATE INDEX notification_user_id IF NOT EXISTS FOR (n:Notification) ON (n.user_id)",
	"CREATE INDEX task_created_at IF NOT EXISTS FOR (t:Task) ON (t.created_at)",
}

// querier is satisfied by both managed and explicit transactions.
type querier interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

// executor runs a unit of work against a querier.
type executor interface {
	execute(ctx context.Context, mode neo4j.AccessMode, work func(q querier) (any, error)) (any, error)
}

// sessionExecutor opens a session per call and retries transient failures
// through the driver's managed transactions.
type sessionExecutor struct {
	driver   neo4j.DriverWithContext
	database string
}

func (e sessionExecutor) execute(ctx context.Context, mode neo4j.AccessMode, work func(q querier) (any, error)) (any, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: e.database})
	defer session.Close(ctx)

	fn := func(tx neo4j.ManagedTransaction) (any, error) { return work(tx) }
	if mode == neo4j.AccessModeRead {
		return session.ExecuteRead(ctx, fn)
	}
	return session.ExecuteWrite(ctx, fn)
}

// txExecutor runs every call inside one explicit transaction.
type txExecutor struct {
	tx neo4j.ExplicitTransaction
}

func (e txExecutor) execute(_ context.Context, _ neo4j.AccessMode, work func(q querier) (any, error)) (any, error) {
	return work(e.tx)
}

// run executes work and asserts its result type.
func run[T any](ctx context.Context, e executor, mode neo4j.AccessMode, work func(q querier) (T, error)) (T, error) {
	out, err := e.execute(ctx, mode, func(q querier) (any, error) { return work(q) })
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// Store implements store.Store on Neo4j.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
	inTx     bool

	tasks         *TaskStore
	users         *UserStore
	notifications *NotificationStore
}

var _ store.Store = (*Store)(nil)

// Open connects to cfg.URL with basic auth, verifies connectivity and
// applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URL, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	s := New(driver, cfg.Name, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	s.logger.Info("database connection established", "driver", "neo4j")
	return s, nil
}

// New wraps a driver. An empty database selects the server default.
func New(driver neo4j.DriverWithContext, database string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "neo4j_store")
	return newStore(driver, database, logger, sessionExecutor{driver: driver, database: database}, false)
}

func newStore(driver neo4j.DriverWithContext, database string, logger *slog.Logger, exec executor, inTx bool) *Store {
	return &Store{
		driver:        driver,
		database:      database,
		logger:        logger,
		inTx:          inTx,
		tasks:         &TaskStore{exec: exec, logger: logger},
		users:         &UserStore{exec: exec, logger: logger},
		notifications: &NotificationStore{exec: exec, logger: logger},
	}
}

// EnsureSchema creates the constraints and indexes the stores rely on.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		_, err := neo4j.ExecuteQuery(ctx, s.driver, stmt, nil,
			neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
		if err != nil {
			return fmt.Errorf("failed to apply neo4j schema %q: %w", stmt, err)
		}
	}
	return nil
}

// Tasks implements store.Store.
func (s *Store) Tasks() store.TaskStore { return s.tasks }

// Users implements store.Store.
func (s *Store) Users() store.UserStore { return s.users }

// Notifications implements store.Store.
func (s *Store) Notifications() store.NotificationStore { return s.notifications }

// InTx runs fn inside one explicit transaction, committing when fn returns
// nil and rolling back otherwise. Nested calls join the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.database})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		log.Error("failed to begin transaction", "error", redact.Error(err))
		return fmt.Errorf("%w: begin: %v", store.ErrTransactionFailed, err)
	}

	txStore := newStore(s.driver, s.database, s.logger, txExecutor{tx: tx}, true)
	if err := fn(ctx, txStore); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error("failed to rollback transaction",
				"error", redact.Error(rbErr),
				"original_error", redact.Error(err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("failed to commit transaction", "error", redact.Error(err))
		return fmt.Errorf("%w: commit: %v", store.ErrTransactionFailed, err)
	}
	return nil
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// MapError maps Neo4j server errors onto the store sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var neoErr *neo4j.Neo4jError
	if !errors.As(err, &neoErr) {
		return err
	}

	switch {
	case neoErr.Code == constraintViolation:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case neoErr.Code == "Neo.ClientError.Statement.TypeError",
		neoErr.Code == "Neo.ClientError.Statement.ArgumentError":
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return err
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == constraintViolation
}
