package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

// PostgresStore handles users and activity logs in PostgreSQL. Each call
// borrows a connection from the pool and returns it before the call ends.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a pgx pool and checks connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreateUser inserts a user. The UNIQUE constraint on username makes the
// existence check and the insert a single atomic step.
func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, password_hash, role, created_at`,
		username, passwordHash, string(role),
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// InsertLog appends an entry; id and timestamp are assigned by the database.
func (s *PostgresStore) InsertLog(ctx context.Context, e *models.LogEntry) (string, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO logs (username, action, details, ip_address, device)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		 RETURNING id, timestamp`,
		e.Username, e.Action, e.Details, e.IPAddress, e.Device,
	).Scan(&id, &e.Timestamp)
	if err != nil {
		return "", fmt.Errorf("insert log: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	e.Timestamp = e.Timestamp.UTC()
	return e.ID, nil
}

// ListLogs returns every entry in insertion order.
func (s *PostgresStore) ListLogs(ctx context.Context) ([]models.LogEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, action, details, timestamp,
		        COALESCE(ip_address, ''), COALESCE(device, '')
		 FROM logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.LogEntry, 0)
	for rows.Next() {
		var (
			e  models.LogEntry
			id int64
		)
		if err := rows.Scan(&id, &e.Username, &e.Action, &e.Details, &e.Timestamp, &e.IPAddress, &e.Device); err != nil {
			return nil, fmt.Errorf("list logs: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		e.Timestamp = e.Timestamp.UTC()
		logs = append(logs, e)
	}
	return logs, rows.Err()
}
