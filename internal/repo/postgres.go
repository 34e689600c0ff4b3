package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a pool through the pgx database/sql driver and pings it.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scheduled_transactions (
			id                  TEXT PRIMARY KEY,
			position            INTEGER NOT NULL,
			kind                TEXT NOT NULL,
			recipient_phone     TEXT NOT NULL DEFAULT '',
			recipient_name      TEXT NOT NULL DEFAULT '',
			memo                TEXT NOT NULL DEFAULT '',
			biller_type         TEXT NOT NULL DEFAULT '',
			account_number      TEXT NOT NULL DEFAULT '',
			amount              NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
			currency            TEXT NOT NULL,
			frequency           TEXT NOT NULL,
			description         TEXT NOT NULL DEFAULT '',
			next_execution_date TIMESTAMPTZ NOT NULL,
			is_active           BOOLEAN NOT NULL,
			last_executed       TIMESTAMPTZ,
			created_at          TIMESTAMPTZ NOT NULL
		)`); err != nil {
		return fmt.Errorf("create scheduled_transactions: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transaction_executions (
			id                       TEXT PRIMARY KEY,
			scheduled_transaction_id TEXT NOT NULL REFERENCES scheduled_transactions(id) ON DELETE CASCADE,
			seq                      INTEGER NOT NULL,
			executed_at              TIMESTAMPTZ NOT NULL,
			status                   TEXT NOT NULL CHECK (status IN ('success', 'failed')),
			error_message            TEXT,
			reference_id             TEXT,
			provider_status          TEXT
		)`); err != nil {
		return fmt.Errorf("create transaction_executions: %w", err)
	}
	return nil
}

func (r *PostgresStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, recipient_phone, recipient_name, memo, biller_type, account_number,
		       amount, currency, frequency, description, next_execution_date, is_active,
		       last_executed, created_at
		FROM scheduled_transactions
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduledTransaction
	index := map[string]int{}
	for rows.Next() {
		var s model.ScheduledTransaction
		var kind, freq string
		var lastExecuted sql.NullTime

		if err := rows.Scan(
			&s.ID,
			&kind,
			&s.RecipientPhone,
			&s.RecipientName,
			&s.Memo,
			&s.BillerType,
			&s.AccountNumber,
			&s.Amount,
			&s.Currency,
			&freq,
			&s.Description,
			&s.NextExecutionDate,
			&s.IsActive,
			&lastExecuted,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}

		s.Kind = model.Kind(kind)
		s.Frequency = model.Frequency(freq)
		if lastExecuted.Valid {
			t := lastExecuted.Time
			s.LastExecuted = &t
		}
		s.ExecutionHistory = []model.TransactionExecution{}

		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadExecutions(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresStore) loadExecutions(ctx context.Context, out []model.ScheduledTransaction, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scheduled_transaction_id, executed_at, status, error_message, reference_id, provider_status
		FROM transaction_executions
		ORDER BY scheduled_transaction_id, seq ASC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e model.TransactionExecution
		var status string
		var errMsg, refID, providerStatus sql.NullString

		if err := rows.Scan(
			&e.ID,
			&e.ScheduledTransactionID,
			&e.ExecutedAt,
			&status,
			&errMsg,
			&refID,
			&providerStatus,
		); err != nil {
			return err
		}

		e.Status = model.ExecutionStatus(status)
		e.ErrorMessage = errMsg.String
		e.ReferenceID = refID.String
		e.ProviderStatus = providerStatus.String

		i, ok := index[e.ScheduledTransactionID]
		if !ok {
			continue
		}
		out[i].ExecutionHistory = append(out[i].ExecutionHistory, e)
	}
	return rows.Err()
}

// SaveAll replaces the stored list in a single transaction.
func (r *PostgresStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_executions`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scheduled_transactions`); err != nil {
		return err
	}

	for pos, s := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scheduled_transactions (
				id, position, kind, recipient_phone, recipient_name, memo, biller_type, account_number,
				amount, currency, frequency, description, next_execution_date, is_active,
				last_executed, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			s.ID, pos, string(s.Kind), s.RecipientPhone, s.RecipientName, s.Memo, s.BillerType, s.AccountNumber,
			s.Amount, s.Currency, string(s.Frequency), s.Description, s.NextExecutionDate.UTC(), s.IsActive,
			nullTime(s.LastExecuted), s.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert scheduled %s: %w", s.ID, err)
		}

		for seq, e := range s.ExecutionHistory {
			if e.Status == model.ExecPending {
				return errors.New("refusing to persist a pending execution")
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO transaction_executions (
					id, scheduled_transaction_id, seq, executed_at, status, error_message, reference_id, provider_status
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				e.ID, s.ID, seq, e.ExecutedAt.UTC(), string(e.Status),
				nullString(e.ErrorMessage), nullString(e.ReferenceID), nullString(e.ProviderStatus),
			); err != nil {
				return fmt.Errorf("insert execution %s: %w", e.ID, err)
			}
		}
	}

	return tx.Commit()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Persistence = (*PostgresStore)(nil)
