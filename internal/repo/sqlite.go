package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

// scheduledRow is the gorm model. Execution history lives in a JSON column
// since it is only ever read and written together with its parent.
type scheduledRow struct {
	ID                string `gorm:"primaryKey"`
	Position          int    `gorm:"index"`
	Kind              string
	RecipientPhone    string
	RecipientName     string
	Memo              string
	BillerType        string
	AccountNumber     string
	Amount            string `gorm:"type:text"`
	Currency          string
	Frequency         string
	Description       string
	NextExecutionDate time.Time `gorm:"index"`
	IsActive          bool
	LastExecuted      *time.Time
	CreatedAt         time.Time
	History           datatypes.JSON
}

func (scheduledRow) TableName() string {
	return "scheduled_transactions"
}

type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database file and migrates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&scheduledRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	var rows []scheduledRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]model.ScheduledTransaction, 0, len(rows))
	for _, r := range rows {
		item, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *SQLiteStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	rows := make([]scheduledRow, 0, len(items))
	for pos, item := range items {
		r, err := fromModel(pos, item)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&scheduledRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func fromModel(pos int, s model.ScheduledTransaction) (scheduledRow, error) {
	hist := s.ExecutionHistory
	if hist == nil {
		hist = []model.TransactionExecution{}
	}
	b, err := json.Marshal(hist)
	if err != nil {
		return scheduledRow{}, err
	}
	return scheduledRow{
		ID:                s.ID,
		Position:          pos,
		Kind:              string(s.Kind),
		RecipientPhone:    s.RecipientPhone,
		RecipientName:     s.RecipientName,
		Memo:              s.Memo,
		BillerType:        s.BillerType,
		AccountNumber:     s.AccountNumber,
		Amount:            s.Amount.String(),
		Currency:          s.Currency,
		Frequency:         string(s.Frequency),
		Description:       s.Description,
		NextExecutionDate: s.NextExecutionDate.UTC(),
		IsActive:          s.IsActive,
		LastExecuted:      s.LastExecuted,
		CreatedAt:         s.CreatedAt.UTC(),
		History:           datatypes.JSON(b),
	}, nil
}

func (r scheduledRow) toModel() (model.ScheduledTransaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return model.ScheduledTransaction{}, fmt.Errorf("row %s amount: %w", r.ID, err)
	}

	hist := []model.TransactionExecution{}
	if len(r.History) > 0 {
		if err := json.Unmarshal(r.History, &hist); err != nil {
			return model.ScheduledTransaction{}, fmt.Errorf("row %s history: %w", r.ID, err)
		}
	}

	return model.ScheduledTransaction{
		ID:                r.ID,
		Kind:              model.Kind(r.Kind),
		RecipientPhone:    r.RecipientPhone,
		RecipientName:     r.RecipientName,
		Memo:              r.Memo,
		BillerType:        r.BillerType,
		AccountNumber:     r.AccountNumber,
		Amount:            amount,
		Currency:          r.Currency,
		Frequency:         model.Frequency(r.Frequency),
		Description:       r.Description,
		NextExecutionDate: r.NextExecutionDate,
		IsActive:          r.IsActive,
		LastExecuted:      r.LastExecuted,
		CreatedAt:         r.CreatedAt,
		ExecutionHistory:  hist,
	}, nil
}

var _ Persistence = (*SQLiteStore)(nil)
