package scheduled

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

// SampleDrafts returns the demo definitions used to seed an empty store.
func SampleDrafts(now time.Time) []model.Draft {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return []model.Draft{
		{
			Kind:              model.KindBillPayment,
			BillerType:        "electricity",
			AccountNumber:     "1234567890",
			Amount:            decimal.NewFromInt(85000),
			Currency:          "UGX",
			Frequency:         model.Monthly,
			Description:       "Monthly electricity bill payment",
			NextExecutionDate: day.AddDate(0, 0, 3).Add(9 * time.Hour),
			IsActive:          true,
		},
		{
			Kind:              model.KindTransfer,
			RecipientPhone:    "+256 702 345 678",
			RecipientName:     "John Doe",
			Amount:            decimal.NewFromInt(50000),
			Currency:          "UGX",
			Frequency:         model.Weekly,
			Description:       "Weekly allowance for John",
			NextExecutionDate: day.AddDate(0, 0, 1).Add(8 * time.Hour),
			IsActive:          true,
		},
	}
}

// SeedIfEmpty creates the sample definitions when the manager holds none.
// It reports how many were created.
func (m *Manager) SeedIfEmpty(ctx context.Context) (int, error) {
	if len(m.List()) > 0 {
		return 0, nil
	}

	n := 0
	for _, d := range SampleDrafts(m.now()) {
		if _, err := m.Create(ctx, d); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
