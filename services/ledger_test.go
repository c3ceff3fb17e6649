package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"prizewheel/models"
	"prizewheel/services"
)

func TestNewOperatorStartsWithoutCredits(t *testing.T) {
	db := newTestDB(t)
	op := &models.Operator{Email: "unfunded@example.com"}
	require.NoError(t, db.Create(op).Error)

	reloaded := reloadOperator(t, db, op.ID)
	assert.Zero(t, reloaded.CampaignCredits)
	assert.Zero(t, reloaded.LeadCredits)

	ok, err := services.NewLedger().Available(context.Background(), db, op.ID, models.CreditLead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerTryReserve(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 0, 2)
	ledger := services.NewLedger()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := ledger.TryReserve(ctx, db, op.ID, models.CreditLead, services.Usage{Action: services.ActionCaptureLead})
		require.NoError(t, err)
	}
	err := ledger.TryReserve(ctx, db, op.ID, models.CreditLead, services.Usage{Action: services.ActionCaptureLead})
	assert.ErrorIs(t, err, services.ErrCreditsExhausted)

	err = ledger.TryReserve(ctx, db, op.ID, models.CreditCampaign, services.Usage{Action: services.ActionCreateCampaign})
	assert.ErrorIs(t, err, services.ErrCreditsExhausted)

	err = ledger.TryReserve(ctx, db, op.ID+1000, models.CreditLead, services.Usage{})
	assert.ErrorIs(t, err, services.ErrOperatorNotFound)

	balance, err := ledger.Balance(ctx, db, op.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.LeadCredits)
	assert.Equal(t, int64(2), countRows(t, db, &models.CreditUsage{}, "operator_id = ? AND credit_type = ?", op.ID, models.CreditLead))
}

func TestLedgerConcurrentReservationsNeverOverdraw(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 0, 5)
	ledger := services.NewLedger()

	var (
		wg        sync.WaitGroup
		granted   int64
		exhausted int64
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				return ledger.TryReserve(context.Background(), tx, op.ID, models.CreditLead, services.Usage{Action: services.ActionCaptureLead})
			})
			switch {
			case err == nil:
				atomic.AddInt64(&granted, 1)
			case errors.Is(err, services.ErrCreditsExhausted):
				atomic.AddInt64(&exhausted, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), granted)
	assert.Equal(t, int64(15), exhausted)
	assert.Equal(t, 0, reloadOperator(t, db, op.ID).LeadCredits)
}

func TestLedgerGrantPlan(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 0, 0)
	admin := createOperator(t, db, 0, 0)
	ledger := services.NewLedger()
	ctx := context.Background()

	txn, err := ledger.GrantPlan(ctx, db, op.ID, "starter", &admin.ID, "inv_123")
	require.NoError(t, err)
	assert.Equal(t, 5, txn.CampaignCredits)
	assert.Equal(t, 1000, txn.LeadCredits)

	reloaded := reloadOperator(t, db, op.ID)
	assert.Equal(t, 5, reloaded.CampaignCredits)
	assert.Equal(t, 1000, reloaded.LeadCredits)

	_, err = ledger.GrantPlan(ctx, db, op.ID, "enterprise", nil, "")
	assert.Error(t, err)

	err = ledger.Grant(ctx, db, &models.CreditTransaction{OperatorID: op.ID, LeadCredits: -1})
	assert.Error(t, err)

	err = ledger.Grant(ctx, db, &models.CreditTransaction{OperatorID: op.ID + 1000, LeadCredits: 1})
	assert.ErrorIs(t, err, services.ErrOperatorNotFound)
}
