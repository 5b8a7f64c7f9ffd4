package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanstock/internal/domain"
)

func TestTransactionStoreAppend(t *testing.T) {
	d := openTestDB(t)
	transactions := NewTransactionStore(d)
	ctx := context.Background()

	rec, err := transactions.Append(ctx, domain.TransactionRecord{
		Code:        "5000112576009",
		ProductName: "Coca Cola",
		Type:        domain.TransactionReceive,
		Quantity:    5,
		Timestamp:   time.Now(),
		ActorID:     "worker-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.TransactionReceive, rec.Type)
	assert.Equal(t, 5, rec.Quantity)
}

func TestTransactionStoreAppend_Defaults(t *testing.T) {
	d := openTestDB(t)
	transactions := NewTransactionStore(d)

	rec, err := transactions.Append(context.Background(), domain.TransactionRecord{
		Code:      "1",
		Type:      domain.TransactionConsult,
		Quantity:  0,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Unknown Product", rec.ProductName)
	assert.Equal(t, "anonymous", rec.ActorID)
}

func TestTransactionStoreRecent(t *testing.T) {
	d := openTestDB(t)
	transactions := NewTransactionStore(d)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := transactions.Append(ctx, domain.TransactionRecord{
			Code:        "1",
			ProductName: "A",
			Type:        domain.TransactionReceive,
			Quantity:    i + 1,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := transactions.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Most recent first
	assert.Equal(t, 3, records[0].Quantity)
	assert.Equal(t, 2, records[1].Quantity)
}

func TestTransactionStoreByType(t *testing.T) {
	d := openTestDB(t)
	transactions := NewTransactionStore(d)
	ctx := context.Background()

	now := time.Now()
	_, err := transactions.Append(ctx, domain.TransactionRecord{Code: "1", ProductName: "A", Type: domain.TransactionReceive, Quantity: 2, Timestamp: now})
	require.NoError(t, err)
	_, err = transactions.Append(ctx, domain.TransactionRecord{Code: "1", ProductName: "A", Type: domain.TransactionConsult, Quantity: 0, Timestamp: now})
	require.NoError(t, err)

	records, err := transactions.ByType(ctx, domain.TransactionConsult, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TransactionConsult, records[0].Type)
	assert.Zero(t, records[0].Quantity)
}
