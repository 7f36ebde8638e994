package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type fakeSource struct {
	types map[int64]domain.TransactionType
	calls int
}

func (f *fakeSource) GetByID(_ context.Context, id int64) (*domain.TransactionType, error) {
	f.calls++
	t, ok := f.types[id]
	if !ok {
		return nil, domain.ErrTransactionTypeNotFound
	}
	return &t, nil
}

func (f *fakeSource) GetByName(_ context.Context, name string) (*domain.TransactionType, error) {
	f.calls++
	for _, t := range f.types {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, domain.ErrTransactionTypeNotFound
}

func (f *fakeSource) List(_ context.Context) ([]domain.TransactionType, error) {
	f.calls++
	var out []domain.TransactionType
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

var income = domain.TransactionType{
	ID:                 1,
	Name:               "Income",
	DebitAccountTypes:  []domain.AccountType{domain.AccountTypeAsset},
	CreditAccountTypes: []domain.AccountType{domain.AccountTypeRevenue},
}

func TestTransactionTypes_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	src := &fakeSource{types: map[int64]domain.TransactionType{1: income}}
	c := NewTransactionTypes(src, client, time.Minute)

	raw, err := json.Marshal(&income)
	require.NoError(t, err)
	mock.ExpectGet("txtype:id:1").RedisNil()
	mock.ExpectSet("txtype:id:1", raw, time.Minute).SetVal("OK")

	got, err := c.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Income", got.Name)
	assert.Equal(t, 1, src.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionTypes_Hit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	src := &fakeSource{}
	c := NewTransactionTypes(src, client, time.Minute)

	raw, err := json.Marshal(&income)
	require.NoError(t, err)
	mock.ExpectGet("txtype:id:1").SetVal(string(raw))

	got, err := c.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, income, *got)
	assert.Zero(t, src.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionTypes_RedisDownFallsBack(t *testing.T) {
	client, mock := redismock.NewClientMock()
	src := &fakeSource{types: map[int64]domain.TransactionType{1: income}}
	c := NewTransactionTypes(src, client, time.Minute)

	raw, err := json.Marshal(&income)
	require.NoError(t, err)
	mock.ExpectGet("txtype:name:Income").SetErr(errors.New("connection refused"))
	mock.ExpectSet("txtype:name:Income", raw, time.Minute).SetErr(errors.New("connection refused"))

	got, err := c.GetByName(context.Background(), "Income")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionTypes_NilClient(t *testing.T) {
	src := &fakeSource{types: map[int64]domain.TransactionType{1: income}}
	c := NewTransactionTypes(src, nil, time.Minute)

	_, err := c.GetByID(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	_, err = c.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrTransactionTypeNotFound)
}
