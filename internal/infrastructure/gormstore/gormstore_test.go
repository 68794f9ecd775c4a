package gormstore

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	domcatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err)
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)

	seed := []*domcatalog.Product{
		{ID: "p1", Name: "Mate Imperial", Description: "calabaza forrada en cuero", Price: decimal.RequireFromString("35.50"), Category: "mates", Stock: 4},
		{ID: "p2", Name: "Yerba 100%", Description: "molienda fina", Price: decimal.RequireFromString("6"), Category: "yerbas", Stock: 20},
		{ID: "p3", Name: "Bombilla", Description: "alpaca", Price: decimal.RequireFromString("12"), Category: "Mates", Stock: 0},
	}
	for _, p := range seed {
		require.NoError(t, repo.Save(ctx, p))
	}
	require.NoError(t, Ping(ctx, db))

	p, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mate Imperial", p.Name)
	assert.True(t, decimal.RequireFromString("35.5").Equal(p.Price))

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mates, err := repo.ListByCategory(ctx, "mates")
	require.NoError(t, err)
	assert.Len(t, mates, 2)

	found, err := repo.Search(ctx, "CUERO")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].ID)

	pct, err := repo.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, pct, 1)
	assert.Equal(t, "p2", pct[0].ID)

	cats, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mates", "mates", "yerbas"}, cats)

	stock, err := repo.SetStock(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)
	p, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)

	_, err = repo.SetStock(ctx, "p1", -3)
	assert.ErrorIs(t, err, domcatalog.ErrInvalidStock)
	_, err = repo.SetStock(ctx, "ghost", 3)
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)

	seed[1].Stock = 7
	require.NoError(t, repo.Save(ctx, seed[1]))
	p, err = repo.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)
}

func newOrder(t *testing.T, id, customer, key string, created time.Time) *domorder.Order {
	t.Helper()
	o, err := domorder.New(id, customer, []domorder.Line{
		{ProductID: "p1", Name: "Mate", Price: decimal.RequireFromString("10.25"), Quantity: 2},
		{ProductID: "p2", Name: "Yerba", Price: decimal.RequireFromString("3"), Quantity: 1},
	}, domorder.ShippingInfo{Address: "Belgrano 55", Phone: "+54 11 4000-0000", Notes: "timbre 2"})
	require.NoError(t, err)
	o.IdempotencyKey = key
	o.CreatedAt, o.UpdatedAt = created, created
	return o
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, newOrder(t, "o1", "c1", "k1", base)))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o2", "c1", "", base.Add(time.Hour))))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o3", "c1", "", base.Add(2*time.Hour))))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o4", "c2", "k1", base)))
	assert.ErrorIs(t, repo.Insert(ctx, newOrder(t, "o5", "c1", "k1", base)), domorder.ErrConflict)

	o, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusPending, o.Status)
	assert.Equal(t, "k1", o.IdempotencyKey)
	assert.Equal(t, "timbre 2", o.Shipping.Notes)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, "p1", o.Lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("23.5").Equal(o.Total))

	byKey, err := repo.FindByIdempotency(ctx, "c2", "k1")
	require.NoError(t, err)
	assert.Equal(t, "o4", byKey.ID)
	_, err = repo.FindByIdempotency(ctx, "c3", "k1")
	assert.ErrorIs(t, err, domorder.ErrNotFound)

	list, err := repo.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"o3", "o2", "o1"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, o.StartProcessing())
	require.NoError(t, repo.Update(ctx, o))
	o, err = repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusProcessing, o.Status)
	require.NoError(t, o.Ship(), "restored order resumes its lifecycle")

	ghost := newOrder(t, "ghost", "c1", "", base)
	assert.ErrorIs(t, repo.Update(ctx, ghost), domorder.ErrNotFound)
}
