package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductValidation(t *testing.T) {
	_, err := NewProduct("", "mate", decimal.NewFromInt(1), 1)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewProduct("p1", "mate", decimal.NewFromInt(-1), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = NewProduct("p1", "mate", decimal.NewFromInt(1), -1)
	assert.ErrorIs(t, err, ErrInvalidStock)

	p, err := NewProduct("p1", "mate", decimal.NewFromInt(1), 0)
	require.NoError(t, err)
	assert.False(t, p.InStock())
}

func TestSetStock(t *testing.T) {
	p, err := NewProduct("p1", "mate", decimal.NewFromInt(1), 4)
	require.NoError(t, err)

	require.NoError(t, p.SetStock(1))
	assert.Equal(t, 1, p.Stock)
	assert.ErrorIs(t, p.SetStock(-2), ErrInvalidStock)
	assert.Equal(t, 1, p.Stock)
}

func TestMatches(t *testing.T) {
	p := &Product{Name: "Bombilla Alpaca", Description: "acero inoxidable"}

	assert.True(t, p.Matches("bombilla"))
	assert.True(t, p.Matches("  ACERO "))
	assert.True(t, p.Matches(""))
	assert.False(t, p.Matches("yerba"))
}

func TestSnapshotAndClone(t *testing.T) {
	p := &Product{ID: "p1", Name: "Mate", Price: decimal.RequireFromString("12.30"), Category: "mates", Image: "m.png", Stock: 3}

	s := p.Snapshot()
	assert.Equal(t, "p1", s.ID)
	assert.Equal(t, 3, s.Stock)
	assert.True(t, p.Price.Equal(s.Price))

	cp := p.Clone()
	cp.Stock = 0
	assert.Equal(t, 3, p.Stock)
}
