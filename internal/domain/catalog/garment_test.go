package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
)

func TestCentsString(t *testing.T) {
	assert.Equal(t, "29.99", Cents(2999).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "-1.50", Cents(-150).String())
}

func TestCheckSize(t *testing.T) {
	g := Garment{Name: "Modern T-Shirt", Price: 2999, Sizes: []string{"S", "M", "L", "XL"}}

	require.NoError(t, g.CheckSize("M"))
	assert.ErrorIs(t, g.CheckSize(""), domain.ErrValidation)
	assert.ErrorIs(t, g.CheckSize("m"), domain.ErrValidation)
	assert.ErrorIs(t, g.CheckSize("XXL"), domain.ErrValidation)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	g := Garment{ID: "g1", Name: "Hat", Price: 3499, Sizes: []string{"S", "M"}}
	snap := g.Snapshot()

	g.Sizes[0] = "XS"
	g.Price = 1

	assert.Equal(t, []string{"S", "M"}, snap.Sizes)
	assert.Equal(t, Cents(3499), snap.Price)
}

func TestValidate(t *testing.T) {
	for _, g := range DefaultGarments() {
		assert.NoError(t, g.Validate(), g.Name)
	}

	bad := []Garment{
		{Price: 1, Sizes: []string{"S"}},
		{Name: "x", Price: -1, Sizes: []string{"S"}},
		{Name: "x", Price: 1},
		{Name: "x", Price: 1, Sizes: []string{"S", "S"}},
		{Name: "x", Price: 1, Sizes: []string{""}},
	}
	for _, g := range bad {
		assert.ErrorIs(t, g.Validate(), domain.ErrValidation)
	}
}
