package service

import (
	"testing"

	"loteamento/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLotFields(code string) LotFields {
	return LotFields{
		Title: strPtr("Lote " + code),
		Code:  strPtr(code),
		Price: strPtr("100.000,00"),
		Size:  strPtr("250m²"),
	}
}

func TestLotService_Create(t *testing.T) {
	env := newTestEnv(t)

	lot, err := env.lots.Create(testActor, newLotFields("A-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.LotAvailable, lot.Status)
	assert.NotNil(t, lot.Images)
	assert.Equal(t, int64(1), countActions(t, env.db, domain.ActionCreate))

	_, err = env.lots.Create(testActor, newLotFields("A-1"))
	assert.ErrorIs(t, err, ErrLotCodeExists)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.lots.Create(testActor, LotFields{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrValidation)

	f := newLotFields("A-2")
	f.Status = strPtr("leiloado")
	_, err = env.lots.Create(testActor, f)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestLotService_Update(t *testing.T) {
	env := newTestEnv(t)
	lot, err := env.lots.Create(testActor, newLotFields("B-1"))
	require.NoError(t, err)

	updated, err := env.lots.Update(testActor, lot.ID, LotFields{Price: strPtr("120.000,00")})
	require.NoError(t, err)
	assert.Equal(t, "120.000,00", updated.Price)
	assert.Equal(t, "B-1", updated.Code)

	// keeping its own code is not a conflict
	_, err = env.lots.Update(testActor, lot.ID, LotFields{Code: strPtr("B-1")})
	require.NoError(t, err)

	_, err = env.lots.Update(testActor, lot.ID, LotFields{Code: strPtr("TKBFF-022")})
	assert.ErrorIs(t, err, ErrLotCodeExists)

	_, err = env.lots.Update(testActor, 9999, LotFields{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLotService_SetStatusAndDelete(t *testing.T) {
	env := newTestEnv(t)
	lot, err := env.lots.Create(testActor, newLotFields("C-1"))
	require.NoError(t, err)

	_, err = env.lots.SetStatus(testActor, lot.ID, "perdido")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := env.lots.SetStatus(testActor, lot.ID, domain.LotSold)
	require.NoError(t, err)
	assert.Equal(t, domain.LotSold, got.Status)
	assert.Equal(t, int64(1), countActions(t, env.db, domain.ActionStatusChange))

	available, err := env.lots.Available()
	require.NoError(t, err)
	for _, l := range available {
		assert.NotEqual(t, "C-1", l.Code)
	}

	require.NoError(t, env.lots.Delete(testActor, lot.ID))
	assert.ErrorIs(t, env.lots.Delete(testActor, lot.ID), ErrLotNotFound)
}

func TestLotService_Stats(t *testing.T) {
	env := newTestEnv(t)
	lot, err := env.lots.Create(testActor, newLotFields("D-1"))
	require.NoError(t, err)
	_, err = env.lots.SetStatus(testActor, lot.ID, domain.LotReserved)
	require.NoError(t, err)

	st, err := env.lots.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, int64(2), st.Available)
	assert.Equal(t, int64(1), st.Reserved)
	assert.Equal(t, int64(0), st.Sold)
	assert.InDelta(t, 280000.0, st.AvailableValue, 0.001)
}

func TestLotService_ListFilters(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.lots.List("bogus", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	list, total, err := env.lots.List("", 1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(2), total)
}

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"130.000,00":      130000,
		"R$ 1.250.000,50": 1250000.5,
		"99,90":           99.9,
		"":                0,
		"sob consulta":    0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, ParsePrice(in), 0.0001, in)
	}
}
