package service

import (
	"testing"

	"loteamento/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarouselService_CreateAppendsOrder(t *testing.T) {
	env := newTestEnv(t)

	sl, err := env.slides.Create(testActor, SlideFields{
		Image: strPtr("img/x.jpg"), Title: strPtr("X"), Description: strPtr("desc"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, sl.Order)
	assert.True(t, sl.Active)

	off := false
	zero := 0
	sl2, err := env.slides.Create(testActor, SlideFields{
		Image: strPtr("img/y.jpg"), Title: strPtr("Y"), Description: strPtr("d"), Order: &zero, Active: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sl2.Order)

	stored, err := env.slides.Get(sl2.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	_, err = env.slides.Create(testActor, SlideFields{Title: strPtr("no image")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCarouselService_ActiveOrder(t *testing.T) {
	env := newTestEnv(t)
	list, err := env.slides.Active()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Order, list[i].Order)
	}

	_, err = env.slides.Toggle(testActor, list[0].ID)
	require.NoError(t, err)
	list, err = env.slides.Active()
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(1), countActions(t, env.db, domain.ActionToggleStatus))
}

func TestCarouselService_ReorderIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	all, err := env.slides.List(nil)
	require.NoError(t, err)
	before := dumpState(t, env.db)

	err = env.slides.Reorder(testActor, []SlideOrder{
		{ID: all[0].ID, Order: 10},
		{ID: 9999, Order: 1},
	})
	assert.ErrorIs(t, err, ErrSlideNotFound)
	assert.Equal(t, before.Slides, dumpState(t, env.db).Slides)

	require.NoError(t, env.slides.Reorder(testActor, []SlideOrder{
		{ID: all[0].ID, Order: 3},
		{ID: all[2].ID, Order: 1},
	}))
	list, err := env.slides.List(nil)
	require.NoError(t, err)
	assert.Equal(t, all[2].ID, list[0].ID)
	assert.Equal(t, int64(1), countActions(t, env.db, domain.ActionReorder))
}
