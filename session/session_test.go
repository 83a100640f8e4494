package session

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/models"
)

func TestCreateGetDelete(t *testing.T) {
	st := NewStore()
	s := st.Create()

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, st.Delete(s.ID))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(s.ID), ErrSessionNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	st := NewStore()
	a, b := st.Create(), st.Create()
	dal := models.Item{ID: 1, Name: "Dal", Price: decimal.NewFromInt(80)}

	require.NoError(t, a.With(func(s *State) error {
		s.Cart.AddItem(dal)
		s.Catalog.SetQuery("dal")
		return nil
	}))

	assert.Equal(t, "80", a.Snapshot().Total.String())
	assert.Equal(t, "dal", a.Snapshot().Query)
	assert.True(t, b.Snapshot().Total.IsZero())
	assert.Empty(t, b.Snapshot().Lines)
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	st := NewStore()
	s := st.Create()
	roti := models.Item{ID: 2, Name: "Roti", Price: decimal.NewFromInt(10)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.With(func(st *State) error {
				st.Cart.AddItem(roti)
				return nil
			})
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 50, snap.Lines[0].Quantity)
	assert.Equal(t, "500", snap.Total.String())
}

func TestPurgeIdle(t *testing.T) {
	st := NewStore()
	old := st.Create()
	fresh := st.Create()

	old.mu.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	assert.Equal(t, 1, st.PurgeIdle(time.Hour))
	_, err := st.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, st.Len())
}
