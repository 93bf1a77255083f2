package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-service/internal/dto"
	"github.com/todoflow-labs/todo-service/internal/store"
)

func newItem(title string) dto.Item {
	return dto.NewItem(dto.NewItemDto{Title: dto.StringPtr(title)})
}

func TestGetAllPreservesInsertionOrder(t *testing.T) {
	s := store.New()
	a, b, c := newItem("a"), newItem("b"), newItem("c")
	s.Insert(a)
	s.Insert(b)
	s.Insert(c)

	all := s.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	assert.True(t, s.Remove(b.ID))
	all = s.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, c.ID, all[1].ID)
}

func TestGetAllEmpty(t *testing.T) {
	all := store.New().GetAll()
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGet(t *testing.T) {
	s := store.New()
	it := newItem("a")
	s.Insert(it)

	got, err := s.Get(it.ID)
	require.NoError(t, err)
	assert.Equal(t, it, got)

	_, err = s.Get("nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReturnedItemsDoNotAliasStore(t *testing.T) {
	s := store.New()
	it := newItem("a")
	s.Insert(it)

	got, _ := s.Get(it.ID)
	*got.Title = "mutated"

	again, _ := s.Get(it.ID)
	assert.Equal(t, "a", again.TitleText())
}

func TestReplace(t *testing.T) {
	s := store.New()
	it := newItem("a")
	s.Insert(it)

	upd := it
	upd.ID = "ignored"
	upd.Title = dto.StringPtr("b")
	upd.IsCompleted = true
	require.NoError(t, s.Replace(it.ID, upd))

	got, err := s.Get(it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.ID, got.ID)
	assert.Equal(t, "b", got.TitleText())
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 1, s.Len())
}

func TestReplaceMissing(t *testing.T) {
	s := store.New()
	err := s.Replace("nonexistent", newItem("a"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestRemove(t *testing.T) {
	s := store.New()
	it := newItem("a")
	s.Insert(it)

	assert.True(t, s.Remove(it.ID))
	assert.False(t, s.Remove(it.ID))
	_, err := s.Get(it.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConcurrentAccess(t *testing.T) {
	s := store.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			it := newItem(fmt.Sprintf("item-%d", n))
			s.Insert(it)
			_, _ = s.Get(it.ID)
			_ = s.GetAll()
			if n%2 == 0 {
				s.Remove(it.ID)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 25, s.Len())
	assert.Len(t, s.GetAll(), 25)
}
