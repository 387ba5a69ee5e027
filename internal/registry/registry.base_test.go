package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talking_menu/internal/common"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("a", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = r.Register("a", 2)
	require.NoError(t, err)
	assert.False(t, isNew, "ghi đè phải trả isNew=false")

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = r.Register("", 3)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestRegistry_MustGetMissing(t *testing.T) {
	r := NewRegistry[string]()
	_, err := r.MustGet("missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRegistry_GetOrCreateConcurrent(t *testing.T) {
	r := NewRegistry[*int]()
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.GetOrCreate("x", func() (*int, error) {
				calls++
				v := 1
				return &v, nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"x"}, r.Names())
}

func TestRegistry_ClearAll(t *testing.T) {
	r := NewRegistry[int]()
	_, _ = r.Register("a", 1)
	_, _ = r.Register("b", 2)

	cleaned := 0
	count, err := r.ClearAll(func(int) error { cleaned++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, cleaned)
	assert.Empty(t, r.Names())
}
