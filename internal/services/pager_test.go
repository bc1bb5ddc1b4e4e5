package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizedPages(sizes ...int) (PageFunc[int], *[]int) {
	var requested []int
	next := 0
	return func(_ context.Context, page int) ([]int, error) {
		requested = append(requested, page)
		if page > len(sizes) {
			return nil, nil
		}
		items := make([]int, sizes[page-1])
		for i := range items {
			items[i] = next
			next++
		}
		return items, nil
	}, &requested
}

func TestPager(t *testing.T) {
	ctx := context.Background()

	t.Run("Termination", func(t *testing.T) {
		tests := []struct {
			name     string
			size     int
			pages    []int
			want     int
			requests int
		}{
			{"three full then short", 15, []int{15, 15, 15, 7}, 52, 4},
			{"reply sized", 10, []int{10, 10, 10, 0}, 30, 4},
			{"first page short", 10, []int{3}, 3, 1},
			{"empty", 15, []int{0}, 0, 1},
			{"oversized page ends walk", 10, []int{12, 10}, 12, 1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				fetch, requested := sizedPages(tt.pages...)
				p := NewPager(tt.size, fetch)

				got, err := p.Collect(ctx, 0)

				require.NoError(t, err)
				assert.Len(t, got, tt.want)
				assert.Equal(t, tt.requests, p.Requests())
				for i, page := range *requested {
					assert.Equal(t, i+1, page)
				}
				for i, v := range got {
					assert.Equal(t, i, v)
				}
			})
		}
	})

	t.Run("Lazy", func(t *testing.T) {
		fetch, requested := sizedPages(2, 2, 1)
		p := NewPager(2, fetch)

		require.True(t, p.Next(ctx))
		require.True(t, p.Next(ctx))
		assert.Len(t, *requested, 1, "second page is fetched only when the first is drained")

		require.True(t, p.Next(ctx))
		assert.Equal(t, 2, p.Value())
		assert.Len(t, *requested, 2)
	})

	t.Run("Error After Elements", func(t *testing.T) {
		boom := errors.New("boom")
		p := NewPager(2, func(_ context.Context, page int) ([]string, error) {
			if page == 2 {
				return nil, boom
			}
			return []string{"a", "b"}, nil
		})

		got, err := p.Collect(ctx, 0)

		assert.Equal(t, []string{"a", "b"}, got)
		assert.ErrorIs(t, err, boom)
		assert.False(t, p.Next(ctx))
		assert.Equal(t, 2, p.Requests())
	})

	t.Run("All Stops On Break", func(t *testing.T) {
		fetch, requested := sizedPages(2, 2, 2, 0)
		p := NewPager(2, fetch)

		n := 0
		for v, err := range p.All(ctx) {
			require.NoError(t, err)
			n++
			if v == 2 {
				break
			}
		}

		assert.Equal(t, 3, n)
		assert.Len(t, *requested, 2)
	})

	t.Run("Static", func(t *testing.T) {
		p := staticPager([]string{"x", "y"})

		got, err := p.Collect(ctx, 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, got)
		assert.Zero(t, p.Requests())
	})
}
