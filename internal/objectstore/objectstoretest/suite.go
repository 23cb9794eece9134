// Package objectstoretest holds the behaviour every objectstore.Bucket must share.
package objectstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
)

// Run exercises b. Keys are namespaced under prefix so remote backends can share a container.
func Run(t *testing.T, b objectstore.Bucket, prefix string) {
	ctx := context.Background()
	key := func(name string) string { return prefix + name }

	t.Run("get missing", func(t *testing.T) {
		_, err := b.Get(ctx, key("missing"))
		assert.ErrorIs(t, err, objectstore.ErrNotExist)
	})

	t.Run("create then get", func(t *testing.T) {
		etag, err := b.Create(ctx, key("a"), []byte(`{"v":1}`))
		require.NoError(t, err)
		require.NotEmpty(t, etag)

		obj, err := b.Get(ctx, key("a"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(obj.Data))
		assert.Equal(t, etag, obj.ETag)
		assert.Equal(t, key("a"), obj.Key)
	})

	t.Run("create existing fails", func(t *testing.T) {
		_, err := b.Create(ctx, key("dup"), []byte(`{"v":1}`))
		require.NoError(t, err)

		_, err = b.Create(ctx, key("dup"), []byte(`{"v":2}`))
		assert.ErrorIs(t, err, objectstore.ErrPreconditionFailed)

		obj, err := b.Get(ctx, key("dup"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(obj.Data))
	})

	t.Run("replace requires current etag", func(t *testing.T) {
		etag, err := b.Create(ctx, key("r"), []byte(`{"v":1}`))
		require.NoError(t, err)

		next, err := b.Replace(ctx, key("r"), []byte(`{"v":2}`), etag)
		require.NoError(t, err)
		assert.NotEqual(t, etag, next)

		_, err = b.Replace(ctx, key("r"), []byte(`{"v":3}`), etag)
		assert.ErrorIs(t, err, objectstore.ErrPreconditionFailed)

		obj, err := b.Get(ctx, key("r"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(obj.Data))
		assert.Equal(t, next, obj.ETag)
	})

	t.Run("replace missing", func(t *testing.T) {
		_, err := b.Replace(ctx, key("nope"), []byte(`{}`), "x")
		assert.ErrorIs(t, err, objectstore.ErrNotExist)
	})

	t.Run("delete requires current etag", func(t *testing.T) {
		etag, err := b.Create(ctx, key("d"), []byte(`{}`))
		require.NoError(t, err)

		assert.ErrorIs(t, b.Delete(ctx, key("d"), "stale"), objectstore.ErrPreconditionFailed)
		require.NoError(t, b.Delete(ctx, key("d"), etag))

		_, err = b.Get(ctx, key("d"))
		assert.ErrorIs(t, err, objectstore.ErrNotExist)
		assert.ErrorIs(t, b.Delete(ctx, key("d"), etag), objectstore.ErrNotExist)
	})

	t.Run("keys by prefix", func(t *testing.T) {
		for _, name := range []string{"list/b", "list/a", "list/c", "other/x"} {
			_, err := b.Create(ctx, key(name), []byte(`{}`))
			require.NoError(t, err)
		}

		var got []string
		for k, err := range b.Keys(ctx, key("list/")) {
			require.NoError(t, err)
			got = append(got, k)
		}
		assert.ElementsMatch(t, []string{key("list/a"), key("list/b"), key("list/c")}, got)
	})

	t.Run("concurrent replace has one winner", func(t *testing.T) {
		etag, err := b.Create(ctx, key("race"), []byte(`{"v":0}`))
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		results := make(chan error, writers)
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := b.Replace(ctx, key("race"), []byte(fmt.Sprintf(`{"v":%d}`, i+1)), etag)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, objectstore.ErrPreconditionFailed)
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, b.Ping(ctx))
	})
}
