package objectstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/objectstoretest"
)

func TestMemoryBucket(t *testing.T) {
	objectstoretest.Run(t, objectstore.NewMemory(), "")
}

func TestMemoryBucket_CancelledContext(t *testing.T) {
	m := objectstore.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Create(ctx, "k", []byte(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryBucket_GetReturnsCopy(t *testing.T) {
	m := objectstore.NewMemory()
	ctx := context.Background()
	_, err := m.Create(ctx, "k", []byte(`{"a":1}`))
	assert.NoError(t, err)

	obj, err := m.Get(ctx, "k")
	assert.NoError(t, err)
	obj.Data[0] = 'X'

	again, err := m.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again.Data))
}
