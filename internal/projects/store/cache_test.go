package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

func TestCache_Disabled(t *testing.T) {
	c := NewCache(0, time.Minute)
	assert.Nil(t, c)

	c.Put(domain.Project{ID: "a"}, c.Epoch())
	_, ok := c.Get("a")
	assert.False(t, ok)
	c.Invalidate("a")
	assert.Equal(t, 0, c.Len())
}

func TestCache_Bounded(t *testing.T) {
	c := NewCache(2, 0)
	for _, id := range []string{"a", "b", "c"} {
		c.Put(domain.Project{ID: id}, c.Epoch())
	}
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestCache_StalePutAfterInvalidate(t *testing.T) {
	c := NewCache(4, time.Minute)

	epoch := c.Epoch()
	c.Invalidate("a")
	c.Put(domain.Project{ID: "a", Revision: 0}, epoch)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(4, 10*time.Millisecond)
	c.Put(domain.Project{ID: "a"}, c.Epoch())

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestDocumentKeys(t *testing.T) {
	assert.Equal(t, "projects/P1.json", objectKey("P1"))

	id, ok := idFromKey("projects/P1.json")
	assert.True(t, ok)
	assert.Equal(t, "P1", id)

	_, ok = idFromKey("projects/nested/x.json")
	assert.False(t, ok)
	_, ok = idFromKey("other/P1.json")
	assert.False(t, ok)
}

func TestDocumentDecode(t *testing.T) {
	d, err := decodeDocument([]byte(`{"schema":1,"project":{"id":"a"}}`))
	assert.NoError(t, err)
	assert.NotNil(t, d.Project.Comments)

	_, err = decodeDocument([]byte(`{"schema":2}`))
	assert.Error(t, err)
	_, err = decodeDocument([]byte(`not json`))
	assert.Error(t, err)
}
