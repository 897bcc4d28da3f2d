package mirror

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID  string
	Val int
}

func newMirror() *Mirror[item] {
	return New(func(i item) string { return i.ID })
}

func TestMirror_PrependAndUpsert(t *testing.T) {
	m := newMirror()
	m.Replace([]item{{"a", 1}, {"b", 2}})

	m.Prepend(item{"c", 3})
	assert.Equal(t, []item{{"c", 3}, {"a", 1}, {"b", 2}}, m.Snapshot())

	m.Upsert(item{"a", 10})
	assert.Equal(t, []item{{"c", 3}, {"a", 10}, {"b", 2}}, m.Snapshot())

	m.Upsert(item{"d", 4})
	assert.Equal(t, "d", m.Snapshot()[0].ID)

	m.Prepend(item{"b", 20})
	assert.Equal(t, []item{{"b", 20}, {"d", 4}, {"c", 3}, {"a", 10}}, m.Snapshot())
}

func TestMirror_Remove(t *testing.T) {
	m := newMirror()
	m.Replace([]item{{"a", 1}, {"b", 2}})
	snap := m.Snapshot()

	m.Remove("a")
	m.Remove("missing")

	assert.Equal(t, []item{{"b", 2}}, m.Snapshot())
	assert.Len(t, snap, 2)
}

func TestMirror_ConcurrentWriters(t *testing.T) {
	m := newMirror()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Upsert(item{ID: string(rune('A' + i%10)), Val: i})
			_ = m.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, m.Len())
}

func TestMirror_ReplaceIfSkipsWhenOvertaken(t *testing.T) {
	m := newMirror()
	m.Replace([]item{{"a", 1}})

	gen := m.Generation()
	m.Prepend(item{"b", 2})
	assert.False(t, m.ReplaceIf(gen, []item{{"a", 1}}))
	assert.Equal(t, 2, m.Len())

	gen = m.Generation()
	assert.True(t, m.ReplaceIf(gen, []item{{"c", 3}}))
	assert.Equal(t, []item{{"c", 3}}, m.Snapshot())
	assert.NotEqual(t, gen, m.Generation())

	for _, change := range []func(){
		func() { m.Upsert(item{"c", 30}) },
		func() { m.Remove("c") },
		func() { m.Replace(nil) },
	} {
		gen = m.Generation()
		change()
		assert.False(t, m.ReplaceIf(gen, nil))
	}
}
