package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPersistence keeps blobs in a map so tests can inspect round-trips.
type memPersistence struct {
	blobs map[string][]byte
}

func newMemPersistence() *memPersistence {
	return &memPersistence{blobs: make(map[string][]byte)}
}

func (m *memPersistence) Load(key string) ([]byte, error) { return m.blobs[key], nil }
func (m *memPersistence) Save(key string, data []byte) error {
	m.blobs[key] = data
	return nil
}

func TestAddSameProductBumpsQuantity(t *testing.T) {
	s, err := NewStore(newMemPersistence())
	require.NoError(t, err)

	require.NoError(t, s.Add("p1", "Coffee", 5))
	require.NoError(t, s.Add("p1", "Coffee", 5))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	s, err := NewStore(newMemPersistence())
	require.NoError(t, err)

	require.NoError(t, s.Add("p1", "Coffee", 5))
	require.NoError(t, s.SetQuantity("p1", 0))
	assert.Empty(t, s.Items())

	// Negative quantities remove as well.
	require.NoError(t, s.Add("p2", "Tea", 3))
	require.NoError(t, s.SetQuantity("p2", -4))
	assert.Empty(t, s.Items())
}

func TestTotalSumsPriceTimesQuantity(t *testing.T) {
	s, err := NewStore(newMemPersistence())
	require.NoError(t, err)

	require.NoError(t, s.Add("p1", "Coffee", 5))
	require.NoError(t, s.SetQuantity("p1", 2))
	require.NoError(t, s.Add("p2", "Tea", 3))

	assert.Equal(t, 13.0, s.Total())
}

func TestCartSurvivesRestart(t *testing.T) {
	p := newMemPersistence()

	s, err := NewStore(p)
	require.NoError(t, err)
	require.NoError(t, s.Add("p1", "Coffee", 5))
	require.NoError(t, s.Add("p2", "Tea", 3))

	reloaded, err := NewStore(p)
	require.NoError(t, err)
	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 8.0, reloaded.Total())
}

func TestClearEmptiesCartAndPersists(t *testing.T) {
	p := newMemPersistence()
	s, err := NewStore(p)
	require.NoError(t, err)

	require.NoError(t, s.Add("p1", "Coffee", 5))
	require.NoError(t, s.Clear())

	reloaded, err := NewStore(p)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items())
	assert.Zero(t, reloaded.Total())
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fp := NewFilePersistence(dir)

	s, err := NewStore(fp)
	require.NoError(t, err)
	require.NoError(t, s.Add("p1", "Coffee", 5))

	reloaded, err := NewStore(NewFilePersistence(dir))
	require.NoError(t, err)
	require.Len(t, reloaded.Items(), 1)
}
