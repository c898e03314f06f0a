package dict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/rollup"
)

func TestNew(t *testing.T) {
	ix := New([]string{"country", "browser"})

	require.Equal(t, rollup.FirstValueID, ix.NextID())

	for _, dimension := range []string{"country", "browser"} {
		id, err := ix.GetOrCreateID(dimension, rollup.Star)
		require.NoError(t, err)
		require.Equal(t, rollup.StarValueID, id)

		id, err = ix.GetOrCreateID(dimension, rollup.Other)
		require.NoError(t, err)
		require.Equal(t, rollup.OtherValueID, id)

		require.Equal(t, 0, ix.Cardinality(dimension))
	}

	// Reserved lookups never consume the counter.
	require.Equal(t, rollup.FirstValueID, ix.NextID())
}

func TestIndex_GetOrCreateID(t *testing.T) {
	t.Run("Counter is shared across dimensions", func(t *testing.T) {
		ix := New([]string{"country", "browser"})

		us, err := ix.GetOrCreateID("country", "US")
		require.NoError(t, err)
		require.Equal(t, int32(2), us)

		firefox, err := ix.GetOrCreateID("browser", "firefox")
		require.NoError(t, err)
		require.Equal(t, int32(3), firefox)

		ca, err := ix.GetOrCreateID("country", "CA")
		require.NoError(t, err)
		require.Equal(t, int32(4), ca)

		require.Equal(t, int32(5), ix.NextID())
	})

	t.Run("Repeated value keeps its id", func(t *testing.T) {
		ix := New([]string{"country"})

		first, err := ix.GetOrCreateID("country", "US")
		require.NoError(t, err)
		again, err := ix.GetOrCreateID("country", "US")
		require.NoError(t, err)

		require.Equal(t, first, again)
		require.Equal(t, rollup.FirstValueID+1, ix.NextID())
	})

	t.Run("Same value in different dimensions gets distinct ids", func(t *testing.T) {
		ix := New([]string{"country", "region"})

		a, err := ix.GetOrCreateID("country", "US")
		require.NoError(t, err)
		b, err := ix.GetOrCreateID("region", "US")
		require.NoError(t, err)

		require.NotEqual(t, a, b)
	})

	t.Run("Unknown dimension", func(t *testing.T) {
		ix := New([]string{"country"})

		_, err := ix.GetOrCreateID("platform", "ios")
		require.ErrorIs(t, err, errs.ErrUnknownDimension)
	})
}

func TestIndex_ValueOf(t *testing.T) {
	ix := New([]string{"country"})
	id, err := ix.GetOrCreateID("country", "US")
	require.NoError(t, err)

	t.Run("Round trip", func(t *testing.T) {
		value, err := ix.ValueOf("country", id)
		require.NoError(t, err)
		require.Equal(t, "US", value)
	})

	t.Run("Reserved ids", func(t *testing.T) {
		value, err := ix.ValueOf("country", rollup.StarValueID)
		require.NoError(t, err)
		require.Equal(t, rollup.Star, value)

		value, err = ix.ValueOf("country", rollup.OtherValueID)
		require.NoError(t, err)
		require.Equal(t, rollup.Other, value)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := ix.ValueOf("country", 99)
		require.ErrorIs(t, err, errs.ErrUnknownValueID)
	})

	t.Run("Unknown dimension", func(t *testing.T) {
		_, err := ix.ValueOf("platform", rollup.StarValueID)
		require.ErrorIs(t, err, errs.ErrUnknownDimension)
	})
}

func TestIndex_Cardinality(t *testing.T) {
	ix := New([]string{"country"})

	require.Equal(t, 0, ix.Cardinality("country"))

	_, err := ix.GetOrCreateID("country", "US")
	require.NoError(t, err)
	_, err = ix.GetOrCreateID("country", "CA")
	require.NoError(t, err)
	require.Equal(t, 2, ix.Cardinality("country"))

	// Wildcard and overflow lookups do not count.
	_, err = ix.GetOrCreateID("country", rollup.Star)
	require.NoError(t, err)
	_, err = ix.GetOrCreateID("country", rollup.Other)
	require.NoError(t, err)
	require.Equal(t, 2, ix.Cardinality("country"))

	require.Equal(t, 0, ix.Cardinality("platform"))
}

func TestIndex_Values(t *testing.T) {
	ix := New([]string{"country"})
	for _, value := range []string{"US", "CA", "BR"} {
		_, err := ix.GetOrCreateID("country", value)
		require.NoError(t, err)
	}

	require.Equal(t, []string{"BR", "CA", "US"}, ix.Values("country"))
	require.Nil(t, ix.Values("platform"))
}

func TestIndex_MaxCardinalityDimension(t *testing.T) {
	newIndex := func(t *testing.T) *Index {
		t.Helper()
		ix := New([]string{"country", "browser", "platform"})
		for _, value := range []string{"US", "CA"} {
			_, err := ix.GetOrCreateID("country", value)
			require.NoError(t, err)
		}
		for _, value := range []string{"firefox", "safari", "chrome"} {
			_, err := ix.GetOrCreateID("browser", value)
			require.NoError(t, err)
		}

		return ix
	}

	t.Run("Highest cardinality wins", func(t *testing.T) {
		dimension, ok := newIndex(t).MaxCardinalityDimension()
		require.True(t, ok)
		require.Equal(t, "browser", dimension)
	})

	t.Run("Exclusion skips the leader", func(t *testing.T) {
		dimension, ok := newIndex(t).MaxCardinalityDimension("browser")
		require.True(t, ok)
		require.Equal(t, "country", dimension)
	})

	t.Run("Ties keep declared order", func(t *testing.T) {
		ix := New([]string{"country", "browser"})
		_, err := ix.GetOrCreateID("country", "US")
		require.NoError(t, err)
		_, err = ix.GetOrCreateID("browser", "firefox")
		require.NoError(t, err)

		dimension, ok := ix.MaxCardinalityDimension()
		require.True(t, ok)
		require.Equal(t, "country", dimension)
	})

	t.Run("No candidate", func(t *testing.T) {
		empty := New([]string{"country"})
		_, ok := empty.MaxCardinalityDimension()
		require.False(t, ok)

		_, ok = newIndex(t).MaxCardinalityDimension("country", "browser", "platform")
		require.False(t, ok)
	})
}

func TestRestore(t *testing.T) {
	dimensions := []string{"country", "browser"}

	buildDump := func(t *testing.T) (map[string][]Entry, int32) {
		t.Helper()
		ix := New(dimensions)
		for _, value := range []string{"US", "CA"} {
			_, err := ix.GetOrCreateID("country", value)
			require.NoError(t, err)
		}
		_, err := ix.GetOrCreateID("browser", "firefox")
		require.NoError(t, err)

		return ix.Export(), ix.NextID()
	}

	t.Run("Round trip", func(t *testing.T) {
		dump, nextID := buildDump(t)

		restored, err := Restore(dimensions, dump, nextID)
		require.NoError(t, err)
		require.Equal(t, nextID, restored.NextID())
		require.Equal(t, []string{"CA", "US"}, restored.Values("country"))
		require.Equal(t, []string{"firefox"}, restored.Values("browser"))

		// Restored ids match the originals.
		us, err := restored.GetOrCreateID("country", "US")
		require.NoError(t, err)
		require.Equal(t, int32(2), us)

		value, err := restored.ValueOf("browser", 4)
		require.NoError(t, err)
		require.Equal(t, "firefox", value)

		// New allocations continue above the watermark.
		next, err := restored.GetOrCreateID("browser", "safari")
		require.NoError(t, err)
		require.Equal(t, nextID, next)
	})

	t.Run("Export omits reserved entries", func(t *testing.T) {
		dump, _ := buildDump(t)
		for _, entries := range dump {
			for _, entry := range entries {
				require.GreaterOrEqual(t, entry.ID, rollup.FirstValueID)
			}
		}
	})

	t.Run("Reserved id rejected", func(t *testing.T) {
		_, err := Restore(dimensions, map[string][]Entry{
			"country": {{Value: "US", ID: rollup.OtherValueID}},
		}, 3)
		require.ErrorIs(t, err, errs.ErrInvalidDictionary)
	})

	t.Run("Id above watermark rejected", func(t *testing.T) {
		_, err := Restore(dimensions, map[string][]Entry{
			"country": {{Value: "US", ID: 7}},
		}, 3)
		require.ErrorIs(t, err, errs.ErrInvalidDictionary)
	})

	t.Run("Duplicate value rejected", func(t *testing.T) {
		_, err := Restore(dimensions, map[string][]Entry{
			"country": {{Value: "US", ID: 2}, {Value: "US", ID: 3}},
		}, 4)
		require.ErrorIs(t, err, errs.ErrInvalidDictionary)
	})

	t.Run("Duplicate id rejected", func(t *testing.T) {
		_, err := Restore(dimensions, map[string][]Entry{
			"country": {{Value: "US", ID: 2}, {Value: "CA", ID: 2}},
		}, 3)
		require.ErrorIs(t, err, errs.ErrInvalidDictionary)
	})

	t.Run("Undeclared dimension rejected", func(t *testing.T) {
		_, err := Restore(dimensions, map[string][]Entry{
			"platform": {{Value: "ios", ID: 2}},
		}, 3)
		require.ErrorIs(t, err, errs.ErrUnknownDimension)
	})

	t.Run("Watermark below first dynamic id rejected", func(t *testing.T) {
		_, err := Restore(dimensions, map[string][]Entry{}, 1)
		require.ErrorIs(t, err, errs.ErrInvalidDictionary)
	})
}
