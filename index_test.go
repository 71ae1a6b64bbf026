package xbase_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/core"
)

func namesTable(t *testing.T) *xbase.Table {
	t.Helper()
	spec, err := xbase.ParseFieldSpec("NAME C(10)")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "names.dbf")
	tbl, err := xbase.CreateTable(path, []xbase.FieldSpec{spec}, core.VisualFoxPro, core.CodepageWindowsANSI, xbase.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close(true, true) })
	for _, n := range []string{"charlie", "alpha", "bravo", "alphonse"} {
		_, err := tbl.Append(map[string]interface{}{"NAME": n}, true)
		require.NoError(t, err)
	}
	return tbl
}

func nameKey(r *xbase.Record) (xbase.Key, error) {
	v, err := r.Get("NAME")
	if err != nil {
		return nil, err
	}
	return xbase.Key{v}, nil
}

func TestIndexSearchExactAndPartial(t *testing.T) {
	tbl := namesTable(t)
	idx, err := xbase.NewIndex(tbl, nameKey)
	require.NoError(t, err)
	require.Equal(t, 4, idx.Len())

	exact, err := idx.Search(xbase.Key{"bravo"}, false)
	require.NoError(t, err)
	require.Len(t, exact, 1)

	partial, err := idx.Search(xbase.Key{"alp"}, true)
	require.NoError(t, err)
	require.Len(t, partial, 2)

	_, err = idx.IndexSearch(xbase.Key{"zulu"}, false)
	require.Error(t, err)
}

func TestIndexUpdateReflectsEdit(t *testing.T) {
	tbl := namesTable(t)
	idx, err := xbase.NewIndex(tbl, nameKey)
	require.NoError(t, err)

	r, err := tbl.Read(0)
	require.NoError(t, err)
	require.NoError(t, r.Set("NAME", "zulu"))
	require.NoError(t, idx.Update(r))

	_, err = idx.IndexSearch(xbase.Key{"charlie"}, false)
	require.Error(t, err)
	matches, err := idx.Search(xbase.Key{"zulu"}, false)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestIndexQueryAppliesPredicate(t *testing.T) {
	tbl := namesTable(t)
	idx, err := xbase.NewIndex(tbl, nameKey)
	require.NoError(t, err)

	matches, err := idx.Query(func(r *xbase.Record) bool {
		v, err := r.Get("NAME")
		require.NoError(t, err)
		name, _ := v.(string)
		return len(name) > 6
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestIndexTracksTablePack(t *testing.T) {
	tbl := namesTable(t)
	idx, err := xbase.NewIndex(tbl, nameKey)
	require.NoError(t, err)

	require.NoError(t, tbl.Delete(0))
	_, err = tbl.Pack()
	require.NoError(t, err)

	require.Equal(t, 3, idx.Len())
	matches, err := idx.Search(xbase.Key{"charlie"}, false)
	require.NoError(t, err)
	require.Len(t, matches, 0)
}
