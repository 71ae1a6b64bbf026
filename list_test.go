package xbase_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/core"
)

func newOrdersTable(t *testing.T) *xbase.Table {
	t.Helper()
	spec, err := xbase.ParseFieldSpec("REF C(8)")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "orders.dbf")
	tbl, err := xbase.CreateTable(path, []xbase.FieldSpec{spec}, core.VisualFoxPro, core.CodepageWindowsANSI, xbase.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close(true, true) })
	return tbl
}

func refKey(r *xbase.Record) (interface{}, error) { return r.Get("REF") }

func TestListAppendIsSetLike(t *testing.T) {
	tbl := newOrdersTable(t)
	r1, err := tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)
	r2, err := tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)

	l := xbase.NewList(refKey)
	require.NoError(t, l.Append(r1))
	require.NoError(t, l.Append(r2))
	require.Equal(t, 1, l.Len())
}

func TestListUnionAndDifference(t *testing.T) {
	tbl := newOrdersTable(t)
	r1, err := tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)
	r2, err := tbl.Append(map[string]interface{}{"REF": "A0002"}, true)
	require.NoError(t, err)

	l1 := xbase.NewList(refKey)
	require.NoError(t, l1.Append(r1))
	l2 := xbase.NewList(refKey)
	require.NoError(t, l2.Append(r2))

	union, err := l1.Union(l2)
	require.NoError(t, err)
	require.Equal(t, 2, union.Len())

	both := xbase.NewList(refKey)
	require.NoError(t, both.Append(r1))
	require.NoError(t, both.Append(r2))
	diff, err := both.Difference(l2)
	require.NoError(t, err)
	require.Equal(t, 1, diff.Len())
	only, err := diff.At(0)
	require.NoError(t, err)
	ref, err := only.Get("REF")
	require.NoError(t, err)
	require.Equal(t, "A0001", ref)
}

func TestListTracksTablePack(t *testing.T) {
	tbl := newOrdersTable(t)
	r1, err := tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)
	_, err = tbl.Append(map[string]interface{}{"REF": "A0002"}, true)
	require.NoError(t, err)
	r3, err := tbl.Append(map[string]interface{}{"REF": "A0003"}, true)
	require.NoError(t, err)

	l := xbase.NewList(refKey)
	require.NoError(t, l.Append(r1))
	require.NoError(t, l.Append(r3))

	require.NoError(t, tbl.Delete(1))
	_, err = tbl.Pack()
	require.NoError(t, err)

	require.Equal(t, 2, l.Len())
	rec, err := l.At(1)
	require.NoError(t, err)
	ref, err := rec.Get("REF")
	require.NoError(t, err)
	require.Equal(t, "A0003", ref)
}

func TestNewListFromTableSeedsEveryRecord(t *testing.T) {
	tbl := newOrdersTable(t)
	_, err := tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)
	_, err = tbl.Append(map[string]interface{}{"REF": "A0002"}, true)
	require.NoError(t, err)
	_, err = tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)

	l, err := xbase.NewListFromTable(tbl, refKey)
	require.NoError(t, err)
	require.Equal(t, 2, l.Len(), "duplicate key must still dedupe when seeding from a table")
}

func TestListNavigationVapor(t *testing.T) {
	tbl := newOrdersTable(t)
	r1, err := tbl.Append(map[string]interface{}{"REF": "A0001"}, true)
	require.NoError(t, err)

	l := xbase.NewList(refKey)
	require.NoError(t, l.Append(r1))
	l.Top()
	prev, err := l.PrevRecord()
	require.NoError(t, err)
	require.True(t, prev.IsVapor())
}
