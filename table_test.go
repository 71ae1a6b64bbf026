package xbase_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/core"
)

func newTestTable(t *testing.T, specs []xbase.FieldSpec) *xbase.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.dbf")
	tbl, err := xbase.CreateTable(path, specs, core.VisualFoxPro, core.CodepageWindowsANSI, xbase.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close(true, true) })
	return tbl
}

func customerSpecs(t *testing.T) []xbase.FieldSpec {
	t.Helper()
	name, err := xbase.ParseFieldSpec("NAME C(20)")
	require.NoError(t, err)
	balance, err := xbase.ParseFieldSpec("BALANCE N(10,2)")
	require.NoError(t, err)
	active, err := xbase.ParseFieldSpec("ACTIVE L")
	require.NoError(t, err)
	notes, err := xbase.ParseFieldSpec("NOTES M")
	require.NoError(t, err)
	return []xbase.FieldSpec{name, balance, active, notes}
}

func TestCreateTableAndAppend(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))

	r, err := tbl.Append(map[string]interface{}{
		"NAME":    "Acme Corp",
		"BALANCE": 1250.50,
		"ACTIVE":  true,
		"NOTES":   "a long-term customer",
	}, false)
	require.NoError(t, err)
	require.Equal(t, 0, r.RecordNumber())
	require.Equal(t, 1, tbl.RecordCount())

	got, err := tbl.Read(0)
	require.NoError(t, err)
	name, err := got.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", name)

	notes, err := got.Get("NOTES")
	require.NoError(t, err)
	require.Equal(t, "a long-term customer", notes)
}

func TestAppendRejectsUnknownFieldWithoutDropUnknown(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	_, err := tbl.Append(map[string]interface{}{"BOGUS": 1}, false)
	require.Error(t, err)

	r, err := tbl.Append(map[string]interface{}{"BOGUS": 1, "NAME": "x"}, true)
	require.NoError(t, err)
	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "x", name)
}

func TestDeleteUndeleteAndPack(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	for _, n := range []string{"one", "two", "three"} {
		_, err := tbl.Append(map[string]interface{}{"NAME": n}, true)
		require.NoError(t, err)
	}

	require.NoError(t, tbl.Delete(1))
	deleted, err := tbl.IsDeleted(1)
	require.NoError(t, err)
	require.True(t, deleted)

	require.NoError(t, tbl.Undelete(1))
	deleted, err = tbl.IsDeleted(1)
	require.NoError(t, err)
	require.False(t, deleted)

	require.NoError(t, tbl.Delete(1))
	remap, err := tbl.Pack()
	require.NoError(t, err)
	require.Equal(t, -1, remap[1])
	require.Equal(t, 0, remap[0])
	require.Equal(t, 1, remap[2])
	require.Equal(t, 2, tbl.RecordCount())

	r, err := tbl.Read(1)
	require.NoError(t, err)
	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "three", name)
}

func TestSchemaMutationAddRenameResizeDelete(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	_, err := tbl.Append(map[string]interface{}{"NAME": "first"}, true)
	require.NoError(t, err)

	zip, err := xbase.ParseFieldSpec("ZIP C(5)")
	require.NoError(t, err)
	require.NoError(t, tbl.AddFields([]xbase.FieldSpec{zip}))
	_, err = tbl.FieldInfo("ZIP")
	require.NoError(t, err)

	r, err := tbl.Read(0)
	require.NoError(t, err)
	require.NoError(t, r.Set("ZIP", "12345"))

	require.NoError(t, tbl.RenameField("ZIP", "POSTAL"))
	r, err = tbl.Read(0)
	require.NoError(t, err)
	v, err := r.Get("POSTAL")
	require.NoError(t, err)
	require.Equal(t, "12345", v)

	require.NoError(t, tbl.ResizeField("POSTAL", 10))
	fi, err := tbl.FieldInfo("POSTAL")
	require.NoError(t, err)
	require.Equal(t, 10, fi.Length)

	require.NoError(t, tbl.DeleteFields([]string{"POSTAL"}))
	_, err = tbl.FieldInfo("POSTAL")
	require.Error(t, err)
}

func TestNavigationVaporRecordAtEnds(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	_, err := tbl.Append(map[string]interface{}{"NAME": "only"}, true)
	require.NoError(t, err)

	tbl.Top()
	prev, err := tbl.PrevRecord()
	require.NoError(t, err)
	require.True(t, prev.IsVapor())

	tbl.Bottom()
	next, err := tbl.NextRecord()
	require.NoError(t, err)
	require.True(t, next.IsVapor())
	require.False(t, next.Bool())
}

func TestCloseKeepTableAndMemosAllowsReadOnlyContinuation(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	_, err := tbl.Append(map[string]interface{}{"NAME": "kept", "NOTES": "memo payload"}, true)
	require.NoError(t, err)

	require.NoError(t, tbl.Close(true, true))

	r, err := tbl.Read(0)
	require.NoError(t, err, "Read must keep working after Close(true, true)")
	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "kept", name)
	notes, err := r.Get("NOTES")
	require.NoError(t, err)
	require.Equal(t, "memo payload", notes)

	_, err = tbl.Append(nil, true)
	require.Error(t, err, "writes must still fail after close even with keepTable")
}

func TestCloseWithoutKeepTableRejectsFurtherReads(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	_, err := tbl.Append(map[string]interface{}{"NAME": "gone"}, true)
	require.NoError(t, err)

	require.NoError(t, tbl.Close(false, false))

	_, err = tbl.Read(0)
	require.Error(t, err, "Read must fail once the table is closed without materialization")
}

func TestReopenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.dbf")
	tbl, err := xbase.CreateTable(path, customerSpecs(t), core.VisualFoxPro, core.CodepageWindowsANSI, xbase.DefaultConfig())
	require.NoError(t, err)
	_, err = tbl.Append(map[string]interface{}{"NAME": "saved"}, true)
	require.NoError(t, err)
	require.NoError(t, tbl.Close(true, true))

	reopened, err := xbase.OpenTable(path, true, xbase.DefaultConfig())
	require.NoError(t, err)
	defer reopened.Close(true, true)
	require.True(t, reopened.IsReadOnly())
	require.Equal(t, 1, reopened.RecordCount())

	r, err := reopened.Read(0)
	require.NoError(t, err)
	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "saved", name)
}
