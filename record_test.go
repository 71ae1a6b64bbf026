package xbase_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase/internal/core"
)

func TestRecordScatterGather(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	r, err := tbl.Append(map[string]interface{}{"NAME": "first"}, true)
	require.NoError(t, err)

	values, err := r.Scatter()
	require.NoError(t, err)
	require.Equal(t, "first", values["NAME"])

	require.NoError(t, r.Gather(map[string]interface{}{"NAME": "second", "BOGUS": 1}, true))
	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "second", name)

	require.Error(t, r.Gather(map[string]interface{}{"BOGUS": 1}, false))
}

func TestRecordFluxCommit(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	r, err := tbl.Append(map[string]interface{}{"NAME": "before"}, true)
	require.NoError(t, err)

	require.NoError(t, r.StartFlux())
	require.NoError(t, r.Set("NAME", "during"))

	reread, err := tbl.Read(0)
	require.NoError(t, err)
	name, err := reread.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "before", name, "uncommitted flux edits must not be visible on disk")

	require.NoError(t, r.CommitFlux())
	reread, err = tbl.Read(0)
	require.NoError(t, err)
	name, err = reread.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "during", name)
}

func TestRecordFluxRollback(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	r, err := tbl.Append(map[string]interface{}{"NAME": "keep"}, true)
	require.NoError(t, err)

	require.NoError(t, r.StartFlux())
	require.NoError(t, r.Set("NAME", "discard"))
	require.NoError(t, r.RollbackFlux())

	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "keep", name)
}

func TestRecordResetKeepsNamedFields(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	r, err := tbl.Append(map[string]interface{}{"NAME": "keep me", "BALANCE": 5.0}, true)
	require.NoError(t, err)

	require.NoError(t, r.Reset([]string{"NAME"}))
	name, err := r.Get("NAME")
	require.NoError(t, err)
	require.Equal(t, "keep me", name)

	balance, err := r.Get("BALANCE")
	require.NoError(t, err)
	require.True(t, balance.(core.NumericValue).Empty)
}

func TestRecordMemoFieldEmptyIsBlank(t *testing.T) {
	tbl := newTestTable(t, customerSpecs(t))
	r, err := tbl.Append(map[string]interface{}{"NAME": "no notes"}, true)
	require.NoError(t, err)

	notes, err := r.Get("NOTES")
	require.NoError(t, err)
	require.Equal(t, "", notes)
}
