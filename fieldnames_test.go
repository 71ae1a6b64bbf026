package xbase_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase"
)

func TestValidateFieldNameRules(t *testing.T) {
	require.NoError(t, xbase.ValidateFieldName("NAME"))
	require.Error(t, xbase.ValidateFieldName("_NAME"))
	require.Error(t, xbase.ValidateFieldName("1NAME"))
	require.Error(t, xbase.ValidateFieldName("TOOLONGNAME"))
	require.Error(t, xbase.ValidateFieldName("BAD-NAME"))
	require.Error(t, xbase.ValidateFieldName(""))
}

func TestFieldNameListCaseInsensitiveDuplicate(t *testing.T) {
	l, err := xbase.NewFieldNameList([]string{"Name", "Qty"})
	require.NoError(t, err)
	require.True(t, l.Contains("name"))
	require.Equal(t, 0, l.IndexOf("NAME"))

	require.Error(t, l.Add("qty"))
}

func TestFieldNameListSortedIsCaseInsensitive(t *testing.T) {
	l, err := xbase.NewFieldNameList([]string{"zeta", "Alpha", "mango"})
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha", "mango", "zeta"}, l.Sorted())
}

func TestFieldNameListEqual(t *testing.T) {
	a, err := xbase.NewFieldNameList([]string{"Name", "Qty"})
	require.NoError(t, err)
	b, err := xbase.NewFieldNameList([]string{"name", "QTY"})
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}
