package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/styles"
)

func newListCmd() *cobra.Command {
	var showDeleted bool
	var limit int
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "Print a table's records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := xbase.OpenTable(args[0], true, xbase.DefaultConfig())
			if err != nil {
				return err
			}
			defer t.Close(true, true)

			names := t.FieldNames()
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader(append([]string{"#", "del"}, names...))

			n := t.RecordCount()
			if limit > 0 && limit < n {
				n = limit
			}
			for i := 0; i < n; i++ {
				r, err := t.Read(i)
				if err != nil {
					return err
				}
				if r.IsDeleted() && !showDeleted {
					continue
				}
				row := []string{fmt.Sprintf("%d", i), deletedMark(r.IsDeleted())}
				for _, name := range names {
					v, err := r.Get(name)
					if err != nil {
						return err
					}
					row = append(row, fmt.Sprintf("%v", v))
				}
				table.Append(row)
			}
			table.Render()
			fmt.Println(styles.Dim(fmt.Sprintf("%d record(s)", t.RecordCount())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDeleted, "show-deleted", false, "include records marked deleted")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many records (0 = all)")
	return cmd
}

func deletedMark(deleted bool) string {
	if deleted {
		return "*"
	}
	return " "
}
