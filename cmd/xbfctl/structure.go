package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/styles"
)

func newStructureCmd() *cobra.Command {
	var readOnly bool
	cmd := &cobra.Command{
		Use:   "structure <table>",
		Short: "Print a table's header and field descriptors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := xbase.OpenTable(args[0], readOnly, xbase.DefaultConfig())
			if err != nil {
				return err
			}
			defer t.Close(true, true)

			fmt.Println(styles.Header(args[0]))
			fmt.Printf("%s %s   %s %s   %s %d\n",
				styles.Bold("Dialect:"), t.Dialect(),
				styles.Bold("Codepage:"), t.Codepage(),
				styles.Bold("Records:"), t.RecordCount())

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"#", "Name", "Type", "Length", "Decimals"})
			for i, fd := range t.Structure() {
				table.Append([]string{
					fmt.Sprintf("%d", i),
					fd.Name,
					string(rune(fd.Type)),
					fmt.Sprintf("%d", fd.Length),
					fmt.Sprintf("%d", fd.Decimals),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&readOnly, "read-only", true, "open the table read-only")
	return cmd
}
