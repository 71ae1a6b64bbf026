package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/styles"
)

func newPackCmd() *cobra.Command {
	var backup bool
	cmd := &cobra.Command{
		Use:   "pack <table>",
		Short: "Remove records marked deleted, renumbering the rest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := xbase.OpenTable(args[0], false, xbase.DefaultConfig())
			if err != nil {
				return err
			}
			defer t.Close(true, true)

			if backup {
				if err := t.CreateBackup(true); err != nil {
					return err
				}
			}
			remap, err := t.Pack()
			if err != nil {
				return err
			}
			dropped := 0
			for _, newID := range remap {
				if newID == -1 {
					dropped++
				}
			}
			fmt.Println(styles.Success(fmt.Sprintf("packed %s: dropped %d record(s), %d remaining", args[0], dropped, t.RecordCount())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&backup, "backup", true, "write a backup copy before packing")
	return cmd
}
