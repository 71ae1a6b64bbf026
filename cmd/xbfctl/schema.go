package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkfoss/xbase"
	"github.com/mkfoss/xbase/internal/styles"
)

func newAddFieldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-field <table> <spec>",
		Short: `Add a field, e.g. add-field customers.dbf "notes M"`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := xbase.ParseFieldSpec(args[1])
			if err != nil {
				return err
			}
			t, err := xbase.OpenTable(args[0], false, xbase.DefaultConfig())
			if err != nil {
				return err
			}
			defer t.Close(true, true)

			if err := t.AddFields([]xbase.FieldSpec{spec}); err != nil {
				return err
			}
			fmt.Println(styles.Success(fmt.Sprintf("added field %s to %s", spec.Name, args[0])))
			return nil
		},
	}
}

func newDeleteFieldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-field <table> <name>",
		Short: "Delete a field, keeping a backup of the original file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := xbase.OpenTable(args[0], false, xbase.DefaultConfig())
			if err != nil {
				return err
			}
			defer t.Close(true, true)

			if err := t.DeleteFields([]string{args[1]}); err != nil {
				return err
			}
			fmt.Println(styles.Success(fmt.Sprintf("deleted field %s from %s", args[1], args[0])))
			return nil
		},
	}
}
