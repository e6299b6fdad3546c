package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/relgen/compiler"
	"github.com/syssam/relgen/compiler/load"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema files or dirs...]",
	Short: "Check relationship directives without writing artifacts",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	patterns, opts, _, err := setup(args)
	if err != nil {
		return err
	}
	doc, err := load.Schema(patterns...)
	if err != nil {
		return err
	}
	out, err := compiler.Compile(doc, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d resolvers, %d tables, %d join types\n", len(out.Resolvers), len(out.Tables), len(out.JoinTypes))
	return nil
}
