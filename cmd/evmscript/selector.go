package main

import (
	"fmt"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func newSelectorCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selector <signature>",
		Short: "Print the 4-byte selector of a function signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := evmscript.ParseSignature(args[0])
			if err != nil {
				return err
			}
			selector := sig.Selector()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", hexutil.Encode(selector[:]), sig.Canonical())
			return nil
		},
	}
}
