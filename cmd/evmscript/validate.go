package main

import (
	"errors"
	"fmt"

	"github.com/branched-services/go-evmscript"
	"github.com/spf13/cobra"
)

var errInvalidScript = errors.New("script does not match its decoded form")

func newValidateCmd(a *app) *cobra.Command {
	var (
		typ  string
		meta metadataFlags
	)

	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Check that a stored script re-encodes from its decoded form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := evmscript.ParseProposalType(typ)
			if err != nil {
				return err
			}
			script, err := parseHex(args[0])
			if err != nil {
				return err
			}
			m, err := meta.load(cmd.Context(), a)
			if err != nil {
				return err
			}

			valid := a.codec.IsValid(cmd.Context(), evmscript.StoredProposal{
				Type:     pt,
				Script:   script,
				Metadata: m,
			})
			if !valid {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return errInvalidScript
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", evmscript.Primary.String(), "proposal type (primary or secondary)")
	meta.register(cmd)
	return cmd
}
