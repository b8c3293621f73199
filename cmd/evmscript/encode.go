package main

import (
	"fmt"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		typ        string
		form       evmscript.ProposalFormData
		proposalID string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a proposal form into an EVM script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pt, err := evmscript.ParseProposalType(typ)
			if err != nil {
				return err
			}
			form.Type = pt

			script, err := a.codec.Encode(cmd.Context(), form)
			if err != nil {
				return err
			}

			if proposalID != "" {
				store, err := a.metadataStore()
				if err != nil {
					return err
				}
				meta := evmscript.ProposalMetadata{
					TargetSignature: form.TargetSignature,
					Title:           form.Title,
					Description:     form.Description,
				}
				if err := store.Put(cmd.Context(), proposalID, meta); err != nil {
					return err
				}
				a.log.Info("stored proposal metadata", zap.String("proposal_id", proposalID))
			}

			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(script))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&typ, "type", evmscript.Primary.String(), "proposal type (primary or secondary)")
	f.StringVar(&form.TargetAddress, "target", "", "target contract address or name")
	f.StringVar(&form.TargetSignature, "signature", "", "target function signature")
	f.StringVar(&form.TargetValue, "value", "0", "wei forwarded with the call, base 10")
	f.StringVar(&form.Parameters, "params", "[]", "JSON array of call parameters")
	f.StringVar(&form.Title, "title", "", "proposal title")
	f.StringVar(&form.Description, "description", "", "proposal description")
	f.StringVar(&proposalID, "proposal-id", "", "also store the proposal metadata under this id")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("signature")

	return cmd
}
