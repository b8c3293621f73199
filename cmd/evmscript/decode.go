package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/branched-services/go-evmscript"
	"github.com/spf13/cobra"
)

var errUndecodable = errors.New("unable to decode")

func newDecodeCmd(a *app) *cobra.Command {
	var (
		meta   metadataFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "decode <script>",
		Short: "Decode an EVM script into its target, value and parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := parseHex(args[0])
			if err != nil {
				return err
			}
			m, err := meta.load(cmd.Context(), a)
			if err != nil {
				return err
			}

			decoded := a.codec.Decode(cmd.Context(), script, m)
			out := cmd.OutOrStdout()
			if decoded == nil {
				fmt.Fprintln(out, errUndecodable)
				return errUndecodable
			}

			switch output {
			case "json":
				return writeJSON(out, decoded)
			case "text":
				writeDecoded(out, decoded)
				return nil
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}

	meta.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text or json)")
	return cmd
}

func writeDecoded(w io.Writer, d *evmscript.DecodedEvmScript) {
	fmt.Fprintf(w, "target:     %s\n", d.TargetAddress)
	fmt.Fprintf(w, "value:      %s\n", d.Value)
	fmt.Fprintln(w, "parameters:")
	for i, p := range d.Parameters {
		fmt.Fprintf(w, "  [%d] %s\n", i, p)
	}
}

func writeJSON(w io.Writer, d *evmscript.DecodedEvmScript) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		TargetAddress string   `json:"targetAddress"`
		Value         string   `json:"value"`
		Parameters    []string `json:"parameters"`
	}{d.TargetAddress, d.Value.String(), d.Parameters})
}
