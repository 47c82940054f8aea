package main

import (
	"fmt"
	"strings"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newABICmd() *cobra.Command {
	abiCmd := &cobra.Command{
		Use:   "abi [--abi NAME|PATH]",
		Short: "List embedded ABIs, or the functions of one ABI with their selectors.",
		Args:  cobra.NoArgs,
	}
	abiCmd.Flags().String(abiF, "", "Embedded ABI name or path to an ABI JSON file.")

	abiCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		name, err := cmd.Flags().GetString(abiF)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if name == "" {
			for _, n := range contract.EmbeddedNames() {
				if _, err = fmt.Fprintln(out, n); err != nil {
					return err
				}
			}
			return nil
		}

		iface, err := contract.Open(name)
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Selector", "Signature", "Returns"})
		for _, fn := range iface.Functions() {
			returns := make([]string, 0, len(fn.Outputs()))
			for _, o := range fn.Outputs() {
				returns = append(returns, o.Type.String())
			}
			table.Append([]string{hexutil.Encode(fn.Selector()), fn.Signature(), strings.Join(returns, ", ")})
		}
		table.Render()
		return nil
	}
	return abiCmd
}
