package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/node"
	"github.com/NethermindEth/ethcall/outcall"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	addressF = "address"
	abiF     = "abi"
	methodF  = "method"
	outputF  = "output"

	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

// callConfig holds the flags of the call subcommand after viper has merged them.
type callConfig struct {
	Network          utils.Network `mapstructure:"network"`
	Address          string        `mapstructure:"address"`
	ABI              string        `mapstructure:"abi"`
	Method           string        `mapstructure:"method"`
	Output           string        `mapstructure:"output"`
	MaxResponseBytes uint64        `mapstructure:"max-response-bytes"`
	Cycles           uint64        `mapstructure:"cycles"`
	Replicas         uint          `mapstructure:"replicas"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

func newCallCmd(newTransport TransportFn) *cobra.Command {
	callCmd := &cobra.Command{
		Use:   "call --address ADDRESS --abi ABI --method METHOD [flags] [-- args...]",
		Short: "Perform one eth_call outcall and print the decoded outputs.",
		Long: `Perform one eth_call outcall and print the decoded outputs.

--abi takes the name of an embedded ABI (see "ethcall abi") or a path to an ABI JSON file.
--method takes a function name, or its full signature when the name is overloaded.
Arguments are given in declaration order: integers in decimal or 0x hex, bytes as 0x hex,
arrays and tuples as JSON arrays.`,
	}

	defaultNetwork := utils.Mainnet
	callCmd.Flags().Var(&defaultNetwork, networkF, networkUsage)
	callCmd.Flags().String(addressF, "", "Contract address.")
	callCmd.Flags().String(abiF, "", "Embedded ABI name or path to an ABI JSON file.")
	callCmd.Flags().String(methodF, "", "Function name or canonical signature.")
	callCmd.Flags().StringP(outputF, "o", outputJSON, "Output format. Options: json, yaml, table.")
	callCmd.Flags().Uint64(maxResponseBytesF, defaultMaxResponseBytes, maxResponseBytesUsage)
	callCmd.Flags().Uint64(cyclesF, defaultCycles, cyclesUsage)
	callCmd.Flags().Uint(replicasF, defaultReplicas, replicasUsage)
	callCmd.Flags().Duration(timeoutF, defaultTimeout, timeoutUsage)
	for _, f := range []string{addressF, abiF, methodF} {
		if err := callCmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}

	callCmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}
		var cfg callConfig
		if err = decodeConfig(v, &cfg); err != nil {
			return err
		}
		switch cfg.Output {
		case outputJSON, outputYAML, outputTable:
		default:
			return fmt.Errorf("unknown output format %q (known: json, yaml, table)", cfg.Output)
		}

		iface, err := contract.Open(cfg.ABI)
		if err != nil {
			return err
		}
		fn, err := iface.Resolve(cfg.Method)
		if err != nil {
			return err
		}
		values, err := contract.ParseArgs(fn, args)
		if err != nil {
			return err
		}

		transport := newTransport(&node.Config{
			Network:          cfg.Network,
			Replicas:         cfg.Replicas,
			Timeout:          cfg.Timeout,
			MaxResponseBytes: cfg.MaxResponseBytes,
			Cycles:           cfg.Cycles,
		})
		client := outcall.NewClient(transport).
			WithMaxResponseBytes(cfg.MaxResponseBytes).
			WithCycles(cfg.Cycles)

		results, err := client.CallFunction(cmd.Context(), cfg.Network.String(), cfg.Address, fn, values...)
		if err != nil {
			return fmt.Errorf("%s error: %w", outcall.Classify(err), err)
		}
		return printOutputs(cmd.OutOrStdout(), cfg.Output, fn, results)
	}
	return callCmd
}

func printOutputs(w io.Writer, format string, fn *contract.Function, results []any) error {
	res := node.CallResponse{
		Function: fn.Signature(),
		Outputs:  contract.FormatOutputs(fn, results),
	}

	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"function": res.Function, "outputs": res.Outputs}); err != nil {
			return err
		}
		return enc.Close()
	case outputTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Name", "Type", "Value"})
		outputs := fn.Outputs()
		for i, value := range res.Outputs {
			var name, typ string
			if i < len(outputs) {
				name, typ = outputs[i].Name, outputs[i].Type.String()
			}
			cell, err := tableCell(value)
			if err != nil {
				return err
			}
			table.Append([]string{strconv.Itoa(i), name, typ, cell})
		}
		table.Render()
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}

func tableCell(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		b, err := json.Marshal(v)
		return string(b), err
	}
}
