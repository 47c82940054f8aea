package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/ethcall/node"
	"github.com/NethermindEth/ethcall/outcall"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version string

const greeting = "ethcall %s: deterministic eth_call outcalls over JSON-RPC.\n\n"

const (
	configF             = "config"
	logLevelF           = "log-level"
	logFileF            = "log-file"
	colourF             = "colour"
	networkF            = "network"
	httpF               = "http"
	httpHostF           = "http-host"
	httpPortF           = "http-port"
	httpCORSF           = "http-cors"
	metricsF            = "metrics"
	metricsHostF        = "metrics-host"
	metricsPortF        = "metrics-port"
	maxResponseBytesF   = "max-response-bytes"
	cyclesF             = "cycles"
	replicasF           = "replicas"
	timeoutF            = "timeout"
	maxConcurrentCallsF = "max-concurrent-calls"
	maxQueuedCallsF     = "max-queued-calls"

	defaultConfig             = ""
	defaultLogFile            = ""
	defaultColour             = true
	defaultHTTP               = true
	defaultHTTPHost           = "localhost"
	defaultHTTPPort           = uint16(6070)
	defaultHTTPCORS           = false
	defaultMetrics            = false
	defaultMetricsHost        = "localhost"
	defaultMetricsPort        = uint16(9090)
	defaultMaxResponseBytes   = outcall.DefaultMaxResponseBytes
	defaultCycles             = outcall.DefaultCycles
	defaultReplicas           = uint(1)
	defaultTimeout            = 30 * time.Second
	defaultMaxConcurrentCalls = uint(64)
	defaultMaxQueuedCalls     = uint(1024)

	configFlagUsage   = "The yaml configuration file."
	logLevelFlagUsage = "Options: debug, info, warn, error."
	logFileUsage      = "Also write JSON logs to this file, rotated at 100MB."
	colourUsage       = "Use `--colour=false` command to disable colourized outputs (ANSI Escape Codes)."
	networkUsage      = "Default network for calls that do not name one. Options: mainnet, goerli, sepolia."
	httpUsage         = "Enables the HTTP call service."
	httpHostUsage     = "The interface on which the HTTP call service will listen for requests."
	httpPortUsage     = "The port on which the HTTP call service will listen for requests. " +
		"Warning: every accepted call costs an outcall."
	httpCORSUsage           = "Answer CORS preflight requests from any origin."
	metricsUsage            = "Enables the Prometheus metrics endpoint on the default port."
	metricsHostUsage        = "The interface on which the Prometheus endpoint will listen for requests."
	metricsPortUsage        = "The port on which the Prometheus endpoint will listen for requests."
	maxResponseBytesUsage   = "Upper bound on the size of a JSON-RPC response body."
	cyclesUsage             = "Cycles attached to each outcall."
	replicasUsage           = "Number of replicas that must agree on each transformed response."
	timeoutUsage            = "Timeout of a single outcall."
	maxConcurrentCallsUsage = "Maximum number of outcalls in flight."
	maxQueuedCallsUsage     = "Maximum number of calls waiting for a free slot before new ones are refused."
)

var (
	OutcallNode node.OutcallNode
	cfgFile     string
)

// TransportFn builds the transport the call subcommand sends its outcall through.
type TransportFn func(cfg *node.Config) outcall.Transport

func NewCmd(newNodeFn node.NewOutcallNodeFn, newTransport TransportFn) *cobra.Command {
	ethcallCmd := &cobra.Command{
		Use:     "ethcall [flags]",
		Short:   "Deterministic Ethereum eth_call over HTTP outcalls.",
		Version: Version,
		Args:    cobra.NoArgs,
	}

	defaultLogLevel := utils.NewLogLevel(utils.INFO)
	defaultNetwork := utils.Mainnet

	ethcallCmd.PersistentFlags().StringVar(&cfgFile, configF, defaultConfig, configFlagUsage)
	ethcallCmd.Flags().Var(defaultLogLevel, logLevelF, logLevelFlagUsage)
	ethcallCmd.Flags().String(logFileF, defaultLogFile, logFileUsage)
	ethcallCmd.Flags().Bool(colourF, defaultColour, colourUsage)
	ethcallCmd.Flags().Var(&defaultNetwork, networkF, networkUsage)
	ethcallCmd.Flags().Bool(httpF, defaultHTTP, httpUsage)
	ethcallCmd.Flags().String(httpHostF, defaultHTTPHost, httpHostUsage)
	ethcallCmd.Flags().Uint16(httpPortF, defaultHTTPPort, httpPortUsage)
	ethcallCmd.Flags().Bool(httpCORSF, defaultHTTPCORS, httpCORSUsage)
	ethcallCmd.Flags().Bool(metricsF, defaultMetrics, metricsUsage)
	ethcallCmd.Flags().String(metricsHostF, defaultMetricsHost, metricsHostUsage)
	ethcallCmd.Flags().Uint16(metricsPortF, defaultMetricsPort, metricsPortUsage)
	ethcallCmd.Flags().Uint64(maxResponseBytesF, defaultMaxResponseBytes, maxResponseBytesUsage)
	ethcallCmd.Flags().Uint64(cyclesF, defaultCycles, cyclesUsage)
	ethcallCmd.Flags().Uint(replicasF, defaultReplicas, replicasUsage)
	ethcallCmd.Flags().Duration(timeoutF, defaultTimeout, timeoutUsage)
	ethcallCmd.Flags().Uint(maxConcurrentCallsF, defaultMaxConcurrentCalls, maxConcurrentCallsUsage)
	ethcallCmd.Flags().Uint(maxQueuedCallsF, defaultMaxQueuedCalls, maxQueuedCallsUsage)

	ethcallCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}

		if _, err = fmt.Fprintf(cmd.OutOrStdout(), greeting, Version); err != nil {
			return err
		}

		config := new(node.Config)
		if err = decodeConfig(v, config); err != nil {
			return err
		}

		OutcallNode, err = newNodeFn(config, Version)
		if err != nil {
			return err
		}

		OutcallNode.Run(cmd.Context())
		return nil
	}

	ethcallCmd.AddCommand(newCallCmd(newTransport), newABICmd())
	return ethcallCmd
}

// newViper layers, from lowest to highest precedence: flag defaults, the config file,
// ETHCALL_* environment variables and flags set on the command line.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix("ETHCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeConfig(v *viper.Viper, out any) error {
	return v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
}
