package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/branched-services/go-evmscript"
	"github.com/branched-services/go-evmscript/ens"
	"github.com/branched-services/go-evmscript/internal/config"
	"github.com/branched-services/go-evmscript/internal/logger"
	"github.com/branched-services/go-evmscript/metadata"
	"github.com/branched-services/go-evmscript/resolver"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appName = "evmscript"

// app carries state shared by the subcommands. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	configPath   string
	metricsOut   string
	strictAgents bool
	strictDecode bool

	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	codec    *evmscript.Codec
	store    metadata.Store
	closers  []func() error
}

// execute runs the command line with args and releases every resource it
// acquired, whatever the outcome. Errors are written to stderr unless the
// command already reported the outcome on stdout.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errUndecodable) && !errors.Is(err, errInvalidScript) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Encode, decode and validate governance EVM scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.metricsOut == "" || a.registry == nil {
				return nil
			}
			if err := prometheus.WriteToTextfile(a.metricsOut, a.registry); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./evmscript.yaml or $HOME/.evmscript/evmscript.yaml)")
	flags.String("rpc-url", "", "Ethereum JSON-RPC endpoint used for ENS lookups")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("metadata-dir", "", "directory of the proposal metadata store")
	flags.StringVar(&a.metricsOut, "metrics-out", "", "write resolver metrics to this file in Prometheus text format")
	flags.BoolVar(&a.strictAgents, "strict-agents", false, "refuse to decode scripts addressed to unknown agents")
	flags.BoolVar(&a.strictDecode, "strict-decode", false, "refuse to decode scripts with a foreign spec id, a wrong length or mismatched selectors")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newValidateCmd(a),
		newSelectorCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.log = log
	a.closers = append(a.closers, func() error {
		// Sync fails on terminals; nothing useful can be done about it.
		_ = log.Sync()
		return nil
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	cmd.SetContext(ctx)
	a.closers = append(a.closers, func() error {
		cancel()
		return nil
	})

	r, err := a.buildResolver(ctx)
	if err != nil {
		return err
	}

	a.codec = evmscript.New(r, cfg.AgentAddresses(),
		evmscript.WithLogger(log),
		evmscript.WithAgentCheck(a.strictAgents),
		evmscript.WithStrictDecode(a.strictDecode))

	log.Debug("configuration loaded",
		zap.String("config", a.configPath),
		zap.Bool("ens", cfg.RPCURL != ""),
		zap.Int("address_book", len(cfg.Book)),
		zap.Int("agents", len(cfg.AgentAddresses())),
		zap.Bool("strict_decode", a.strictDecode))
	return nil
}

// buildResolver assembles the name service stack: the static address book
// first, then ENS with retries when an RPC endpoint is configured, all of it
// instrumented and cached.
func (a *app) buildResolver(ctx context.Context) (evmscript.Resolver, error) {
	cfg := a.cfg
	chain := []evmscript.Resolver{resolver.NewStatic(cfg.AddressBook())}

	if cfg.RPCURL != "" {
		client, err := ethclient.DialContext(ctx, cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
		}
		a.closers = append(a.closers, func() error {
			client.Close()
			return nil
		})

		ensResolver := ens.NewResolver(client,
			ens.WithRegistry(cfg.Registry()),
			ens.WithLogger(a.log))
		chain = append(chain, resolver.NewRetrying(ensResolver,
			resolver.WithAttempts(cfg.Retry.Attempts),
			resolver.WithDelay(cfg.Retry.Delay),
			resolver.WithRetryLogger(a.log)))
	}

	a.registry = prometheus.NewRegistry()
	metrics, err := resolver.NewMetrics(a.registry)
	if err != nil {
		return nil, err
	}
	var r evmscript.Resolver = resolver.NewInstrumented(resolver.NewChain(chain...), metrics)

	if cfg.Cache.TTL > 0 {
		cached, err := resolver.NewCached(ctx, r, cfg.Cache.TTL,
			resolver.WithMaxEntries(cfg.Cache.MaxEntries),
			resolver.WithCacheLogger(a.log))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cached.Close)
		r = cached
	}
	return r, nil
}

// metadataStore opens the file store on first use.
func (a *app) metadataStore() (metadata.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := metadata.NewFileStore(a.cfg.Metadata.Dir)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil && a.log != nil {
		a.log.Warn("cleanup failed", zap.Error(err))
	}
}

// metadataFlags resolves proposal metadata from either --signature or
// --proposal-id.
type metadataFlags struct {
	signature  string
	proposalID string
}

func (m *metadataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.signature, "signature", "", "target function signature, e.g. transfer(address,uint256)")
	cmd.Flags().StringVar(&m.proposalID, "proposal-id", "", "load the signature from the metadata store")
	cmd.MarkFlagsOneRequired("signature", "proposal-id")
	cmd.MarkFlagsMutuallyExclusive("signature", "proposal-id")
}

func (m *metadataFlags) load(ctx context.Context, a *app) (evmscript.ProposalMetadata, error) {
	if m.signature != "" {
		return evmscript.ProposalMetadata{TargetSignature: m.signature}, nil
	}
	store, err := a.metadataStore()
	if err != nil {
		return evmscript.ProposalMetadata{}, err
	}
	return store.Get(ctx, m.proposalID)
}

// parseHex accepts hex with or without the 0x prefix.
func parseHex(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid hex script: %w", err)
	}
	return b, nil
}
