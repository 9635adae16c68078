package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/alternatefutures/akash-agent/certmanager"
	"github.com/alternatefutures/akash-agent/certstore"
	"github.com/alternatefutures/akash-agent/chain"
	"github.com/alternatefutures/akash-agent/cmd/flags"
	"github.com/alternatefutures/akash-agent/common"
	"github.com/alternatefutures/akash-agent/httpserver"
	"github.com/alternatefutures/akash-agent/tools"
	"github.com/alternatefutures/akash-agent/wallet"
)

func main() {
	app := &cli.App{
		Name:    "agent",
		Usage:   "Operator agent for chain-leased compute deployments",
		Version: common.Version,
		Flags:   flags.CommonFlags,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the tool dispatch API over HTTP",
				Flags: []cli.Flag{
					flags.ListenAddrFlag,
					flags.PprofFlag,
					flags.DrainSecondsFlag,
				},
				Action: runServe,
			},
			{
				Name:      "run",
				Usage:     "Run a single tool and print its result as JSON",
				ArgsUsage: "<tool-name> [params-json]",
				Action:    runTool,
			},
			{
				Name:   "tools",
				Usage:  "List available tool names",
				Action: runListTools,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildProvider(cCtx *cli.Context, logger *slog.Logger) (*tools.Provider, *common.Config, error) {
	cfg, err := common.LoadConfig(cCtx.String(flags.ConfigFlag.Name))
	if err != nil {
		return nil, nil, err
	}

	var signer tools.Signer
	if cfg.Mnemonic != "" {
		w, err := wallet.FromMnemonic(cfg.Mnemonic)
		if err != nil {
			return nil, nil, fmt.Errorf("could not derive account from mnemonic: %w", err)
		}
		signer = w
		logger.Info("Account derived", "address", w.Address())
	} else {
		logger.Warn("No mnemonic configured, account-bound tools will be unavailable", "env", cfg.MnemonicEnv)
	}

	store := certstore.New(cfg.IdentityDir, logger)
	certs := certmanager.New(store, logger)
	query := chain.NewQueryClient(cfg.ChainRESTEndpoint, logger)
	tx := chain.NewTxClient(cfg.SignerEndpoint, logger)

	return tools.NewProvider(signer, query, tx, store, certs, cfg.ProviderSafety, logger), cfg, nil
}

func runServe(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	provider, cfg, err := buildProvider(cCtx, logger)
	if err != nil {
		logger.Error("Failed to initialize agent", "err", err)
		return err
	}

	listenAddr := cfg.ListenAddr
	if addr := cCtx.String(flags.ListenAddrFlag.Name); addr != "" {
		listenAddr = addr
	}

	handler := httpserver.NewHandler(provider.Handlers(), logger)
	srv, err := httpserver.New(flags.ConfigureServer(cCtx, logger, listenAddr), handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	srv.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	srv.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}

func runTool(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	name := cCtx.Args().First()
	if name == "" {
		return fmt.Errorf("usage: agent run <tool-name> [params-json]")
	}

	params := json.RawMessage(cCtx.Args().Get(1))
	if string(params) == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("could not read parameters from stdin: %w", err)
		}
		params = data
	}

	provider, _, err := buildProvider(cCtx, logger)
	if err != nil {
		return err
	}

	handler, ok := provider.Handlers()[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	result, err := handler(cCtx.Context, params)
	if err != nil {
		// Tool failures are structured output, not process failures.
		result = map[string]string{"error": err.Error()}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runListTools(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	provider, _, err := buildProvider(cCtx, logger)
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for name := range provider.Handlers() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
