// Command activate runs the account activation workflow once against a
// configured backend and wallet provider, then prints the resulting state.
// It is the operational counterpart of the in-app activation flow, useful
// for smoke-testing an environment end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/activation"
	"github.com/cardlink-labs/cardlink-middleware/pkg/backend"
	"github.com/cardlink-labs/cardlink-middleware/pkg/config"
	"github.com/cardlink-labs/cardlink-middleware/pkg/identity"
	"github.com/cardlink-labs/cardlink-middleware/pkg/session"
	"github.com/cardlink-labs/cardlink-middleware/pkg/wallet"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	token := flag.String("token", "", "Identity token to use instead of the configured token endpoint")
	flag.Parse()

	cfg, err := config.LoadActivator(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workflow, err := buildWorkflow(cfg, *token, logger)
	if err != nil {
		logger.Fatal("Failed to build activation workflow", zap.Error(err))
	}

	state := session.NewState()
	ok := workflow.CompleteAuthentication(ctx)
	snap := workflow.Snapshot()

	fmt.Printf("stage:     %s\n", snap.Stage)
	fmt.Printf("status:    %s\n", snap.StatusMessage)
	fmt.Printf("delegated: %v\n", snap.DelegatedChains)
	if record := workflow.Record(); record != nil {
		if err := state.UpdateProfile(session.Profile{Email: record.Email}); err != nil {
			logger.Warn("Record email failed profile validation", zap.Error(err))
		}
		state.SetCardActivated(ok)
		fmt.Printf("user_id:   %s\n", record.UserID)
		fmt.Printf("new_user:  %v\n", record.IsNewUser)
		fmt.Printf("card:      activated=%v\n", state.Card().Activated)
	}
	if snap.Err != nil {
		fmt.Printf("error:     %v\n", snap.Err)
	}

	if !ok {
		os.Exit(1)
	}
}

func buildWorkflow(cfg *config.ActivatorConfig, token string, logger *zap.Logger) (*activation.Workflow, error) {
	var tokens identity.Source
	if token != "" {
		tokens = identity.StaticSource(token)
	} else {
		tokens = identity.NewEndpointSource(&cfg.TokenSource, nil)
	}

	backendClient, err := backend.NewClient(cfg.Backend.BaseURL, logger, backend.Options{
		RequestTimeout: cfg.Backend.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	provider, err := wallet.NewHTTPProvider(
		cfg.WalletProvider.BaseURL,
		cfg.WalletProvider.APIKey,
		logger,
		wallet.Options{RequestTimeout: cfg.WalletProvider.RequestTimeout},
	)
	if err != nil {
		return nil, fmt.Errorf("create wallet provider: %w", err)
	}

	return activation.NewWorkflow(tokens, backendClient, provider, logger), nil
}
