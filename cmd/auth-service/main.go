// Command auth-service runs the OpenLink auth HTTP service: it exchanges
// OIDC authorization codes (or a pre-shared server secret) for scoped NATS
// user JWTs, signed by a single NKey account key-pair shared across every
// network this deployment serves.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nkeys"
	"github.com/pluce/openlink/internal/authsvc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 5 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("auth service exited")
		os.Exit(1)
	}
}

func run() error {
	serverSecret := os.Getenv("SERVER_SECRET")
	if serverSecret == "" {
		log.Fatal().Msg("SERVER_SECRET is required")
	}

	// A production deployment loads this seed from a vault rather than
	// generating it fresh on every restart, since every issued JWT becomes
	// unverifiable the moment the account key changes.
	accountKP, err := loadOrGenerateAccountKeyPair()
	if err != nil {
		return err
	}
	pub, _ := accountKP.PublicKey()
	log.Info().Str("account_public_key", pub).Msg("auth service account key ready")

	config := authsvc.FromEnv()
	for network := range config.Networks {
		log.Info().Str("network", string(network)).Msg("oidc provider configured")
	}

	networks := config.NewNetworkRegistry()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	if config.NetworksFilePath != "" {
		watcher, err := authsvc.NewNetworkRegistryWatcher(config.NetworksFilePath, networks)
		if err != nil {
			return err
		}
		group.Go(func() error { return watcher.Start(groupCtx) })
	}

	state := &authsvc.State{AccountKP: accountKP, Networks: networks, ServerSecret: serverSecret}
	mux := authsvc.NewMux(state)

	addr := ":" + strconv.Itoa(config.ListenPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	group.Go(func() error {
		log.Info().Str("addr", addr).Msg("auth service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && groupCtx.Err() == nil {
		return err
	}
	return nil
}

// loadOrGenerateAccountKeyPair reads an NKey seed from ACCOUNT_SEED if set,
// otherwise generates a fresh account key-pair for this process's lifetime.
func loadOrGenerateAccountKeyPair() (nkeys.KeyPair, error) {
	if seed := os.Getenv("ACCOUNT_SEED"); seed != "" {
		return nkeys.FromSeed([]byte(seed))
	}
	return nkeys.CreateAccount()
}
