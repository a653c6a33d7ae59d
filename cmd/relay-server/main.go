// Command relay-server runs one OpenLink relay for a single network: it
// consumes the network's outbox, maintains station presence and CPDLC
// session state in JetStream KV, and forwards/fans out envelopes to
// participant inboxes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/pluce/openlink/internal/kv"
	"github.com/pluce/openlink/internal/registry"
	"github.com/pluce/openlink/internal/relay"
	"github.com/pluce/openlink/internal/session"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/sdk"
	"github.com/pluce/openlink/subjects"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultLeaseTTLSeconds     = 90
	defaultSweepIntervalSecond = 30
)

func main() {
	clean := flag.Bool("clean", false, "purge existing session and registry state on startup")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(*clean); err != nil {
		log.Error().Err(err).Msg("relay server exited")
		os.Exit(1)
	}
}

func run(clean bool) error {
	network := model.NetworkId(requireEnv("NETWORK"))
	brokerURL := requireEnv("NATS_URL")
	authURL := requireEnv("AUTH_URL")
	serverSecret := requireEnv("SERVER_SECRET")

	leaseTTL := envDuration("PRESENCE_LEASE_TTL_SECONDS", defaultLeaseTTLSeconds)
	sweepInterval := envDuration("PRESENCE_SWEEP_INTERVAL_SECONDS", defaultSweepIntervalSecond)
	autoEndService := os.Getenv("AUTO_END_SERVICE_ON_STATION_OFFLINE") == "true"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("network", string(network)).Msg("connecting to broker")
	client, err := sdk.ConnectAsServer(ctx, brokerURL, authURL, serverSecret, network)
	if err != nil {
		return err
	}
	defer client.Close()

	js, err := jetstream.New(client.NatsConn())
	if err != nil {
		return err
	}

	sessionsBucket, err := openOrCreateBucket(ctx, js, subjects.KVCpdlcSessions(network))
	if err != nil {
		return err
	}
	registryBucket, err := openOrCreateBucket(ctx, js, subjects.KVStationRegistry(network))
	if err != nil {
		return err
	}

	reg, err := registry.New(ctx, kv.NewJetStream(registryBucket), leaseTTL, clean)
	if err != nil {
		return err
	}
	sessionStore, err := session.NewStore(ctx, kv.NewJetStream(sessionsBucket), model.DefaultCatalog(), clean)
	if err != nil {
		return err
	}

	transport := relay.NewNatsTransport(client.NatsConn(), network)
	server := relay.NewServer(network, transport, reg, sessionStore, sweepInterval, autoEndService)

	log.Info().Str("network", string(network)).Dur("lease_ttl", leaseTTL).Dur("sweep_interval", sweepInterval).
		Bool("auto_end_service", autoEndService).Msg("relay server starting")

	return server.Run(ctx)
}

func openOrCreateBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kvStore, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kvStore, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
}

func requireEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		log.Fatal().Str("env", name).Msg("required environment variable is not set")
	}
	return v
}

func envDuration(name string, defaultSeconds int) time.Duration {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return time.Duration(parsed) * time.Second
		}
		log.Warn().Str("env", name).Str("value", v).Msg("invalid integer, using default")
	}
	return time.Duration(defaultSeconds) * time.Second
}
