package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"callog/internal/adapters/confd"
	"callog/internal/adapters/notify"
	"callog/internal/modkit"
	"callog/internal/modkit/module"
	"callog/internal/modkit/repokit"
	"callog/internal/platform/config"
	"callog/internal/platform/logger"
	"callog/internal/platform/store"

	genmod "callog/internal/services/generator/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	confdCfg := root.Prefix("SERVICE_CONFD_")
	mqttCfg := root.Prefix("SERVICE_MQTT_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "callog-generator",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast if the database is not reachable
	repokit.MustGuard(context.Background(), st)

	dir := confd.NewClient(confd.Options{
		BaseURL: confdCfg.MustString("URL"),
		Token:   confdCfg.MustString("TOKEN"),
		Timeout: confdCfg.MayDuration("TIMEOUT", 10*time.Second),
	})

	pub, err := notify.NewMQTTPublisher(notify.MQTTOptions{
		Broker:   mqttCfg.MustString("BROKER"),
		ClientID: mqttCfg.MayString("CLIENT_ID", "callog-generator"),
		QoS:      byte(mqttCfg.MayInt("QOS", 0)),
	})
	if err != nil {
		l.Panic().Err(err).Msg("mqtt connect failed")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close publisher")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	mod := genmod.New(deps, dir, pub, genmod.Options{})
	module.Register(mod.Name(), mod.Ports())

	ports := module.MustPortsOf[genmod.Ports](mod)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ports.Worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal().Err(err).Msg("generator worker failed")
	}
}
