package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/attestia/notary/internal/config"
	"github.com/attestia/notary/internal/infra/database"
	"github.com/attestia/notary/internal/infra/gateway"
	"github.com/attestia/notary/internal/infra/repository"
	"github.com/attestia/notary/internal/present/rest"
	"github.com/attestia/notary/internal/service"
	"github.com/attestia/notary/internal/usecase"
	"github.com/attestia/notary/signature"
)

func main() {
	configPath := flag.String("config", "/etc/notary/config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error(
			"failed to load config",
			slog.String("error", err.Error()),
			slog.String("module", "main"),
		)
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			panic(err)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	chain, err := gateway.NewChainGateway(conf.Notary.RPCURL, conf.Notary.ContractAddress)
	if err != nil {
		panic("failed to connect chain gateway")
	}

	codec := signature.New([]byte(conf.Notary.SigningKey))
	signal := service.NewSignalService(rdb)

	documentRepo := repository.NewDocumentRepository(db, mc)
	documentUsecase := usecase.NewDocumentUsecase(codec, conf.Notary.Issuer)
	notarizeUsecase := usecase.NewNotarizeUsecase(documentRepo, chain, signal, codec)

	handler := rest.NewHandler(conf.Notary, documentUsecase, notarizeUsecase, signal)

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("16M"))
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(conf.Notary.FQDN))
	}

	handler.RegisterRoutes(e)

	slog.Info(
		"notaryd starting",
		slog.String("listen", conf.Server.Listen),
		slog.String("module", "main"),
	)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	cleanup := func() {
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error(
				"failed to shutdown trace provider",
				slog.String("error", err.Error()),
				slog.String("module", "main"),
			)
		}
	}
	return cleanup, nil
}
