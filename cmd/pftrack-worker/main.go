package main

import (
	"os"
	"time"

	"pftrack/internal/amqp"
	"pftrack/internal/cli"
	"pftrack/internal/log"
	"pftrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	st := cli.OpenStore(logger, cfg)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Warn("AMQP not configured, running periodic exports only")
	}

	w := worker.NewExportWorker(st, cfg.ExportDir)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if err := st.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	})

	logger.Info("Starting export worker",
		"backend", cfg.DataBackend,
		"export_dir", cfg.ExportDir,
		"interval", cfg.ExportInterval.String())

	if err := w.Run(ctx, amqpClient, cfg.ExportInterval); err != nil && ctx.Err() == nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
