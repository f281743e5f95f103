package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hydernasirr/aws-finops-2/internal/adapter/driven/aws"
	"github.com/hydernasirr/aws-finops-2/internal/adapter/driven/config"
	"github.com/hydernasirr/aws-finops-2/internal/adapter/driven/export"
	"github.com/hydernasirr/aws-finops-2/internal/adapter/driving/cli"
	"github.com/hydernasirr/aws-finops-2/internal/shared/logging"
	"github.com/hydernasirr/aws-finops-2/pkg/console"
	"github.com/hydernasirr/aws-finops-2/pkg/version"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defer logger.Sync()

	app := cli.NewCLIApp(
		version.Version,
		console.NewConsole(),
		config.NewConfigRepository(),
		export.NewExportRepository(),
		aws.NewUsageRepository,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
