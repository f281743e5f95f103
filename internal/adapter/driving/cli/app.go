package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/adapter/driving/api"
	"github.com/hydernasirr/aws-finops-2/internal/application/usecase"
	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/domain/repository"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
	"github.com/hydernasirr/aws-finops-2/pkg/version"
)

// UsageRepositoryFactory builds the gateway once the effective
// configuration is known.
type UsageRepositoryFactory func(ctx context.Context, cfg types.Config, logger *zap.Logger) (repository.UsageRepository, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd      *cobra.Command
	console      types.ConsoleInterface
	configRepo   repository.ConfigRepository
	exportRepo   repository.ExportRepository
	newUsageRepo UsageRepositoryFactory
	logger       *zap.Logger
	version      string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(
	versionStr string,
	console types.ConsoleInterface,
	configRepo repository.ConfigRepository,
	exportRepo repository.ExportRepository,
	newUsageRepo UsageRepositoryFactory,
	logger *zap.Logger,
) *CLIApp {
	app := &CLIApp{
		console:      console,
		configRepo:   configRepo,
		exportRepo:   exportRepo,
		newUsageRepo: newUsageRepo,
		logger:       logger,
		version:      versionStr,
	}

	rootCmd := &cobra.Command{
		Use:     "finops-agent",
		Short:   "AWS cost analysis and optimization agent",
		Version: version.FormatVersion(),
		RunE:    app.runReport,
	}
	rootCmd.SetVersionTemplate(`{{printf "AWS FinOps Agent version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region for resource inventory queries")
	rootCmd.PersistentFlags().IntP("days", "t", 0, "Cost window in days (default: 30)")
	rootCmd.PersistentFlags().Int("forecast-days", 0, "Forecast horizon in days (default: 30)")
	rootCmd.PersistentFlags().Int("staleness-days", 0, "Minimum age in days before a stopped instance is flagged")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Base name for exported report files (no export when empty)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", []string{"csv"}, "Report types to export: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save exported reports")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  app.runServe,
	}
	serveCmd.Flags().String("addr", "", "HTTP listen address (default: :8000)")
	rootCmd.AddCommand(serveCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI application under ctx, so an interrupt
// cancels in-flight upstream calls.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// resolveConfig merges defaults, an optional config file, and explicit
// flags, in that order of precedence.
func (app *CLIApp) resolveConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()

	if configFile, _ := cmd.Flags().GetString("config-file"); configFile != "" {
		loaded, err := app.configRepo.LoadConfigFile(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("region") {
		cfg.Region, _ = cmd.Flags().GetString("region")
	}
	if cmd.Flags().Changed("days") {
		cfg.DaysBack, _ = cmd.Flags().GetInt("days")
	}
	if cmd.Flags().Changed("forecast-days") {
		cfg.ForecastDays, _ = cmd.Flags().GetInt("forecast-days")
	}
	if cmd.Flags().Changed("staleness-days") {
		cfg.StalenessDays, _ = cmd.Flags().GetInt("staleness-days")
	}
	if cmd.Flags().Changed("report-name") {
		cfg.ReportName, _ = cmd.Flags().GetString("report-name")
	}
	if cmd.Flags().Changed("report-type") {
		cfg.ReportType, _ = cmd.Flags().GetStringSlice("report-type")
	}
	if cmd.Flags().Changed("dir") {
		dir, _ := cmd.Flags().GetString("dir")
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return cfg, err
		}
		cfg.Dir = absDir
	}
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr, _ = cmd.Flags().GetString("addr")
	}

	return cfg, nil
}

func (app *CLIApp) buildUseCase(ctx context.Context, cfg types.Config) (*usecase.ReportUseCase, error) {
	usageRepo, err := app.newUsageRepo(ctx, cfg, app.logger)
	if err != nil {
		return nil, err
	}
	return usecase.NewReportUseCase(usageRepo, cfg, app.logger), nil
}

// runReport é o modo padrão: monta o relatório uma vez e imprime no console.
func (app *CLIApp) runReport(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)
	go version.CheckLatestVersion(app.version)

	cfg, err := app.resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reports, err := app.buildUseCase(ctx, cfg)
	if err != nil {
		return err
	}

	status := app.console.Status("Fetching AWS cost and inventory data...")
	summary, err := reports.GetSummary(ctx, cfg.DaysBack)
	status.Stop()
	if err != nil {
		return err
	}

	app.displaySummary(summary, cfg)

	if cfg.ReportName != "" {
		app.exportSummary(summary, cfg)
	}
	return nil
}

// runServe inicia o servidor HTTP da API.
func (app *CLIApp) runServe(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	cfg, err := app.resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reports, err := app.buildUseCase(ctx, cfg)
	if err != nil {
		return err
	}

	server := api.NewServer(reports, cfg.DaysBack, app.logger)
	app.console.LogInfo("Serving cost API on %s", cfg.ListenAddr)
	return server.Start(ctx, cfg.ListenAddr)
}

func (app *CLIApp) displaySummary(summary *entity.Summary, cfg types.Config) {
	if summary.AccountID != "" {
		app.console.LogInfo("Account: %s", summary.AccountID)
	}

	app.console.Println()
	pterm.DefaultSection.Println("Current Month")
	monthRows := pterm.TableData{{"Metric", "Value"}}
	monthRows = append(monthRows, []string{"Total cost", fmt.Sprintf("$%.2f", summary.CurrentMonth.TotalCost)})
	if summary.CurrentMonth.AvgDailyCost != nil {
		monthRows = append(monthRows, []string{"Avg daily cost", fmt.Sprintf("$%.2f", *summary.CurrentMonth.AvgDailyCost)})
	}
	if summary.Forecast != nil {
		monthRows = append(monthRows, []string{
			fmt.Sprintf("Forecast (%d days)", summary.Forecast.Days),
			fmt.Sprintf("$%.2f", summary.Forecast.TotalForecast),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(monthRows).Render()

	if len(summary.CurrentMonth.TopServices) > 0 {
		pterm.DefaultSection.Println("Top Services")
		rows := pterm.TableData{{"Service", "Cost"}}
		for _, svc := range summary.CurrentMonth.TopServices {
			rows = append(rows, []string{svc.ServiceName, fmt.Sprintf("$%.2f", svc.Cost)})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	pterm.DefaultSection.Println("Recommendations")
	if len(summary.Recommendations) == 0 {
		app.console.LogSuccess("No idle resources found. All clear.")
	} else {
		rows := pterm.TableData{{"Severity", "Title", "Savings/month", "Action"}}
		for _, rec := range summary.Recommendations {
			rows = append(rows, []string{
				string(rec.Severity),
				rec.Title,
				fmt.Sprintf("$%.2f", rec.PotentialSavings),
				rec.Action,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		app.console.LogInfo("Potential monthly savings: $%.2f", summary.AggregatePotentialMonthlySavings)
	}

	for _, section := range summary.UnavailableSections {
		app.console.LogWarning("Section unavailable: %s", section)
	}
}

func (app *CLIApp) exportSummary(summary *entity.Summary, cfg types.Config) {
	for _, reportType := range cfg.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = app.exportRepo.ExportSummaryToCSV(summary, cfg.ReportName, cfg.Dir)
		case "json":
			path, err = app.exportRepo.ExportSummaryToJSON(summary, cfg.ReportName, cfg.Dir)
		case "pdf":
			path, err = app.exportRepo.ExportSummaryToPDF(summary, cfg.ReportName, cfg.Dir)
		default:
			app.console.LogWarning("Unknown report type: %s", reportType)
			continue
		}
		if err != nil {
			app.console.LogError("Failed to export %s report: %s", reportType, err)
			continue
		}
		app.console.LogSuccess("Successfully exported %s report: %s", reportType, path)
	}
}
