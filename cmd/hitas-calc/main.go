package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/City-of-Helsinki/hitas-calc/internal/config"
	"github.com/City-of-Helsinki/hitas-calc/internal/maxprice"
	"github.com/City-of-Helsinki/hitas-calc/internal/regulation"
	"github.com/City-of-Helsinki/hitas-calc/internal/scheduler"
	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/output"
	"github.com/City-of-Helsinki/hitas-calc/pkg/validation"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	mode := flag.String("mode", "maxprice", "run mode: maxprice, regulation, batch")
	companyName := flag.String("company", "", "housing company display name (maxprice mode)")
	apartmentAddress := flag.String("apartment", "", "apartment address (maxprice mode)")
	shareOfLoans := flag.String("share-of-loans", "0", "apartment share of housing company loans (maxprice mode)")
	dateFlag := flag.String("date", "", "calculation date override (2006-01-02 or 2006-01)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	data, err := conf.Dataset.Build()
	if err != nil {
		logger.Fatal("failed to build dataset",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate the dataset and display any warnings
	for _, company := range data.Companies {
		for _, warning := range validation.ValidateHousingCompany(company) {
			logger.Warn("Dataset warning: "+warning,
				zap.String("op", "main"),
			)
		}
	}

	calculationMonth, err := conf.CalculationMonth()
	if err != nil {
		logger.Fatal("failed to parse calculation date",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if *dateFlag != "" {
		calculationMonth, err = parseDateFlag(*dateFlag)
		if err != nil {
			logger.Fatal("failed to parse date flag",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	switch *mode {
	case "maxprice":
		runMaxPrice(logger, data, *companyName, *apartmentAddress, *shareOfLoans, calculationMonth, outputFormat)
	case "regulation":
		runRegulation(logger, data, calculationMonth, outputFormat)
	case "batch":
		runBatch(logger, conf, data, calculationMonth, outputFormat)
	default:
		logger.Fatal(fmt.Sprintf("invalid mode %s, expected maxprice, regulation, or batch", *mode),
			zap.String("op", "main"),
		)
	}
}

// parseDateFlag accepts either a full date or a month.
func parseDateFlag(value string) (time.Time, error) {
	if parsed, err := time.Parse(constants.DateLayout, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(constants.DateTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s or %s", value, constants.DateLayout, constants.DateTimeLayout)
	}
	return parsed, nil
}

// runMaxPrice computes and prints one apartment's maximum-price calculation.
func runMaxPrice(logger *zap.Logger, data *config.Data, companyName, apartmentAddress, shareOfLoans string, calculationMonth time.Time, outputFormat string) {
	company, ok := data.CompanyByName(companyName)
	if !ok {
		logger.Fatal(fmt.Sprintf("unknown housing company %q", companyName),
			zap.String("op", "main.runMaxPrice"),
		)
	}

	var apartment hitas.Apartment
	found := false
	for _, candidate := range company.Apartments {
		if candidate.Address == apartmentAddress {
			apartment = candidate
			found = true
			break
		}
	}
	if !found {
		logger.Fatal(fmt.Sprintf("unknown apartment %q in %q", apartmentAddress, companyName),
			zap.String("op", "main.runMaxPrice"),
		)
	}

	loans, err := decimal.NewFromString(shareOfLoans)
	if err != nil {
		logger.Fatal(fmt.Sprintf("invalid share of loans %q", shareOfLoans),
			zap.String("op", "main.runMaxPrice"),
			zap.Error(err),
		)
	}

	calculator := maxprice.NewCalculator(logger, data.Indexes)
	calculation, err := calculator.Calculate(apartment, company, loans, calculationMonth)
	if err != nil {
		logger.Fatal("failed to compute maximum price",
			zap.String("op", "main.runMaxPrice"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(calculation)
	case constants.OutputFormatCSV:
		output.CsvFormat(calculation)
	}
}

// runRegulation executes one thirty-year regulation batch and prints the
// results.
func runRegulation(logger *zap.Logger, data *config.Data, calculationMonth time.Time, outputFormat string) {
	engine := regulation.NewEngine(logger, data.Indexes)
	results, err := engine.Run(regulation.Input{
		CalculationMonth:       calculationMonth,
		Companies:              data.Companies,
		ExternalSales:          data.ExternalSales,
		ReplacementPostalCodes: data.ReplacementPostalCodes,
		Owners:                 data.Owners,
	})
	if err != nil {
		logger.Fatal("regulation run failed",
			zap.String("op", "main.runRegulation"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormatRegulation(results)
	case constants.OutputFormatCSV:
		output.CsvFormatRegulation(results)
	}
}

// regulationJob wraps a regulation run for the scheduler.
type regulationJob struct {
	run func() error
}

func (j regulationJob) Name() string { return "thirty-year-regulation" }
func (j regulationJob) Run() error   { return j.run() }

// runBatch keeps the process alive and runs regulation on the configured cron
// schedule.
func runBatch(logger *zap.Logger, conf *config.Configuration, data *config.Data, calculationMonth time.Time, outputFormat string) {
	schedule := conf.Scheduler.RegulationSchedule
	if schedule == "" {
		logger.Fatal("batch mode requires scheduler.regulationSchedule",
			zap.String("op", "main.runBatch"),
		)
	}

	s := scheduler.New(logger)
	job := regulationJob{run: func() error {
		engine := regulation.NewEngine(logger, data.Indexes)
		results, err := engine.Run(regulation.Input{
			CalculationMonth:       calculationMonth,
			Companies:              data.Companies,
			ExternalSales:          data.ExternalSales,
			ReplacementPostalCodes: data.ReplacementPostalCodes,
			Owners:                 data.Owners,
		})
		if err != nil {
			return err
		}
		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettyFormatRegulation(results)
		case constants.OutputFormatCSV:
			output.CsvFormatRegulation(results)
		}
		return nil
	}}

	if err := s.AddJob(schedule, job); err != nil {
		logger.Fatal("failed to register regulation job",
			zap.String("op", "main.runBatch"),
			zap.Error(err),
		)
	}

	s.Start()
	defer s.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
