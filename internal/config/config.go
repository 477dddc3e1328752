// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
)

// DateTimeLayout is the month format expected in config files and is also the
// output date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for hitas-calc.
type Configuration struct {
	// CalculationDate is the month the calculations run against, in 2006-01
	// format. Empty defaults to the current month.
	CalculationDate string

	Dataset   Dataset
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Scheduler SchedulerConfig `yaml:"scheduler,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// SchedulerConfig holds the batch scheduler options.
type SchedulerConfig struct {
	// RegulationSchedule is a cron expression for the monthly regulation
	// run, e.g. "0 0 6 1 * *".
	RegulationSchedule string `yaml:"regulationSchedule,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// CalculationMonth parses the configured calculation date, defaulting to the
// current month when unset.
func (conf *Configuration) CalculationMonth() (time.Time, error) {
	if conf.CalculationDate == "" {
		return datetime.MonthOf(time.Now().UTC()), nil
	}
	month, err := time.Parse(DateTimeLayout, conf.CalculationDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calculationDate %q: %w", conf.CalculationDate, err)
	}
	return month, nil
}
