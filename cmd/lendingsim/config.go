package main

import (
	"errors"
	"flag"
	"time"
)

const (
	defaultRate          = 50
	defaultDuration      = 30 * time.Second
	defaultItems         = 200
	defaultCopiesPerItem = 3
	defaultBorrowers     = 500
	defaultWorkers       = 16
	defaultLoanPeriod    = 14 * 24 * time.Hour
	defaultClockStep     = 12 * time.Hour
)

var (
	// ErrInvalidRate is returned when the request rate is not positive.
	ErrInvalidRate = errors.New("rate must be positive")

	// ErrInvalidCatalogSize is returned when items, copies or borrowers are not positive.
	ErrInvalidCatalogSize = errors.New("items, copies and borrowers must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("workers must be positive")
)

// Config holds all simulation parameters.
type Config struct {
	EnvFile       string
	Rate          int
	Duration      time.Duration
	Items         int
	CopiesPerItem int
	Borrowers     int
	Workers       int
	LoanPeriod    time.Duration
	ClockStep     time.Duration
}

// parseFlags parses args (without the program name) into a validated Config.
func parseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("lendingsim", flag.ContinueOnError)
	fs.StringVar(&cfg.EnvFile, "env", ".env", "optional env file with the storage settings")
	fs.IntVar(&cfg.Rate, "rate", defaultRate, "requests per second")
	fs.DurationVar(&cfg.Duration, "duration", defaultDuration, "how long to run, 0 runs until interrupted")
	fs.IntVar(&cfg.Items, "items", defaultItems, "number of catalog items to stock")
	fs.IntVar(&cfg.CopiesPerItem, "copies", defaultCopiesPerItem, "copies per catalog item")
	fs.IntVar(&cfg.Borrowers, "borrowers", defaultBorrowers, "number of distinct borrowers")
	fs.IntVar(&cfg.Workers, "workers", defaultWorkers, "size of the worker pool")
	fs.DurationVar(&cfg.LoanPeriod, "loan-period", defaultLoanPeriod, "due date offset of every checkout")
	fs.DurationVar(&cfg.ClockStep, "clock-step", defaultClockStep, "how far simulated time moves per clock tick")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Rate <= 0 {
		return ErrInvalidRate
	}

	if c.Items <= 0 || c.CopiesPerItem <= 0 || c.Borrowers <= 0 {
		return ErrInvalidCatalogSize
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	return nil
}
