package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Agrid-Dev/setback-advisor/cmd/app"
	"github.com/Agrid-Dev/setback-advisor/internal/setback"
)

// SweepAbsence evaluates the configured site for every absence length in
// [from, to] and writes one CSV row per step.
func SweepAbsence(cfg app.Config, from, to, step float64, filename string) error {
	pol, err := cfg.Policy()
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	req, err := cfg.SiteRequest()
	if err != nil {
		return fmt.Errorf("site: %w", err)
	}
	engine, err := setback.NewEngine(pol)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"hours", "action", "setback_temp", "maintain_kwh", "setback_kwh", "savings_usd"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for h := from; h <= to+1e-9; h += step {
		req.Schedule.AbsenceDurationHours = h
		res, err := engine.Calculate(req)
		if err != nil {
			return fmt.Errorf("absence %.2f h: %w", h, err)
		}
		record := []string{
			strconv.FormatFloat(h, 'f', 2, 64),
			res.Action.String(),
			strconv.FormatFloat(res.SetbackTempF, 'f', 1, 64),
			strconv.FormatFloat(res.Comparison.Maintain.KWhPerDay, 'f', 3, 64),
			strconv.FormatFloat(res.Comparison.Setback.KWhPerDay, 'f', 3, 64),
			strconv.FormatFloat(res.SavingsPerDayUSD, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

func main() {
	var (
		configPath string
		from, to   float64
		step       float64
	)
	flag.StringVar(&configPath, "config", "", "path to config file (.yaml/.yml/.json)")
	flag.Float64Var(&from, "from", 0.5, "shortest absence in hours")
	flag.Float64Var(&to, "to", 24, "longest absence in hours")
	flag.Float64Var(&step, "step", 0.5, "absence step in hours")
	flag.Parse()

	if step <= 0 || to < from {
		fmt.Fprintln(os.Stderr, "invalid sweep range")
		os.Exit(2)
	}

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("breakeven_%s.csv", time.Now().Format("20060102_150405"))
	if err := SweepAbsence(cfg, from, to, step, filename); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sweep completed. Results written to %s\n", filename)
}
