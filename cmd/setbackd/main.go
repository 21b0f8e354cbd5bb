package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/setback-advisor/cmd/app"
	httpctrl "github.com/Agrid-Dev/setback-advisor/internal/controllers/http"
	modbusctrl "github.com/Agrid-Dev/setback-advisor/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/setback-advisor/internal/controllers/mqtt"
	"github.com/Agrid-Dev/setback-advisor/internal/logging"
	"github.com/Agrid-Dev/setback-advisor/internal/metrics"
	"github.com/Agrid-Dev/setback-advisor/internal/service"
	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "setbackd.yaml", "path to config file (.yaml/.yml/.json)")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("setbackd exited", zap.Error(err))
	}
}

func run(cfg app.Config, logger *zap.Logger) error {
	pol, err := cfg.Policy()
	if err != nil {
		return err
	}
	req, err := cfg.SiteRequest()
	if err != nil {
		return err
	}
	engine, err := setback.NewEngine(pol)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("setbackd", reg)

	calc := service.NewCalculator(engine, logger, m)
	st, err := site.New(cfg.Site.ID, req, calc,
		site.WithComfortBounds(cfg.Site.DesiredMinF, cfg.Site.DesiredMaxF),
		site.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	snap := st.Get()
	logger.Info("site ready",
		zap.String("site_id", snap.SiteID),
		zap.String("action", snap.Result.Action.String()),
		zap.Float64("setback_temp_f", snap.Result.SetbackTempF),
		zap.Float64("break_even_hours", snap.Result.BreakEvenTimeHours),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Site.RefreshInterval > 0 {
		g.Go(func() error { return st.Run(ctx, cfg.Site.RefreshInterval) })
	}

	if c := cfg.Controllers.HTTP; c.Enabled {
		srv := httpctrl.New(st, calc, c.Addr, httpctrl.WithMetrics(m), httpctrl.WithLogger(logger))
		logger.Info("http controller listening", zap.String("addr", c.Addr))
		g.Go(func() error { return srv.Run(ctx) })
	}

	if c := cfg.Controllers.MQTT; c.Enabled {
		mc, err := mqttctrl.New(st, calc, mqttctrl.Config{
			SiteID:          cfg.Site.ID,
			BrokerURL:       c.BrokerURL,
			ClientID:        c.ClientID,
			BaseTopic:       c.BaseTopic,
			QoS:             c.QoS,
			RetainSnapshot:  c.RetainSnapshot,
			PublishInterval: c.PublishInterval,
			Username:        c.Username,
			Password:        c.Password,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("mqtt controller connecting", zap.String("broker", c.BrokerURL))
		g.Go(func() error { return mc.Run(ctx) })
	}

	if c := cfg.Controllers.Modbus; c.Enabled {
		mb, err := modbusctrl.New(st, modbusctrl.Config{SiteID: cfg.Site.ID, Addr: c.Addr, UnitID: c.UnitID})
		if err != nil {
			return err
		}
		logger.Info("modbus controller listening", zap.String("addr", c.Addr))
		g.Go(func() error { return mb.Run(ctx) })
	}

	return g.Wait()
}
