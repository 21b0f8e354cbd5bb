package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/wire"
)

const EnvPrefix = "SETBACKD_"

var ErrUnsupportedConfigExt = errors.New("unsupported config extension")

type Config struct {
	Log         LogConfig         `koanf:"log"`
	Controllers ControllersConfig `koanf:"controllers"`
	Site        SiteConfig        `koanf:"site"`
	Policy      PolicyConfig      `koanf:"policy"`
}

type LogConfig struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"` // "json" | "console"
	Service string `koanf:"service"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt"`
	Modbus ModbusConfig `koanf:"modbus"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BrokerURL       string        `koanf:"broker_url"`
	ClientID        string        `koanf:"client_id"`
	BaseTopic       string        `koanf:"base_topic"`
	QoS             byte          `koanf:"qos"`
	RetainSnapshot  bool          `koanf:"retain_snapshot"`
	PublishInterval time.Duration `koanf:"publish_interval"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

// SiteConfig describes the building served by the daemon and its starting
// conditions. Enum values use their wire names.
type SiteConfig struct {
	ID              string        `koanf:"id"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	DesiredMinF     float64       `koanf:"desired_min_f"`
	DesiredMaxF     float64       `koanf:"desired_max_f"`

	Profile  ProfileConfig  `koanf:"profile"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Utility  UtilityConfig  `koanf:"utility"`
}

type ProfileConfig struct {
	HomeType          string  `koanf:"home_type"`
	FloorAreaSqFt     float64 `koanf:"floor_area_sqft"`
	CeilingHeightFt   float64 `koanf:"ceiling_height_ft"`
	ConstructionType  string  `koanf:"construction_type"`
	ConstructionEra   string  `koanf:"construction_era"`
	InsulationQuality string  `koanf:"insulation_quality"`
	WindowType        string  `koanf:"window_type"`
	HVACType          string  `koanf:"hvac_type"`
	HVACAge           string  `koanf:"hvac_age"`
}

type ScheduleConfig struct {
	OutdoorTempF         float64 `koanf:"outdoor_temp_f"`
	DesiredTempF         float64 `koanf:"desired_temp_f"`
	AbsenceDurationHours float64 `koanf:"absence_duration_hours"`
	AbsenceStart         string  `koanf:"absence_start"` // "8:00 AM", "08:00"
	DaysPerWeek          int     `koanf:"days_per_week"`
}

// UtilityConfig values of 0 mean "not supplied".
type UtilityConfig struct {
	RateUSDPerKWh  float64 `koanf:"rate_usd_per_kwh"`
	MonthlyBillUSD float64 `koanf:"monthly_bill_usd"`
}

type PolicyConfig struct {
	TauMinHours              float64 `koanf:"tau_min_hours"`
	TauMaxHours              float64 `koanf:"tau_max_hours"`
	MinSetbackDepthF         float64 `koanf:"min_setback_depth_f"`
	MaxSetbackDepthF         float64 `koanf:"max_setback_depth_f"`
	SetbackStepF             float64 `koanf:"setback_step_f"`
	FootprintAspectRatio     float64 `koanf:"footprint_aspect_ratio"`
	DefaultWindowAreaPercent float64 `koanf:"default_window_area_percent"`
	DefaultDoorAreaSqFt      float64 `koanf:"default_door_area_sqft"`
	DefaultRateUSDPerKWh     float64 `koanf:"default_rate_usd_per_kwh"`
	BaselineMonthlyKWh       float64 `koanf:"baseline_monthly_kwh"`
	BreakEvenHorizonHours    float64 `koanf:"break_even_horizon_hours"`
	BreakEvenToleranceHours  float64 `koanf:"break_even_tolerance_hours"`
}

// Default returns the configuration used when nothing else is supplied:
// the reference single-family home on a warm workday, HTTP on :8080.
func Default() Config {
	p := setback.DefaultPolicy()
	return Config{
		Log: LogConfig{Level: "info", Format: "json", Service: "setbackd"},
		Controllers: ControllersConfig{
			HTTP:   HTTPConfig{Enabled: true, Addr: ":8080"},
			MQTT:   MQTTConfig{PublishInterval: time.Second},
			Modbus: ModbusConfig{Addr: "127.0.0.1:1502", UnitID: 1},
		},
		Site: SiteConfig{
			ID:              "default",
			RefreshInterval: 15 * time.Minute,
			DesiredMinF:     65,
			DesiredMaxF:     78,
			Profile: ProfileConfig{
				HomeType:          "single-family",
				FloorAreaSqFt:     2000,
				CeilingHeightFt:   8,
				ConstructionType:  "wood_frame",
				ConstructionEra:   "1980_2000",
				InsulationQuality: "average",
				WindowType:        "double_pane",
				HVACType:          "central_ac",
				HVACAge:           "5_10",
			},
			Schedule: ScheduleConfig{
				OutdoorTempF:         85,
				DesiredTempF:         72,
				AbsenceDurationHours: 8,
				AbsenceStart:         "8:00 AM",
				DaysPerWeek:          5,
			},
		},
		Policy: PolicyConfig{
			TauMinHours:              p.TauMinHours,
			TauMaxHours:              p.TauMaxHours,
			MinSetbackDepthF:         p.MinSetbackDepthF,
			MaxSetbackDepthF:         p.MaxSetbackDepthF,
			SetbackStepF:             p.SetbackStepF,
			FootprintAspectRatio:     p.FootprintAspectRatio,
			DefaultWindowAreaPercent: p.DefaultWindowAreaPercent,
			DefaultDoorAreaSqFt:      p.DefaultDoorAreaSqFt,
			DefaultRateUSDPerKWh:     p.DefaultRateUSDPerKWh,
			BaselineMonthlyKWh:       p.BaselineMonthlyKWh,
			BreakEvenHorizonHours:    p.BreakEvenHorizonHours,
			BreakEvenToleranceHours:  p.BreakEvenToleranceHours,
		},
	}
}

// LoadConfig layers defaults, the config file (if present) and SETBACKD_*
// environment variables, in that order.
func LoadConfig(path string) (Config, error) {
	return load(path, os.Environ)
}

func load(path string, environ func() []string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		EnvironFunc:   environ,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(key, EnvPrefix)), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if !cfg.Controllers.HTTP.Enabled && !cfg.Controllers.MQTT.Enabled && !cfg.Controllers.Modbus.Enabled {
		cfg.Controllers.HTTP.Enabled = true
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedConfigExt, ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// envKeyTransform maps an environment key (prefix already stripped) to a
// koanf path. Section names are fixed, so only the first separators are
// turned into dots: CONTROLLERS_MQTT_PUBLISH_INTERVAL becomes
// controllers.mqtt.publish_interval.
func envKeyTransform(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	parts := strings.Split(key, "_")
	if len(parts) < 2 {
		return key
	}

	switch parts[0] {
	case "controllers":
		if len(parts) < 3 {
			return key
		}
		return "controllers." + parts[1] + "." + strings.Join(parts[2:], "_")
	case "site":
		switch parts[1] {
		case "profile", "schedule", "utility":
			if len(parts) >= 3 {
				return "site." + parts[1] + "." + strings.Join(parts[2:], "_")
			}
		}
		return "site." + strings.Join(parts[1:], "_")
	case "policy", "log":
		return parts[0] + "." + strings.Join(parts[1:], "_")
	}
	return key
}

// Policy converts the policy section to engine tunables and validates it.
func (c Config) Policy() (setback.Policy, error) {
	p := setback.Policy{
		TauMinHours:              c.Policy.TauMinHours,
		TauMaxHours:              c.Policy.TauMaxHours,
		MinSetbackDepthF:         c.Policy.MinSetbackDepthF,
		MaxSetbackDepthF:         c.Policy.MaxSetbackDepthF,
		SetbackStepF:             c.Policy.SetbackStepF,
		FootprintAspectRatio:     c.Policy.FootprintAspectRatio,
		DefaultWindowAreaPercent: c.Policy.DefaultWindowAreaPercent,
		DefaultDoorAreaSqFt:      c.Policy.DefaultDoorAreaSqFt,
		DefaultRateUSDPerKWh:     c.Policy.DefaultRateUSDPerKWh,
		BaselineMonthlyKWh:       c.Policy.BaselineMonthlyKWh,
		BreakEvenHorizonHours:    c.Policy.BreakEvenHorizonHours,
		BreakEvenToleranceHours:  c.Policy.BreakEvenToleranceHours,
	}
	if err := p.Validate(); err != nil {
		return setback.Policy{}, err
	}
	return p, nil
}

// SiteRequest converts the site section to an engine request. Profile and
// schedule values are validated later by the engine.
func (c Config) SiteRequest() (setback.Request, error) {
	pc := c.Site.Profile
	var (
		p   setback.BuildingProfile
		err error
	)
	if p.HomeType, err = setback.ParseHomeType(pc.HomeType); err != nil {
		return setback.Request{}, err
	}
	if p.ConstructionType, err = setback.ParseConstructionType(pc.ConstructionType); err != nil {
		return setback.Request{}, err
	}
	if p.ConstructionEra, err = setback.ParseConstructionEra(pc.ConstructionEra); err != nil {
		return setback.Request{}, err
	}
	if p.InsulationQuality, err = setback.ParseInsulationQuality(pc.InsulationQuality); err != nil {
		return setback.Request{}, err
	}
	if p.WindowType, err = setback.ParseWindowType(pc.WindowType); err != nil {
		return setback.Request{}, err
	}
	if p.HVACType, err = setback.ParseHVACType(pc.HVACType); err != nil {
		return setback.Request{}, err
	}
	if p.HVACAgeBand, err = setback.ParseHVACAgeBand(pc.HVACAge); err != nil {
		return setback.Request{}, err
	}
	p.FloorAreaSqFt = pc.FloorAreaSqFt
	p.CeilingHeightFt = pc.CeilingHeightFt

	sc := c.Site.Schedule
	start, err := wire.ParseClock(sc.AbsenceStart)
	if err != nil {
		return setback.Request{}, err
	}

	var u setback.Utility
	if v := c.Site.Utility.RateUSDPerKWh; v != 0 {
		u.RateUSDPerKWh = &v
	}
	if v := c.Site.Utility.MonthlyBillUSD; v != 0 {
		u.MonthlyBillUSD = &v
	}

	return setback.Request{
		Profile: p,
		Schedule: setback.Schedule{
			OutdoorTempF:         sc.OutdoorTempF,
			DesiredTempF:         sc.DesiredTempF,
			AbsenceDurationHours: sc.AbsenceDurationHours,
			AbsenceStart:         start,
			DaysPerWeek:          sc.DaysPerWeek,
		},
		Utility: u,
	}, nil
}
