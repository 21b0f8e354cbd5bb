package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/setback-advisor/internal/ports"
	"github.com/Agrid-Dev/setback-advisor/internal/service"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
	"github.com/Agrid-Dev/setback-advisor/internal/wire"
)

type Config struct {
	// Identity
	SiteID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainSnapshot  bool
	PublishInterval time.Duration

	Username string
	Password string
}

type Controller struct {
	svc  ports.SiteService
	calc ports.Calculator
	cfg  Config
	log  *zap.Logger

	client mqtt.Client
}

func New(svc ports.SiteService, calc ports.Calculator, cfg Config, log *zap.Logger) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.SiteID == "" {
		return nil, errors.New("mqtt: SiteID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "setbackd/" + cfg.SiteID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "setbackd-" + cfg.SiteID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		svc:  svc,
		calc: calc,
		cfg:  cfg,
		log:  log.With(zap.String("controller", "mqtt")),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		for _, suffix := range []string{"set/+", "calculate/+"} {
			token := cl.Subscribe(c.topic(suffix), c.cfg.QoS, c.onMessage)
			token.Wait()
			if err := token.Error(); err != nil {
				c.log.Warn("subscribe failed", zap.String("topic", c.topic(suffix)), zap.Error(err))
			}
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	// Publish loop: publish snapshot on interval, and only when changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	last := c.svc.Get()
	c.publishSnapshot(last)

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			cur := c.svc.Get()
			if !reflect.DeepEqual(cur, last) {
				c.publishSnapshot(cur)
				last = cur
			}
		}
	}
}

func (c *Controller) publishSnapshot(s site.Snapshot) {
	rec := wire.FromResult(s.Result)
	dto := snapshotDTO{
		SiteID:             s.SiteID,
		OutdoorTemperature: s.OutdoorTempF,
		DesiredTemperature: s.DesiredTempF,
		AbsenceDuration:    s.AbsenceDurationHours,
		DaysPerWeek:        s.DaysPerWeek,
		Recommendation:     &rec,
	}
	b, err := json.Marshal(dto)
	if err != nil {
		c.log.Error("snapshot encoding failed", zap.String("site_id", s.SiteID), zap.Error(err))
		return
	}
	c.client.Publish(c.topic("snapshot"), c.cfg.QoS, c.cfg.RetainSnapshot, b)
}

type snapshotDTO struct {
	SiteID             string          `json:"site_id"`
	OutdoorTemperature float64         `json:"outdoor_temperature"`
	DesiredTemperature float64         `json:"desired_temperature"`
	AbsenceDuration    float64         `json:"absence_duration"`
	DaysPerWeek        int             `json:"days_per_week"`
	Recommendation     *wire.ResultDTO `json:"recommendation"`
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field> or <base>/calculate/<request-id>
	t := msg.Topic()
	base := strings.TrimRight(c.cfg.BaseTopic, "/")
	switch {
	case strings.HasPrefix(t, base+"/set/"):
		c.onSet(strings.TrimPrefix(t, base+"/set/"), msg.Payload())
	case strings.HasPrefix(t, base+"/calculate/"):
		c.onCalculate(strings.TrimPrefix(t, base+"/calculate/"), msg.Payload())
	}
}

func (c *Controller) onSet(field string, payload []byte) {
	var err error
	switch field {
	case "outdoor_temperature":
		err = applyValue(payload, c.svc.SetOutdoorTemperature)
	case "desired_temperature":
		err = applyValue(payload, c.svc.SetDesiredTemperature)
	case "absence_duration":
		err = applyValue(payload, c.svc.SetAbsenceDuration)
	case "days_per_week":
		err = applyValue(payload, c.svc.SetDaysPerWeek)
	default:
		return
	}
	if err != nil {
		c.log.Info("set rejected", zap.String("field", field), zap.Error(err))
	}
}

// onCalculate answers on result/<id> with the same envelope as the HTTP API.
func (c *Controller) onCalculate(id string, payload []byte) {
	if id == "" || strings.Contains(id, "/") {
		return
	}
	var resp wire.Response
	var body wire.CalculateRequest
	if err := json.Unmarshal(payload, &body); err != nil {
		resp = wire.Response{Error: &wire.ErrorDTO{Kind: "invalid_json", Message: err.Error()}}
	} else if req, err := body.Request(); err != nil {
		resp = wire.Failure(err)
	} else if elig, err := body.FormData.Eligibility(); err != nil {
		resp = wire.Failure(err)
	} else {
		ctx := service.WithRequestID(context.Background(), id)
		if res, err := c.calc.Calculate(ctx, req); err != nil {
			resp = wire.Failure(err)
		} else {
			resp = wire.Success(res).WithEligibility(elig)
		}
	}
	b, err := json.Marshal(resp)
	if err != nil {
		c.log.Error("result encoding failed", zap.String("request_id", id), zap.Error(err))
		b, _ = json.Marshal(wire.EncodingFailure(err))
	}
	c.client.Publish(c.topic("result/"+id), c.cfg.QoS, false, b)
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func applyValue[T any](payload []byte, apply func(T) error) error {
	v, err := decodeValueStrict[T](payload)
	if err != nil {
		return err
	}
	return apply(v)
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
