package ports

import (
	"context"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
)

// Calculator runs one stateless recommendation. Used by the HTTP and MQTT
// request/response surfaces.
type Calculator interface {
	Calculate(ctx context.Context, req setback.Request) (setback.Result, error)
}

// SiteService is the control-plane port of the configured building, used by
// controllers (HTTP/MQTT/Modbus).
type SiteService interface {
	Get() site.Snapshot
	SetOutdoorTemperature(float64) error
	SetDesiredTemperature(float64) error
	SetAbsenceDuration(hours float64) error
	SetDaysPerWeek(int) error
}
