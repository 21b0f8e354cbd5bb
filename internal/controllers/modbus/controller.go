package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/setback-advisor/internal/ports"
	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
)

// Register map. Fixed-point registers carry value*Scale as a signed 16-bit word.
const (
	// Input registers (read-only recommendation)
	IRSetbackTemp    = 0
	IRRecoveryMin    = 1 // whole minutes
	IRTau            = 2
	IRBreakEven      = 3
	IRSavingsCents   = 4 // whole cents per absence day
	IRPercentSaved   = 5
	inputRegisterCnt = 6

	// Holding registers (live conditions)
	HROutdoorTemp      = 0
	HRDesiredTemp      = 1
	HRAbsenceHours     = 2
	HRDaysPerWeek      = 3 // plain integer
	holdingRegisterCnt = 4

	// Coils
	CoilSetback = 0
)

const Scale int = 10

// Config for the Modbus controller.
type Config struct {
	SiteID string
	Addr   string
	UnitID byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.SiteService
	cfg Config

	serv *mbserver.Server
}

func New(svc ports.SiteService, cfg Config) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	return &Controller{svc: svc, cfg: cfg}, nil
}

// Run starts the Modbus server. Reads are answered from the site snapshot and
// writes are applied immediately. It blocks until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.
	serv.RegisterFunctionHandler(1, c.readCoils)
	serv.RegisterFunctionHandler(3, c.readHolding)
	serv.RegisterFunctionHandler(4, c.readInput)
	serv.RegisterFunctionHandler(5, rejectWrite)
	serv.RegisterFunctionHandler(15, rejectWrite)
	serv.RegisterFunctionHandler(6, c.writeSingle)
	serv.RegisterFunctionHandler(16, c.writeMultiple)

	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}

	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

// Read Coils (function 1): coil 0 is set when the recommendation is SETBACK.
func (c *Controller) readCoils(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, ex := readRange(frame.GetData(), 2000)
	if ex != nil {
		return []byte{}, ex
	}
	if start != CoilSetback || qty != 1 {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	coil := byte(0)
	if c.svc.Get().Result.Action == setback.ActionSetback {
		coil = 0x01
	}
	// response: byte count (1) + coil bytes
	return []byte{1, coil}, &mbserver.Success
}

// Read Holding Registers (function 3).
func (c *Controller) readHolding(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, ex := readRange(frame.GetData(), 125)
	if ex != nil {
		return []byte{}, ex
	}
	if start+qty > holdingRegisterCnt {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	return encodeRegisters(holdingRegisters(c.svc.Get())[start : start+qty]), &mbserver.Success
}

// Read Input Registers (function 4).
func (c *Controller) readInput(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, ex := readRange(frame.GetData(), 125)
	if ex != nil {
		return []byte{}, ex
	}
	if start+qty > inputRegisterCnt {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	return encodeRegisters(inputRegisters(c.svc.Get().Result)[start : start+qty]), &mbserver.Success
}

// Write Single Register (function 6).
func (c *Controller) writeSingle(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	value := binary.BigEndian.Uint16(data[2:4])

	if ex := c.writeHoldingRegister(int(addr), value); ex != nil {
		return []byte{}, ex
	}

	// echo request (address + value)
	resp := make([]byte, 4)
	copy(resp, data[0:4])
	return resp, &mbserver.Success
}

// Write Multiple Registers (function 16).
func (c *Controller) writeMultiple(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	d := frame.GetData()
	if len(d) < 5 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	start := binary.BigEndian.Uint16(d[0:2])
	quantity := binary.BigEndian.Uint16(d[2:4])
	byteCount := int(d[4])
	if byteCount != int(quantity)*2 || len(d) < 5+byteCount {
		return []byte{}, &mbserver.IllegalDataValue
	}
	if int(start)+int(quantity) > holdingRegisterCnt {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	for i := 0; i < int(quantity); i++ {
		val := binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
		if ex := c.writeHoldingRegister(int(start)+i, val); ex != nil {
			return []byte{}, ex
		}
	}

	resp := make([]byte, 4)
	binary.BigEndian.PutUint16(resp[0:2], start)
	binary.BigEndian.PutUint16(resp[2:4], quantity)
	return resp, &mbserver.Success
}

func (c *Controller) writeHoldingRegister(addr int, value uint16) *mbserver.Exception {
	var err error
	switch addr {
	case HROutdoorTemp:
		err = c.svc.SetOutdoorTemperature(decodeFixed(value))
	case HRDesiredTemp:
		err = c.svc.SetDesiredTemperature(decodeFixed(value))
	case HRAbsenceHours:
		err = c.svc.SetAbsenceDuration(decodeFixed(value))
	case HRDaysPerWeek:
		err = c.svc.SetDaysPerWeek(int(int16(value)))
	default:
		return &mbserver.IllegalDataAddress
	}
	if err != nil {
		return &mbserver.IllegalDataValue
	}
	return nil
}

// The recommendation is computed, not commanded.
func rejectWrite(_ *mbserver.Server, _ mbserver.Framer) ([]byte, *mbserver.Exception) {
	return []byte{}, &mbserver.IllegalFunction
}

func holdingRegisters(s site.Snapshot) []uint16 {
	return []uint16{
		HROutdoorTemp:  encodeFixed(s.OutdoorTempF),
		HRDesiredTemp:  encodeFixed(s.DesiredTempF),
		HRAbsenceHours: encodeFixed(s.AbsenceDurationHours),
		HRDaysPerWeek:  saturate(float64(s.DaysPerWeek)),
	}
}

func inputRegisters(r setback.Result) []uint16 {
	return []uint16{
		IRSetbackTemp:  encodeFixed(r.SetbackTempF),
		IRRecoveryMin:  saturate(r.RecoveryTimeMinutes),
		IRTau:          encodeFixed(r.ThermalTimeConstantHours),
		IRBreakEven:    encodeFixed(r.BreakEvenTimeHours),
		IRSavingsCents: saturate(r.SavingsPerDayUSD * 100),
		IRPercentSaved: encodeFixed(r.PercentSaved),
	}
}

func readRange(data []byte, maxQty int) (start, qty int, ex *mbserver.Exception) {
	if len(data) < 4 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	start = int(binary.BigEndian.Uint16(data[0:2]))
	qty = int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > maxQty {
		return 0, 0, &mbserver.IllegalDataValue
	}
	return start, qty, nil
}

// encodeRegisters builds a read response: byte count + register bytes.
func encodeRegisters(regs []uint16) []byte {
	byteCount := len(regs) * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp
}

func encodeFixed(v float64) uint16 {
	return saturate(v * float64(Scale))
}

func decodeFixed(u uint16) float64 {
	return float64(int16(u)) / float64(Scale)
}

// saturate rounds v into a signed 16-bit word.
func saturate(v float64) uint16 {
	r := min(max(int(math.Round(v)), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}
