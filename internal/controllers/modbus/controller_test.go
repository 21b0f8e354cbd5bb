package modbusctrl

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/goburrow/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
	"github.com/Agrid-Dev/setback-advisor/internal/testutil"
)

// spySiteService guards the shared fake; handlers run on mbserver goroutines.
type spySiteService struct {
	mu   sync.Mutex
	fake *testutil.FakeSiteService

	outdoorCalls []float64
	desiredCalls []float64
	absenceCalls []float64
	daysCalls    []int
}

func newSpy() *spySiteService {
	return &spySiteService{fake: testutil.NewFakeSiteService()}
}

func (f *spySiteService) Get() site.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fake.Get()
}
func (f *spySiteService) SetOutdoorTemperature(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outdoorCalls = append(f.outdoorCalls, v)
	return f.fake.SetOutdoorTemperature(v)
}
func (f *spySiteService) SetDesiredTemperature(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.desiredCalls = append(f.desiredCalls, v)
	return f.fake.SetDesiredTemperature(v)
}
func (f *spySiteService) SetAbsenceDuration(h float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.absenceCalls = append(f.absenceCalls, h)
	return f.fake.SetAbsenceDuration(h)
}
func (f *spySiteService) SetDaysPerWeek(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.daysCalls = append(f.daysCalls, n)
	return f.fake.SetDaysPerWeek(n)
}

func findFreeTCPAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	a := l.Addr().String()
	_ = l.Close()
	return a
}

const startupDelay = 50 * time.Millisecond

func startController(t *testing.T, svc *spySiteService) modbus.Client {
	t.Helper()
	addr := findFreeTCPAddr(t)
	ctrl, err := New(svc, Config{SiteID: "site", Addr: addr, UnitID: 1})
	require.NoError(t, err)

	ctx := t.Context()
	go func() {
		_ = ctrl.Run(ctx)
	}()
	time.Sleep(startupDelay)

	handler := modbus.NewTCPClientHandler(addr)
	handler.SlaveId = 1
	handler.Timeout = time.Second
	require.NoError(t, handler.Connect())
	t.Cleanup(func() { _ = handler.Close() })
	return modbus.NewClient(handler)
}

func word(b []byte, i int) uint16 { return binary.BigEndian.Uint16(b[i*2 : i*2+2]) }

func TestNewRequiresUnitID(t *testing.T) {
	_, err := New(newSpy(), Config{})
	assert.Error(t, err)

	c, err := New(newSpy(), Config{UnitID: 3})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1502", c.cfg.Addr)
}

func TestModbusReadsRecommendation(t *testing.T) {
	svc := newSpy()
	client := startController(t, svc)

	res, err := client.ReadInputRegisters(0, inputRegisterCnt)
	require.NoError(t, err)
	require.Len(t, res, inputRegisterCnt*2)

	assert.Equal(t, uint16(800), word(res, IRSetbackTemp))
	assert.Equal(t, uint16(35), word(res, IRRecoveryMin))
	assert.Equal(t, uint16(38), word(res, IRTau))
	assert.Equal(t, uint16(42), word(res, IRBreakEven))
	assert.Equal(t, uint16(17), word(res, IRSavingsCents))
	assert.Equal(t, uint16(96), word(res, IRPercentSaved))

	coils, err := client.ReadCoils(CoilSetback, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, coils)

	_, err = client.ReadInputRegisters(4, 5)
	assert.Error(t, err, "reading past the map should fail")
}

func TestModbusMaintainClearsCoil(t *testing.T) {
	svc := newSpy()
	svc.fake.S.Result.Action = setback.ActionMaintain
	client := startController(t, svc)

	coils, err := client.ReadCoils(CoilSetback, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, coils)

	_, err = client.WriteSingleCoil(CoilSetback, 0xFF00)
	assert.Error(t, err, "the recommendation coil is read-only")
}

func TestModbusHoldingRegisters(t *testing.T) {
	svc := newSpy()
	client := startController(t, svc)

	res, err := client.ReadHoldingRegisters(0, holdingRegisterCnt)
	require.NoError(t, err)
	assert.Equal(t, uint16(850), word(res, HROutdoorTemp))
	assert.Equal(t, uint16(720), word(res, HRDesiredTemp))
	assert.Equal(t, uint16(80), word(res, HRAbsenceHours))
	assert.Equal(t, uint16(5), word(res, HRDaysPerWeek))

	_, err = client.WriteSingleRegister(HROutdoorTemp, encodeFixed(92.5))
	require.NoError(t, err)

	// desired, absence, days in one write
	payload := make([]byte, 6)
	binary.BigEndian.PutUint16(payload[0:2], encodeFixed(74))
	binary.BigEndian.PutUint16(payload[2:4], encodeFixed(9.5))
	binary.BigEndian.PutUint16(payload[4:6], 6)
	_, err = client.WriteMultipleRegisters(HRDesiredTemp, 3, payload)
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, []float64{92.5}, svc.outdoorCalls)
	assert.Equal(t, []float64{74}, svc.desiredCalls)
	assert.Equal(t, []float64{9.5}, svc.absenceCalls)
	assert.Equal(t, []int{6}, svc.daysCalls)
}

func TestModbusRejectedWrite(t *testing.T) {
	svc := newSpy()
	svc.fake.SetDesiredErr = site.ErrDesiredOutOfRange
	client := startController(t, svc)

	_, err := client.WriteSingleRegister(HRDesiredTemp, encodeFixed(90))
	assert.Error(t, err)

	_, err = client.WriteSingleRegister(holdingRegisterCnt, 1)
	assert.Error(t, err, "unknown register")
}

func TestFixedPointEncoding(t *testing.T) {
	assert.Equal(t, 72.5, decodeFixed(encodeFixed(72.5)))
	assert.Equal(t, -4.2, decodeFixed(encodeFixed(-4.2)))
	assert.Equal(t, uint16(32767), saturate(1e9))
	assert.Equal(t, uint16(0x8000), saturate(-1e9))
}
