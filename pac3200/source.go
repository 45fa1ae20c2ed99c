package pac3200

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/cepro/metermonitor/modbusaccess"
	"github.com/grid-x/modbus"
)

var errNotConnected = errors.New("not connected")

// Source supplies raw register values for one meter. The implementation is
// chosen when the meter is constructed: a live Modbus TCP session or a
// simulated generator. It is never selected per call or probed at runtime.
type Source interface {
	// Connect discards any prior session and opens a new one.
	Connect() error
	// Close releases the session; safe to call when already closed.
	Close()
	// ReadFloat32 reads the two 16-bit registers at addr and decodes them as
	// a big-endian binary32 value.
	ReadFloat32(addr uint16) (float64, error)
}

// modbusSource reads registers from a live meter over Modbus TCP.
type modbusSource struct {
	addr    string
	unitID  uint8
	timeout time.Duration

	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// NewModbusSource returns a live Modbus TCP source for the given meter.
// No connection is made until Connect is called.
func NewModbusSource(cfg Config) Source {
	return &modbusSource{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		unitID:  cfg.UnitID,
		timeout: cfg.Timeout,
	}
}

func (s *modbusSource) Connect() error {
	s.Close()

	handler := modbus.NewTCPClientHandler(s.addr)
	handler.Timeout = s.timeout
	handler.SlaveID = s.unitID

	if err := handler.Connect(); err != nil {
		return fmt.Errorf("connect %s: %w", s.addr, err)
	}

	s.handler = handler
	s.client = modbus.NewClient(handler)
	return nil
}

func (s *modbusSource) Close() {
	if s.handler == nil {
		return
	}
	// Close errors are ignored: the session is being discarded either way.
	s.handler.Close()
	s.handler = nil
	s.client = nil
}

func (s *modbusSource) ReadFloat32(addr uint16) (float64, error) {
	if s.client == nil {
		return 0, errNotConnected
	}
	bytes, err := s.client.ReadHoldingRegisters(addr, modbusaccess.FloatRegisterCount)
	if err != nil {
		return 0, fmt.Errorf("read holding registers %d: %w", addr, err)
	}
	return modbusaccess.Float32FromBytes(bytes)
}
