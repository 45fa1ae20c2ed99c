package modbusaccess

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FloatRegisterCount is the number of 16-bit holding registers spanned by one
// IEEE-754 binary32 value.
const FloatRegisterCount = 2

// Kind classifies what a register measures. The simulated data source uses it
// to pick a plausible magnitude range for each parameter.
type Kind int

const (
	// KindGauge covers the min/max/unbalance registers that have no
	// dedicated magnitude range of their own.
	KindGauge Kind = iota
	KindVoltage
	KindVoltageAverage
	KindCurrent
	KindPowerPhase
	KindPowerTotalActive
	KindPowerTotal
	KindPowerFactor
	KindFrequency
	KindTHD
	KindEnergy
)

// Register describes one named float measurement held in two consecutive
// 16-bit holding registers on the slave.
type Register struct {
	Name string
	Addr uint16
	Kind Kind
}

// Float32FromBytes decodes the 4-byte payload of a two-register read as an
// IEEE-754 binary32 value, big-endian byte order and big-endian word order.
// The result may be NaN or infinite; callers decide how to treat such values.
func Float32FromBytes(b []byte) (float64, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("expected 4 bytes for a float register pair, got %d", len(b))
	}
	valUint32 := binary.BigEndian.Uint32(b)
	valFloat32 := math.Float32frombits(valUint32)
	return float64(valFloat32), nil
}
