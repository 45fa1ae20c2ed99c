package pac3200

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/cepro/metermonitor/modbusaccess"
)

// simulatedSource synthesises plausible PAC3200 readings for sites with no
// reachable meter. Each value is a slow sinusoid plus gaussian jitter clamped
// to three standard deviations, with a phase offset derived from the meter id
// so that distinct meters produce visibly distinct but believable series.
type simulatedSource struct {
	offset float64
	rng    *rand.Rand
}

// NewSimulatedSource returns a simulated source for the given meter id.
// The same id always yields the same phase offset.
func NewSimulatedSource(meterID string) Source {
	return &simulatedSource{
		offset: phaseOffset(meterID),
		rng:    rand.New(rand.NewSource(int64(idHash(meterID)))),
	}
}

func (s *simulatedSource) Connect() error { return nil }

func (s *simulatedSource) Close() {}

func (s *simulatedSource) ReadFloat32(addr uint16) (float64, error) {
	kind := modbusaccess.KindGauge
	if reg, ok := registersByAddr[addr]; ok {
		kind = reg.Kind
	}

	now := float64(time.Now().UnixNano()) / 1e9
	jitter := s.rng.NormFloat64() * 0.02
	if jitter > 0.06 {
		jitter = 0.06
	} else if jitter < -0.06 {
		jitter = -0.06
	}
	variation := math.Sin(now/10+s.offset)*0.1 + jitter

	switch kind {
	case modbusaccess.KindVoltage:
		return 230 + variation*15 + s.offset*5, nil
	case modbusaccess.KindVoltageAverage:
		return 230 + variation*10 + s.offset*5, nil
	case modbusaccess.KindCurrent:
		return 10 + variation*5 + s.offset*3, nil
	case modbusaccess.KindPowerPhase:
		return 760 + variation*100 + s.offset*150, nil
	case modbusaccess.KindPowerTotalActive:
		return 2300 + variation*300 + s.offset*500, nil
	case modbusaccess.KindPowerTotal:
		return 2400 + variation*320 + s.offset*500, nil
	case modbusaccess.KindPowerFactor:
		return 0.85 + variation*0.1, nil
	case modbusaccess.KindFrequency:
		return 50.0 + variation*0.2, nil
	case modbusaccess.KindTHD:
		return 2.5 + math.Abs(variation)*2, nil
	case modbusaccess.KindEnergy:
		// energy counters grow monotonically with wall-clock time
		return 1e6 + now*100 + s.offset*1e5, nil
	default:
		return math.Abs(variation) * 100, nil
	}
}

func idHash(meterID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(meterID))
	return h.Sum32()
}

// phaseOffset maps a meter id onto one of ten fixed phase offsets in [0, 1).
func phaseOffset(meterID string) float64 {
	return float64(idHash(meterID)%10) / 10.0
}
