package telemetry

import (
	"math"
	"sort"
	"time"
)

// Values holds one polled value per parameter name. A nil entry means the
// parameter could not be read this cycle.
type Values map[string]*float64

// Reading holds one poll of a single PAC3200 meter. Every measurement field
// is optional: nil means the value was absent or non-finite when polled, and
// the column is left NULL when the reading is persisted.
//
// The column names are the canonical parameter names used on the wire map and
// in the readings table; the JSON tags match so uploaded rows share the layout.
type Reading struct {
	MeterID   string    `gorm:"column:meter_id;not null" json:"meter_id"`
	Timestamp time.Time `gorm:"column:timestamp" json:"timestamp"`

	V1NVoltage  *float64 `gorm:"column:V1_N_Voltage" json:"V1_N_Voltage,omitempty"`
	V2NVoltage  *float64 `gorm:"column:V2_N_Voltage" json:"V2_N_Voltage,omitempty"`
	V3NVoltage  *float64 `gorm:"column:V3_N_Voltage" json:"V3_N_Voltage,omitempty"`
	V1V2Voltage *float64 `gorm:"column:V1_V2_Voltage" json:"V1_V2_Voltage,omitempty"`
	V2V3Voltage *float64 `gorm:"column:V2_V3_Voltage" json:"V2_V3_Voltage,omitempty"`
	V3V1Voltage *float64 `gorm:"column:V3_V1_Voltage" json:"V3_V1_Voltage,omitempty"`

	MaximumVoltageV1N *float64 `gorm:"column:Maximum_Voltage_V1_n" json:"Maximum_Voltage_V1_n,omitempty"`
	MaximumVoltageV2N *float64 `gorm:"column:Maximum_Voltage_V2_n" json:"Maximum_Voltage_V2_n,omitempty"`
	MaximumVoltageV3N *float64 `gorm:"column:Maximum_Voltage_V3_n" json:"Maximum_Voltage_V3_n,omitempty"`
	MaximumVoltageV12 *float64 `gorm:"column:Maximum_Voltage_V1_2" json:"Maximum_Voltage_V1_2,omitempty"`
	MaximumVoltageV23 *float64 `gorm:"column:Maximum_Voltage_V2_3" json:"Maximum_Voltage_V2_3,omitempty"`
	MaximumVoltageV31 *float64 `gorm:"column:Maximum_Voltage_V3_1" json:"Maximum_Voltage_V3_1,omitempty"`

	MinimumVoltageV1N *float64 `gorm:"column:Minimum_Voltage_V1_n" json:"Minimum_Voltage_V1_n,omitempty"`
	MinimumVoltageV2N *float64 `gorm:"column:Minimum_Voltage_V2_n" json:"Minimum_Voltage_V2_n,omitempty"`
	MinimumVoltageV3N *float64 `gorm:"column:Minimum_Voltage_V3_n" json:"Minimum_Voltage_V3_n,omitempty"`
	MinimumVoltageV12 *float64 `gorm:"column:Minimum_Voltage_V1_2" json:"Minimum_Voltage_V1_2,omitempty"`
	MinimumVoltageV23 *float64 `gorm:"column:Minimum_Voltage_V2_3" json:"Minimum_Voltage_V2_3,omitempty"`
	MinimumVoltageV31 *float64 `gorm:"column:Minimum_Voltage_V3_1" json:"Minimum_Voltage_V3_1,omitempty"`

	THDVoltage1 *float64 `gorm:"column:THD_R_Voltage_1" json:"THD_R_Voltage_1,omitempty"`
	THDVoltage2 *float64 `gorm:"column:THD_R_Voltage_2" json:"THD_R_Voltage_2,omitempty"`
	THDVoltage3 *float64 `gorm:"column:THD_R_Voltage_3" json:"THD_R_Voltage_3,omitempty"`

	AverageVoltagePhN  *float64 `gorm:"column:Average_Voltage_Vph_n" json:"Average_Voltage_Vph_n,omitempty"`
	AverageVoltagePhPh *float64 `gorm:"column:Average_Voltage_Vph_ph" json:"Average_Voltage_Vph_ph,omitempty"`

	AmplitudeUnbalanceVoltage *float64 `gorm:"column:Amplitude_Unbalance_Voltage" json:"Amplitude_Unbalance_Voltage,omitempty"`

	L1Current *float64 `gorm:"column:L1_Current" json:"L1_Current,omitempty"`
	L2Current *float64 `gorm:"column:L2_Current" json:"L2_Current,omitempty"`
	L3Current *float64 `gorm:"column:L3_Current" json:"L3_Current,omitempty"`

	MaximumCurrent1 *float64 `gorm:"column:Maximum_Current_1" json:"Maximum_Current_1,omitempty"`
	MaximumCurrent2 *float64 `gorm:"column:Maximum_Current_2" json:"Maximum_Current_2,omitempty"`
	MaximumCurrent3 *float64 `gorm:"column:Maximum_Current_3" json:"Maximum_Current_3,omitempty"`
	MinimumCurrent1 *float64 `gorm:"column:Minimum_Current_1" json:"Minimum_Current_1,omitempty"`
	MinimumCurrent2 *float64 `gorm:"column:Minimum_Current_2" json:"Minimum_Current_2,omitempty"`
	MinimumCurrent3 *float64 `gorm:"column:Minimum_Current_3" json:"Minimum_Current_3,omitempty"`

	AverageCurrent *float64 `gorm:"column:Average_Current" json:"Average_Current,omitempty"`

	THDCurrent1 *float64 `gorm:"column:THD_R_Current_1" json:"THD_R_Current_1,omitempty"`
	THDCurrent2 *float64 `gorm:"column:THD_R_Current_2" json:"THD_R_Current_2,omitempty"`
	THDCurrent3 *float64 `gorm:"column:THD_R_Current_3" json:"THD_R_Current_3,omitempty"`

	AmplitudeUnbalanceCurrent *float64 `gorm:"column:Amplitude_Unbalance_Current" json:"Amplitude_Unbalance_Current,omitempty"`

	L1ActivePower *float64 `gorm:"column:L1_Active_Power" json:"L1_Active_Power,omitempty"`
	L2ActivePower *float64 `gorm:"column:L2_Active_Power" json:"L2_Active_Power,omitempty"`
	L3ActivePower *float64 `gorm:"column:L3_Active_Power" json:"L3_Active_Power,omitempty"`

	MaximumActivePower1 *float64 `gorm:"column:Maximum_Active_Power_1" json:"Maximum_Active_Power_1,omitempty"`
	MaximumActivePower2 *float64 `gorm:"column:Maximum_Active_Power_2" json:"Maximum_Active_Power_2,omitempty"`
	MaximumActivePower3 *float64 `gorm:"column:Maximum_Active_Power_3" json:"Maximum_Active_Power_3,omitempty"`
	MinimumActivePower1 *float64 `gorm:"column:Minimum_Active_Power_1" json:"Minimum_Active_Power_1,omitempty"`
	MinimumActivePower2 *float64 `gorm:"column:Minimum_Active_Power_2" json:"Minimum_Active_Power_2,omitempty"`
	MinimumActivePower3 *float64 `gorm:"column:Minimum_Active_Power_3" json:"Minimum_Active_Power_3,omitempty"`

	TotalActivePower *float64 `gorm:"column:Total_Active_Power" json:"Total_Active_Power,omitempty"`

	L1ReactivePower *float64 `gorm:"column:L1_Reactive_Power" json:"L1_Reactive_Power,omitempty"`
	L2ReactivePower *float64 `gorm:"column:L2_Reactive_Power" json:"L2_Reactive_Power,omitempty"`
	L3ReactivePower *float64 `gorm:"column:L3_Reactive_Power" json:"L3_Reactive_Power,omitempty"`

	MaximumReactivePower1 *float64 `gorm:"column:Maximum_Reactive_Power_1" json:"Maximum_Reactive_Power_1,omitempty"`
	MaximumReactivePower2 *float64 `gorm:"column:Maximum_Reactive_Power_2" json:"Maximum_Reactive_Power_2,omitempty"`
	MaximumReactivePower3 *float64 `gorm:"column:Maximum_Reactive_Power_3" json:"Maximum_Reactive_Power_3,omitempty"`
	MinimumReactivePower1 *float64 `gorm:"column:Minimum_Reactive_Power_1" json:"Minimum_Reactive_Power_1,omitempty"`
	MinimumReactivePower2 *float64 `gorm:"column:Minimum_Reactive_Power_2" json:"Minimum_Reactive_Power_2,omitempty"`
	MinimumReactivePower3 *float64 `gorm:"column:Minimum_Reactive_Power_3" json:"Minimum_Reactive_Power_3,omitempty"`

	TotalReactivePower *float64 `gorm:"column:Total_Reactive_Power" json:"Total_Reactive_Power,omitempty"`

	L1ApparentPower *float64 `gorm:"column:L1_Apparent_Power" json:"L1_Apparent_Power,omitempty"`
	L2ApparentPower *float64 `gorm:"column:L2_Apparent_Power" json:"L2_Apparent_Power,omitempty"`
	L3ApparentPower *float64 `gorm:"column:L3_Apparent_Power" json:"L3_Apparent_Power,omitempty"`

	MaximumApparentPower1 *float64 `gorm:"column:Maximum_Apparent_Power_1" json:"Maximum_Apparent_Power_1,omitempty"`
	MaximumApparentPower2 *float64 `gorm:"column:Maximum_Apparent_Power_2" json:"Maximum_Apparent_Power_2,omitempty"`
	MaximumApparentPower3 *float64 `gorm:"column:Maximum_Apparent_Power_3" json:"Maximum_Apparent_Power_3,omitempty"`
	MinimumApparentPower1 *float64 `gorm:"column:Minimum_Apparent_Power_1" json:"Minimum_Apparent_Power_1,omitempty"`
	MinimumApparentPower2 *float64 `gorm:"column:Minimum_Apparent_Power_2" json:"Minimum_Apparent_Power_2,omitempty"`
	MinimumApparentPower3 *float64 `gorm:"column:Minimum_Apparent_Power_3" json:"Minimum_Apparent_Power_3,omitempty"`

	TotalApparentPower *float64 `gorm:"column:Total_Apparent_Power" json:"Total_Apparent_Power,omitempty"`

	L1PowerFactor *float64 `gorm:"column:L1_Power_Factor" json:"L1_Power_Factor,omitempty"`
	L2PowerFactor *float64 `gorm:"column:L2_Power_Factor" json:"L2_Power_Factor,omitempty"`
	L3PowerFactor *float64 `gorm:"column:L3_Power_Factor" json:"L3_Power_Factor,omitempty"`

	MaximumPowerFactor1 *float64 `gorm:"column:Maximum_Power_Factor_1" json:"Maximum_Power_Factor_1,omitempty"`
	MaximumPowerFactor2 *float64 `gorm:"column:Maximum_Power_Factor_2" json:"Maximum_Power_Factor_2,omitempty"`
	MaximumPowerFactor3 *float64 `gorm:"column:Maximum_Power_Factor_3" json:"Maximum_Power_Factor_3,omitempty"`
	MinimumPowerFactor1 *float64 `gorm:"column:Minimum_Power_Factor_1" json:"Minimum_Power_Factor_1,omitempty"`
	MinimumPowerFactor2 *float64 `gorm:"column:Minimum_Power_Factor_2" json:"Minimum_Power_Factor_2,omitempty"`
	MinimumPowerFactor3 *float64 `gorm:"column:Minimum_Power_Factor_3" json:"Minimum_Power_Factor_3,omitempty"`

	TotalPowerFactor *float64 `gorm:"column:Total_Power_Factor" json:"Total_Power_Factor,omitempty"`

	Frequency *float64 `gorm:"column:Frequency" json:"Frequency,omitempty"`

	TotalActiveEnergy   *float64 `gorm:"column:Total_Active_Energy" json:"Total_Active_Energy,omitempty"`
	TotalReactiveEnergy *float64 `gorm:"column:Total_Reactive_Energy" json:"Total_Reactive_Energy,omitempty"`
}

// fields maps every parameter name to its field within a Reading.
var fields = map[string]func(*Reading) **float64{
	"V1_N_Voltage":  func(r *Reading) **float64 { return &r.V1NVoltage },
	"V2_N_Voltage":  func(r *Reading) **float64 { return &r.V2NVoltage },
	"V3_N_Voltage":  func(r *Reading) **float64 { return &r.V3NVoltage },
	"V1_V2_Voltage": func(r *Reading) **float64 { return &r.V1V2Voltage },
	"V2_V3_Voltage": func(r *Reading) **float64 { return &r.V2V3Voltage },
	"V3_V1_Voltage": func(r *Reading) **float64 { return &r.V3V1Voltage },

	"Maximum_Voltage_V1_n": func(r *Reading) **float64 { return &r.MaximumVoltageV1N },
	"Maximum_Voltage_V2_n": func(r *Reading) **float64 { return &r.MaximumVoltageV2N },
	"Maximum_Voltage_V3_n": func(r *Reading) **float64 { return &r.MaximumVoltageV3N },
	"Maximum_Voltage_V1_2": func(r *Reading) **float64 { return &r.MaximumVoltageV12 },
	"Maximum_Voltage_V2_3": func(r *Reading) **float64 { return &r.MaximumVoltageV23 },
	"Maximum_Voltage_V3_1": func(r *Reading) **float64 { return &r.MaximumVoltageV31 },

	"Minimum_Voltage_V1_n": func(r *Reading) **float64 { return &r.MinimumVoltageV1N },
	"Minimum_Voltage_V2_n": func(r *Reading) **float64 { return &r.MinimumVoltageV2N },
	"Minimum_Voltage_V3_n": func(r *Reading) **float64 { return &r.MinimumVoltageV3N },
	"Minimum_Voltage_V1_2": func(r *Reading) **float64 { return &r.MinimumVoltageV12 },
	"Minimum_Voltage_V2_3": func(r *Reading) **float64 { return &r.MinimumVoltageV23 },
	"Minimum_Voltage_V3_1": func(r *Reading) **float64 { return &r.MinimumVoltageV31 },

	"THD_R_Voltage_1": func(r *Reading) **float64 { return &r.THDVoltage1 },
	"THD_R_Voltage_2": func(r *Reading) **float64 { return &r.THDVoltage2 },
	"THD_R_Voltage_3": func(r *Reading) **float64 { return &r.THDVoltage3 },

	"Average_Voltage_Vph_n":  func(r *Reading) **float64 { return &r.AverageVoltagePhN },
	"Average_Voltage_Vph_ph": func(r *Reading) **float64 { return &r.AverageVoltagePhPh },

	"Amplitude_Unbalance_Voltage": func(r *Reading) **float64 { return &r.AmplitudeUnbalanceVoltage },

	"L1_Current": func(r *Reading) **float64 { return &r.L1Current },
	"L2_Current": func(r *Reading) **float64 { return &r.L2Current },
	"L3_Current": func(r *Reading) **float64 { return &r.L3Current },

	"Maximum_Current_1": func(r *Reading) **float64 { return &r.MaximumCurrent1 },
	"Maximum_Current_2": func(r *Reading) **float64 { return &r.MaximumCurrent2 },
	"Maximum_Current_3": func(r *Reading) **float64 { return &r.MaximumCurrent3 },
	"Minimum_Current_1": func(r *Reading) **float64 { return &r.MinimumCurrent1 },
	"Minimum_Current_2": func(r *Reading) **float64 { return &r.MinimumCurrent2 },
	"Minimum_Current_3": func(r *Reading) **float64 { return &r.MinimumCurrent3 },

	"Average_Current": func(r *Reading) **float64 { return &r.AverageCurrent },

	"THD_R_Current_1": func(r *Reading) **float64 { return &r.THDCurrent1 },
	"THD_R_Current_2": func(r *Reading) **float64 { return &r.THDCurrent2 },
	"THD_R_Current_3": func(r *Reading) **float64 { return &r.THDCurrent3 },

	"Amplitude_Unbalance_Current": func(r *Reading) **float64 { return &r.AmplitudeUnbalanceCurrent },

	"L1_Active_Power": func(r *Reading) **float64 { return &r.L1ActivePower },
	"L2_Active_Power": func(r *Reading) **float64 { return &r.L2ActivePower },
	"L3_Active_Power": func(r *Reading) **float64 { return &r.L3ActivePower },

	"Maximum_Active_Power_1": func(r *Reading) **float64 { return &r.MaximumActivePower1 },
	"Maximum_Active_Power_2": func(r *Reading) **float64 { return &r.MaximumActivePower2 },
	"Maximum_Active_Power_3": func(r *Reading) **float64 { return &r.MaximumActivePower3 },
	"Minimum_Active_Power_1": func(r *Reading) **float64 { return &r.MinimumActivePower1 },
	"Minimum_Active_Power_2": func(r *Reading) **float64 { return &r.MinimumActivePower2 },
	"Minimum_Active_Power_3": func(r *Reading) **float64 { return &r.MinimumActivePower3 },

	"Total_Active_Power": func(r *Reading) **float64 { return &r.TotalActivePower },

	"L1_Reactive_Power": func(r *Reading) **float64 { return &r.L1ReactivePower },
	"L2_Reactive_Power": func(r *Reading) **float64 { return &r.L2ReactivePower },
	"L3_Reactive_Power": func(r *Reading) **float64 { return &r.L3ReactivePower },

	"Maximum_Reactive_Power_1": func(r *Reading) **float64 { return &r.MaximumReactivePower1 },
	"Maximum_Reactive_Power_2": func(r *Reading) **float64 { return &r.MaximumReactivePower2 },
	"Maximum_Reactive_Power_3": func(r *Reading) **float64 { return &r.MaximumReactivePower3 },
	"Minimum_Reactive_Power_1": func(r *Reading) **float64 { return &r.MinimumReactivePower1 },
	"Minimum_Reactive_Power_2": func(r *Reading) **float64 { return &r.MinimumReactivePower2 },
	"Minimum_Reactive_Power_3": func(r *Reading) **float64 { return &r.MinimumReactivePower3 },

	"Total_Reactive_Power": func(r *Reading) **float64 { return &r.TotalReactivePower },

	"L1_Apparent_Power": func(r *Reading) **float64 { return &r.L1ApparentPower },
	"L2_Apparent_Power": func(r *Reading) **float64 { return &r.L2ApparentPower },
	"L3_Apparent_Power": func(r *Reading) **float64 { return &r.L3ApparentPower },

	"Maximum_Apparent_Power_1": func(r *Reading) **float64 { return &r.MaximumApparentPower1 },
	"Maximum_Apparent_Power_2": func(r *Reading) **float64 { return &r.MaximumApparentPower2 },
	"Maximum_Apparent_Power_3": func(r *Reading) **float64 { return &r.MaximumApparentPower3 },
	"Minimum_Apparent_Power_1": func(r *Reading) **float64 { return &r.MinimumApparentPower1 },
	"Minimum_Apparent_Power_2": func(r *Reading) **float64 { return &r.MinimumApparentPower2 },
	"Minimum_Apparent_Power_3": func(r *Reading) **float64 { return &r.MinimumApparentPower3 },

	"Total_Apparent_Power": func(r *Reading) **float64 { return &r.TotalApparentPower },

	"L1_Power_Factor": func(r *Reading) **float64 { return &r.L1PowerFactor },
	"L2_Power_Factor": func(r *Reading) **float64 { return &r.L2PowerFactor },
	"L3_Power_Factor": func(r *Reading) **float64 { return &r.L3PowerFactor },

	"Maximum_Power_Factor_1": func(r *Reading) **float64 { return &r.MaximumPowerFactor1 },
	"Maximum_Power_Factor_2": func(r *Reading) **float64 { return &r.MaximumPowerFactor2 },
	"Maximum_Power_Factor_3": func(r *Reading) **float64 { return &r.MaximumPowerFactor3 },
	"Minimum_Power_Factor_1": func(r *Reading) **float64 { return &r.MinimumPowerFactor1 },
	"Minimum_Power_Factor_2": func(r *Reading) **float64 { return &r.MinimumPowerFactor2 },
	"Minimum_Power_Factor_3": func(r *Reading) **float64 { return &r.MinimumPowerFactor3 },

	"Total_Power_Factor": func(r *Reading) **float64 { return &r.TotalPowerFactor },

	"Frequency": func(r *Reading) **float64 { return &r.Frequency },

	"Total_Active_Energy":   func(r *Reading) **float64 { return &r.TotalActiveEnergy },
	"Total_Reactive_Energy": func(r *Reading) **float64 { return &r.TotalReactiveEnergy },
}

// NewReading builds a Reading from polled values. Absent (nil), NaN and
// infinite entries are dropped, as are names that don't belong to the
// measurement schema. The second return is the number of fields set.
func NewReading(meterID string, ts time.Time, vals Values) (Reading, int) {
	r := Reading{
		MeterID:   meterID,
		Timestamp: ts,
	}
	set := 0
	for name, field := range fields {
		v := vals[name]
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		val := *v
		*field(&r) = &val
		set++
	}
	return r, set
}

// Value returns the named measurement field, or nil when the name is unknown
// or the field is unset.
func (r *Reading) Value(name string) *float64 {
	field, ok := fields[name]
	if !ok {
		return nil
	}
	return *field(r)
}

// ParameterNames returns the name of every measurement field, sorted.
func ParameterNames() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
