package pac3200

import "github.com/cepro/metermonitor/modbusaccess"

// registers is the SENTRON PAC3200 holding-register map. Each parameter is a
// float32 spanning two registers, read individually; the meter does not
// guarantee contiguous blocks across the whole map, so there is no block read.
var registers = []modbusaccess.Register{
	// Voltage measurements
	{Name: "V1_N_Voltage", Addr: 1, Kind: modbusaccess.KindVoltage},
	{Name: "V2_N_Voltage", Addr: 3, Kind: modbusaccess.KindVoltage},
	{Name: "V3_N_Voltage", Addr: 5, Kind: modbusaccess.KindVoltage},
	{Name: "V1_V2_Voltage", Addr: 7, Kind: modbusaccess.KindVoltage},
	{Name: "V2_V3_Voltage", Addr: 9, Kind: modbusaccess.KindVoltage},
	{Name: "V3_V1_Voltage", Addr: 11, Kind: modbusaccess.KindVoltage},
	{Name: "Maximum_Voltage_V1_n", Addr: 75, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Voltage_V2_n", Addr: 77, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Voltage_V3_n", Addr: 79, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Voltage_V1_2", Addr: 81, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Voltage_V2_3", Addr: 83, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Voltage_V3_1", Addr: 85, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Voltage_V1_n", Addr: 145, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Voltage_V2_n", Addr: 147, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Voltage_V3_n", Addr: 149, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Voltage_V1_2", Addr: 151, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Voltage_V2_3", Addr: 153, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Voltage_V3_1", Addr: 155, Kind: modbusaccess.KindGauge},
	{Name: "THD_R_Voltage_1", Addr: 43, Kind: modbusaccess.KindTHD},
	{Name: "THD_R_Voltage_2", Addr: 45, Kind: modbusaccess.KindTHD},
	{Name: "THD_R_Voltage_3", Addr: 47, Kind: modbusaccess.KindTHD},
	{Name: "Average_Voltage_Vph_n", Addr: 57, Kind: modbusaccess.KindVoltageAverage},
	{Name: "Average_Voltage_Vph_ph", Addr: 59, Kind: modbusaccess.KindVoltageAverage},
	{Name: "Amplitude_Unbalance_Voltage", Addr: 71, Kind: modbusaccess.KindGauge},

	// Current measurements
	{Name: "L1_Current", Addr: 13, Kind: modbusaccess.KindCurrent},
	{Name: "L2_Current", Addr: 15, Kind: modbusaccess.KindCurrent},
	{Name: "L3_Current", Addr: 17, Kind: modbusaccess.KindCurrent},
	{Name: "Maximum_Current_1", Addr: 87, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Current_2", Addr: 89, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Current_3", Addr: 91, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Current_1", Addr: 157, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Current_2", Addr: 159, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Current_3", Addr: 161, Kind: modbusaccess.KindGauge},
	{Name: "Average_Current", Addr: 61, Kind: modbusaccess.KindCurrent},
	{Name: "THD_R_Current_1", Addr: 49, Kind: modbusaccess.KindTHD},
	{Name: "THD_R_Current_2", Addr: 51, Kind: modbusaccess.KindTHD},
	{Name: "THD_R_Current_3", Addr: 53, Kind: modbusaccess.KindTHD},
	{Name: "Amplitude_Unbalance_Current", Addr: 73, Kind: modbusaccess.KindGauge},

	// Active power
	{Name: "L1_Active_Power", Addr: 25, Kind: modbusaccess.KindPowerPhase},
	{Name: "L2_Active_Power", Addr: 27, Kind: modbusaccess.KindPowerPhase},
	{Name: "L3_Active_Power", Addr: 29, Kind: modbusaccess.KindPowerPhase},
	{Name: "Maximum_Active_Power_1", Addr: 99, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Active_Power_2", Addr: 101, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Active_Power_3", Addr: 103, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Active_Power_1", Addr: 169, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Active_Power_2", Addr: 171, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Active_Power_3", Addr: 173, Kind: modbusaccess.KindGauge},
	{Name: "Total_Active_Power", Addr: 65, Kind: modbusaccess.KindPowerTotalActive},

	// Reactive power
	{Name: "L1_Reactive_Power", Addr: 31, Kind: modbusaccess.KindPowerPhase},
	{Name: "L2_Reactive_Power", Addr: 33, Kind: modbusaccess.KindPowerPhase},
	{Name: "L3_Reactive_Power", Addr: 35, Kind: modbusaccess.KindPowerPhase},
	{Name: "Maximum_Reactive_Power_1", Addr: 105, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Reactive_Power_2", Addr: 107, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Reactive_Power_3", Addr: 109, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Reactive_Power_1", Addr: 175, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Reactive_Power_2", Addr: 177, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Reactive_Power_3", Addr: 179, Kind: modbusaccess.KindGauge},
	{Name: "Total_Reactive_Power", Addr: 67, Kind: modbusaccess.KindPowerTotal},

	// Apparent power
	{Name: "L1_Apparent_Power", Addr: 19, Kind: modbusaccess.KindPowerPhase},
	{Name: "L2_Apparent_Power", Addr: 21, Kind: modbusaccess.KindPowerPhase},
	{Name: "L3_Apparent_Power", Addr: 23, Kind: modbusaccess.KindPowerPhase},
	{Name: "Maximum_Apparent_Power_1", Addr: 93, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Apparent_Power_2", Addr: 95, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Apparent_Power_3", Addr: 97, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Apparent_Power_1", Addr: 163, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Apparent_Power_2", Addr: 165, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Apparent_Power_3", Addr: 167, Kind: modbusaccess.KindGauge},
	{Name: "Total_Apparent_Power", Addr: 63, Kind: modbusaccess.KindPowerTotal},

	// Power factor
	{Name: "L1_Power_Factor", Addr: 37, Kind: modbusaccess.KindPowerFactor},
	{Name: "L2_Power_Factor", Addr: 39, Kind: modbusaccess.KindPowerFactor},
	{Name: "L3_Power_Factor", Addr: 41, Kind: modbusaccess.KindPowerFactor},
	{Name: "Maximum_Power_Factor_1", Addr: 111, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Power_Factor_2", Addr: 113, Kind: modbusaccess.KindGauge},
	{Name: "Maximum_Power_Factor_3", Addr: 115, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Power_Factor_1", Addr: 181, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Power_Factor_2", Addr: 183, Kind: modbusaccess.KindGauge},
	{Name: "Minimum_Power_Factor_3", Addr: 185, Kind: modbusaccess.KindGauge},
	{Name: "Total_Power_Factor", Addr: 69, Kind: modbusaccess.KindPowerFactor},

	// Frequency and energy
	{Name: "Frequency", Addr: 55, Kind: modbusaccess.KindFrequency},
	{Name: "Total_Active_Energy", Addr: 801, Kind: modbusaccess.KindEnergy},
	{Name: "Total_Reactive_Energy", Addr: 805, Kind: modbusaccess.KindEnergy},
}

// registersByAddr indexes the register map for the simulated source.
var registersByAddr = func() map[uint16]modbusaccess.Register {
	m := make(map[uint16]modbusaccess.Register, len(registers))
	for _, reg := range registers {
		m[reg.Addr] = reg
	}
	return m
}()

// Parameters returns the name of every parameter in the register map.
func Parameters() []string {
	names := make([]string, len(registers))
	for i, reg := range registers {
		names[i] = reg.Name
	}
	return names
}
