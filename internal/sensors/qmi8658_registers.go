// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"
)

// BitField describes a named group of bits inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is metadata for one device register.
type RegisterInfo struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterValue pairs a register with the value read from it.
type RegisterValue struct {
	RegisterInfo
	Value byte `json:"value"`
}

// QMI8658RegisterMap returns metadata for the registers this project uses.
func QMI8658RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: regWhoAmI, Name: "WHO_AM_I", Description: "Device identifier (0x05)", Access: "R"},
		{Address: regRevision, Name: "REVISION_ID", Description: "Device revision", Access: "R"},
		{Address: regCtrl1, Name: "CTRL1", Description: "Serial interface and sensor enable", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "SIM", Description: "SPI interface mode", Values: "0=4-wire, 1=3-wire"},
				{Bits: "6", Name: "ADDR_AI", Description: "Serial address auto increment", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "BE", Description: "Read data endianness", Values: "0=Little endian, 1=Big endian"},
				{Bits: "0", Name: "SensorDisable", Description: "Internal 2MHz oscillator", Values: "0=Enabled, 1=Disabled"},
			}},
		{Address: regCtrl2, Name: "CTRL2", Description: "Accelerometer settings", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "aST", Description: "Accelerometer self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6:4", Name: "aFS", Description: "Accelerometer full scale", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
				{Bits: "3:0", Name: "aODR", Description: "Accelerometer output data rate", Values: "3=1000Hz, 4=500Hz, 5=250Hz, 6=125Hz"},
			}},
		{Address: regCtrl3, Name: "CTRL3", Description: "Gyroscope settings", Access: "RW"},
		{Address: regCtrl5, Name: "CTRL5", Description: "Low pass filter settings", Access: "RW",
			BitFields: []BitField{
				{Bits: "2:1", Name: "aLPF_MODE", Description: "Accelerometer LPF bandwidth", Values: "0=2.66% ODR, 1=3.63%, 2=5.39%, 3=13.37%"},
				{Bits: "0", Name: "aLPF_EN", Description: "Accelerometer LPF", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: regCtrl7, Name: "CTRL7", Description: "Enable sensors", Access: "RW",
			BitFields: []BitField{
				{Bits: "1", Name: "gEN", Description: "Gyroscope enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "aEN", Description: "Accelerometer enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: regStatus0, Name: "STATUS0", Description: "Output data status", Access: "R",
			BitFields: []BitField{
				{Bits: "1", Name: "gDA", Description: "Gyroscope new data available"},
				{Bits: "0", Name: "aDA", Description: "Accelerometer new data available"},
			}},
		{Address: regTempL, Name: "TEMP_L", Description: "Temperature low byte", Access: "R"},
		{Address: regTempL + 1, Name: "TEMP_H", Description: "Temperature high byte", Access: "R"},
		{Address: regAxL, Name: "AX_L", Description: "Accelerometer X low byte", Access: "R"},
		{Address: regAxL + 1, Name: "AX_H", Description: "Accelerometer X high byte", Access: "R"},
		{Address: regAxL + 2, Name: "AY_L", Description: "Accelerometer Y low byte", Access: "R"},
		{Address: regAxL + 3, Name: "AY_H", Description: "Accelerometer Y high byte", Access: "R"},
		{Address: regAxL + 4, Name: "AZ_L", Description: "Accelerometer Z low byte", Access: "R"},
		{Address: regAxL + 5, Name: "AZ_H", Description: "Accelerometer Z high byte", Access: "R"},
		{Address: regReset, Name: "RESET", Description: "Soft reset (write 0xB0)", Access: "W"},
	}
}

// DumpRegisters reads every readable register of the map, one transaction
// per register.
func DumpRegisters(tr RegisterTransport) ([]RegisterValue, error) {
	var out []RegisterValue
	for _, info := range QMI8658RegisterMap() {
		if info.Access == "W" {
			continue
		}
		b, err := tr.ReadRegisters(info.Address, 1)
		if err != nil {
			return out, errors.Wrapf(err, "dump %s", info.Name)
		}
		out = append(out, RegisterValue{RegisterInfo: info, Value: b[0]})
	}
	return out, nil
}
