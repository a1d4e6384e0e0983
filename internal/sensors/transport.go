// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// RegisterTransport is a register-addressed link to one device on a bus.
type RegisterTransport interface {
	// ReadRegisters reads n consecutive registers starting at reg.
	ReadRegisters(reg byte, n int) ([]byte, error)
	// WriteRegister writes a single register.
	WriteRegister(reg, value byte) error
	Close() error
}

// I2CTransport talks to one I2C device through periph.
type I2CTransport struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// InitHost loads the periph host drivers. Failing here means no bus can
// ever be opened.
func InitHost() error {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "periph host init")
	}
	return nil
}

// OpenI2C initializes the periph host, opens busName ("" for the first
// bus available) and binds the device at addr.
func OpenI2C(busName string, addr uint16) (*I2CTransport, error) {
	if err := InitHost(); err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errors.Wrapf(err, "I2C open %q", busName)
	}
	log.Debugf("i2c: bus %q opened for device 0x%02X", busName, addr)

	return &I2CTransport{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

// ReadRegisters issues a write of the register address followed by a
// repeated-start read of n bytes.
func (t *I2CTransport) ReadRegisters(reg byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := t.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, errors.Wrapf(err, "i2c read reg 0x%02X", reg)
	}
	return buf, nil
}

func (t *I2CTransport) WriteRegister(reg, value byte) error {
	if err := t.dev.Tx([]byte{reg, value}, nil); err != nil {
		return errors.Wrapf(err, "i2c write reg 0x%02X", reg)
	}
	return nil
}

func (t *I2CTransport) Close() error {
	return t.bus.Close()
}
