// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

// QMI8658 I2C addresses (SA0 pin).
const (
	QMI8658AddrLow  = 0x6A
	QMI8658AddrHigh = 0x6B
)

const (
	regWhoAmI   = 0x00
	regRevision = 0x01
	regCtrl1    = 0x02
	regCtrl2    = 0x03
	regCtrl3    = 0x04
	regCtrl5    = 0x06
	regCtrl7    = 0x08
	regStatus0  = 0x2E
	regTempL    = 0x33
	regAxL      = 0x35
	regReset    = 0x60

	qmi8658ChipID = 0x05

	ctrl1AddrAutoInc = 0x40
	ctrl5AccelLPF    = 0x03 // LPF enabled, mode 1
	ctrl7AccelEnable = 0x01
)

var (
	// ErrNotReady is returned by reads while the device is uninitialized.
	ErrNotReady = errors.New("accelerometer not initialized")
	// ErrWrongChip means WHO_AM_I did not match the expected chip.
	ErrWrongChip = errors.New("unexpected chip id")
)

// Opener opens the transport to the device. It is called again on every
// init attempt until one succeeds.
type Opener func() (RegisterTransport, error)

// QMI8658Opts configures the accelerometer.
type QMI8658Opts struct {
	AccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelODR   byte // CTRL2 ODR code, 0x04 = 500 Hz
}

// DefaultQMI8658Opts matches the firmware: ±2g for tilt resolution, 500 Hz.
var DefaultQMI8658Opts = QMI8658Opts{AccelRange: 0, AccelODR: 0x04}

// QMI8658 reads the accelerometer half of a QMI8658 6-axis IMU.
type QMI8658 struct {
	name    string
	open    Opener
	opts    QMI8658Opts
	tr      RegisterTransport
	lsbPerG float64
	ready   bool
}

// NewQMI8658 returns an uninitialized device. Nothing touches the bus
// until Init or ReadRaw.
func NewQMI8658(name string, open Opener, opts QMI8658Opts) *QMI8658 {
	return &QMI8658{name: name, open: open, opts: opts}
}

// NewQMI8658I2C binds the device to an I2C bus through periph.
func NewQMI8658I2C(name, busName string, addr uint16, opts QMI8658Opts) *QMI8658 {
	return NewQMI8658(name, func() (RegisterTransport, error) {
		return OpenI2C(busName, addr)
	}, opts)
}

// Ready reports whether Init has succeeded.
func (d *QMI8658) Ready() bool { return d.ready }

// Init opens the transport if needed, checks the chip id and configures
// range, output data rate and the low pass filter. A second call after a
// successful init is a no-op.
func (d *QMI8658) Init() error {
	if d.ready {
		return nil
	}
	if d.opts.AccelRange > 3 {
		return errors.Errorf("%s: accel range %d out of range", d.name, d.opts.AccelRange)
	}

	if d.tr == nil {
		tr, err := d.open()
		if err != nil {
			return errors.Wrapf(err, "%s: transport", d.name)
		}
		d.tr = tr
	}

	id, err := d.tr.ReadRegisters(regWhoAmI, 1)
	if err != nil {
		return d.fail(errors.Wrapf(err, "%s: read WHO_AM_I", d.name))
	}
	if id[0] != qmi8658ChipID {
		return d.fail(errors.Wrapf(ErrWrongChip, "%s: WHO_AM_I = 0x%02X, want 0x%02X", d.name, id[0], qmi8658ChipID))
	}

	writes := []struct {
		reg, val byte
		what     string
	}{
		{regCtrl1, ctrl1AddrAutoInc, "address auto-increment"},
		{regCtrl2, d.opts.AccelRange<<4 | d.opts.AccelODR&0x0F, "accel range/odr"},
		{regCtrl5, ctrl5AccelLPF, "accel low pass filter"},
		{regCtrl7, ctrl7AccelEnable, "accel enable"},
	}
	for _, w := range writes {
		if err := d.tr.WriteRegister(w.reg, w.val); err != nil {
			return d.fail(errors.Wrapf(err, "%s: set %s", d.name, w.what))
		}
	}

	d.lsbPerG = float64(int(16384) >> d.opts.AccelRange)
	d.ready = true
	log.Infof("%s: QMI8658 initialized (±%dg, odr code 0x%02X)", d.name, []int{2, 4, 8, 16}[d.opts.AccelRange], d.opts.AccelODR)
	return nil
}

// fail drops the transport so the next Init starts from a fresh open.
func (d *QMI8658) fail(err error) error {
	if d.tr != nil {
		if cerr := d.tr.Close(); cerr != nil {
			log.Debugf("%s: close after failed init: %v", d.name, cerr)
		}
		d.tr = nil
	}
	return err
}

// ReadRaw reads one accelerometer sample in g. An uninitialized device is
// re-initialized first; if that fails the error wraps ErrNotReady.
func (d *QMI8658) ReadRaw() (imu.AccelSample, error) {
	if !d.ready {
		if err := d.Init(); err != nil {
			return imu.AccelSample{}, errors.Wrapf(ErrNotReady, "%v", err)
		}
	}

	buf, err := d.tr.ReadRegisters(regAxL, 6)
	if err != nil {
		return imu.AccelSample{}, errors.Wrapf(err, "%s accel", d.name)
	}
	if len(buf) < 6 {
		return imu.AccelSample{}, errors.Errorf("%s accel: short read (%d bytes)", d.name, len(buf))
	}

	// Little endian, X/Y/Z.
	ax := int16(uint16(buf[0]) | uint16(buf[1])<<8)
	ay := int16(uint16(buf[2]) | uint16(buf[3])<<8)
	az := int16(uint16(buf[4]) | uint16(buf[5])<<8)

	return imu.AccelSample{
		X: float64(ax) / d.lsbPerG,
		Y: float64(ay) / d.lsbPerG,
		Z: float64(az) / d.lsbPerG,
	}, nil
}

// Transport exposes the open transport, nil before the first init.
func (d *QMI8658) Transport() RegisterTransport { return d.tr }

// Close releases the transport. The device can be re-initialized later.
func (d *QMI8658) Close() error {
	d.ready = false
	if d.tr == nil {
		return nil
	}
	err := d.tr.Close()
	d.tr = nil
	return err
}
