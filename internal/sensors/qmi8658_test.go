// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQMI8658(t *testing.T) {
	Convey("Given a QMI8658 on a fake bus", t, func() {
		tr := newFakeTransport()
		opens := 0
		dev := NewQMI8658("test", func() (RegisterTransport, error) {
			opens++
			return tr, nil
		}, DefaultQMI8658Opts)

		Convey("Init configures the accelerometer", func() {
			So(dev.Init(), ShouldBeNil)
			So(dev.Ready(), ShouldBeTrue)
			So(tr.writes[regCtrl1], ShouldEqual, ctrl1AddrAutoInc)
			So(tr.writes[regCtrl2], ShouldEqual, 0x04)
			So(tr.writes[regCtrl5], ShouldEqual, 0x03)
			So(tr.writes[regCtrl7], ShouldEqual, ctrl7AccelEnable)

			Convey("and a second Init is a no-op", func() {
				tr.writes = map[byte]byte{}
				So(dev.Init(), ShouldBeNil)
				So(tr.writes, ShouldBeEmpty)
				So(opens, ShouldEqual, 1)
			})
		})

		Convey("ReadRaw scales counts to g", func() {
			tr.setAccel(16384, -8192, 0)
			s, err := dev.ReadRaw()
			So(err, ShouldBeNil)
			So(s.X, ShouldEqual, 1.0)
			So(s.Y, ShouldEqual, -0.5)
			So(s.Z, ShouldEqual, 0.0)
		})

		Convey("A wider range changes the scale", func() {
			dev = NewQMI8658("test", func() (RegisterTransport, error) { return tr, nil }, QMI8658Opts{AccelRange: 1, AccelODR: 0x04})
			tr.setAccel(8192, 0, 0)
			s, err := dev.ReadRaw()
			So(err, ShouldBeNil)
			So(s.X, ShouldEqual, 1.0)
			So(tr.writes[regCtrl2], ShouldEqual, 0x14)
		})

		Convey("A wrong chip id leaves the device uninitialized", func() {
			tr.regs[regWhoAmI] = 0x68
			err := dev.Init()
			So(errors.Is(err, ErrWrongChip), ShouldBeTrue)
			So(dev.Ready(), ShouldBeFalse)
			So(tr.closed, ShouldBeTrue)
		})

		Convey("A transport error during reads is returned", func() {
			So(dev.Init(), ShouldBeNil)
			tr.readErr = errBus
			_, err := dev.ReadRaw()
			So(errors.Is(err, errBus), ShouldBeTrue)
		})
	})

	Convey("Given a bus that is not there yet", t, func() {
		tr := newFakeTransport()
		available := false
		dev := NewQMI8658("late", func() (RegisterTransport, error) {
			if !available {
				return nil, errBus
			}
			return tr, nil
		}, DefaultQMI8658Opts)

		Convey("every read re-checks and reports ErrNotReady", func() {
			_, err := dev.ReadRaw()
			So(errors.Is(err, ErrNotReady), ShouldBeTrue)
			_, err = dev.ReadRaw()
			So(errors.Is(err, ErrNotReady), ShouldBeTrue)

			Convey("until the bus shows up", func() {
				available = true
				tr.setAccel(0, 16384, 0)
				s, err := dev.ReadRaw()
				So(err, ShouldBeNil)
				So(s.Y, ShouldEqual, 1.0)
				So(dev.Ready(), ShouldBeTrue)
			})
		})
	})
}

func TestDumpRegisters(t *testing.T) {
	Convey("DumpRegisters skips write-only registers", t, func() {
		tr := newFakeTransport()
		vals, err := DumpRegisters(tr)
		So(err, ShouldBeNil)
		So(vals, ShouldNotBeEmpty)
		So(vals[0].Name, ShouldEqual, "WHO_AM_I")
		So(vals[0].Value, ShouldEqual, qmi8658ChipID)
		for _, v := range vals {
			So(v.Access, ShouldNotEqual, "W")
		}
	})
}
