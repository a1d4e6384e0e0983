// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"
)

// fakeTransport is an in-memory register file.
type fakeTransport struct {
	regs    [256]byte
	writes  map[byte]byte
	readErr error
	closed  bool
}

func newFakeTransport() *fakeTransport {
	f := &fakeTransport{writes: map[byte]byte{}}
	f.regs[regWhoAmI] = qmi8658ChipID
	return f
}

func (f *fakeTransport) ReadRegisters(reg byte, n int) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]byte, n)
	copy(out, f.regs[int(reg):int(reg)+n])
	return out, nil
}

func (f *fakeTransport) WriteRegister(reg, value byte) error {
	f.writes[reg] = value
	f.regs[reg] = value
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) setAccel(x, y, z int16) {
	put := func(at int, v int16) {
		f.regs[at] = byte(uint16(v))
		f.regs[at+1] = byte(uint16(v) >> 8)
	}
	put(regAxL, x)
	put(regAxL+2, y)
	put(regAxL+4, z)
}

var errBus = errors.New("bus unavailable")
