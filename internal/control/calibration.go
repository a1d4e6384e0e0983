// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

// Stillness thresholds for the per-axis standard deviation, in g.
const (
	stillStdGood = 0.005
	stillStdBad  = 0.03

	// Confidence floor, only a failed run reports zero.
	confFloor = 0.05
)

// ErrNoSamples means every read of a calibration run failed.
var ErrNoSamples = errors.New("calibration: no samples read")

// Calibration is the outcome of one calibration run.
type Calibration struct {
	Bias       Bias          `json:"bias"`
	StdDev     Bias          `json:"stddev"`
	Samples    int           `json:"samples"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration_ns"`
	Confidence float64       `json:"confidence"`
	At         time.Time     `json:"at"`
}

// Calibrator measures the static bias by averaging a burst of samples
// taken while the device is assumed still.
type Calibrator struct {
	src      imu.AccelReader
	samples  int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewCalibrator(src imu.AccelReader, samples int, interval time.Duration) *Calibrator {
	return &Calibrator{src: src, samples: samples, interval: interval, sleep: sleepCtx}
}

// Calibrate blocks for roughly samples*interval. Failed reads are skipped
// and the mean is taken over the successful ones. Cancelling ctx aborts
// the run with ctx.Err().
func (c *Calibrator) Calibrate(ctx context.Context) (Calibration, error) {
	log.Infof("calibration: starting (%d samples, %s apart)", c.samples, c.interval)
	start := time.Now()

	var sumX, sumY, sumXX, sumYY float64
	n, failed := 0, 0
	for i := 0; i < c.samples; i++ {
		if err := ctx.Err(); err != nil {
			return Calibration{}, err
		}
		s, err := c.src.ReadRaw()
		if err != nil {
			failed++
		} else {
			n++
			sumX += s.X
			sumY += s.Y
			sumXX += s.X * s.X
			sumYY += s.Y * s.Y
		}
		if err := c.sleep(ctx, c.interval); err != nil {
			return Calibration{}, err
		}
	}

	if n == 0 {
		return Calibration{Failed: failed}, ErrNoSamples
	}

	fn := float64(n)
	mean := Bias{X: sumX / fn, Y: sumY / fn}
	std := Bias{
		X: math.Sqrt(math.Max(0, sumXX/fn-mean.X*mean.X)),
		Y: math.Sqrt(math.Max(0, sumYY/fn-mean.Y*mean.Y)),
	}

	res := Calibration{
		Bias:       mean,
		StdDev:     std,
		Samples:    n,
		Failed:     failed,
		Duration:   time.Since(start),
		Confidence: StillnessConfidence(std),
		At:         time.Now(),
	}

	log.WithFields(log.Fields{
		"bias_x":     res.Bias.X,
		"bias_y":     res.Bias.Y,
		"confidence": res.Confidence,
		"failed":     failed,
	}).Info("calibration: done")
	if res.Confidence < 0.5 {
		log.Warnf("calibration: device moved during calibration (std X=%.4f Y=%.4f g)", std.X, std.Y)
	}
	return res, nil
}

// StillnessConfidence maps the worst axis standard deviation to [confFloor, 1].
func StillnessConfidence(std Bias) float64 {
	worst := math.Max(std.X, std.Y)
	switch {
	case worst <= stillStdGood:
		return 1
	case worst >= stillStdBad:
		return confFloor
	}
	t := (worst - stillStdGood) / (stillStdBad - stillStdGood)
	return math.Max(confFloor, 1-t)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
