package scsiq

import (
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	log := hclog.NewNullLogger()

	t.Run("capture and replay round trip", func(t *testing.T) {
		r := require.New(t)

		path := filepath.Join(t.TempDir(), "capture.trace")

		tracer, err := NewTracer(log, path)
		r.NoError(err)

		ft := &fakeTransport{respond: streamReply(24, 5, 10, 20)}

		dev := NewDevice(ft, WithLogger(log), WithTracer(tracer))

		live, err := dev.GetStreamStatus().DescriptorLength(3).Issue()
		r.NoError(err)

		r.NoError(tracer.Close())

		rt, err := OpenReplay(log, path)
		r.NoError(err)
		r.Equal(1, rt.Remaining())

		replayed, err := NewDevice(rt, WithLogger(log)).
			GetStreamStatus().
			DescriptorLength(3).
			Issue()
		r.NoError(err)

		r.Equal(live, replayed)
		r.Equal(0, rt.Remaining())
	})

	t.Run("failures are captured too", func(t *testing.T) {
		r := require.New(t)

		path := filepath.Join(t.TempDir(), "capture.trace")

		tracer, err := NewTracer(log, path)
		r.NoError(err)

		ft := &fakeTransport{respond: func(req Request) Result {
			return Result{
				Status: StatusCheckCondition,
				Sense:  fixedSense(SenseNotReady, 0x04, 0x01),
				Data:   req.Data(),
			}
		}}

		dev := NewDevice(ft, WithLogger(log), WithTracer(tracer))

		_, err = dev.GetStreamStatus().DescriptorLength(1).Issue()
		r.Error(err)

		r.NoError(tracer.Close())

		rt, err := OpenReplay(log, path)
		r.NoError(err)

		_, err = NewDevice(rt, WithLogger(log)).
			GetStreamStatus().
			DescriptorLength(1).
			Issue()

		var se *SenseError
		r.ErrorAs(err, &se)
		r.Equal(SenseNotReady, se.Sense.Key)
	})

	t.Run("exhausted replay is a transport error", func(t *testing.T) {
		r := require.New(t)

		path := filepath.Join(t.TempDir(), "capture.trace")

		tracer, err := NewTracer(log, path)
		r.NoError(err)
		r.NoError(tracer.Close())

		rt, err := OpenReplay(log, path)
		r.NoError(err)
		r.Equal(0, rt.Remaining())

		_, err = NewDevice(rt, WithLogger(log)).
			GetStreamStatus().
			DescriptorLength(1).
			Issue()

		var te *TransportError
		r.ErrorAs(err, &te)
	})
}
