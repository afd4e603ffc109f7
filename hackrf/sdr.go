package hackrf

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/hb9tf/hackrfsweep/sdr"
	"github.com/hb9tf/hackrfsweep/sweep"
)

const SourceName = "hackrf"

// SDR adapts the sweep engine to the sdr.SDR contract. It drives a
// sweep.State over Device (a Simulator unless the caller overrides it)
// with a binary sink feeding an in-process pipe, decodes the sink's own
// wire records back into sdr.Sample and aggregates them into fixed
// integration-interval buckets, the same role the subprocess-driven
// predecessor filled by scanning hackrf_sweep's stdout text lines.
type SDR struct {
	Identifier string
	// Device overrides the peripheral backing this SDR. A nil Device
	// runs against NewSimulator(), so Sweep works without hardware.
	Device sweep.Device

	buckets map[int64]sdr.Sample
}

func (s SDR) Name() string {
	return SourceName
}

func (s *SDR) Sweep(opts *sdr.Options, samples chan<- sdr.Sample) error {
	s.buckets = map[int64]sdr.Sample{}

	device := s.Device
	if device == nil {
		device = NewSimulator()
	}

	pr, pw := io.Pipe()
	st := sweep.NewState(device)
	if err := st.Init(sweep.DefaultSampleRateHz, sweep.DefaultSampleRateHz); err != nil {
		return fmt.Errorf("init sweep engine: %w", err)
	}
	if err := st.SetOutput(sweep.OutputModeBinary, sweep.OutputTypeFile, pw); err != nil {
		return fmt.Errorf("set output: %w", err)
	}
	rng := sweep.FrequencyRange{
		MinMHz: uint16(opts.LowFreq / sweep.FreqOneMHz),
		MaxMHz: uint16(opts.HighFreq / sweep.FreqOneMHz),
	}
	if err := st.SetRange([]sweep.FrequencyRange{rng}); err != nil {
		return fmt.Errorf("set range: %w", err)
	}
	if err := st.SetupFFT(sweep.PlanEstimate, uint64(opts.BinSize)); err != nil {
		return fmt.Errorf("setup fft: %w", err)
	}

	rawSamples := make(chan sdr.Sample)
	go func() {
		defer close(rawSamples)
		for {
			if err := s.scanRecord(pr, rawSamples); err != nil {
				if err != io.EOF && err != io.ErrClosedPipe {
					glog.Warningf("error parsing sweep record: %s\n", err)
				}
				return
			}
		}
	}()

	fmt.Printf("Running hackrf sweep engine: %+v\n", opts)
	if err := st.Start(0); err != nil {
		pw.Close()
		return fmt.Errorf("start sweep: %w", err)
	}

	// Output aggregated samples in regular ticks.
	ticker := time.NewTicker(opts.IntegrationInterval)
	go func() {
		for range ticker.C {
			// This is not concurrency friendly... Buuut it's ok: we're
			// creating a new bucket to store new records in and operate
			// on the old one afterwards. Since we aggregate, we won't
			// miss much. We can't use mutexes as this loop here doesn't
			// get a lock.
			old := s.buckets
			s.buckets = map[int64]sdr.Sample{}
			for _, sample := range old {
				samples <- sample
			}
		}
	}()

	// Aggregate samples in frequency buckets.
	for sample := range rawSamples {
		stored, ok := s.buckets[sample.FreqCenter]
		if !ok {
			s.buckets[sample.FreqCenter] = sample
			continue
		}
		stored.End = sample.End
		stored.DBAvg = (stored.DBAvg*float64(stored.SampleCount) + sample.DBAvg*float64(sample.SampleCount)) / float64(stored.SampleCount+sample.SampleCount)
		if sample.DBLow < stored.DBLow {
			stored.DBLow = sample.DBLow
		}
		if sample.DBHigh > stored.DBHigh {
			stored.DBHigh = sample.DBHigh
		}
		stored.SampleCount += sample.SampleCount
		s.buckets[sample.FreqCenter] = stored
	}

	ticker.Stop()
	return st.Close()
}

// scanRecord decodes one binary sink record and fans it out into
// one sdr.Sample per power bin.
func (s *SDR) scanRecord(r io.Reader, out chan<- sdr.Sample) error {
	hzLow, hzHigh, pwr, err := sweep.ReadBinaryRecord(r)
	if err != nil {
		return err
	}
	if len(pwr) == 0 {
		return nil
	}
	binWidth := int64(hzHigh-hzLow) / int64(len(pwr))
	now := time.Now()
	for i, db := range pwr {
		low := int64(hzLow) + int64(i)*binWidth
		high := low + binWidth
		out <- sdr.Sample{
			Identifier:  s.Identifier,
			Source:      s.Name(),
			FreqCenter:  (low + high) / 2,
			FreqLow:     low,
			FreqHigh:    high,
			DBLow:       float64(db),
			DBHigh:      float64(db),
			DBAvg:       float64(db),
			SampleCount: 1,
			Start:       now,
			End:         now,
		}
	}
	return nil
}
