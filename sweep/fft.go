package sweep

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// PlanStrategy names how hard an FFT backend may search for a fast
// transform plan at setup time. BuildFFTContext accepts a strategy but does
// not pass it to the FFT backend, so the choice has no effect on the plans
// it builds.
type PlanStrategy int

const (
	PlanEstimate PlanStrategy = iota
	PlanMeasure
	PlanPatient
	PlanExhaustive
)

const (
	minFFTSize   = 4
	maxFFTSize   = 8180
	defaultSeedN = 20
)

// FFTContext holds the windowed forward transform state for one FFT size,
// plus the optional inverse-transform reassembly buffers used only in IFFT
// output mode.
type FFTContext struct {
	size     int
	binWidth float64
	window   []float64

	forwardPlan *algofft.Plan[complex128]
	in          []complex128
	out         []complex128
	pwr         []float64

	inversePlan *algofft.Plan[complex128]
	ifftIn      []complex128
	ifftOut     []complex128
}

// deriveFFTSize applies the reserved-band size rule: seed at 20 bins when
// no bin width is requested, reject anything outside [4, 8180], then push
// the size up to the next value satisfying (N+4)%8==0 so slice boundaries
// land on whole bins. The post-increment size is not re-checked against
// the upper bound, matching the reference implementation.
func deriveFFTSize(sampleRateHz uint64, requestedBinWidthHz uint64) (int, error) {
	n := defaultSeedN
	if requestedBinWidthHz != 0 {
		n = int(sampleRateHz / requestedBinWidthHz)
	}
	if n < minFFTSize || n > maxFFTSize {
		return 0, ErrInvalidFFTSize
	}
	for (n+4)%8 != 0 {
		n++
	}
	return n, nil
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// BuildFFTContext derives the FFT size from sampleRateHz/requestedBinWidthHz,
// builds the Hann window and plans the forward transform. When ifft is
// true it also plans the inverse transform sized to stepCount tuning
// steps' worth of bins (one whole sweep), for wideband reassembly.
func BuildFFTContext(sampleRateHz uint64, requestedBinWidthHz uint64, stepCount int, ifft bool, strategy PlanStrategy) (*FFTContext, error) {
	n, err := deriveFFTSize(sampleRateHz, requestedBinWidthHz)
	if err != nil {
		return nil, err
	}

	ctx := &FFTContext{
		size:     n,
		binWidth: float64(sampleRateHz) / float64(n),
		window:   hannWindow(n),
		in:       make([]complex128, n),
		out:      make([]complex128, n),
		pwr:      make([]float64, n),
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, err
	}
	ctx.forwardPlan = plan
	// Warm-up execute so any lazy plan construction happens here, off the
	// transfer hot path.
	if err := ctx.forwardPlan.Forward(ctx.out, ctx.in); err != nil {
		return nil, err
	}

	if ifft {
		m := n * stepCount
		ctx.ifftIn = make([]complex128, m)
		ctx.ifftOut = make([]complex128, m)
		invPlan, err := algofft.NewPlan64(m)
		if err != nil {
			return nil, err
		}
		ctx.inversePlan = invPlan
		if err := ctx.inversePlan.Inverse(ctx.ifftOut, ctx.ifftIn); err != nil {
			return nil, err
		}
	}

	return ctx, nil
}

// Destroy releases the transform plans and buffers. Safe to call on a
// nil-fielded zero value.
func (c *FFTContext) Destroy() {
	c.forwardPlan = nil
	c.inversePlan = nil
	c.in = nil
	c.out = nil
	c.pwr = nil
	c.ifftIn = nil
	c.ifftOut = nil
	c.window = nil
}

// Size returns the number of bins this context was built for.
func (c *FFTContext) Size() int { return c.size }

// BinWidthHz returns the frequency width, in Hz, of one FFT bin.
func (c *FFTContext) BinWidthHz() float64 { return c.binWidth }
