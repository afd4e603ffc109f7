package export

import (
	"context"

	"github.com/hb9tf/hackrfsweep/sdr"
)

type Exporter interface {
	Write(context.Context, <-chan sdr.Sample) error
}
