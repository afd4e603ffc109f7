package main

/*
This application renders a waterfall image from samples collected into a
sqlite database (as written by the sqlite exporter).

Note: This is HIGHLY experimental. You've been warned.
*/

import (
	"database/sql"
	"flag"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/hb9tf/hackrfsweep/extraction"

	// Blind import support for sqlite3 used by extraction's queries.
	_ "github.com/mattn/go-sqlite3"
)

const timeFmt = "2006-01-02T15:04:05"

// Flags
var (
	sqliteFile   = flag.String("sqliteFile", "/tmp/spectre", "File path of the sqlite DB file to use.")
	source       = flag.String("source", "hackrf", "Source type, e.g. rtl_sdr or hackrf.")
	identifier   = flag.String("identifier", "%", "SQL LIKE pattern for the collector identifier to render.")
	startFreq    = flag.Int64("startFreq", 0, "Select samples starting with this frequency in Hz.")
	endFreq      = flag.Int64("endFreq", math.MaxInt64, "Select samples up to this frequency in Hz.")
	startTimeRaw = flag.String("startTime", "2000-01-02T15:04:05", "Select samples collected after this time. Format: 2006-01-02T15:04:05")
	endTimeRaw   = flag.String("endTime", "2100-01-02T15:04:05", "Select samples collected before this time. Format: 2006-01-02T15:04:05")
	imgPath      = flag.String("imgPath", "/tmp/out.jpg", "Path where the rendered image should be written to.")
	imgWidth     = flag.Int("imgWidth", 0, "Width of output image in pixels. 0 picks the widest resolution the data supports.")
	imgHeight    = flag.Int("imgHeight", 0, "Height of output image in pixels. 0 picks the tallest resolution the data supports.")
	addGrid      = flag.Bool("grid", true, "Overlay a frequency/time axis grid on the rendered image.")
)

func main() {
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	flag.Parse()

	startTime, err := time.Parse(timeFmt, *startTimeRaw)
	if err != nil {
		glog.Fatalf("unable to parse startTime (value: %q, format: %q): %s", *startTimeRaw, timeFmt, err)
	}
	endTime, err := time.Parse(timeFmt, *endTimeRaw)
	if err != nil {
		glog.Fatalf("unable to parse endTime (value: %q, format: %q): %s", *endTimeRaw, timeFmt, err)
	}

	db, err := sql.Open("sqlite3", *sqliteFile)
	if err != nil {
		glog.Fatalf("unable to open sqlite DB %q: %s", *sqliteFile, err)
	}

	result, err := extraction.Render(db, &extraction.RenderRequest{
		Filter: &extraction.FilterOptions{
			SDR:        *source,
			Identifier: *identifier,
			StartFreq:  *startFreq,
			EndFreq:    *endFreq,
			StartTime:  startTime,
			EndTime:    endTime,
		},
		Image: &extraction.ImageOptions{
			Width:   *imgWidth,
			Height:  *imgHeight,
			AddGrid: *addGrid,
		},
	})
	if err != nil {
		glog.Fatalf("unable to render image: %s", err)
	}

	glog.Infof("source metadata: %+v", result.SourceMeta)
	glog.Infof("image metadata: %+v", result.ImageMeta)

	f, err := os.Create(*imgPath)
	if err != nil {
		glog.Fatalf("unable to create output file %q: %s", *imgPath, err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(*imgPath, ".png"):
		err = png.Encode(f, result.Image)
	case strings.HasSuffix(*imgPath, ".jpg"), strings.HasSuffix(*imgPath, ".jpeg"):
		err = jpeg.Encode(f, result.Image, &jpeg.Options{Quality: jpeg.DefaultQuality})
	default:
		glog.Fatalf("unsupported image extension for %q, use .png or .jpg", *imgPath)
	}
	if err != nil {
		glog.Fatalf("unable to write image to %q: %s", *imgPath, err)
	}
}
