// Command sweep drives a wideband spectrum sweep collection and feeds the
// resulting samples into one of the available exporters.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"

	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-sql-driver/mysql"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/hb9tf/hackrfsweep/export"
	"github.com/hb9tf/hackrfsweep/filter"
	"github.com/hb9tf/hackrfsweep/hackrf"
	"github.com/hb9tf/hackrfsweep/rtlsdr"
	"github.com/hb9tf/hackrfsweep/sdr"

	// Blind import support for sqlite3 used by sql.go.
	_ "github.com/mattn/go-sqlite3"
)

// Flags
var (
	identifier          = flag.String("id", "", "unique identifier of source instance (defaults to a random UUID)")
	lowFreq             = flag.Int64("lowFreq", 2_400_000_000, "lower frequency boundary in Hz")
	highFreq            = flag.Int64("highFreq", 2_500_000_000, "upper frequency boundary in Hz")
	binSize             = flag.Int64("binSize", 1_000_000, "size of the bin in Hz")
	integrationInterval = flag.Duration("integrationInterval", 5*time.Second, "duration to aggregate samples")
	sdrType             = flag.String("sdr", hackrf.SourceName, "SDR to use (one of: hackrf, rtl_sdr)")
	simulate            = flag.Bool("simulate", false, "when using the hackrf SDR, synthesize IQ data with the built-in simulator (also used when this flag is off, as no hardware device is included)")
	output              = flag.String("output", "csv", "Export mechanism to use (one of: csv, sqlite, mysql, spectre, elastic, datastore)")

	// SQLite / MySQL
	sqliteFile        = flag.String("sqliteFile", "/tmp/spectre", "File path of the sqlite DB file to use.")
	mysqlServer       = flag.String("mysqlServer", "127.0.0.1:3306", "MySQL TCP server endpoint to connect to (IP/DNS and port).")
	mysqlUser         = flag.String("mysqlUser", "", "MySQL DB user.")
	mysqlPasswordFile = flag.String("mysqlPasswordFile", "", "Path to the file containing the password for the MySQL user.")
	mysqlDBName       = flag.String("mysqlDBName", "spectre", "Name of the DB to use.")

	// Spectre Server
	spectreServer        = flag.String("spectreServer", "ws://localhost:8443", "URL scheme, address and port of the spectre server.")
	spectreServerSamples = flag.Int("spectreServerSamples", 0, "Defines how many samples should be sent to the server at once.")

	// Elastic
	esEndpoints = flag.String("esEndpoints", "http://localhost:9200", "Comma separated list of endpoints for elastic export.")
	esUser      = flag.String("esUser", "elastic", "Username to use for elastic export.")
	esPwdFile   = flag.String("esPwdFile", "", "File to read password for elastic export from.")

	// GCP
	gcpProject           = flag.String("gcpProject", "", "GCP project")
	gcpServiceAccountKey = flag.String("gcpSvcAcctKey", "", "GCP service account key file (JSON)")
)

func main() {
	ctx := context.Background()
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	flag.Parse()

	if *identifier == "" {
		*identifier = uuid.NewString()
	}

	// SDR setup.
	var radio sdr.SDR
	switch strings.ToLower(*sdrType) {
	case hackrf.SourceName:
		h := &hackrf.SDR{Identifier: *identifier}
		if *simulate {
			h.Device = hackrf.NewSimulator()
		}
		radio = h
	case "rtl_sdr", "rtlsdr":
		radio = &rtlsdr.SDR{Identifier: *identifier}
	default:
		glog.Exitf("%q is not a supported SDR type, pick one of: hackrf, rtl_sdr", *sdrType)
	}
	opts := &sdr.Options{
		LowFreq:             *lowFreq,
		HighFreq:            *highFreq,
		BinSize:             *binSize,
		IntegrationInterval: *integrationInterval,
	}

	// Exporter setup.
	var exporter export.Exporter
	switch strings.ToLower(*output) {
	case "csv":
		exporter = &export.CSV{}
	case "sqlite":
		db, err := sql.Open("sqlite3", *sqliteFile)
		if err != nil {
			glog.Exitf("unable to open sqlite DB %q: %s", *sqliteFile, err)
		}
		exporter = &export.SQL{DB: db, Driver: "sqlite3"}
	case "mysql":
		pass, err := os.ReadFile(*mysqlPasswordFile)
		if err != nil {
			glog.Exitf("unable to read MySQL password file %q: %s\n", *mysqlPasswordFile, err)
		}
		cfg := mysql.Config{
			User:   *mysqlUser,
			Passwd: strings.TrimSpace(string(pass)),
			Net:    "tcp",
			Addr:   *mysqlServer,
			DBName: *mysqlDBName,
		}
		db, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			glog.Exitf("unable to open MySQL DB %q: %s", *mysqlServer, err)
		}
		db.SetConnMaxLifetime(3 * time.Minute)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		exporter = &export.SQL{DB: db, Driver: "mysql"}
	case "spectre":
		exporter = &export.SpectreServer{
			Server:            *spectreServer,
			SendSamplesAmount: *spectreServerSamples,
		}
	case "elastic":
		pwd, err := os.ReadFile(*esPwdFile)
		if err != nil {
			glog.Exitf("unable to read password file %q for Elastic export: %s", *esPwdFile, err)
		}
		cfg := elasticsearch.Config{
			Addresses: strings.Split(*esEndpoints, ","),
			Username:  *esUser,
			Password:  strings.TrimSpace(string(pwd)),
		}
		esClient, err := elasticsearch.NewClient(cfg)
		if err != nil {
			glog.Exitf("failed to create elastic client: %s", err)
		}
		exporter = &export.Elastic{Client: esClient}
	case "datastore":
		dsClient, err := datastore.NewClient(ctx, *gcpProject, option.WithCredentialsFile(*gcpServiceAccountKey))
		if err != nil {
			glog.Exitf("failed to create datastore client: %s", err)
		}
		defer dsClient.Close()
		exporter = &export.DataStore{Client: dsClient}
	default:
		glog.Exitf("%q is not a supported export method, pick one of: csv, sqlite, mysql, spectre, elastic, datastore", *output)
	}

	// Run. Samples flow from the radio through a frequency filter, keeping
	// only the requested [lowFreq, highFreq] window, before reaching the
	// exporter.
	rawSamples := make(chan sdr.Sample)
	go func() {
		if err := radio.Sweep(opts, rawSamples); err != nil {
			glog.Fatal(err)
		}
	}()

	filtered := make(chan sdr.Sample)
	go func() {
		defer close(filtered)
		if err := filter.Filter(rawSamples, filtered, []filter.Filterer{
			&filter.FilterFreq{FreqLow: *lowFreq, FreqHigh: *highFreq},
		}); err != nil {
			glog.Fatal(err)
		}
	}()

	if err := exporter.Write(ctx, filtered); err != nil {
		glog.Fatal(err)
	}

	glog.Flush()
}
