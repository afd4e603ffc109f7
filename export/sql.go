package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"

	"github.com/hb9tf/hackrfsweep/sdr"
)

const (
	sqlSampleCountInfo = 1000

	// sqliteCreateTableTmpl and mysqlCreateTableTmpl differ in their
	// auto-increment syntax, identifier quoting and column types;
	// everything downstream of table creation is
	// driver-agnostic through database/sql's placeholder args.
	sqliteCreateTableTmpl = `CREATE TABLE IF NOT EXISTS spectre (
		"ID"           INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"Identifier"   TEXT NOT NULL,
		"Source"       TEXT NOT NULL,
		"FreqCenter"   INTEGER,
		"FreqLow"      INTEGER,
		"FreqHigh"     INTEGER,
		"DBHigh"       REAL,
		"DBLow"        REAL,
		"DBAvg"        REAL,
		"SampleCount"  INTEGER,
		"Start"        INTEGER,
		"End"          INTEGER
	);`
	mysqlCreateTableTmpl = `CREATE TABLE IF NOT EXISTS spectre (
		ID           INTEGER NOT NULL PRIMARY KEY AUTO_INCREMENT,
		Identifier   TEXT NOT NULL,
		Source       TEXT NOT NULL,
		FreqCenter   BIGINT,
		FreqLow      BIGINT,
		FreqHigh     BIGINT,
		DBHigh       DOUBLE,
		DBLow        DOUBLE,
		DBAvg        DOUBLE,
		SampleCount  BIGINT,
		Start        BIGINT,
		End          BIGINT
	);`
	sqlInsertSampleTmpl = `INSERT INTO spectre (
		Identifier,
		Source,
		FreqCenter,
		FreqLow,
		FreqHigh,
		DBHigh,
		DBLow,
		DBAvg,
		SampleCount,
		Start,
		End
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
)

// SQL is a database/sql-backed Exporter. Driver selects which
// CREATE TABLE dialect to use; it must match the driver the DB handle was
// opened with ("sqlite3" or "mysql"). Everything past table creation goes
// through database/sql placeholders, so one Write implementation serves
// both drivers the collector can be pointed at.
type SQL struct {
	DB     *sql.DB
	Driver string
}

func (s *SQL) Write(ctx context.Context, samples <-chan sdr.Sample) error {
	if err := s.createTableIfNotExists(); err != nil {
		return fmt.Errorf("unable to create table: %s", err)
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for sample := range samples {
		counts["total"] += 1
		if err := sqlInsertSample(s.DB, sample); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing in %s DB: %s\n", s.Driver, err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%sqlSampleCountInfo == 0 {
			glog.Infof("Sample export counts: %+v\n", counts)
		}
	}

	return nil
}

func (s *SQL) createTableIfNotExists() error {
	tmpl := sqliteCreateTableTmpl
	if s.Driver == "mysql" {
		tmpl = mysqlCreateTableTmpl
	}
	statement, err := s.DB.Prepare(tmpl)
	if err != nil {
		return err
	}
	_, err = statement.Exec()
	return err
}

func sqlInsertSample(db *sql.DB, s sdr.Sample) error {
	statement, err := db.Prepare(sqlInsertSampleTmpl)
	if err != nil {
		return err
	}
	_, err = statement.Exec(s.Identifier, s.Source, s.FreqCenter, s.FreqLow, s.FreqHigh, s.DBHigh, s.DBLow, s.DBAvg, s.SampleCount, s.Start.UnixMilli(), s.End.UnixMilli())
	return err
}
