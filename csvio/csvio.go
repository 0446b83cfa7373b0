// Package csvio encodes and decodes Scheduler stats and configs as CSV,
// the on-disk format --train-swarm and --run-benchmarks write their
// results in.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/schedsim/schedsim/scheduler"
)

// StatsHeader is the fixed column order for a SchedulerStats CSV.
var StatsHeader = []string{
	"start_time", "end_time", "work_duration", "reconfig_count", "power_off_count",
	"min_stretch_time", "max_stretch_time", "mean_stretch_time", "stdev_stretch_time",
	"average_power_norm", "cost",
}

// WriteStats writes header and one row per Stats to w.
func WriteStats(w io.Writer, stats []scheduler.Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StatsHeader); err != nil {
		return errors.Wrap(err, "write stats header")
	}
	for _, s := range stats {
		row := []string{
			formatFloat(s.StartTime),
			formatFloat(s.EndTime),
			formatFloat(s.WorkDuration),
			strconv.Itoa(s.ReconfigCount),
			strconv.Itoa(s.PowerOffCount),
			formatFloat(s.MinStretchTime),
			formatFloat(s.MaxStretchTime),
			formatFloat(s.MeanStretchTime),
			formatFloat(s.StdevStretchTime),
			formatFloat(s.AveragePowerNorm),
			formatFloat(s.Cost),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write stats row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush stats csv")
}

// ReadStats parses a SchedulerStats CSV previously written by WriteStats.
func ReadStats(r io.Reader) ([]scheduler.Stats, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read stats csv")
	}
	if len(records) == 0 {
		return nil, errors.New("stats csv: empty file")
	}

	out := make([]scheduler.Stats, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) != len(StatsHeader) {
			return nil, errors.Errorf("stats csv: expected %d columns, got %d", len(StatsHeader), len(row))
		}
		s, err := parseStatsRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseStatsRow(row []string) (scheduler.Stats, error) {
	var s scheduler.Stats
	var err error
	if s.StartTime, err = parseFloat(row[0]); err != nil {
		return s, err
	}
	if s.EndTime, err = parseFloat(row[1]); err != nil {
		return s, err
	}
	if s.WorkDuration, err = parseFloat(row[2]); err != nil {
		return s, err
	}
	if s.ReconfigCount, err = strconv.Atoi(row[3]); err != nil {
		return s, errors.Wrap(err, "parse reconfig_count")
	}
	if s.PowerOffCount, err = strconv.Atoi(row[4]); err != nil {
		return s, errors.Wrap(err, "parse power_off_count")
	}
	if s.MinStretchTime, err = parseFloat(row[5]); err != nil {
		return s, err
	}
	if s.MaxStretchTime, err = parseFloat(row[6]); err != nil {
		return s, err
	}
	if s.MeanStretchTime, err = parseFloat(row[7]); err != nil {
		return s, err
	}
	if s.StdevStretchTime, err = parseFloat(row[8]); err != nil {
		return s, err
	}
	if s.AveragePowerNorm, err = parseFloat(row[9]); err != nil {
		return s, err
	}
	if s.Cost, err = parseFloat(row[10]); err != nil {
		return s, err
	}
	return s, nil
}

// WriteConfig writes a single-row CSV: header of Config's declared field
// names, then one row of values, in declaration order.
func WriteConfig(w io.Writer, config scheduler.Config) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduler.Fields[:]); err != nil {
		return errors.Wrap(err, "write config header")
	}
	m := config.ToMap()
	row := make([]string, len(scheduler.Fields))
	for i, field := range scheduler.Fields {
		row[i] = formatFloat(m[field])
	}
	if err := cw.Write(row); err != nil {
		return errors.Wrap(err, "write config row")
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush config csv")
}

// ReadConfig parses a single-row Config CSV previously written by
// WriteConfig.
func ReadConfig(r io.Reader) (scheduler.Config, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return scheduler.Config{}, errors.Wrap(err, "read config csv")
	}
	if len(records) != 2 {
		return scheduler.Config{}, errors.Errorf("config csv: expected 1 header + 1 data row, got %d rows", len(records))
	}
	header, row := records[0], records[1]
	if len(header) != len(row) {
		return scheduler.Config{}, errors.New("config csv: header/row column count mismatch")
	}
	m := make(map[string]float64, len(header))
	for i, field := range header {
		v, err := parseFloat(row[i])
		if err != nil {
			return scheduler.Config{}, err
		}
		m[field] = v
	}
	return scheduler.ConfigFromMap(m)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	return v, errors.Wrapf(err, "parse float %q", s)
}
