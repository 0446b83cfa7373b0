// Package visual defines the Visualiser contract: the external-collaborator
// interface spec.md treats as out of scope, plus a minimal CSV-table
// implementation of it. Gantt chart and line-graph PNG rendering are left
// as interface methods only — a real renderer is not part of this system.
package visual

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/schedsim/schedsim/job"
)

// Visualiser consumes simulation output for rendering and persistence. It
// may create any parent directories its output paths need.
type Visualiser interface {
	// Gantt renders one run's completed job timeline, keyed by request id
	// (POWER_OFF for shutdown pseudo-jobs), to path.
	Gantt(completeJobs map[string][]*job.Job, path string) error
	// LineGraph renders a table of named series (e.g. epoch -> mean cost)
	// to path.
	LineGraph(records []map[string]float64, path string) error
	// CSV writes a table of records to path, with a header row drawn from
	// the first record's keys in sorted order.
	CSV(records []map[string]float64, path string) error
}

// TableVisualiser is a minimal Visualiser: every rendering method writes a
// plain CSV table, since Gantt and line-graph image rendering carry no
// design substance here.
type TableVisualiser struct{}

// New returns a TableVisualiser.
func New() *TableVisualiser {
	return &TableVisualiser{}
}

// Gantt flattens completeJobs into a per-fragment CSV: request id, kind,
// server count, start and end time, one row per Job fragment.
func (TableVisualiser) Gantt(completeJobs map[string][]*job.Job, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create gantt file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "kind", "server_count", "start_time", "end_time"}); err != nil {
		return errors.Wrap(err, "write gantt header")
	}

	ids := make([]string, 0, len(completeJobs))
	for id := range completeJobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, j := range completeJobs[id] {
			row := []string{
				id,
				kindName(j),
				strconv.Itoa(len(j.Servers)),
				strconv.FormatFloat(j.StartTime, 'g', -1, 64),
				strconv.FormatFloat(j.EndTime, 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return errors.Wrap(err, "write gantt row")
			}
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush gantt csv")
}

// LineGraph writes records as a CSV table; a real implementation would plot
// one line per numeric column against row index.
func (v TableVisualiser) LineGraph(records []map[string]float64, path string) error {
	return v.CSV(records, path)
}

// CSV writes records as a table, with a header drawn from the first
// record's keys in sorted order. Every record must share that key set.
func (TableVisualiser) CSV(records []map[string]float64, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("csv: no records to write")
	}

	header := make([]string, 0, len(records[0]))
	for k := range records[0] {
		header = append(header, k)
	}
	sort.Strings(header)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create csv file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = strconv.FormatFloat(rec[k], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush csv")
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return errors.Wrapf(os.MkdirAll(dir, 0755), "create directory %s", dir)
}

func kindName(j *job.Job) string {
	switch j.Kind() {
	case job.KindReconfiguration:
		return "reconfiguration"
	case job.KindPowerOff:
		return "power_off"
	default:
		return "normal"
	}
}
