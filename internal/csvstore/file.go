package csvstore

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	AppointmentsFile = "appointments.csv"
	SchedulesFile    = "schedules.csv"
	LeavesFile       = "leaves.csv"
	StaffFile        = "staff.csv"
	PatientsFile     = "patients.csv"
)

// table is one CSV file with a fixed header. Saves replace the whole file.
type table struct {
	mu     sync.Mutex
	path   string
	header []string
	// alwaysQuote marks data columns written in quotes even when the value does not need them.
	alwaysQuote map[int]bool
}

func newTable(dir, name string, header ...string) *table {
	return &table{path: filepath.Join(dir, name), header: header}
}

// read returns the data rows. A missing file reads as empty.
func (t *table) read() ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(t.header)
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", t.path, err)
	}
	if !sameHeader(head, t.header) {
		return nil, fmt.Errorf("%s: unexpected header %q, want %q", t.path, strings.Join(head, ","), strings.Join(t.header, ","))
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	return rows, nil
}

// write replaces the file with header plus rows. The header is written even when rows
// is empty. Data goes to a temp file first so readers never see a partial file.
func (t *table) write(rows [][]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", t.path, err)
	}
	defer os.Remove(tmp.Name())

	if err := t.encode(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replace %s: %w", t.path, err)
	}
	return nil
}

func (t *table) encode(out io.Writer, rows [][]string) error {
	if len(t.alwaysQuote) == 0 {
		w := csv.NewWriter(out)
		if err := w.Write(t.header); err != nil {
			return err
		}
		return w.WriteAll(rows)
	}

	// csv.Writer only quotes when it has to, so forced columns are encoded by hand.
	w := bufio.NewWriter(out)
	writeRecord(w, t.header, nil)
	for _, row := range rows {
		writeRecord(w, row, t.alwaysQuote)
	}
	return w.Flush()
}

func writeRecord(w *bufio.Writer, fields []string, force map[int]bool) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		if !force[i] && !needsQuotes(field) {
			w.WriteString(field)
			continue
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

func needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	if field == `\.` || strings.ContainsAny(field, ",\"\r\n") {
		return true
	}
	return field[0] == ' ' || field[0] == '\t'
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if strings.TrimPrefix(strings.TrimSpace(got[i]), "\ufeff") != want[i] {
			return false
		}
	}
	return true
}

func rowError(path string, line int, err error) error {
	return fmt.Errorf("%s row %d: %w", filepath.Base(path), line, err)
}
