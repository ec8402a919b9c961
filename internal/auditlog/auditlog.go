// Package auditlog records every mutating billfold command in a CSV
// audit trail under logs/, so the git history and the log together
// explain how the ledger reached its current state.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp  time.Time
	Actor      string // os username of whoever ran the command
	Action     string // e.g. "txn_add", "import", "account_pay"
	Details    string
	TxnID      string // transaction affected, if any
	CommitHash string // git commit recording the change, if auto-commit is on
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,actor,action,details,txn_id,commit_hash"

const (
	numFields = 6
	logDir    = "logs"
	logFile   = "logs/audit-log.csv"
)

// NewEntry stamps an Entry with the current time and OS user.
func NewEntry(action, details, txnID string) Entry {
	actor := os.Getenv("USER")
	if actor == "" {
		actor = "unknown"
	}
	return Entry{
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		TxnID:     txnID,
	}
}

func marshal(e Entry) []string {
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.Actor,
		e.Action,
		e.Details,
		e.TxnID,
		e.CommitHash,
	}
}

func unmarshal(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[0], err)
	}

	return Entry{
		Timestamp:  ts,
		Actor:      record[1],
		Action:     record[2],
		Details:    record[3],
		TxnID:      record[4],
		CommitHash: record[5],
	}, nil
}

// Append writes entries to <dataDir>/logs/audit-log.csv, creating the
// file and header if needed.
func Append(dataDir string, entries ...Entry) error {
	if err := os.MkdirAll(filepath.Join(dataDir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dataDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(marshal(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dataDir>/logs/audit-log.csv, oldest
// first. Returns nil if the file does not exist.
func Read(dataDir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dataDir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
