// Package snapshot reads timestamped snapshot directories of library account data.
//
// A snapshot is a directory named by its UTC timestamp (2006-01-02T15:04:05.000)
// holding one subdirectory per account. Each account directory contains JSON
// files named cards, loans, reservations and debts.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// NoDataAge is reported by TimeSinceLastUpdate when no snapshot exists.
const NoDataAge = 100 * 24 * time.Hour

const inProgressSuffix = ".inprogress"

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Snapshot is one timestamped capture of all accounts.
type Snapshot struct {
	Name string
	Path string
	Time time.Time
}

// Account is one account directory inside a snapshot.
type Account struct {
	Username string
	Path     string
}

// ParseTimestamp parses a snapshot directory name as a UTC timestamp.
func ParseTimestamp(name string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, name, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a snapshot timestamp: %q", name)
}

// FormatTimestamp formats t as a snapshot directory name.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000")
}

// List returns the completed snapshots in baseDir, oldest first.
func List(baseDir string) ([]Snapshot, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if !e.IsDir() || strings.HasSuffix(e.Name(), inProgressSuffix) {
			continue
		}
		t, err := ParseTimestamp(e.Name())
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{Name: e.Name(), Path: filepath.Join(baseDir, e.Name()), Time: t})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Time.Before(snaps[j].Time) })
	return snaps, nil
}

// TimeSinceLastUpdate returns how long ago the newest snapshot was taken.
func TimeSinceLastUpdate(baseDir string, now time.Time) (time.Duration, error) {
	snaps, err := List(baseDir)
	if err != nil {
		return 0, err
	}
	if len(snaps) == 0 {
		return NoDataAge, nil
	}
	return now.Sub(snaps[len(snaps)-1].Time), nil
}

// Accounts returns the account directories of a snapshot, sorted by name.
func (s Snapshot) Accounts() ([]Account, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", s.Name, err)
	}

	var accounts []Account
	for _, e := range entries {
		if e.IsDir() {
			accounts = append(accounts, Account{Username: e.Name(), Path: filepath.Join(s.Path, e.Name())})
		}
	}
	return accounts, nil
}
