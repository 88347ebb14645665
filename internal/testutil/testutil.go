// Package testutil provides shared test helpers for building snapshot directories.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Account describes the files written for one account in a snapshot.
type Account struct {
	Username     string
	UserID       string
	DisplayName  string
	Loans        []map[string]any
	Reservations []map[string]any
	Debts        []any
}

// Loan builds a loan record.
func Loan(id, author, title, returnDate string) map[string]any {
	return map[string]any{
		"id":          id,
		"workAuthor":  author,
		"workTitle":   title,
		"returnDate":  returnDate,
		"isRenewable": true,
	}
}

// Reservation builds a reservation record.
func Reservation(id, author, title, reservedFrom, status, lastFetchDate string, queue int) map[string]any {
	return map[string]any{
		"id":            id,
		"workAuthor":    author,
		"workTitle":     title,
		"reservedFrom":  reservedFrom,
		"status":        status,
		"lastFetchDate": lastFetchDate,
		"queueNumber":   queue,
	}
}

// WriteSnapshot creates baseDir/name with one directory per account.
func WriteSnapshot(t *testing.T, baseDir, name string, accounts ...Account) string {
	t.Helper()
	dir := filepath.Join(baseDir, name)
	for _, a := range accounts {
		accDir := filepath.Join(dir, a.Username)
		if err := os.MkdirAll(accDir, 0o755); err != nil {
			t.Fatal(err)
		}
		cards := []map[string]any{{
			"displayName": a.DisplayName,
			"token":       map[string]any{"userId": a.UserID},
		}}
		writeJSON(t, filepath.Join(accDir, "cards"), cards)
		writeJSON(t, filepath.Join(accDir, "loans"), orEmpty(a.Loans))
		writeJSON(t, filepath.Join(accDir, "reservations"), orEmpty(a.Reservations))
		debts := a.Debts
		if debts == nil {
			debts = []any{}
		}
		writeJSON(t, filepath.Join(accDir, "debts"), debts)
	}
	if len(accounts) == 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func orEmpty(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
