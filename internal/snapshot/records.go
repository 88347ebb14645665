package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Card is a library card record. Only the first card of an account is used.
type Card struct {
	DisplayName string `json:"displayName"`
	Token       struct {
		UserID string `json:"userId"`
	} `json:"token"`
}

// LoanRecord is one entry of the loans file.
type LoanRecord struct {
	ID          string `json:"id"`
	WorkAuthor  string `json:"workAuthor"`
	WorkTitle   string `json:"workTitle"`
	ReturnDate  string `json:"returnDate"`
	IsRenewable bool   `json:"isRenewable"`
}

// ReservationRecord is one entry of the reservations file.
type ReservationRecord struct {
	ID            string `json:"id"`
	WorkAuthor    string `json:"workAuthor"`
	WorkTitle     string `json:"workTitle"`
	ReservedFrom  string `json:"reservedFrom"`
	Status        string `json:"status"`
	LastFetchDate string `json:"lastFetchDate"`
	QueueNumber   int    `json:"queueNumber"`
}

// StatusFetchable marks a reservation that is waiting for pickup.
const StatusFetchable = "fetchable"

// ReadCard returns the first card of an account.
func (a Account) ReadCard() (*Card, error) {
	var cards []Card
	if err := readJSON(filepath.Join(a.Path, "cards"), &cards); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no cards for account %s", a.Username)
	}
	return &cards[0], nil
}

// ReadLoans returns the account's loans. A missing file means no loans.
func (a Account) ReadLoans() ([]LoanRecord, error) {
	var loans []LoanRecord
	if err := readOptionalJSON(filepath.Join(a.Path, "loans"), &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// ReadReservations returns the account's reservations.
func (a Account) ReadReservations() ([]ReservationRecord, error) {
	var res []ReservationRecord
	if err := readOptionalJSON(filepath.Join(a.Path, "reservations"), &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ReadDebts returns the account's debts as raw JSON values; their shape is
// not known.
func (a Account) ReadDebts() ([]json.RawMessage, error) {
	var debts []json.RawMessage
	if err := readOptionalJSON(filepath.Join(a.Path, "debts"), &debts); err != nil {
		return nil, err
	}
	return debts, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func readOptionalJSON(path string, v any) error {
	err := readJSON(path, v)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
