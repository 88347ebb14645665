package report

import "time"

// Borrower is the person behind one or more account directories.
type Borrower struct {
	UserID      string
	Username    string
	DisplayName string
	ShortName   string
}

// Loan is a borrowed item. Loans are identified by ID.
type Loan struct {
	ID         string
	Borrower   *Borrower
	Author     string
	Title      string
	ReturnDate string
	Renewable  bool
}

// Reservation is a reserved item. LastFetchDate is set only while the item
// waits for pickup.
type Reservation struct {
	ID            string
	Borrower      *Borrower
	Author        string
	Title         string
	ReservedFrom  string
	LastFetchDate string
	QueueNumber   int
}

// Ready reports whether the reservation can be picked up.
func (r Reservation) Ready() bool {
	return r.LastFetchDate != ""
}

// Debt holds one borrower's debts as pretty-printed JSON.
type Debt struct {
	ShortName string
	Count     int
	JSON      string
}

// Data is everything the report shows.
type Data struct {
	Updated   time.Time
	Loans     []Loan
	History   []Loan
	Ready     []Reservation
	Waiting   []Reservation
	Debts     []Debt
	Borrowers []*Borrower

	// RefreshSeconds, when positive, asks the browser to reload the page.
	RefreshSeconds int
}

// DebtCount returns the total number of debt entries.
func (d *Data) DebtCount() int {
	var n int
	for _, debt := range d.Debts {
		n += debt.Count
	}
	return n
}
