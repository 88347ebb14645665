// Package report builds the library loan report from snapshot directories.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/TobiSchelling/LibLoans/internal/snapshot"
)

// collector registers borrowers across snapshots.
type collector struct {
	byUserID   map[string]*Borrower
	byUsername map[string]*Borrower
	shortNames map[string]struct{}
}

// Collect reads all snapshots in baseDir. Current loans, reservations and
// debts come from the newest snapshot; history is every loan seen in older
// snapshots that is no longer current.
func Collect(baseDir string) (*Data, error) {
	snaps, err := snapshot.List(baseDir)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("no data found in %s", baseDir)
	}
	latest := snaps[len(snaps)-1]
	older := snaps[:len(snaps)-1]

	c := &collector{
		byUserID:   make(map[string]*Borrower),
		byUsername: make(map[string]*Borrower),
		shortNames: make(map[string]struct{}),
	}

	// Names from the newest snapshot win when assigning short names.
	if err := c.addBorrowers(latest); err != nil {
		return nil, err
	}
	for _, s := range older {
		if err := c.addBorrowers(s); err != nil {
			return nil, err
		}
	}

	data := &Data{Updated: latest.Time}

	current := make(map[string]Loan)
	if err := c.addLoans(current, latest); err != nil {
		return nil, err
	}
	history := make(map[string]Loan)
	for _, s := range older {
		if err := c.addLoans(history, s); err != nil {
			return nil, err
		}
	}
	for id := range current {
		delete(history, id)
	}

	data.Loans = sortedLoans(current, func(a, b Loan) int { return strings.Compare(a.ReturnDate, b.ReturnDate) })
	data.History = sortedLoans(history, func(a, b Loan) int { return strings.Compare(b.ReturnDate, a.ReturnDate) })

	reservations, err := c.reservations(latest)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		if r.Ready() {
			data.Ready = append(data.Ready, r)
		} else {
			data.Waiting = append(data.Waiting, r)
		}
	}
	sortReservations(data.Ready, func(a, b Reservation) int { return strings.Compare(b.LastFetchDate, a.LastFetchDate) })
	sortReservations(data.Waiting, func(a, b Reservation) int { return strings.Compare(a.ReservedFrom, b.ReservedFrom) })

	data.Debts, err = c.debts(latest)
	if err != nil {
		return nil, err
	}

	for _, b := range c.byUserID {
		data.Borrowers = append(data.Borrowers, b)
	}
	sort.Slice(data.Borrowers, func(i, j int) bool {
		return data.Borrowers[i].ShortName < data.Borrowers[j].ShortName
	})

	log.Printf("Collected %d loans, %d history, %d reservations from %d snapshots",
		len(data.Loans), len(data.History), len(reservations), len(snaps))
	return data, nil
}

func (c *collector) addBorrowers(s snapshot.Snapshot) error {
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		card, err := acc.ReadCard()
		if err != nil {
			return err
		}
		if b, ok := c.byUserID[card.Token.UserID]; ok {
			// Same person under another account directory name.
			if _, known := c.byUsername[acc.Username]; !known {
				c.byUsername[acc.Username] = b
			}
			continue
		}
		b := &Borrower{
			UserID:      card.Token.UserID,
			Username:    acc.Username,
			DisplayName: card.DisplayName,
			ShortName:   c.shortName(card.DisplayName),
		}
		c.byUserID[b.UserID] = b
		c.byUsername[acc.Username] = b
	}
	return nil
}

// shortName derives initials from a display name, adding a numeric suffix on
// collision. After 100 collisions the full display name is used.
func (c *collector) shortName(displayName string) string {
	var base strings.Builder
	for _, part := range strings.FieldsFunc(displayName, func(r rune) bool { return r == '-' || r == ' ' }) {
		r, _ := utf8.DecodeRuneInString(part)
		base.WriteRune(r)
	}

	candidates := []string{base.String()}
	for i := 0; i < 100; i++ {
		candidates = append(candidates, base.String()+strconv.Itoa(i))
	}
	for _, name := range candidates {
		if _, taken := c.shortNames[name]; !taken {
			c.shortNames[name] = struct{}{}
			return name
		}
	}
	return displayName
}

func (c *collector) borrower(acc snapshot.Account) (*Borrower, error) {
	b, ok := c.byUsername[acc.Username]
	if !ok {
		return nil, fmt.Errorf("could not find borrower for %s", acc.Path)
	}
	return b, nil
}

// addLoans adds the loans of s to set. The first version of a loan seen wins.
func (c *collector) addLoans(set map[string]Loan, s snapshot.Snapshot) error {
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		b, err := c.borrower(acc)
		if err != nil {
			return err
		}
		records, err := acc.ReadLoans()
		if err != nil {
			return err
		}
		for _, rec := range records {
			if _, seen := set[rec.ID]; seen {
				continue
			}
			set[rec.ID] = Loan{
				ID:         rec.ID,
				Borrower:   b,
				Author:     rec.WorkAuthor,
				Title:      rec.WorkTitle,
				ReturnDate: ScrubDate(rec.ReturnDate),
				Renewable:  rec.IsRenewable,
			}
		}
	}
	return nil
}

func (c *collector) reservations(s snapshot.Snapshot) ([]Reservation, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []Reservation
	for _, acc := range accounts {
		b, err := c.borrower(acc)
		if err != nil {
			return nil, err
		}
		records, err := acc.ReadReservations()
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			r := Reservation{
				ID:           rec.ID,
				Borrower:     b,
				Author:       rec.WorkAuthor,
				Title:        rec.WorkTitle,
				ReservedFrom: ScrubDate(rec.ReservedFrom),
				QueueNumber:  rec.QueueNumber,
			}
			if rec.Status == snapshot.StatusFetchable {
				r.LastFetchDate = ScrubDate(rec.LastFetchDate)
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *collector) debts(s snapshot.Snapshot) ([]Debt, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	var out []Debt
	for _, acc := range accounts {
		b, err := c.borrower(acc)
		if err != nil {
			return nil, err
		}
		raw, err := acc.ReadDebts()
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			continue
		}
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encoding debts for %s: %w", acc.Username, err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, encoded, "", "  "); err != nil {
			return nil, fmt.Errorf("formatting debts for %s: %w", acc.Username, err)
		}
		out = append(out, Debt{ShortName: b.ShortName, Count: len(raw), JSON: pretty.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortName < out[j].ShortName })
	return out, nil
}

// ScrubDate drops the midnight and end-of-day time parts the library API
// appends to dates.
func ScrubDate(s string) string {
	s = strings.ReplaceAll(s, "T00:00:00", "")
	return strings.ReplaceAll(s, "T23:59:59", "")
}

// sortedLoans orders loans by date (using cmpDate), then borrower, author, title.
func sortedLoans(set map[string]Loan, cmpDate func(a, b Loan) int) []Loan {
	loans := make([]Loan, 0, len(set))
	for _, l := range set {
		loans = append(loans, l)
	}
	sort.Slice(loans, func(i, j int) bool {
		a, b := loans[i], loans[j]
		if c := cmpDate(a, b); c != 0 {
			return c < 0
		}
		return lessTail(a.Borrower, b.Borrower, a.Author, b.Author, a.Title, b.Title, a.ID, b.ID)
	})
	return loans
}

func sortReservations(rs []Reservation, cmpDate func(a, b Reservation) int) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if c := cmpDate(a, b); c != 0 {
			return c < 0
		}
		return lessTail(a.Borrower, b.Borrower, a.Author, b.Author, a.Title, b.Title, a.ID, b.ID)
	})
}

// lessTail breaks ties by borrower short name, author, title and finally id.
func lessTail(ba, bb *Borrower, authorA, authorB, titleA, titleB, idA, idB string) bool {
	if ba.ShortName != bb.ShortName {
		return ba.ShortName < bb.ShortName
	}
	if authorA != authorB {
		return authorA < authorB
	}
	if titleA != titleB {
		return titleA < titleB
	}
	return idA < idB
}
