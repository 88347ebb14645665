package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/TobiSchelling/LibLoans/internal/testutil"
)

func buildData(t *testing.T) *Data {
	t.Helper()
	base := t.TempDir()

	anna := testutil.Account{Username: "anna", UserID: "u1", DisplayName: "Anna Berg"}
	arvid := testutil.Account{Username: "arvid", UserID: "u2", DisplayName: "Arvid Björk"}

	oldAnna := anna
	oldAnna.Loans = []map[string]any{
		testutil.Loan("L1", "Tove Jansson", "Finn Family Moomintroll", "2023-12-01T23:59:59"),
		testutil.Loan("L2", "Selma Lagerlöf", "Nils Holgersson", "2023-12-20T23:59:59"),
	}
	testutil.WriteSnapshot(t, base, "2023-12-15T08:00:00.000", oldAnna, arvid)

	newAnna := anna
	newAnna.Loans = []map[string]any{
		testutil.Loan("L2", "Selma Lagerlöf", "Nils Holgersson", "2024-01-10T23:59:59"),
		testutil.Loan("L3", "Astrid Lindgren", "Ronia", "2024-01-05T00:00:00"),
	}
	newAnna.Reservations = []map[string]any{
		testutil.Reservation("R1", "Kerstin Ekman", "Blackwater", "2023-11-01T00:00:00", "fetchable", "2024-01-03T00:00:00", 0),
		testutil.Reservation("R2", "Moberg", "The Emigrants", "2023-12-01T00:00:00", "waiting", "2024-02-01T00:00:00", 4),
	}
	newArvid := arvid
	newArvid.Loans = []map[string]any{
		testutil.Loan("L4", "Henning Mankell", "Faceless Killers", "2024-01-05T23:59:59"),
	}
	newArvid.Debts = []any{map[string]any{"amount": 20}, map[string]any{"amount": 5}}
	testutil.WriteSnapshot(t, base, "2024-01-01T09:30:12.345", newAnna, newArvid)

	data, err := Collect(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return data
}

func loanIDs(loans []Loan) []string {
	var ids []string
	for _, l := range loans {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestCollect(t *testing.T) {
	data := buildData(t)

	if want := time.Date(2024, 1, 1, 9, 30, 12, 345000000, time.UTC); !data.Updated.Equal(want) {
		t.Errorf("expected updated %v, got %v", want, data.Updated)
	}

	// Same date: tie broken by borrower short name (AB before AB0).
	if diff := cmp.Diff([]string{"L3", "L4", "L2"}, loanIDs(data.Loans)); diff != "" {
		t.Errorf("loan order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"L1"}, loanIDs(data.History)); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if data.Loans[0].ReturnDate != "2024-01-05" {
		t.Errorf("expected scrubbed return date, got %q", data.Loans[0].ReturnDate)
	}

	if len(data.Ready) != 1 || data.Ready[0].ID != "R1" || data.Ready[0].LastFetchDate != "2024-01-03" {
		t.Errorf("unexpected ready reservations: %+v", data.Ready)
	}
	if len(data.Waiting) != 1 || data.Waiting[0].LastFetchDate != "" {
		t.Errorf("expected waiting reservation without fetch date: %+v", data.Waiting)
	}

	if data.DebtCount() != 2 || len(data.Debts) != 1 {
		t.Errorf("expected 2 debts for one borrower, got %d in %d", data.DebtCount(), len(data.Debts))
	}

	var names []string
	for _, b := range data.Borrowers {
		names = append(names, b.ShortName+"="+b.DisplayName)
	}
	if diff := cmp.Diff([]string{"AB=Anna Berg", "AB0=Arvid Björk"}, names); diff != "" {
		t.Errorf("borrower mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectNoData(t *testing.T) {
	if _, err := Collect(t.TempDir()); err == nil {
		t.Error("expected error for empty data directory")
	}
}

func TestShortNameCollisions(t *testing.T) {
	c := &collector{shortNames: make(map[string]struct{})}
	got := []string{
		c.shortName("Anna-Karin Berg"),
		c.shortName("Anders Kalle Bo"),
		c.shortName("Åsa Öberg"),
		c.shortName(""),
	}
	want := []string{"AKB", "AKB0", "ÅÖ", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("short names mismatch (-want +got):\n%s", diff)
	}
}

func TestShortNameExhausted(t *testing.T) {
	c := &collector{shortNames: make(map[string]struct{})}
	for i := 0; i < 101; i++ {
		c.shortName("Anna Berg")
	}
	if got := c.shortName("Anna Berg"); got != "Anna Berg" {
		t.Errorf("expected display name fallback, got %q", got)
	}
}

func TestGroupBy(t *testing.T) {
	groups := GroupBy([]string{"a1", "a2", "b1", "a3"}, func(s string) byte { return s[0] })
	var got [][]string
	for _, g := range groups {
		got = append(got, g.Items)
	}
	want := [][]string{{"a1", "a2"}, {"b1"}, {"a3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if GroupBy([]int(nil), func(i int) int { return i }) != nil {
		t.Error("expected nil groups for empty input")
	}
}

func TestScrubDate(t *testing.T) {
	for in, want := range map[string]string{
		"2024-01-05T00:00:00": "2024-01-05",
		"2024-01-05T23:59:59": "2024-01-05",
		"2024-01-05T12:00:00": "2024-01-05T12:00:00",
	} {
		if got := ScrubDate(in); got != want {
			t.Errorf("ScrubDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	data := buildData(t)
	data.RefreshSeconds = 3600

	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := buf.String()

	for _, want := range []string{
		"Last updated 2024-01-01 kl 09:30",
		`<span class="date">2024-01-05    </span>`,
		`<span class="color-past">2023-12-01    </span>`,
		"Debts (2)",
		"Loans (3)",
		"History (1)",
		"Ready for pickup (1)",
		"Reservations (1)",
		"Arvid Björk",
		`content="3600"`,
		"color-critical",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in rendered report", want)
		}
	}
	if strings.Count(body, `class="date"`) != 4 {
		t.Errorf("expected 4 date-marked spans (3 loans, 1 pickup), got %d", strings.Count(body, `class="date"`))
	}
}
