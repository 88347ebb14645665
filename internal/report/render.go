package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/TobiSchelling/LibLoans/internal/page"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTmpl = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"style": func() template.CSS { return template.CSS(page.Stylesheet) },
	"updated": func(t time.Time) string {
		return t.Format("2006-01-02 kl 15:04")
	},
	"groupLoans": func(loans []Loan) []Group[Loan, *Borrower] {
		return GroupBy(loans, func(l Loan) *Borrower { return l.Borrower })
	},
	"groupReservations": func(rs []Reservation) []Group[Reservation, *Borrower] {
		return GroupBy(rs, func(r Reservation) *Borrower { return r.Borrower })
	},
}).ParseFS(templateFS, "templates/report.html"))

// Render writes the report page. Due dates are emitted as date-marked spans
// for the annotator; historic dates are not.
func Render(w io.Writer, data *Data) error {
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
