package pipeline

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TobiSchelling/LibLoans/internal/annotate"
	"github.com/TobiSchelling/LibLoans/internal/config"
	"github.com/TobiSchelling/LibLoans/internal/page"
	"github.com/TobiSchelling/LibLoans/internal/report"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a pipeline run.
type Result struct {
	Steps []StepResult
}

// Err returns the first step error, if any.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return fmt.Errorf("%s: %w", s.Name, s.Err)
		}
	}
	return nil
}

// Pipeline wires the report renderer and the date annotator to pages on disk.
type Pipeline struct {
	cfg       *config.Config
	annotator *annotate.Annotator

	// mu serializes cycles so a timer firing and a file change never
	// rewrite the same page at once.
	mu sync.Mutex
}

// New creates a new pipeline.
func New(cfg *config.Config) (*Pipeline, error) {
	loc, err := cfg.Annotate.Location()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		annotator: annotate.New(cfg.Annotate.MarkerClass, cfg.Annotate.ClassPrefix, loc),
	}, nil
}

// AnnotatePage loads input, annotates it as of now and writes it to output.
func (p *Pipeline) AnnotatePage(input, output string, now time.Time) (annotate.Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := page.Load(input)
	if err != nil {
		return annotate.Summary{}, err
	}
	sum := p.annotator.Apply(doc, now)
	if err := page.Write(doc, output); err != nil {
		return sum, err
	}
	log.Printf("Annotated %d date elements in %s (%s)", sum.Elements, output, FormatSummary(sum))
	return sum, nil
}

// RenderReport collects snapshots from dataDir, renders the report, annotates
// it as of now and writes it to output.
func (p *Pipeline) RenderReport(dataDir, output string, now time.Time) *Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := &Result{}

	log.Println("Step 1/3: Collecting snapshots...")
	data, err := report.Collect(dataDir)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Collect", Err: err})
		return r
	}
	data.RefreshSeconds = int(p.cfg.Report.Refresh / time.Second)
	r.Steps = append(r.Steps, StepResult{
		Name: "Collect",
		Summary: fmt.Sprintf("%d loans, %d in history, %d reservations, %d borrowers",
			len(data.Loans), len(data.History), len(data.Ready)+len(data.Waiting), len(data.Borrowers)),
	})

	log.Println("Step 2/3: Rendering report...")
	var buf bytes.Buffer
	if err := report.Render(&buf, data); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Render", Err: err})
		return r
	}
	doc, err := page.Parse(&buf)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Render", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{Name: "Render", Summary: fmt.Sprintf("Rendered snapshot of %s", data.Updated.Format(time.RFC3339))})

	log.Println("Step 3/3: Annotating dates...")
	sum := p.annotator.Apply(doc, now)
	if err := page.Write(doc, output); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Annotate", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Annotate",
		Summary: fmt.Sprintf("%d date elements (%s), written to %s", sum.Elements, FormatSummary(sum), output),
	})
	return r
}

// FormatSummary renders bucket counts in severity order.
func FormatSummary(sum annotate.Summary) string {
	var buf bytes.Buffer
	for i, b := range annotate.Buckets {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%d %s", sum.Buckets[b], b)
	}
	if sum.Unparseable > 0 {
		fmt.Fprintf(&buf, ", %d unparseable", sum.Unparseable)
	}
	return buf.String()
}
