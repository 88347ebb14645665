package annotate

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const testPage = `<!DOCTYPE html><html><body>
<table>
<tr><td><span id="a" class="date">2024-01-05    </span></td></tr>
<tr><td><span id="b" class="date color-long">2024-01-01 [7]</span></td></tr>
<tr><td><span id="c" class="date">2099-01-01 (reminder)</span></td></tr>
<tr><td><span id="d" class="color-past">2023-06-01    </span></td></tr>
</table>
</body></html>`

func parseDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return doc
}

func TestApply(t *testing.T) {
	doc := parseDoc(t, testPage)
	a := New("", "", time.UTC)

	sum := a.Apply(doc, testNow)
	if sum.Elements != 3 {
		t.Errorf("expected 3 elements, got %d", sum.Elements)
	}
	if sum.Buckets[Urgent] != 1 || sum.Buckets[Critical] != 1 || sum.Buckets[Long] != 1 {
		t.Errorf("unexpected bucket counts: %v", sum.Buckets)
	}

	checks := []struct {
		id, class, text string
	}{
		{"a", "date color-urgent", "2024-01-05 [4]"},
		{"b", "date color-critical", "2024-01-01 [0]"},
		{"c", "date color-long", "2099-01-01    "},
		{"d", "color-past", "2023-06-01    "},
	}
	for _, c := range checks {
		s := doc.Find("#" + c.id)
		if got := s.AttrOr("class", ""); got != c.class {
			t.Errorf("#%s: expected class %q, got %q", c.id, c.class, got)
		}
		if got := s.Text(); got != c.text {
			t.Errorf("#%s: expected text %q, got %q", c.id, c.text, got)
		}
	}
}

func TestApplyTwiceIsStable(t *testing.T) {
	doc := parseDoc(t, testPage)
	a := New("", "", time.UTC)

	a.Apply(doc, testNow)
	first, err := doc.Html()
	if err != nil {
		t.Fatalf("failed to render html: %v", err)
	}
	a.Apply(doc, testNow)
	second, err := doc.Html()
	if err != nil {
		t.Fatalf("failed to render html: %v", err)
	}

	if first != second {
		t.Errorf("second pass changed the document:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestApplyUnparseable(t *testing.T) {
	doc := parseDoc(t, `<p><span class="date">TBD</span></p>`)
	sum := New("", "", time.UTC).Apply(doc, testNow)
	if sum.Unparseable != 1 {
		t.Errorf("expected 1 unparseable element, got %d", sum.Unparseable)
	}
	if got := doc.Find("span").AttrOr("class", ""); got != "date color-critical" {
		t.Errorf("expected critical class, got %q", got)
	}
}

func TestApplyNoElements(t *testing.T) {
	doc := parseDoc(t, `<p>nothing to see</p>`)
	sum := New("", "", time.UTC).Apply(doc, testNow)
	if sum.Elements != 0 {
		t.Errorf("expected no elements, got %d", sum.Elements)
	}
}
