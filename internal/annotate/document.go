package annotate

import (
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Summary counts the outcome of one Apply pass.
type Summary struct {
	Elements    int
	Unparseable int
	Buckets     map[Bucket]int
}

// Apply annotates every element carrying the marker class in doc, in document
// order. Element texts are read before any element is rewritten, so nested
// markers see their original text.
func (a *Annotator) Apply(doc *goquery.Document, now time.Time) Summary {
	sel := doc.Find("." + a.MarkerClass)

	texts := make([]string, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		texts[i] = s.Text()
	})

	anns := a.Scan(now, texts)

	sum := Summary{Elements: len(anns), Buckets: make(map[Bucket]int, len(Buckets))}
	sel.Each(func(i int, s *goquery.Selection) {
		ann := anns[i]
		s.SetAttr("class", ann.Class)
		s.SetText(ann.Text)
		sum.Buckets[ann.Bucket]++
		if ann.Err != nil {
			sum.Unparseable++
		}
	})
	return sum
}
