// Package annotate colors date-bearing elements by how close their date is.
//
// Each element's text starts with a date token. The annotator computes the
// day-count from now until that date, classifies it into a Bucket, and
// rewrites the element's class and text. Scan is the pure core; Apply runs it
// against a parsed HTML document.
package annotate

import (
	"fmt"
	"time"
)

const (
	DefaultMarkerClass = "date"
	DefaultClassPrefix = "color-"

	// Padding replaces the bracketed count outside the display window.
	Padding = "    "
)

// Annotation is the outcome of scanning one date element.
type Annotation struct {
	Token  string
	Count  DayCount
	Bucket Bucket
	Class  string
	Text   string
	Err    error
}

// Annotator classifies date elements identified by a marker class.
type Annotator struct {
	MarkerClass string
	ClassPrefix string
	Location    *time.Location
}

// New creates an annotator. Empty arguments fall back to the defaults.
func New(markerClass, classPrefix string, loc *time.Location) *Annotator {
	if markerClass == "" {
		markerClass = DefaultMarkerClass
	}
	if classPrefix == "" {
		classPrefix = DefaultClassPrefix
	}
	if loc == nil {
		loc = time.Local
	}
	return &Annotator{MarkerClass: markerClass, ClassPrefix: classPrefix, Location: loc}
}

// ClassFor returns the full class attribute for a bucket.
func (a *Annotator) ClassFor(b Bucket) string {
	return a.MarkerClass + " " + a.ClassPrefix + string(b)
}

// Annotate computes the annotation for a single element text.
func (a *Annotator) Annotate(now time.Time, text string) Annotation {
	token := ExtractToken(text)
	ann := Annotation{Token: token}

	target, err := ParseDateToken(token, a.Location)
	if err != nil {
		ann.Err = err
	} else {
		ann.Count = DayCount{Days: DaysUntil(now, target), Valid: true}
	}

	ann.Bucket = Classify(ann.Count)
	ann.Class = a.ClassFor(ann.Bucket)
	if inDisplayWindow(ann.Count) {
		ann.Text = fmt.Sprintf("%s [%d]", token, ann.Count.Days)
	} else {
		ann.Text = token + Padding
	}
	return ann
}

// Scan annotates element texts in order. It never fails; unparseable tokens
// end up critical.
func (a *Annotator) Scan(now time.Time, texts []string) []Annotation {
	out := make([]Annotation, len(texts))
	for i, text := range texts {
		out[i] = a.Annotate(now, text)
	}
	return out
}
