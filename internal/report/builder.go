// Package report folds board lists and cards into the sprint Scrum report:
// cards and points per member, per list and for the whole report.
//
// A build never fails. Missing or malformed board data is reported through a
// DiagnosticSink and replaced by a zero or skip fallback.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"scrumtool/internal/board"
	"scrumtool/internal/logging"

	"github.com/google/uuid"
)

// Rounding selects how card points are split between members.
type Rounding string

const (
	// RoundCeil gives every member ceil(points / members).
	RoundCeil Rounding = "ceil"
	// RoundNone keeps fractional shares.
	RoundNone Rounding = "none"
)

// ParseRounding accepts "ceil", "none" and "" (ceil).
func ParseRounding(s string) (Rounding, error) {
	switch Rounding(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoundCeil:
		return RoundCeil, nil
	case RoundNone:
		return RoundNone, nil
	default:
		return "", fmt.Errorf("unknown rounding %q (want ceil or none)", s)
	}
}

// Options configures a Builder.
type Options struct {
	// FirstDoneList restricts the report to the contiguous tail of lists
	// starting at the list with this name. Empty means every list.
	FirstDoneList string

	Rounding Rounding

	// TrackLists keeps per-list tallies and rolls report totals up from the
	// lists' declared points. Without it, report points are the sum of the
	// card points processed.
	TrackLists bool

	// Origin prefixes relative card links in diagnostics.
	Origin string

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// DefaultOptions returns the board-wide report with ceil rounding.
func DefaultOptions() Options {
	return Options{
		Rounding:   RoundCeil,
		TrackLists: true,
	}
}

// Builder builds reports. A Builder holds no per-run state and may be reused.
type Builder struct {
	opts Options
	sink DiagnosticSink
}

// NewBuilder creates a Builder. A nil sink discards diagnostics; they are
// still recorded on the Report.
func NewBuilder(opts Options, sink DiagnosticSink) *Builder {
	if opts.Rounding == "" {
		opts.Rounding = RoundCeil
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	if sink == nil {
		sink = Discard
	}
	return &Builder{opts: opts, sink: sink}
}

// run carries the accumulators of one Build call.
type run struct {
	b      *Builder
	rep    *Report
	origin string
}

func (r *run) diagnose(d Diagnostic) {
	r.rep.Diagnostics = append(r.rep.Diagnostics, d)
	r.b.sink.Diagnose(d)
}

// Build aggregates lists into a new Report.
func (b *Builder) Build(lists []board.List) *Report {
	return b.build(lists, b.opts.Origin)
}

// BuildBoard is Build for a parsed board; the report carries the board title.
// A board captured from a live page supplies the link origin when Options
// has none.
func (b *Builder) BuildBoard(bd *board.Board) *Report {
	origin := b.opts.Origin
	if origin == "" {
		origin = bd.Origin
	}
	rep := b.build(bd.Lists, origin)
	rep.Board = bd.Title
	return rep
}

func (b *Builder) build(lists []board.List, origin string) *Report {
	r := &run{
		b:      b,
		origin: origin,
		rep: &Report{
			ID:          b.opts.NewID(),
			GeneratedAt: b.opts.Now(),
		},
	}

	done, found := doneLists(lists, b.opts.FirstDoneList)
	switch {
	case !found:
		r.diagnose(Diagnostic{
			Kind:    EmptyListSet,
			List:    b.opts.FirstDoneList,
			Message: fmt.Sprintf("First done list %q not found", b.opts.FirstDoneList),
		})
	case len(done) == 0:
		r.diagnose(Diagnostic{Kind: EmptyListSet, Message: "No lists to report on"})
	}

	for _, l := range done {
		if b.opts.TrackLists {
			r.trackedList(l)
		} else {
			r.flatList(l)
		}
	}

	if b.opts.TrackLists {
		r.mergeMembers()
	}
	return r.rep
}

// doneLists returns the contiguous tail of lists starting at the list named
// first. An empty name selects every list; an unknown name selects none.
func doneLists(lists []board.List, first string) ([]board.List, bool) {
	if first == "" {
		return lists, true
	}
	for i, l := range lists {
		if l.Name == first {
			return lists[i:], true
		}
	}
	return nil, false
}

func (r *run) trackedList(l board.List) {
	logging.Get(logging.CategoryReport).Debugf("Processing cards in list %q", l.Name)

	list := &List{Name: l.Name}
	list.AddPoints(r.listPoints(l))

	for _, c := range l.Cards {
		r.card(l.Name, c, list.Member)
		list.AddCard()
	}

	r.rep.AddList(list)
	r.rep.AddPoints(list.Points)
	r.rep.Cards += list.Cards
}

func (r *run) flatList(l board.List) {
	logging.Get(logging.CategoryReport).Debugf("Processing cards in list %q", l.Name)

	for _, c := range l.Cards {
		if points, ok := r.card(l.Name, c, r.rep.Member); ok {
			r.rep.AddPoints(points)
		}
		r.rep.AddCard()
	}
}

// card attributes one card to members obtained from lookup. It returns the
// card's declared points when they were usable.
func (r *run) card(listName string, c board.Card, lookup func(string) *Member) (float64, bool) {
	link := c.Link(r.origin)

	points, hasPoints := 0.0, false
	if c.HasPoints {
		if p, ok := board.ParsePoints(c.PointsText); ok {
			points, hasPoints = p, true
		} else {
			r.diagnose(Diagnostic{
				Kind:    MalformedPoints,
				List:    listName,
				Card:    link,
				Message: fmt.Sprintf("Card has malformed points %q: %s", c.PointsText, link),
			})
		}
	}

	if len(c.Members) == 0 {
		r.diagnose(Diagnostic{
			Kind:    MissingCardMembers,
			List:    listName,
			Card:    link,
			Message: "Card has no members: " + link,
		})
		return points, hasPoints
	}

	perMember := 0.0
	if hasPoints {
		perMember = r.pointsPerMember(points, len(c.Members))
	} else if !c.HasPoints {
		r.diagnose(Diagnostic{
			Kind:    MissingCardPoints,
			List:    listName,
			Card:    link,
			Message: "Card has no points: " + link,
		})
	}

	for _, name := range c.Members {
		m := lookup(name)
		m.AddPoints(perMember)
		m.AddCard()
	}
	return points, hasPoints
}

func (r *run) pointsPerMember(points float64, members int) float64 {
	share := points / float64(members)
	if r.b.opts.Rounding == RoundNone {
		return share
	}
	return math.Ceil(share)
}

func (r *run) listPoints(l board.List) float64 {
	if !l.HasPoints {
		r.diagnose(Diagnostic{
			Kind:    MissingListPoints,
			List:    l.Name,
			Message: "No points found for list " + l.Name,
		})
		return 0
	}
	p, ok := board.ParsePoints(l.PointsText)
	if !ok {
		r.diagnose(Diagnostic{
			Kind:    MalformedPoints,
			List:    l.Name,
			Message: fmt.Sprintf("List %s has malformed points %q", l.Name, l.PointsText),
		})
		return 0
	}
	return p
}

// mergeMembers folds list-scoped members into report-wide records. List
// records are copied, never shared with the report.
func (r *run) mergeMembers() {
	for _, l := range r.rep.Lists {
		for _, m := range l.Members {
			rm := r.rep.Member(m.Name)
			rm.AddPoints(m.Points)
			rm.Cards += m.Cards
		}
	}
}
