package report

import (
	"encoding/json"
	"time"
)

// Member is one person's tally for a report run.
type Member struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Cards  int     `json:"cards"`
}

// AddCard increments the card counter.
func (m *Member) AddCard() {
	m.Cards++
}

// AddPoints adds to the points counter.
func (m *Member) AddPoints(points float64) {
	m.Points += points
}

// memberSet keeps members in first-sighting order with lookup by name.
type memberSet struct {
	order []*Member
	index map[string]*Member
}

func (s *memberSet) get(name string) *Member {
	if s.index == nil {
		s.index = make(map[string]*Member)
	}
	if m, ok := s.index[name]; ok {
		return m
	}
	m := &Member{Name: name}
	s.index[name] = m
	s.order = append(s.order, m)
	return m
}

// adopt rebuilds the set around decoded members.
func (s *memberSet) adopt(members []*Member) {
	s.order = members
	s.index = make(map[string]*Member, len(members))
	for _, m := range members {
		s.index[m.Name] = m
	}
}

// List is the tally for one board list.
type List struct {
	Name    string    `json:"name"`
	Points  float64   `json:"points"`
	Cards   int       `json:"cards"`
	Members []*Member `json:"members"`

	members memberSet
}

// AddCard increments the card counter.
func (l *List) AddCard() {
	l.Cards++
}

// AddPoints adds to the points counter.
func (l *List) AddPoints(points float64) {
	l.Points += points
}

// Member returns the list-scoped record for name, creating it on first use.
func (l *List) Member(name string) *Member {
	m := l.members.get(name)
	l.Members = l.members.order
	return m
}

// Report is the result of one Build call.
type Report struct {
	ID          string       `json:"id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Board       string       `json:"board,omitempty"`
	Points      float64      `json:"points"`
	Cards       int          `json:"cards"`
	Lists       []*List      `json:"lists"`
	Members     []*Member    `json:"members"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	members memberSet
}

// AddCard increments the card counter.
func (r *Report) AddCard() {
	r.Cards++
}

// AddPoints adds to the points counter.
func (r *Report) AddPoints(points float64) {
	r.Points += points
}

// AddList appends a list tally.
func (r *Report) AddList(l *List) {
	r.Lists = append(r.Lists, l)
}

// Member returns the report-wide record for name, creating it on first use.
func (r *Report) Member(name string) *Member {
	m := r.members.get(name)
	r.Members = r.members.order
	return m
}

// FindMember looks a report member up by name.
func (r *Report) FindMember(name string) (*Member, bool) {
	for _, m := range r.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// FindList looks a list up by name.
func (r *Report) FindList(name string) (*List, bool) {
	for _, l := range r.Lists {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes a list and restores member lookup.
func (l *List) UnmarshalJSON(data []byte) error {
	type plain List
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = List(p)
	l.members.adopt(l.Members)
	return nil
}

// UnmarshalJSON decodes a report, such as one read back from the archive,
// and restores member lookup.
func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Report(p)
	r.members.adopt(r.Members)
	return nil
}
