package index

import "github.com/sajya/lucene/util"

// segCursor is one segment's position in a term merge: its term
// dictionary cursor and the term/info currently under it.
type segCursor struct {
	segIndex int
	reader   *TermDictReader
	term     Term
	info     TermInfo
}

func cursorLess(a, b *segCursor) bool {
	if a.term.Field != b.term.Field {
		return a.term.Field < b.term.Field
	}
	if a.term.Text != b.term.Text {
		return a.term.Text < b.term.Text
	}
	return a.segIndex < b.segIndex
}

// TermMerger merges several segments' ordered term streams into one
// globally sorted stream via a binary heap keyed by (field, text), used
// for whole-index term enumeration and for segment merging (spec §4.6).
type TermMerger struct {
	pq *util.PriorityQueue[*segCursor]
}

// NewTermMerger resets and seeds a cursor for every segment reader,
// skipping any with no terms at all.
func NewTermMerger(readers []*TermDictReader) (*TermMerger, error) {
	pq := util.NewPriorityQueue[*segCursor](cursorLess)
	for i, r := range readers {
		if err := r.ResetTermsStream(); err != nil {
			return nil, err
		}
		term, info, ok, err := r.NextTerm()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		pq.Push(&segCursor{segIndex: i, reader: r, term: term, info: info})
	}
	return &TermMerger{pq: pq}, nil
}

// Match is one segment's contribution to a merged term.
type Match struct {
	SegIndex int
	Info     TermInfo
}

// Next returns the next globally least term and every segment whose
// cursor currently sits on it, re-inserting each advanced cursor that
// still has terms remaining (spec §4.6 "pop yields the least cursor").
// A zero-valued Term with a nil Match slice signals exhaustion.
func (m *TermMerger) Next() (Term, []Match, error) {
	if m.pq.Empty() {
		return Term{}, nil, nil
	}
	first := m.pq.Pop()
	term := first.term
	matches := []Match{{SegIndex: first.segIndex, Info: first.info}}
	if err := m.advance(first); err != nil {
		return Term{}, nil, err
	}

	for !m.pq.Empty() && m.pq.Top().term == term {
		next := m.pq.Pop()
		matches = append(matches, Match{SegIndex: next.segIndex, Info: next.info})
		if err := m.advance(next); err != nil {
			return Term{}, nil, err
		}
	}
	return term, matches, nil
}

func (m *TermMerger) advance(c *segCursor) error {
	term, info, ok, err := c.reader.NextTerm()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	c.term, c.info = term, info
	m.pq.Push(c)
	return nil
}
