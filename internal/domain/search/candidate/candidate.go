package candidate

import "strconv"

// Source identifies the sub-search that produced a candidate.
type Source string

// Source constants.
const (
	Dense  Source = "dense"
	Sparse Source = "sparse"
)

// Payload holds the verse-locator fields stored alongside each indexed point.
type Payload struct {
	QuranID   int64
	SurahID   int
	AyahID    int
	JuzID     int
	SurahType string
}

// Candidate is a single retrieval hit. Values are never mutated after creation.
type Candidate struct {
	id        string
	score     float64
	scored    bool
	synthetic bool
	source    Source
	payload   Payload
}

// New creates a candidate carrying a real similarity score.
func New(id string, score float64, source Source, payload Payload) Candidate {
	return Candidate{id: id, score: score, scored: true, source: source, payload: payload}
}

// NewUnscored creates a candidate whose sub-search returned no similarity value.
func NewUnscored(id string, source Source, payload Payload) Candidate {
	return Candidate{id: id, source: source, payload: payload}
}

// WithSyntheticScore returns a copy carrying a display-only ordering score.
func (c *Candidate) WithSyntheticScore(score float64) Candidate {
	out := *c
	out.score = score
	out.scored = true
	out.synthetic = true
	return out
}

// ID returns the point identifier.
func (c *Candidate) ID() string { return c.id }

// Score returns the similarity score (or a synthetic ordering score, see Synthetic).
func (c *Candidate) Score() float64 { return c.score }

// HasScore reports whether a score is present.
func (c *Candidate) HasScore() bool { return c.scored }

// Synthetic reports whether the score was synthesized for ordering rather than measured.
func (c *Candidate) Synthetic() bool { return c.synthetic }

// Source returns the producing sub-search.
func (c *Candidate) Source() Source { return c.source }

// Payload returns the verse-locator fields.
func (c *Candidate) Payload() Payload { return c.payload }

// LocatorID returns the id joining this candidate to its canonical text.
// Prefers the payload quran_id and falls back to a numeric point id.
func (c *Candidate) LocatorID() (int64, bool) {
	if c.payload.QuranID > 0 {
		return c.payload.QuranID, true
	}
	if n, err := strconv.ParseInt(c.id, 10, 64); err == nil && n > 0 {
		return n, true
	}
	return 0, false
}
