package progression

import "slices"

// IDSet is a set of opaque ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, dropping empty ones.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// ProgressRecord lists the lessons a learner completed within one track.
type ProgressRecord struct {
	TrackID          string
	CompletedLessons []string
}

// Progression is the server-owned progression state of one user, as last
// reported by the API.
type Progression struct {
	Enrolled  []string
	Completed []string
	Records   []ProgressRecord
}

// Record returns the first progress record for trackID.
func (p Progression) Record(trackID string) (ProgressRecord, bool) {
	for _, r := range p.Records {
		if r.TrackID == trackID {
			return r, true
		}
	}
	return ProgressRecord{}, false
}

// IsEnrolled reports whether trackID is among the enrolled tracks.
func (p Progression) IsEnrolled(trackID string) bool {
	return slices.Contains(p.Enrolled, trackID)
}

// IsCompleted reports whether the server marked trackID as completed.
func (p Progression) IsCompleted(trackID string) bool {
	return slices.Contains(p.Completed, trackID)
}

// CompletedSet returns the completed track ids as a set.
func (p Progression) CompletedSet() IDSet {
	return NewIDSet(p.Completed...)
}

// Clone returns a deep copy.
func (p Progression) Clone() Progression {
	out := Progression{
		Enrolled:  slices.Clone(p.Enrolled),
		Completed: slices.Clone(p.Completed),
	}
	if p.Records != nil {
		out.Records = make([]ProgressRecord, len(p.Records))
		for i, r := range p.Records {
			out.Records[i] = ProgressRecord{
				TrackID:          r.TrackID,
				CompletedLessons: slices.Clone(r.CompletedLessons),
			}
		}
	}
	return out
}

// Field selects a sub-record of Progression.
type Field uint8

const (
	FieldEnrolled Field = 1 << iota
	FieldCompleted
	FieldRecords
)

// Update carries authoritative sub-records returned by a mutating API
// call. Only the sub-records flagged in Fields are replaced.
type Update struct {
	Fields    Field
	Enrolled  []string
	Completed []string
	Records   []ProgressRecord
}

// Has reports whether f is flagged in the update.
func (u Update) Has(f Field) bool {
	return u.Fields&f != 0
}

// Apply returns a copy of p with every flagged sub-record replaced whole.
// Sub-records are never merged element by element.
func (p Progression) Apply(u Update) Progression {
	out := p.Clone()
	if u.Has(FieldEnrolled) {
		out.Enrolled = slices.Clone(u.Enrolled)
	}
	if u.Has(FieldCompleted) {
		out.Completed = slices.Clone(u.Completed)
	}
	if u.Has(FieldRecords) {
		out.Records = Progression{Records: u.Records}.Clone().Records
	}
	return out
}
