// Package lifecycle holds the order status model: the canonical status
// sequences shown to customers and staff, status-key normalization, and the
// reconciliation that folds an order's current status plus its history into a
// render-ready timeline.
package lifecycle

import (
	"regexp"
	"strings"
	"time"
)

// Step is one entry of a canonical sequence. Status is the backend token,
// Label is the human string shown next to the progress marker.
type Step struct {
	Status      string
	Label       string
	Description string
}

// Sequence is an ordered status list plus the synonym map used when the
// backend and the sequence disagree on spelling (dispatch vs dispatched vs
// delivered). Index in Steps is the progress rank.
type Sequence struct {
	Steps    []Step
	synonyms map[string]string
}

// NewSequence builds a Sequence. Synonym keys and values are normalized on
// the way in, so callers can write them in any spelling.
func NewSequence(steps []Step, synonyms map[string]string) Sequence {
	canon := make(map[string]string, len(synonyms))
	for alias, target := range synonyms {
		canon[Normalize(alias)] = Normalize(target)
	}
	return Sequence{Steps: steps, synonyms: canon}
}

var separatorRuns = regexp.MustCompile(`[-_]+`)

// Normalize reduces a status token to its comparison form: trimmed,
// lowercased, with every run of hyphens or underscores collapsed to a single
// underscore. Idempotent.
func Normalize(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	return separatorRuns.ReplaceAllString(s, "_")
}

// Key resolves a status token to its canonical comparison key for this
// sequence: normalization plus synonym resolution.
func (q Sequence) Key(status string) string {
	n := Normalize(status)
	if target, ok := q.synonyms[n]; ok {
		return target
	}
	return n
}

// Matches reports whether two status tokens denote the same step under this
// sequence's normalization and synonym rules.
func (q Sequence) Matches(a, b string) bool {
	return q.Key(a) == q.Key(b)
}

// IndexOf returns the position of status in the sequence, or -1 when the
// token matches no step even after normalization.
func (q Sequence) IndexOf(status string) int {
	key := q.Key(status)
	for i, step := range q.Steps {
		if q.Key(step.Status) == key {
			return i
		}
	}
	return -1
}

// Record is a single status-change observation from the order's history.
type Record struct {
	Status    string
	ChangedAt time.Time
}

// TimelineStep is the per-step render model.
type TimelineStep struct {
	Status           string `json:"status"`
	Label            string `json:"label"`
	Description      string `json:"description,omitempty"`
	IsCompleted      bool   `json:"isCompleted"`
	IsCurrent        bool   `json:"isCurrent"`
	Date             string `json:"date,omitempty"`
	EstimatedArrival string `json:"estimatedArrival,omitempty"`
}

// Reconcile folds (currentStatus, history) into one TimelineStep per step of
// the sequence, in sequence order.
//
// A step is completed when a history record matches it, or when its index is
// at or before the index of currentStatus. The positional half covers orders
// the backend fast-forwarded without writing every intermediate history row;
// the history half covers rows written for steps currentStatus has already
// moved past. Completion is therefore monotonic: a later observation never
// revokes an earlier step.
//
// An unrecognized currentStatus marks nothing current and grants no
// positional completion; only history matches survive.
//
// estimatedArrival is set only on the terminal step, only while it is the
// current one, and only when expectedDelivery is known. Dates come from real
// history records alone, never synthesized from created_at offsets.
func Reconcile(currentStatus string, history []Record, seq Sequence, expectedDelivery *time.Time) []TimelineStep {
	currentIdx := seq.IndexOf(currentStatus)
	latest := latestByKey(history, seq)

	out := make([]TimelineStep, 0, len(seq.Steps))
	for j, step := range seq.Steps {
		ts := TimelineStep{
			Status:      step.Status,
			Label:       step.Label,
			Description: step.Description,
		}

		rec, hasRecord := latest[seq.Key(step.Status)]
		ts.IsCurrent = currentIdx == j
		ts.IsCompleted = hasRecord || (currentIdx >= 0 && j <= currentIdx)
		if hasRecord {
			ts.Date = FormatDate(rec.ChangedAt)
		}
		if ts.IsCurrent && j == len(seq.Steps)-1 && expectedDelivery != nil {
			ts.EstimatedArrival = "Estimated arrival " + FormatDate(*expectedDelivery)
		}

		out = append(out, ts)
	}
	return out
}

// latestByKey picks, per canonical key, the record with the greatest
// ChangedAt. Duplicate history rows for one status do occur; latest wins.
func latestByKey(history []Record, seq Sequence) map[string]Record {
	latest := make(map[string]Record, len(history))
	for _, rec := range history {
		key := seq.Key(rec.Status)
		if prev, ok := latest[key]; !ok || rec.ChangedAt.After(prev.ChangedAt) {
			latest[key] = rec
		}
	}
	return latest
}

// FormatDate renders a timestamp the way the order views display it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
