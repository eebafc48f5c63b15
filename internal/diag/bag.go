package diag

import (
	"sort"
)

// Bag collects diagnostics up to a limit. Not safe for concurrent use.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.CountAtLeast(SevError) > 0
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	return b.CountAtLeast(SevWarning) > 0
}

// CountAtLeast counts diagnostics with severity >= sev.
func (b *Bag) CountAtLeast(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, игнорируя лимит приёмника.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Promote raises every warning to an error (warnings_as_errors).
func (b *Bag) Promote() {
	for i := range b.items {
		if b.items[i].Severity == SevWarning {
			b.items[i].Severity = SevError
		}
	}
}

// PromoteCode raises warnings of one code to errors (strict_guards).
func (b *Bag) PromoteCode(code Code) {
	for i := range b.items {
		if b.items[i].Code == code && b.items[i].Severity == SevWarning {
			b.items[i].Severity = SevError
		}
	}
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})
}

// Dedup drops entries repeating code, span and message of an earlier one.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span [3]uint32
		msg  string
	}
	seen := make(map[key]struct{}, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{d.Code, [3]uint32{uint32(d.Primary.File), d.Primary.Start, d.Primary.End}, d.Message}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	b.items = out
}
