package diag

// Bag is an ordered diagnostic list. Order is whatever the producer emitted
// and is never changed: attribution treats it as opaque but stable.
type Bag struct {
	items []Diagnostic
}

func NewBag(items ...Diagnostic) *Bag {
	b := &Bag{items: make([]Diagnostic, 0, len(items))}
	b.items = append(b.items, items...)
	return b
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	if b == nil {
		return false
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns a copy of the diagnostics.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return append([]Diagnostic(nil), b.items...)
}

// Merge appends the diagnostics of other, keeping order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Messages returns the message of every diagnostic, in order.
func (b *Bag) Messages() []string {
	if b == nil {
		return nil
	}
	return Messages(b.items)
}

// Messages returns the message of every diagnostic, in order.
func Messages(items []Diagnostic) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Message
	}
	return out
}
