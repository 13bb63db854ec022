package addressbook

import (
	"iter"
	"slices"
	"strings"
)

// AddressBook stores records by name and remembers insertion order.
// It is not safe for concurrent mutation.
type AddressBook struct {
	order   []string
	records map[string]*Record
}

// New returns an empty address book.
func New() *AddressBook {
	return &AddressBook{records: make(map[string]*Record)}
}

// Add stores r under its name. Replacing an existing name keeps its position.
func (b *AddressBook) Add(r *Record) {
	if _, exists := b.records[r.name]; !exists {
		b.order = append(b.order, r.name)
	}
	b.records[r.name] = r
}

// Find looks a record up by exact name.
func (b *AddressBook) Find(name string) (*Record, bool) {
	r, ok := b.records[strings.TrimSpace(name)]
	return r, ok
}

// Delete removes a record.
func (b *AddressBook) Delete(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := b.records[name]; !ok {
		return ErrContactNotFound
	}
	delete(b.records, name)
	b.order = slices.DeleteFunc(b.order, func(n string) bool { return n == name })
	return nil
}

// All yields the records in insertion order.
func (b *AddressBook) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, name := range b.order {
			if !yield(b.records[name]) {
				return
			}
		}
	}
}

// Len returns the number of records.
func (b *AddressBook) Len() int {
	return len(b.order)
}
