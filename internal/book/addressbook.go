// Package book holds the contact model: self-validating fields, records and
// the address book that owns them, plus its snapshot persistence.
package book

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// AddressBook maps contact names to records and remembers insertion order.
// It is not safe for concurrent use; the process has a single interactive user.
type AddressBook struct {
	records map[string]*Record
	order   []string
	clock   Clock
}

// New creates an empty address book. The clock is handed to every record it
// creates or loads; nil means the real clock.
func New(clock Clock) *AddressBook {
	return &AddressBook{
		records: make(map[string]*Record),
		clock:   clockOrDefault(clock),
	}
}

// AddRecord creates an empty record under name.
func (ab *AddressBook) AddRecord(name string) (*Record, error) {
	if _, ok := ab.records[name]; ok {
		return nil, fmt.Errorf("%w: contact %s", ErrDuplicateKey, name)
	}
	r, err := NewRecord(name, ab.clock)
	if err != nil {
		return nil, err
	}
	ab.put(r)
	return r, nil
}

// DeleteRecord removes the record stored under name.
func (ab *AddressBook) DeleteRecord(name string) error {
	if _, ok := ab.records[name]; !ok {
		return fmt.Errorf("%w: contact %s", ErrNotFound, name)
	}
	delete(ab.records, name)
	for i, n := range ab.order {
		if n == name {
			ab.order = append(ab.order[:i], ab.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the record stored under name. The record is the book's own
// instance: mutations through it are visible to the book.
func (ab *AddressBook) Get(name string) (*Record, error) {
	r, ok := ab.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: contact %s", ErrNotFound, name)
	}
	return r, nil
}

// Len returns the number of records.
func (ab *AddressBook) Len() int { return len(ab.order) }

// All returns every record in insertion order.
func (ab *AddressBook) All() []*Record {
	out := make([]*Record, 0, len(ab.order))
	for _, name := range ab.order {
		out = append(out, ab.records[name])
	}
	return out
}

// Search returns the records whose projection (see Record.String) contains
// substr. Matching is literal and case-sensitive; "" matches every record.
func (ab *AddressBook) Search(substr string) []*Record {
	var out []*Record
	for _, r := range ab.All() {
		if strings.Contains(r.String(), substr) {
			out = append(out, r)
		}
	}
	return out
}

// RenderTable formats the records matching search as a text table with the
// columns Name, Phones, Birthday and Email.
func (ab *AddressBook) RenderTable(search string) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(config.TableHeaders)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, r := range ab.Search(search) {
		table.Append(r.tableRow())
	}
	table.Render()

	return buf.String()
}

// put stores r, replacing a same-named record in place or appending a new one.
func (ab *AddressBook) put(r *Record) {
	name := r.Name()
	if _, ok := ab.records[name]; !ok {
		ab.order = append(ab.order, name)
	}
	r.clock = ab.clock
	if r.birthday != nil {
		r.birthday.clock = ab.clock
	}
	ab.records[name] = r
}
