package model

import (
	"sort"
	"strings"
)

// Listing names.
const (
	ListingServices      = "services"
	ListingColleges      = "colleges"
	ListingUniversities  = "universities"
	ListingInsights      = "insights"
	ListingEvents        = "events"
	ListingReviews       = "reviews"
	ListingLeads         = "leads"
	ListingConsultations = "consultations"
	ListingInquiries     = "inquiries"
	ListingStudents      = "students"

	CollectionSettings = "settings"
	SettingsDocumentID = "site"
)

// Listing describes one paginated collection.
type Listing struct {
	Name       string
	Collection string
	// OrderField is empty for listings served in store order (document ID ascending).
	OrderField string
	// HasReadFlag marks inbox-style listings whose records carry `read`.
	HasReadFlag bool
	// AdminEditable marks entity kinds administrators create, update and delete.
	AdminEditable bool
	ImageFields   []string
	// IndexFallback retries an ordered page unordered when the store reports a missing index.
	IndexFallback bool
}

// Ordered reports whether pages are sorted on OrderField.
func (l Listing) Ordered() bool {
	return l.OrderField != ""
}

// Orders returns the sort used for pages; document ID breaks ties so cursors are total.
func (l Listing) Orders() []Order {
	if !l.Ordered() {
		return []Order{{Field: FieldID, Direction: Ascending}}
	}
	return []Order{
		{Field: l.OrderField, Direction: Descending},
		{Field: FieldID, Direction: Descending},
	}
}

// CursorFields are the fields captured in a cursor for this listing.
func (l Listing) CursorFields() []string {
	if !l.Ordered() {
		return []string{FieldID}
	}
	return []string{l.OrderField, FieldID}
}

// IsImageField reports whether field holds an image URL.
func (l Listing) IsImageField(field string) bool {
	for _, f := range l.ImageFields {
		if f == field {
			return true
		}
	}
	return false
}

// Registry holds the known listings.
type Registry struct {
	listings map[string]Listing
}

// DefaultListings returns the ten portal listings with no index fallback configured.
func DefaultListings() []Listing {
	return []Listing{
		{Name: ListingServices, Collection: ListingServices, AdminEditable: true, ImageFields: []string{"image"}},
		{Name: ListingColleges, Collection: ListingColleges, AdminEditable: true, ImageFields: []string{"image", "logo"}},
		{Name: ListingUniversities, Collection: ListingUniversities, AdminEditable: true, ImageFields: []string{"image", "logo"}},
		{Name: ListingInsights, Collection: ListingInsights, AdminEditable: true, ImageFields: []string{"image"}},
		{Name: ListingEvents, Collection: ListingEvents, AdminEditable: true, ImageFields: []string{"image"}},
		{Name: ListingReviews, Collection: ListingReviews, AdminEditable: true, ImageFields: []string{"photo"}},
		{Name: ListingLeads, Collection: ListingLeads, OrderField: FieldCreatedAt, HasReadFlag: true},
		{Name: ListingConsultations, Collection: ListingConsultations, OrderField: FieldCreatedAt, HasReadFlag: true},
		{Name: ListingInquiries, Collection: ListingInquiries, OrderField: FieldCreatedAt, HasReadFlag: true},
		{Name: ListingStudents, Collection: ListingStudents},
	}
}

// NewRegistry builds the registry and enables the index fallback for the named listings.
func NewRegistry(indexFallback []string) *Registry {
	enabled := make(map[string]bool, len(indexFallback))
	for _, name := range indexFallback {
		enabled[strings.TrimSpace(name)] = true
	}
	r := &Registry{listings: make(map[string]Listing)}
	for _, l := range DefaultListings() {
		l.IndexFallback = enabled[l.Name]
		r.listings[l.Name] = l
	}
	return r
}

// Lookup returns a listing by name.
func (r *Registry) Lookup(name string) (Listing, bool) {
	l, ok := r.listings[name]
	return l, ok
}

// Names returns listing names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.listings))
	for n := range r.listings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Inboxes returns the listings that carry a read flag, sorted by name.
func (r *Registry) Inboxes() []Listing {
	var out []Listing
	for _, n := range r.Names() {
		if l := r.listings[n]; l.HasReadFlag {
			out = append(out, l)
		}
	}
	return out
}
