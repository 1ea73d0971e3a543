package model

import "sort"

// PageRequest asks for one page of a listing.
type PageRequest struct {
	Listing  string `json:"listing"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Page is one bounded slice of a listing.
type Page struct {
	Listing     string   `json:"listing"`
	Number      int      `json:"page"`
	PageSize    int      `json:"pageSize"`
	Records     []Record `json:"records"`
	HasNext     bool     `json:"hasNext"`
	HasPrevious bool     `json:"hasPrevious"`
	// Ordered is false when the index fallback served the page in store order.
	Ordered bool `json:"ordered"`
	// Restarted is set when the requested page had no cursor and page 1 was served instead.
	Restarted bool `json:"restarted"`
}

// PageCount is ceil(total/pageSize). It is for display only.
func PageCount(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Last returns the final record of the page.
func (p *Page) Last() (Record, bool) {
	if p == nil || len(p.Records) == 0 {
		return Record{}, false
	}
	return p.Records[len(p.Records)-1], true
}

// Apply returns a copy of the page with m applied, so a cached page matches
// what a fresh fetch would show. Updated records keep their position. A created
// record is placed by the listing's sort and the page is trimmed back to PageSize.
func (p *Page) Apply(l Listing, m Mutation) *Page {
	out := *p
	out.Records = make([]Record, 0, len(p.Records)+1)

	for _, rec := range p.Records {
		if m.Listing != p.Listing || rec.ID != m.ID {
			out.Records = append(out.Records, rec)
			continue
		}
		switch m.Kind {
		case MutationDeleted:
			continue
		case MutationUpdated:
			out.Records = append(out.Records, rec.Merge(m.Fields))
		default:
			out.Records = append(out.Records, rec)
		}
	}

	if m.Kind == MutationCreated && m.Listing == p.Listing && m.Record != nil {
		out.insert(m.Record.Clone(), p.sortOrders(l))
	}
	return &out
}

// sortOrders is the order the page was served in.
func (p *Page) sortOrders(l Listing) []Order {
	if !p.Ordered {
		return []Order{{Field: FieldID, Direction: Ascending}}
	}
	return l.Orders()
}

func (p *Page) insert(rec Record, orders []Order) {
	for _, existing := range p.Records {
		if existing.ID == rec.ID {
			return
		}
	}
	idx := sort.Search(len(p.Records), func(i int) bool {
		return CompareRecords(rec, p.Records[i], orders) < 0
	})
	// Pages after the first start at the previous page's cursor, so a record
	// sorting before this page's first one lands on an earlier page.
	if idx == 0 && p.Number > 1 && len(p.Records) > 0 {
		return
	}
	if idx == len(p.Records) && p.HasNext {
		return
	}

	p.Records = append(p.Records, Record{})
	copy(p.Records[idx+1:], p.Records[idx:])
	p.Records[idx] = rec

	if p.PageSize > 0 && len(p.Records) > p.PageSize {
		p.Records = p.Records[:p.PageSize]
		p.HasNext = true
	}
}
