package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, PageCount(12, 5))
	assert.Equal(t, 2, PageCount(10, 5))
	assert.Equal(t, 1, PageCount(1, 5))
	assert.Equal(t, 0, PageCount(0, 5))
	assert.Equal(t, 0, PageCount(10, 0))
}

func TestRegistry_IndexFallbackIsPerListing(t *testing.T) {
	r := NewRegistry([]string{"leads", " consultations"})

	leads, ok := r.Lookup(ListingLeads)
	require.True(t, ok)
	assert.True(t, leads.IndexFallback)
	assert.True(t, leads.Ordered())
	assert.Equal(t, []Order{{FieldCreatedAt, Descending}, {FieldID, Descending}}, leads.Orders())

	consultations, _ := r.Lookup(ListingConsultations)
	assert.True(t, consultations.IndexFallback)

	inquiries, _ := r.Lookup(ListingInquiries)
	assert.False(t, inquiries.IndexFallback)
	assert.True(t, inquiries.Ordered())

	colleges, _ := r.Lookup(ListingColleges)
	assert.False(t, colleges.Ordered())
	assert.Equal(t, []Order{{FieldID, Ascending}}, colleges.Orders())
	assert.True(t, colleges.IsImageField("logo"))

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
	assert.Len(t, r.Names(), 10)

	var inboxes []string
	for _, l := range r.Inboxes() {
		inboxes = append(inboxes, l.Name)
	}
	assert.Equal(t, []string{"consultations", "inquiries", "leads"}, inboxes)
}

func TestCursor_JSONKeepsValueTypes(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)
	rec := NewRecord("lead-7", map[string]interface{}{FieldCreatedAt: created, "studentName": "A"})
	cur := NewCursor(rec, []string{FieldCreatedAt, FieldID})

	raw, err := json.Marshal(cur)
	require.NoError(t, err)

	var back Cursor
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "lead-7", back.DocumentID)
	v, ok := back.Value(FieldCreatedAt)
	require.True(t, ok)
	assert.True(t, created.Equal(v.(time.Time)))
	id, _ := back.Value(FieldID)
	assert.Equal(t, "lead-7", id)
	_, ok = back.Value("studentName")
	assert.False(t, ok)
}

func TestCursor_RejectsUnsupportedValue(t *testing.T) {
	cur := Cursor{DocumentID: "x", Values: map[string]interface{}{"f": []int{1}}}
	_, err := json.Marshal(cur)
	assert.Error(t, err)
}

func TestCursorChain(t *testing.T) {
	chain := NewCursorChain("s1", ListingLeads)
	assert.Nil(t, chain.After(1))

	chain.Record(1, Cursor{DocumentID: "a"})
	chain.Record(2, Cursor{DocumentID: "b"})
	require.NotNil(t, chain.After(2))
	assert.Equal(t, "b", chain.After(2).DocumentID)
	assert.Equal(t, 2, chain.Len())

	chain.Restart()
	assert.Nil(t, chain.After(1))
	assert.Equal(t, 0, chain.Len())

	var nilChain *CursorChain
	assert.Nil(t, nilChain.After(1))
}

func TestPageApply(t *testing.T) {
	leads, ok := NewRegistry(nil).Lookup(ListingLeads)
	require.True(t, ok)
	page := &Page{
		Listing: ListingLeads,
		Number:  1,
		Ordered: true,
		Records: []Record{
			NewRecord("l3", map[string]interface{}{FieldRead: false, "studentName": "C"}),
			NewRecord("l2", map[string]interface{}{FieldRead: false, "studentName": "B"}),
			NewRecord("l1", map[string]interface{}{FieldRead: false, "studentName": "A"}),
		},
	}

	t.Run("mark read keeps position and other fields", func(t *testing.T) {
		out := page.Apply(leads, Mutation{Kind: MutationUpdated, Listing: ListingLeads, ID: "l2",
			Fields: map[string]interface{}{FieldRead: true}})
		require.Len(t, out.Records, 3)
		assert.Equal(t, "l2", out.Records[1].ID)
		assert.True(t, out.Records[1].Bool(FieldRead))
		assert.Equal(t, "B", out.Records[1].String("studentName"))
		assert.False(t, page.Records[1].Bool(FieldRead), "original page must not change")
	})

	t.Run("delete removes record", func(t *testing.T) {
		out := page.Apply(leads, Mutation{Kind: MutationDeleted, Listing: ListingLeads, ID: "l3"})
		require.Len(t, out.Records, 2)
		assert.Equal(t, "l2", out.Records[0].ID)
	})

	t.Run("other listing is ignored", func(t *testing.T) {
		out := page.Apply(leads, Mutation{Kind: MutationDeleted, Listing: ListingInquiries, ID: "l3"})
		assert.Len(t, out.Records, 3)
	})
}

func TestPageApply_CreatePlacement(t *testing.T) {
	registry := NewRegistry(nil)
	leads, _ := registry.Lookup(ListingLeads)
	colleges, _ := registry.Lookup(ListingColleges)
	at := func(minute int) time.Time { return time.Date(2024, 5, 1, 9, minute, 0, 0, time.UTC) }
	lead := func(id string, minute int) Record {
		return NewRecord(id, map[string]interface{}{FieldCreatedAt: at(minute)})
	}
	college := func(id string) Record { return NewRecord(id, map[string]interface{}{"name": id}) }

	t.Run("newest lead goes first and the full page is trimmed", func(t *testing.T) {
		page := &Page{Listing: ListingLeads, Number: 1, PageSize: 2, Ordered: true,
			Records: []Record{lead("l2", 2), lead("l1", 1)}}
		rec := lead("l3", 3)
		out := page.Apply(leads, Mutation{Kind: MutationCreated, Listing: ListingLeads, ID: "l3", Record: &rec})
		assert.Equal(t, []string{"l3", "l2"}, ids(out.Records))
		assert.True(t, out.HasNext)
		assert.False(t, page.HasNext, "original page must not change")
	})

	t.Run("created college sorts by id and falls off a full page", func(t *testing.T) {
		page := &Page{Listing: ListingColleges, Number: 1, PageSize: 2, Ordered: true,
			Records: []Record{college("doc-001"), college("doc-002")}}
		rec := college("doc-003")
		out := page.Apply(colleges, Mutation{Kind: MutationCreated, Listing: ListingColleges, ID: "doc-003", Record: &rec})
		assert.Equal(t, []string{"doc-001", "doc-002"}, ids(out.Records))
		assert.True(t, out.HasNext)
	})

	t.Run("created college joins a page with room", func(t *testing.T) {
		page := &Page{Listing: ListingColleges, Number: 1, PageSize: 5, Ordered: true,
			Records: []Record{college("doc-001"), college("doc-003")}}
		rec := college("doc-002")
		out := page.Apply(colleges, Mutation{Kind: MutationCreated, Listing: ListingColleges, ID: "doc-002", Record: &rec})
		assert.Equal(t, []string{"doc-001", "doc-002", "doc-003"}, ids(out.Records))
		assert.False(t, out.HasNext)
	})

	t.Run("record past the last one waits for the next page", func(t *testing.T) {
		page := &Page{Listing: ListingColleges, Number: 1, PageSize: 5, Ordered: true, HasNext: true,
			Records: []Record{college("doc-001"), college("doc-002")}}
		rec := college("doc-009")
		out := page.Apply(colleges, Mutation{Kind: MutationCreated, Listing: ListingColleges, ID: "doc-009", Record: &rec})
		assert.Equal(t, []string{"doc-001", "doc-002"}, ids(out.Records))
	})

	t.Run("later pages ignore records that sort before them", func(t *testing.T) {
		page := &Page{Listing: ListingLeads, Number: 2, PageSize: 2, Ordered: true,
			Records: []Record{lead("l2", 2), lead("l1", 1)}}
		rec := lead("l9", 9)
		out := page.Apply(leads, Mutation{Kind: MutationCreated, Listing: ListingLeads, ID: "l9", Record: &rec})
		assert.Equal(t, []string{"l2", "l1"}, ids(out.Records))
		assert.False(t, out.HasNext)
	})

	t.Run("unordered fallback page places by id", func(t *testing.T) {
		page := &Page{Listing: ListingLeads, Number: 1, PageSize: 3, Ordered: false,
			Records: []Record{lead("a", 5), lead("c", 1)}}
		rec := lead("b", 9)
		out := page.Apply(leads, Mutation{Kind: MutationCreated, Listing: ListingLeads, ID: "b", Record: &rec})
		assert.Equal(t, []string{"a", "b", "c"}, ids(out.Records))
	})
}

func TestRecord_CloneIsDeep(t *testing.T) {
	nested := map[string]interface{}{"city": "Pune"}
	list := []interface{}{"a"}
	rec := NewRecord("r1", map[string]interface{}{"address": nested, "tags": list})
	nested["city"] = "Delhi"
	list[0] = "b"

	assert.Equal(t, "Pune", rec.Fields["address"].(map[string]interface{})["city"])
	assert.Equal(t, []interface{}{"a"}, rec.Fields["tags"])

	clone := rec.Clone()
	clone.Fields["address"].(map[string]interface{})["city"] = "Goa"
	assert.Equal(t, "Pune", rec.Fields["address"].(map[string]interface{})["city"])

	resolved := ResolveServerTimestamps(rec.Fields, time.Now())
	resolved["address"].(map[string]interface{})["city"] = "Goa"
	assert.Equal(t, "Pune", rec.Fields["address"].(map[string]interface{})["city"])
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestLead_FieldsRoundTripThroughRecord(t *testing.T) {
	lead := Lead{StudentID: "s1", StudentName: "Asha", TargetType: TargetUniversity, TargetID: "u9",
		TargetName: "North University", Percentage: "88"}
	fields := lead.Fields()
	assert.Equal(t, "u9", fields["universityId"])
	assert.Equal(t, "North University", fields["universityName"])
	assert.Equal(t, false, fields[FieldRead])
	assert.True(t, IsServerTimestamp(fields[FieldCreatedAt]))

	now := time.Now().UTC()
	back := LeadFromRecord(NewRecord("lead-1", ResolveServerTimestamps(fields, now)))
	assert.Equal(t, "lead-1", back.ID)
	assert.Equal(t, TargetUniversity, back.TargetType)
	assert.Equal(t, "u9", back.TargetID)
	assert.Equal(t, now, back.CreatedAt)
}

func TestSiteSettings_PublicHidesCredentials(t *testing.T) {
	s := SiteSettings{Email: EmailSettings{Host: "smtp.example.com", Password: "secret"},
		Sections: map[string]bool{"reviews": false}}
	pub := s.Public()
	assert.Empty(t, pub.Email.Password)
	assert.Empty(t, pub.Email.Host)
	assert.False(t, pub.SectionVisible("reviews"))
	assert.True(t, pub.SectionVisible("events"))
	assert.Equal(t, "secret", s.Email.Password)
}

func TestProfileUpdate_Fields(t *testing.T) {
	phone := "+91 99999"
	u := ProfileUpdate{Phone: &phone}
	assert.Equal(t, map[string]interface{}{StudentPhone: phone}, u.Fields())
}

func TestRecord_MarshalJSONFlattens(t *testing.T) {
	raw, err := json.Marshal(NewRecord("c1", map[string]interface{}{"name": "Central College"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","name":"Central College"}`, string(raw))
}
