package usecase

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"consultancy-portal/internal/portal/adapter/persistence/memory"
	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestAdmin(store *memory.DocumentStore) (*AdminUsecase, *memory.ObjectStore) {
	objects := memory.NewObjectStore("https://cdn.example.com/files")
	media := NewMediaUsecase(objects, MediaConfig{}, &MockLogger{})
	return NewAdminUsecase(store, model.NewRegistry(nil), media, nil, &MockLogger{}), objects
}

func TestAdmin_CreateAndUpdateCollege(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	admin, _ := newTestAdmin(store)

	created, err := admin.Create(ctx, model.ListingColleges, map[string]interface{}{
		"name":      "St. Xavier's",
		"city":      "Mumbai",
		"id":        "forged",
		"createdAt": "yesterday",
		"read":      true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.MutationCreated, created.Kind)
	require.NotNil(t, created.Record)
	assert.NotEqual(t, "forged", created.ID)
	assert.Equal(t, "St. Xavier's", created.Record.String("name"))
	assert.False(t, created.Record.CreatedAt().IsZero())
	_, hasRead := created.Record.Get(model.FieldRead)
	assert.False(t, hasRead)

	updated, err := admin.Update(ctx, model.ListingColleges, created.ID, map[string]interface{}{"city": "Pune"}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.MutationUpdated, updated.Kind)
	assert.Equal(t, "Pune", updated.Fields["city"])
	assert.Contains(t, updated.Fields, model.FieldUpdatedAt)

	rec, err := store.Get(ctx, model.ListingColleges, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "St. Xavier's", rec.String("name"), "update merges")
	assert.Equal(t, "Pune", rec.String("city"))
	assert.False(t, rec.Time(model.FieldUpdatedAt).IsZero())
}

func TestAdmin_UpdateReplaysOntoCachedPage(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	admin, _ := newTestAdmin(store)
	p := newTestPaginator(store)

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		m, err := admin.Create(ctx, model.ListingServices, map[string]interface{}{"title": name}, nil)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	page, err := p.GetPage(ctx, model.NewCursorChain("s", model.ListingServices), model.PageRequest{Listing: model.ListingServices, Page: 1})
	require.NoError(t, err)
	services, _ := model.NewRegistry(nil).Lookup(model.ListingServices)

	m, err := admin.Update(ctx, model.ListingServices, ids[1], map[string]interface{}{"title": "B2"}, nil)
	require.NoError(t, err)
	page = page.Apply(services, *m)
	assert.Equal(t, ids, recordIDs(page.Records))
	assert.Equal(t, "B2", page.Records[1].String("title"))

	m, err = admin.Delete(ctx, model.ListingServices, ids[0])
	require.NoError(t, err)
	page = page.Apply(services, *m)
	assert.Equal(t, ids[1:], recordIDs(page.Records))
}

func TestAdmin_CreateReplaysLikeAFreshFetch(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	admin, _ := newTestAdmin(store)
	p := newTestPaginator(store)
	colleges, _ := model.NewRegistry(nil).Lookup(model.ListingColleges)
	req := model.PageRequest{Listing: model.ListingColleges, Page: 1, PageSize: 2}

	for _, name := range []string{"A", "B"} {
		_, err := admin.Create(ctx, model.ListingColleges, map[string]interface{}{"name": name}, nil)
		require.NoError(t, err)
	}
	cached, err := p.GetPage(ctx, model.NewCursorChain("s1", model.ListingColleges), req)
	require.NoError(t, err)
	require.False(t, cached.HasNext)

	m, err := admin.Create(ctx, model.ListingColleges, map[string]interface{}{"name": "C"}, nil)
	require.NoError(t, err)
	view := cached.Apply(colleges, *m)

	fresh, err := p.GetPage(ctx, model.NewCursorChain("s2", model.ListingColleges), req)
	require.NoError(t, err)
	assert.Equal(t, recordIDs(fresh.Records), recordIDs(view.Records))
	assert.LessOrEqual(t, len(view.Records), req.PageSize)
	assert.Equal(t, fresh.HasNext, view.HasNext)
}

func TestAdmin_RejectsNonEditableListings(t *testing.T) {
	ctx := context.Background()
	admin, _ := newTestAdmin(newMemoryStore())

	_, err := admin.Create(ctx, model.ListingLeads, map[string]interface{}{"studentId": "x"}, nil)
	assert.True(t, errors.IsValidation(err))

	_, err = admin.Create(ctx, "nope", map[string]interface{}{"a": 1}, nil)
	assert.ErrorIs(t, err, errors.ErrUnknownListing)

	_, err = admin.Create(ctx, model.ListingColleges, map[string]interface{}{"id": "only-reserved"}, nil)
	assert.True(t, errors.IsValidation(err))

	_, err = admin.Delete(ctx, model.ListingStudents, "uid")
	assert.True(t, errors.IsValidation(err))
}

func TestAdmin_UpdateAndDeleteMissingRecord(t *testing.T) {
	ctx := context.Background()
	admin, _ := newTestAdmin(newMemoryStore())

	_, err := admin.Update(ctx, model.ListingColleges, "missing", map[string]interface{}{"name": "x"}, nil)
	assert.True(t, errors.IsNotFound(err))

	_, err = admin.Delete(ctx, model.ListingColleges, "missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = admin.MarkRead(ctx, model.ListingLeads, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestAdmin_MarkReadOnlyTouchesReadFlag(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	ids := seedLeads(store, 3)
	admin, _ := newTestAdmin(store)

	counts, err := admin.UnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[model.ListingLeads])
	assert.Equal(t, int64(0), counts[model.ListingConsultations])
	assert.Contains(t, counts, model.ListingInquiries)

	before, err := store.Get(ctx, model.ListingLeads, ids[0])
	require.NoError(t, err)

	m, err := admin.MarkRead(ctx, model.ListingLeads, ids[0])
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{model.FieldRead: true}, m.Fields)

	after, err := store.Get(ctx, model.ListingLeads, ids[0])
	require.NoError(t, err)
	assert.True(t, after.Bool(model.FieldRead))
	assert.Equal(t, before.CreatedAt(), after.CreatedAt())
	assert.Equal(t, before.String(model.LeadStudentID), after.String(model.LeadStudentID))

	counts, err = admin.UnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.ListingLeads])

	_, err = admin.MarkRead(ctx, model.ListingColleges, ids[0])
	assert.True(t, errors.IsValidation(err))
}

func TestAdmin_DeleteInboxRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	ids := seedLeads(store, 2)
	admin, _ := newTestAdmin(store)

	m, err := admin.Delete(ctx, model.ListingLeads, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.MutationDeleted, m.Kind)

	n, err := store.Count(ctx, model.ListingLeads, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdmin_ImagesBecomeObjectStoreURLs(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	admin, objects := newTestAdmin(store)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	m, err := admin.Create(ctx, model.ListingUniversities, map[string]interface{}{
		"name":  "Uni",
		"image": dataURL,
		"logo":  "https://example.com/logo.png",
	}, nil)
	require.NoError(t, err)

	image := m.Record.String("image")
	assert.True(t, strings.HasPrefix(image, "https://cdn.example.com/files/"), image)
	assert.Equal(t, "https://example.com/logo.png", m.Record.String("logo"))

	rc, handle, err := objects.Open(ctx, strings.TrimPrefix(image, "https://cdn.example.com/files/"))
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/png", handle.ContentType)
	assert.True(t, strings.HasPrefix(handle.Path, "universities/image/"))

	upd, err := admin.Update(ctx, model.ListingUniversities, m.ID, nil, []FileUpload{
		{Field: "logo", Filename: "logo.png", ContentType: "image/png", Data: pngHeader},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upd.Fields["logo"].(string), "https://cdn.example.com/files/"))
}

func TestAdmin_RejectsBadImages(t *testing.T) {
	ctx := context.Background()
	admin, _ := newTestAdmin(newMemoryStore())

	_, err := admin.Create(ctx, model.ListingColleges, map[string]interface{}{"name": "c", "image": "ftp://x/y.png"}, nil)
	assert.True(t, errors.IsValidation(err))

	_, err = admin.Create(ctx, model.ListingColleges, map[string]interface{}{"name": "c"}, []FileUpload{
		{Field: "brochure", Filename: "a.png", Data: pngHeader},
	})
	assert.True(t, errors.IsValidation(err))

	_, err = admin.Create(ctx, model.ListingColleges, map[string]interface{}{"name": "c"}, []FileUpload{
		{Field: "image", Filename: "a.txt", ContentType: "text/plain", Data: []byte("hello")},
	})
	assert.True(t, errors.IsValidation(err))

	n, err := admin.store.Count(ctx, model.ListingColleges, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is written when an image is rejected")
}
