package memory

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%02d", prefix, n)
	}
}

func TestDocumentStore_InsertThenGet(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewDocumentStore(WithClock(tickingClock(start)))

	id, err := store.Insert(ctx, "consultations", map[string]interface{}{
		"name":  "Ravi",
		"email": "ravi@example.com",
		"read":  false,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.Get(ctx, "consultations", id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Ravi", rec.String("name"))
	assert.Equal(t, "ravi@example.com", rec.String("email"))
	assert.False(t, rec.Bool("read"))
	assert.Equal(t, start.Add(time.Second), rec.CreatedAt())
}

func TestDocumentStore_ServerTimestampSentinel(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewDocumentStore(WithClock(tickingClock(start)))

	id, err := store.Insert(ctx, "leads", map[string]interface{}{model.FieldCreatedAt: model.ServerTimestamp})
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "leads", id, map[string]interface{}{model.FieldUpdatedAt: model.ServerTimestamp}))

	rec, err := store.Get(ctx, "leads", id)
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Second), rec.CreatedAt())
	assert.Equal(t, start.Add(2*time.Second), rec.Time(model.FieldUpdatedAt))
}

func TestDocumentStore_QueryFiltersOrdersAndStartAfter(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(
		WithClock(tickingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		WithIDGenerator(sequentialIDs("lead-")),
	)
	for i := 1; i <= 6; i++ {
		student := "s1"
		if i%2 == 0 {
			student = "s2"
		}
		_, err := store.Insert(ctx, "leads", map[string]interface{}{"studentId": student, "n": i})
		require.NoError(t, err)
	}

	orders := []model.Order{{Field: model.FieldCreatedAt, Direction: model.Descending}, {Field: model.FieldID, Direction: model.Descending}}
	first, err := store.Query(ctx, model.Query{Collection: "leads", Orders: orders, Limit: 4})
	require.NoError(t, err)
	require.Len(t, first, 4)
	assert.Equal(t, []string{"lead-06", "lead-05", "lead-04", "lead-03"}, ids(first))

	cur := model.NewCursor(first[3], []string{model.FieldCreatedAt, model.FieldID})
	rest, err := store.Query(ctx, model.Query{Collection: "leads", Orders: orders, Limit: 4, StartAfter: &cur})
	require.NoError(t, err)
	assert.Equal(t, []string{"lead-02", "lead-01"}, ids(rest))

	filtered, err := store.Query(ctx, model.Query{Collection: "leads", Filters: []model.Filter{model.Where("studentId", "s2")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"lead-02", "lead-04", "lead-06"}, ids(filtered))

	n, err := store.Count(ctx, "leads", []model.Filter{{Field: "n", Operator: model.OperatorGreaterThan, Value: 4}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	in, err := store.Count(ctx, "leads", []model.Filter{{Field: "n", Operator: model.OperatorIn, Value: []interface{}{1, 3, 99}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), in)
}

func TestDocumentStore_MissingIndexOnlyForOrderedQueries(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(WithMissingIndex("leads"))
	_, err := store.Insert(ctx, "leads", map[string]interface{}{"studentId": "s1"})
	require.NoError(t, err)

	_, err = store.Query(ctx, model.Query{Collection: "leads", Orders: []model.Order{{Field: model.FieldCreatedAt, Direction: model.Descending}}})
	assert.ErrorIs(t, err, errors.ErrMissingIndex)

	recs, err := store.Query(ctx, model.Query{Collection: "leads"}.Unordered())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDocumentStore_SetMergeAndReplace(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{
		"hero":    map[string]interface{}{"title": "Study abroad", "subtitle": "x"},
		"contact": map[string]interface{}{"phone": "1"},
	}, true))
	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{
		"hero": map[string]interface{}{"title": "Study with us"},
	}, true))

	rec, err := store.Get(ctx, "settings", "site")
	require.NoError(t, err)
	hero := rec.Fields["hero"].(map[string]interface{})
	assert.Equal(t, "Study with us", hero["title"])
	assert.Equal(t, "x", hero["subtitle"])
	assert.NotNil(t, rec.Fields["contact"])

	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{"only": true}, false))
	rec, err = store.Get(ctx, "settings", "site")
	require.NoError(t, err)
	assert.Len(t, rec.Fields, 1)

	assert.ErrorIs(t, store.Set(ctx, "settings", "", nil, true), errors.ErrInvalidID)
}

func TestDocumentStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	_, err := store.Get(ctx, "colleges", "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, "colleges", "missing", map[string]interface{}{"a": 1}), errors.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "colleges", "missing"), errors.ErrNotFound)
}

func TestDocumentStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	id, err := store.Insert(ctx, "services", map[string]interface{}{"title": "Visa"})
	require.NoError(t, err)

	rec, err := store.Get(ctx, "services", id)
	require.NoError(t, err)
	rec.Fields["title"] = "changed"

	again, err := store.Get(ctx, "services", id)
	require.NoError(t, err)
	assert.Equal(t, "Visa", again.String("title"))
}

func TestDocumentStore_NestedValuesAreNotShared(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	sections := map[string]interface{}{"about": true}
	banners := []interface{}{map[string]interface{}{"caption": "one"}}
	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{
		"sections": sections,
		"banners":  banners,
	}, true))
	sections["about"] = false
	banners[0].(map[string]interface{})["caption"] = "changed"

	rec, err := store.Get(ctx, "settings", "site")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"about": true}, rec.Fields["sections"])
	assert.Equal(t, "one", rec.Fields["banners"].([]interface{})[0].(map[string]interface{})["caption"])

	rec.Fields["sections"].(map[string]interface{})["about"] = false
	again, err := store.Get(ctx, "settings", "site")
	require.NoError(t, err)
	assert.Equal(t, true, again.Fields["sections"].(map[string]interface{})["about"])

	profile := map[string]interface{}{"city": "Pune"}
	id, err := store.Insert(ctx, "students", map[string]interface{}{"address": profile})
	require.NoError(t, err)
	profile["city"] = "Delhi"
	student, err := store.Get(ctx, "students", id)
	require.NoError(t, err)
	assert.Equal(t, "Pune", student.Fields["address"].(map[string]interface{})["city"])
}

func TestDocumentStore_EmptyNestedMapMergesAsNoChange(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{"hero": map[string]interface{}{}}, true))
	rec, err := store.Get(ctx, "settings", "site")
	require.NoError(t, err)
	assert.NotContains(t, rec.Fields, "hero")

	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{
		"sections": map[string]interface{}{"about": true},
	}, true))
	require.NoError(t, store.Set(ctx, "settings", "site", map[string]interface{}{
		"sections": map[string]interface{}{},
	}, true))
	rec, err = store.Get(ctx, "settings", "site")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"about": true}, rec.Fields["sections"])
}

func TestDocumentStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDocumentStore().Query(ctx, model.Query{Collection: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCursorStore_KeyedBySessionAndListing(t *testing.T) {
	ctx := context.Background()
	store := NewCursorStore()

	leads := model.NewCursorChain("s1", "leads")
	leads.Record(1, model.Cursor{DocumentID: "l5"})
	require.NoError(t, store.Save(ctx, leads))

	colleges := model.NewCursorChain("s1", "colleges")
	colleges.Record(1, model.Cursor{DocumentID: "c5"})
	require.NoError(t, store.Save(ctx, colleges))

	loaded, err := store.Load(ctx, "s1", "leads")
	require.NoError(t, err)
	assert.Equal(t, "l5", loaded.After(1).DocumentID)

	other, err := store.Load(ctx, "s2", "leads")
	require.NoError(t, err)
	assert.Nil(t, other.After(1))

	require.NoError(t, store.Clear(ctx, "s1", "leads"))
	loaded, err = store.Load(ctx, "s1", "leads")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())

	kept, err := store.Load(ctx, "s1", "colleges")
	require.NoError(t, err)
	assert.Equal(t, "c5", kept.After(1).DocumentID)
}

func TestObjectStore_UploadOpen(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore("http://localhost:8080/v1/files/")

	handle, err := store.Upload(ctx, "colleges/logo.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), handle.Size)
	assert.Equal(t, "http://localhost:8080/v1/files/"+handle.ID, store.PublicURL(handle))

	rc, got, err := store.Open(ctx, handle.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", got.ContentType)

	_, _, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func ids(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
