package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/resolve"
	"github.com/listenupapp/readlog/internal/service"
)

func TestFinished_RequiresUserHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/finished")
	require.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())

	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestFinished_ListAndGet(t *testing.T) {
	ts := setupTestServer(t)

	lib := ts.seedLibrary(t, domain.StatusRead, domain.BookDetails{ISBN: duneISBN, Title: "Dune", DateFinished: "2024-02-01"})
	ts.seedLibrary(t, domain.StatusUnread, domain.BookDetails{Title: "Unread"})
	ts.seedCompleted(t, domain.BookDetails{Title: "Piranesi", Author: "Susanna Clarke", DateFinished: "2024-03-01"})

	resp := ts.api.Get("/api/v1/finished", testUser)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[FinishedListResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Version)
	require.Equal(t, 2, env.Data.Total)
	assert.Equal(t, "Piranesi", env.Data.Entries[0].Title, "newest finish first")
	assert.Equal(t, domain.LibraryRef(lib.ID), env.Data.Entries[1].Ref)

	resp = ts.api.Get("/api/v1/finished", otherUser)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, decode[FinishedListResponse](t, resp).Data.Total)

	resp = ts.api.Get("/api/v1/finished/"+domain.LibraryRef(lib.ID).String(), testUser)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Dune", decode[service.EntryDetail](t, resp).Data.Title)

	resp = ts.api.Get("/api/v1/finished/book_1", testUser)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[any](t, resp).Code)

	resp = ts.api.Get("/api/v1/finished/completed_999", testUser)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp).Code)
}

func TestFinished_AddUpdateRateDelete(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/finished", testUser, map[string]any{
		"title":        "Piranesi",
		"author":       "Susanna Clarke",
		"dateFinished": "2024-03-01",
		"rating":       4,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	added := decode[service.EntryDetail](t, resp).Data
	assert.True(t, added.Ref.IsCompleted())
	assert.Equal(t, 4, added.Rating)
	path := "/api/v1/finished/" + added.Ref.String()

	resp = ts.api.Post("/api/v1/finished", testUser, map[string]any{"title": "PIRANESI", "author": "susanna clarke"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CONFLICT", decode[any](t, resp).Code)

	resp = ts.api.Post("/api/v1/finished", testUser, map[string]any{"title": "Bad Date", "dateFinished": "03/01/2024"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Patch(path, testUser, map[string]any{"dateFinished": "2024-04-01", "owned": true})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[service.EntryDetail](t, resp).Data
	assert.Equal(t, "2024-04-01", updated.DateFinished)
	assert.True(t, updated.Owned)

	resp = ts.api.Put(path+"/rating", testUser, map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 5, decode[domain.Rating](t, resp).Data.Value)

	resp = ts.api.Put(path+"/rating", testUser, map[string]any{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Delete(path, testUser)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get(path, testUser)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFinished_DeleteLibraryEntryKeepsBook(t *testing.T) {
	ts := setupTestServer(t)
	lib := ts.seedLibrary(t, domain.StatusRead, domain.BookDetails{Title: "Dune", DateFinished: "2024-02-01"})

	resp := ts.api.Delete("/api/v1/finished/"+domain.LibraryRef(lib.ID).String(), testUser)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	got, err := ts.store.GetLibraryBook(t.Context(), testUserID, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnread, got.ReadingStatus)
	assert.Empty(t, got.DateFinished)
}

func TestFinished_Promote(t *testing.T) {
	ts := setupTestServer(t)

	existing := ts.seedLibrary(t, domain.StatusUnread, domain.BookDetails{ISBN: duneISBN, Title: "Dune"})
	c := ts.seedCompleted(t, domain.BookDetails{ISBN: duneISBN, Title: "Dune", DateFinished: "2024-02-01"})

	resp := ts.api.Post("/api/v1/finished/"+domain.CompletedRef(c.ID).String()+"/promote", testUser)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decode[service.PromotionResult](t, resp).Data
	assert.True(t, result.Merged)
	assert.Equal(t, existing.ID, result.LibraryBookID)
	assert.Equal(t, domain.LibraryRef(existing.ID), result.Entry.Ref)

	resp = ts.api.Post("/api/v1/finished/"+domain.LibraryRef(existing.ID).String()+"/promote", testUser)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "INVARIANT_VIOLATION", decode[any](t, resp).Code)
}

func TestImports_ParseAndCommit(t *testing.T) {
	ts := setupTestServer(t)
	lib := ts.seedLibrary(t, domain.StatusUnread, domain.BookDetails{ISBN: duneISBN, Title: "Dune"})

	csv := "Title,Author,ISBN,Date Read\n" +
		"Dune,,9780441172716,2024-02-03\n" +
		"Project Hail Mary,Andy Weir,,2024-03-04\n"

	resp := ts.api.Post("/api/v1/imports/parse", testUser, map[string]any{"data": csv, "format": "csv"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	preview := decode[resolve.Preview](t, resp).Data
	assert.Equal(t, 2, preview.Counts.Total)
	require.Len(t, preview.LibraryUpdates, 1)
	assert.Equal(t, lib.ID, preview.LibraryUpdates[0].LibraryBookID)
	require.Len(t, preview.Found, 1)

	found := preview.Found[0].Row
	resp = ts.api.Post("/api/v1/imports/commit", testUser, map[string]any{
		"booksToImport": []map[string]any{{
			"title":        found.Title,
			"author":       found.Author,
			"isbn":         found.ISBN,
			"dateFinished": found.DateFinished,
		}},
		"libraryUpdates": []map[string]any{{
			"libraryBookId":   preview.LibraryUpdates[0].LibraryBookID,
			"newDateFinished": preview.LibraryUpdates[0].NewDateFinished,
		}},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decode[service.CommitResult](t, resp).Data
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.LibraryUpdated)
	assert.Zero(t, result.Failed)

	resp = ts.api.Get("/api/v1/finished", testUser)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, decode[FinishedListResponse](t, resp).Data.Total)
}

func TestImports_UnreadableUpload(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/imports/parse", testUser, map[string]any{"data": "a,b", "format": "numbers"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "PARSE_ERROR", decode[any](t, resp).Code)
}

func TestExports_Download(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCompleted(t, domain.BookDetails{Title: "Piranesi", Author: "Susanna Clarke"})

	resp := ts.api.Get("/api/v1/exports?type=minimal&format=csv", testUser)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
	assert.Regexp(t, `^attachment; filename="reading-log-minimal-\d{4}-\d{2}-\d{2}\.csv"$`, resp.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "isbn,title,author,"), "raw body, no envelope")

	resp = ts.api.Get("/api/v1/exports?format=yaml", testUser)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
