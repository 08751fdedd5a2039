package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Keep every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(ModelsToAutoMigrate()...))
	return db
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func createPart(t *testing.T, db *gorm.DB, title, name, date string) *Part {
	t.Helper()
	part := &Part{
		Name:  name,
		Title: title,
		Date:  mustDate(t, date),
		Document: JSON(fmt.Sprintf(
			`{"label": [%q], "node_type": "part", "title": "Part %s"}`, name, name)),
		Structure: JSON(fmt.Sprintf(
			`{"label": [%q], "node_type": "part", "title": "Part %s"}`, name, name)),
	}
	require.NoError(t, db.Create(part).Error)
	return part
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-01-01")
	require.NoError(t, err)
	assert.Equal(t, Date("2020-01-01"), d)

	for _, bad := range []string{"", "2020-13-01", "01/01/2020", "2020-1-1", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestGetPart(t *testing.T) {
	db := newTestDB(t)
	created := createPart(t, db, "29", "107", "2020-01-01")

	got, err := GetPart(db, "29", "107", created.Date)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = GetPart(db, "29", "107", mustDate(t, "2021-01-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEffectivePart(t *testing.T) {
	db := newTestDB(t)
	first := createPart(t, db, "29", "107", "2020-01-01")
	second := createPart(t, db, "29", "107", "2021-06-01")

	t.Run("between snapshots returns the earlier one", func(t *testing.T) {
		got, err := EffectivePart(db, "29", "107", mustDate(t, "2020-06-01"))
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("on a snapshot date returns that snapshot", func(t *testing.T) {
		got, err := EffectivePart(db, "29", "107", mustDate(t, "2021-06-01"))
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("after the last snapshot returns the latest", func(t *testing.T) {
		got, err := EffectivePart(db, "29", "107", mustDate(t, "2030-01-01"))
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("before the earliest snapshot is not found", func(t *testing.T) {
		_, err := EffectivePart(db, "29", "107", mustDate(t, "2019-12-31"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown name is not found", func(t *testing.T) {
		_, err := EffectivePart(db, "29", "999", mustDate(t, "2020-06-01"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEffectiveParts(t *testing.T) {
	db := newTestDB(t)
	createPart(t, db, "29", "107", "2020-01-01")
	v2 := createPart(t, db, "29", "107", "2021-01-01")
	v1 := createPart(t, db, "29", "200", "2020-05-01")
	createPart(t, db, "29", "300", "2022-01-01") // not yet effective
	createPart(t, db, "42", "107", "2020-01-01") // other title

	parts, err := EffectiveParts(db, "29", mustDate(t, "2021-06-01"))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "107", parts[0].Name)
	assert.Equal(t, v2.ID, parts[0].ID)
	assert.Equal(t, "200", parts[1].Name)
	assert.Equal(t, v1.ID, parts[1].ID)
}

func TestEffectiveTitles(t *testing.T) {
	db := newTestDB(t)
	createPart(t, db, "29", "107", "2020-01-01")
	latest107 := createPart(t, db, "29", "107", "2020-09-01")
	other := createPart(t, db, "42", "500", "2020-03-01")

	parts, err := EffectiveTitles(db, mustDate(t, "2020-12-31"))
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, latest107.ID, parts[0].ID)
	assert.Equal(t, other.ID, parts[1].ID)

	t.Run("one representative per name across titles", func(t *testing.T) {
		createPart(t, db, "45", "500", "2020-03-01")
		parts, err := EffectiveTitles(db, mustDate(t, "2020-12-31"))
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, "42", parts[1].Title)
	})
}

func TestLatestPart(t *testing.T) {
	db := newTestDB(t)
	createPart(t, db, "29", "107", "2020-01-01")
	latest := createPart(t, db, "29", "107", "2025-01-01")

	got, err := LatestPart(db, "29", "107")
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)

	_, err = LatestPart(db, "29", "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartIdentityUnique(t *testing.T) {
	db := newTestDB(t)
	createPart(t, db, "29", "107", "2020-01-01")

	dup := &Part{
		Name:      "107",
		Title:     "29",
		Date:      mustDate(t, "2020-01-01"),
		Document:  JSON(`{}`),
		Structure: JSON(`{}`),
	}
	assert.Error(t, db.Create(dup).Error)
}

func TestPartTreeAccessors(t *testing.T) {
	db := newTestDB(t)
	part := &Part{
		Name:  "107",
		Title: "29",
		Date:  mustDate(t, "2020-01-01"),
		Document: JSON(`{
			"label": ["107"], "node_type": "part", "title": "Part 107",
			"children": [{"label": ["107", "1"], "node_type": "section", "text": "Applicability."}]
		}`),
		Structure: JSON(`{
			"label": ["107"], "node_type": "part", "title": "Part 107",
			"children": [{"label": ["107", "1"], "node_type": "section", "title": "107.1 Applicability"}]
		}`),
	}
	require.NoError(t, db.Create(part).Error)

	var loaded Part
	require.NoError(t, db.First(&loaded, part.ID).Error)

	node, err := loaded.FindInStructure([]string{"107", "1"})
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "107.1 Applicability", node.Title)

	node, err = loaded.FindInDocument([]string{"107", "1"})
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "Applicability.", node.Text)

	node, err = loaded.FindInStructure([]string{"107", "9"})
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestNoticeRoundTrip(t *testing.T) {
	db := newTestDB(t)

	effective := mustDate(t, "2020-01-01")
	notice := &Notice{
		DocumentNumber:  "2019-12345",
		EffectiveOn:     &effective,
		FRURL:           "https://example.gov/2019-12345",
		PublicationDate: mustDate(t, "2019-11-01"),
		Notice:          CompressedJSON(`{"abstract": "Final rule."}`),
		CFRParts: []NoticeCFRPart{
			{CFRPart: "107"},
			{CFRPart: "108"},
		},
	}
	require.NoError(t, UpsertNotice(db, notice))

	got, err := GetNotice(db, "2019-12345")
	require.NoError(t, err)
	assert.JSONEq(t, `{"abstract": "Final rule."}`, string(got.Notice))
	require.NotNil(t, got.EffectiveOn)
	assert.Equal(t, effective, *got.EffectiveOn)
	assert.Len(t, got.CFRParts, 2)

	t.Run("upsert replaces the body", func(t *testing.T) {
		notice.Notice = CompressedJSON(`{"abstract": "Correction."}`)
		notice.CFRParts = nil
		require.NoError(t, UpsertNotice(db, notice))

		got, err := GetNotice(db, "2019-12345")
		require.NoError(t, err)
		assert.JSONEq(t, `{"abstract": "Correction."}`, string(got.Notice))
	})

	t.Run("notices for part", func(t *testing.T) {
		notices, err := NoticesForCFRPart(db, "107")
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, "2019-12345", notices[0].DocumentNumber)

		notices, err = NoticesForCFRPart(db, "999")
		require.NoError(t, err)
		assert.Empty(t, notices)
	})
}

func TestLayerRoundTrip(t *testing.T) {
	db := newTestDB(t)

	layer := &Layer{
		Name:    "terms",
		DocType: "cfr",
		DocID:   "2019-12345/107",
		Layer:   CompressedJSON(`[{"term": "small unmanned aircraft"}]`),
	}
	require.NoError(t, UpsertLayer(db, layer))

	got, err := GetLayer(db, "terms", "cfr", "2019-12345/107")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"term": "small unmanned aircraft"}]`, string(got.Layer))

	layer.Layer = CompressedJSON(`[]`)
	require.NoError(t, UpsertLayer(db, layer))
	got, err = GetLayer(db, "terms", "cfr", "2019-12345/107")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got.Layer))

	_, err = GetLayer(db, "terms", "cfr", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiffRoundTrip(t *testing.T) {
	db := newTestDB(t)

	diff := &Diff{
		Label:      "107-1",
		OldVersion: "2019-12345",
		NewVersion: "2020-67890",
		Diff:       CompressedJSON(`{"op": "modified"}`),
	}
	require.NoError(t, UpsertDiff(db, diff))

	got, err := GetDiff(db, "107-1", "2019-12345", "2020-67890")
	require.NoError(t, err)
	assert.JSONEq(t, `{"op": "modified"}`, string(got.Diff))

	_, err = GetDiff(db, "107-1", "2020-67890", "2019-12345")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOnlyLatestDocuments(t *testing.T) {
	db := newTestDB(t)

	oldEffective := mustDate(t, "2019-01-01")
	newEffective := mustDate(t, "2020-01-01")
	require.NoError(t, UpsertNotice(db, &Notice{
		DocumentNumber:  "v1",
		EffectiveOn:     &oldEffective,
		PublicationDate: mustDate(t, "2018-11-01"),
		Notice:          CompressedJSON(`{}`),
	}))
	require.NoError(t, UpsertNotice(db, &Notice{
		DocumentNumber:  "v2",
		EffectiveOn:     &newEffective,
		PublicationDate: mustDate(t, "2019-11-01"),
		Notice:          CompressedJSON(`{}`),
	}))

	require.NoError(t, UpsertDocument(db, &Document{
		ID: "v1/107-1", DocType: "cfr", Version: "v1",
		LabelString: "107-1", NodeType: "section", Text: "Old text.",
	}))
	require.NoError(t, UpsertDocument(db, &Document{
		ID: "v2/107-1", DocType: "cfr", Version: "v2",
		LabelString: "107-1", NodeType: "section", Text: "New text.",
	}))
	require.NoError(t, UpsertDocument(db, &Document{
		ID: "v1/107-2", DocType: "cfr", Version: "v1",
		LabelString: "107-2", NodeType: "section", Text: "Only version.",
	}))

	docs, err := OnlyLatestDocuments(db, "cfr")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "v2/107-1", docs[0].ID)
	assert.Equal(t, "New text.", docs[0].Text)
	assert.Equal(t, "v1/107-2", docs[1].ID)
}
