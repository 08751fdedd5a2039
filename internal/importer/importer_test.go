package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eregs/regcore/internal/parts"
	"github.com/eregs/regcore/pkg/models"
)

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
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))
	return db
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

const partDocument = `{
	"label": ["107"],
	"node_type": "part",
	"title": "Part 107 - Small Unmanned Aircraft Systems",
	"children": [
		{"label": ["107", "1"], "node_type": "section", "text": "Applicability."}
	]
}`

func newImportTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()

	writeFile(t, fs, "import/manifest.yaml", `
parts:
  - name: "107"
    title: "14"
    date: "January 31, 2021"
    document: parts/107.json
    structure: parts/107.json
notices:
  - document_number: "2021-05229"
    publication_date: "2021-03-16"
    effective_on: "Apr 21, 2021"
    fr_url: "https://www.federalregister.gov/d/2021-05229"
    file: notices/2021-05229.json
    cfr_parts: ["107"]
layers:
  - name: terms
    doc_type: cfr
    doc_id: "14/107"
    file: layers/terms.json
diffs:
  - label: "107-1"
    old_version: "2020-01-01"
    new_version: "2021-01-31"
    file: diffs/107-1.json
`)
	writeFile(t, fs, "import/parts/107.json", partDocument)
	writeFile(t, fs, "import/notices/2021-05229.json", `{"title": "Remote ID Correction"}`)
	writeFile(t, fs, "import/layers/terms.json", `{"107-1": []}`)
	writeFile(t, fs, "import/diffs/107-1.json", `{"op": "modified"}`)
	return fs
}

func TestLoad(t *testing.T) {
	db := newTestDB(t)
	fs := newImportTree(t)
	imp := New(fs, db, parts.NewService(db, nil), nil)

	report, err := imp.Load(context.Background(), "import")
	require.NoError(t, err)
	assert.Equal(t, &Report{Parts: 1, Notices: 1, Layers: 1, Diffs: 1}, report)

	t.Run("dates normalized", func(t *testing.T) {
		part, err := models.GetPart(db, "14", "107", models.Date("2021-01-31"))
		require.NoError(t, err)

		rows, err := models.SearchIndexesForPart(db, part.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		notice, err := models.GetNotice(db, "2021-05229")
		require.NoError(t, err)
		require.NotNil(t, notice.EffectiveOn)
		assert.Equal(t, models.Date("2021-04-21"), *notice.EffectiveOn)
	})

	t.Run("auxiliary payloads stored", func(t *testing.T) {
		layer, err := models.GetLayer(db, "terms", "cfr", "14/107")
		require.NoError(t, err)
		assert.JSONEq(t, `{"107-1": []}`, string(layer.Layer))

		diff, err := models.GetDiff(db, "107-1", "2020-01-01", "2021-01-31")
		require.NoError(t, err)
		assert.JSONEq(t, `{"op": "modified"}`, string(diff.Diff))
	})
}

func TestLoadContinuesPastFailures(t *testing.T) {
	db := newTestDB(t)
	fs := afero.NewMemMapFs()

	writeFile(t, fs, "import/manifest.yaml", `
parts:
  - name: "107"
    title: "14"
    date: "not a date at all zzz"
    document: parts/107.json
    structure: parts/107.json
  - name: "431"
    title: "45"
    date: "2020-03-01"
    document: parts/431.json
    structure: parts/431.json
layers:
  - name: terms
    doc_type: cfr
    doc_id: "14/107"
    file: layers/missing.json
`)
	writeFile(t, fs, "import/parts/107.json", partDocument)
	writeFile(t, fs, "import/parts/431.json",
		`{"label": ["431"], "node_type": "part", "title": "Part 431"}`)

	imp := New(fs, db, parts.NewService(db, nil), nil)
	report, err := imp.Load(context.Background(), "import")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "part 107")
	assert.Contains(t, err.Error(), "layer terms")

	// The good entry still landed.
	assert.Equal(t, 1, report.Parts)
	assert.Zero(t, report.Layers)
	_, getErr := models.GetPart(db, "45", "431", models.Date("2020-03-01"))
	assert.NoError(t, getErr)
}

func TestLoadMissingManifest(t *testing.T) {
	db := newTestDB(t)
	imp := New(afero.NewMemMapFs(), db, parts.NewService(db, nil), nil)

	_, err := imp.Load(context.Background(), "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest")
}

func TestLoadRejectsInvalidPayload(t *testing.T) {
	db := newTestDB(t)
	fs := afero.NewMemMapFs()

	writeFile(t, fs, "import/manifest.yaml", `
layers:
  - name: terms
    doc_type: cfr
    doc_id: "14/107"
    file: layers/terms.json
`)
	writeFile(t, fs, "import/layers/terms.json", `{"unterminated": `)

	imp := New(fs, db, parts.NewService(db, nil), nil)
	report, err := imp.Load(context.Background(), "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
	assert.Zero(t, report.Layers)
}
