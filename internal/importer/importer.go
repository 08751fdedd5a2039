// Package importer bulk-loads regulation content from a manifest-driven
// directory tree into the store.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/eregs/regcore/internal/parts"
	"github.com/eregs/regcore/pkg/models"
)

// ManifestName is the file the importer looks for at the root of an
// import tree.
const ManifestName = "manifest.yaml"

// Manifest describes the content of an import tree. File paths are
// relative to the manifest's directory.
type Manifest struct {
	Parts   []PartEntry   `mapstructure:"parts"`
	Notices []NoticeEntry `mapstructure:"notices"`
	Layers  []LayerEntry  `mapstructure:"layers"`
	Diffs   []DiffEntry   `mapstructure:"diffs"`
}

// PartEntry points at one part snapshot. Dates accept any common format
// and are normalized on load.
type PartEntry struct {
	Name      string `mapstructure:"name"`
	Title     string `mapstructure:"title"`
	Date      string `mapstructure:"date"`
	Document  string `mapstructure:"document"`
	Structure string `mapstructure:"structure"`
}

// NoticeEntry points at one rulemaking notice payload.
type NoticeEntry struct {
	DocumentNumber  string   `mapstructure:"document_number"`
	PublicationDate string   `mapstructure:"publication_date"`
	EffectiveOn     string   `mapstructure:"effective_on"`
	FRURL           string   `mapstructure:"fr_url"`
	File            string   `mapstructure:"file"`
	CFRParts        []string `mapstructure:"cfr_parts"`
}

// LayerEntry points at one layer payload.
type LayerEntry struct {
	Name    string `mapstructure:"name"`
	DocType string `mapstructure:"doc_type"`
	DocID   string `mapstructure:"doc_id"`
	File    string `mapstructure:"file"`
}

// DiffEntry points at one precomputed diff payload.
type DiffEntry struct {
	Label      string `mapstructure:"label"`
	OldVersion string `mapstructure:"old_version"`
	NewVersion string `mapstructure:"new_version"`
	File       string `mapstructure:"file"`
}

// Report counts what one import run stored.
type Report struct {
	Parts   int
	Notices int
	Layers  int
	Diffs   int
}

// Importer loads import trees. The filesystem is abstract so tests and
// alternative sources can feed it without touching disk.
type Importer struct {
	fs    afero.Fs
	db    *gorm.DB
	parts *parts.Service
	log   hclog.Logger
}

// New returns an importer over the given filesystem and store.
func New(fs afero.Fs, db *gorm.DB, partSvc *parts.Service, log hclog.Logger) *Importer {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Importer{fs: fs, db: db, parts: partSvc, log: log.Named("importer")}
}

// Load reads the manifest under root and stores every entry it lists.
// Entries are independent: a failing entry is recorded and the rest of
// the run continues. The combined error reports every failure at once.
func (i *Importer) Load(ctx context.Context, root string) (*Report, error) {
	manifest, err := i.readManifest(root)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var errs *multierror.Error

	for _, entry := range manifest.Parts {
		if err := i.loadPart(ctx, root, entry); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("part %s: %w", entry.Name, err))
			continue
		}
		report.Parts++
	}
	for _, entry := range manifest.Notices {
		if err := i.loadNotice(root, entry); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("notice %s: %w", entry.DocumentNumber, err))
			continue
		}
		report.Notices++
	}
	for _, entry := range manifest.Layers {
		if err := i.loadLayer(root, entry); err != nil {
			errs = multierror.Append(errs,
				fmt.Errorf("layer %s/%s/%s: %w", entry.Name, entry.DocType, entry.DocID, err))
			continue
		}
		report.Layers++
	}
	for _, entry := range manifest.Diffs {
		if err := i.loadDiff(root, entry); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("diff %s: %w", entry.Label, err))
			continue
		}
		report.Diffs++
	}

	failed := 0
	if errs != nil {
		failed = errs.Len()
	}
	i.log.Info("import finished",
		"parts", report.Parts,
		"notices", report.Notices,
		"layers", report.Layers,
		"diffs", report.Diffs,
		"errors", failed,
	)
	return report, errs.ErrorOrNil()
}

// readManifest decodes the manifest through a generic YAML pass so entry
// fields stay weakly typed (bare numeric names and dates are common in
// hand-written manifests).
func (i *Importer) readManifest(root string) (*Manifest, error) {
	raw, err := afero.ReadFile(i.fs, path.Join(root, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	var manifest Manifest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &manifest,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(generic); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &manifest, nil
}

func (i *Importer) loadPart(ctx context.Context, root string, entry PartEntry) error {
	date, err := parseDate(entry.Date)
	if err != nil {
		return err
	}
	document, err := i.readJSON(root, entry.Document)
	if err != nil {
		return err
	}
	structure, err := i.readJSON(root, entry.Structure)
	if err != nil {
		return err
	}

	part := &models.Part{
		Name:      entry.Name,
		Title:     entry.Title,
		Date:      date,
		Document:  document,
		Structure: structure,
	}
	return i.parts.Put(ctx, part)
}

func (i *Importer) loadNotice(root string, entry NoticeEntry) error {
	publication, err := parseDate(entry.PublicationDate)
	if err != nil {
		return err
	}
	payload, err := i.readJSON(root, entry.File)
	if err != nil {
		return err
	}

	notice := &models.Notice{
		DocumentNumber:  entry.DocumentNumber,
		FRURL:           entry.FRURL,
		PublicationDate: publication,
		Notice:          models.CompressedJSON(payload),
	}
	if entry.EffectiveOn != "" {
		effective, err := parseDate(entry.EffectiveOn)
		if err != nil {
			return err
		}
		notice.EffectiveOn = &effective
	}
	for _, part := range entry.CFRParts {
		notice.CFRParts = append(notice.CFRParts, models.NoticeCFRPart{CFRPart: part})
	}
	return models.UpsertNotice(i.db, notice)
}

func (i *Importer) loadLayer(root string, entry LayerEntry) error {
	payload, err := i.readJSON(root, entry.File)
	if err != nil {
		return err
	}
	return models.UpsertLayer(i.db, &models.Layer{
		Name:    entry.Name,
		DocType: entry.DocType,
		DocID:   entry.DocID,
		Layer:   models.CompressedJSON(payload),
	})
}

func (i *Importer) loadDiff(root string, entry DiffEntry) error {
	payload, err := i.readJSON(root, entry.File)
	if err != nil {
		return err
	}
	return models.UpsertDiff(i.db, &models.Diff{
		Label:      entry.Label,
		OldVersion: entry.OldVersion,
		NewVersion: entry.NewVersion,
		Diff:       models.CompressedJSON(payload),
	})
}

// readJSON reads a payload file and checks it is valid JSON before it
// goes anywhere near the store.
func (i *Importer) readJSON(root, file string) (models.JSON, error) {
	if file == "" {
		return nil, fmt.Errorf("payload file path is required")
	}
	raw, err := afero.ReadFile(i.fs, path.Join(root, file))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	j := models.JSON(raw)
	if j.IsNull() {
		return nil, fmt.Errorf("%s: payload must not be empty", file)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s: payload is not valid JSON", file)
	}
	return j, nil
}

// parseDate accepts any recognizable date format and normalizes it.
func parseDate(s string) (models.Date, error) {
	if s == "" {
		return "", fmt.Errorf("date is required")
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return models.ParseDate(t.Format("2006-01-02"))
}
