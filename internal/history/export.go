package history

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// exportVersion is the current export document version. Import
// accepts any document of the same major version.
const exportVersion = "v1.0.0"

// Document is the versioned export format.
type Document struct {
	Version      string            `json:"version"`
	ExportDate   string            `json:"export_date"`
	TotalRecords int               `json:"total_records"`
	Records      []Record          `json:"records"`
	Statistics   Stats             `json:"statistics"`
	Metadata     map[string]string `json:"metadata"`
}

// ImportMode selects how imported records combine with existing ones.
type ImportMode string

const (
	// ImportReplace discards the existing records and keeps only the
	// imported ones.
	ImportReplace ImportMode = "replace"

	// ImportMerge overwrites existing records sharing an imported
	// record's id and adds the rest.
	ImportMerge ImportMode = "merge"

	// ImportAppend always adds the imported records; colliding ids
	// are rewritten with a freshly generated id.
	ImportAppend ImportMode = "append"
)

// ImportOptions configures an import.
type ImportOptions struct {
	Mode ImportMode

	// SkipDuplicates drops any imported record whose id already
	// exists before the mode-specific logic runs.
	SkipDuplicates bool
}

// ImportReport summarizes what an import did.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Renamed  int `json:"renamed"`
	Total    int `json:"total"`
}

// ExportDocument builds the export document from the full history.
func (s *Store) ExportDocument(ctx context.Context) (*Document, error) {
	records, err := s.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return &Document{
		Version:      exportVersion,
		ExportDate:   s.now().Format(time.RFC3339),
		TotalRecords: len(records),
		Records:      records,
		Statistics:   stats,
		Metadata: map[string]string{
			"generator": "snapgrade",
		},
	}, nil
}

// ExportJSON writes the export document as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	doc, err := s.ExportDocument(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// csvHeader is the flat CSV export shape.
var csvHeader = []string{
	"timestamp", "display_time", "task_id",
	"total_questions", "correct_count", "wrong_count", "score", "correct_rate",
}

// ExportCSV flattens each record to one CSV row.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.GetHistory(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		sum := r.Result.Summary
		row := []string{
			strconv.FormatInt(r.Timestamp, 10),
			r.DisplayTime,
			r.TaskID,
			strconv.Itoa(sum.TotalQuestions),
			strconv.Itoa(sum.CorrectCount),
			strconv.Itoa(sum.WrongCount),
			strconv.FormatFloat(sum.TotalScore, 'f', -1, 64),
			strconv.FormatFloat(r.CorrectRate(), 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import merges an export document into the store according to the
// options, writes the combined sequence back, and invalidates the
// cache.
func (s *Store) Import(ctx context.Context, data []byte, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}

	doc, err := parseImport(data)
	if err != nil {
		return report, err
	}

	existing, err := s.loadAll(ctx)
	if err != nil {
		return report, err
	}
	existingIDs := make(map[string]bool, len(existing))
	for _, r := range existing {
		existingIDs[r.ID] = true
	}

	incoming := doc.Records
	if opts.SkipDuplicates {
		kept := incoming[:0]
		for _, r := range incoming {
			if existingIDs[r.ID] {
				report.Skipped++
				continue
			}
			kept = append(kept, r)
		}
		incoming = kept
	}

	var combined []Record
	switch opts.Mode {
	case ImportReplace:
		combined = incoming

	case ImportMerge:
		byID := make(map[string]int, len(existing))
		combined = append(combined, existing...)
		for i, r := range combined {
			byID[r.ID] = i
		}
		for _, r := range incoming {
			if i, ok := byID[r.ID]; ok {
				combined[i] = r
			} else {
				combined = append(combined, r)
			}
		}

	case ImportAppend:
		combined = append(combined, existing...)
		for _, r := range incoming {
			if existingIDs[r.ID] {
				r.ID = s.newID()
				report.Renamed++
			}
			existingIDs[r.ID] = true
			combined = append(combined, r)
		}

	default:
		return report, fmt.Errorf("unknown import mode %q", opts.Mode)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp > combined[j].Timestamp
	})

	if err := s.writeAll(ctx, combined); err != nil {
		return report, err
	}
	report.Imported = len(incoming)
	report.Total = len(combined)
	return report, nil
}

// importSchema validates the structural shape of an import document
// before any record is touched.
const importSchema = `{
	"type": "object",
	"required": ["version", "records"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"records": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "timestamp"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"timestamp": {"type": "integer"}
				}
			}
		}
	}
}`

var (
	importSchemaOnce     sync.Once
	compiledImportSchema *jsonschema.Schema
	importSchemaErr      error
)

func getImportSchema() (*jsonschema.Schema, error) {
	importSchemaOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal([]byte(importSchema), &parsed); err != nil {
			importSchemaErr = fmt.Errorf("parse import schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://history-import.json"
		if err := c.AddResource(url, parsed); err != nil {
			importSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledImportSchema, importSchemaErr = c.Compile(url)
	})
	return compiledImportSchema, importSchemaErr
}

// parseImport validates and decodes an import document. The version
// field must share the export format's major version.
func parseImport(data []byte) (*Document, error) {
	schema, err := getImportSchema()
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid import document: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("import document rejected: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode import document: %w", err)
	}

	if !semver.IsValid(doc.Version) || semver.Major(doc.Version) != semver.Major(exportVersion) {
		return nil, fmt.Errorf("unsupported export version %q (want %s.x)",
			doc.Version, semver.Major(exportVersion))
	}
	return &doc, nil
}
