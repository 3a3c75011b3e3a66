// Package render produces export files and terminal output from validation
// findings.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/summary"
)

// CSVHeader is the column order of RenderCSV.
var CSVHeader = []string{
	"issue_type", "frame", "sensor", "object_type", "object",
	"annotation", "attribute", "schema_path", "reason",
}

// RenderJSON produces the pretty-printed array of serialized issues. Every
// record is checked against the export shape first; a malformed record is
// an error and nothing is rendered.
func RenderJSON(issues []issue.Issue) ([]byte, error) {
	records := issue.SerializeAll(issues)
	for i, r := range records {
		if errs := issue.ValidateSerialized(r); len(errs) > 0 {
			return nil, errors.Newf("render: issue %d (%s): %s", i, r.Type, strings.Join(errs, "; "))
		}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "render: json marshal")
	}
	return b, nil
}

// RenderCSV produces a tab-separated table with a header row and one row per
// issue. Schema issues leave the scene columns empty and fill schema_path.
func RenderCSV(issues []issue.Issue) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.Write(CSVHeader); err != nil {
		return nil, errors.Wrap(err, "render: csv")
	}
	for _, i := range issues {
		if err := w.Write(csvRow(i)); err != nil {
			return nil, errors.Wrap(err, "render: csv")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "render: csv")
	}
	return buf.Bytes(), nil
}

func csvRow(i issue.Issue) []string {
	if i.Type == issue.TypeSchema {
		return []string{string(i.Type), "", "", "", "", "", "", i.SchemaPath, i.Reason}
	}
	ids := i.Identifiers
	frame := ""
	if ids.Frame != nil {
		frame = strconv.Itoa(*ids.Frame)
	}
	return []string{
		string(i.Type),
		frame,
		ids.Sensor,
		ids.ObjectType,
		uuidString(ids.Object),
		uuidString(ids.Annotation),
		ids.Attribute,
		"",
		i.Reason,
	}
}

func uuidString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

const (
	rule     = "============================================================"
	thinRule = "----------------------------------------"
)

// RenderSummary formats run totals for the terminal.
func RenderSummary(s *summary.Summary) string {
	var sb strings.Builder
	sb.WriteString("\n" + rule + "\nVALIDATION SUMMARY\n" + rule + "\n")
	fmt.Fprintf(&sb, "Scenes validated: %d\n", s.Scenes)
	fmt.Fprintf(&sb, "Scenes with issues: %d\n", s.ScenesWithIssues)
	if s.ScenesFailed > 0 {
		fmt.Fprintf(&sb, "Scenes failed: %d\n", s.ScenesFailed)
	}
	fmt.Fprintf(&sb, "Total issues found: %d\n", s.Total)

	if s.Total == 0 {
		sb.WriteString("\nNo issues found!\n")
		return sb.String()
	}

	sb.WriteString("\nIssues by type:\n" + thinRule + "\n")
	for _, c := range s.ByType() {
		fmt.Fprintf(&sb, "  %5dx %s\n", c.Count, c.Name)
	}

	if attrs := s.Attributes(); len(attrs) > 0 {
		sb.WriteString("\nAttribute details:\n" + thinRule + "\n")
		for _, a := range attrs {
			fmt.Fprintf(&sb, "  %s:\n", a.Type)
			for _, c := range a.Counts {
				fmt.Fprintf(&sb, "      %5dx %s\n", c.Count, c.Name)
			}
		}
	}
	sb.WriteString(rule + "\n")
	return sb.String()
}
