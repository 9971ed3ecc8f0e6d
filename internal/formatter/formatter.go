// package formatter renders playlists and reconciliation reports to
// various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/trackdown/internal/match"
	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/shared"
	"github.com/desertthunder/trackdown/internal/tasks"
)

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist, Album, Duration, ISRC
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", export.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// ReportToCSV converts a reconciliation outcome to CSV with one row per
// playlist track: Query, Status, Score, Best Candidate.
func ReportToCSV(compare *tasks.CompareResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Query", "Status", "Score", "Best Candidate"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range compare.Results {
		record := []string{
			r.Query,
			r.Status.String(),
			strconv.Itoa(r.Score),
			r.Candidate,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToJSON converts a full run result to indented JSON.
func ReportToJSON(result *tasks.RunResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// ReportToMarkdown converts a full run result to a Markdown report with
// a summary section, a per-track table, and the staged additions.
func ReportToMarkdown(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	compare := result.Compare

	buf.WriteString(fmt.Sprintf("# Reconciliation: %s\n\n", compare.Playlist.Playlist.Name))
	buf.WriteString(fmt.Sprintf("**Playlist tracks**: %d\n", len(compare.Results)))
	buf.WriteString(fmt.Sprintf("**Local tracks**: %d\n", compare.LocalCount))
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n", compare.MatchedCount))
	buf.WriteString(fmt.Sprintf("**Missing**: %d\n\n", compare.MissingCount))

	buf.WriteString("## Tracks\n\n")
	buf.WriteString("| Track | Status | Score | Best Local Candidate |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, r := range compare.Results {
		buf.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", r.Query, r.Status, r.Score, r.Candidate))
	}

	if len(result.Additions) > 0 {
		buf.WriteString("\n## Staged Additions\n\n")
		for _, a := range result.Additions {
			if a.TrackID != "" {
				buf.WriteString(fmt.Sprintf("- %s (`%s`)\n", a.SourceKey, a.TrackID))
			} else {
				buf.WriteString(fmt.Sprintf("- %s (no candidate found)\n", a.SourceKey))
			}
		}
	}

	if result.Created != nil {
		buf.WriteString(fmt.Sprintf("\nCreated playlist **%s** (ID: %s) with %d tracks.\n",
			result.Created.Name, result.Created.ID, result.Staged))
	}

	return buf.Bytes(), nil
}

// ReportToText converts a full run result to a plain text summary.
func ReportToText(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	compare := result.Compare

	buf.WriteString(fmt.Sprintf("Playlist: %s (%d tracks)\n", compare.Playlist.Playlist.Name, len(compare.Results)))
	buf.WriteString(fmt.Sprintf("Local library: %d tracks\n", compare.LocalCount))
	buf.WriteString(fmt.Sprintf("Matched: %d  Missing: %d\n", compare.MatchedCount, compare.MissingCount))

	if compare.MissingCount > 0 {
		buf.WriteString("\nMissing tracks:\n")
		for _, r := range compare.Results {
			if r.Status == match.Missing {
				buf.WriteString(fmt.Sprintf("  - %s (best local: %s, score %d)\n", r.Query, r.Candidate, r.Score))
			}
		}
	}

	if result.Staged > 0 || result.Unmatched > 0 {
		buf.WriteString(fmt.Sprintf("\nResolved: %d staged, %d without a candidate\n", result.Staged, result.Unmatched))
	}
	if result.Created != nil {
		buf.WriteString(fmt.Sprintf("Created playlist: %s (ID: %s)\n", result.Created.Name, result.Created.ID))
	}

	return buf.Bytes(), nil
}

// WriteReport renders a run result in the requested format ("csv",
// "json", "markdown", or "text") and writes it to path. Returns the
// written path.
func WriteReport(result *tasks.RunResult, path, format string) (string, error) {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = ReportToCSV(result.Compare)
	case "json":
		data, err = ReportToJSON(result)
	case "markdown", "md":
		data, err = ReportToMarkdown(result)
	case "text", "":
		data, err = ReportToText(result)
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
