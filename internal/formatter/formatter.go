// package formatter provides functions to export comment threads to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ExportToJSON encodes the thread as indented JSON.
func ExportToJSON(thread *models.Thread) ([]byte, error) {
	return shared.MarshalJSON(thread, true)
}

// ExportToCSV flattens a thread to CSV with columns: Kind, ID, ParentID, Username, Likes, CreatedAt, Content
//
// Each comment row is followed by its reply rows.
func ExportToCSV(thread *models.Thread) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "ID", "ParentID", "Username", "Likes", "CreatedAt", "Content"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range thread.Comments {
		c := entry.Comment
		record := []string{"comment", c.ID.String(), "0", c.Username, c.Likes.String(), c.CreatedAt, c.Content}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}

		for _, r := range entry.Replies {
			record := []string{"reply", r.ID.String(), c.ID.String(), r.Username, r.Likes.String(), r.CreatedAt, r.Content}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a thread as a Markdown document, replies quoted under their comment.
func ExportToMarkdown(thread *models.Thread) ([]byte, error) {
	var buf bytes.Buffer
	w := thread.Work

	buf.WriteString(fmt.Sprintf("# %s\n\n", w.Name))
	if w.Username != "" {
		buf.WriteString(fmt.Sprintf("**Author**: %s\n", w.Username))
	}
	buf.WriteString(fmt.Sprintf("**Likes**: %d | **Unlikes**: %d | **Views**: %d\n", w.Likes, w.Unlikes, w.Views))
	buf.WriteString(fmt.Sprintf("**Comments**: %d | **Replies**: %d\n\n", len(thread.Comments), thread.ReplyCount))

	if w.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", w.Description))
	}

	buf.WriteString("## Comments\n\n")
	for i, entry := range thread.Comments {
		c := entry.Comment
		buf.WriteString(fmt.Sprintf("### %d. %s", i+1, c.Username))
		if c.CreatedAt != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", c.CreatedAt))
		}
		buf.WriteString("\n\n")
		buf.WriteString(c.Content + "\n\n")

		for _, r := range entry.Replies {
			buf.WriteString(fmt.Sprintf("> **%s**: %s\n", r.Username, quote(r.Content)))
		}
		if len(entry.Replies) > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a thread to plain text, replies indented under their comment.
func ExportToText(thread *models.Thread) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Work: %s (%s)\n", thread.Work.Name, thread.Work.ID))
	buf.WriteString(fmt.Sprintf("Comments: %d\n", len(thread.Comments)))
	buf.WriteString(fmt.Sprintf("Replies: %d\n\n", thread.ReplyCount))

	for i, entry := range thread.Comments {
		buf.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, entry.Comment.Username, entry.Comment.Content))
		for _, r := range entry.Replies {
			buf.WriteString(fmt.Sprintf("    - %s: %s\n", r.Username, r.Content))
		}
	}

	return buf.Bytes(), nil
}

// Export renders thread in format (json, csv, markdown/md, txt/text).
func Export(thread *models.Thread, format string) ([]byte, error) {
	switch NormalizeFormat(format) {
	case FormatJSON:
		return ExportToJSON(thread)
	case FormatCSV:
		return ExportToCSV(thread)
	case FormatMarkdown:
		return ExportToMarkdown(thread)
	case FormatText:
		return ExportToText(thread)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// NormalizeFormat maps format aliases to the canonical names.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "md":
		return FormatMarkdown
	case "text":
		return FormatText
	case "":
		return FormatJSON
	default:
		return f
	}
}

// Supported reports whether format (or one of its aliases) can be rendered.
func Supported(format string) bool {
	switch NormalizeFormat(format) {
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	if NormalizeFormat(format) == FormatMarkdown {
		return "md"
	}
	return NormalizeFormat(format)
}

// WriteExport renders thread and writes it to path.
//
// Defaults to work_{id}_comments.{ext} as the filename.
func WriteExport(thread *models.Thread, format, path string) (string, error) {
	data, err := Export(thread, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("work_%s_comments.%s", thread.Work.ID, Extension(format))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func quote(s string) string {
	return strings.ReplaceAll(s, "\n", "\n> ")
}
