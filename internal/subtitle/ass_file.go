package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// parsed ASS/SSA subtitle file
type ASSFile struct {
	entries []Entry
}

var (
	assTimeRegex        = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)
	assLeadingTagsRegex = regexp.MustCompile(`\{[^}]*\}`)
)

func parseASSFile(path string) (*ASSFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ASS file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	inEvents := false
	var columns []string
	startIdx, endIdx, nameIdx, textIdx := -1, -1, -1, -1
	lineNum := 0
	entryIndex := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(
				strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]"),
			)
			inEvents = section == "events"
			continue
		}
		if !inEvents {
			continue
		}

		if strings.HasPrefix(trimmed, "Format:") {
			columns = nil
			for _, col := range strings.Split(
				strings.TrimPrefix(trimmed, "Format:"),
				",",
			) {
				columns = append(columns, strings.TrimSpace(col))
			}
			for i, col := range columns {
				switch {
				case strings.EqualFold(col, "Start"):
					startIdx = i
				case strings.EqualFold(col, "End"):
					endIdx = i
				case strings.EqualFold(col, "Name"):
					nameIdx = i
				case strings.EqualFold(col, "Text"):
					textIdx = i
				}
			}
			if startIdx < 0 || endIdx < 0 || textIdx < 0 {
				return nil, fmt.Errorf(
					"ASS file missing Start/End/Text columns in Format line",
				)
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		if columns == nil {
			return nil, fmt.Errorf(
				"ASS file has Dialogue before Format line (line %d)",
				lineNum,
			)
		}

		content := strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:"))
		fields := splitASSFields(content, len(columns))
		if len(fields) < len(columns) {
			return nil, fmt.Errorf(
				"malformed Dialogue at line %d: expected %d fields, got %d",
				lineNum,
				len(columns),
				len(fields),
			)
		}

		startTime, err := parseASSTimestamp(strings.TrimSpace(fields[startIdx]))
		if err != nil {
			return nil, fmt.Errorf(
				"invalid start timestamp at line %d: %w",
				lineNum,
				err,
			)
		}
		endTime, err := parseASSTimestamp(strings.TrimSpace(fields[endIdx]))
		if err != nil {
			return nil, fmt.Errorf(
				"invalid end timestamp at line %d: %w",
				lineNum,
				err,
			)
		}

		speaker := ""
		if nameIdx >= 0 {
			speaker = strings.TrimSpace(fields[nameIdx])
		}

		text := fields[textIdx]
		text = assLeadingTagsRegex.ReplaceAllString(text, "")
		text = strings.ReplaceAll(text, "\\N", "\n")
		text = strings.ReplaceAll(text, "\\n", "\n")

		entryIndex++
		entries = append(entries, Entry{
			Index:     entryIndex,
			StartTime: startTime,
			EndTime:   endTime,
			Speaker:   speaker,
			Text:      strings.TrimSpace(text),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}

	return &ASSFile{entries: entries}, nil
}

// splits a Dialogue line into exactly numFields fields; the final Text
// field keeps its embedded commas
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}

	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			remaining = ""
			break
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}

	parts = append(parts, remaining)

	return parts
}

// H:MM:SS.cc
func parseASSTimestamp(s string) (time.Duration, error) {
	matches := assTimeRegex.FindStringSubmatch(s)
	if len(matches) != 5 {
		return 0, fmt.Errorf("malformed ASS timestamp %q", s)
	}

	h, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, err
	}
	sec, err := strconv.Atoi(matches[3])
	if err != nil {
		return 0, err
	}
	cs, err := strconv.Atoi(matches[4])
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(cs)*10*time.Millisecond, nil
}

func (f *ASSFile) Format() Format {
	return FormatASS
}

func (f *ASSFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
		Format:  string(FormatASS),
	}
}

func (f *ASSFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.entries) {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(f.entries)-1,
		)
	}
	f.entries[index].Text = text
	return nil
}

func (f *ASSFile) Write(path string) error {
	writer, err := NewWriter(FormatASS)
	if err != nil {
		return err
	}
	return writer.Write(f.Subtitle(), path)
}
