package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

type VTTFile struct {
	entries []Entry
}

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)

	// WEBVTT voice span: <v Speaker>text</v>
	vttVoiceRegex = regexp.MustCompile(`^<v(?:\.[^ >]*)?\s+([^>]+)>`)
	vttTagRegex   = regexp.MustCompile(`</?v[^>]*>`)
)

func parseVTTFile(path string) (*VTTFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open VTT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	var currentEntry *Entry
	var textLines []string
	lineNum := 0
	headerParsed := false
	entryIndex := 0

	flush := func() {
		if currentEntry == nil || len(textLines) == 0 {
			return
		}
		speaker, text := extractVoiceTag(strings.Join(textLines, "\n"))
		currentEntry.Speaker = speaker
		currentEntry.Text = text
		entries = append(entries, *currentEntry)
		currentEntry = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if !headerParsed {
			if strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				headerParsed = true
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") {
			for scanner.Scan() {
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		matches := vttTimestampRegex.FindStringSubmatch(line)
		if len(matches) == 9 {
			flush()

			startTime, err := parseClockTimestamp(
				matches[1], matches[2], matches[3], matches[4],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			endTime, err := parseClockTimestamp(
				matches[5], matches[6], matches[7], matches[8],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}

			entryIndex++
			currentEntry = &Entry{
				Index:     entryIndex,
				StartTime: startTime,
				EndTime:   endTime,
			}
			continue
		}

		shortMatches := vttShortTimestampRegex.FindStringSubmatch(line)
		if len(shortMatches) == 7 {
			flush()

			startTime, err := parseClockTimestamp(
				"00", shortMatches[1], shortMatches[2], shortMatches[3],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			endTime, err := parseClockTimestamp(
				"00", shortMatches[4], shortMatches[5], shortMatches[6],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}

			entryIndex++
			currentEntry = &Entry{
				Index:     entryIndex,
				StartTime: startTime,
				EndTime:   endTime,
			}
			continue
		}

		if currentEntry != nil {
			textLines = append(textLines, line)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return &VTTFile{entries: entries}, nil
}

// pulls the speaker out of a leading voice span and strips voice tags
func extractVoiceTag(text string) (string, string) {
	matches := vttVoiceRegex.FindStringSubmatch(text)
	speaker := ""
	if len(matches) == 2 {
		speaker = strings.TrimSpace(matches[1])
	}
	return speaker, strings.TrimSpace(vttTagRegex.ReplaceAllString(text, ""))
}

func (f *VTTFile) Format() Format {
	return FormatVTT
}

func (f *VTTFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
		Format:  string(FormatVTT),
	}
}

func (f *VTTFile) SetText(index int, text string) error {
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

func (f *VTTFile) Write(path string) error {
	writer, err := NewWriter(FormatVTT)
	if err != nil {
		return err
	}
	return writer.Write(f.Subtitle(), path)
}
