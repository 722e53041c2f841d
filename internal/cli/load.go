package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mizuki-h/subrail/internal/engine"
	"github.com/mizuki-h/subrail/internal/subtitle"
	"github.com/spf13/cobra"
)

// parses --map flags of the form track=SPEAKER,SPEAKER into the
// classifier's speaker mapping
func parseSpeakerMap(flags []string) (map[engine.Track][]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	mapping := make(map[engine.Track][]string)
	for _, flag := range flags {
		parts := strings.SplitN(flag, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf(
				"invalid --map value %q: expected track=SPEAKER[,SPEAKER]",
				flag,
			)
		}
		track := engine.Track(strings.TrimSpace(parts[0]))
		if !engine.ValidTrack(track) {
			return nil, fmt.Errorf("unknown track %q in --map", parts[0])
		}
		for _, speaker := range strings.Split(parts[1], ",") {
			speaker = strings.TrimSpace(speaker)
			if speaker != "" {
				mapping[track] = append(mapping[track], speaker)
			}
		}
	}
	return mapping, nil
}

// loads a subtitle file into a fresh engine, applying any --map flags
func loadEngine(cmd *cobra.Command, path string) (*engine.Engine, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", path)
	}

	file, err := subtitle.Open(path)
	if err != nil {
		return nil, err
	}

	eng := engine.New(engine.Options{})

	mapFlags, _ := cmd.Flags().GetStringArray("map")
	mapping, err := parseSpeakerMap(mapFlags)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		eng.SetSpeakerMap(mapping)
	}

	sub := file.Subtitle()
	inputs := make([]engine.SegmentInput, 0, len(sub.Entries))
	for _, entry := range sub.Entries {
		inputs = append(inputs, engine.SegmentInput{
			Start:   entry.StartTime,
			End:     entry.EndTime,
			Text:    entry.Text,
			Speaker: entry.Speaker,
		})
	}

	segments, err := eng.LoadSegments(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	logger.Debugw("Loaded subtitle file",
		"path", path,
		"segments", len(segments),
	)
	return eng, nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx] + " …"
	}
	return text
}
