package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mizuki-h/subrail/internal/engine"
	"github.com/mizuki-h/subrail/internal/subtitle"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and load engine snapshots",
	Long: `A snapshot is the complete engine state as one JSON document:
segments with their track and layer assignment, the edit history, and
track flags. It is the only persistence format subrail has.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save [subtitle_file]",
	Short: "Build an engine snapshot from a subtitle file",
	Long: `Load a subtitle file and write the resulting engine state as a JSON
snapshot.

Examples:
  subrail snapshot save episode.srt -o state.json
  subrail snapshot save episode.vtt --map description=NARRATOR -o state.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotSave,
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load [snapshot_file]",
	Short: "Load a snapshot and print its layout",
	Long: `Read a JSON snapshot back into an engine and print a summary. With
--merge the snapshot is merged into segments loaded from the given
subtitle file instead of replacing them.

Examples:
  subrail snapshot load state.json
  subrail snapshot load state.json --merge episode.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotLoad,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotLoadCmd)

	snapshotLoadCmd.Flags().
		String("merge", "",
			"Subtitle file to load first; snapshot segments are merged in")
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = args[0] + ".json"
	}

	eng, err := loadEngine(cmd, args[0])
	if err != nil {
		return err
	}

	if err := writeSnapshot(eng, outputPath, args[0]); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Snapshot written: %s\n", absOutput)
	return nil
}

func runSnapshotLoad(cmd *cobra.Command, args []string) error {
	mergePath, _ := cmd.Flags().GetString("merge")

	snap, err := readSnapshot(args[0])
	if err != nil {
		return err
	}

	var eng *engine.Engine
	opts := engine.ImportOptions{}
	if mergePath != "" {
		eng, err = loadEngine(cmd, mergePath)
		if err != nil {
			return err
		}
		opts.PreserveExisting = true
	} else {
		eng = engine.New(engine.Options{})
	}

	if err := eng.Import(snap, opts); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	segments := eng.Segments()
	histories := eng.Histories()
	fmt.Printf(
		"Loaded snapshot from %s: %d segments, %d history entries\n",
		snap.Source,
		len(segments),
		len(histories),
	)
	for _, track := range engine.ContentTracks {
		if n := len(eng.TrackSegments(track)); n > 0 {
			fmt.Printf("  %-12s %d segments\n", track, n)
		}
	}
	return nil
}

func writeSnapshot(eng *engine.Engine, path, source string) error {
	snap := eng.Export(source)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func readSnapshot(path string) (engine.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf(
			"failed to read snapshot: %w",
			err,
		)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf(
			"failed to decode snapshot: %w",
			err,
		)
	}
	return snap, nil
}

// writes one track's segments as a subtitle file; format follows the
// output extension
func writeTrackFile(eng *engine.Engine, track engine.Track, path string) error {
	segments := eng.TrackSegments(track)
	if len(segments) == 0 {
		return fmt.Errorf("track %s has no segments", track)
	}

	entries := make([]subtitle.Entry, 0, len(segments))
	for i, seg := range segments {
		entries = append(entries, subtitle.Entry{
			Index:     i + 1,
			StartTime: seg.Start,
			EndTime:   seg.End,
			Speaker:   seg.Speaker,
			Text:      seg.Text,
		})
	}

	format := subtitle.GetFormatFromExtension(path)
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	return writer.Write(&subtitle.Subtitle{
		Entries: entries,
		Format:  string(format),
	}, path)
}
