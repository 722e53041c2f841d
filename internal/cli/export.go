package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mizuki-h/subrail/internal/engine"
	"github.com/mizuki-h/subrail/internal/subtitle"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [snapshot_file]",
	Short: "Write one subtitle file per track from a snapshot",
	Long: `Import a JSON snapshot and write every non-empty track as its own
subtitle file, named after the track.

Examples:
  subrail export state.json
  subrail export state.json -f vtt -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
}

func runExport(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = "."
	}

	format := subtitle.Format(formatStr)
	ext := subtitle.GetExtensionForFormat(format)
	switch format {
	case subtitle.FormatSRT, subtitle.FormatVTT, subtitle.FormatASS:
	default:
		return fmt.Errorf(
			"invalid format %q: supported formats are srt, vtt, ass",
			formatStr,
		)
	}

	snap, err := readSnapshot(args[0])
	if err != nil {
		return err
	}

	eng := engine.New(engine.Options{})
	if err := eng.Import(snap, engine.ImportOptions{}); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	written := 0
	for _, track := range engine.ContentTracks {
		if len(eng.TrackSegments(track)) == 0 {
			continue
		}
		path := filepath.Join(outputDir, string(track)+ext)
		if err := writeTrackFile(eng, track, path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		written++
	}

	if written == 0 {
		return fmt.Errorf("snapshot has no content-track segments")
	}
	return nil
}
