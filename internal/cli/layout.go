package cli

import (
	"fmt"
	"time"

	"github.com/mizuki-h/subrail/internal/engine"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [subtitle_file]",
	Short: "Show the per-track layer layout of a subtitle file",
	Long: `Load a subtitle file, classify each segment onto a track, and print
the layer every segment was assigned to.

Segments whose time ranges overlap within a track land on different
layers, up to the cap; past the cap a layer is reused and the segment is
marked as overflowing.

Examples:
  subrail layout episode.srt
  subrail layout episode.vtt --map main=ALICE,BOB --map description=NARRATOR`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine(cmd, args[0])
	if err != nil {
		return err
	}

	tracks := append(
		append([]engine.Track(nil), engine.ContentTracks...),
		engine.TrackUnassigned,
	)
	for _, track := range tracks {
		segments := eng.TrackSegments(track)
		if len(segments) == 0 {
			continue
		}

		overflow := make(map[int]bool)
		for _, id := range eng.OverflowSegments(track) {
			overflow[id] = true
		}

		fmt.Printf("%s (%d segments)\n", track, len(segments))
		for _, seg := range segments {
			marker := ""
			if overflow[seg.ID] {
				marker = "  [>cap overlap]"
			}
			fmt.Printf("  #%-4d L%d  %8s - %-8s  %s%s\n",
				seg.ID,
				seg.Layer,
				formatClock(seg.Start),
				formatClock(seg.End),
				firstLine(seg.Text),
				marker,
			)
		}
		fmt.Println()
	}

	return nil
}

func formatClock(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
