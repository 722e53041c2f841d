package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mizuki-h/subrail/internal/engine"
	"github.com/mizuki-h/subrail/internal/video"
	"github.com/spf13/cobra"
)

// interval of the playback synchronization tick
const tickInterval = 100 * time.Millisecond

var playCmd = &cobra.Command{
	Use:   "play [subtitle_file]",
	Short: "Print composed caption lines against a running clock",
	Long: `Simulate playback: advance a clock and print the caption composed
from the first active segment of each visible track.

The synchronization tick runs every 100ms and stops when the timeline
ends or on interrupt. With --media the timeline length is probed from
the media file via ffprobe; otherwise the last segment end is used.

Examples:
  subrail play episode.srt
  subrail play episode.vtt --media episode.mp4 --speed 4
  subrail play episode.srt --single-line --hide translation`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		String("media", "", "Media file to probe the timeline duration from")
	playCmd.Flags().
		Float64("speed", 1.0, "Clock speed multiplier")
	playCmd.Flags().
		Bool("single-line", false,
			"Degraded single-line mode: first active segment of any track")
	playCmd.Flags().
		StringArray("hide", nil, "Track to hide (repeatable)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine(cmd, args[0])
	if err != nil {
		return err
	}

	mediaPath, _ := cmd.Flags().GetString("media")
	speed, _ := cmd.Flags().GetFloat64("speed")
	singleLine, _ := cmd.Flags().GetBool("single-line")
	hidden, _ := cmd.Flags().GetStringArray("hide")

	if speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", speed)
	}

	for _, name := range hidden {
		track := engine.Track(strings.TrimSpace(name))
		if !engine.ValidTrack(track) {
			return fmt.Errorf("unknown track %q in --hide", name)
		}
		eng.SetTrackVisible(track, false)
	}

	end := timelineEnd(eng)
	if mediaPath != "" {
		info, err := video.NewProber().GetInfo(cmd.Context(), mediaPath)
		if err != nil {
			return fmt.Errorf("failed to probe media: %w", err)
		}
		if info.Duration > 0 {
			end = info.Duration
		}
		logger.Infow("Probed media",
			"path", mediaPath,
			"duration", info.Duration,
		)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
	)
	defer stop()

	// the tick is owned here, not inside the engine, and is always
	// cancelled before the command returns
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	started := time.Now()
	var lastShown string

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-ticker.C:
			now := time.Duration(float64(time.Since(started)) * speed)
			if now > end {
				fmt.Println()
				return nil
			}

			shown := composeAt(eng, now, singleLine)
			if shown == lastShown {
				continue
			}
			lastShown = shown
			if shown == "" {
				continue
			}
			fmt.Printf("[%s]\n%s\n", formatClock(now), shown)
		}
	}
}

func composeAt(eng *engine.Engine, now time.Duration, singleLine bool) string {
	if singleLine {
		line, ok := eng.ComposeSingleLine(now)
		if !ok {
			return ""
		}
		return line.Text
	}

	lines := eng.ComposeDisplayLines(now, nil)
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%-12s %s", line.Track+":", line.Text)
	}
	return sb.String()
}

func timelineEnd(eng *engine.Engine) time.Duration {
	var end time.Duration
	for _, seg := range eng.Segments() {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}
