package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mizuki-h/subrail/internal/engine"
	"github.com/mizuki-h/subrail/internal/rewrite"
	"github.com/spf13/cobra"
)

var reinterpretCmd = &cobra.Command{
	Use:   "reinterpret [subtitle_file]",
	Short: "Rewrite description-track text with AI",
	Long: `Send the description track (sound and scene captions) through an AI
rewrite and apply the result as tracked text replacements.

Every applied replacement is recorded in the edit history with its
original text, so it can be reverted later from a saved snapshot.

Examples:
  subrail reinterpret episode.srt --provider anthropic
  subrail reinterpret episode.vtt --max-chars 42 -o rewritten.vtt
  subrail reinterpret episode.ass --provider gemini --snapshot state.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReinterpret,
}

func init() {
	rootCmd.AddCommand(reinterpretCmd)

	reinterpretCmd.Flags().
		String("provider", "anthropic",
			"Rewrite provider (anthropic, openai, gemini)")
	reinterpretCmd.Flags().
		StringP("api-key", "k", "",
			"API key (or set ANTHROPIC_API_KEY/OPENAI_API_KEY/GEMINI_API_KEY)")
	reinterpretCmd.Flags().
		String("model", "", "Model to use (provider-specific default)")
	reinterpretCmd.Flags().
		Int("max-chars", 0, "Target length per rewritten text in characters")
	reinterpretCmd.Flags().
		String("prompt", "", "Additional rewrite instructions")
	reinterpretCmd.Flags().
		Int("concurrency", 3, "Number of parallel rewrite workers")
	reinterpretCmd.Flags().
		Int("batch-size", 50, "Number of captions per API request")
	reinterpretCmd.Flags().
		String("snapshot", "", "Write the resulting engine snapshot to this path")
}

func runReinterpret(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	outputPath, _ := cmd.Flags().GetString("output")

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := rewrite.Provider(providerStr)
	apiKey, err := resolveAPIKey(provider, apiKey)
	if err != nil {
		return err
	}

	eng, err := loadEngine(cmd, subtitlePath)
	if err != nil {
		return err
	}

	descriptions := eng.TrackSegments(engine.TrackDescription)
	if len(descriptions) == 0 {
		return fmt.Errorf(
			"no description-track segments in %s: nothing to reinterpret",
			subtitlePath,
		)
	}

	items := make([]rewrite.RewriteItem, 0, len(descriptions))
	for _, seg := range descriptions {
		items = append(items, rewrite.RewriteItem{
			Index: seg.ID,
			Text:  seg.Text,
		})
	}

	rewriter, err := rewrite.Factory(ctx, provider, apiKey, rewrite.Options{
		Model:     model,
		Prompt:    prompt,
		MaxChars:  maxChars,
		BatchSize: batchSize,
	})
	if err != nil {
		return err
	}

	logger.Infow("Rewriting descriptions",
		"provider", providerStr,
		"segments", len(items),
		"max_chars", maxChars,
	)

	var results []rewrite.RewriteResult
	if concurrent, ok := rewriter.(rewrite.ConcurrentRewriter); ok {
		results, err = concurrent.RewriteWithConcurrency(
			ctx,
			items,
			concurrency,
		)
	} else {
		results, err = rewriter.Rewrite(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("rewrite failed: %w", err)
	}

	replacements := make([]engine.Replacement, 0, len(results))
	for _, result := range results {
		replacements = append(replacements, engine.Replacement{
			SegmentID:    result.Index,
			NewText:      result.Text,
			TargetLength: maxChars,
		})
	}

	applied := eng.ApplyReplacements(
		replacements,
		"reinterpret:"+providerStr,
	)

	fmt.Printf(
		"Applied %d of %d replacements\n",
		len(applied),
		len(replacements),
	)
	for _, rep := range applied {
		fmt.Printf("  #%-4d %s\n", rep.SegmentID, firstLine(rep.NewText))
	}

	if snapshotPath != "" {
		if err := writeSnapshot(eng, snapshotPath, subtitlePath); err != nil {
			return err
		}
		fmt.Printf("Snapshot written: %s\n", snapshotPath)
	}

	if outputPath != "" {
		if err := writeTrackFile(
			eng,
			engine.TrackDescription,
			outputPath,
		); err != nil {
			return err
		}
		absOutput, _ := filepath.Abs(outputPath)
		fmt.Printf("Rewritten descriptions written: %s\n", absOutput)
	}

	return nil
}

func resolveAPIKey(provider rewrite.Provider, apiKey string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}

	var envVar string
	switch provider {
	case rewrite.ProviderAnthropic:
		envVar = "ANTHROPIC_API_KEY"
	case rewrite.ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	case rewrite.ProviderGemini:
		envVar = "GEMINI_API_KEY"
	default:
		return "", fmt.Errorf(
			"unsupported rewrite provider %q: use anthropic, openai, or gemini",
			provider,
		)
	}

	if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}
