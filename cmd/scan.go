package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch/internal/classify"
	"github.com/sells-group/newswatch/internal/pipeline"
	"github.com/sells-group/newswatch/internal/render"
	"github.com/sells-group/newswatch/internal/source"
	"github.com/sells-group/newswatch/pkg/anthropic"
)

var scanDays int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one news scan",
	Long:  "Fetches all configured sources, classifies new articles, groups cross-source coverage and emits each new story once.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Classifier.APIKey == "" {
			cfg.Classifier.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.Classifier.APIKey == "" {
			return eris.New("scan: classifier api key not set (classifier.api_key or ANTHROPIC_API_KEY)")
		}

		sources, err := buildSources()
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			zap.L().Warn("scan: no enabled sources configured")
			return nil
		}

		store, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		renderer, err := buildRenderer()
		if err != nil {
			return err
		}

		classifier := classify.NewAnthropic(anthropic.NewClient(cfg.Classifier.APIKey), cfg.Classifier)

		p := pipeline.New(cfg, sources, classifier, store, renderer)
		report, err := p.Scan(ctx, scanDays)
		if err != nil {
			return eris.Wrap(err, "scan")
		}

		fmt.Fprintf(os.Stderr, "scan %s: %d fetched, %d new, %d relevant, %d stories, %d emitted\n",
			report.RunID, report.Fetched, report.Unseen, report.Relevant, report.Stories, report.Emitted)
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanDays, "days", 0, "lookback window in days (overrides config)")
	rootCmd.AddCommand(scanCmd)
}

func buildSources() ([]source.Source, error) {
	declared, err := cfg.EffectiveSources()
	if err != nil {
		return nil, err
	}

	var sources []source.Source
	for _, sc := range declared {
		if !sc.IsEnabled() {
			zap.L().Debug("scan: source disabled", zap.String("source", sc.Name))
			continue
		}
		src, err := source.FromConfig(sc, cfg.Fetch, cfg.Keywords)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func buildRenderer() (render.Renderer, error) {
	switch cfg.Output.Mode {
	case "telegram":
		return render.NewTelegram(cfg.Telegram)
	case "console", "":
		return render.NewConsole(os.Stdout), nil
	default:
		return nil, eris.Errorf("scan: unknown output mode %q", cfg.Output.Mode)
	}
}
