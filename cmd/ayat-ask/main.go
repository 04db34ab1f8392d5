package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/app"
	"github.com/kailas-cloud/ayat/internal/config"
	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/ayat/internal/logger"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
	"github.com/kailas-cloud/ayat/internal/version"
)

// Exit codes.
const (
	exitRetrievalFailed = 1
	exitNotFound        = 2
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ec.ExitCode())
		}
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "ayat-ask",
		Usage:   "Answer one question against the Quran search pipeline",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Configuration environment (local, docker, prod)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.IntFlag{
				Name:    "top-k",
				Aliases: []string{"k"},
				Usage:   "Number of verses to return (0 = configured default)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Render a readable report instead of JSON",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		ArgsUsage: "<question>",
		// main maps exit codes itself
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			return askCommand(c, out)
		},
	}
}

func askCommand(c *cli.Context, out io.Writer) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return cli.Exit("a question is required", exitRetrievalFailed)
	}

	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, c.String("log-level"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	req, err := request.NewWithLimits(question, c.Int("top-k"), cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	if err != nil {
		return cli.Exit(err.Error(), exitRetrievalFailed)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, app.Overrides{})
	if err != nil {
		return cli.Exit(err.Error(), exitRetrievalFailed)
	}
	defer a.Close()

	resp, err := a.Pipeline.Answer(ctx, req)
	if err != nil {
		logger.Debug("question failed", zap.Error(err))
		return exitFor(err)
	}
	return render(out, &resp, c.Bool("pretty"))
}

// exitFor maps a pipeline error onto the process exit code.
func exitFor(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return cli.Exit(domain.ErrNotFound.Error(), exitNotFound)
	default:
		return cli.Exit(err.Error(), exitRetrievalFailed)
	}
}

func render(out io.Writer, resp *pipeline.Response, pretty bool) error {
	if !pretty {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonResponse(resp))
	}

	fmt.Fprintf(out, "Question: %s\n", resp.Query)
	if resp.ProcessedQuery != resp.Query {
		fmt.Fprintf(out, "Processed: %s\n", resp.ProcessedQuery)
	}
	fmt.Fprintln(out)
	for i := range resp.Results {
		v := &resp.Results[i]
		fmt.Fprintf(out, "%d. [%d] %d:%d  score=%.4f (%s)\n", i+1, v.QuranID, v.SurahID, v.AyahID, v.Score, v.Origin)
		fmt.Fprintf(out, "   %s\n   %s\n   %s\n", v.Arabic, v.Urdu, v.English)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Explanation (%s, %d attempts):\n%s\n",
		resp.Explanation.State(), resp.Explanation.Attempts(), resp.Explanation.Text())
	return nil
}

type verseJSON struct {
	QuranID     int64   `json:"quran_id"`
	SurahID     int     `json:"surah_id"`
	AyahID      int     `json:"ayah_id"`
	Score       float64 `json:"score"`
	Source      string  `json:"source"`
	ArabicText  string  `json:"arabic_text"`
	UrduText    string  `json:"urdu_text"`
	EnglishText string  `json:"english_text"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

type responseJSON struct {
	Query          string      `json:"query"`
	ProcessedQuery string      `json:"processed_query"`
	TopResults     []verseJSON `json:"top_results"`
	Explanation    string      `json:"explanation"`
	State          string      `json:"explanation_state"`
}

func jsonResponse(resp *pipeline.Response) responseJSON {
	out := responseJSON{
		Query:          resp.Query,
		ProcessedQuery: resp.ProcessedQuery,
		TopResults:     make([]verseJSON, len(resp.Results)),
		Explanation:    resp.Explanation.Text(),
		State:          string(resp.Explanation.State()),
	}
	for i := range resp.Results {
		v := &resp.Results[i]
		out.TopResults[i] = verseJSON{
			QuranID:     v.QuranID,
			SurahID:     v.SurahID,
			AyahID:      v.AyahID,
			Score:       v.Score,
			Source:      v.Origin,
			ArabicText:  v.Arabic,
			UrduText:    v.Urdu,
			EnglishText: v.English,
			Placeholder: v.Placeholder,
		}
	}
	return out
}
