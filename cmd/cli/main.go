
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"indiesite/internal/build"
	"indiesite/internal/collections"
	"indiesite/internal/config"
	"indiesite/internal/fetch"
	"indiesite/internal/ioformats"
	"indiesite/internal/models"
	"indiesite/internal/ranker"
	"indiesite/internal/webmention"
	"indiesite/pkg/logger"
)

func main() {
	app := cli.App{
		Name:  "site",
		Usage: "webmention aggregation and popularity data for the site build",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to site.yaml",
				EnvVars: []string{"SITE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "build",
			Usage: "load datasets and write pages.ndjson and popular.json",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "output", Usage: "output directory (default from config)"},
			},
			Action: runBuild,
		},
		{
			Name:  "mentions",
			Usage: "print the webmentions for one or more page URLs as NDJSON",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "url", Usage: "absolute page URL"},
				&cli.StringFlag{Name: "types", Usage: "comma separated interaction kinds"},
				&cli.StringFlag{Name: "input", Usage: "csv, ndjson or text file of page URLs"},
			},
			Action: runMentions,
		},
		{
			Name:   "classify",
			Usage:  "print the labels of every page as NDJSON",
			Action: runClassify,
		},
		{
			Name:  "popular",
			Usage: "print the most popular posts",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "metric", Value: string(ranker.MetricPerDaysPosted), Usage: "rankPerDaysPosted or rankTotal"},
				&cli.IntFlag{Name: "limit", Usage: "number of posts (default from config)"},
			},
			Action: runPopular,
		},
	}
	app.RunAndExitOnError()
}

type env struct {
	cfg    *config.Config
	log    *logger.Logger
	loader ioformats.Loader
}

func setup(cctx *cli.Context) (*env, error) {
	cfg, err := config.Load(config.Path(cctx.String("config")))
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if cctx.Bool("verbose") {
		level = "debug"
	}
	log := logger.NewWithLevel(os.Stderr, level)
	client := fetch.NewHTTPClient(cfg.FetchTimeout, 5*time.Second, 32*1024*1024)
	return &env{cfg: cfg, log: log, loader: ioformats.Loader{Client: client}}, nil
}

func runBuild(cctx *cli.Context) error {
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	start := time.Now()
	ds, err := build.Load(cctx.Context, e.cfg, e.loader, e.log)
	if err != nil {
		return err
	}
	res, err := build.Run(cctx.Context, ds, build.OptionsFrom(e.cfg))
	if err != nil {
		return err
	}
	out := cctx.String("output")
	if out == "" {
		out = e.cfg.OutputDir
	}
	if err := build.Write(out, res); err != nil {
		return err
	}
	e.log.Infof("wrote %d pages to %s in %s", len(res.Pages), out, time.Since(start))
	return nil
}

func runMentions(cctx *cli.Context) error {
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	var urls []string
	switch {
	case cctx.String("input") != "":
		urls, err = ioformats.ReadTargets(cctx.String("input"))
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	case cctx.String("url") != "":
		urls = []string{cctx.String("url")}
	default:
		return cli.Exit("missing --url or --input", 2)
	}

	store, err := e.loader.MentionStore(cctx.Context, e.cfg.Data.Webmentions)
	if err != nil {
		return err
	}
	blocks, err := e.loader.BlockList(cctx.Context, e.cfg.Data.BlockList)
	if err != nil {
		return err
	}
	src := webmention.NewSource(store, blocks)

	type outRec struct {
		URL         string               `json:"url"`
		Webmentions []models.Interaction `json:"webmentions"`
	}
	recs := make([]outRec, len(urls))
	for i, u := range urls {
		recs[i] = outRec{URL: u, Webmentions: src.ForURLTypes(u, cctx.String("types"))}
	}
	return ioformats.WriteNDJSON(os.Stdout, recs)
}

func runClassify(cctx *cli.Context) error {
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	pages, err := build.ReadPages(e.cfg.Data.Content, e.cfg.Data.Posts)
	if err != nil {
		return err
	}
	cl := build.OptionsFrom(e.cfg).Classifier

	type outRec struct {
		URL    string   `json:"url"`
		Labels []string `json:"labels"`
	}
	recs := make([]outRec, len(pages))
	for i, p := range pages {
		recs[i] = outRec{URL: p.URL, Labels: cl.Classify(p).Labels}
	}
	return ioformats.WriteNDJSON(os.Stdout, recs)
}

func runPopular(cctx *cli.Context) error {
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	metric, err := ranker.ParseMetric(cctx.String("metric"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	ds, err := build.Load(cctx.Context, e.cfg, e.loader, e.log)
	if err != nil {
		return err
	}
	limit := cctx.Int("limit")
	if limit == 0 {
		limit = e.cfg.PopularLimit
	}
	ranked := ranker.RankBy(
		collections.Posts(ds.Pages, collections.Options{Production: e.cfg.Production}),
		ds.Analytics,
		metric,
		ranker.Options{Production: e.cfg.Production, Limit: limit},
	)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ranker.Summarize(ranked, ds.Analytics, metric))
}
