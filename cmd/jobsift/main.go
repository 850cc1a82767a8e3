package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/jobsift/internal/config"
	"github.com/kailas-cloud/jobsift/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jobsift:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "jobsift",
		Usage:   "Facet, filter and rank job postings from a Workday job board",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Configuration environment, selects config/<env>.yaml",
				Value:   config.GetEnv(),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Load postings and serve the filtering API",
				Action: serveCommand,
			},
			{
				Name:   "report",
				Usage:  "Load postings, apply filters and write one report",
				Action: reportCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "facet",
						Aliases: []string{"f"},
						Usage:   "Select a facet option as field=value (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Apply a keyword pattern matched in title or body (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "title-keyword",
						Usage: "Apply a keyword pattern that must match the title (repeatable)",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort by title, date or relevance",
					},
					&cli.BoolFlag{
						Name:  "ascending",
						Usage: "Sort ascending instead of descending",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Cap the number of reported postings (-1 for no cap)",
						Value: -1,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Override report format (html, markdown)",
					},
				},
			},
		},
	}
}
