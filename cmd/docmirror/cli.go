package main

import (
	"context"
	"io"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/config"
	"github.com/fwojciec/docmirror/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Config config.Config
	DB     *sqlite.DB
	Runs   docmirror.RunService

	Fetcher    docmirror.Fetcher
	Discoverer docmirror.Discoverer
	Extractor  docmirror.Extractor
	Normalizer docmirror.Normalizer
	Converter  docmirror.Converter
	Differ     docmirror.Differ
	Limiter    docmirror.DomainLimiter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape a documentation site into a local Markdown tree"`
	Preview PreviewCmd `cmd:"" help:"Show the URLs discovery would scrape, without scraping"`
	Runs    RunsCmd    `cmd:"" help:"Show run history"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Name        string `arg:"" optional:"" help:"Project name"`
	URL         string `arg:"" optional:"" help:"Documentation URL"`
	Manifest    string `short:"m" type:"path" help:"Path to a manifest JSON file (alternative to name+url)"`
	Output      string `short:"o" help:"Output layout: directory, single or bundle"`
	Concurrency int    `short:"c" help:"Concurrent fetch limit"`
	Browser     bool   `help:"Render pages with a headless browser"`
	Verbose     bool   `short:"v" help:"Log fetches and discovery"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	URL     string `arg:"" help:"Documentation URL"`
	Browser bool   `help:"Render pages with a headless browser"`
	Verbose bool   `short:"v" help:"Log fetches and discovery"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Project string `arg:"" optional:"" help:"Limit history to one project"`
	Limit   int    `short:"n" default:"20" help:"Maximum runs to show"`
}
