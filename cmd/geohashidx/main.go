package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"

	"geohashidx/config"
	"geohashidx/extractor"
	"geohashidx/feature"
	"geohashidx/process"
	"geohashidx/resolve"
	"geohashidx/serve"
	"geohashidx/store"
	"geohashidx/workerpool"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Version VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Threads int         `help:"Number of CPU worker threads. Defaults to available hardware parallelism." short:"t"`

	Extract struct {
		OsmPbfFile         string `help:"The input OSM PBF file." required:""`
		FeaturesOutputPath string `help:"Where to write the line-delimited GeoJSON feature stream." required:""`
		ConfigPath         string `help:"Path to the filter/attribute configuration JSON file." required:""`
	} `cmd:"" help:"Read an OSM PBF file and emit selected, assembled relations as a line-delimited GeoJSON feature stream."`

	Process struct {
		FeaturesOutputPath          string `help:"The line-delimited GeoJSON feature stream to read." required:""`
		MaxGeohashLevel             int    `help:"Maximum geohash prefix length to index." required:""`
		GeohashDBOutputPath         string `help:"Where to create the persisted geohash index store." required:""`
		ConfigPath                  string `help:"Path to the configuration JSON file (process_property_name)." required:""`
		ProcessedFeaturesOutputPath string `help:"Optional: write a diagnostic GeoJSON union of every indexed cell."`
	} `cmd:"" help:"Build and persist the geohash index from a feature stream."`

	Serve struct {
		GeohashDB       string `help:"Path to the persisted geohash index store." required:""`
		MaxGeohashLevel int    `help:"Maximum geohash prefix length used when building the index." required:""`
		Port            string `help:"The port this server should listen to." short:"p" default:"8080"`
	} `cmd:"" help:"Open the geohash index read-only and serve point lookups over HTTP."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("geohashidx"),
		kong.Description("Builds and serves a geohash-prefix reverse-geocoding index from OSM relations."),
		kong.Vars{
			"version": VERSION,
		},
	)

	configureLogging(cli.Logging)
	workerpool.Init(cli.Threads)

	switch ctx.Command() {
	case "extract":
		runExtract()
	case "process":
		runProcess()
	case "serve":
		runServe()
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

func configureLogging(level string) {
	switch strings.ToLower(level) {
	case "debug":
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	case "trace":
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	case "info":
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	default:
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", level)
	}
}

func runExtract() {
	cfg, err := config.Load(cli.Extract.ConfigPath)
	sigolo.FatalCheck(err)

	features, err := extractor.Extract(cli.Extract.OsmPbfFile, cfg)
	sigolo.FatalCheck(err)

	out, err := os.Create(cli.Extract.FeaturesOutputPath)
	sigolo.FatalCheck(err)
	defer out.Close()

	err = feature.WriteLineDelimited(features, out)
	sigolo.FatalCheck(err)
}

func runProcess() {
	cfg, err := config.Load(cli.Process.ConfigPath)
	sigolo.FatalCheck(err)

	err = process.Run(process.Options{
		FeaturesInputPath:           cli.Process.FeaturesOutputPath,
		MaxGeohashLevel:             cli.Process.MaxGeohashLevel,
		GeohashDBOutputPath:         cli.Process.GeohashDBOutputPath,
		Config:                      cfg,
		ProcessedFeaturesOutputPath: cli.Process.ProcessedFeaturesOutputPath,
	})
	sigolo.FatalCheck(err)
}

func runServe() {
	sigolo.SetDefaultFormatFunctionAll(sigolo.LogDefaultStatic)

	db, err := store.OpenReadOnly(cli.Serve.GeohashDB)
	sigolo.FatalCheck(err)
	defer db.Close()

	resolver := resolve.New(db, cli.Serve.MaxGeohashLevel)

	sigolo.Info("Starting server ...")
	serve.ListenAndServe(cli.Serve.Port, resolver)
}
