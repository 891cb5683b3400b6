package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/config"
	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/declarative"
	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/loader"
)

var errNoSource = errors.New("no source: pass a path, --pipeline, or set GDP_CONFIG_FILE or GDP_DATA_SOURCE")

// sourceFlags selects what a command loads.
type sourceFlags struct {
	pipeline string
	format   string
	options  map[string]string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.pipeline, "pipeline", "p", "", "Pipeline file (YAML)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Loader format (csv, excel, json, auto)")
	cmd.Flags().StringToStringVarP(&f.options, "option", "o", nil, "Loader option key=value (repeatable)")
}

// resolve picks the pipeline to run. A positional source wins over
// --pipeline, which wins over the configured pipeline file and source.
// Without a pipeline file the built-in GDP contract is used.
func (f *sourceFlags) resolve(cfg *config.Config, args []string) (*declarative.Pipeline, error) {
	var source string
	if len(args) > 0 {
		source = args[0]
	}

	file := f.pipeline
	if source == "" && file == "" {
		file = cfg.Data.PipelineFile
		source = cfg.Data.Source
	}

	if source == "" && file != "" {
		p, err := declarative.LoadFile(file)
		if err != nil {
			return nil, err
		}
		if f.format != "" || len(f.options) > 0 {
			p.Request = overrideRequest(p.Request, f.format, f.options)
		}
		return p, nil
	}

	if source == "" {
		return nil, errNoSource
	}
	format := f.format
	if format == "" {
		format = cfg.Data.Format
	}
	return &declarative.Pipeline{
		Name:     contract.GDP().Name,
		Request:  loader.NewRequest(source, format, f.options),
		Contract: contract.GDP(),
	}, nil
}

// overrideRequest replaces the format and merges options into req.
func overrideRequest(req loader.Request, format string, options map[string]string) loader.Request {
	if format == "" {
		format = req.Format()
	}
	merged := req.Options()
	for k, v := range options {
		merged[k] = v
	}
	return loader.NewRequest(req.Source(), format, merged)
}

// engineOptions returns the engine options a pipeline needs.
func engineOptions(p *declarative.Pipeline) []engine.Option {
	if p.Reshape == nil {
		return nil
	}
	return []engine.Option{engine.WithReshape(p.Reshape)}
}
