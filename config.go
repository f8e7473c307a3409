package scsiq

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the CLI's configuration file. Everything is optional;
// command-line flags override it.
type Config struct {
	Device      string `hcl:"device,optional"`
	TracePath   string `hcl:"trace_path,optional"`
	MetricsAddr string `hcl:"metrics_addr,optional"`
}

func LoadConfig(path string) (*Config, error) {
	var (
		ctx hcl.EvalContext
		cfg Config
	)

	err := hclsimple.DecodeFile(path, &ctx, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
