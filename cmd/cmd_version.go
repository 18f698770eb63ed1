package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/core/constants"
	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":         constants.Version,
	"verifier": verifier.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show verifier and consensus engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "verifier"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, cmd *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	if opts.Modules != "" {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	}

	engine, err := newEngine(config.Load())
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (engine: %s, api version %d)\n", constants.AppName, version, engine.Name(), engine.Version())
	return nil
}

func newEngine(conf config.Config) (bitcoinconsensus.Engine, error) {
	engine, err := bitcoinconsensus.NewEngine(conf.Verifier.Engine, bitcoinconsensus.WithSigCacheSize(conf.Verifier.SigCacheSize))
	if err != nil {
		return nil, errors.Wrap(err, "invalid verifier engine configuration")
	}
	return engine, nil
}
