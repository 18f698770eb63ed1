package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/spf13/cobra"
)

func NewFlagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "flags <height>",
		Short:   "Show the consensus flags active at a mainnet block height",
		Args:    cobra.ExactArgs(1),
		Example: `verifier flags 481825`,
		RunE:    flagsHandler,
	}
}

func flagsHandler(cmd *cobra.Command, args []string) error {
	height, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return errors.Wrapf(errs.InvalidArgument, "height must be an integer between 0 and %d", uint32(math.MaxUint32))
	}
	flags := bitcoinconsensus.HeightToFlags(uint32(height))
	fmt.Fprintf(cmd.OutOrStdout(), "%d 0x%03x %s\n", uint32(flags), uint32(flags), flags)
	return nil
}
