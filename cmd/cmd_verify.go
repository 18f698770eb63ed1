package cmd

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gaze-network/consensus-verifier/pkg/btcutils"
	"github.com/spf13/cobra"
)

// errVerificationFailed is returned by commands whose verification was rejected.
// The result has already been printed.
var errVerificationFailed = errors.New("verification failed")

func isVerificationFailure(err error) bool {
	return errors.Is(err, errVerificationFailed)
}

type verifyCmdOptions struct {
	SpentOutput string
	Amount      uint64
	Transaction string
	InputIndex  uint32
	Flags       string
}

func NewVerifyCommand() *cobra.Command {
	opts := &verifyCmdOptions{}

	cmd := &cobra.Command{
		Use:     "verify",
		Short:   "Verify a single transaction input",
		Example: `verifier verify --spent-output 0014... --amount 120000 --tx 0200... --input 0 --flags P2SH,WITNESS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.SpentOutput, "spent-output", "", "scriptPubKey of the spent output in hex")
	flags.Uint64Var(&opts.Amount, "amount", 0, "value of the spent output in satoshi")
	flags.StringVar(&opts.Transaction, "tx", "", "spending transaction in hex")
	flags.Uint32Var(&opts.InputIndex, "input", 0, "index of the verified input")
	flags.StringVar(&opts.Flags, "flags", "all", "verification flags, E.g. `all`, `none`, `P2SH,WITNESS` or `0xe15`")
	_ = cmd.MarkFlagRequired("tx")

	return cmd
}

func verifyHandler(opts *verifyCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	req, err := verifier.ParseVerifyInputRequest(opts.SpentOutput, opts.Amount, opts.Transaction, opts.InputIndex, opts.Flags)
	if err != nil {
		return errors.WithStack(err)
	}

	engine, err := newEngine(conf)
	if err != nil {
		return errors.WithStack(err)
	}
	service := verifier.New(bitcoinconsensus.New(engine), verifier.WithNetwork(conf.Network))

	result, err := service.VerifyInput(cmd.Context(), req)
	if err != nil {
		return errors.WithStack(err)
	}

	printInputResult(cmd.OutOrStdout(), result)
	if !result.Valid {
		return errVerificationFailed
	}
	return nil
}

func printInputResult(w io.Writer, result *entity.InputResult) {
	status := "valid"
	if !result.Valid {
		status = fmt.Sprintf("invalid %s: %s", result.ErrorCode, result.Reason)
	}
	fmt.Fprintf(w, "input %d (%s BTC): %s\n", result.Index, btcutils.FormatSatoshi(uint64(result.Amount)), status)
}
