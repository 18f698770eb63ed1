package cmd

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type verifyTxCmdOptions struct {
	Flags string
}

func NewVerifyTxCommand() *cobra.Command {
	opts := &verifyTxCmdOptions{}

	cmd := &cobra.Command{
		Use:     "verify-tx <txid>",
		Short:   "Verify every input of a transaction fetched from the Bitcoin node",
		Args:    cobra.ExactArgs(1),
		Example: `verifier verify-tx 4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyTxHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Flags, "flags", "", "verification flags, default is the flags active at the transaction's height")

	return cmd
}

func verifyTxHandler(opts *verifyTxCmdOptions, cmd *cobra.Command, args []string) error {
	conf := config.Load()
	if !conf.BitcoinNode.Enabled() {
		return errors.Wrap(errs.ArgumentRequired, "bitcoin_node.host is required")
	}

	txHash, err := chainhash.NewHashFromStr(args[0])
	if err != nil {
		return errors.Wrap(errs.InvalidArgument, "invalid transaction hash")
	}

	var verifyOpts verifier.VerifyTransactionOptions
	if opts.Flags != "" {
		flags, err := bitcoinconsensus.ParseFlags(opts.Flags)
		if err != nil {
			return errors.WithStack(err)
		}
		verifyOpts.Flags = &flags
	}

	injector := newInjector(cmd.Context(), conf)
	defer injector.Shutdown()

	service, err := do.Invoke[*verifier.Service](injector)
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := service.VerifyTransaction(cmd.Context(), *txHash, verifyOpts)
	if err != nil {
		return errors.WithStack(err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "transaction %s at height %d, flags %s\n", result.TxHash, result.BlockHeight, result.Flags)
	if result.Coinbase {
		fmt.Fprintln(w, "coinbase transaction, nothing to verify")
		return nil
	}
	for _, input := range result.Inputs {
		printInputResult(w, input)
	}
	if !result.Valid {
		return errVerificationFailed
	}
	return nil
}
