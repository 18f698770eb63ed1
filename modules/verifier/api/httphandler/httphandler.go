package httphandler

import (
	"encoding/hex"

	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gaze-network/consensus-verifier/pkg/btcutils"
)

type HttpHandler struct {
	service *verifier.Service
}

func New(service *verifier.Service) *HttpHandler {
	return &HttpHandler{
		service: service,
	}
}

type inputResult struct {
	Index         uint32  `json:"index"`
	PreviousTxId  string  `json:"previousTxId,omitempty"`
	PreviousIndex *uint32 `json:"previousIndex,omitempty"`
	PkScript      string  `json:"pkScript"`
	Address       string  `json:"address,omitempty"`
	Amount        int64   `json:"amount"`
	AmountBTC     string  `json:"amountBtc"`
	Valid         bool    `json:"valid"`
	ErrorCode     *string `json:"errorCode,omitempty"`
	Error         *string `json:"error,omitempty"`
}

func mapInputResult(src *entity.InputResult, network common.Network, withPrevOut bool) inputResult {
	result := inputResult{
		Index:     src.Index,
		PkScript:  hex.EncodeToString(src.PkScript),
		Amount:    src.Amount,
		AmountBTC: btcutils.FormatSatoshi(uint64(src.Amount)),
		Valid:     src.Valid,
	}
	// non-standard scripts have no address
	if address, err := btcutils.PkScriptToAddress(src.PkScript, network); err == nil {
		result.Address = address
	}
	if withPrevOut {
		index := src.PreviousOutPoint.Index
		result.PreviousTxId = src.PreviousOutPoint.Hash.String()
		result.PreviousIndex = &index
	}
	if !src.Valid {
		code := src.ErrorCode.String()
		reason := src.Reason
		result.ErrorCode = &code
		result.Error = &reason
	}
	return result
}

type flagsResult struct {
	Value uint32   `json:"value"`
	Names []string `json:"names"`
}

func mapFlags(flags bitcoinconsensus.Flags) flagsResult {
	return flagsResult{
		Value: uint32(flags),
		Names: flags.Names(),
	}
}
