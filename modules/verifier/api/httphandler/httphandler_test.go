package httphandler

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/core/types"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gaze-network/consensus-verifier/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	anyoneCanSpend = []byte{txscript.OP_TRUE}
	nobodyCanSpend = []byte{txscript.OP_FALSE}
)

type fakeNode struct {
	tx      *types.Transaction
	outputs map[wire.OutPoint]*types.TxOut
}

func (n *fakeNode) GetTransaction(_ context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	if n.tx == nil || n.tx.TxHash != txHash {
		return nil, errors.WithStack(errs.NotFound)
	}
	return n.tx, nil
}

func (n *fakeNode) GetPrevOutput(_ context.Context, outPoint wire.OutPoint) (*types.TxOut, error) {
	out, ok := n.outputs[outPoint]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return out, nil
}

func (n *fakeNode) GetBlockCount(_ context.Context) (int64, error) {
	return 900_000, nil
}

// newSpend returns a transaction spending two outputs of a fake previous transaction.
func newSpend(t *testing.T) (*wire.MsgTx, []byte) {
	t.Helper()
	prevHash := chainhash.DoubleHashH([]byte("previous"))
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 1), nil, nil))
	tx.AddTxOut(wire.NewTxOut(1_000, anyoneCanSpend))

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return tx, buf.Bytes()
}

func newTestApp(t *testing.T, opts ...verifier.Option) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: errorhandler.NewHTTPErrorHandler(),
	})
	require.NoError(t, New(verifier.New(nil, opts...)).Mount(app))
	return app
}

func doRequest[T any](t *testing.T, app *fiber.App, req *http.Request) (int, common.HttpResponse[T]) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out common.HttpResponse[T]
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(body, &out), string(body))
	}
	return resp.StatusCode, out
}

func TestGetVersion(t *testing.T) {
	app := newTestApp(t)
	status, resp := doRequest[getVersionResult](t, app, httptest.NewRequest(http.MethodGet, "/v1/version", nil))
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, bitcoinconsensus.DefaultEngine().Name(), resp.Result.Engine)
	assert.Equal(t, bitcoinconsensus.APIVersion, resp.Result.EngineVersion)
	assert.NotEmpty(t, resp.Result.Version)
}

func TestGetFlags(t *testing.T) {
	app := newTestApp(t)

	testcases := []struct {
		height string
		status int
		flags  bitcoinconsensus.Flags
	}{
		{height: "0", status: http.StatusOK, flags: bitcoinconsensus.FlagsNone},
		{height: "170060", status: http.StatusOK, flags: bitcoinconsensus.FlagP2SH},
		{height: "481824", status: http.StatusOK, flags: bitcoinconsensus.HeightToFlags(481824)},
		{height: "481825", status: http.StatusOK, flags: bitcoinconsensus.FlagsAll},
		{height: "abc", status: http.StatusBadRequest},
		{height: "-1", status: http.StatusBadRequest},
	}
	for _, tc := range testcases {
		t.Run(tc.height, func(t *testing.T) {
			status, resp := doRequest[getFlagsResult](t, app, httptest.NewRequest(http.MethodGet, "/v1/flags/"+tc.height, nil))
			require.Equal(t, tc.status, status)
			if tc.status != http.StatusOK {
				assert.NotNil(t, resp.Error)
				return
			}
			require.NotNil(t, resp.Result)
			assert.Equal(t, uint32(tc.flags), resp.Result.Value)
			assert.Equal(t, tc.flags.Names(), resp.Result.Names)
		})
	}
}

func TestVerifyInput(t *testing.T) {
	app := newTestApp(t)
	_, raw := newSpend(t)
	rawHex := hex.EncodeToString(raw)

	testcases := []struct {
		name      string
		body      string
		status    int
		valid     bool
		errorCode string
	}{
		{
			name:   "valid",
			body:   `{"spentOutput":"51","amount":5000,"transaction":"` + rawHex + `","inputIndex":1}`,
			status: http.StatusOK,
			valid:  true,
		},
		{
			name:      "script failure",
			body:      `{"spentOutput":"00","amount":5000,"transaction":"` + rawHex + `","inputIndex":0}`,
			status:    http.StatusOK,
			errorCode: "OK",
		},
		{
			name:      "index out of range",
			body:      `{"spentOutput":"51","amount":5000,"transaction":"` + rawHex + `","inputIndex":2}`,
			status:    http.StatusOK,
			errorCode: "TX_INDEX",
		},
		{
			name:      "trailing bytes",
			body:      `{"spentOutput":"51","amount":5000,"transaction":"` + rawHex + `00","inputIndex":0,"flags":"none"}`,
			status:    http.StatusOK,
			errorCode: "TX_SIZE_MISMATCH",
		},
		{
			name:   "malformed hex",
			body:   `{"spentOutput":"zz","amount":5000,"transaction":"` + rawHex + `"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown flag",
			body:   `{"spentOutput":"51","transaction":"` + rawHex + `","flags":"TAPROOT"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing transaction",
			body:   `{"spentOutput":"51"}`,
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/verify", strings.NewReader(tc.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			status, resp := doRequest[verifyInputResult](t, app, req)
			require.Equal(t, tc.status, status)
			if tc.status != http.StatusOK {
				require.NotNil(t, resp.Error)
				return
			}
			require.NotNil(t, resp.Result)
			assert.Equal(t, tc.valid, resp.Result.Valid)
			assert.Equal(t, "0.00005000", resp.Result.AmountBTC)
			if tc.valid {
				assert.Nil(t, resp.Result.ErrorCode)
				return
			}
			require.NotNil(t, resp.Result.ErrorCode)
			assert.Equal(t, tc.errorCode, *resp.Result.ErrorCode)
			assert.NotEmpty(t, *resp.Result.Error)
		})
	}
}

func TestVerifyTransaction(t *testing.T) {
	tx, _ := newSpend(t)
	parsed, err := types.ParseMsgTx(tx, 800_000, chainhash.DoubleHashH([]byte("block")))
	require.NoError(t, err)
	node := &fakeNode{
		tx: parsed,
		outputs: map[wire.OutPoint]*types.TxOut{
			tx.TxIn[0].PreviousOutPoint: {PkScript: anyoneCanSpend, Value: 3_000},
			tx.TxIn[1].PreviousOutPoint: {PkScript: nobodyCanSpend, Value: 4_000},
		},
	}
	app := newTestApp(t, verifier.WithBitcoinNode(node))

	t.Run("found", func(t *testing.T) {
		status, resp := doRequest[verifyTransactionResult](t, app, httptest.NewRequest(http.MethodGet, "/v1/transactions/"+parsed.TxHash.String()+"/verify", nil))
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, resp.Result)
		assert.Equal(t, parsed.TxHash.String(), resp.Result.TxId)
		assert.Equal(t, int64(800_000), resp.Result.BlockHeight)
		assert.Equal(t, uint32(bitcoinconsensus.FlagsAll), resp.Result.Flags.Value)
		assert.False(t, resp.Result.Valid)
		require.Len(t, resp.Result.Inputs, 2)
		assert.True(t, resp.Result.Inputs[0].Valid)
		assert.False(t, resp.Result.Inputs[1].Valid)
		assert.Equal(t, tx.TxIn[1].PreviousOutPoint.Hash.String(), resp.Result.Inputs[1].PreviousTxId)
		require.NotNil(t, resp.Result.Inputs[1].PreviousIndex)
		assert.Equal(t, uint32(1), *resp.Result.Inputs[1].PreviousIndex)
	})
	t.Run("explicit flags", func(t *testing.T) {
		status, resp := doRequest[verifyTransactionResult](t, app, httptest.NewRequest(http.MethodGet, "/v1/transactions/"+parsed.TxHash.String()+"/verify?flags=P2SH", nil))
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, resp.Result)
		assert.Equal(t, []string{"P2SH"}, resp.Result.Flags.Names)
	})
	t.Run("not found", func(t *testing.T) {
		status, _ := doRequest[verifyTransactionResult](t, app, httptest.NewRequest(http.MethodGet, "/v1/transactions/"+chainhash.Hash{}.String()+"/verify", nil))
		assert.Equal(t, http.StatusNotFound, status)
	})
	t.Run("invalid hash", func(t *testing.T) {
		status, _ := doRequest[verifyTransactionResult](t, app, httptest.NewRequest(http.MethodGet, "/v1/transactions/xyz/verify", nil))
		assert.Equal(t, http.StatusBadRequest, status)
	})
	t.Run("not mounted without node", func(t *testing.T) {
		status, _ := doRequest[verifyTransactionResult](t, newTestApp(t), httptest.NewRequest(http.MethodGet, "/v1/transactions/"+parsed.TxHash.String()+"/verify", nil))
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestMapInputResult(t *testing.T) {
	pkScript, err := hex.DecodeString("0014751e76e8199196d454941c45d1b3a323f1433bd6")
	require.NoError(t, err)
	prevHash := chainhash.DoubleHashH([]byte("previous"))

	t.Run("standard script", func(t *testing.T) {
		result := mapInputResult(&entity.InputResult{
			Index:            1,
			PreviousOutPoint: *wire.NewOutPoint(&prevHash, 3),
			PkScript:         pkScript,
			Amount:           120_000,
			Valid:            true,
		}, common.NetworkMainnet, true)
		assert.Equal(t, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", result.Address)
		assert.Equal(t, "0.00120000", result.AmountBTC)
		assert.Equal(t, prevHash.String(), result.PreviousTxId)
		require.NotNil(t, result.PreviousIndex)
		assert.Equal(t, uint32(3), *result.PreviousIndex)
		assert.Nil(t, result.ErrorCode)
	})
	t.Run("non-standard script", func(t *testing.T) {
		result := mapInputResult(&entity.InputResult{
			PkScript:  nobodyCanSpend,
			Valid:     false,
			ErrorCode: bitcoinconsensus.ErrOK,
			Reason:    "script failed",
		}, common.NetworkMainnet, false)
		assert.Empty(t, result.Address)
		assert.Empty(t, result.PreviousTxId)
		assert.Nil(t, result.PreviousIndex)
		require.NotNil(t, result.ErrorCode)
		assert.Equal(t, "OK", *result.ErrorCode)
		assert.Equal(t, "script failed", *result.Error)
	})
}
