package greenflag

import (
	"strings"
	"testing"

	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/executor"
	"github.com/helios-labs/tokenops/internal/node"
	"github.com/helios-labs/tokenops/internal/observability"
	"github.com/helios-labs/tokenops/internal/operation"
)

const (
	pkgID    = "0xpkg"
	module   = "managed_token"
	coinType = pkgID + "::" + module + "::TOKEN"
	operator = "0xoperator"
	decimals = 9
)

// world is a bootstrapped ledger with the operator holding every
// capability, plus the client stack pointed at it.
type world struct {
	ledger   *node.Mock
	builder  *operation.Builder
	locator  *capability.Locator
	operator *executor.Executor
	audit    *observability.JSONLogger
}

func newWorld(t *testing.T, maxSupply uint64) *world {
	t.Helper()

	mock := node.NewMock(pkgID, module, coinType, maxSupply)
	mock.Bootstrap(operator, false)
	mock.FundGas(operator, 100_000_000)

	layout, err := operation.NewCallLayout(operation.LayoutV1)
	if err != nil {
		t.Fatalf("NewCallLayout: %v", err)
	}

	audit := observability.NewJSONLogger(&strings.Builder{})
	return &world{
		ledger:  mock,
		builder: operation.NewBuilder(pkgID, module, layout),
		locator: capability.NewLocator(mock, pkgID, module, nil),
		operator: executor.New(operator, mock, mock, executor.Options{
			GasObjectID: mock.GasObjectID(operator),
			Logger:      audit,
		}),
		audit: audit,
	}
}
