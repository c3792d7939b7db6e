package redflag

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
	attacker = "0xattacker"
	decimals = 9
)

// world is a bootstrapped ledger where the operator holds every capability
// and a funded attacker identity holds none.
type world struct {
	ledger   *node.Mock
	builder  *operation.Builder
	locator  *capability.Locator
	operator *executor.Executor
	attacker *executor.Executor
	audit    *observability.JSONLogger
}

func newWorld(t *testing.T, maxSupply uint64) *world {
	t.Helper()

	mock := node.NewMock(pkgID, module, coinType, maxSupply)
	mock.Bootstrap(operator, false)
	mock.FundGas(operator, 100_000_000)
	mock.FundGas(attacker, 100_000_000)

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
		attacker: executor.New(attacker, mock, mock, executor.Options{
			GasObjectID: mock.GasObjectID(attacker),
			Logger:      audit,
		}),
		audit: audit,
	}
}
