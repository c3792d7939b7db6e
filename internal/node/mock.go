package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/helios-labs/tokenops/internal/ledger"
	"github.com/helios-labs/tokenops/internal/operation"
)

// Contract abort codes of the managed token module. The mock emits the same
// abort format the live node produces so error mapping is exercised for
// real.
const (
	AbortNotAuthorized  = 1
	AbortPaused         = 2
	AbortSupplyExceeded = 3
	AbortOverflow       = 4
)

// MockFee is the flat fee the mock charges per mutating operation.
const MockFee = 1000

// Mock is an in-memory ledger that applies the managed token semantics:
// capability-gated mint/burn, shared pause state, an admin registry, and
// per-signer gas accounting with version bumping. Thread-safe. Used by unit
// tests and the behavioral suites; production code never touches it.
type Mock struct {
	mu sync.Mutex

	packageID string
	module    string
	coinType  string

	objects map[string]*ledger.ObjectInfo
	coins   map[string]map[string]*ledger.Coin // owner -> coin id -> coin
	gas     map[string]uint64

	admin       string
	paused      bool
	pauseReason string
	supply      uint64
	maxSupply   uint64

	registryID string
	pauseID    string

	nextID      int
	nextVersion uint64

	// FailQueries forces every query to error, for manifest-fallback tests.
	FailQueries bool
}

// NewMock creates an empty mock ledger for the given deployed package.
func NewMock(packageID, module, coinType string, maxSupply uint64) *Mock {
	return &Mock{
		packageID:   packageID,
		module:      module,
		coinType:    coinType,
		objects:     make(map[string]*ledger.ObjectInfo),
		coins:       make(map[string]map[string]*ledger.Coin),
		gas:         make(map[string]uint64),
		maxSupply:   maxSupply,
		nextVersion: 1,
	}
}

// Bootstrap publishes the capability set: treasury and admin capabilities
// owned by the operator, plus the shared admin registry and pause state.
// When withGuard is set, the pause state carries the operation-in-progress
// reentrancy marker field.
func (m *Mock) Bootstrap(operator string, withGuard bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.admin = operator

	treasury := m.newObject(m.typeName("TreasuryCap"), operator, false, nil)
	m.objects[treasury.ObjectID] = treasury

	adminCap := m.newObject(m.typeName("AdminCap"), operator, false, nil)
	m.objects[adminCap.ObjectID] = adminCap

	registry := m.newObject(m.typeName("AdminRegistry"), "", true, map[string]interface{}{
		"admin": operator,
	})
	m.objects[registry.ObjectID] = registry
	m.registryID = registry.ObjectID

	pauseFields := map[string]interface{}{
		"paused": false,
		"reason": "",
	}
	if withGuard {
		pauseFields["operation_in_progress"] = false
	}
	pause := m.newObject(m.typeName("PauseState"), "", true, pauseFields)
	m.objects[pause.ObjectID] = pause
	m.pauseID = pause.ObjectID
}

// AddObject seeds an arbitrary object, for ambiguity tests.
func (m *Mock) AddObject(objectType, owner string, shared bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj := m.newObject(objectType, owner, shared, nil)
	m.objects[obj.ObjectID] = obj
	return obj.ObjectID
}

// FundGas credits the signer's gas balance and creates its gas object.
func (m *Mock) FundGas(owner string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gas[owner] += amount
	gasID := "gas-" + owner
	if _, ok := m.objects[gasID]; !ok {
		obj := m.newObject("0x2::coin::Coin<0x2::gas::GAS>", owner, false, nil)
		obj.ObjectID = gasID
		m.objects[gasID] = obj
	}
}

// GasObjectID returns the signer's gas object id.
func (m *Mock) GasObjectID(owner string) string {
	return "gas-" + owner
}

// SeedCoin creates a coin of the managed type directly, bypassing mint.
func (m *Mock) SeedCoin(owner string, balance uint64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.newCoinLocked(owner, balance)
	m.supply += balance
	return c.ObjectID
}

// Admin returns the registry's recorded administrator.
func (m *Mock) Admin() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admin
}

// Paused reports the pause flag.
func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Supply returns the current total supply in base units.
func (m *Mock) Supply() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supply
}

// OwnerOf returns the current owner of an object.
func (m *Mock) OwnerOf(objectID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[objectID]; ok {
		return obj.Owner
	}
	return ""
}

// QueryClient implementation.

// OwnedObjects lists all objects owned by the address.
func (m *Mock) OwnedObjects(ctx context.Context, owner string) ([]ledger.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries {
		return nil, fmt.Errorf("mock: query unavailable")
	}
	var out []ledger.ObjectInfo
	for _, obj := range m.objects {
		if !obj.Shared && obj.Owner == owner {
			out = append(out, *obj)
		}
	}
	return out, nil
}

// ObjectsByType lists objects of the given full struct type.
func (m *Mock) ObjectsByType(ctx context.Context, objectType string) ([]ledger.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries {
		return nil, fmt.Errorf("mock: query unavailable")
	}
	var out []ledger.ObjectInfo
	for _, obj := range m.objects {
		if obj.Type == objectType {
			out = append(out, *obj)
		}
	}
	return out, nil
}

// GetObject fetches a single object by id.
func (m *Mock) GetObject(ctx context.Context, objectID string) (*ledger.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries {
		return nil, fmt.Errorf("mock: query unavailable")
	}
	obj, ok := m.objects[objectID]
	if !ok {
		return nil, fmt.Errorf("mock: object %s does not exist", objectID)
	}
	cp := *obj
	return &cp, nil
}

// Coins lists coins of the managed type owned by the address.
func (m *Mock) Coins(ctx context.Context, owner, coinType string) ([]ledger.Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries {
		return nil, fmt.Errorf("mock: query unavailable")
	}
	var out []ledger.Coin
	for _, c := range m.coins[owner] {
		out = append(out, *c)
	}
	return out, nil
}

// Balance returns the total managed-token balance for the address.
func (m *Mock) Balance(ctx context.Context, owner, coinType string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries {
		return 0, fmt.Errorf("mock: query unavailable")
	}
	var total uint64
	for _, c := range m.coins[owner] {
		total += c.Balance
	}
	return total, nil
}

// Execute applies the request atomically as the given signer. Any failure
// leaves state untouched, matching the ledger's rollback semantics.
func (m *Mock) Execute(ctx context.Context, signer string, req *operation.Request, gasID string) (*ledger.ExecutionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	digest := m.nextDigest()

	if m.gas[signer] < MockFee {
		return &ledger.ExecutionResponse{
			Digest: digest,
			Status: ledger.StatusFailure,
			Error:  fmt.Sprintf("InsufficientGas: balance %d below required %d", m.gas[signer], MockFee),
		}, nil
	}

	// Transaction-level ownership check: every owned capability in the
	// request must actually be owned by the signer.
	for _, ref := range req.Capabilities {
		if ref.Ownership.Shared {
			continue
		}
		obj, ok := m.objects[ref.ObjectID]
		if !ok {
			return m.failure(digest, signer, fmt.Sprintf("ObjectNotFound: %s", ref.ObjectID)), nil
		}
		if obj.Owner != signer {
			return m.failure(digest, signer, fmt.Sprintf("IncorrectSigner: object %s is not owned by %s", ref.ObjectID, signer)), nil
		}
	}

	resp, err := m.applyLocked(digest, signer, req)
	if err != nil {
		return nil, err
	}
	// Rejections charge their fee in failure(); charge successes here.
	if resp.Status == ledger.StatusSuccess {
		m.chargeGasLocked(signer)
	}
	return resp, nil
}

// DryRun checks the request shape against the deployed interface without
// committing effects. Used for call layout verification.
func (m *Mock) DryRun(ctx context.Context, signer string, req *operation.Request) (*ledger.ExecutionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	digest := "dry-" + m.nextDigest()
	for _, step := range req.Steps {
		if step.Kind != operation.StepMoveCall {
			continue
		}
		arity, ok := m.expectedArity(step.Target)
		if !ok {
			return m.failure(digest, signer, fmt.Sprintf("ObjectNotFound: no function %s in deployed package", step.Target)), nil
		}
		if len(step.Args) != arity {
			return m.failure(digest, signer, fmt.Sprintf("ArityMismatch: %s expects %d arguments, got %d", step.Target, arity, len(step.Args))), nil
		}
	}
	return &ledger.ExecutionResponse{Digest: digest, Status: ledger.StatusSuccess}, nil
}

func (m *Mock) expectedArity(target string) (int, bool) {
	switch target {
	case m.target("mint"):
		return 4, true
	case m.target("burn"):
		return 3, true
	case m.target("update_admin"):
		return 4, true
	case m.target("pause"), m.target("unpause"):
		return 3, true
	default:
		return 0, false
	}
}

func (m *Mock) applyLocked(digest, signer string, req *operation.Request) (*ledger.ExecutionResponse, error) {
	switch req.Kind {
	case operation.KindMint:
		return m.applyMintLocked(digest, signer, req), nil
	case operation.KindBurn:
		return m.applyBurnLocked(digest, signer, req), nil
	case operation.KindTransferCapability:
		return m.applyTransferLocked(digest, signer, req), nil
	case operation.KindAdminChange:
		return m.applyAdminChangeLocked(digest, signer, req), nil
	case operation.KindPause, operation.KindUnpause:
		return m.applyPauseLocked(digest, signer, req), nil
	default:
		return nil, fmt.Errorf("mock: unsupported operation kind %s", req.Kind)
	}
}

func (m *Mock) applyMintLocked(digest, signer string, req *operation.Request) *ledger.ExecutionResponse {
	if m.paused {
		return m.failure(digest, signer, m.abort("mint", AbortPaused))
	}
	if req.Amount == nil {
		return m.failure(digest, signer, "ArgumentError: mint requires an amount")
	}
	amt := uint64(*req.Amount)
	if m.supply+amt < m.supply {
		return m.failure(digest, signer, m.abort("mint", AbortOverflow))
	}
	if m.maxSupply > 0 && m.supply+amt > m.maxSupply {
		return m.failure(digest, signer, m.abort("mint", AbortSupplyExceeded))
	}

	m.supply += amt
	c := m.newCoinLocked(req.Recipient, amt)
	m.bumpSharedLocked()
	return &ledger.ExecutionResponse{
		Digest: digest,
		Status: ledger.StatusSuccess,
		Events: []ledger.Event{{
			Type: m.typeName("MintEvent"),
			Fields: map[string]interface{}{
				"amount":    amt,
				"recipient": req.Recipient,
				"coin":      c.ObjectID,
			},
		}},
		GasUsed: MockFee,
	}
}

func (m *Mock) applyBurnLocked(digest, signer string, req *operation.Request) *ledger.ExecutionResponse {
	if m.paused {
		return m.failure(digest, signer, m.abort("burn", AbortPaused))
	}

	// Whole-object burn references the coin directly; split burn carries a
	// split step followed by a burn of its result.
	var coinID string
	var splitAmount uint64
	for _, step := range req.Steps {
		switch step.Kind {
		case operation.StepSplitCoins:
			coinID = step.Coin.ObjectID
			if len(step.Amounts) > 0 {
				splitAmount = step.Amounts[0]
			}
		case operation.StepMoveCall:
			if coinID == "" && len(step.Args) >= 2 && step.Args[1].Kind == operation.ArgObject {
				coinID = step.Args[1].ObjectID
			}
		}
	}

	coins := m.coins[signer]
	coin, ok := coins[coinID]
	if !ok {
		return m.failure(digest, signer, fmt.Sprintf("ObjectNotFound: coin %s not owned by %s", coinID, signer))
	}

	burned := coin.Balance
	if splitAmount > 0 {
		if splitAmount > coin.Balance {
			return m.failure(digest, signer, m.abort("burn", AbortOverflow))
		}
		burned = splitAmount
		coin.Balance -= splitAmount
		coin.Version = m.bumpVersion()
	} else {
		delete(coins, coinID)
	}
	m.supply -= burned
	m.bumpSharedLocked()

	return &ledger.ExecutionResponse{
		Digest: digest,
		Status: ledger.StatusSuccess,
		Events: []ledger.Event{{
			Type: m.typeName("BurnEvent"),
			Fields: map[string]interface{}{
				"amount": burned,
			},
		}},
		GasUsed: MockFee,
	}
}

func (m *Mock) applyTransferLocked(digest, signer string, req *operation.Request) *ledger.ExecutionResponse {
	for _, step := range req.Steps {
		if step.Kind != operation.StepTransferObjects {
			continue
		}
		for _, arg := range step.Objects {
			obj, ok := m.objects[arg.ObjectID]
			if !ok {
				return m.failure(digest, signer, fmt.Sprintf("ObjectNotFound: %s", arg.ObjectID))
			}
			obj.Owner = step.Recipient
			obj.Version = m.bumpVersion()
		}
	}
	return &ledger.ExecutionResponse{Digest: digest, Status: ledger.StatusSuccess, GasUsed: MockFee}
}

func (m *Mock) applyAdminChangeLocked(digest, signer string, req *operation.Request) *ledger.ExecutionResponse {
	m.admin = req.Recipient
	if reg, ok := m.objects[m.registryID]; ok {
		reg.Fields["admin"] = req.Recipient
		reg.Version = m.bumpVersion()
	}
	return &ledger.ExecutionResponse{
		Digest: digest,
		Status: ledger.StatusSuccess,
		Events: []ledger.Event{{
			Type: m.typeName("AdminChangeEvent"),
			Fields: map[string]interface{}{
				"new_admin": req.Recipient,
			},
		}},
		GasUsed: MockFee,
	}
}

func (m *Mock) applyPauseLocked(digest, signer string, req *operation.Request) *ledger.ExecutionResponse {
	// The contract gates pause on the registry's recorded administrator,
	// independent of admin capability possession.
	if signer != m.admin {
		fn := "pause"
		if req.Kind == operation.KindUnpause {
			fn = "unpause"
		}
		return m.failure(digest, signer, m.abort(fn, AbortNotAuthorized))
	}

	m.paused = req.Kind == operation.KindPause
	m.pauseReason = req.Reason
	if ps, ok := m.objects[m.pauseID]; ok {
		ps.Fields["paused"] = m.paused
		ps.Fields["reason"] = req.Reason
		ps.Version = m.bumpVersion()
	}

	eventType := "PauseEvent"
	if req.Kind == operation.KindUnpause {
		eventType = "UnpauseEvent"
	}
	return &ledger.ExecutionResponse{
		Digest: digest,
		Status: ledger.StatusSuccess,
		Events: []ledger.Event{{
			Type: m.typeName(eventType),
			Fields: map[string]interface{}{
				"reason": req.Reason,
			},
		}},
		GasUsed: MockFee,
	}
}

// abort renders a contract abort in the node's wire format.
func (m *Mock) abort(fn string, code int) string {
	return fmt.Sprintf("MoveAbort in %s::%s::%s, code %d", m.packageID, m.module, fn, code)
}

func (m *Mock) failure(digest, signer, raw string) *ledger.ExecutionResponse {
	m.chargeGasLocked(signer)
	return &ledger.ExecutionResponse{Digest: digest, Status: ledger.StatusFailure, Error: raw, GasUsed: MockFee}
}

func (m *Mock) chargeGasLocked(signer string) {
	if m.gas[signer] >= MockFee {
		m.gas[signer] -= MockFee
	} else {
		m.gas[signer] = 0
	}
	if gasObj, ok := m.objects["gas-"+signer]; ok {
		gasObj.Version = m.bumpVersion()
	}
}

// bumpSharedLocked advances the versions of the shared objects touched by
// mint/burn, so stale-version submission behavior is observable.
func (m *Mock) bumpSharedLocked() {
	if reg, ok := m.objects[m.registryID]; ok {
		reg.Version = m.bumpVersion()
	}
	if ps, ok := m.objects[m.pauseID]; ok {
		ps.Version = m.bumpVersion()
	}
}

func (m *Mock) newObject(objectType, owner string, shared bool, fields map[string]interface{}) *ledger.ObjectInfo {
	m.nextID++
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return &ledger.ObjectInfo{
		ObjectID: fmt.Sprintf("0xobj%04d", m.nextID),
		Type:     objectType,
		Owner:    owner,
		Shared:   shared,
		Version:  m.bumpVersion(),
		Digest:   fmt.Sprintf("dg%04d", m.nextID),
		Fields:   fields,
	}
}

func (m *Mock) newCoinLocked(owner string, balance uint64) *ledger.Coin {
	m.nextID++
	c := &ledger.Coin{
		ObjectID: fmt.Sprintf("0xcoin%04d", m.nextID),
		Balance:  balance,
		Version:  m.bumpVersion(),
		Digest:   fmt.Sprintf("dg%04d", m.nextID),
	}
	if m.coins[owner] == nil {
		m.coins[owner] = make(map[string]*ledger.Coin)
	}
	m.coins[owner][c.ObjectID] = c
	return c
}

func (m *Mock) bumpVersion() uint64 {
	m.nextVersion++
	return m.nextVersion
}

func (m *Mock) nextDigest() string {
	m.nextID++
	return fmt.Sprintf("txn%06d", m.nextID)
}

func (m *Mock) typeName(structName string) string {
	return fmt.Sprintf("%s::%s::%s", m.packageID, m.module, structName)
}

func (m *Mock) target(fn string) string {
	return fmt.Sprintf("%s::%s::%s", m.packageID, m.module, fn)
}
