// internal/service/followup/engine_test.go
package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"postsaathi-service/internal/domain/investment"
	"postsaathi-service/internal/pkg/fieldcrypt"
	"postsaathi-service/internal/service/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScanStore struct {
	tx *fakeScanTx
}

func (s *fakeScanStore) BeginScan(context.Context) (investment.ScanTx, error) {
	s.tx.open = true
	return s.tx, nil
}

type logKey struct {
	investmentID string
	stage        investment.Stage
}

type fakeScanTx struct {
	rows []investment.DueRow
	logs map[logKey]bool

	statuses map[string]investment.Status
	stages   map[string]investment.Stage

	dedupErr map[string]error

	open       bool
	committed  int
	rolledBack int
}

func newFakeScanTx(rows []investment.DueRow) *fakeScanTx {
	return &fakeScanTx{
		rows:     rows,
		logs:     make(map[logKey]bool),
		statuses: make(map[string]investment.Status),
		stages:   make(map[string]investment.Stage),
		dedupErr: make(map[string]error),
	}
}

func (t *fakeScanTx) DueInvestments(context.Context) ([]investment.DueRow, error) {
	return t.rows, nil
}

func (t *fakeScanTx) HasFollowupLog(_ context.Context, investmentID string, stage investment.Stage) (bool, error) {
	if err := t.dedupErr[investmentID]; err != nil {
		return false, err
	}
	return t.logs[logKey{investmentID, stage}], nil
}

func (t *fakeScanTx) InsertFollowupLog(_ context.Context, log *investment.FollowupLog) error {
	t.logs[logKey{log.InvestmentID, log.Stage}] = true
	return nil
}

func (t *fakeScanTx) UpdateStatusAndStage(_ context.Context, investmentID string, status investment.Status, stage investment.Stage) error {
	t.statuses[investmentID] = status
	t.stages[investmentID] = stage
	return nil
}

func (t *fakeScanTx) Commit(context.Context) error {
	t.committed++
	t.open = false
	return nil
}

func (t *fakeScanTx) Rollback(context.Context) error {
	if t.open {
		t.rolledBack++
		t.open = false
	}
	return nil
}

type sentMessage struct {
	to       string
	template string
	params   []string
}

type fakeNotifier struct {
	sent []sentMessage
	fail bool
}

func (n *fakeNotifier) Send(_ context.Context, to, template string, params []string) bool {
	n.sent = append(n.sent, sentMessage{to: to, template: template, params: params})
	return !n.fail
}

var scanDay = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func testCodec(t *testing.T) *fieldcrypt.Codec {
	t.Helper()
	codec, err := fieldcrypt.NewWithKey([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return codec
}

func dueRow(t *testing.T, codec *fieldcrypt.Codec, id string, daysToMaturity int) investment.DueRow {
	t.Helper()

	name, err := codec.Encrypt("Ravi Kumar")
	require.NoError(t, err)

	return investment.DueRow{
		Investment: investment.Investment{
			ID:           id,
			CustomerID:   "cust-1",
			SchemeType:   investment.SchemeNSC,
			Principal:    decimal.NewFromInt(50000),
			StartDate:    scanDay.AddDate(-1, 0, 0),
			MaturityDate: scanDay.AddDate(0, 0, daysToMaturity),
			Status:       investment.StatusActive,
		},
		CustomerID:       "cust-1",
		CustomerFullName: name,
		AgentID:          "agent-1",
		AgentName:        "Asha",
		AgentMobile:      "9876543210",
	}
}

func newTestEngine(t *testing.T, codec *fieldcrypt.Codec, store *fakeScanStore, sink notify.Notifier) *Engine {
	t.Helper()
	e := NewEngine(store, codec, sink, nil, false, zap.NewNop())
	e.now = func() time.Time { return scanDay }
	return e
}

func TestRunPassTriggersDueStages(t *testing.T) {
	codec := testCodec(t)
	tx := newFakeScanTx([]investment.DueRow{
		dueRow(t, codec, "inv-f10", 10),
		dueRow(t, codec, "inv-f5", 5),
		dueRow(t, codec, "inv-quiet", 7),
	})
	sink := &fakeNotifier{}
	engine := newTestEngine(t, codec, &fakeScanStore{tx: tx}, sink)

	triggered, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, triggered)
	assert.Equal(t, 1, tx.committed)
	assert.Zero(t, tx.rolledBack)

	assert.True(t, tx.logs[logKey{"inv-f10", investment.StageF10}])
	assert.True(t, tx.logs[logKey{"inv-f5", investment.StageF5}])
	assert.Equal(t, investment.StatusFollowup, tx.statuses["inv-f10"])
	assert.Equal(t, investment.StageF10, tx.stages["inv-f10"])

	// 7 days out sits between checkpoints and triggers nothing.
	_, touched := tx.statuses["inv-quiet"]
	assert.False(t, touched)

	require.Len(t, sink.sent, 2)
	msg := sink.sent[0]
	assert.Equal(t, "9876543210", msg.to)
	assert.Equal(t, notify.TemplateMaturityAlert, msg.template)
	assert.Equal(t, []string{"Asha", "Ravi Kumar", "NSC", "50000", "10"}, msg.params)
}

func TestRunPassMaturityDay(t *testing.T) {
	codec := testCodec(t)
	tx := newFakeScanTx([]investment.DueRow{dueRow(t, codec, "inv-mt", 0)})
	sink := &fakeNotifier{}
	engine := newTestEngine(t, codec, &fakeScanStore{tx: tx}, sink)

	triggered, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, triggered)

	assert.Equal(t, investment.StatusMatured, tx.statuses["inv-mt"])
	assert.Equal(t, investment.StageMT, tx.stages["inv-mt"])
	require.Len(t, sink.sent, 1)
	assert.Equal(t, "0", sink.sent[0].params[4])
}

func TestRunPassOverdue(t *testing.T) {
	codec := testCodec(t)
	tx := newFakeScanTx([]investment.DueRow{dueRow(t, codec, "inv-p30", -30)})
	sink := &fakeNotifier{}
	engine := newTestEngine(t, codec, &fakeScanStore{tx: tx}, sink)

	triggered, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, triggered)

	assert.Equal(t, investment.StatusFollowup, tx.statuses["inv-p30"])
	assert.Equal(t, investment.StageP30, tx.stages["inv-p30"])
	require.Len(t, sink.sent, 1)
	assert.Equal(t, "Overdue", sink.sent[0].params[4])
}

func TestRunPassIsIdempotent(t *testing.T) {
	codec := testCodec(t)
	tx := newFakeScanTx([]investment.DueRow{dueRow(t, codec, "inv-f10", 10)})
	sink := &fakeNotifier{}
	store := &fakeScanStore{tx: tx}
	engine := newTestEngine(t, codec, store, sink)

	triggered, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, triggered)

	// Same day, same rows: the existing log suppresses a second trigger.
	triggered, err = engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Zero(t, triggered)
	require.Len(t, sink.sent, 1)
}

func TestRunPassLogsEvenWhenSinkFails(t *testing.T) {
	codec := testCodec(t)
	tx := newFakeScanTx([]investment.DueRow{dueRow(t, codec, "inv-f1", 1)})
	sink := &fakeNotifier{fail: true}
	engine := newTestEngine(t, codec, &fakeScanStore{tx: tx}, sink)

	triggered, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, triggered)

	// Delivery failed but the stage is still recorded and state advanced.
	assert.True(t, tx.logs[logKey{"inv-f1", investment.StageF1}])
	assert.Equal(t, investment.StatusFollowup, tx.statuses["inv-f1"])
}

func TestRunPassFallsBackOnUndecryptableName(t *testing.T) {
	codec := testCodec(t)
	row := dueRow(t, codec, "inv-f3", 3)
	row.CustomerFullName = "not-a-ciphertext-token"
	tx := newFakeScanTx([]investment.DueRow{row})
	sink := &fakeNotifier{}
	engine := newTestEngine(t, codec, &fakeScanStore{tx: tx}, sink)

	_, err := engine.RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.sent, 1)
	assert.Equal(t, "Customer", sink.sent[0].params[1])
}

func TestRunPassSkipsBadRowAndContinues(t *testing.T) {
	codec := testCodec(t)
	tx := newFakeScanTx([]investment.DueRow{
		dueRow(t, codec, "inv-bad", 10),
		dueRow(t, codec, "inv-good", 5),
	})
	tx.dedupErr["inv-bad"] = errors.New("boom")
	sink := &fakeNotifier{}
	engine := newTestEngine(t, codec, &fakeScanStore{tx: tx}, sink)

	triggered, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, triggered)
	assert.Equal(t, 1, tx.committed)
	assert.True(t, tx.logs[logKey{"inv-good", investment.StageF5}])
}

func TestStageForDays(t *testing.T) {
	cases := map[int]investment.Stage{
		10:  investment.StageF10,
		5:   investment.StageF5,
		3:   investment.StageF3,
		1:   investment.StageF1,
		0:   investment.StageMT,
		-30: investment.StageP30,
	}
	for days, want := range cases {
		stage, due := stageForDays(days)
		assert.True(t, due, "days=%d", days)
		assert.Equal(t, want, stage, "days=%d", days)
	}

	for _, days := range []int{11, 9, 7, 4, 2, -1, -29, -31, 100} {
		_, due := stageForDays(days)
		assert.False(t, due, "days=%d", days)
	}
}
