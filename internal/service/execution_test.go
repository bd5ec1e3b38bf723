package service

import (
	"context"
	"fmt"
	"testing"

	"ParlayEngine/internal/interfaces"
	"ParlayEngine/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTradingAdapter 记录调用顺序的适配器桩
// failSubmit 中列出的腿在 Submit 阶段失败；failSign 中列出的腿在签名阶段失败
type fakeTradingAdapter struct {
	notReady   bool
	failSign   map[string]string
	failSubmit map[string]string
	signCalls  []string
	submits    []string
}

func (f *fakeTradingAdapter) Ready() error {
	if f.notReady {
		return fmt.Errorf("签名私钥未配置")
	}
	return nil
}

func (f *fakeTradingAdapter) BuildAndSign(_ context.Context, req *interfaces.LegOrderRequest, _ *interfaces.APICredentials) (*interfaces.SignedLegOrder, error) {
	f.signCalls = append(f.signCalls, req.LegID)
	if msg, ok := f.failSign[req.LegID]; ok {
		return nil, fmt.Errorf("%s", msg)
	}
	return &interfaces.SignedLegOrder{LegID: req.LegID, TokenID: req.TokenID}, nil
}

func (f *fakeTradingAdapter) Submit(_ context.Context, order *interfaces.SignedLegOrder, _ *interfaces.APICredentials) (string, error) {
	f.submits = append(f.submits, order.LegID)
	if msg, ok := f.failSubmit[order.LegID]; ok {
		return "", fmt.Errorf("%s", msg)
	}
	return "order-" + order.LegID, nil
}

func testCreds() *interfaces.APICredentials {
	return &interfaces.APICredentials{APIKey: "k", Secret: "s", Passphrase: "p"}
}

func execLegs(ids ...string) []model.Leg {
	legs := make([]model.Leg, 0, len(ids))
	for _, id := range ids {
		legs = append(legs, model.Leg{LegID: id, MarketID: id, TokenID: "tok-" + id, Side: model.SideYes, Price: 0.5})
	}
	return legs
}

func newExecService(adapter interfaces.TradingAdapter) *ExecutionService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewExecutionService(adapter, logger)
}

func TestExecute_AllSucceedInOrder(t *testing.T) {
	fake := &fakeTradingAdapter{}
	svc := newExecService(fake)

	result, err := svc.Execute(context.Background(), execLegs("a", "b", "c"), 10, testCreds())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Orders, 3)
	// 严格顺序：逐腿签名、逐腿提交
	assert.Equal(t, []string{"a", "b", "c"}, fake.signCalls)
	assert.Equal(t, []string{"a", "b", "c"}, fake.submits)
	assert.Equal(t, "order-b", result.Orders[1].OrderID)
}

// 中间腿失败只记录不中断，后续腿照常提交
func TestExecute_MiddleLegFailsContinues(t *testing.T) {
	fake := &fakeTradingAdapter{failSubmit: map[string]string{"b": "not enough balance / allowance"}}
	svc := newExecService(fake)

	result, err := svc.Execute(context.Background(), execLegs("a", "b", "c"), 10, testCreds())
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Orders, 3)
	assert.True(t, result.Orders[0].Success)
	assert.False(t, result.Orders[1].Success)
	assert.True(t, result.Orders[2].Success)
	// 同时含 balance 与 allowance 的文本归为授权问题
	assert.Equal(t, ErrCategoryApproval, result.Orders[1].ErrorCategory)
	assert.Equal(t, []string{"a", "b", "c"}, fake.submits)
}

// 签名失败的腿不进入提交阶段
func TestExecute_SignFailureSkipsSubmit(t *testing.T) {
	fake := &fakeTradingAdapter{failSign: map[string]string{"a": "invalid signature"}}
	svc := newExecService(fake)

	result, err := svc.Execute(context.Background(), execLegs("a", "b"), 10, testCreds())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ErrCategorySignature, result.Orders[0].ErrorCategory)
	assert.Equal(t, []string{"b"}, fake.submits)
}

// 前置校验失败：零腿提交、无任何网络调用
func TestExecute_AdapterNotReady(t *testing.T) {
	fake := &fakeTradingAdapter{notReady: true}
	svc := newExecService(fake)

	result, err := svc.Execute(context.Background(), execLegs("a"), 10, testCreds())
	require.Error(t, err)
	assert.Empty(t, result.Orders)
	assert.Empty(t, fake.signCalls)
}

func TestExecute_IncompleteCredentials(t *testing.T) {
	fake := &fakeTradingAdapter{}
	svc := newExecService(fake)

	creds := &interfaces.APICredentials{APIKey: "k"} // 缺 secret/passphrase
	result, err := svc.Execute(context.Background(), execLegs("a", "b"), 10, creds)
	require.Error(t, err)
	assert.Empty(t, result.Orders)
	assert.Empty(t, fake.signCalls)
}

func TestExecute_EmptyLegs(t *testing.T) {
	fake := &fakeTradingAdapter{}
	svc := newExecService(fake)

	result, err := svc.Execute(context.Background(), nil, 10, testCreds())
	require.Error(t, err)
	assert.Empty(t, result.Orders)
}
