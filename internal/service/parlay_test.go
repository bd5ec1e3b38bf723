package service

import (
	"context"
	"testing"

	"ParlayEngine/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParlayService(adapter *fakeTradingAdapter, store *fakeParlayStore) *ParlayService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewParlayService(NewExecutionService(adapter, logger), store, logger)
}

func TestPlaceParlay_AllFilled(t *testing.T) {
	store := newFakeParlayStore()
	svc := newParlayService(&fakeTradingAdapter{}, store)

	result, err := svc.PlaceParlay(context.Background(), &PlaceParlayRequest{
		UserWallet:  "0xabc",
		Stake:       10,
		Legs:        execLegs("m1:YES", "m2:YES"),
		Credentials: *testCreds(),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotEmpty(t, result.ParlayUUID)

	p := store.parlays[result.ParlayUUID]
	require.NotNil(t, p)
	assert.Equal(t, model.ParlayStatusOpen, p.Status)
	assert.Equal(t, "0xabc", p.UserWallet)

	legs, err := p.DecodeLegs()
	require.NoError(t, err)
	require.Len(t, legs, 2)
	for _, leg := range legs {
		assert.Equal(t, model.LegStatusPending, leg.Status)
		assert.Equal(t, model.OutcomeUnknown, leg.Outcome)
		assert.NotEmpty(t, leg.PlatformOrderID)
	}
}

// 部分成交：只有成交腿落库，报价按成交腿重算
func TestPlaceParlay_PartialFillStoresFilledOnly(t *testing.T) {
	store := newFakeParlayStore()
	adapter := &fakeTradingAdapter{failSubmit: map[string]string{"m2:YES": "not enough balance"}}
	svc := newParlayService(adapter, store)

	result, err := svc.PlaceParlay(context.Background(), &PlaceParlayRequest{
		UserWallet:  "0xabc",
		Stake:       10,
		Legs:        execLegs("m1:YES", "m2:YES", "m3:YES"),
		Credentials: *testCreds(),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Orders, 3)
	require.NotEmpty(t, result.ParlayUUID)

	p := store.parlays[result.ParlayUUID]
	legs, err := p.DecodeLegs()
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, "m1:YES", legs[0].LegID)
	assert.Equal(t, "m3:YES", legs[1].LegID)

	// 两腿价格均 0.5 → 组合赔率 4，派彩按成交腿重算
	require.NotNil(t, result.Quote)
	assert.InDelta(t, 4.0, result.Quote.CombinedOdds, 1e-9)
	assert.InDelta(t, 4.0, p.CombinedOdds, 1e-9)
}

// 零腿成交：返回逐腿结果但不生成记录
func TestPlaceParlay_NothingFilledNoRecord(t *testing.T) {
	store := newFakeParlayStore()
	adapter := &fakeTradingAdapter{failSubmit: map[string]string{
		"m1:YES": "invalid signature",
		"m2:YES": "invalid signature",
	}}
	svc := newParlayService(adapter, store)

	result, err := svc.PlaceParlay(context.Background(), &PlaceParlayRequest{
		UserWallet:  "0xabc",
		Stake:       10,
		Legs:        execLegs("m1:YES", "m2:YES"),
		Credentials: *testCreds(),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.ParlayUUID)
	assert.Nil(t, result.Quote)
	assert.Empty(t, store.parlays)
}

func TestPlaceParlay_Validation(t *testing.T) {
	svc := newParlayService(&fakeTradingAdapter{}, newFakeParlayStore())

	_, err := svc.PlaceParlay(context.Background(), &PlaceParlayRequest{
		Stake: 10, Legs: execLegs("m1:YES"), Credentials: *testCreds(),
	})
	assert.Error(t, err) // 缺钱包

	_, err = svc.PlaceParlay(context.Background(), &PlaceParlayRequest{
		UserWallet: "0xabc", Stake: 10, Credentials: *testCreds(),
	})
	assert.Error(t, err) // 零腿

	_, err = svc.PlaceParlay(context.Background(), &PlaceParlayRequest{
		UserWallet: "0xabc", Stake: 0, Legs: execLegs("m1:YES"), Credentials: *testCreds(),
	})
	assert.Error(t, err) // 金额非法
}
