package signal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/signal"
	"github.com/stretchr/testify/assert"
)

func recorder(log *[]string, name string, err error) signal.Subscriber {
	return signal.SubscriberFunc(func(ctx context.Context, sig string, payload any) error {
		*log = append(*log, name+":"+sig)
		return err
	})
}

func TestBus_DeliversInOrder(t *testing.T) {
	var log []string
	subs := signal.Subscriptions{}
	subs.Add(domain.SignalPostTransition, recorder(&log, "first", nil)).
		Add(domain.SignalPostTransition, recorder(&log, "second", nil)).
		Add(domain.SignalPreTransition, recorder(&log, "pre", nil))

	bus := signal.NewBus(subs)
	bus.Publish(context.Background(), domain.SignalPostTransition, nil)

	assert.Equal(t, []string{
		"first:" + domain.SignalPostTransition,
		"second:" + domain.SignalPostTransition,
	}, log)
}

func TestBus_FailingSubscriberDoesNotStopDelivery(t *testing.T) {
	var log []string
	subs := signal.Subscriptions{}
	subs.Add("x", recorder(&log, "broken", errors.New("boom"))).
		Add("x", recorder(&log, "ok", nil))

	signal.NewBus(subs).Publish(context.Background(), "x", nil)

	assert.Equal(t, []string{"broken:x", "ok:x"}, log)
}

func TestBus_TableIsCopied(t *testing.T) {
	var log []string
	subs := signal.Subscriptions{}
	bus := signal.NewBus(subs)

	subs.Add("x", recorder(&log, "late", nil))
	bus.Publish(context.Background(), "x", nil)

	assert.Empty(t, log, "subscriptions added after construction are not seen")
}

func TestMulti_Publish(t *testing.T) {
	var log []string
	a := signal.NewBus(signal.Subscriptions{"x": {recorder(&log, "a", nil)}})
	b := signal.NewBus(signal.Subscriptions{"x": {recorder(&log, "b", nil)}})

	signal.Multi{a, nil, signal.Nop{}, b}.Publish(context.Background(), "x", 1)

	assert.Equal(t, []string{"a:x", "b:x"}, log)
}
