package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
)

type sent struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent []sent
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.sent = append(f.sent, sent{exchange: exchange, key: key, msg: msg})
	return f.err
}

func TestPublisherRoutesByEventName(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "shop.events")

	evt := domorder.OrderPlacedEvent{OrderID: "o-5", Username: "nia", Garment: "Sleek Jacket", Size: "L", PriceCents: 12999}
	require.NoError(t, p.Publish(context.Background(), evt))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "shop.events", got.exchange)
	assert.Equal(t, "order.placed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "o-5", body["order_id"])
	assert.Equal(t, float64(12999), body["price_cents"])
}

func TestPublisherWrapsChannelError(t *testing.T) {
	boom := errors.New("channel closed")
	p := NewPublisher(&fakeChannel{err: boom}, "shop.events")
	err := p.Publish(context.Background(), domorder.OrderPlacedEvent{OrderID: "o-6"})
	assert.ErrorIs(t, err, boom)
}
