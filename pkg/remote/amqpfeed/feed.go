// Package amqpfeed distributes the changes of a remote store over RabbitMQ.
//
// A Feed wraps a remote.Store. Every successful write is published to an
// exchange, and subscriptions consume from a queue bound to that exchange. This
// lets multiple processes sharing one store receive each other's changes.
package amqpfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// Channel is the part of an AMQP channel the feed uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
}

// Feed is a remote.Store that publishes all changes to an AMQP exchange.
type Feed struct {
	remote.Store
	channel  Channel
	exchange string
	queue    string
}

var _ remote.Store = (*Feed)(nil)

// New creates a feed for the store.
func New(store remote.Store, channel Channel, exchange, queue string) *Feed {
	return &Feed{
		Store:    store,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
	}
}

func (f *Feed) Put(ctx context.Context, doc remote.Document) error {
	if err := f.Store.Put(ctx, doc); err != nil {
		return err
	}

	f.publish(ctx, remote.Change{Kind: remote.ChangeUpsert, Document: doc})
	return nil
}

func (f *Feed) Delete(ctx context.Context, key remote.Key, at time.Time) error {
	if err := f.Store.Delete(ctx, key, at); err != nil {
		return err
	}

	f.publish(ctx, remote.Change{
		Kind:     remote.ChangeDelete,
		Document: remote.Document{Owner: key.Owner, Collection: key.Collection, ID: key.ID, UpdatedAt: at.UTC()},
	})
	return nil
}

func (f *Feed) Batch(ctx context.Context, docs []remote.Document) error {
	if err := f.Store.Batch(ctx, docs); err != nil {
		return err
	}

	for _, doc := range docs {
		f.publish(ctx, remote.Change{Kind: remote.ChangeUpsert, Document: doc})
	}

	return nil
}

// publish publishes a change. The write it belongs to already succeeded, so
// failures are only logged. Subscribers converge with the next change of the
// same document.
func (f *Feed) publish(ctx context.Context, c remote.Change) {
	body, err := NewChangeMessage(c).ToJSON()
	if err != nil {
		log.Error().Str("component", "amqpfeed").Err(err).Msg("marshal message")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange, // exchange
		f.queue,    // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Warn().Str("component", "amqpfeed").Err(err).Str("document", c.Document.Key().String()).Msg("publish change")
		return
	}

	log.Debug().Str("component", "amqpfeed").Str("kind", string(c.Kind)).Str("document", c.Document.Key().String()).Msg("published change")
}

// Subscribe consumes changes for the owner from the queue.
//
// Messages for other owners are acknowledged and dropped. Invalid messages are
// rejected without requeueing.
func (f *Feed) Subscribe(ctx context.Context, owner uuid.UUID) (<-chan remote.Change, error) {
	consumer := "ledger-" + owner.String()

	deliveries, err := f.channel.Consume(
		f.queue,  // queue
		consumer, // consumer
		false,    // auto-ack
		false,    // exclusive
		false,    // no-local
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		return nil, fmt.Errorf("%w: start consuming: %w", remote.ErrUnavailable, err)
	}

	changes := make(chan remote.Change)

	go func() {
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return

			case delivery, ok := <-deliveries:
				if !ok {
					log.Warn().Str("component", "amqpfeed").Msg("delivery channel closed")
					return
				}

				msg, err := ChangeMessageFromJSON(delivery.Body)
				if err != nil {
					log.Error().Str("component", "amqpfeed").Err(err).Msg("unmarshal message")
					_ = delivery.Nack(false, false)
					continue
				}

				if msg.Change.Document.Owner != owner {
					_ = delivery.Ack(false)
					continue
				}

				select {
				case changes <- msg.Change:
					_ = delivery.Ack(false)
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				}
			}
		}
	}()

	return changes, nil
}
