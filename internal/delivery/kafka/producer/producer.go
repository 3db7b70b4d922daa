package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/draftqueue/internal/delivery/kafka"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

var ErrProducerBusy = errors.New("kafka producer input is full")

// Producer publishes domain events. Publish calls never block: when the
// producer's input buffer is full the event is dropped with ErrProducerBusy.
type Producer interface {
	PublishPlayerJoined(ctx context.Context, event kafka.PlayerJoinedEvent) error
	PublishPlayerLeft(ctx context.Context, event kafka.PlayerLeftEvent) error
	PublishReadyCheckStarted(ctx context.Context, event kafka.ReadyCheckStartedEvent) error
	PublishReadyCheckResolved(ctx context.Context, event kafka.ReadyCheckResolvedEvent) error
	PublishSessionLaunched(ctx context.Context, event kafka.SessionLaunchedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.AsyncProducer
	wg   sync.WaitGroup
}

func NewProducer(prod sarama.AsyncProducer, l logger.Logger) Producer {
	p := &implProducer{
		l:    l,
		prod: prod,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.drainErrors()
	}()

	return p
}

func (p *implProducer) PublishPlayerJoined(ctx context.Context, event kafka.PlayerJoinedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicPlayerJoined, event.QueueID, event)
}

func (p *implProducer) PublishPlayerLeft(ctx context.Context, event kafka.PlayerLeftEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicPlayerLeft, event.QueueID, event)
}

func (p *implProducer) PublishReadyCheckStarted(ctx context.Context, event kafka.ReadyCheckStartedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicReadyCheckStarted, event.QueueID, event)
}

func (p *implProducer) PublishReadyCheckResolved(ctx context.Context, event kafka.ReadyCheckResolvedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicReadyCheckResolved, event.QueueID, event)
}

func (p *implProducer) PublishSessionLaunched(ctx context.Context, event kafka.SessionLaunchedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicSessionLaunched, event.QueueID, event)
}

// publish keys every message by queue ID so events of one queue stay ordered.
func (p *implProducer) publish(ctx context.Context, topic, key string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: %s: %v", topic, err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	select {
	case p.prod.Input() <- msg:
		return nil
	default:
		p.l.Warnf(ctx, "delivery.kafka.producer.publish: %s: %v", topic, ErrProducerBusy)
		return ErrProducerBusy
	}
}

func (p *implProducer) drainErrors() {
	for err := range p.prod.Errors() {
		p.l.Errorf(context.Background(), "delivery.kafka.producer.drainErrors: %s: %v", err.Msg.Topic, err.Err)
	}
}

func (p *implProducer) Close() error {
	err := p.prod.Close()
	p.wg.Wait()
	return err
}
