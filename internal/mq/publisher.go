package mq

import (
	"encoding/json"
	"errors"
	"fmt"

	"mpay-order-api/internal/dal"

	"github.com/streadway/amqp"
)

// amqpChannel *amqp.Channel 已实现，Publish 内部自带锁，可并发调用
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher 发布到 topic exchange，topic 即 routing key
type Publisher struct {
	ch       amqpChannel
	exchange string
}

func NewPublisher(exchange string) *Publisher {
	p := &Publisher{exchange: exchange}
	if dal.RabbitCh != nil {
		p.ch = dal.RabbitCh
	}
	return p
}

func (p *Publisher) Publish(topic string, msg any) error {
	if p.ch == nil {
		return errors.New("rabbitmq channel not initialized")
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	err = p.ch.Publish(
		p.exchange,
		topic,
		false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         b,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
