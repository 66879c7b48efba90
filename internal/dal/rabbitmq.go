package dal

import (
	"fmt"
	"log"

	"mpay-order-api/internal/config"

	"github.com/streadway/amqp"
)

var RabbitConn *amqp.Connection
var RabbitCh *amqp.Channel

const (
	QueueOrderPaid      = "order_paid"
	RoutingKeyOrderPaid = "order.paid"
)

// InitRabbitMQ 未启用时返回 false，调用方退回到进程内异步通知
func InitRabbitMQ() bool {
	c := config.C.RabbitMQ
	if !c.Enabled {
		log.Printf("[MQ] rabbitmq disabled, notify falls back to goroutine dispatch")
		return false
	}
	conn, ch, err := dialRabbit(c.URL, c.Exchange)
	if err != nil {
		log.Fatalf("rabbitmq init failed: %v", err)
	}
	RabbitConn = conn
	RabbitCh = ch
	return true
}

func dialRabbit(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel failed: %w", err)
	}

	// exchange & queues
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, nil, fmt.Errorf("exchange declare failed: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueOrderPaid, true, false, false, false, nil); err != nil {
		return nil, nil, fmt.Errorf("queue declare %s failed: %w", QueueOrderPaid, err)
	}
	if err := ch.QueueBind(QueueOrderPaid, RoutingKeyOrderPaid, exchange, false, nil); err != nil {
		return nil, nil, fmt.Errorf("queue bind %s failed: %w", QueueOrderPaid, err)
	}
	return conn, ch, nil
}

func CloseRabbitMQ() {
	if RabbitCh != nil {
		_ = RabbitCh.Close()
	}
	if RabbitConn != nil {
		_ = RabbitConn.Close()
	}
}
