package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
)

// EventPublisher публикует доменные события в topic-обменник.
// Пример routingKey:
// clinic.scheduler.appointment.scheduled
// clinic.scheduler.appointment.cancelled
type EventPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewEventPublisher(cfg *config.Config, logger out.LoggerPort) (*EventPublisher, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, events will not be published",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	err = channel.ExchangeDeclare(
		cfg.RabbitMq.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		logger.Error("rabbitmq.exchange.declare_failed", out.LogFields{
			"error":    err.Error(),
			"exchange": cfg.RabbitMq.Exchange,
		})
		return nil, err
	}

	return &EventPublisher{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq.publish.marshal_failed: %w", err)
	}

	routingKey := p.cfg.RabbitMq.RoutingKeyPrefix + "." + event.EventName()

	err = p.channel.PublishWithContext(ctx,
		p.cfg.RabbitMq.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.OccurredAt(),
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("rabbitmq.publish.failed", out.LogFields{
			"routingKey": routingKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("rabbitmq.publish.failed: %w", err)
	}

	p.logger.Debug("rabbitmq.publish.succeeded", out.LogFields{
		"routingKey": routingKey,
	})

	return nil
}

func (p *EventPublisher) Stop() error {
	if p == nil || p.channel == nil {
		return nil
	}

	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
