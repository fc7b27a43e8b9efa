package rabbitmq

import "github.com/streadway/amqp"

// ChannelPublisher адаптер канала RabbitMQ под интерфейсы публикации
// в сервисах бизнес-логики.
type ChannelPublisher struct {
	Ch *amqp.Channel
}

// PublishMessage публикует сообщение через обёрнутый канал.
func (p *ChannelPublisher) PublishMessage(exchange, routingKey string, message any) error {
	return PublishMessage(p.Ch, exchange, routingKey, message)
}
