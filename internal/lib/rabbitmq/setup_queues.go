package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации в exchange "notifications".
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди почтовых уведомлений платформы.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.invoice", RoutingKey: "invoice"},
		{QueueName: "notifications.expiry", RoutingKey: "expiry"},
		{QueueName: "notifications.campaign", RoutingKey: "campaign"},
	}
}
