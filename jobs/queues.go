package jobs

const (
	// QueueMail carries customer facing report emails.
	QueueMail = "mail"
	// QueueDefault carries cache warmups and ad hoc tasks.
	QueueDefault = "default"
	// QueueMaintenance carries payroll rollover and housekeeping.
	QueueMaintenance = "maintenance"
)

// queueWeights feeds asynq's weighted priority scheduling.
var queueWeights = map[string]int{
	QueueMail:        6,
	QueueDefault:     3,
	QueueMaintenance: 1,
}

// Queues lists every queue the worker consumes, highest priority first.
func Queues() []string {
	return []string{QueueMail, QueueDefault, QueueMaintenance}
}
