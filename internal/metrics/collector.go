package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fieldservice"

// Collector is a prometheus.Collector for state transitions and the
// notification broadcaster. A nil *Collector is valid and records nothing.
type Collector struct {
	transitions      *prometheus.CounterVec
	subscribers      prometheus.Gauge
	eventsPublished  *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	inboundDropped   prometheus.Counter
	scheduledJobRuns *prometheus.CounterVec
}

func NewCollector() *Collector {
	return &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "State transitions attempted, by operation and outcome.",
			}, []string{"operation", "outcome"},
		),
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "notification_subscribers",
				Help:      "The number of active notification subscribers.",
			},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_events_published_total",
				Help:      "Events published to the notification topic, by kind.",
			}, []string{"kind"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_deliveries_total",
				Help:      "Per-subscriber deliveries, by result.",
			}, []string{"result"},
		),
		inboundDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_inbound_dropped_total",
				Help:      "Client messages dropped because they could not be parsed.",
			},
		),
		scheduledJobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduled_job_runs_total",
				Help:      "Scheduled job runs, by job and outcome.",
			}, []string{"job", "outcome"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.subscribers.Describe(ch)
	c.eventsPublished.Describe(ch)
	c.deliveries.Describe(ch)
	c.inboundDropped.Describe(ch)
	c.scheduledJobRuns.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.subscribers.Collect(ch)
	c.eventsPublished.Collect(ch)
	c.deliveries.Collect(ch)
	c.inboundDropped.Collect(ch)
	c.scheduledJobRuns.Collect(ch)
}

func (c *Collector) Transition(operation string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.transitions.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) SubscriberAdded() {
	if c != nil {
		c.subscribers.Inc()
	}
}

func (c *Collector) SubscriberRemoved() {
	if c != nil {
		c.subscribers.Dec()
	}
}

func (c *Collector) EventPublished(kind string) {
	if c == nil {
		return
	}
	if kind == "" {
		kind = "message"
	}
	c.eventsPublished.WithLabelValues(kind).Inc()
}

func (c *Collector) Delivery(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	c.deliveries.WithLabelValues(result).Inc()
}

func (c *Collector) InboundDropped() {
	if c != nil {
		c.inboundDropped.Inc()
	}
}

func (c *Collector) JobRun(job string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.scheduledJobRuns.WithLabelValues(job, outcome).Inc()
}
