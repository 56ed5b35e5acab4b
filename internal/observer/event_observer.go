package observer

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-leximed/internal/logger"

	"github.com/sirupsen/logrus"
)

// PipelineEvent represents a step in the life of one endpoint pipeline
type PipelineEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Pipeline       string                 `json:"pipeline"`
	Stage          string                 `json:"stage,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of pipeline event
type EventType string

const (
	// PipelineStarted when a request enters a pipeline
	PipelineStarted EventType = "pipeline_started"
	// StageCompleted when one stage finishes successfully
	StageCompleted EventType = "stage_completed"
	// StageFallback when a stage failed but the pipeline continued with a fallback value
	StageFallback EventType = "stage_fallback"
	// PipelineCompleted when the pipeline returns a result
	PipelineCompleted EventType = "pipeline_completed"
	// PipelineFailed when the pipeline aborts with an error
	PipelineFailed EventType = "pipeline_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PipelineEvent)
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(l *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: l,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"pipeline":           event.Pipeline,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}
	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}
	if id := logger.RequestID(ctx); id != "" {
		fields["request_id"] = id
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case PipelineStarted:
		entry.Info("Pipeline started")
	case StageCompleted:
		entry.Debug("Pipeline stage completed")
	case StageFallback:
		entry.Warn("Pipeline stage fell back")
	case PipelineCompleted:
		entry.Info("Pipeline completed")
	case PipelineFailed:
		entry.Error("Pipeline failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

type pipelineCounters struct {
	started             int64
	completed           int64
	failed              int64
	fallbacks           int64
	totalProcessingTime time.Duration
}

// MetricsObserver aggregates counts and durations per pipeline
type MetricsObserver struct {
	mu        sync.RWMutex
	pipelines map[string]*pipelineCounters
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{pipelines: make(map[string]*pipelineCounters)}
}

// OnEvent handles pipeline events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.pipelines[event.Pipeline]
	if !ok {
		c = &pipelineCounters{}
		o.pipelines[event.Pipeline] = c
	}

	switch event.EventType {
	case PipelineStarted:
		c.started++
	case PipelineCompleted:
		c.completed++
		c.totalProcessingTime += event.ProcessingTime
	case PipelineFailed:
		c.failed++
	case StageFallback:
		c.fallbacks++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics, totals first then one entry per pipeline
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var total pipelineCounters
	names := make([]string, 0, len(o.pipelines))
	for name := range o.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)

	perPipeline := make(map[string]interface{}, len(names))
	for _, name := range names {
		c := o.pipelines[name]
		total.started += c.started
		total.completed += c.completed
		total.failed += c.failed
		total.fallbacks += c.fallbacks
		total.totalProcessingTime += c.totalProcessingTime
		perPipeline[name] = c.snapshot()
	}

	out := total.snapshot()
	out["pipelines"] = perPipeline
	return out
}

func (c *pipelineCounters) snapshot() map[string]interface{} {
	avg := time.Duration(0)
	if c.completed > 0 {
		avg = c.totalProcessingTime / time.Duration(c.completed)
	}
	return map[string]interface{}{
		"started":             c.started,
		"completed":           c.completed,
		"failed":              c.failed,
		"fallbacks":           c.fallbacks,
		"total_processing_ms": c.totalProcessingTime.Milliseconds(),
		"avg_processing_ms":   avg.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PipelineEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Observers run concurrently and outlive the request, so they get a detached context
	detached := context.WithoutCancel(ctx)
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(detached, event)
		}(observer)
	}
}
