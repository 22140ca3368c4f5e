package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSense        EventType = "sense"
	EventPlanFound    EventType = "plan_found"
	EventPlanFailed   EventType = "plan_failed"
	EventTaskStart    EventType = "task_start"
	EventTaskComplete EventType = "task_complete"
	EventTaskFailed   EventType = "task_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Agent     string    `json:"agent"`
}

// SenseEvent reports a sensor reading committed to live state.
type SenseEvent struct {
	EventBase
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// PlanEvent reports the outcome of a planning request.
// PlanID and Tasks are empty when no plan was found.
type PlanEvent struct {
	EventBase
	PlanID   string        `json:"plan_id,omitempty"`
	Tasks    []string      `json:"tasks,omitempty"`
	Explored int           `json:"explored"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// TaskEvent reports the execution of one plan step.
type TaskEvent struct {
	EventBase
	PlanID string `json:"plan_id"`
	Index  int    `json:"index"`
	Task   string `json:"task"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for agent observability.
type LifecycleHooks struct {
	OnSense        func(context.Context, *SenseEvent)
	OnPlanFound    func(context.Context, *PlanEvent)
	OnPlanFailed   func(context.Context, *PlanEvent)
	OnTaskStart    func(context.Context, *TaskEvent)
	OnTaskComplete func(context.Context, *TaskEvent)
	OnTaskFailed   func(context.Context, *TaskEvent)
}
