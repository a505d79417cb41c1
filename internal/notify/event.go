package notify

import "tasker/internal/models"

// Event names broadcast to WebSocket clients.
const (
	TaskCreated = "task:created"
	TaskUpdated = "task:updated"
	TaskDeleted = "task:deleted"
)

// Event is a single notification. It is sent as one JSON text frame.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// DeletedTask is the payload of a task:deleted event.
type DeletedTask struct {
	ID string `json:"id"`
}

// Publisher broadcasts events to every connected subscriber. Publish must not
// block on slow subscribers.
type Publisher interface {
	Publish(Event)
}

// NewTaskCreated returns the event announcing a new task.
func NewTaskCreated(task *models.Task) Event {
	return Event{Name: TaskCreated, Data: task}
}

// NewTaskUpdated returns the event announcing a changed task.
func NewTaskUpdated(task *models.Task) Event {
	return Event{Name: TaskUpdated, Data: task}
}

// NewTaskDeleted returns the event announcing a removed task.
func NewTaskDeleted(id string) Event {
	return Event{Name: TaskDeleted, Data: DeletedTask{ID: id}}
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
