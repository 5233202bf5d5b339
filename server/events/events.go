// Package events fans run lifecycle notifications out to interested
// parties (websocket streams, the history recorder) without the runner
// knowing any of them.
package events

import (
	"github.com/asaskevich/EventBus"

	"github.com/ytdesk/ytdesk/server/internal/runner"
)

const (
	TopicStarted   = "run.started"
	TopicLine      = "run.line"
	TopicCompleted = "run.completed"
)

type StartedEvent struct {
	Id     string   `json:"id"`
	Params []string `json:"params"`
}

type LineEvent struct {
	Id   string      `json:"id"`
	Line runner.Line `json:"line"`
}

type CompletedEvent struct {
	Id       string        `json:"id"`
	Status   runner.Status `json:"status"`
	ExitCode int           `json:"exit_code"`
}

// Bus adapts EventBus to the runner's Publisher interface.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Started(id string, params []string) {
	b.bus.Publish(TopicStarted, StartedEvent{Id: id, Params: params})
}

func (b *Bus) Line(id string, line runner.Line) {
	b.bus.Publish(TopicLine, LineEvent{Id: id, Line: line})
}

func (b *Bus) Completed(id string, status runner.Status, exitCode int) {
	b.bus.Publish(TopicCompleted, CompletedEvent{Id: id, Status: status, ExitCode: exitCode})
}

func (b *Bus) SubscribeStarted(fn func(StartedEvent)) error {
	return b.bus.Subscribe(TopicStarted, fn)
}

func (b *Bus) SubscribeLines(fn func(LineEvent)) error {
	return b.bus.Subscribe(TopicLine, fn)
}

func (b *Bus) SubscribeCompleted(fn func(CompletedEvent)) error {
	return b.bus.Subscribe(TopicCompleted, fn)
}

func (b *Bus) UnsubscribeLines(fn func(LineEvent)) error {
	return b.bus.Unsubscribe(TopicLine, fn)
}

func (b *Bus) UnsubscribeCompleted(fn func(CompletedEvent)) error {
	return b.bus.Unsubscribe(TopicCompleted, fn)
}
