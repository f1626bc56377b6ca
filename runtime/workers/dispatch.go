package workers

import (
	"context"
	"log/slog"
	"salesroom/contract"
	"salesroom/domain/command"
)

// DispatchWorker is the single writer: it drains the command queue and applies
// one command at a time, so the stores never see concurrent access.
type DispatchWorker struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	commands   <-chan command.Request
}

func NewDispatchWorker(log *slog.Logger, dispatcher contract.IDispatcher, commands <-chan command.Request) *DispatchWorker {
	return &DispatchWorker{log: log, dispatcher: dispatcher, commands: commands}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping command dispatch")
			return nil
		case req, ok := <-w.commands:
			if !ok {
				return nil
			}
			outcome := w.dispatcher.Apply(req.Command)
			if outcome.Err != nil {
				w.log.Debug("Command not applied", "command", req.Command.Name(), "status", outcome.Status, "error", outcome.Err)
			}
			if req.Reply != nil {
				select {
				case req.Reply <- outcome:
				default:
				}
			}
		}
	}
}
