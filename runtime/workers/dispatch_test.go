package workers

import (
	"context"
	"log/slog"
	"salesroom/domain/command"
	"salesroom/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDispatchWorker_Applies_Commands_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	commands := make(chan command.Request, 3)

	// Given three commands queued
	gomock.InOrder(
		dispatcher.EXPECT().Apply(command.Leave{ConnectionID: "a"}).Return(command.Outcome{Status: command.Applied}),
		dispatcher.EXPECT().Apply(command.Tick{}).Return(command.Outcome{Status: command.Applied}),
		dispatcher.EXPECT().Apply(command.Leave{ConnectionID: "b"}).Return(command.Outcome{Status: command.Ignored}),
	)
	reply := make(chan command.Outcome, 1)
	commands <- command.Request{Command: command.Leave{ConnectionID: "a"}}
	commands <- command.Request{Command: command.Tick{}}
	commands <- command.Request{Command: command.Leave{ConnectionID: "b"}, Reply: reply}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewDispatchWorker(slog.Default(), dispatcher, commands).Run(ctx) }()

	// Then the last reply carries its own outcome
	select {
	case outcome := <-reply:
		req.Equal(command.Ignored, outcome.Status)
	case <-time.After(time.Second):
		req.Fail("no reply received")
	}
}

func TestDispatchWorker_Returns_On_Cancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dispatcher := mocks.NewMockIDispatcher(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDispatchWorker(slog.Default(), dispatcher, make(chan command.Request)).Run(ctx)
	req.NoError(err)
}
