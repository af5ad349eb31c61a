package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LWENA27/sms-getway/pkg/procedure"
	"github.com/stretchr/testify/mock"
)

type Caller struct {
	mock.Mock
}

func (c *Caller) Call(ctx context.Context, target procedure.Target, name string,
	params procedure.Params) (json.RawMessage, error) {
	args := c.Called(ctx, target, name, params)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type Recorder struct {
	mock.Mock
}

func (r *Recorder) RecordProcedureCall(name, target, status string, duration time.Duration) {
	r.Called(name, target, status, duration)
}

func (r *Recorder) RecordProcedureFallback(name, from, to string) {
	r.Called(name, from, to)
}
