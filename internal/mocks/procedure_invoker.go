package mocks

import (
	"context"

	"github.com/LWENA27/sms-getway/pkg/procedure"
	"github.com/stretchr/testify/mock"
)

type ProcedureInvoker struct {
	mock.Mock
}

func (p *ProcedureInvoker) Invoke(ctx context.Context, name string, params procedure.Params) (procedure.Result, error) {
	args := p.Called(ctx, name, params)
	return args.Get(0).(procedure.Result), args.Error(1)
}
