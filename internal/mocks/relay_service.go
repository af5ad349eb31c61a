package mocks

import (
	"context"

	"github.com/LWENA27/sms-getway/internal/service"
	"github.com/stretchr/testify/mock"
)

type RelayService struct {
	mock.Mock
}

func (r *RelayService) SubmitSMS(ctx context.Context, cmd service.SubmitSMSCommand) (service.ProcedureResult, error) {
	args := r.Called(ctx, cmd)
	return args.Get(0).(service.ProcedureResult), args.Error(1)
}

func (r *RelayService) SubmitBulkSMS(ctx context.Context, cmd service.SubmitBulkSMSCommand) (service.ProcedureResult, error) {
	args := r.Called(ctx, cmd)
	return args.Get(0).(service.ProcedureResult), args.Error(1)
}

func (r *RelayService) GetStatus(ctx context.Context, cmd service.GetStatusCommand) (service.ProcedureResult, error) {
	args := r.Called(ctx, cmd)
	return args.Get(0).(service.ProcedureResult), args.Error(1)
}
