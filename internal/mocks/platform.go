package mocks

import (
	"context"

	"github.com/LWENA27/sms-getway/internal/bridge"
	"github.com/stretchr/testify/mock"
)

type Platform struct {
	mock.Mock
}

func (p *Platform) HasSendPermission(ctx context.Context) bool {
	args := p.Called(ctx)
	return args.Bool(0)
}

func (p *Platform) RequestSendPermission(ctx context.Context) error {
	args := p.Called(ctx)
	return args.Error(0)
}

func (p *Platform) SendText(ctx context.Context, phoneNumber, message string, onSent bridge.SentHandler) error {
	args := p.Called(ctx, phoneNumber, message, onSent)
	return args.Error(0)
}

type BridgeRecorder struct {
	mock.Mock
}

func (r *BridgeRecorder) RecordBridgeSend(method, outcome string) {
	r.Called(method, outcome)
}

func (r *BridgeRecorder) RecordBridgeSentReport() {
	r.Called()
}
