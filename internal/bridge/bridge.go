// Package bridge exposes the device's SMS primitive to a host application:
// single and bulk sends gated by a live permission check.
package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
	OutcomeDenied = "denied"
)

// SentReport is the platform's notification that a submitted message left the
// device.
type SentReport struct {
	PhoneNumber string
	Reference   int
}

type SentHandler func(SentReport)

// Platform is the device's SMS primitive.
type Platform interface {
	HasSendPermission(ctx context.Context) bool
	RequestSendPermission(ctx context.Context) error
	SendText(ctx context.Context, phoneNumber, message string, onSent SentHandler) error
}

type Recorder interface {
	RecordBridgeSend(method, outcome string)
	RecordBridgeSentReport()
}

type BulkSendOutcome struct {
	SuccessCount  int      `json:"successCount"`
	FailedNumbers []string `json:"failedNumbers"`
}

type Bridge struct {
	platform Platform
	logger   *zap.Logger
	recorder Recorder
}

func New(platform Platform, logger *zap.Logger, recorder Recorder) *Bridge {
	return &Bridge{platform: platform, logger: logger, recorder: recorder}
}

// SendSms hands one message to the platform and returns as soon as it is
// accepted; the sent notification is not awaited.
func (b *Bridge) SendSms(ctx context.Context, phoneNumber, message string) (bool, error) {
	if !b.platform.HasSendPermission(ctx) {
		b.record("sendSms", OutcomeDenied)
		return false, ErrPermissionDenied
	}

	if err := b.send(ctx, phoneNumber, message); err != nil {
		b.logger.Error("Failed to send SMS",
			zap.String("phone_number", phoneNumber),
			zap.Error(err))
		b.record("sendSms", OutcomeFailed)
		return false, Error{Code: CodeSendError, Message: err.Error()}
	}

	b.record("sendSms", OutcomeSent)
	return true, nil
}

// SendBulkSms sends to every recipient in order. A failing recipient is
// recorded and the batch continues.
func (b *Bridge) SendBulkSms(ctx context.Context, phoneNumbers []string, message string) (BulkSendOutcome, error) {
	if !b.platform.HasSendPermission(ctx) {
		b.record("sendBulkSms", OutcomeDenied)
		return BulkSendOutcome{}, ErrPermissionDenied
	}

	outcome := BulkSendOutcome{FailedNumbers: []string{}}
	for _, phoneNumber := range phoneNumbers {
		if err := b.send(ctx, phoneNumber, message); err != nil {
			b.logger.Warn("Bulk recipient failed",
				zap.String("phone_number", phoneNumber),
				zap.Error(err))
			b.record("sendBulkSms", OutcomeFailed)
			outcome.FailedNumbers = append(outcome.FailedNumbers, phoneNumber)
			continue
		}
		b.record("sendBulkSms", OutcomeSent)
		outcome.SuccessCount++
	}

	b.logger.Info("Bulk SMS dispatched",
		zap.Int("recipients", len(phoneNumbers)),
		zap.Int("success_count", outcome.SuccessCount),
		zap.Int("failed_count", len(outcome.FailedNumbers)))

	return outcome, nil
}

// CheckSmsPermission asks the platform every time.
func (b *Bridge) CheckSmsPermission(ctx context.Context) bool {
	return b.platform.HasSendPermission(ctx)
}

// RequestSmsPermission issues the request. Whether it is granted shows up in
// later CheckSmsPermission calls.
func (b *Bridge) RequestSmsPermission(ctx context.Context) bool {
	if err := b.platform.RequestSendPermission(ctx); err != nil {
		b.logger.Error("Failed to request SMS permission", zap.Error(err))
		return false
	}
	return true
}

func (b *Bridge) send(ctx context.Context, phoneNumber, message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("platform panic: %v", r)
		}
	}()

	return b.platform.SendText(ctx, phoneNumber, message, b.onSent)
}

func (b *Bridge) onSent(report SentReport) {
	b.logger.Debug("SMS sent",
		zap.String("phone_number", report.PhoneNumber),
		zap.Int("reference", report.Reference))

	if b.recorder != nil {
		b.recorder.RecordBridgeSentReport()
	}
}

func (b *Bridge) record(method, outcome string) {
	if b.recorder == nil {
		return
	}
	b.recorder.RecordBridgeSend(method, outcome)
}
