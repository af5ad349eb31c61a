package bridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LWENA27/sms-getway/internal/bridge"
	"github.com/LWENA27/sms-getway/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBridge_SendSms(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("send accepted", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+255700000001", "Hello", mock.Anything).Return(nil)

		ok, err := b.SendSms(ctx, "+255700000001", "Hello")

		assert.NoError(t, err)
		assert.True(t, ok)
		platform.AssertExpectations(t)
	})

	t.Run("permission denied before any send", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(false)

		ok, err := b.SendSms(ctx, "+255700000001", "Hello")

		assert.False(t, ok)
		assert.Equal(t, bridge.ErrPermissionDenied, err)
		platform.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("platform error becomes send error", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+255700000001", "Hello", mock.Anything).
			Return(errors.New("radio off"))

		ok, err := b.SendSms(ctx, "+255700000001", "Hello")

		assert.False(t, ok)
		var bridgeErr bridge.Error
		require.True(t, errors.As(err, &bridgeErr))
		assert.Equal(t, bridge.CodeSendError, bridgeErr.Code)
		assert.Equal(t, "radio off", bridgeErr.Message)
	})

	t.Run("platform panic becomes send error", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+255700000001", "Hello", mock.Anything).Panic("modem unplugged")

		ok, err := b.SendSms(ctx, "+255700000001", "Hello")

		assert.False(t, ok)
		var bridgeErr bridge.Error
		require.True(t, errors.As(err, &bridgeErr))
		assert.Equal(t, bridge.CodeSendError, bridgeErr.Code)
		assert.Contains(t, bridgeErr.Message, "modem unplugged")
	})

	t.Run("sent report reaches the recorder", func(t *testing.T) {
		platform := &mocks.Platform{}
		recorder := &mocks.BridgeRecorder{}
		b := bridge.New(platform, logger, recorder)

		reported := make(chan bool, 1)
		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+255700000001", "Hello", mock.Anything).
			Run(func(args mock.Arguments) {
				onSent := args.Get(3).(bridge.SentHandler)
				go onSent(bridge.SentReport{PhoneNumber: "+255700000001", Reference: 9})
			}).Return(nil)
		recorder.On("RecordBridgeSend", "sendSms", bridge.OutcomeSent).Return()
		recorder.On("RecordBridgeSentReport").Run(func(mock.Arguments) {
			reported <- true
		}).Return()

		ok, err := b.SendSms(ctx, "+255700000001", "Hello")

		require.NoError(t, err)
		assert.True(t, ok)
		select {
		case <-reported:
		case <-time.After(time.Second):
			t.Fatal("sent report not recorded")
		}
		recorder.AssertExpectations(t)
	})
}

func TestBridge_SendBulkSms(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("one failing recipient does not abort the batch", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		numbers := []string{"+1001", "+1002", "+1003", "+1004"}
		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+1001", "Hi", mock.Anything).Return(nil)
		platform.On("SendText", ctx, "+1002", "Hi", mock.Anything).Return(errors.New("rejected"))
		platform.On("SendText", ctx, "+1003", "Hi", mock.Anything).Return(nil)
		platform.On("SendText", ctx, "+1004", "Hi", mock.Anything).Return(nil)

		outcome, err := b.SendBulkSms(ctx, numbers, "Hi")

		require.NoError(t, err)
		assert.Equal(t, 3, outcome.SuccessCount)
		assert.Equal(t, []string{"+1002"}, outcome.FailedNumbers)
		platform.AssertNumberOfCalls(t, "SendText", 4)
	})

	t.Run("panicking recipient is recorded as failed", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+1001", "Hi", mock.Anything).Panic("boom")
		platform.On("SendText", ctx, "+1002", "Hi", mock.Anything).Return(nil)

		outcome, err := b.SendBulkSms(ctx, []string{"+1001", "+1002"}, "Hi")

		require.NoError(t, err)
		assert.Equal(t, 1, outcome.SuccessCount)
		assert.Equal(t, []string{"+1001"}, outcome.FailedNumbers)
	})

	t.Run("calls do not share accumulators", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+1001", "Hi", mock.Anything).Return(errors.New("rejected"))
		platform.On("SendText", ctx, "+1002", "Hi", mock.Anything).Return(nil)

		first, err := b.SendBulkSms(ctx, []string{"+1001", "+1002"}, "Hi")
		require.NoError(t, err)
		second, err := b.SendBulkSms(ctx, []string{"+1002"}, "Hi")
		require.NoError(t, err)

		assert.Equal(t, 1, first.SuccessCount)
		assert.Equal(t, []string{"+1001"}, first.FailedNumbers)
		assert.Equal(t, 1, second.SuccessCount)
		assert.Empty(t, second.FailedNumbers)
	})

	t.Run("empty recipient list", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)

		outcome, err := b.SendBulkSms(ctx, []string{}, "Hi")

		require.NoError(t, err)
		assert.Equal(t, 0, outcome.SuccessCount)
		assert.NotNil(t, outcome.FailedNumbers)
		assert.Empty(t, outcome.FailedNumbers)
	})

	t.Run("permission denied", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(false)

		_, err := b.SendBulkSms(ctx, []string{"+1001"}, "Hi")

		assert.Equal(t, bridge.ErrPermissionDenied, err)
		platform.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBridge_Permission(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("check is live on every call", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(false).Once()
		platform.On("HasSendPermission", ctx).Return(true).Once()

		assert.False(t, b.CheckSmsPermission(ctx))
		assert.True(t, b.CheckSmsPermission(ctx))
		platform.AssertNumberOfCalls(t, "HasSendPermission", 2)
	})

	t.Run("request issued", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("RequestSendPermission", ctx).Return(nil)

		assert.True(t, b.RequestSmsPermission(ctx))
	})

	t.Run("request failed", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("RequestSendPermission", ctx).Return(errors.New("no operator"))

		assert.False(t, b.RequestSmsPermission(ctx))
	})
}

func TestBridge_Dispatch(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	call := func(method, args string) bridge.MethodCall {
		c := bridge.MethodCall{Method: method}
		if args != "" {
			c.Arguments = json.RawMessage(args)
		}
		return c
	}

	t.Run("sendSms", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+1001", "Hi", mock.Anything).Return(nil)

		result, err := b.Dispatch(ctx, call(bridge.MethodSendSms, `{"phoneNumber":"+1001","message":"Hi"}`))

		require.NoError(t, err)
		assert.Equal(t, true, result)
	})

	t.Run("sendBulkSms", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Return(true)
		platform.On("SendText", ctx, "+1001", "Hi", mock.Anything).Return(nil)
		platform.On("SendText", ctx, "+1002", "Hi", mock.Anything).Return(errors.New("rejected"))

		result, err := b.Dispatch(ctx, call(bridge.MethodSendBulkSms,
			`{"phoneNumbers":["+1001","+1002"],"message":"Hi"}`))

		require.NoError(t, err)
		assert.Equal(t, bridge.BulkSendOutcome{SuccessCount: 1, FailedNumbers: []string{"+1002"}}, result)
	})

	t.Run("null arguments", func(t *testing.T) {
		b := bridge.New(&mocks.Platform{}, logger, nil)

		cases := []struct {
			call    bridge.MethodCall
			message string
		}{
			{call(bridge.MethodSendSms, ""), "Phone number or message is null"},
			{call(bridge.MethodSendSms, `{"phoneNumber":"+1001"}`), "Phone number or message is null"},
			{call(bridge.MethodSendSms, `{"phoneNumber":null,"message":"Hi"}`), "Phone number or message is null"},
			{call(bridge.MethodSendBulkSms, `{"message":"Hi"}`), "Phone numbers or message is null"},
			{call(bridge.MethodSendBulkSms, `{"phoneNumbers":["+1001"],"message":null}`), "Phone numbers or message is null"},
		}

		for _, tc := range cases {
			_, err := b.Dispatch(ctx, tc.call)
			assert.Equal(t, bridge.Error{Code: bridge.CodeInvalidArgs, Message: tc.message}, err)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		b := bridge.New(&mocks.Platform{}, logger, nil)

		_, err := b.Dispatch(ctx, call("sendMms", `{}`))

		var bridgeErr bridge.Error
		require.True(t, errors.As(err, &bridgeErr))
		assert.Equal(t, bridge.CodeNotImplemented, bridgeErr.Code)
	})

	t.Run("panic outside the send is contained", func(t *testing.T) {
		platform := &mocks.Platform{}
		b := bridge.New(platform, logger, nil)

		platform.On("HasSendPermission", ctx).Panic("permission service crashed")

		result, err := b.Dispatch(ctx, call(bridge.MethodCheckSmsPermission, ""))

		assert.Nil(t, result)
		var bridgeErr bridge.Error
		require.True(t, errors.As(err, &bridgeErr))
		assert.Equal(t, bridge.CodeSendError, bridgeErr.Code)
		assert.Equal(t, "permission service crashed", bridgeErr.Message)
	})
}
