package bridge

import (
	"context"

	"github.com/LWENA27/sms-getway/pkg/modem"
)

// ModemPlatform sends through a GSM modem.
type ModemPlatform struct {
	modem *modem.Modem
}

func NewModemPlatform(m *modem.Modem) *ModemPlatform {
	return &ModemPlatform{modem: m}
}

func (p *ModemPlatform) HasSendPermission(ctx context.Context) bool {
	return p.modem.HasSendPermission(ctx)
}

func (p *ModemPlatform) RequestSendPermission(ctx context.Context) error {
	return p.modem.RequestSendPermission(ctx)
}

func (p *ModemPlatform) SendText(ctx context.Context, phoneNumber, message string, onSent SentHandler) error {
	var notify func(modem.Report)
	if onSent != nil {
		notify = func(r modem.Report) {
			onSent(SentReport{PhoneNumber: r.PhoneNumber, Reference: r.Reference})
		}
	}
	return p.modem.SendText(ctx, phoneNumber, message, notify)
}
