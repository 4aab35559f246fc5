package user

import (
	"context"

	"github.com/supinter/ums/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service sending its emails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &serviceMock{
		service: service{
			repo:     repo,
			mailSvc:  mailSvc,
			tokenGen: newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if usr.IsActive {
		svc.sendPasswordResetMail(usr) // run synchronously
	}
	return nil
}

// MakeResetToken exposes the reset token of usr to tests.
func (svc *serviceMock) MakeResetToken(usr User) string {
	return svc.tokenGen.makeToken(usr)
}
