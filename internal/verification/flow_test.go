package verification_test

//go:generate mockgen -source=flow.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"testing"
	"time"

	"zirrmi/internal/verification"
	"zirrmi/internal/verification/mocks"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/testutil"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type FlowSuite struct {
	suite.Suite
	service  *mocks.MockService
	sched    *testutil.ManualScheduler
	focused  []int
	verified []verification.Result
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}

var profile = verification.Destination{Email: "ana@acme.io", Phone: "+52 81 5555 0101"}

func (s *FlowSuite) newFlow(dest verification.Destination) *verification.Flow {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	s.sched = testutil.NewManualScheduler()
	s.focused = nil
	s.verified = nil
	return verification.New(s.service, s.sched, dest,
		verification.WithNotifier(verification.NotifierFunc(func(i int) { s.focused = append(s.focused, i) })),
		verification.WithOnComplete(func(r verification.Result) { s.verified = append(s.verified, r) }),
	)
}

// sent returns a flow that has delivered a code by email.
func (s *FlowSuite) sent() *verification.Flow {
	f := s.newFlow(profile)
	s.service.EXPECT().Send(gomock.Any(), verification.ChannelEmail, "ana@acme.io").Return(nil)
	s.Require().NoError(f.SendCode(context.Background()))
	s.sched.Flush()
	s.Require().Equal(verification.StatusCodeSent, f.Status())
	return f
}

func (s *FlowSuite) enter(f *verification.Flow, digits string) {
	for i, d := range digits {
		s.Require().NoError(f.EnterDigit(i, string(d)))
	}
}

func (s *FlowSuite) TestSendCode() {
	ctx := context.Background()

	s.Run("success starts a sixty second cooldown", func() {
		f := s.sent()
		s.Equal(60, f.CooldownRemaining())
		s.Equal(1, s.sched.ActiveTickers())
		s.False(f.CanSend())
	})

	s.Run("resend is refused during cooldown and allowed after it", func() {
		f := s.sent()

		s.True(dErrors.HasCode(f.SendCode(ctx), dErrors.CodeInvalidState))
		s.sched.Tick(59)
		s.Equal(1, f.CooldownRemaining())
		s.True(dErrors.HasCode(f.SendCode(ctx), dErrors.CodeInvalidState))

		s.sched.Tick(1)
		s.Equal(0, f.CooldownRemaining())
		s.Equal(0, s.sched.ActiveTickers())

		s.service.EXPECT().Send(gomock.Any(), verification.ChannelEmail, "ana@acme.io").Return(nil)
		s.Require().NoError(f.SendCode(ctx))
		s.sched.Flush()
		s.Equal(60, f.CooldownRemaining())
	})

	s.Run("switching channel keeps the cooldown", func() {
		f := s.sent()
		s.sched.Tick(10)

		s.Require().NoError(f.SelectChannel(verification.ChannelSMS))

		s.Equal(verification.ChannelSMS, f.Channel())
		s.Equal(50, f.CooldownRemaining())
	})

	s.Run("sms goes to the phone number", func() {
		f := s.newFlow(profile)
		s.Require().NoError(f.SelectChannel(verification.ChannelSMS))
		s.service.EXPECT().Send(gomock.Any(), verification.ChannelSMS, "+52 81 5555 0101").Return(nil)

		s.Require().NoError(f.SendCode(ctx))
		s.Equal(verification.StatusSending, f.Status())
		s.sched.Flush()
		s.Equal(verification.StatusCodeSent, f.Status())
	})

	s.Run("missing destination is a validation failure", func() {
		f := s.newFlow(verification.Destination{Email: "ana@acme.io"})
		s.Require().NoError(f.SelectChannel(verification.ChannelSMS))

		s.True(dErrors.HasCode(f.SendCode(ctx), dErrors.CodeValidation))
		s.Equal(0, s.sched.Pending())
	})

	s.Run("delivery failure reverts with a reason and no cooldown", func() {
		f := s.newFlow(profile)
		s.service.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeUnavailable, "mail relay unavailable"))

		s.Require().NoError(f.SendCode(ctx))
		s.sched.Flush()

		s.Equal(verification.StatusIdle, f.Status())
		s.Equal("mail relay unavailable", f.Failure())
		s.Equal(0, f.CooldownRemaining())
		s.True(f.CanSend())
	})
}

func (s *FlowSuite) TestCodeEntry() {
	s.Run("digits are refused before a code is sent", func() {
		f := s.newFlow(profile)
		s.True(dErrors.HasCode(f.EnterDigit(0, "1"), dErrors.CodeInvalidState))
	})

	s.Run("each digit moves focus forward except the last", func() {
		f := s.sent()
		s.enter(f, "123456")

		s.Equal([]int{1, 2, 3, 4, 5}, s.focused)
		s.Equal("123456", f.Code().String())
		s.True(f.CanVerify())
	})

	s.Run("non-digits and out of range positions are rejected", func() {
		f := s.sent()
		s.True(dErrors.HasCode(f.EnterDigit(0, "a"), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(f.EnterDigit(0, "12"), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(f.EnterDigit(6, "1"), dErrors.CodeInvalidInput))
		s.Equal(make([]string, verification.CodeLength), f.Code().Digits())
	})

	s.Run("backspace clears a digit then moves focus back", func() {
		f := s.sent()
		s.Require().NoError(f.EnterDigit(2, "7"))
		s.focused = nil

		s.Require().NoError(f.Backspace(2))
		s.Equal("", f.Code().Digits()[2])
		s.Empty(s.focused)

		s.Require().NoError(f.Backspace(2))
		s.Equal([]int{1}, s.focused)

		s.Require().NoError(f.Backspace(0))
		s.Equal([]int{1}, s.focused)
	})

	s.Run("empty value clears a position", func() {
		f := s.sent()
		s.enter(f, "123456")
		s.Require().NoError(f.EnterDigit(3, ""))
		s.False(f.CanVerify())
	})
}

func (s *FlowSuite) TestVerify() {
	ctx := context.Background()

	s.Run("fewer than six digits is refused", func() {
		f := s.sent()
		s.enter(f, "12345")

		s.True(dErrors.HasCode(f.Verify(ctx), dErrors.CodeValidation))
		s.Equal(0, s.sched.Pending())
	})

	s.Run("six digits confirm exactly once and complete", func() {
		f := s.sent()
		s.enter(f, "482913")
		s.service.EXPECT().Confirm(gomock.Any(), verification.ChannelEmail, "ana@acme.io", "482913").Return(nil).Times(1)

		s.Require().NoError(f.Verify(ctx))
		s.Equal(verification.StatusVerifying, f.Status())
		s.True(dErrors.HasCode(f.Verify(ctx), dErrors.CodeInvalidState))
		s.sched.Flush()

		s.Equal(verification.StatusVerified, f.Status())
		s.Equal([]verification.Result{{Channel: verification.ChannelEmail, Destination: "ana@acme.io"}}, s.verified)
		s.Equal(0, s.sched.ActiveTickers())
	})

	s.Run("switching channel after send still confirms the delivered code", func() {
		f := s.sent()
		s.Require().NoError(f.SelectChannel(verification.ChannelSMS))
		s.enter(f, "424242")
		s.service.EXPECT().Confirm(gomock.Any(), verification.ChannelEmail, "ana@acme.io", "424242").Return(nil).Times(1)

		s.Require().NoError(f.Verify(ctx))
		s.sched.Flush()

		s.Equal(verification.StatusVerified, f.Status())
		s.Equal([]verification.Result{{Channel: verification.ChannelEmail, Destination: "ana@acme.io"}}, s.verified)
	})

	s.Run("rejection returns to code entry with a reason", func() {
		f := s.sent()
		s.enter(f, "000000")
		s.service.EXPECT().Confirm(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeUnauthorized, "invalid verification code"))

		s.Require().NoError(f.Verify(ctx))
		s.sched.Flush()

		s.Equal(verification.StatusCodeSent, f.Status())
		s.Equal("invalid verification code", f.Failure())
		s.Empty(s.verified)
	})
}

func (s *FlowSuite) TestClose() {
	s.Run("close stops the cooldown ticker", func() {
		f := s.sent()
		s.sched.Tick(5)
		f.Close()

		s.Equal(0, s.sched.ActiveTickers())
		s.sched.Tick(5)
		s.Equal(55, f.CooldownRemaining())
	})

	s.Run("late confirmation after close is dropped", func() {
		f := s.sent()
		s.enter(f, "111111")
		s.service.EXPECT().Confirm(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.Require().NoError(f.Verify(context.Background()))
		call := s.sched.Next()

		f.Close()
		s.ErrorIs(call.Context().Err(), context.Canceled)
		call.Run()

		s.Equal(verification.StatusVerifying, f.Status())
		s.Empty(s.verified)
	})

	s.Run("late delivery after close starts no ticker", func() {
		f := s.newFlow(profile)
		s.service.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.Require().NoError(f.SendCode(context.Background()))
		call := s.sched.Next()

		f.Close()
		call.Run()

		s.Equal(0, s.sched.ActiveTickers())
		s.Equal(0, f.CooldownRemaining())
	})
}

func TestCustomCooldown(t *testing.T) {
	testutil.Given(t, "a five second cooldown", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		sched := testutil.NewManualScheduler()
		f := verification.New(svc, sched, profile, verification.WithCooldown(5*time.Second))
		svc.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		testutil.When(t, "a code is sent", func(t *testing.T) {
			if err := f.SendCode(context.Background()); err != nil {
				t.Fatal(err)
			}
			sched.Flush()

			testutil.Then(t, "the countdown starts at five", func(t *testing.T) {
				if got := f.CooldownRemaining(); got != 5 {
					t.Fatalf("cooldown = %d, want 5", got)
				}
			})
		})
	})
}
