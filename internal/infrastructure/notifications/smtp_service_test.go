package notifications

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/you/hostelauth/domain"
)

func newTestMailer(sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) *SMTPServiceImpl {
	logger, _ := logrustest.NewNullLogger()
	svc := NewSMTPService(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		From:     "noreply@example.com",
		Password: "app-password",
	}, logger).(*SMTPServiceImpl)
	svc.send = sendFunc
	return svc
}

func TestSMTPService_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	svc := newTestMailer(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	err := svc.Send("asha@nitm.ac.in", "Subject Line", "<p>Hello</p>")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "noreply@example.com" {
		t.Errorf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "asha@nitm.ac.in" {
		t.Errorf("to = %v", gotTo)
	}
	msg := string(gotMsg)
	for _, want := range []string{
		"Subject: Subject Line",
		"To: asha@nitm.ac.in",
		"Content-Type: text/html",
		"<p>Hello</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPService_SendFailureIsClassified(t *testing.T) {
	svc := newTestMailer(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	})

	err := svc.Send("asha@nitm.ac.in", "s", "b")
	if !errors.Is(err, domain.ErrEmailSend) {
		t.Fatalf("expected ErrEmailSend, got %v", err)
	}
}

func TestSMTPService_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	svc := newTestMailer(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		return errors.New("relay down")
	})

	for i := 0; i < 5; i++ {
		if err := svc.Send("asha@nitm.ac.in", "s", "b"); !errors.Is(err, domain.ErrEmailSend) {
			t.Fatalf("send %d: expected ErrEmailSend, got %v", i, err)
		}
	}

	// After three consecutive failures the breaker stops dialing the relay.
	if calls != 3 {
		t.Errorf("relay dialed %d times, want 3", calls)
	}
}

func TestSMTPService_MockModeWithoutPassword(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	svc := NewSMTPService(SMTPConfig{Host: "smtp.example.com", Port: "587", From: "noreply@example.com"}, logger).(*SMTPServiceImpl)
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		t.Fatal("relay must not be dialed in mock mode")
		return nil
	}

	if err := svc.Send("asha@nitm.ac.in", "s", "b"); err != nil {
		t.Errorf("mock mode send failed: %v", err)
	}

	// The skipped send goes through the logger, not stdout.
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry for the skipped send")
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("level = %v", entry.Level)
	}
	if entry.Data["to"] != "asha@nitm.ac.in" {
		t.Errorf("to = %v", entry.Data["to"])
	}
}
