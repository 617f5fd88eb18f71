package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
)

type NotifyConfig struct {
	SendGridAPIKey string
	SendGridHost   string
	FromEmail      string
	FromName       string
	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
	Location       *time.Location
}

// SMSSender delivers a text message.
type SMSSender interface {
	SendSMS(to, body string) error
}

// NotifyService sends guest emails through SendGrid and host alerts by SMS.
// Deliveries run in the background; failures are logged and never reported
// to the caller.
type NotifyService struct {
	cfg    NotifyConfig
	sms    SMSSender
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewNotifyService(cfg NotifyConfig, logger *slog.Logger) *NotifyService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &NotifyService{cfg: cfg, logger: logger}
	s.sms = &twilioSender{sid: cfg.TwilioSID, token: cfg.TwilioToken, from: cfg.TwilioFrom}
	return s
}

// WithSMS replaces the SMS transport.
func (s *NotifyService) WithSMS(sms SMSSender) *NotifyService {
	s.sms = sms
	return s
}

// Wait blocks until queued deliveries finish.
func (s *NotifyService) Wait() { s.wg.Wait() }

func (s *NotifyService) dispatch(what, bookingID string, send func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := send(); err != nil {
			s.logger.Warn("notification failed", "kind", what, "booking", bookingID, "error", err)
		}
	}()
}

type emailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (s *NotifyService) SendEmail(toEmail, toName, subject, plainText, html string, attachments ...emailAttachment) error {
	if s.cfg.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}
	if s.cfg.FromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is not set")
	}

	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)
	for _, a := range attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	request := sendgrid.GetRequest(s.cfg.SendGridAPIKey, "/v3/mail/send", s.cfg.SendGridHost)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)
	response, err := sendgrid.MakeRequest(request)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	s.logger.Debug("email sent", "to", toEmail, "subject", subject, "status", response.StatusCode)
	return nil
}

func (s *NotifyService) emailData(b db.BookingRequest, host *db.Host, title, status string) entities.BookingEmailData {
	data := entities.BookingEmailData{
		GuestName:          b.GuestName,
		Title:              title,
		StartTimeFormatted: b.StartTime.In(s.cfg.Location).Format("Mon 02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   b.EndTime.In(s.cfg.Location).Format("15:04 MST"),
		MeetLink:           b.MeetLink,
		Note:               b.Note,
		Status:             status,
		CurrentYear:        time.Now().In(s.cfg.Location).Year(),
	}
	if host != nil {
		data.HostName = host.Name
	}
	return data
}

var bookingEmailTemplate = template.Must(template.New("booking").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Hello {{.GuestName}},</p>
  <p>Your booking request for <strong>{{.Title}}</strong>{{if .HostName}} with {{.HostName}}{{end}} is <strong>{{.Status}}</strong>.</p>
  <p>{{.StartTimeFormatted}} to {{.EndTimeFormatted}}</p>
  {{if .MeetLink}}<p><a href="{{.MeetLink}}">Join with Google Meet</a></p>{{end}}
  {{if .Note}}<p>Your note: {{.Note}}</p>{{end}}
  <p style="color: #888;">&copy; {{.CurrentYear}} Smart Scheduler</p>
</body>
</html>`))

func renderEmail(data entities.BookingEmailData) (subject, plain, html string) {
	subject = fmt.Sprintf("Your booking request is %s: %s", data.Status, data.Title)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\nYour booking request for %s is %s.\n\n", data.GuestName, data.Title, data.Status)
	fmt.Fprintf(&sb, "When: %s to %s\n", data.StartTimeFormatted, data.EndTimeFormatted)
	if data.HostName != "" {
		fmt.Fprintf(&sb, "Host: %s\n", data.HostName)
	}
	if data.MeetLink != "" {
		fmt.Fprintf(&sb, "Google Meet: %s\n", data.MeetLink)
	}
	plain = sb.String()

	var buf bytes.Buffer
	if err := bookingEmailTemplate.Execute(&buf, data); err == nil {
		html = buf.String()
	}
	return subject, plain, html
}

// BookingReceived sends the guest a receipt and alerts the host by SMS when a
// phone number is known.
func (s *NotifyService) BookingReceived(b db.BookingRequest, host *db.Host, title string) {
	subject, plain, html := renderEmail(s.emailData(b, host, title, "received"))
	s.dispatch("receipt email", b.ID, func() error {
		return s.SendEmail(b.GuestEmail, b.GuestName, subject, plain, html)
	})

	if host == nil || host.Phone == "" {
		return
	}
	body := fmt.Sprintf("New booking request from %s for %s on %s.",
		b.GuestName, title, b.StartTime.In(s.cfg.Location).Format("02/01 15:04"))
	s.dispatch("host sms", b.ID, func() error {
		return s.sms.SendSMS(host.Phone, body)
	})
}

// BookingApproved sends the confirmation with an .ics invite attached.
func (s *NotifyService) BookingApproved(b db.BookingRequest, host *db.Host, title string) {
	subject, plain, html := renderEmail(s.emailData(b, host, title, "confirmed"))
	organizer := ""
	if host != nil {
		organizer = host.Email
	}
	invite, err := BuildInvite(b, title, organizer)
	if err != nil {
		s.logger.Warn("could not build invite", "booking", b.ID, "error", err)
	}
	s.dispatch("confirmation email", b.ID, func() error {
		var attachments []emailAttachment
		if invite != nil {
			attachments = append(attachments, emailAttachment{
				Filename:    "invite.ics",
				ContentType: "text/calendar; method=REQUEST",
				Content:     invite,
			})
		}
		return s.SendEmail(b.GuestEmail, b.GuestName, subject, plain, html, attachments...)
	})
}

func (s *NotifyService) BookingRejected(b db.BookingRequest, host *db.Host, title string) {
	subject, plain, html := renderEmail(s.emailData(b, host, title, "declined"))
	s.dispatch("rejection email", b.ID, func() error {
		return s.SendEmail(b.GuestEmail, b.GuestName, subject, plain, html)
	})
}

type twilioSender struct {
	sid, token, from string
}

func (t *twilioSender) SendSMS(to, body string) error {
	if t.sid == "" || t.token == "" || t.from == "" {
		return fmt.Errorf("twilio credentials are not configured")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   t.sid,
		Password:   t.token,
		AccountSid: t.sid,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
