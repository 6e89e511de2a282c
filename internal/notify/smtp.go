package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier renders a plain-text mail per event kind and hands it to an
// SMTP relay. Delivery is synchronous; callers treat any returned error as
// log-and-continue.
type SMTPNotifier struct {
	addr string // host:port
	from string
	auth smtp.Auth
}

func NewSMTPNotifier(addr, username, password, from string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{addr: addr, from: from, auth: auth}
}

func (n *SMTPNotifier) Notify(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := render(ev)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: HealSync <%s>\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", ev.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{ev.Recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send %s mail: %w", ev.Kind, err)
	}
	return nil
}

func render(ev Event) (subject, body string) {
	get := func(k string) string { return ev.Data[k] }

	switch ev.Kind {
	case KindAppointmentRequested:
		subject = "Appointment Requested - HealSync"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour appointment request with %s for %s has been received and is pending confirmation from the doctor.\n",
			get("patient_name"), get("doctor_name"), get("start_time"))
	case KindAppointmentConfirmed:
		subject = "Appointment Confirmed - HealSync"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour appointment with %s on %s has been confirmed.\n",
			get("patient_name"), get("doctor_name"), get("start_time"))
	case KindAppointmentCancelled:
		subject = "Appointment Cancelled - HealSync"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour appointment with %s on %s has been cancelled.\nReason: %s\n",
			get("patient_name"), get("doctor_name"), get("start_time"), get("reason"))
	case KindAppointmentReminder:
		subject = "Appointment Reminder - HealSync"
		body = fmt.Sprintf(
			"Dear %s,\n\nThis is a reminder for your upcoming appointment with %s on %s.\n",
			get("patient_name"), get("doctor_name"), get("start_time"))
	case KindReportUploaded:
		subject = "New Medical Report - HealSync"
		body = fmt.Sprintf(
			"Dear %s,\n\nA new medical report has been added to your record: %s.\n",
			get("patient_name"), get("title"))
	case KindPrescriptionCreated:
		subject = "New Prescription - HealSync"
		body = fmt.Sprintf(
			"Dear %s,\n\n%s has issued a new prescription for you. You can view it in your dashboard.\n",
			get("patient_name"), get("doctor_name"))
	default:
		subject = "Notification - HealSync"
		body = fmt.Sprintf("Dear %s,\n\nYou have a new notification.\n", get("patient_name"))
	}
	return subject, body
}
