package smtp

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	notificationapimodels "jml-lite/models/api/notification"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrNotConfigured = errors.New("smtp клиент не настроен")

var Instance Provider

// Provider почтовый транспорт через SMTP
type Provider interface {
	Send(ctx context.Context, msg notificationapimodels.EmailMessage) error
}

func Connect(user, password, host, port, from string, tlsEnabled bool) {
	Instance = &impl{
		user:       user,
		password:   password,
		host:       host,
		port:       port,
		from:       from,
		tlsEnabled: tlsEnabled,
	}
}

type impl struct {
	user       string
	password   string
	host       string
	port       string
	from       string
	tlsEnabled bool
}

func (i impl) sender() string {
	if i.from != "" {
		return i.from
	}
	return i.user
}

func (i impl) Send(ctx context.Context, msg notificationapimodels.EmailMessage) (err error) {
	logger := log.
		WithField("sender", i.sender()).
		WithField("subject", msg.Subject)
	if i.host == "" || i.port == "" || i.sender() == "" {
		logger.Warn("Письмо не отправлено, тк не настроен smtp клиент")
		return ErrNotConfigured
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	sendTo := make([]string, 0, len(msg.To)+len(msg.Cc))
	for _, r := range append(append([]notificationapimodels.Recipient{}, msg.To...), msg.Cc...) {
		if r.Email != "" {
			sendTo = append(sendTo, r.Email)
		}
	}
	if len(sendTo) == 0 {
		return errors.New("не указаны получатели письма")
	}
	body, err := BuildMessage(i.sender(), msg, time.Now())
	if err != nil {
		return err
	}
	var auth sasl.Client
	if i.user != "" {
		auth = sasl.NewPlainClient("", i.user, i.password)
	}
	addr := i.host + ":" + i.port
	if i.tlsEnabled {
		err = smtp.SendMailTLS(addr, auth, i.sender(), sendTo, bytes.NewReader(body))
	} else {
		err = smtp.SendMail(addr, auth, i.sender(), sendTo, bytes.NewReader(body))
	}
	if err != nil {
		logger.WithError(err).Error("Ошибка отправки сообщения")
		return errors.Wrap(err, "ошибка отправки письма через smtp")
	}
	logger.Info("письмо отправлено")
	return nil
}

// BuildMessage письмо multipart/alternative: текстовая и html версии
func BuildMessage(from string, msg notificationapimodels.EmailMessage, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + from,
		"To: " + formatRecipients(msg.To),
	}
	if len(msg.Cc) > 0 {
		headers = append(headers, "Cc: "+formatRecipients(msg.Cc))
	}
	headers = append(headers,
		"Subject: "+mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: "+date.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", writer.Boundary()),
	)
	if msg.Importance == notificationapimodels.ImportanceHigh {
		headers = append(headers, "Importance: high", "X-Priority: 1")
	}
	var out bytes.Buffer
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=\"UTF-8\"", msg.TextBody},
		{"text/html; charset=\"UTF-8\"", msg.HtmlBody},
	}
	for _, part := range parts {
		if part.body == "" {
			continue
		}
		w, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования письма")
		}
		if _, err = w.Write([]byte(part.body)); err != nil {
			return nil, errors.Wrap(err, "ошибка формирования письма")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "ошибка формирования письма")
	}
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

func formatRecipients(list []notificationapimodels.Recipient) string {
	result := make([]string, 0, len(list))
	for _, r := range list {
		if r.Name == "" {
			result = append(result, r.Email)
			continue
		}
		result = append(result, fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", r.Name), r.Email))
	}
	return strings.Join(result, ", ")
}
