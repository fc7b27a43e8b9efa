package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/lovebug/backend/internal/config"
	"github.com/lovebug/backend/internal/lib/sl"
)

// dialTimeout ограничивает ожидание TCP-соединения с почтовым сервером,
// чтобы зависший сервер не блокировал консьюмер очереди уведомлений.
const dialTimeout = 10 * time.Second

// Transport держит параметры подключения к SMTP-серверу платформы.
// Соединение устанавливается заново на каждое письмо: объёмы рассылок
// невелики, а короткоживущие сессии не требуют keepalive-логики.
type Transport struct {
	host string
	addr string
	user string
	pass string
	log  *slog.Logger
}

// session адаптирует *smtp.Client к интерфейсу Client.
type session struct {
	client *smtp.Client
}

func (s *session) Mail(from string) error          { return s.client.Mail(from) }
func (s *session) Rcpt(to string) error            { return s.client.Rcpt(to) }
func (s *session) Data() (io.WriteCloser, error)   { return s.client.Data() }
func (s *session) Quit() error                     { return s.client.Quit() }
func (s *session) Close() error                    { return s.client.Close() }

// NewTransport создает новый Transport из почтовой секции конфигурации.
func NewTransport(cfg *config.Config, log *slog.Logger) *Transport {
	return &Transport{
		host: cfg.SMTPHost,
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		log:  log,
	}
}

// Connect открывает аутентифицированную SMTP-сессию. Сервер обязан
// поддерживать STARTTLS: учётные данные открытым текстом не передаются.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"

	conn, err := net.DialTimeout("tcp", t.addr, dialTimeout)
	if err != nil {
		t.log.Error("failed to dial SMTP server", slog.String("addr", t.addr), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		_ = client.Close()
		return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
	}
	tlsConfig := &tls.Config{
		ServerName: t.host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	auth := smtp.PlainAuth("", t.user, t.pass, t.host)
	if err := client.Auth(auth); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &session{client: client}, nil
}

// From возвращает адрес отправителя платформы.
func (t *Transport) From() string {
	return t.user
}
