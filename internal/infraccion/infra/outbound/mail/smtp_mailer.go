// Adaptador outbound de correo sobre SMTP.
package mail

import (
	"context"
	"os"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// SMTPMailer envía las notificaciones por SMTP. No maneja timeouts propios:
// si el caller necesita uno, lo impone por fuera.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// Verificación estática
var _ domain.Notificador = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, secure bool, from string, log *zap.Logger) *SMTPMailer {
	d := gomail.NewDialer(host, port, "", "")
	d.SSL = secure
	return &SMTPMailer{dialer: d, from: from, log: log}
}

// Enviar arma y despacha el mail. Los adjuntos cuyo archivo no existe se
// filtran en lugar de hacer fallar el envío.
func (m *SMTPMailer) Enviar(ctx context.Context, to, asunto, cuerpo string, adjuntos []domain.Adjunto) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", asunto)
	msg.SetBody("text/plain", cuerpo)

	for _, a := range adjuntos {
		if _, err := os.Stat(a.Ruta); err != nil {
			m.log.Warn("adjunto inexistente, se omite",
				zap.String("ruta", a.Ruta),
				zap.Error(err),
			)
			continue
		}
		msg.Attach(a.Ruta, gomail.Rename(a.Nombre))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("fallo el envío SMTP", zap.String("to", to), zap.Error(err))
		return err
	}

	m.log.Info("mail de notificación enviado",
		zap.String("to", to),
		zap.Int("adjuntos", len(adjuntos)),
	)
	return nil
}
