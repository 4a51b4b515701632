package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"
)

// ErrDelivery оборачивает любую ошибку отправки уведомления
var ErrDelivery = errors.New("notification delivery failed")

// Welcome - данные приветственного письма новому сотруднику
type Welcome struct {
	To                  string
	Username            string
	TemporaryCredential string
	FirstName           string
	EmployeeName        string
	HireDate            time.Time
	PositionTitle       string
}

// Notifier отправляет уведомления сотрудникам
type Notifier interface {
	SendWelcome(ctx context.Context, msg Welcome) error
}

var welcomeBody = template.Must(template.New("welcome").Parse(`¡Hola {{.FirstName}}!

Bienvenido a {{.Company}}. Tu cuenta ha sido creada exitosamente.

Detalles de acceso:
- Usuario: {{.Username}}
- Contraseña temporal: {{.TemporaryCredential}}
- Correo: {{.To}}

Fecha de ingreso: {{.HireDate.Format "02/01/2006"}}
Puesto: {{.PositionTitle}}

Por favor, ingresa al sistema y cambia tu contraseña en tu primer acceso.

Si tienes alguna pregunta, no dudes en contactar a Recursos Humanos.

¡Bienvenido al equipo!

Equipo de Recursos Humanos
{{.Company}}
`))

// RenderWelcome формирует тему и текст письма
func RenderWelcome(company string, msg Welcome) (subject, body string, err error) {
	position := msg.PositionTitle
	if position == "" {
		position = "Sin asignar"
	}

	var buf bytes.Buffer
	err = welcomeBody.Execute(&buf, struct {
		Welcome
		Company       string
		PositionTitle string
	}{msg, company, position})
	if err != nil {
		return "", "", fmt.Errorf("render welcome: %w", err)
	}

	subject = fmt.Sprintf("Bienvenido a %s - %s", company, msg.FirstName)
	return subject, buf.String(), nil
}
