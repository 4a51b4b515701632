package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Option настраивает сервис
type Option func(*options)

type options struct {
	now            func() time.Time
	logger         *slog.Logger
	passwordCost   int
	notifyTimeout  time.Duration
	taskTemplate   *domain.TaskTemplate
	credentialSize int
}

func defaultOptions() options {
	return options{
		now:            time.Now,
		logger:         slog.Default(),
		passwordCost:   bcrypt.DefaultCost,
		notifyTimeout:  10 * time.Second,
		credentialSize: 12,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger задаёт логгер сервиса
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPasswordCost задаёт стоимость bcrypt для временных паролей
func WithPasswordCost(cost int) Option {
	return func(o *options) {
		o.passwordCost = cost
	}
}

// WithNotifyTimeout ограничивает время отправки приветственного письма
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

// WithTaskTemplate задаёт шаблон задач онбординга
func WithTaskTemplate(t *domain.TaskTemplate) Option {
	return func(o *options) {
		o.taskTemplate = t
	}
}

// progressTracker пересчитывает сохранённый прогресс сотрудника
type progressTracker struct {
	tasks     repository.TaskRepository
	employees repository.EmployeeRepository
}

func (p progressTracker) refresh(ctx context.Context, employeeID int64) (int, error) {
	total, completed, err := p.tasks.CountForEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	progress := domain.ComputeProgress(completed, total)
	if err := p.employees.UpdateProgress(ctx, employeeID, progress); err != nil {
		return 0, err
	}
	return progress, nil
}

// newCredential генерирует временный пароль, безопасный для URL
func newCredential(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate credential: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, value)
	}
	return t, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
