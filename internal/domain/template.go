package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed templates/onboarding_tasks.yaml
var defaultTemplateYAML []byte

// TaskTemplate - версионированный список задач, создаваемых для нового сотрудника
type TaskTemplate struct {
	Version string          `yaml:"version"`
	Tasks   []TemplateEntry `yaml:"tasks"`
}

// TemplateEntry описывает одну задачу шаблона
type TemplateEntry struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Responsible Responsible `yaml:"responsible"`
	Priority    Priority    `yaml:"priority"`
	DaysBefore  int         `yaml:"days_before"`
	Order       int         `yaml:"order"`
}

// DefaultTaskTemplate возвращает встроенный шаблон
func DefaultTaskTemplate() *TaskTemplate {
	tpl, err := LoadTaskTemplate(bytes.NewReader(defaultTemplateYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded task template: %v", err))
	}
	return tpl
}

// LoadTaskTemplate читает и проверяет шаблон в формате YAML
func LoadTaskTemplate(r io.Reader) (*TaskTemplate, error) {
	var tpl TaskTemplate
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Validate проверяет каждую запись шаблона
func (t *TaskTemplate) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidTemplate)
	}
	if len(t.Tasks) == 0 {
		return fmt.Errorf("%w: no tasks", ErrInvalidTemplate)
	}
	for i, e := range t.Tasks {
		switch {
		case strings.TrimSpace(e.Title) == "":
			return fmt.Errorf("%w: task %d has no title", ErrInvalidTemplate, i+1)
		case !e.Responsible.Valid():
			return fmt.Errorf("%w: task %q has unknown responsible %q", ErrInvalidTemplate, e.Title, e.Responsible)
		case !e.Priority.Valid():
			return fmt.Errorf("%w: task %q has unknown priority %q", ErrInvalidTemplate, e.Title, e.Priority)
		case e.DaysBefore < 0:
			return fmt.Errorf("%w: task %q has negative days_before", ErrInvalidTemplate, e.Title)
		}
	}
	return nil
}

// Expand создаёт задачи шаблона для сотрудника с датой выхода hireDate.
// Срок задачи - hireDate минус days_before; прошедшие сроки не корректируются.
func (t *TaskTemplate) Expand(employeeID int64, hireDate time.Time) []Task {
	base := DateOf(hireDate)
	tasks := make([]Task, 0, len(t.Tasks))
	for _, e := range t.Tasks {
		due := base
		if e.DaysBefore > 0 {
			due = base.AddDate(0, 0, -e.DaysBefore)
		}
		tasks = append(tasks, Task{
			EmployeeID:    employeeID,
			Title:         e.Title,
			Description:   e.Description,
			Responsible:   e.Responsible,
			Priority:      e.Priority,
			DueDate:       due,
			State:         TaskPending,
			AutoGenerated: true,
			OrderIndex:    e.Order,
		})
	}
	return tasks
}
