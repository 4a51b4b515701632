package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onboarding-api/internal/database"
	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/notification"
	"github.com/onboarding-api/internal/repository"
	"github.com/onboarding-api/internal/service"
	"github.com/onboarding-api/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Welcome
	err  error
}

func (n *recordingNotifier) SendWelcome(_ context.Context, msg notification.Welcome) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	if n.err != nil {
		return fmt.Errorf("%w: %v", notification.ErrDelivery, n.err)
	}
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type env struct {
	db       *gorm.DB
	clock    *clock
	notifier *recordingNotifier

	accounts  repository.AccountRepository
	employees repository.EmployeeRepository
	tasks     repository.TaskRepository
	documents repository.DocumentRepository

	depts     service.DepartmentService
	positions service.PositionService
	emps      service.EmployeeService
	taskSvc   service.TaskService
	docSvc    service.DocumentService
	dashboard service.DashboardService

	hr  domain.Actor
	it  domain.Actor
	emp domain.Actor
}

func setup(t *testing.T) *env {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	e := &env{
		db:        db,
		clock:     &clock{now: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)},
		notifier:  &recordingNotifier{},
		accounts:  repository.NewAccountRepository(db),
		employees: repository.NewEmployeeRepository(db),
		tasks:     repository.NewTaskRepository(db),
		documents: repository.NewDocumentRepository(db),
	}

	tx := repository.NewTxManager(db)
	deptRepo := repository.NewDepartmentRepository(db)
	posRepo := repository.NewPositionRepository(db)
	opts := []service.Option{
		service.WithClock(e.clock.Now),
		service.WithPasswordCost(bcrypt.MinCost),
	}

	e.depts = service.NewDepartmentService(deptRepo)
	e.positions = service.NewPositionService(posRepo, deptRepo)
	e.emps = service.NewEmployeeService(tx, e.accounts, e.employees, posRepo, e.tasks, e.documents, e.notifier, opts...)
	e.taskSvc = service.NewTaskService(tx, e.tasks, e.employees, e.accounts, opts...)
	e.docSvc = service.NewDocumentService(tx, e.documents, e.employees, storage.NewLocalStore(t.TempDir()), opts...)
	e.dashboard = service.NewDashboardService(e.employees, e.tasks, e.documents, opts...)

	ctx := context.Background()
	for _, acc := range []*domain.Account{
		{Username: "hr.lead", Email: "hr@example.com", FirstName: "Helena", LastName: "Ruiz", Role: domain.RoleHR},
		{Username: "it.lead", Email: "it@example.com", FirstName: "Ivan", LastName: "Torres", Role: domain.RoleIT},
	} {
		require.NoError(t, e.accounts.Create(ctx, acc))
		switch acc.Role {
		case domain.RoleHR:
			e.hr = domain.Actor{AccountID: acc.ID, Role: acc.Role}
		case domain.RoleIT:
			e.it = domain.Actor{AccountID: acc.ID, Role: acc.Role}
		}
	}
	e.emp = domain.Actor{AccountID: 999, Role: domain.RoleEmployee}
	return e
}

func newHire(username string) *dto.CreateEmployeeRequest {
	return &dto.CreateEmployeeRequest{
		Username:       username,
		Email:          username + "@example.com",
		FirstName:      "Laura",
		LastName:       "Gomez",
		IdentityNumber: "CI-" + username,
		Phone:          "555-0101",
		BirthDate:      "1994-03-12",
		HireDate:       "2025-06-10",
	}
}

func (e *env) register(t *testing.T, username string) *domain.Employee {
	t.Helper()
	reg, err := e.emps.Register(context.Background(), e.hr, newHire(username))
	require.NoError(t, err)
	return reg.Employee
}

func strPtr(s string) *string { return &s }

func TestRegister_SeedsTemplateAndSendsWelcome(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	reg, err := e.emps.Register(ctx, e.hr, newHire("laura"))
	require.NoError(t, err)
	assert.Empty(t, reg.Warning)

	emp := reg.Employee
	assert.Equal(t, domain.EmployeePreEntry, emp.State)
	assert.Equal(t, 0, emp.Progress)
	require.NotNil(t, emp.CreatedByID)
	assert.Equal(t, e.hr.AccountID, *emp.CreatedByID)

	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 10)
	byTitle := make(map[string]domain.Task, len(tasks))
	for i, task := range tasks {
		assert.True(t, task.AutoGenerated)
		assert.Equal(t, domain.TaskPending, task.State)
		assert.Equal(t, i+1, task.OrderIndex)
		byTitle[task.Title] = task
	}

	contract, ok := byTitle["Firmar contrato de trabajo"]
	require.True(t, ok)
	assert.Equal(t, 4, contract.OrderIndex)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), domain.DateOf(contract.DueDate))
	assert.Equal(t, "Asignación de supervisor y equipo", tasks[7].Title)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), domain.DateOf(tasks[7].DueDate))

	require.Equal(t, 1, e.notifier.count())
	msg := e.notifier.sent[0]
	assert.Equal(t, "laura@example.com", msg.To)
	assert.Equal(t, "laura", msg.Username)
	assert.NotContains(t, msg.TemporaryCredential, "+")
	assert.NotContains(t, msg.TemporaryCredential, "/")
	assert.GreaterOrEqual(t, len(msg.TemporaryCredential), 16)

	acc, err := e.accounts.GetByID(ctx, emp.AccountID)
	require.NoError(t, err)
	assert.NotEqual(t, msg.TemporaryCredential, acc.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(msg.TemporaryCredential)))
}

func TestRegister_DeliveryFailureKeepsEmployee(t *testing.T) {
	e := setup(t)
	e.notifier.err = errors.New("connection refused")
	ctx := context.Background()

	reg, err := e.emps.Register(ctx, e.hr, newHire("mario"))
	require.NoError(t, err)
	assert.Equal(t, service.WelcomeNotSentWarning, reg.Warning)

	stored, err := e.employees.GetByID(ctx, reg.Employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "mario", stored.Account.Username)

	total, _, err := e.tasks.CountForEmployee(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestRegister_ValidationWritesNothing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.register(t, "laura")

	dup := newHire("laura")
	dup.IdentityNumber = "CI-other"
	_, err := e.emps.Register(ctx, e.hr, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	dup = newHire("other")
	dup.Email = "LAURA@example.com"
	_, err = e.emps.Register(ctx, e.hr, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	dup = newHire("other")
	dup.IdentityNumber = "CI-laura"
	_, err = e.emps.Register(ctx, e.hr, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentityNumber)

	missing := int64(404)
	bad := newHire("other")
	bad.PositionID = &missing
	_, err = e.emps.Register(ctx, e.hr, bad)
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)

	bad = newHire("other")
	bad.SupervisorID = &missing
	_, err = e.emps.Register(ctx, e.hr, bad)
	assert.ErrorIs(t, err, domain.ErrSupervisorNotFound)

	count, err := e.employees.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, e.notifier.count())
}

func TestRegister_RequiresHR(t *testing.T) {
	e := setup(t)

	_, err := e.emps.Register(context.Background(), e.it, newHire("laura"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, e.notifier.count())
}

func TestUpdateEmployee_DoesNotReseedOrNotify(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	updated, err := e.emps.Update(ctx, e.hr, emp.ID, &dto.UpdateEmployeeRequest{
		FirstName: strPtr("Lauren"),
		Phone:     strPtr("555-0199"),
		State:     strPtr(string(domain.EmployeeInProgress)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lauren", updated.Account.FirstName)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, domain.EmployeeInProgress, updated.State)

	total, _, err := e.tasks.CountForEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	assert.Equal(t, 1, e.notifier.count())
}

func TestUpdateEmployee_UniquenessExcludesSelf(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	laura := e.register(t, "laura")
	e.register(t, "mario")

	_, err := e.emps.Update(ctx, e.hr, laura.ID, &dto.UpdateEmployeeRequest{Username: strPtr("laura")})
	assert.NoError(t, err)

	_, err = e.emps.Update(ctx, e.hr, laura.ID, &dto.UpdateEmployeeRequest{Username: strPtr("mario")})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestProgress_FollowsCompletedTasks(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)

	for i, task := range tasks {
		_, err := e.taskSvc.Update(ctx, e.it, task.ID, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskCompleted))})
		require.NoError(t, err)

		stored, err := e.employees.GetByID(ctx, emp.ID)
		require.NoError(t, err)
		assert.Equal(t, (i+1)*10, stored.Progress)
	}

	_, err = e.taskSvc.Update(ctx, e.it, tasks[0].ID, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskCancelled))})
	require.NoError(t, err)
	stored, err := e.employees.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.Progress)
}

func TestUpdateTask_StampsOnce(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	id := tasks[0].ID

	started, err := e.taskSvc.Update(ctx, e.it, id, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskInProgress))})
	require.NoError(t, err)
	require.NotNil(t, started.StartDate)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), domain.DateOf(*started.StartDate))
	assert.Nil(t, started.CompletionDate)

	e.clock.Set(time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC))
	done, err := e.taskSvc.Update(ctx, e.it, id, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskCompleted))})
	require.NoError(t, err)
	require.NotNil(t, done.CompletionDate)
	require.NotNil(t, done.CompletedByID)
	assert.Equal(t, e.it.AccountID, *done.CompletedByID)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), domain.DateOf(*done.CompletionDate))

	// повторное завершение не меняет дату и исполнителя
	e.clock.Set(time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC))
	_, err = e.taskSvc.Update(ctx, e.hr, id, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskPending))})
	require.NoError(t, err)
	again, err := e.taskSvc.Update(ctx, e.hr, id, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskCompleted))})
	require.NoError(t, err)

	stored, err := e.tasks.GetByID(ctx, again.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), domain.DateOf(*stored.CompletionDate))
	assert.Equal(t, e.it.AccountID, *stored.CompletedByID)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), domain.DateOf(*stored.StartDate))
}

func TestUpdateTask_ManagedFieldsRequireHR(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")
	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)

	_, err = e.taskSvc.Update(ctx, e.it, tasks[0].ID, &dto.UpdateTaskRequest{Priority: strPtr(string(domain.PriorityLow))})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.taskSvc.Update(ctx, e.emp, tasks[0].ID, &dto.UpdateTaskRequest{Notes: strPtr("listo")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := e.taskSvc.Update(ctx, e.hr, tasks[0].ID, &dto.UpdateTaskRequest{Priority: strPtr(string(domain.PriorityLow))})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, updated.Priority)
}

func TestCreateTask_ManualTaskLowersProgress(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	updated, err := e.taskSvc.BulkSetState(ctx, e.hr, ids, domain.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated)

	stored, err := e.employees.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Progress)

	task, err := e.taskSvc.Create(ctx, e.hr, emp.ID, &dto.CreateTaskRequest{
		Title:       "Curso de seguridad",
		Description: "Completar el curso obligatorio",
		Responsible: string(domain.ResponsibleEmployee),
		DueDate:     "2025-06-20",
	})
	require.NoError(t, err)
	assert.False(t, task.AutoGenerated)
	assert.Equal(t, domain.PriorityMedium, task.Priority)

	stored, err = e.employees.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.Progress)
}

func TestBulkSetState_StampsLikeSingleUpdate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")
	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)

	_, err = e.taskSvc.BulkSetState(ctx, e.it, []int64{tasks[0].ID, tasks[1].ID, tasks[0].ID}, domain.TaskInProgress)
	require.NoError(t, err)

	for _, id := range []int64{tasks[0].ID, tasks[1].ID} {
		stored, err := e.tasks.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskInProgress, stored.State)
		require.NotNil(t, stored.StartDate)
	}

	_, err = e.taskSvc.BulkSetState(ctx, e.it, nil, domain.TaskCompleted)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	_, err = e.taskSvc.BulkSetState(ctx, e.it, []int64{tasks[0].ID}, domain.TaskState("done"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBulkEscalate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")
	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)

	_, err = e.taskSvc.Update(ctx, e.hr, tasks[0].ID, &dto.UpdateTaskRequest{Priority: strPtr(string(domain.PriorityLow))})
	require.NoError(t, err)
	_, err = e.taskSvc.Update(ctx, e.hr, tasks[1].ID, &dto.UpdateTaskRequest{Priority: strPtr(string(domain.PriorityUrgent))})
	require.NoError(t, err)

	updated, err := e.taskSvc.BulkEscalate(ctx, e.hr, []int64{tasks[0].ID, tasks[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	first, err := e.tasks.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, first.Priority)

	second, err := e.tasks.GetByID(ctx, tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUrgent, second.Priority)

	_, err = e.taskSvc.BulkEscalate(ctx, e.it, []int64{tasks[0].ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPosition_InvalidSalaryRangePersistsNothing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	dept, err := e.depts.Create(ctx, e.hr, &dto.CreateDepartmentRequest{Name: "Tecnología"})
	require.NoError(t, err)

	lo, hi := decimal.NewFromInt(5000), decimal.NewFromInt(3000)
	_, err = e.positions.Create(ctx, e.hr, &dto.CreatePositionRequest{
		Title:        "Desarrollador",
		DepartmentID: dept.ID,
		SalaryMin:    &lo,
		SalaryMax:    &hi,
	})
	assert.ErrorIs(t, err, domain.ErrSalaryRange)
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := e.positions.List(ctx, repository.PositionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	pos, err := e.positions.Create(ctx, e.hr, &dto.CreatePositionRequest{Title: "Desarrollador", DepartmentID: dept.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelJunior, pos.Level)
	assert.True(t, pos.Active)

	_, err = e.positions.Update(ctx, e.hr, pos.ID, &dto.UpdatePositionRequest{SalaryMin: &lo, SalaryMax: &hi})
	assert.ErrorIs(t, err, domain.ErrSalaryRange)

	_, err = e.positions.Create(ctx, e.hr, &dto.CreatePositionRequest{Title: "Desarrollador", DepartmentID: dept.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicatePosition)
}

func TestDepartmentDelete_BlockedByPositions(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	dept, err := e.depts.Create(ctx, e.hr, &dto.CreateDepartmentRequest{Name: "Finanzas"})
	require.NoError(t, err)
	pos, err := e.positions.Create(ctx, e.hr, &dto.CreatePositionRequest{Title: "Contador", DepartmentID: dept.ID})
	require.NoError(t, err)

	hire := newHire("laura")
	hire.PositionID = &pos.ID
	reg, err := e.emps.Register(ctx, e.hr, hire)
	require.NoError(t, err)
	assert.Equal(t, "Contador", e.notifier.sent[0].PositionTitle)

	err = e.depts.Delete(ctx, e.hr, dept.ID)
	assert.ErrorIs(t, err, domain.ErrDepartmentHasPositions)
	assert.ErrorIs(t, err, domain.ErrReferential)

	require.NoError(t, e.positions.Delete(ctx, e.hr, pos.ID))
	emp, err := e.employees.GetByID(ctx, reg.Employee.ID)
	require.NoError(t, err)
	assert.Nil(t, emp.PositionID)

	require.NoError(t, e.depts.Delete(ctx, e.hr, dept.ID))
	_, err = e.depts.GetByID(ctx, dept.ID)
	assert.ErrorIs(t, err, domain.ErrDepartmentNotFound)
}

func TestDepartment_DuplicateNameAndPermissions(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.depts.Create(ctx, e.hr, &dto.CreateDepartmentRequest{Name: "Legal"})
	require.NoError(t, err)

	_, err = e.depts.Create(ctx, e.hr, &dto.CreateDepartmentRequest{Name: " Legal "})
	assert.ErrorIs(t, err, domain.ErrDuplicateDepartmentName)

	_, err = e.depts.Create(ctx, e.it, &dto.CreateDepartmentRequest{Name: "Soporte"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteEmployee_CascadesTasksAndDocuments(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	_, err := e.docSvc.Upload(ctx, e.hr, emp.ID, &dto.UploadDocumentRequest{Type: "identity", Name: "Cédula"}, "cedula.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	require.NoError(t, e.emps.Delete(ctx, e.hr, emp.ID))

	_, err = e.employees.GetByID(ctx, emp.ID)
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	total, _, err := e.tasks.CountForEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
	docs, err := e.documents.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUploadDocument_MandatoryRequiresHR(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	req := &dto.UploadDocumentRequest{Type: "contract", Name: "Contrato", Mandatory: true}
	_, err := e.docSvc.Upload(ctx, e.emp, emp.ID, req, "contrato.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, domain.ErrMandatoryRequiresHR)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	docs, err := e.documents.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	doc, err := e.docSvc.Upload(ctx, e.hr, emp.ID, req, "contrato.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.True(t, doc.Mandatory)
	assert.Equal(t, domain.DocumentPending, doc.State)
	assert.True(t, strings.HasSuffix(doc.FileRef, ".pdf"))

	_, rc, err := e.docSvc.Open(ctx, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(content))
}

func TestReviewDocument(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	doc, err := e.docSvc.Upload(ctx, e.emp, emp.ID, &dto.UploadDocumentRequest{Type: "degree", Name: "Título"}, "titulo.png", strings.NewReader("png"))
	require.NoError(t, err)

	reviewed, err := e.docSvc.Review(ctx, e.hr, doc.ID, &dto.ReviewDocumentRequest{State: "in_review"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentInReview, reviewed.State)
	assert.Nil(t, reviewed.ReviewerID)
	assert.Nil(t, reviewed.ReviewedAt)

	reviewed, err = e.docSvc.Review(ctx, e.hr, doc.ID, &dto.ReviewDocumentRequest{State: "rejected", Comments: strPtr("ilegible")})
	require.NoError(t, err)
	require.NotNil(t, reviewed.ReviewerID)
	assert.Equal(t, e.hr.AccountID, *reviewed.ReviewerID)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, "ilegible", reviewed.Comments)

	_, err = e.docSvc.Review(ctx, e.hr, doc.ID, &dto.ReviewDocumentRequest{State: "pending"})
	assert.ErrorIs(t, err, domain.ErrInvalidReviewResult)

	_, err = e.docSvc.Review(ctx, e.it, doc.ID, &dto.ReviewDocumentRequest{State: "approved"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBulkReview(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	var ids []int64
	for _, name := range []string{"a.pdf", "b.pdf"} {
		doc, err := e.docSvc.Upload(ctx, e.hr, emp.ID, &dto.UploadDocumentRequest{Type: "other", Name: name}, name, strings.NewReader(name))
		require.NoError(t, err)
		ids = append(ids, doc.ID)
	}

	_, err := e.docSvc.BulkReview(ctx, e.hr, ids, domain.DocumentPending)
	assert.ErrorIs(t, err, domain.ErrInvalidReviewResult)

	updated, err := e.docSvc.BulkReview(ctx, e.hr, ids, domain.DocumentApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	open, err := e.documents.CountByStates(ctx, domain.DocumentPending, domain.DocumentInReview)
	require.NoError(t, err)
	assert.Zero(t, open)
}

func TestBulkEmployeeOperations(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	laura := e.register(t, "laura")
	mario := e.register(t, "mario")

	updated, err := e.emps.BulkSetState(ctx, e.hr, []int64{laura.ID, mario.ID}, domain.EmployeeInProgress)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// прогресс, испорченный в обход сервиса, восстанавливается пересчётом
	require.NoError(t, e.employees.UpdateProgress(ctx, laura.ID, 77))
	refreshed, err := e.emps.BulkRefreshProgress(ctx, e.hr, []int64{laura.ID, 12345})
	require.NoError(t, err)
	assert.Equal(t, int64(1), refreshed)

	stored, err := e.employees.GetByID(ctx, laura.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Progress)
	assert.Equal(t, domain.EmployeeInProgress, stored.State)
}

func TestGetDetail(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")

	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	_, err = e.taskSvc.Update(ctx, e.it, tasks[0].ID, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskCompleted))})
	require.NoError(t, err)
	_, err = e.taskSvc.Update(ctx, e.it, tasks[1].ID, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskBlocked))})
	require.NoError(t, err)

	detail, err := e.emps.GetDetail(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Tasks, 10)
	assert.Equal(t, 10, detail.Progress)
	assert.Equal(t, int64(1), detail.TasksByState[domain.TaskCompleted])
	assert.Equal(t, int64(1), detail.TasksByState[domain.TaskBlocked])
	assert.Equal(t, int64(8), detail.TasksByState[domain.TaskPending])
}

func TestDashboardAndKanban(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	laura := e.register(t, "laura")
	e.register(t, "mario")

	_, err := e.emps.Update(ctx, e.hr, laura.ID, &dto.UpdateEmployeeRequest{State: strPtr(string(domain.EmployeeInProgress))})
	require.NoError(t, err)
	_, err = e.docSvc.Upload(ctx, e.hr, laura.ID, &dto.UploadDocumentRequest{Type: "nda", Name: "NDA"}, "nda.pdf", strings.NewReader("nda"))
	require.NoError(t, err)

	e.clock.Set(time.Now().UTC())
	d, err := e.dashboard.Dashboard(ctx, e.hr)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalEmployees)
	assert.Equal(t, int64(2), d.EmployeesThisMonth)
	assert.Equal(t, int64(20), d.OpenTasks)
	assert.Equal(t, int64(1), d.OpenDocuments)
	assert.Len(t, d.RecentEmployees, 2)
	assert.Len(t, d.PendingDocuments, 1)
	require.Len(t, d.MonthlyHires, 6)
	assert.Equal(t, int64(2), d.MonthlyHires[5].Total)
	assert.LessOrEqual(t, len(d.TasksDueSoon), 10)

	board, err := e.dashboard.Kanban(ctx, e.hr)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, domain.EmployeePreEntry, board[0].State)
	assert.Len(t, board[0].Employees, 1)
	assert.Len(t, board[1].Employees, 1)
	assert.Empty(t, board[2].Employees)

	_, err = e.dashboard.Dashboard(ctx, e.emp)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBlankRequiredFieldsAreRejected(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.depts.Create(ctx, e.hr, &dto.CreateDepartmentRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	depts, err := e.depts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, depts)

	dept, err := e.depts.Create(ctx, e.hr, &dto.CreateDepartmentRequest{Name: " Legal "})
	require.NoError(t, err)
	assert.Equal(t, "Legal", dept.Name)
	_, err = e.depts.Update(ctx, e.hr, dept.ID, &dto.UpdateDepartmentRequest{Name: strPtr("\t ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.positions.Create(ctx, e.hr, &dto.CreatePositionRequest{Title: "  ", DepartmentID: dept.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	positions, err := e.positions.List(ctx, repository.PositionFilter{})
	require.NoError(t, err)
	assert.Empty(t, positions)

	hires := map[string]func(*dto.CreateEmployeeRequest){
		"username":           func(r *dto.CreateEmployeeRequest) { r.Username = "   " },
		"first name":         func(r *dto.CreateEmployeeRequest) { r.FirstName = "  " },
		"last name":          func(r *dto.CreateEmployeeRequest) { r.LastName = "\t" },
		"identity number":    func(r *dto.CreateEmployeeRequest) { r.IdentityNumber = "  " },
		"phone":              func(r *dto.CreateEmployeeRequest) { r.Phone = " " },
		"line break in name": func(r *dto.CreateEmployeeRequest) { r.FirstName = "Ana\r\nBcc: attacker@evil.test" },
	}
	for name, mutate := range hires {
		t.Run(name, func(t *testing.T) {
			req := newHire("blank")
			mutate(req)
			_, err := e.emps.Register(ctx, e.hr, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	count, err := e.employees.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, e.notifier.count())

	emp := e.register(t, "laura")
	_, err = e.emps.Update(ctx, e.hr, emp.ID, &dto.UpdateEmployeeRequest{Username: strPtr("   ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.emps.Update(ctx, e.hr, emp.ID, &dto.UpdateEmployeeRequest{IdentityNumber: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	stored, err := e.employees.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "laura", stored.Account.Username)
	assert.Equal(t, "CI-laura", stored.IdentityNumber)

	_, err = e.taskSvc.Create(ctx, e.hr, emp.ID, &dto.CreateTaskRequest{
		Title:       "  ",
		Description: "Completar el curso obligatorio",
		Responsible: string(domain.ResponsibleEmployee),
		DueDate:     "2025-06-20",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	total, _, err := e.tasks.CountForEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestUpdateTask_ConcurrentCompletionStampsOnce(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	emp := e.register(t, "laura")
	tasks, err := e.tasks.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	id := tasks[0].ID

	actors := []domain.Actor{e.hr, e.it}
	results := make([]*domain.Task, len(actors))
	var wg sync.WaitGroup
	for i, actor := range actors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := e.taskSvc.Update(ctx, actor, id, &dto.UpdateTaskRequest{State: strPtr(string(domain.TaskCompleted))})
			assert.NoError(t, err)
			results[i] = task
		}()
	}
	wg.Wait()

	stored, err := e.tasks.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedByID)
	for _, task := range results {
		require.NotNil(t, task)
		require.NotNil(t, task.CompletedByID)
		assert.Equal(t, *stored.CompletedByID, *task.CompletedByID)
	}
}

type reloadFailingEmployees struct {
	repository.EmployeeRepository
}

func (reloadFailingEmployees) GetByID(context.Context, int64) (*domain.Employee, error) {
	return nil, errors.New("connection reset by peer")
}

func TestRegister_ReloadFailureStillWelcomes(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	emps := service.NewEmployeeService(
		repository.NewTxManager(e.db),
		e.accounts,
		reloadFailingEmployees{e.employees},
		repository.NewPositionRepository(e.db),
		e.tasks,
		e.documents,
		e.notifier,
		service.WithPasswordCost(bcrypt.MinCost),
		service.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)

	reg, err := emps.Register(ctx, e.hr, newHire("laura"))
	require.NoError(t, err)
	assert.Empty(t, reg.Warning)
	require.NotNil(t, reg.Employee.Account)
	assert.Equal(t, "laura", reg.Employee.Account.Username)

	require.Equal(t, 1, e.notifier.count())
	assert.Equal(t, "laura@example.com", e.notifier.sent[0].To)
	assert.Equal(t, "Laura", e.notifier.sent[0].FirstName)

	total, _, err := e.tasks.CountForEmployee(ctx, reg.Employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}
