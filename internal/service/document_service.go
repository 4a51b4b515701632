package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/repository"
	"github.com/onboarding-api/internal/storage"
)

// DocumentService определяет интерфейс бизнес-логики для документов
type DocumentService interface {
	Upload(ctx context.Context, actor domain.Actor, employeeID int64, req *dto.UploadDocumentRequest, filename string, content io.Reader) (*domain.Document, error)
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	Open(ctx context.Context, id int64) (*domain.Document, io.ReadCloser, error)
	List(ctx context.Context, filter repository.DocumentFilter, page repository.Page) ([]domain.Document, int64, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Document, error)
	Review(ctx context.Context, actor domain.Actor, id int64, req *dto.ReviewDocumentRequest) (*domain.Document, error)
	BulkReview(ctx context.Context, actor domain.Actor, ids []int64, outcome domain.DocumentState) (int64, error)
}

type documentService struct {
	tx        repository.TxManager
	documents repository.DocumentRepository
	employees repository.EmployeeRepository
	files     storage.FileStore
	opts      options
}

// NewDocumentService создаёт новый экземпляр сервиса
func NewDocumentService(
	tx repository.TxManager,
	documents repository.DocumentRepository,
	employees repository.EmployeeRepository,
	files storage.FileStore,
	opts ...Option,
) DocumentService {
	return &documentService{
		tx:        tx,
		documents: documents,
		employees: employees,
		files:     files,
		opts:      buildOptions(opts),
	}
}

// Upload сохраняет файл и создаёт документ в статусе pending.
// Обязательным документ может отметить только отдел кадров.
func (s *documentService) Upload(ctx context.Context, actor domain.Actor, employeeID int64, req *dto.UploadDocumentRequest, filename string, content io.Reader) (*domain.Document, error) {
	if err := actor.Require(domain.PermUploadDocuments); err != nil {
		return nil, err
	}
	if req.Mandatory && !actor.IsHR() {
		return nil, domain.ErrMandatoryRequiresHR
	}

	doc := &domain.Document{
		EmployeeID: employeeID,
		Type:       domain.DocumentType(req.Type),
		Name:       strings.TrimSpace(req.Name),
		State:      domain.DocumentPending,
		Mandatory:  req.Mandatory,
	}
	if !doc.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrValidation, doc.Type)
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	key, err := s.files.Save(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	doc.FileRef = key

	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.files.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.opts.logger.Warn("orphaned document file", slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	return s.documents.GetByID(ctx, id)
}

// Open возвращает документ и содержимое его файла; закрыть reader должен вызывающий
func (s *documentService) Open(ctx context.Context, id int64) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, doc.FileRef)
	if err != nil {
		return nil, nil, err
	}
	return doc, rc, nil
}

func (s *documentService) List(ctx context.Context, filter repository.DocumentFilter, page repository.Page) ([]domain.Document, int64, error) {
	return s.documents.List(ctx, filter, page)
}

func (s *documentService) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Document, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.documents.ListByEmployee(ctx, employeeID)
}

// Review записывает решение проверяющего
func (s *documentService) Review(ctx context.Context, actor domain.Actor, id int64, req *dto.ReviewDocumentRequest) (*domain.Document, error) {
	if err := actor.Require(domain.PermApproveDocuments); err != nil {
		return nil, err
	}

	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.ApplyReview(doc, domain.DocumentState(req.State), actor.AccountID, s.opts.now()); err != nil {
		return nil, err
	}
	if req.Comments != nil {
		doc.Comments = strings.TrimSpace(*req.Comments)
	}

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// BulkReview применяет одно решение к нескольким документам
func (s *documentService) BulkReview(ctx context.Context, actor domain.Actor, ids []int64, outcome domain.DocumentState) (int64, error) {
	if err := actor.Require(domain.PermApproveDocuments); err != nil {
		return 0, err
	}
	if err := domain.ApplyReview(&domain.Document{}, outcome, actor.AccountID, s.opts.now()); err != nil {
		return 0, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}

	docs, err := s.documents.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	now := s.opts.now()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range docs {
			if err := domain.ApplyReview(&docs[i], outcome, actor.AccountID, now); err != nil {
				return err
			}
			if err := s.documents.Update(txCtx, &docs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}
