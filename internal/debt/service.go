package debt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

// Store is the persistence boundary the service works against. All
// operations are asynchronous from the caller's point of view and any
// failure propagates to the caller unmodified.
type Store interface {
	List(ctx context.Context) ([]entity.Debt, error)
	Get(ctx context.Context, id string) (*entity.Debt, error)
	Create(ctx context.Context, d *entity.Debt) error
	Update(ctx context.Context, d *entity.Debt) error
	Delete(ctx context.Context, id string) error

	// InTransaction runs fn with a context whose store operations are
	// scoped to one transaction. Submit uses it to make the open-entry
	// lookup and the resulting write atomic against concurrent
	// submissions for the same name.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher receives the full collection after every successful mutation.
type Publisher interface {
	Publish(debts []entity.Debt)
}

// Service owns the submit/edit/delete flows of the ledger.
type Service struct {
	store     Store
	validator *Validator
	publisher Publisher
	logger    *zap.Logger
}

// NewService creates a debt service.
func NewService(store Store, validator *Validator, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// ListResult is the collection plus the running total of open debt.
type ListResult struct {
	Items            []entity.Debt
	TotalOutstanding int64
}

// List returns all entries (newest date first, as stored) and the
// outstanding total.
func (s *Service) List(ctx context.Context) (*ListResult, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:            items,
		TotalOutstanding: entity.OutstandingTotal(items),
	}, nil
}

// SubmitResult reports what the reconciler did with a submission.
type SubmitResult struct {
	Debt        entity.Debt
	Merged      bool
	PhotoErrors []error // per-photo rejections; the submission itself succeeded
}

// Submit runs the add path: validate, find an open entry for the name,
// and either create a new entry or merge into the match. Lookup and write
// happen inside one transaction.
func (s *Service) Submit(ctx context.Context, form Form) (*SubmitResult, error) {
	draft, photoErrs, err := s.validator.Validate(form)
	if err != nil {
		return nil, err
	}

	var result SubmitResult
	result.PhotoErrors = photoErrs

	err = s.store.InTransaction(ctx, func(txCtx context.Context) error {
		collection, err := s.store.List(txCtx)
		if err != nil {
			return err
		}

		outcome := Reconcile(draft, collection)
		switch outcome.Action {
		case ActionCreate:
			if err := s.store.Create(txCtx, &outcome.Debt); err != nil {
				return err
			}
		case ActionMerge:
			result.Merged = true
			if err := s.store.Update(txCtx, &outcome.Debt); err != nil {
				return err
			}
		}
		result.Debt = outcome.Debt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Debt submitted",
		zap.String("id", result.Debt.ID),
		zap.String("nama", result.Debt.Name),
		zap.Int64("nominal", result.Debt.Amount),
		zap.String("status", string(result.Debt.Status)),
		zap.Bool("merged", result.Merged))

	s.broadcast(ctx)
	return &result, nil
}

// Edit is the direct-edit path: the selected entry is overwritten with
// the submitted fields wholesale. No merge arithmetic applies here.
func (s *Service) Edit(ctx context.Context, id string, form Form) (*SubmitResult, error) {
	draft, photoErrs, err := s.validator.Validate(form)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = draft.Name
	updated.Date = draft.Date
	updated.Amount = draft.Amount
	updated.Status = draft.Status
	updated.Description = draft.Description
	updated.Photos = draft.Photos

	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("Debt edited", zap.String("id", id), zap.String("nama", updated.Name))
	s.broadcast(ctx)
	return &SubmitResult{Debt: updated, PhotoErrors: photoErrs}, nil
}

// Remove deletes an entry. Entries are only ever destroyed this way;
// there is no automatic expiry.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Debt deleted", zap.String("id", id))
	s.broadcast(ctx)
	return nil
}

// broadcast pushes a fresh snapshot to stream subscribers. A failed
// re-read is logged and dropped; subscribers pick the state up on the
// next successful mutation.
func (s *Service) broadcast(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	items, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("Failed to load snapshot for stream", zap.Error(err))
		return
	}
	s.publisher.Publish(items)
}

// Snapshot returns the current collection for a newly connected stream
// subscriber.
func (s *Service) Snapshot(ctx context.Context) ([]entity.Debt, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return items, nil
}
