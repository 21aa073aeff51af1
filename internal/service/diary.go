package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"diarykeeper/internal/config"
	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"
	"diarykeeper/internal/domain/services"
)

// maxIDLength bounds client-supplied entry ids.
const maxIDLength = 128

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// diaryService implements the DiaryService interface
type diaryService struct {
	repo   repositories.DiaryRepository
	locks  repositories.LockManager
	now    Clock
	logger *slog.Logger
}

// NewDiaryService creates a new diary service
func NewDiaryService(
	repo repositories.DiaryRepository,
	locks repositories.LockManager,
	now Clock,
	logger *slog.Logger,
) services.DiaryService {
	if now == nil {
		now = time.Now
	}
	return &diaryService{
		repo:   repo,
		locks:  locks,
		now:    now,
		logger: logger,
	}
}

// SaveDiary replaces the active entry with the request's id in place, or
// appends a new entry.
func (s *diaryService) SaveDiary(ctx context.Context, req *models.SaveDiaryRequest) (*models.DiaryEntry, error) {
	if err := validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	id := req.ID
	if id == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate entry id: %w", err)
		}
		id = generated.String()
	}

	title := req.Title
	if title == "" {
		title = models.UntitledTitle
	}

	entry := models.DiaryEntry{
		ID:        id,
		Date:      req.Date,
		Title:     title,
		Content:   req.Content,
		UpdatedAt: s.timestamp(),
	}

	replaced := false
	err := s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		active, err := s.repo.Load(ctx, repositories.KindDiaries)
		if err != nil {
			return err
		}

		if req.ID != "" {
			trash, err := s.repo.Load(ctx, repositories.KindTrash)
			if err != nil {
				return err
			}
			if trash.IndexOf(req.ID) >= 0 {
				return &domain.ConflictError{
					Message:    fmt.Sprintf("entry %s is in the trash; restore it before editing", req.ID),
					Collection: string(repositories.KindTrash),
					EntryID:    req.ID,
				}
			}
		}

		if i := active.IndexOf(id); i >= 0 {
			active.Diaries[i] = entry
			replaced = true
		} else {
			active.Diaries = append(active.Diaries, entry)
		}
		return s.repo.Save(ctx, repositories.KindDiaries, active)
	}, repositories.KindDiaries, repositories.KindTrash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("diary saved",
		"id", entry.ID,
		"date", entry.Date,
		"replaced", replaced,
		"content_bytes", len(entry.Content),
	)

	return &entry, nil
}

// ListDiaries returns the active collection
func (s *diaryService) ListDiaries(ctx context.Context) ([]models.DiaryEntry, error) {
	active, err := s.repo.Load(ctx, repositories.KindDiaries)
	if err != nil {
		return nil, err
	}
	return active.Diaries, nil
}

// LoadDiary returns nil, nil when no active entry has id
func (s *diaryService) LoadDiary(ctx context.Context, id string) (*models.DiaryEntry, error) {
	active, err := s.repo.Load(ctx, repositories.KindDiaries)
	if err != nil {
		return nil, err
	}

	entry, ok := active.Find(id)
	if !ok {
		s.logger.Debug("diary not found", "id", id)
		return nil, nil
	}
	return entry, nil
}

// DeleteDiary removes an active entry permanently
func (s *diaryService) DeleteDiary(ctx context.Context, id string) error {
	return s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		active, err := s.repo.Load(ctx, repositories.KindDiaries)
		if err != nil {
			return err
		}

		if _, ok := active.Remove(id); !ok {
			s.logger.Debug("delete diary: not found", "id", id)
			return nil
		}
		if err := s.repo.Save(ctx, repositories.KindDiaries, active); err != nil {
			return err
		}

		s.logger.Info("diary deleted", "id", id)
		return nil
	}, repositories.KindDiaries)
}

// GetStatistics reads both collections under lock so the counts agree.
// Monthly compares month-of-year only, so the same month in earlier years
// counts too. Entries with unparseable dates are not counted as monthly.
func (s *diaryService) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	err := s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		active, err := s.repo.Load(ctx, repositories.KindDiaries)
		if err != nil {
			return err
		}
		trash, err := s.repo.Load(ctx, repositories.KindTrash)
		if err != nil {
			return err
		}

		month := s.now().Month()
		skipped := 0
		for i := range active.Diaries {
			date, ok := active.Diaries[i].ParsedDate()
			if !ok {
				skipped++
				continue
			}
			if date.Month() == month {
				stats.Monthly++
			}
		}
		if skipped > 0 {
			s.logger.Warn("statistics skipped entries with unparseable dates", "count", skipped)
		}

		stats.Total = len(active.Diaries)
		stats.Trashed = len(trash.Diaries)
		return nil
	}, repositories.KindDiaries, repositories.KindTrash)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MoveToTrash stamps deletedAt and moves the entry into the trash
func (s *diaryService) MoveToTrash(ctx context.Context, id string) error {
	return s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		active, err := s.repo.Load(ctx, repositories.KindDiaries)
		if err != nil {
			return err
		}
		entry, ok := active.Remove(id)
		if !ok {
			s.logger.Debug("move to trash: not found", "id", id)
			return nil
		}

		trash, err := s.repo.Load(ctx, repositories.KindTrash)
		if err != nil {
			return err
		}
		deletedAt := s.timestamp()
		entry.DeletedAt = &deletedAt
		trash.Remove(id)
		trash.Diaries = append(trash.Diaries, entry)

		// Destination first: a failure between the writes duplicates the
		// entry instead of losing it.
		if err := s.repo.Save(ctx, repositories.KindTrash, trash); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, repositories.KindDiaries, active); err != nil {
			return err
		}

		s.logger.Info("diary moved to trash", "id", id)
		return nil
	}, repositories.KindDiaries, repositories.KindTrash)
}

// ListTrash returns the trash collection
func (s *diaryService) ListTrash(ctx context.Context) ([]models.DiaryEntry, error) {
	trash, err := s.repo.Load(ctx, repositories.KindTrash)
	if err != nil {
		return nil, err
	}
	return trash.Diaries, nil
}

// RestoreFromTrash clears deletedAt and appends the entry to the active collection
func (s *diaryService) RestoreFromTrash(ctx context.Context, id string) error {
	return s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		trash, err := s.repo.Load(ctx, repositories.KindTrash)
		if err != nil {
			return err
		}
		entry, ok := trash.Remove(id)
		if !ok {
			s.logger.Debug("restore from trash: not found", "id", id)
			return nil
		}

		active, err := s.repo.Load(ctx, repositories.KindDiaries)
		if err != nil {
			return err
		}
		entry.DeletedAt = nil
		active.Remove(id)
		active.Diaries = append(active.Diaries, entry)

		if err := s.repo.Save(ctx, repositories.KindDiaries, active); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, repositories.KindTrash, trash); err != nil {
			return err
		}

		s.logger.Info("diary restored from trash", "id", id)
		return nil
	}, repositories.KindDiaries, repositories.KindTrash)
}

// PermanentDelete removes an entry from the trash
func (s *diaryService) PermanentDelete(ctx context.Context, id string) error {
	return s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		trash, err := s.repo.Load(ctx, repositories.KindTrash)
		if err != nil {
			return err
		}
		if _, ok := trash.Remove(id); !ok {
			s.logger.Debug("permanent delete: not found", "id", id)
			return nil
		}
		if err := s.repo.Save(ctx, repositories.KindTrash, trash); err != nil {
			return err
		}

		s.logger.Info("diary permanently deleted", "id", id)
		return nil
	}, repositories.KindTrash)
}

// ClearTrash replaces the trash with an empty collection
func (s *diaryService) ClearTrash(ctx context.Context) error {
	return s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		if err := s.repo.Save(ctx, repositories.KindTrash, &models.DiaryCollection{}); err != nil {
			return err
		}
		s.logger.Info("trash cleared")
		return nil
	}, repositories.KindTrash)
}

// timestamp is the current time at the millisecond precision stored on entries.
func (s *diaryService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func validateSaveRequest(req *models.SaveDiaryRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Length(0, maxIDLength)),
		validation.Field(&req.Date,
			validation.Required,
			validation.By(func(value interface{}) error {
				if _, ok := models.ParseEntryDate(value.(string)); !ok {
					return validation.NewError("validation_date_format", "must be a date like 2024-03-01")
				}
				return nil
			}),
		),
		validation.Field(&req.Title, validation.RuneLength(0, config.MaxTitleLength)),
		validation.Field(&req.Content, validation.Length(0, config.MaxContentBytes)),
	)
}
