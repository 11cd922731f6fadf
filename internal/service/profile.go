package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/validator"
)

var ErrAvatarNotFound = fmt.Errorf("avatar not found: %w", ErrNotFound)

type ObjectStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, int64, string, error)
	Delete(ctx context.Context, objectName string) error
}

// Avatar is an open avatar object. Close Body when done.
type Avatar struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type ProfileService struct {
	profiles ProfileStore
	objects  ObjectStore
}

func NewProfileService(profiles ProfileStore, objects ObjectStore) *ProfileService {
	return &ProfileService{profiles: profiles, objects: objects}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, upstream("load profile", err)
	}
	return profile, nil
}

func (s *ProfileService) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName *string) (*models.Profile, error) {
	if displayName != nil {
		trimmed := strings.TrimSpace(*displayName)
		if errs := validator.ValidateDisplayName(trimmed); errs.HasErrors() {
			return nil, &InputError{Fields: errs}
		}
		if trimmed == "" {
			displayName = nil
		} else {
			displayName = &trimmed
		}
	}

	if err := s.profiles.UpdateDisplayName(ctx, userID, displayName); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, upstream("update display name", err)
	}
	return s.Get(ctx, userID)
}

// SetAvatar stores the image under <user-id>/avatar<ext>, replacing any previous avatar.
func (s *ProfileService) SetAvatar(ctx context.Context, userID uuid.UUID, ext string, body io.Reader, size int64, contentType string) (string, error) {
	if s.objects == nil {
		return "", upstream("store avatar", errors.New("object storage not configured"))
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	objectName := path.Join(userID.String(), "avatar"+strings.ToLower(ext))
	if err := s.objects.Put(ctx, objectName, body, size, contentType); err != nil {
		return "", upstream("store avatar", err)
	}

	if profile.AvatarPath != nil && *profile.AvatarPath != objectName {
		if err := s.objects.Delete(ctx, *profile.AvatarPath); err != nil {
			logger.WithModule("profile").Warn("failed to delete previous avatar",
				zap.String("object", *profile.AvatarPath),
				zap.Error(err),
			)
		}
	}

	if err := s.profiles.UpdateAvatar(ctx, userID, objectName); err != nil {
		return "", upstream("update avatar path", err)
	}
	return objectName, nil
}

func (s *ProfileService) Avatar(ctx context.Context, userID uuid.UUID) (*Avatar, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.AvatarPath == nil || *profile.AvatarPath == "" || s.objects == nil {
		return nil, ErrAvatarNotFound
	}

	body, size, contentType, err := s.objects.Get(ctx, *profile.AvatarPath)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrAvatarNotFound
		}
		return nil, upstream("read avatar", err)
	}
	return &Avatar{Body: body, Size: size, ContentType: contentType}, nil
}

func (s *ProfileService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if profile.AvatarPath == nil || *profile.AvatarPath == "" || s.objects == nil {
		return ErrAvatarNotFound
	}

	if err := s.objects.Delete(ctx, *profile.AvatarPath); err != nil {
		return upstream("delete avatar", err)
	}
	if err := s.profiles.UpdateAvatar(ctx, userID, ""); err != nil {
		return upstream("clear avatar path", err)
	}
	return nil
}
