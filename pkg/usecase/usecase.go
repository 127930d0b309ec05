package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
)

type UseCases struct {
	repo     interfaces.Repository
	airtable interfaces.AirtableFactory
	storage  interfaces.BlobStorage

	Auth       AuthUseCaseInterface
	Airtable   *AirtableUseCase
	Form       *FormUseCase
	Submission *SubmissionUseCase
	Attachment *AttachmentUseCase
}

type Option func(*UseCases)

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithStorage enables attachment uploads
func WithStorage(storage interfaces.BlobStorage) Option {
	return func(uc *UseCases) {
		uc.storage = storage
	}
}

func New(repo interfaces.Repository, airtable interfaces.AirtableFactory, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		airtable: airtable,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Airtable = &AirtableUseCase{uc: uc}
	uc.Form = &FormUseCase{uc: uc}
	uc.Submission = &SubmissionUseCase{uc: uc}
	uc.Attachment = &AttachmentUseCase{uc: uc}

	return uc
}

// currentUser loads the user of the session token bound to ctx
func (uc *UseCases) currentUser(ctx context.Context) (*model.User, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Not authenticated", err)
	}

	user, err := uc.repo.User().Get(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "Not authenticated", err)
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, token.UserID))
	}
	return user, nil
}

// serviceFor builds an Airtable client acting as user
func (uc *UseCases) serviceFor(ctx context.Context, user *model.User) (interfaces.AirtableService, error) {
	svc, err := uc.airtable.ForUser(ctx, user)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Airtable account is not connected", err)
	}
	return svc, nil
}

// currentService is serviceFor the signed in user
func (uc *UseCases) currentService(ctx context.Context) (interfaces.AirtableService, *model.User, error) {
	user, err := uc.currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := uc.serviceFor(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return svc, user, nil
}

func upstream(err error, msg string) error {
	return newError(ErrUpstream, msg, err)
}
