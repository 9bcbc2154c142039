package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"copilot-context/internal/domain"
	"copilot-context/internal/repository"
)

// ErrResolveTimeout se devuelve cuando el resolver no termina dentro del plazo.
var ErrResolveTimeout = errors.New("context resolver timed out")

// ContextResolver define el contrato para producir el contexto del copiloto a partir de un ticket validado.
type ContextResolver interface {
	Resolve(ctx context.Context, req domain.ContextRequest) (domain.ContextResponse, error)
}

// StubResolver registra el input y devuelve atributos vacíos más el prompt configurado.
// Es el punto de extensión para conectar un CRM o sistema de facturación.
type StubResolver struct {
	logger *zap.Logger
	prompt *string
}

func NewStubResolver(logger *zap.Logger, prompt *string) *StubResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubResolver{logger: logger, prompt: prompt}
}

func (r *StubResolver) Resolve(_ context.Context, req domain.ContextRequest) (domain.ContextResponse, error) {
	r.logger.Info("resolving context",
		zap.String("ticket_id", req.TicketID),
		zap.String("platform", string(req.TicketingPlatformType)),
		zap.Any("ticket_attributes", req.TicketAttributesData),
		zap.Any("user_attributes", req.UserAttributesData),
		zap.Any("org_attributes", req.OrgAttributesData),
		zap.Int("messages", len(req.Messages)),
	)

	return domain.ContextResponse{
		UserAttributes:         []domain.Attribute{},
		OrganizationAttributes: []domain.Attribute{},
		Prompt:                 copyPrompt(r.prompt),
	}, nil
}

// AttributeResolver busca atributos guardados para el usuario y la organización del ticket.
type AttributeResolver struct {
	repo   repository.AttributeRepository
	logger *zap.Logger
	prompt *string
}

func NewAttributeResolver(repo repository.AttributeRepository, logger *zap.Logger, prompt *string) *AttributeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributeResolver{repo: repo, logger: logger, prompt: prompt}
}

func (r *AttributeResolver) Resolve(ctx context.Context, req domain.ContextRequest) (domain.ContextResponse, error) {
	userAttrs, err := r.list(ctx, repository.SubjectUser, lookupKey(req.UserAttributesData, "id", "email"))
	if err != nil {
		return domain.ContextResponse{}, fmt.Errorf("list user attributes: %w", err)
	}

	orgAttrs, err := r.list(ctx, repository.SubjectOrganization, lookupKey(req.OrgAttributesData, "id", "name"))
	if err != nil {
		return domain.ContextResponse{}, fmt.Errorf("list organization attributes: %w", err)
	}

	r.logger.Info("context resolved",
		zap.String("ticket_id", req.TicketID),
		zap.String("platform", string(req.TicketingPlatformType)),
		zap.Int("user_attributes", len(userAttrs)),
		zap.Int("org_attributes", len(orgAttrs)),
	)

	return domain.ContextResponse{
		UserAttributes:         userAttrs,
		OrganizationAttributes: orgAttrs,
		Prompt:                 copyPrompt(r.prompt),
	}, nil
}

func (r *AttributeResolver) list(ctx context.Context, subject repository.SubjectType, key string) ([]domain.Attribute, error) {
	if key == "" {
		return []domain.Attribute{}, nil
	}
	attrs, err := r.repo.ListBySubject(ctx, subject, key)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = []domain.Attribute{}
	}
	return attrs, nil
}

// lookupKey devuelve el primer campo presente, como texto, entre los candidatos.
func lookupKey(data domain.AttributeData, candidates ...string) string {
	for _, name := range candidates {
		switch v := data[name].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

type timeoutResolver struct {
	next    ContextResolver
	timeout time.Duration
}

// NewTimeoutResolver limita la duración de cada llamada. Con timeout <= 0 devuelve next sin cambios.
func NewTimeoutResolver(next ContextResolver, timeout time.Duration) ContextResolver {
	if timeout <= 0 {
		return next
	}
	return &timeoutResolver{next: next, timeout: timeout}
}

type resolveResult struct {
	resp domain.ContextResponse
	err  error
}

func (r *timeoutResolver) Resolve(ctx context.Context, req domain.ContextRequest) (domain.ContextResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan resolveResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- resolveResult{err: fmt.Errorf("context resolver panic: %v", rec)}
			}
		}()
		resp, err := r.next.Resolve(ctx, req)
		done <- resolveResult{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if errors.Is(res.err, context.DeadlineExceeded) {
			return domain.ContextResponse{}, ErrResolveTimeout
		}
		return res.resp, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ContextResponse{}, ErrResolveTimeout
		}
		return domain.ContextResponse{}, ctx.Err()
	}
}

func copyPrompt(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
