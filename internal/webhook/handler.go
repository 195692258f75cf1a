// Package webhook receives GitHub App deliveries and drives evaluations.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/go-github/v80/github"

	apperrors "github.com/g30r93g/PRereq/internal/errors"
	"github.com/g30r93g/PRereq/internal/logger"
	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/services"
	"github.com/g30r93g/PRereq/internal/vcs"
	ghclient "github.com/g30r93g/PRereq/internal/vcs/github"
)

// ClientResolver returns the provider client for an app installation.
type ClientResolver func(installationID int64) (vcs.Client, error)

// evaluateActions re-run the PR's own check.
var evaluateActions = map[string]bool{
	"opened":           true,
	"reopened":         true,
	"synchronize":      true,
	"edited":           true,
	"ready_for_review": true,
	"labeled":          true,
	"unlabeled":        true,
}

type Handler struct {
	secret  []byte
	service *services.DependencyService
	clients ClientResolver
}

func NewHandler(secret string, service *services.DependencyService, clients ClientResolver) *Handler {
	return &Handler{
		secret:  []byte(secret),
		service: service,
		clients: clients,
	}
}

type result struct {
	Event      string `json:"event"`
	Action     string `json:"action,omitempty"`
	Conclusion string `json:"conclusion,omitempty"`
	Dependents *int   `json:"dependents,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := github.WebHookType(r)
	ctx := logger.With(r.Context(), "delivery", github.DeliveryID(r), "event", eventType)
	log := logger.FromContext(ctx)

	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		log.Warn("rejected delivery", "error", apperrors.ErrWebhookSignature.WithError(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		log.Warn("unparseable delivery", "error", apperrors.ErrWebhookPayload.WithError(err))
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	res, handled, err := h.dispatch(ctx, event)
	if err != nil {
		logger.Error(ctx, "delivery failed", err)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}
	if !handled {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	res.Event = eventType
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(res)
}

func (h *Handler) dispatch(ctx context.Context, event interface{}) (result, bool, error) {
	switch e := event.(type) {
	case *github.PingEvent:
		logger.Info(ctx, "ping received", "hook_id", e.GetHookID())
		return result{}, true, nil
	case *github.PullRequestEvent:
		return h.onPullRequest(ctx, e)
	case *github.IssuesEvent:
		return h.onIssue(ctx, e)
	default:
		return result{}, false, nil
	}
}

func (h *Handler) onPullRequest(ctx context.Context, e *github.PullRequestEvent) (result, bool, error) {
	action := e.GetAction()
	number := e.GetPullRequest().GetNumber()
	ref := repoRef(e.GetRepo(), number)
	ctx = logger.With(ctx, "action", action, "pr", ref.String())

	switch {
	case evaluateActions[action]:
		svc, err := h.serviceFor(e.GetInstallation())
		if err != nil {
			return result{}, false, err
		}
		pr := ghclient.PullRequestFromGitHub(e.GetPullRequest())
		pr.Ref = ref

		verdict, err := svc.EvaluateAndPublish(ctx, pr)
		if err != nil {
			return result{}, false, err
		}
		return result{Action: action, Conclusion: string(verdict.Conclusion)}, true, nil

	case action == "closed" && e.GetPullRequest().GetMerged():
		svc, err := h.serviceFor(e.GetInstallation())
		if err != nil {
			return result{}, false, err
		}
		count, err := svc.ReevaluateDependents(ctx, ref)
		if err != nil {
			return result{}, false, err
		}
		return result{Action: action, Dependents: &count}, true, nil
	}

	return result{}, false, nil
}

func (h *Handler) onIssue(ctx context.Context, e *github.IssuesEvent) (result, bool, error) {
	if e.GetAction() != "edited" || !e.GetIssue().IsPullRequest() {
		return result{}, false, nil
	}

	ref := repoRef(e.GetRepo(), e.GetIssue().GetNumber())
	ctx = logger.With(ctx, "action", e.GetAction(), "pr", ref.String())

	client, err := h.clientFor(e.GetInstallation())
	if err != nil {
		return result{}, false, err
	}

	pr, err := client.GetPullRequest(ctx, ref)
	if err != nil {
		return result{}, false, err
	}

	verdict, err := h.service.ForClient(client).EvaluateAndPublish(ctx, pr)
	if err != nil {
		return result{}, false, err
	}
	return result{Action: e.GetAction(), Conclusion: string(verdict.Conclusion)}, true, nil
}

func (h *Handler) serviceFor(inst *github.Installation) (*services.DependencyService, error) {
	client, err := h.clientFor(inst)
	if err != nil {
		return nil, err
	}
	return h.service.ForClient(client), nil
}

func (h *Handler) clientFor(inst *github.Installation) (vcs.Client, error) {
	client, err := h.clients(inst.GetID())
	if err != nil {
		return nil, apperrors.ErrNoInstallation.WithError(err).WithContext("installation_id", inst.GetID())
	}
	return client, nil
}

func repoRef(repo *github.Repository, number int) models.PRRef {
	return models.NewPRRef(repo.GetOwner().GetLogin(), repo.GetName(), number)
}
