package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/g30r93g/PRereq/internal/cache"
	apperrors "github.com/g30r93g/PRereq/internal/errors"
	"github.com/g30r93g/PRereq/internal/graph"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/logger"
	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/parse"
	"github.com/g30r93g/PRereq/internal/vcs"
)

const (
	DefaultCheckName         = "PRereq Checks"
	defaultStatusConcurrency = 8
)

var DefaultBypassLabels = []string{"prereq:deps", "skip-prereq"}

// DependencyService turns a pull request into a check verdict and keeps the
// dependency graph in step with its description.
type DependencyService struct {
	store       graph.Store
	status      vcs.StatusLookup
	statusCache *cache.Cache
	notices     vcs.NoticeClient
	publisher   vcs.CheckPublisher
	fetcher     vcs.PRFetcher
	trans       *i18n.Translations

	maxNodes     int
	bypassLabels []string
	checkName    string
	concurrency  int
}

type DependencyOption func(*DependencyService)

func WithStore(store graph.Store) DependencyOption {
	return func(s *DependencyService) {
		s.store = store
	}
}

func WithStatusLookup(status vcs.StatusLookup) DependencyOption {
	return func(s *DependencyService) {
		s.status = status
	}
}

// WithStatusCache shares c across every status lookup the service uses.
func WithStatusCache(c *cache.Cache) DependencyOption {
	return func(s *DependencyService) {
		s.statusCache = c
	}
}

func WithNotices(notices vcs.NoticeClient) DependencyOption {
	return func(s *DependencyService) {
		s.notices = notices
	}
}

func WithPublisher(publisher vcs.CheckPublisher) DependencyOption {
	return func(s *DependencyService) {
		s.publisher = publisher
	}
}

func WithPRFetcher(fetcher vcs.PRFetcher) DependencyOption {
	return func(s *DependencyService) {
		s.fetcher = fetcher
	}
}

// WithVCSClient sets status lookup, notices, publisher and fetcher at once.
func WithVCSClient(client vcs.Client) DependencyOption {
	return func(s *DependencyService) {
		s.status = client
		s.notices = client
		s.publisher = client
		s.fetcher = client
	}
}

func WithTranslations(trans *i18n.Translations) DependencyOption {
	return func(s *DependencyService) {
		s.trans = trans
	}
}

func WithMaxCycleNodes(n int) DependencyOption {
	return func(s *DependencyService) {
		if n > 0 {
			s.maxNodes = n
		}
	}
}

func WithBypassLabels(labels []string) DependencyOption {
	return func(s *DependencyService) {
		s.bypassLabels = append([]string(nil), labels...)
	}
}

func WithCheckName(name string) DependencyOption {
	return func(s *DependencyService) {
		if name != "" {
			s.checkName = name
		}
	}
}

func WithStatusConcurrency(n int) DependencyOption {
	return func(s *DependencyService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewDependencyService(opts ...DependencyOption) *DependencyService {
	s := &DependencyService{
		maxNodes:     graph.DefaultMaxNodes,
		bypassLabels: append([]string(nil), DefaultBypassLabels...),
		checkName:    DefaultCheckName,
		concurrency:  defaultStatusConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = graph.NewMemoryStore()
	}
	if s.trans == nil {
		s.trans = i18n.Default()
	}
	return s
}

// With returns a copy of s with opts applied on top of its settings.
func (s *DependencyService) With(opts ...DependencyOption) *DependencyService {
	c := *s
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// ForClient returns a copy bound to client. Store, cache and settings are shared.
func (s *DependencyService) ForClient(client vcs.Client) *DependencyService {
	return s.With(WithVCSClient(client))
}

// Evaluate records the dependencies declared by pr and decides its verdict.
// Errors are returned only for persistence failures and cancellation; every
// other problem degrades into the verdict.
func (s *DependencyService) Evaluate(ctx context.Context, pr models.PullRequest) (models.Verdict, error) {
	ctx = logger.With(ctx, "pr", pr.Ref.String())
	log := logger.FromContext(ctx)

	extraction := parse.Extract(pr.Text(), pr.Ref.Owner, pr.Ref.Repo)
	log.Debug("references extracted", "refs", len(extraction.References), "enforce", extraction.Enforce)

	if label, ok := s.bypassLabel(pr.Labels); ok {
		if err := s.replaceEdges(ctx, pr.Ref, extraction.References); err != nil {
			return models.Verdict{}, err
		}
		log.Info("dependency checks bypassed", "label", label)
		return s.verdict(models.ConclusionNeutral, "verdict_bypassed", 0, map[string]interface{}{"Label": label}), nil
	}

	if len(extraction.References) == 0 {
		if err := s.replaceEdges(ctx, pr.Ref, nil); err != nil {
			return models.Verdict{}, err
		}
		return s.verdict(models.ConclusionSuccess, "verdict_no_dependencies", 0, nil), nil
	}

	if err := s.replaceEdges(ctx, pr.Ref, extraction.References); err != nil {
		return models.Verdict{}, err
	}

	cycle, err := graph.DetectCycle(ctx, pr.Ref, s.store, graph.WithMaxNodes(s.maxNodes))
	if err != nil {
		log.Error("cycle detection failed", "error", err)
		return models.Verdict{}, apperrors.ErrEvaluation.WithError(err).WithContext("ref", pr.Ref.String())
	}

	switch cycle.Kind {
	case models.CycleFound:
		log.Info("circular dependency detected", "chain", models.FormatChain(cycle.Path))
		return s.verdict(models.ConclusionFailure, "verdict_cycle", 0, map[string]interface{}{
			"Chain": models.FormatChain(cycle.Path),
		}), nil
	case models.CycleBudgetExceeded:
		log.Warn("cycle detection budget exceeded", "budget", s.maxNodes)
		return s.verdict(models.ConclusionFailure, "verdict_budget", s.maxNodes, map[string]interface{}{
			"Budget": s.maxNodes,
			"Chain":  models.FormatChain(cycle.Path),
		}), nil
	}

	if !extraction.Enforce {
		return s.verdict(models.ConclusionNeutral, "verdict_not_enforced", 0, nil), nil
	}

	s.ensureNotices(ctx, pr.Ref, extraction.References)

	statuses, err := s.resolveStatuses(ctx, extraction.References)
	if err != nil {
		return models.Verdict{}, apperrors.ErrEvaluation.WithError(err).WithContext("ref", pr.Ref.String())
	}

	var unmet []string
	for i, dep := range extraction.References {
		if statuses[i] == models.StatusMerged {
			continue
		}
		unmet = append(unmet, s.trans.GetMessage("verdict_unmet_line", 0, map[string]interface{}{
			"Ref":    dep.String(),
			"Status": string(statuses[i]),
		}))
	}

	if len(unmet) == 0 {
		return s.verdict(models.ConclusionSuccess, "verdict_all_met", 0, nil), nil
	}

	log.Info("unmet dependencies", "count", len(unmet))
	return s.verdict(models.ConclusionFailure, "verdict_unmet", 0, map[string]interface{}{
		"Lines": strings.Join(unmet, "\n"),
	}), nil
}

// EvaluateAndPublish evaluates pr and reports the verdict as a check run.
func (s *DependencyService) EvaluateAndPublish(ctx context.Context, pr models.PullRequest) (models.Verdict, error) {
	verdict, err := s.Evaluate(ctx, pr)
	if err != nil {
		return models.Verdict{}, err
	}

	if s.publisher == nil {
		return verdict, nil
	}

	run := models.CheckRun{
		Ref:     pr.Ref,
		HeadSHA: pr.HeadSHA,
		Name:    s.checkName,
		Verdict: verdict,
	}
	if err := s.publisher.PublishCheck(ctx, run); err != nil {
		logger.Error(ctx, "failed to publish check run", err, "pr", pr.Ref.String())
		return verdict, err
	}

	logger.Info(ctx, "check run published", "pr", pr.Ref.String(), "conclusion", string(verdict.Conclusion))
	return verdict, nil
}

// ReevaluateDependents re-runs every open pull request that declared merged
// as a dependency. Dependents that cannot be fetched, or that are already
// closed, are skipped; the number re-evaluated is returned.
func (s *DependencyService) ReevaluateDependents(ctx context.Context, merged models.PRRef) (int, error) {
	log := logger.FromContext(ctx)

	dependents, err := s.store.InboundOf(ctx, merged)
	if err != nil {
		return 0, err
	}
	if len(dependents) == 0 {
		return 0, nil
	}
	if s.fetcher == nil {
		return 0, apperrors.ErrEvaluation.
			WithError(errors.New("no pull request fetcher configured")).
			WithContext("ref", merged.String())
	}

	log.Info("re-evaluating dependents", "dependency", merged.String(), "dependents", len(dependents))

	count := 0
	for _, dependent := range dependents {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		pr, err := s.fetcher.GetPullRequest(ctx, dependent)
		if err != nil {
			log.Warn("skipping dependent", "dependent", dependent.String(), "error", err)
			continue
		}
		if pr.Merged || pr.State == string(models.StatusClosed) {
			log.Debug("skipping closed dependent", "dependent", dependent.String(), "state", pr.State)
			continue
		}

		if _, err := s.EvaluateAndPublish(ctx, pr); err != nil {
			log.Warn("dependent evaluation failed", "dependent", dependent.String(), "error", err)
			continue
		}
		count++
	}

	return count, nil
}

func (s *DependencyService) replaceEdges(ctx context.Context, dependent models.PRRef, deps []models.PRRef) error {
	if err := s.store.ReplaceEdges(ctx, dependent, deps); err != nil {
		logger.Error(ctx, "failed to store dependency edges", err)
		return err
	}
	return nil
}

func (s *DependencyService) bypassLabel(labels []string) (string, bool) {
	for _, l := range labels {
		for _, b := range s.bypassLabels {
			if l == b {
				return l, true
			}
		}
	}
	return "", false
}

// ensureNotices leaves one blocking comment per dependency. Listing failures
// count as "no comment yet"; posting failures are only logged.
func (s *DependencyService) ensureNotices(ctx context.Context, dependent models.PRRef, deps []models.PRRef) {
	if s.notices == nil {
		return
	}
	log := logger.FromContext(ctx)

	body := s.trans.GetMessage("notice_blocking", 0, map[string]interface{}{"Ref": dependent.String()})

	for _, dep := range deps {
		existing, err := s.notices.ListNotices(ctx, dep)
		if err != nil {
			log.Warn("failed to list notices", "dependency", dep.String(), "error", err)
		}
		if hasNotice(existing, body) {
			continue
		}

		if err := s.notices.PostNotice(ctx, dep, body); err != nil {
			log.Warn("failed to post blocking notice", "dependency", dep.String(), "error", err)
			continue
		}
		log.Debug("blocking notice posted", "dependency", dep.String())
	}
}

func hasNotice(bodies []string, body string) bool {
	for _, b := range bodies {
		if strings.TrimSpace(b) == body {
			return true
		}
	}
	return false
}

// resolveStatuses returns one status per dep, in the same order. Lookup
// errors degrade to unknown; only cancellation is returned.
func (s *DependencyService) resolveStatuses(ctx context.Context, deps []models.PRRef) ([]models.DepStatus, error) {
	statuses := make([]models.DepStatus, len(deps))
	lookup := s.statusCache.Wrap(s.status)
	if lookup == nil {
		for i := range statuses {
			statuses[i] = models.StatusUnknown
		}
		return statuses, ctx.Err()
	}

	log := logger.FromContext(ctx)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, dep := range deps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			status, err := lookup.DependencyStatus(ctx, dep)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn("status lookup failed", "dependency", dep.String(), "error", err)
				status = models.StatusUnknown
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return statuses, nil
}

func (s *DependencyService) verdict(conclusion models.Conclusion, key string, count int, data map[string]interface{}) models.Verdict {
	return models.Verdict{
		Conclusion: conclusion,
		Title:      s.trans.GetMessage(key+"_title", 0, nil),
		Summary:    s.trans.GetMessage(key+"_summary", count, data),
	}
}
