package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeVCS           ErrorType = "VCS"
	TypeStorage       ErrorType = "STORAGE"
	TypeWebhook       ErrorType = "WEBHOOK"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if ref, ok := e.Context["ref"].(string); ok && ref != "" {
			msg += fmt.Sprintf(" - %s", ref)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors of the same type and message, so sentinel values
// still match after WithError or WithContext made a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors
var (
	ErrConfigInvalid = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Review the file with: prereq config show")

	ErrConfigRead = NewAppError(TypeConfiguration, "Failed to read configuration", nil).
			WithSuggestion("Create one with: prereq config init")

	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub credentials are missing", nil).
			WithSuggestion("Set GITHUB_TOKEN, or PREREQ_GITHUB_APP_ID and PREREQ_GITHUB_PRIVATE_KEY_PATH")

	ErrPrivateKeyInvalid = NewAppError(TypeConfiguration, "GitHub App private key is invalid", nil).
				WithSuggestion("Download a new private key from the GitHub App settings page")
)

// Storage errors
var (
	ErrStorageOpen = NewAppError(TypeStorage, "failed to open dependency store", nil).
			WithSuggestion("Check storage.driver and storage.dsn in the configuration")

	ErrStorageWrite = NewAppError(TypeStorage, "failed to write dependency edges", nil)

	ErrStorageRead = NewAppError(TypeStorage, "failed to read dependency edges", nil)
)

// GitHub/VCS errors
var (
	ErrPullRequestNotFound = NewAppError(TypeVCS, "pull request not found", nil).
				WithSuggestion("Check the reference and that the app is installed on the repository")

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("The app needs 'pull_requests: read', 'issues: write' and 'checks: write'")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a GitHub App installation for higher limits")

	ErrPublishCheck = NewAppError(TypeVCS, "failed to publish check run", nil)

	ErrPostNotice = NewAppError(TypeVCS, "failed to post blocking notice", nil)

	ErrInstallationToken = NewAppError(TypeVCS, "failed to obtain installation token", nil).
				WithSuggestion("Verify the App ID, private key and installation ID")
)

// Webhook errors
var (
	ErrWebhookSignature = NewAppError(TypeWebhook, "webhook signature verification failed", nil).
				WithSuggestion("Make sure server.webhook_secret matches the GitHub App webhook secret")

	ErrWebhookPayload = NewAppError(TypeWebhook, "webhook payload could not be parsed", nil)

	ErrNoInstallation = NewAppError(TypeWebhook, "webhook event has no installation", nil)
)

var (
	ErrEvaluation = NewAppError(TypeInternal, "dependency evaluation failed", nil)
)
