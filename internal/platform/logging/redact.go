package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Credential shaped values, matched regardless of the attribute name.
var (
	jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)

	// Authorization header schemes used by us and by upstream providers:
	// Bearer (OpenAI), Token (Deepgram), DeepL-Auth-Key (DeepL), Basic.
	authHeaderPattern = regexp.MustCompile(`(?i)^(bearer|token|basic|deepl-auth-key)\s+.+$`)

	// OpenAI secret keys.
	openAIKeyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9_-]{16,}$`)
)

// DefaultRedactOptions lists the attribute names and value shapes that are
// never written to logs. Provider keys from the translation, speech, and
// audio config sections are included.
func DefaultRedactOptions() []masq.Option {
	names := []string{
		"password", "secret", "token", "authorization", "auth", "cookie", "session",
		"apiKey", "apikey", "api_key", "APIKey",
		"accessToken", "access_token", "refreshToken", "refresh_token",
		"accessKey", "access_key", "secretKey", "secret_key", "SecretKey",
		"subscriptionKey", "subscription_key", "credentials", "dsn", "DSN",
	}

	opts := make([]masq.Option, 0, len(names)+5)
	for _, n := range names {
		opts = append(opts, masq.WithFieldName(n))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(authHeaderPattern),
		masq.WithRegex(openAIKeyPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr that redacts secrets.
// Extra options extend DefaultRedactOptions.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
