package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// ErrCredentialsNotFound is returned when no configured source yields credentials.
var ErrCredentialsNotFound = errors.New("google service account credentials not found")

// ErrInvalidCredentials is returned when the first configured source is malformed.
var ErrInvalidCredentials = errors.New("invalid service account credentials")

// Default locations checked for mounted secret files.
var DefaultSecretFiles = []string{
	"/etc/secrets/google_credentials.json",
	"/etc/secrets/credentials.json",
	"/etc/secrets/service_account.json",
}

const (
	defaultAccountType = "service_account"
	defaultAuthURI     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURI    = "https://oauth2.googleapis.com/token"
	defaultCertURL     = "https://www.googleapis.com/oauth2/v1/certs"
)

// ServiceAccount is the structured form of a Google service account key.
type ServiceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id,omitempty"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id,omitempty"`
	AuthURI                 string `json:"auth_uri,omitempty"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url,omitempty"`
	ClientX509CertURL       string `json:"client_x509_cert_url,omitempty"`
	UniverseDomain          string `json:"universe_domain,omitempty"`
}

// Empty reports whether no key material was supplied.
func (sa ServiceAccount) Empty() bool {
	return sa.PrivateKey == "" && sa.ClientEmail == "" && sa.ProjectID == ""
}

// Normalize fills defaulted fields and turns literal "\n" sequences in the
// private key into newlines.
func (sa ServiceAccount) Normalize() ServiceAccount {
	sa.PrivateKey = strings.TrimSpace(strings.ReplaceAll(sa.PrivateKey, `\n`, "\n"))
	if sa.Type == "" {
		sa.Type = defaultAccountType
	}
	if sa.AuthURI == "" {
		sa.AuthURI = defaultAuthURI
	}
	if sa.TokenURI == "" {
		sa.TokenURI = defaultTokenURI
	}
	if sa.AuthProviderX509CertURL == "" {
		sa.AuthProviderX509CertURL = defaultCertURL
	}
	return sa
}

// Validate checks the required fields and the PEM markers of the private key.
func (sa ServiceAccount) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"type":         sa.Type,
		"project_id":   sa.ProjectID,
		"private_key":  sa.PrivateKey,
		"client_email": sa.ClientEmail,
		"token_uri":    sa.TokenURI,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("service account missing fields: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(sa.PrivateKey, "BEGIN PRIVATE KEY") || !strings.Contains(sa.PrivateKey, "END PRIVATE KEY") {
		return errors.New("service account private_key missing BEGIN/END markers")
	}
	return nil
}

// Credentials is a resolved service account key ready for the Google client.
type Credentials struct {
	JSON        []byte
	Source      string
	ClientEmail string
}

// CredentialSource is one place credentials may come from. Load reports
// found=false when the source is simply not configured.
type CredentialSource interface {
	Name() string
	Load() (data []byte, found bool, err error)
}

// StructuredSource serialises a ServiceAccount assembled from configuration.
type StructuredSource struct {
	Account ServiceAccount
}

func (s StructuredSource) Name() string { return "structured secret" }

func (s StructuredSource) Load() ([]byte, bool, error) {
	if s.Account.Empty() {
		return nil, false, nil
	}
	sa := s.Account.Normalize()
	if err := sa.Validate(); err != nil {
		return nil, true, err
	}
	data, err := json.Marshal(sa)
	return data, true, err
}

// JSONStringSource holds a JSON-encoded key supplied directly in configuration.
type JSONStringSource struct {
	JSON string
}

func (s JSONStringSource) Name() string { return "json secret" }

func (s JSONStringSource) Load() ([]byte, bool, error) {
	raw := unquote(s.JSON)
	if raw == "" {
		return nil, false, nil
	}
	return []byte(raw), true, nil
}

// EnvSource reads a JSON-encoded key from an environment variable.
type EnvSource struct {
	Var    string
	Lookup func(string) (string, bool)
}

func (s EnvSource) Name() string { return "env " + s.Var }

func (s EnvSource) Load() ([]byte, bool, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(s.Var)
	if !ok || unquote(v) == "" {
		return nil, false, nil
	}
	return []byte(unquote(v)), true, nil
}

// FileSource returns the first readable file among Paths. Unreadable files are skipped.
type FileSource struct {
	Paths    []string
	ReadFile func(string) ([]byte, error)
	Logger   *slog.Logger
}

func (s FileSource) Name() string { return "secret files" }

func (s FileSource) Load() ([]byte, bool, error) {
	read := s.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	for _, p := range s.Paths {
		data, err := read(p)
		if err != nil {
			if s.Logger != nil && !errors.Is(err, os.ErrNotExist) {
				s.Logger.Warn("secret file unreadable", slog.String("path", p), slog.String("error", err.Error()))
			}
			continue
		}
		if !json.Valid(data) {
			if s.Logger != nil {
				s.Logger.Warn("secret file is not valid JSON", slog.String("path", p))
			}
			continue
		}
		return data, true, nil
	}
	return nil, false, nil
}

// CredentialResolver tries its sources in order; the first available one wins.
type CredentialResolver struct {
	sources []CredentialSource
	logger  *slog.Logger
}

// NewCredentialResolver creates a resolver over sources.
func NewCredentialResolver(logger *slog.Logger, sources ...CredentialSource) *CredentialResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialResolver{sources: sources, logger: logger.With(slog.String("component", "credentials"))}
}

// Resolve returns the credentials of the first configured source. A source that
// is configured but malformed is an error; later sources are not consulted.
func (r *CredentialResolver) Resolve() (*Credentials, error) {
	checked := make([]string, 0, len(r.sources))
	for _, src := range r.sources {
		checked = append(checked, src.Name())
		data, found, err := src.Load()
		if !found {
			continue
		}
		if err != nil {
			r.logger.Error("credential source invalid",
				slog.String("source", src.Name()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCredentials, src.Name(), err)
		}
		email, err := checkKeyJSON(data)
		if err != nil {
			r.logger.Error("credential source invalid",
				slog.String("source", src.Name()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCredentials, src.Name(), err)
		}
		r.logger.Info("credentials loaded",
			slog.String("source", src.Name()),
			slog.String("client_email", email))
		return &Credentials{JSON: data, Source: src.Name(), ClientEmail: email}, nil
	}
	return nil, fmt.Errorf("%w (checked: %s)", ErrCredentialsNotFound, strings.Join(checked, ", "))
}

func checkKeyJSON(data []byte) (string, error) {
	var key struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return "", fmt.Errorf("decode service account JSON: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return "", errors.New("service account JSON needs client_email and private_key")
	}
	return key.ClientEmail, nil
}

// unquote trims whitespace and one layer of wrapping quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'`)
	return strings.Trim(s, `"`)
}
