package middleware

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// OAuth2 grant types.
const (
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
)

// tokenExpiryLeeway accounts for clock skew between client and token server.
const tokenExpiryLeeway = 30 * time.Second

// OAuth2Config describes how to obtain access tokens.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// GrantType defaults to client_credentials.
	GrantType string
	// Username and Password are used by the password grant.
	Username string
	Password string
}

// OAuth2Error is the error body of a failed token request.
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e OAuth2Error) String() string {
	if e.ErrorDescription == "" {
		return e.Error
	}
	return e.Error + ": " + e.ErrorDescription
}

type oauth2Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// OAuth2Provider fetches tokens through its own Caller and caches them until
// they expire.
type OAuth2Provider struct {
	config OAuth2Config
	caller *http.Caller
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewOAuth2Provider returns a provider that performs token requests with
// caller, or with a default Caller when nil.
func NewOAuth2Provider(config OAuth2Config, caller *http.Caller) *OAuth2Provider {
	if caller == nil {
		caller = http.NewCaller()
	}
	return &OAuth2Provider{config: config, caller: caller, now: time.Now}
}

// Token returns a cached token or fetches a new one. Token request failures
// are returned as *http.Error with the token server's OAuth2Error as domain.
func (p *OAuth2Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && (p.expiresAt.IsZero() || p.now().Add(tokenExpiryLeeway).Before(p.expiresAt)) {
		return p.token, nil
	}

	desc, err := p.descriptor()
	if err != nil {
		return "", err
	}
	tok, err := http.Call(ctx, p.caller, desc, http.Decode[oauth2Token](), http.ErrorBody[OAuth2Error]())
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &http.Error{Kind: http.KindDecoding, Cause: fmt.Errorf("token response has no access_token")}
	}

	p.token = tok.AccessToken
	p.expiresAt = time.Time{}
	if tok.ExpiresIn > 0 {
		p.expiresAt = p.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return p.token, nil
}

// Invalidate drops the cached token.
func (p *OAuth2Provider) Invalidate() {
	p.mu.Lock()
	p.token = ""
	p.expiresAt = time.Time{}
	p.mu.Unlock()
}

func (p *OAuth2Provider) descriptor() (*http.Descriptor, error) {
	u, err := url.Parse(p.config.TokenURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &http.Error{Kind: http.KindBuildingURL, Cause: fmt.Errorf("invalid token URL %q", p.config.TokenURL)}
	}

	form := url.Values{}
	switch p.config.GrantType {
	case "", GrantClientCredentials:
		form.Set("grant_type", GrantClientCredentials)
	case GrantPassword:
		form.Set("grant_type", GrantPassword)
		form.Set("username", p.config.Username)
		form.Set("password", p.config.Password)
	default:
		return nil, &http.Error{Kind: http.KindEncoding, Cause: fmt.Errorf("unsupported OAuth2 grant type: %s", p.config.GrantType)}
	}
	if len(p.config.Scopes) > 0 {
		form.Set("scope", strings.Join(p.config.Scopes, " "))
	}

	headers := []http.Header{{Name: http.HeaderContentType, Value: "application/x-www-form-urlencoded"}}
	if p.config.ClientID != "" && p.config.ClientSecret != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(p.config.ClientID + ":" + p.config.ClientSecret))
		headers = append(headers, http.Authorization("Basic "+creds))
	}

	var opts []http.DescriptorOption
	opts = append(opts, http.WithHeaders(headers...), http.WithBody(http.RawBody([]byte(form.Encode()))))
	if u.RawQuery != "" {
		values := u.Query()
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		items := make([]http.QueryItem, 0, len(names))
		for _, name := range names {
			items = append(items, http.Param(name, values.Get(name)))
		}
		opts = append(opts, http.WithQuery(http.QueryItems(items...)))
	}

	base := http.StaticURL(u.Scheme + "://" + u.Host)
	return http.NewDescriptor(base, http.StaticURL(u.Path), http.MethodPost, opts...), nil
}

// OAuth2 sets "Authorization: Bearer <token>" from provider on every request.
func OAuth2(provider *OAuth2Provider) http.Middleware {
	return http.Hooks{
		Request: func(ctx context.Context, req *http.Request) error {
			token, err := provider.Token(ctx)
			if err != nil {
				return err
			}
			req.SetHeader(http.HeaderAuthorization, "Bearer "+token)
			return nil
		},
	}
}
