package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/netrequester/packages/core/config"
	"github.com/abdul-hamid-achik/netrequester/packages/core/env"
	"github.com/abdul-hamid-achik/netrequester/packages/http"
	"github.com/abdul-hamid-achik/netrequester/packages/logger"
	"github.com/abdul-hamid-achik/netrequester/packages/middleware"
	"github.com/abdul-hamid-achik/netrequester/packages/output"
	"github.com/abdul-hamid-achik/netrequester/packages/recorder"
	"github.com/abdul-hamid-achik/netrequester/packages/schema"
	"github.com/abdul-hamid-achik/netrequester/packages/transport/resty"
)

// DefaultRetryWait is the pause between resty retries.
const DefaultRetryWait = 500 * time.Millisecond

type callOptions struct {
	env        string
	envFile    string
	configPath string
	baseURL    string
	method     string
	headers    []string
	query      []string
	data       string
	raw        bool
	empty      bool
	schemaPath string
	timeout    string
	repeat     int
	watch      bool
	record     string
	metrics    string
	rate       float64
	transport  string
	retries    int
	proxy      string
	insecure   bool
	noFollow   bool
	bearer     string
	basic      string
	apiKey     string
	apiKeyQ    string
	awsSigV4   string
	oauth2     middleware.OAuth2Config
	output     string
	verbose    bool
	noColor    bool
	logLevel   string
}

var callCmd = newCallCmd()

func newCallCmd() *cobra.Command {
	opts := &callOptions{}
	cmd := &cobra.Command{
		Use:   "call <path>",
		Short: "Perform one request against the active environment",
		Long: `Perform one request. <path> is resolved against the base URL of the
active environment and may reference {{variables}}.

Examples:
  netreq call /health
  netreq call /users --env staging -q page=2 -q verbose
  netreq call /users -X POST -d '{"name":"Ada"}'
  netreq call /users -X POST -d @user.json -H "X-Trace: on"
  netreq call /items/42 -X DELETE --empty
  netreq call /report --raw > report.json
  netreq call /users --schema user.schema.json --record history.db
  netreq call /health --repeat 20 --rate 5
  netreq call /users -X POST -d @user.json --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.env, "env", "e", getEnvString("NETREQ_ENV", ""), "Environment to use (env: NETREQ_ENV)")
	f.StringVar(&opts.envFile, "env-file", getEnvString("NETREQ_ENV_FILE", ""), "Path to .env file for variable interpolation (env: NETREQ_ENV_FILE)")
	f.StringVar(&opts.configPath, "config", getEnvString("NETREQ_CONFIG", ""), "Path to config file (env: NETREQ_CONFIG)")
	f.StringVar(&opts.baseURL, "base-url", getEnvString("NETREQ_BASE_URL", ""), "Base URL, overrides the config file (env: NETREQ_BASE_URL)")

	f.StringVarP(&opts.method, "method", "X", "GET", "Request method")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Request header as \"Name: value\" (repeatable)")
	f.StringArrayVarP(&opts.query, "query", "q", nil, "Query parameter as name=value, or a bare name (repeatable)")
	f.StringVarP(&opts.data, "data", "d", "", "Request body, or @file to read it from a file")

	f.BoolVar(&opts.raw, "raw", false, "Print only the response body")
	f.BoolVar(&opts.empty, "empty", false, "Expect an empty response body")
	f.StringVar(&opts.schemaPath, "schema", "", "Validate the response body against a JSON Schema file")
	f.StringVar(&opts.timeout, "timeout", getEnvString("NETREQ_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: NETREQ_TIMEOUT)")
	f.IntVarP(&opts.repeat, "repeat", "n", 1, "Perform the call n times and print a latency summary; stops at the first failure")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Re-send the call when the config, .env or @body file changes")

	f.StringVar(&opts.record, "record", getEnvString("NETREQ_RECORD", ""), "Record the call into a SQLite history file (env: NETREQ_RECORD)")
	f.StringVar(&opts.metrics, "metrics-file", getEnvString("NETREQ_METRICS_FILE", ""), "Write Prometheus metrics of the call to a textfile-collector file (env: NETREQ_METRICS_FILE)")
	f.Float64Var(&opts.rate, "rate", 0, "Requests per second allowed by the rate limiter (0 disables)")
	f.StringVar(&opts.transport, "transport", getEnvString("NETREQ_TRANSPORT", ""), "Transport: net or resty (env: NETREQ_TRANSPORT)")
	f.IntVar(&opts.retries, "retries", getEnvInt("NETREQ_RETRIES", 0), "Retry count for the resty transport (env: NETREQ_RETRIES)")
	f.StringVar(&opts.proxy, "proxy", getEnvString("NETREQ_PROXY", ""), "Proxy URL for HTTP requests (env: NETREQ_PROXY)")
	f.BoolVarP(&opts.insecure, "insecure", "k", getEnvBool("NETREQ_INSECURE", false), "Disable SSL certificate validation (env: NETREQ_INSECURE)")
	f.BoolVar(&opts.noFollow, "no-follow", false, "Do not follow redirects")

	f.StringVar(&opts.bearer, "bearer", getEnvString("NETREQ_BEARER", ""), "Bearer token (env: NETREQ_BEARER)")
	f.StringVar(&opts.basic, "basic", "", "Basic credentials as user:password")
	f.StringVar(&opts.apiKey, "api-key", getEnvString("NETREQ_API_KEY", ""), "API key header as \"Name: value\" (env: NETREQ_API_KEY)")
	f.StringVar(&opts.apiKeyQ, "api-key-query", "", "API key query parameter as name=value")
	f.StringVar(&opts.oauth2.TokenURL, "oauth2-token-url", getEnvString("NETREQ_OAUTH2_TOKEN_URL", ""), "Fetch a bearer token from this OAuth2 token endpoint (env: NETREQ_OAUTH2_TOKEN_URL)")
	f.StringVar(&opts.oauth2.ClientID, "oauth2-client-id", getEnvString("NETREQ_OAUTH2_CLIENT_ID", ""), "OAuth2 client id (env: NETREQ_OAUTH2_CLIENT_ID)")
	f.StringVar(&opts.oauth2.ClientSecret, "oauth2-client-secret", getEnvString("NETREQ_OAUTH2_CLIENT_SECRET", ""), "OAuth2 client secret (env: NETREQ_OAUTH2_CLIENT_SECRET)")
	f.StringSliceVar(&opts.oauth2.Scopes, "oauth2-scope", nil, "OAuth2 scopes (repeatable or comma-separated)")
	f.StringVar(&opts.awsSigV4, "aws-sigv4", "", "Sign with AWS SigV4 as region:service, keys from AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")

	f.StringVarP(&opts.output, "output", "o", getEnvString("NETREQ_OUTPUT", output.FormatConsole), "Output format: console, json (env: NETREQ_OUTPUT)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print the request line and headers")
	f.BoolVar(&opts.noColor, "no-color", getEnvBool("NETREQ_NO_COLOR", false), "Disable colored output (env: NETREQ_NO_COLOR)")
	f.StringVar(&opts.logLevel, "log-level", getEnvString("NETREQ_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: NETREQ_LOG_LEVEL)")

	registerCallCompletions(cmd)

	return cmd
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func runCall(cmd *cobra.Command, opts *callOptions, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := callOnce(ctx, cmd, opts, path)
	if !opts.watch || exitCode(err) == ExitUsageError {
		return err
	}
	if err != nil {
		printError(cmd, err)
	}
	return watchCall(ctx, cmd, opts, path)
}

// callOnce loads configuration and performs the call. Everything is rebuilt
// on each run so watch mode picks up edited files.
func callOnce(ctx context.Context, cmd *cobra.Command, opts *callOptions, path string) error {
	overrides, err := opts.overrides()
	if err != nil {
		return usageError(err)
	}

	fileConfig, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return configError(err)
	}
	cfg := fileConfig.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}

	log, restore, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return configError(err)
	}
	defer restore()
	defer func() { _ = logger.Close(log) }()

	formatter, err := output.New(opts.output, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return usageError(err)
	}

	resolver, err := newResolver(cfg, opts.envFile, log)
	if err != nil {
		return configError(err)
	}

	desc, err := buildDescriptor(cfg, opts, path, resolver)
	if err != nil {
		return err
	}

	serializer, err := newSerializer(opts.schemaPath)
	if err != nil {
		return configError(err)
	}

	inner := newTransport(cfg)
	mws, closeMiddleware, err := buildMiddleware(cfg, opts, log, inner)
	if err != nil {
		return err
	}
	defer closeMiddleware()

	// The pipeline hands back only the typed value, so the exchange is
	// captured at the transport for display.
	var (
		sent     *http.Request
		received *http.Response
	)
	capture := http.TransportFunc(func(ctx context.Context, req *http.Request) (*http.Response, error) {
		sent = req
		resp, err := inner.Perform(ctx, req)
		received = resp
		return resp, err
	})

	var latency *middleware.Latency
	if opts.repeat > 1 {
		latency = middleware.NewLatency()
		mws = append(mws, latency)
	}

	caller := http.NewCaller(
		http.WithTransport(capture),
		http.WithSerializer(serializer),
		http.WithMiddleware(mws...),
		http.WithLogger(log),
	)

	start := time.Now()
	var callErr error
	for i := 0; i < opts.repeat && callErr == nil; i++ {
		callErr = perform(ctx, caller, desc, opts)
	}

	if opts.raw {
		if received != nil {
			_, _ = cmd.OutOrStdout().Write(received.Body)
		}
		if callErr != nil {
			output.NewConsoleFormatter(output.WithWriter(cmd.ErrOrStderr())).FormatError(callErr)
		}
	} else {
		if cfg.GetVerbose() {
			formatter.FormatHeader(version)
		}
		formatter.FormatResponse(sent, received)
		if callErr != nil {
			formatter.FormatError(callErr)
		}
		if latency != nil {
			formatter.FormatLatency(latency.Snapshot())
		}
	}

	if flushable, ok := formatter.(output.Flushable); ok && !opts.raw {
		if err := flushable.Flush(time.Since(start)); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if callErr != nil {
		return reported(callErr)
	}
	return nil
}

// overrides turns the command line into a config layered over the file.
func (o *callOptions) overrides() (*config.Config, error) {
	c := &config.Config{
		DefaultEnvironment: o.env,
		BaseURL:            o.baseURL,
		Transport:          o.transport,
		Retries:            o.retries,
		RateLimit:          o.rate,
		RecordPath:         o.record,
		Proxy:              o.proxy,
		LogLevel:           o.logLevel,
	}
	if o.timeout != "" {
		d, err := time.ParseDuration(o.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", o.timeout, err)
		}
		c.Timeout = int(d.Milliseconds())
	}
	if o.rate < 0 {
		return nil, fmt.Errorf("--rate must not be negative")
	}
	if o.repeat < 1 {
		return nil, fmt.Errorf("--repeat must be at least 1")
	}
	if o.verbose {
		c.Verbose = config.BoolPtr(true)
	}
	if o.noColor {
		c.NoColor = config.BoolPtr(true)
	}
	if o.insecure {
		c.ValidateSSL = config.BoolPtr(false)
	}
	if o.noFollow {
		c.FollowRedirects = config.BoolPtr(false)
	}
	return c, nil
}

// newResolver loads .env files and the active environment into a resolver.
// Variables from NETREQ_VAR_<name> override .env values, and the config
// environment overrides both.
func newResolver(cfg *config.Config, envFile string, log *zap.Logger) (*env.Resolver, error) {
	var (
		dotenv map[string]string
		err    error
	)
	if envFile != "" {
		dotenv, err = env.LoadAndExportDotEnv(envFile)
	} else {
		dotenv, err = env.LoadDotEnvFiles(".")
	}
	if err != nil {
		return nil, err
	}

	environment, err := env.LoadEnvironment(cfg.DefaultEnvironment, cfg.Environments)
	if err != nil {
		return nil, err
	}

	resolver := env.NewResolver()
	resolver.SetWarnFunc(log.Sugar().Warnf)
	resolver.SetVariables(env.MergeVariables(
		env.StringMap(dotenv),
		env.LoadSystemEnv("NETREQ_VAR_"),
		environment.Variables,
	))
	return resolver, nil
}

func buildDescriptor(cfg *config.Config, opts *callOptions, path string, resolver *env.Resolver) (*http.Descriptor, error) {
	base := cfg.BaseURL
	if base == "" {
		base = "{{baseUrl}}"
	}
	environment := env.NewTemplate(base, resolver)
	endpoint := env.NewTemplate(path, resolver)

	var unresolved []string
	unresolved = append(unresolved, environment.Unresolved()...)
	unresolved = append(unresolved, endpoint.Unresolved()...)
	if len(unresolved) > 0 {
		return nil, configError(fmt.Errorf("unresolved variables in %q: %s (environment %q)",
			environment.String()+endpoint.String(), strings.Join(unresolved, ", "), cfg.DefaultEnvironment))
	}

	var descOpts []http.DescriptorOption

	headers, err := parseHeaders(opts.headers, resolver)
	if err != nil {
		return nil, usageError(err)
	}
	set := http.NewHeaderSet(headers...)
	defaults := make([]string, 0, len(cfg.Headers))
	for name := range cfg.Headers {
		defaults = append(defaults, name)
	}
	sort.Strings(defaults)
	for _, name := range defaults {
		if !set.Has(name) {
			headers = append(headers, http.Header{Name: name, Value: resolver.Resolve(cfg.Headers[name])})
		}
	}
	if len(headers) > 0 {
		descOpts = append(descOpts, http.WithHeaders(headers...))
	}

	if len(opts.query) > 0 {
		descOpts = append(descOpts, http.WithQuery(http.QueryItems(parseQuery(opts.query, resolver)...)))
	}

	if opts.data != "" {
		data, err := readData(opts.data, resolver)
		if err != nil {
			return nil, usageError(err)
		}
		descOpts = append(descOpts, http.WithBody(http.RawBody(data)))
	}

	if timeout := cfg.TimeoutDuration(); timeout > 0 {
		descOpts = append(descOpts, http.WithTimeout(timeout))
	}

	method := http.Method(strings.ToUpper(opts.method))
	return http.NewDescriptor(environment, endpoint, method, descOpts...), nil
}

// parseHeaders parses "Name: value" pairs. Repeating a name keeps every value.
func parseHeaders(raw []string, resolver *env.Resolver) ([]http.Header, error) {
	headers := make([]http.Header, 0, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected \"Name: value\")", h)
		}
		headers = append(headers, http.Header{Name: name, Value: resolver.Resolve(strings.TrimSpace(value))})
	}
	return headers, nil
}

// parseQuery parses name=value pairs. A bare name becomes a flag without a
// value.
func parseQuery(raw []string, resolver *env.Resolver) []http.QueryItem {
	items := make([]http.QueryItem, 0, len(raw))
	for _, q := range raw {
		name, value, ok := strings.Cut(q, "=")
		if !ok {
			items = append(items, http.Flag(name))
			continue
		}
		items = append(items, http.Param(name, resolver.Resolve(value)))
	}
	return items
}

func readData(data string, resolver *env.Resolver) ([]byte, error) {
	if path, ok := strings.CutPrefix(data, "@"); ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read body file: %w", err)
		}
		return content, nil
	}
	return []byte(resolver.Resolve(data)), nil
}

func newSerializer(schemaPath string) (http.Serializer, error) {
	if schemaPath == "" {
		return http.DefaultSerializer, nil
	}
	s := schema.New(nil)
	if err := s.RegisterFile(json.RawMessage{}, schemaPath); err != nil {
		return nil, err
	}
	return s, nil
}

// buildMiddleware assembles the pipeline. Token requests share transport with
// the call itself. The returned func writes the metrics file and releases the
// history database.
func buildMiddleware(cfg *config.Config, opts *callOptions, log *zap.Logger, transport http.Transport) ([]http.Middleware, func(), error) {
	mws := []http.Middleware{middleware.RequestID(middleware.DefaultRequestIDHeader)}

	if opts.bearer != "" {
		mws = append(mws, middleware.Bearer(opts.bearer))
	}
	if opts.basic != "" {
		user, pass, ok := strings.Cut(opts.basic, ":")
		if !ok {
			return nil, nil, usageError(fmt.Errorf("invalid --basic value (expected user:password)"))
		}
		mws = append(mws, middleware.Basic(user, pass))
	}
	if opts.apiKey != "" {
		name, value, ok := strings.Cut(opts.apiKey, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, nil, usageError(fmt.Errorf("invalid --api-key value (expected \"Name: value\")"))
		}
		mws = append(mws, middleware.APIKeyHeader(name, strings.TrimSpace(value)))
	}
	if opts.apiKeyQ != "" {
		name, value, ok := strings.Cut(opts.apiKeyQ, "=")
		if !ok || name == "" {
			return nil, nil, usageError(fmt.Errorf("invalid --api-key-query value (expected name=value)"))
		}
		mws = append(mws, middleware.APIKeyQuery(name, value))
	}
	if opts.oauth2.TokenURL != "" {
		tokenCaller := http.NewCaller(http.WithTransport(transport), http.WithLogger(log.Named("oauth2")))
		mws = append(mws, middleware.OAuth2(middleware.NewOAuth2Provider(opts.oauth2, tokenCaller)))
	}
	if opts.awsSigV4 != "" {
		region, service, ok := strings.Cut(opts.awsSigV4, ":")
		if !ok || region == "" || service == "" {
			return nil, nil, usageError(fmt.Errorf("invalid --aws-sigv4 value (expected region:service)"))
		}
		mws = append(mws, middleware.AWSSigV4(middleware.AWSCredentials{
			AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken: os.Getenv("AWS_SESSION_TOKEN"),
			Region:       region,
			Service:      service,
		}))
	}

	if cfg.RateLimit > 0 {
		mws = append(mws, middleware.RateLimit(middleware.PerSecond(cfg.RateLimit)))
	}
	mws = append(mws, middleware.Logging(log))

	var registry *prometheus.Registry
	if opts.metrics != "" {
		registry = prometheus.NewRegistry()
		mws = append(mws, middleware.NewMetrics(registry))
	}

	var closers []func()
	if cfg.RecordPath != "" {
		rec, err := recorder.Open(cfg.RecordPath)
		if err != nil {
			return nil, nil, configError(err)
		}
		mws = append(mws, rec)
		closers = append(closers, func() {
			if err := rec.Close(); err != nil {
				log.Warn("failed to close history database", zap.Error(err))
			}
		})
	}
	if registry != nil {
		closers = append(closers, func() {
			if err := prometheus.WriteToTextfile(opts.metrics, registry); err != nil {
				log.Warn("failed to write metrics", zap.Error(err), zap.String("path", opts.metrics))
			}
		})
	}

	closeFn := func() {
		for _, c := range closers {
			c()
		}
	}
	return mws, closeFn, nil
}

func newTransport(cfg *config.Config) http.Transport {
	switch cfg.Transport {
	case config.TransportResty:
		opts := []resty.Option{resty.WithValidateSSL(cfg.GetValidateSSL())}
		if cfg.GetFollowRedirects() {
			opts = append(opts, resty.WithMaxRedirects(cfg.MaxRedirects))
		} else {
			opts = append(opts, resty.WithoutRedirects())
		}
		if cfg.Retries > 0 {
			opts = append(opts, resty.WithRetries(cfg.Retries, DefaultRetryWait))
		}
		if cfg.Proxy != "" {
			opts = append(opts, resty.WithProxy(cfg.Proxy))
		}
		return resty.New(opts...)
	default:
		opts := []http.ClientOption{
			http.WithFollowRedirects(cfg.GetFollowRedirects()),
			http.WithValidateSSL(cfg.GetValidateSSL()),
		}
		if cfg.MaxRedirects > 0 {
			opts = append(opts, http.WithMaxRedirects(cfg.MaxRedirects))
		}
		if cfg.Proxy != "" {
			opts = append(opts, http.WithProxy(cfg.Proxy))
		}
		return http.NewClient(opts...)
	}
}

// perform runs the call with the result shape selected on the command line.
// The value itself is not needed: the raw exchange is printed instead.
func perform(ctx context.Context, caller *http.Caller, desc *http.Descriptor, opts *callOptions) error {
	errBody := http.ErrorBody[any]()
	var err error
	switch {
	case opts.empty:
		_, err = http.Call(ctx, caller, desc, http.Empty(), errBody)
	case opts.schemaPath != "":
		_, err = http.Call(ctx, caller, desc, http.Decode[json.RawMessage](), errBody)
	default:
		_, err = http.Call(ctx, caller, desc, http.Bytes(), errBody)
	}
	return err
}
