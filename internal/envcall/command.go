package envcall

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/envelope-client/internal/logger"
	"github.com/samvad-hq/envelope-client/pkg/apiclient"
	"github.com/samvad-hq/envelope-client/pkg/envelope"
	"github.com/samvad-hq/envelope-client/pkg/httpclient"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Exit code used when the service answered with a failed envelope.
const exitFailedEnvelope = 2

// NewApp returns the envcall command. Results are written to out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "envcall",
		Usage:     "send one call to an envelope service and print the envelope",
		ArgsUsage: "<controller> <endpoint>",
		Writer:    out,
		// Exit codes are left to the caller instead of cli's os.Exit.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Aliases: []string{"u"}, EnvVars: []string{"BASE_URL"}, Required: true, Usage: "service base URL"},
			&cli.StringFlag{Name: "method", Aliases: []string{"X"}, Value: http.MethodGet, Usage: "HTTP verb"},
			&cli.StringFlag{Name: "payload", Aliases: []string{"d"}, Usage: "JSON payload; flattened into the query for GET and DELETE"},
			&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "extra header as Key=Value (repeatable)"},
			&cli.BoolFlag{Name: "headers-read", Usage: "stream the body instead of buffering it"},
			&cli.DurationFlag{Name: "timeout", Value: 15 * time.Second, Usage: "request timeout"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "json", Usage: "json or yaml"},
			&cli.StringFlag{Name: "log-level", EnvVars: []string{"LOG_LEVEL"}, Value: "warn", Usage: "log level written to stderr"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("expected <controller> <endpoint>", 1)
	}

	call, err := buildCall(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	zl := logger.NewStderr(c.String("log-level"))
	defer func() { _ = zl.Sync() }()

	transport := httpclient.NewRestyClient(httpclient.NewRestyHTTPClient(c.String("base-url"), c.Duration("timeout")))
	client := apiclient.New(transport, apiclient.WithLogger(logger.NewZapLogger(zl)))

	env, err := apiclient.Send[json.RawMessage, int](c.Context, client, call)
	if err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			return cli.Exit(fmt.Sprintf("service answered %d: %s", se.StatusCode, se.Body), 1)
		}
		return cli.Exit(err.Error(), 1)
	}

	if err := render(c.App.Writer, c.String("output"), env); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if !env.Success {
		return cli.Exit("", exitFailedEnvelope)
	}
	return nil
}

func buildCall(c *cli.Context) (apiclient.Call, error) {
	call := apiclient.Call{
		Method:     strings.ToUpper(c.String("method")),
		Controller: c.Args().Get(0),
		Endpoint:   c.Args().Get(1),
	}
	if c.Bool("headers-read") {
		call.Completion = httpclient.CompletionHeadersRead
	}

	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return call, err
	}
	call.Headers = headers

	payload, err := parsePayload(call.Method, c.String("payload"))
	if err != nil {
		return call, err
	}
	call.Payload = payload
	return call, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		k, v, ok := strings.Cut(h, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q (expected Key=Value)", h)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

// parsePayload keeps body payloads verbatim. Query verbs need an object so
// its members can become parameters.
func parsePayload(method, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if method == http.MethodGet || method == http.MethodDelete {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("payload for %s must be a JSON object: %w", method, err)
		}
		return m, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, errors.New("payload is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// printable mirrors the envelope with data decoded generically so YAML
// renders it as structure rather than bytes.
type printable struct {
	Data        any     `json:"data" yaml:"data"`
	Success     bool    `json:"success" yaml:"success"`
	Message     *string `json:"message" yaml:"message"`
	MessageType *string `json:"messageType" yaml:"messageType"`
	StatusCode  int     `json:"statusCode" yaml:"statusCode"`
}

func render(w io.Writer, format string, env envelope.Envelope[json.RawMessage, int]) error {
	p := printable{
		Success:    env.Success,
		Message:    env.Message,
		StatusCode: env.StatusCode,
	}
	if env.MessageType != nil {
		name := env.MessageType.String()
		p.MessageType = &name
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p.Data); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}

	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output %q (expected json or yaml)", format)
	}
}
