package execcmd

import (
	"io"
	"os"

	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

// DefaultMaxBuffer is the largest amount of output, in bytes, captured from each of stdout and
// stderr.
const DefaultMaxBuffer = 1024 * 10000

// VerboseEnvVar is the environment variable which turns on verbose command logging when set to
// "true".
const VerboseEnvVar = "VERBOSE"

// Option configures a single Run invocation.
type Option func(*options)

type options struct {
	dir       string
	env       []string
	maxBuffer int
	lggr      logger.Logger

	pipe      bool
	pipeOut   io.Writer
	pipeErr   io.Writer
	verbose   bool
	verboseOK bool // verbose was set explicitly and VERBOSE must not override it
}

func newOptions(opts []Option) *options {
	o := &options{
		maxBuffer: DefaultMaxBuffer,
		lggr:      logger.Nop(),
		pipeOut:   os.Stdout,
		pipeErr:   os.Stderr,
	}

	for _, opt := range opts {
		opt(o)
	}

	if !o.verboseOK {
		o.verbose = os.Getenv(VerboseEnvVar) == "true"
	}

	// Verbose mode always streams the command output.
	if o.verbose {
		o.pipe = true
	}

	return o
}

// WithDir sets the working directory of the command.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv appends KEY=VALUE pairs to the environment inherited from the current process.
func WithEnv(env ...string) Option {
	return func(o *options) { o.env = append(o.env, env...) }
}

// WithMaxBuffer overrides DefaultMaxBuffer. Output beyond the limit fails the command with
// ErrMaxBufferExceeded.
func WithMaxBuffer(n int) Option {
	return func(o *options) { o.maxBuffer = n }
}

// WithLogger sets the logger used for command tracing and failures.
func WithLogger(lggr logger.Logger) Option {
	return func(o *options) { o.lggr = lggr }
}

// WithPipeOutput streams the command output to the stdout and stderr of the current process, in
// addition to capturing it.
func WithPipeOutput() Option {
	return func(o *options) { o.pipe = true }
}

// WithOutputWriters streams the command output to the given writers, in addition to capturing
// it.
func WithOutputWriters(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.pipe = true
		o.pipeOut = stdout
		o.pipeErr = stderr
	}
}

// WithVerbose forces verbose mode on or off regardless of the VERBOSE environment variable.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
		o.verboseOK = true
	}
}
