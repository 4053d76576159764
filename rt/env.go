package rt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

type (
	// Service is an external collaborator callable as Svc.method(args).
	Service func(ctx context.Context, args []Value) (Value, error)

	// Env is everything a program talks to outside of itself.
	Env struct {
		Out   io.Writer
		Lines LineReader
		HTTP  *http.Client
		Now   func() time.Time

		// Color enables terminal colors for service output.
		Color bool

		mu       sync.RWMutex
		services map[string]Service
	}

	LineReader interface {
		ReadLine(prompt string) (string, error)
	}

	plainLines struct {
		r *bufio.Reader
		w io.Writer
	}

	termLines struct {
		mu sync.Mutex
		st *liner.State
	}

	envCtxKey struct{}
)

const (
	reset = "\x1b[0m"
	cyan  = "\x1b[36m"
	blue  = "\x1b[34m"
	red   = "\x1b[31m"
)

var defaultEnv = sync.OnceValue(func() *Env {
	e := NewEnv(os.Stdin, os.Stdout)

	e.Color = isatty.IsTerminal(os.Stdout.Fd())

	if isatty.IsTerminal(os.Stdin.Fd()) && liner.TerminalSupported() {
		e.Lines = &termLines{}
	}

	return e
})

// NewEnv creates an Env with the builtin services registered.
func NewEnv(in io.Reader, out io.Writer) *Env {
	e := &Env{
		Out:      out,
		Lines:    &plainLines{r: bufio.NewReader(in), w: out},
		HTTP:     &http.Client{},
		Now:      time.Now,
		services: map[string]Service{},
	}

	registerBuiltins(e)

	return e
}

// DefaultEnv is the process wide Env on stdin and stdout.
func DefaultEnv() *Env { return defaultEnv() }

func WithEnv(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, envCtxKey{}, e)
}

// EnvFromContext returns the Env of ctx or DefaultEnv.
func EnvFromContext(ctx context.Context) *Env {
	if e, ok := ctx.Value(envCtxKey{}).(*Env); ok {
		return e
	}

	return DefaultEnv()
}

// Register adds or replaces a service of the default Env.
func Register(name string, s Service) {
	DefaultEnv().Register(name, s)
}

func (e *Env) Register(name string, s Service) {
	defer e.mu.Unlock()
	e.mu.Lock()

	e.services[name] = s
}

func (e *Env) Service(name string) Service {
	defer e.mu.RUnlock()
	e.mu.RLock()

	return e.services[name]
}

func (e *Env) Close() error {
	if c, ok := e.Lines.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

func (e *Env) paint(color, s string) string {
	if !e.Color {
		return s
	}

	return color + s + reset
}

// Invoke calls a service by its Svc.method name.
func Invoke(ctx context.Context, name string, args ...Value) Value {
	s := EnvFromContext(ctx).Service(name)
	if s == nil {
		fail(name, ErrUnknownService)
	}

	v, err := s(ctx, args)
	if err != nil {
		fail(name, err)
	}

	return v
}

func (l *plainLines) ReadLine(prompt string) (string, error) {
	fmt.Fprint(l.w, prompt)

	return l.r.ReadString('\n')
}

func (l *termLines) ReadLine(prompt string) (string, error) {
	defer l.mu.Unlock()
	l.mu.Lock()

	if l.st == nil {
		l.st = liner.NewLiner()
		l.st.SetCtrlCAborts(true)
	}

	return l.st.Prompt(prompt)
}

func (l *termLines) Close() error {
	defer l.mu.Unlock()
	l.mu.Lock()

	if l.st == nil {
		return nil
	}

	return l.st.Close()
}
