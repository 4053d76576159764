package rt

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failure(t *testing.T, f func()) (r *Failure) {
	t.Helper()

	defer func() {
		p := recover()
		require.NotNil(t, p, "expected failure")

		var ok bool
		r, ok = p.(*Failure)
		require.True(t, ok, "%T: %v", p, p)
	}()

	f()

	return nil
}

func TestAdd(t *testing.T) {
	assert.Equal(t, int64(5), Add(Of(2), Of(3)).Int())
	assert.Equal(t, "ab", Add(Of("a"), Of("b")).Text())
	assert.Equal(t, "n=5", Add(Of("n="), Of(int64(5))).Text())

	f := failure(t, func() { Add(Of(1), Of("a")) })
	assert.True(t, errors.Is(f, ErrUnsupported), "%v", f)
	assert.Equal(t, "+", f.Op)
}

func TestMul(t *testing.T) {
	assert.Equal(t, int64(12), Mul(Of(3), Of(4)).Int())
	assert.Equal(t, "ababab", Mul(Of("ab"), Of(3)).Text())
	assert.Equal(t, "", Mul(Of("ab"), Of(0)).Text())

	f := failure(t, func() { Mul(Of("ab"), Of(-1)) })
	assert.True(t, errors.Is(f, ErrNegativeRepeat), "%v", f)

	f = failure(t, func() { Mul(Of(2), Of("ab")) })
	assert.True(t, errors.Is(f, ErrUnsupported), "%v", f)
}

func TestValue(t *testing.T) {
	assert.Equal(t, KindInt, Of(1).Kind())
	assert.Equal(t, KindText, Of("").Kind())
	assert.Equal(t, KindBool, Of(true).Kind())
	assert.Equal(t, KindNil, Of(nil).Kind())
	assert.Equal(t, KindArray, Of([]int64{1}).Kind())
	assert.Equal(t, Of(3), Of(Of(3)))

	assert.Equal(t, "()", Value{}.String())
	assert.Equal(t, "-7", Of(-7).String())
	assert.Equal(t, "[1 2]", Of([]int64{1, 2}).String())
	assert.Equal(t, "x", Format("x"))
	assert.Equal(t, "true", Format(true))

	assert.Equal(t, []Value{Of(1), Of(2)}, Of([]int64{1, 2}).Array())

	assert.True(t, Equal(Of(1), Of(int64(1))))
	assert.False(t, Equal(Of(1), Of("1")))

	f := failure(t, func() { Of("x").Int() })
	assert.True(t, errors.Is(f, ErrKind), "%v", f)
}

func TestIndex(t *testing.T) {
	l := []string{"a", "b"}

	assert.Equal(t, "b", Index(l, 1))

	for _, i := range []int64{2, -1} {
		f := failure(t, func() { Index(l, i) })
		assert.True(t, errors.Is(f, ErrIndex), "%v", f)
	}
}

func TestJSONField(t *testing.T) {
	src := `{"name": "gojo\n", "n": 5, "obj": {"a": [1,2]}, "nil": null}`

	assert.Equal(t, "gojo\n", JSONField(src, "name"))
	assert.Equal(t, "5", JSONField(src, "n"))
	assert.Equal(t, `{"a":[1,2]}`, JSONField(src, "obj"))
	assert.Equal(t, `{"b":1}`, JSONField(`{"a": {"b" : 1}}`, "a"))
	assert.Equal(t, "null", JSONField(src, "nil"))
	assert.Equal(t, JSONError, JSONField(src, "missing"))
	assert.Equal(t, JSONError, JSONField("not json", "name"))

	for _, bad := range []string{
		`{"a":5,`,
		`{"a":5} garbage`,
		`{"a":5`,
		``,
	} {
		assert.Equal(t, JSONError, JSONField(bad, "a"), "%q", bad)
	}
}

func TestTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})

	task := Spawn(ctx, func(ctx context.Context) Value {
		<-started
		return Of(42)
	})

	cancel()
	close(started)

	assert.Equal(t, int64(42), Await(context.Background(), task).Int())
	assert.True(t, task.Done())

	bad := Spawn(context.Background(), func(ctx context.Context) Value {
		return Of(Index([]int64{}, 3))
	})

	f := failure(t, func() { Await(context.Background(), bad) })
	assert.True(t, errors.Is(f, ErrIndex), "%v", f)
}

func TestInfra(t *testing.T) {
	var out bytes.Buffer

	e := NewEnv(strings.NewReader(""), &out)

	e.Register("Slow.op", func(ctx context.Context, args []Value) (Value, error) {
		<-ctx.Done()
		return Value{}, nil
	})

	e.Register("Echo.op", func(ctx context.Context, args []Value) (Value, error) {
		return Of(args[0].Text() + args[1].Text()), nil
	})

	ctx := WithEnv(context.Background(), e)

	assert.Equal(t, "a5", Infra(ctx, 1000, "Echo", "op", "a", Format(5)).Text())

	f := failure(t, func() { Infra(ctx, 10, "Slow", "op") })
	assert.True(t, errors.Is(f, ErrTimeout), "%v", f)
	assert.Equal(t, "Slow.op", f.Op)

	f = failure(t, func() { Infra(ctx, 10, "No", "such") })
	assert.True(t, errors.Is(f, ErrUnknownService), "%v", f)

	Infra(ctx, 1000, "DB", "log", "saved")
	assert.Equal(t, "  [DB] Log: saved\n", out.String())
}

func TestServices(t *testing.T) {
	var out bytes.Buffer

	e := NewEnv(strings.NewReader("  alice \n"), &out)
	e.Now = func() time.Time { return time.UnixMilli(1234) }

	ctx := WithEnv(context.Background(), e)

	assert.Equal(t, "alice", Invoke(ctx, "Console.read", Of("name")).Text())
	assert.Equal(t, "  [Console]  name: ", out.String())
	assert.Equal(t, "", Invoke(ctx, "Console.read", Of("again")).Text())

	assert.Equal(t, int64(1234), Invoke(ctx, "Util.now").Int())
	assert.Equal(t, int64(17), Invoke(ctx, "Util.to_int", Of(" 17 ")).Int())
	assert.Equal(t, int64(0), Invoke(ctx, "Util.to_int", Of("x")).Int())

	f := failure(t, func() { Invoke(ctx, "Util.now", Of(1)) })
	assert.Equal(t, "Util.now", f.Op)
}

func TestHTTPGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(req.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	e := NewEnv(strings.NewReader(""), &bytes.Buffer{})
	ctx := WithEnv(context.Background(), e)

	assert.Equal(t, UserAgent, Invoke(ctx, "HTTP.get", Of(srv.URL)).Text())

	r := Invoke(ctx, "HTTP.get", Of("http://127.0.0.1:1/x")).Text()
	assert.True(t, strings.HasPrefix(r, "Error: "), "%v", r)
}

func TestValidate(t *testing.T) {
	assert.Equal(t, "x", Validate("x"))

	defer func(v Validator) { DefaultValidator = v }(DefaultValidator)

	reject := errors.New("rejected")

	DefaultValidator = ValidatorFunc(func(s string) (string, error) {
		if s == "bad" {
			return "", reject
		}

		return strings.ToUpper(s), nil
	})

	assert.Equal(t, "OK", Validate("ok"))

	f := failure(t, func() { Validate("bad") })
	assert.ErrorIs(t, f, reject)
}

func TestRun(t *testing.T) {
	defer func(d time.Duration) { FlushDelay = d }(FlushDelay)
	FlushDelay = time.Millisecond

	var out bytes.Buffer

	e := NewEnv(strings.NewReader(""), &out)

	code := Run(context.Background(), e, func(ctx context.Context) {
		Invoke(ctx, "DB.log", Of("hi"), Of(3))
	})

	assert.Equal(t, 0, code)
	assert.Equal(t, "  [DB] Log: hi 3\n", out.String())

	out.Reset()

	code = Run(context.Background(), e, func(ctx context.Context) {
		Index([]int64{}, 0)
	})

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "runtime failure: index")
}

func TestPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := time.Now()
	Pause(ctx)

	assert.Less(t, time.Since(st), ScopePause)
}
