package rt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

// UserAgent is sent by HTTP.get.
const UserAgent = "GojoLang/1.0"

func registerBuiltins(e *Env) {
	e.services["DB.log"] = e.dbLog
	e.services["Console.read"] = e.consoleRead
	e.services["Util.now"] = e.utilNow
	e.services["Util.to_int"] = e.utilToInt
	e.services["HTTP.get"] = e.httpGet
}

func (e *Env) dbLog(ctx context.Context, args []Value) (Value, error) {
	l := make([]string, len(args))

	for i, a := range args {
		l[i] = a.String()
	}

	fmt.Fprintln(e.Out, e.paint(cyan, "  [DB] Log: "+strings.Join(l, " ")))

	return Value{}, nil
}

func (e *Env) consoleRead(ctx context.Context, args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return Value{}, err
	}

	prompt := e.paint(blue, "  [Console]  "+args[0].String()+": ")

	if _, ok := e.Lines.(*termLines); ok {
		prompt = "  [Console]  " + args[0].String() + ": "
	}

	line, err := e.Lines.ReadLine(prompt)
	if err != nil && !errors.Is(err, io.EOF) {
		return Value{}, errors.Wrap(err, "read line")
	}

	return Of(strings.TrimSpace(line)), nil
}

func (e *Env) utilNow(ctx context.Context, args []Value) (Value, error) {
	if err := arity(args, 0); err != nil {
		return Value{}, err
	}

	return Of(e.Now().UnixMilli()), nil
}

// utilToInt parses decimal text. Malformed input is 0.
func (e *Env) utilToInt(ctx context.Context, args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return Value{}, err
	}

	if args[0].Kind() == KindInt {
		return args[0], nil
	}

	x, err := strconv.ParseInt(strings.TrimSpace(args[0].String()), 10, 64)
	if err != nil {
		x = 0
	}

	return Of(x), nil
}

// httpGet returns the response body or an "Error: ..." text.
func (e *Env) httpGet(ctx context.Context, args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return Value{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", args[0].String(), nil)
	if err != nil {
		return Of("Error: " + err.Error()), nil
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return Of("Error: " + err.Error()), nil
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Of("Error: " + err.Error()), nil
	}

	return Of(string(data)), nil
}

func arity(args []Value, n int) error {
	if len(args) != n {
		return errors.New("want %d args, got %d", n, len(args))
	}

	return nil
}
