package main

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/xmlrpc/errors"
	"github.com/kbukum/xmlrpc/server"
)

// registerDemoMethods installs the methods the serve command offers.
func registerDemoMethods(m *server.Methods) error {
	for name, h := range map[string]server.HandlerFunc{
		"sample.add":        sampleAdd,
		"sample.upper":      sampleUpper,
		"echo":              echo,
		"system.serverTime": serverTime,
	} {
		if err := m.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

func sampleAdd(_ context.Context, params []any) (any, error) {
	if err := server.ExpectArgs(params, 2); err != nil {
		return nil, err
	}
	a, err := server.Arg[int](params, 0)
	if err != nil {
		return nil, err
	}
	b, err := server.Arg[int](params, 1)
	if err != nil {
		return nil, err
	}
	sum := int64(a) + int64(b)
	if sum != int64(int32(sum)) {
		return nil, errors.InvalidParams("sum overflows a 32-bit int")
	}
	return int(sum), nil
}

func sampleUpper(_ context.Context, params []any) (any, error) {
	if err := server.ExpectArgs(params, 1); err != nil {
		return nil, err
	}
	s, err := server.Arg[string](params, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

// echo returns its parameters as an array.
func echo(_ context.Context, params []any) (any, error) {
	if params == nil {
		params = []any{}
	}
	return params, nil
}

func serverTime(context.Context, []any) (any, error) {
	return time.Now().UTC().Truncate(time.Second), nil
}
