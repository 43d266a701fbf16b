// SPDX-License-Identifier: MPL-2.0

package counter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/te2run/te2run/internal/functions"
)

type (
	// CreateCounterFunction implements createCounter(name).
	CreateCounterFunction struct{}
	// CreateCounterWithParamsFunction implements createCounterWithParams(name, start, step).
	CreateCounterWithParamsFunction struct{}
	// IncrementCounterFunction implements incrementCounter(name).
	IncrementCounterFunction struct{}
	// IncrementCounterByValueFunction implements incrementCounterByValue(name, delta).
	IncrementCounterByValueFunction struct{}
	// GetCounterFunction implements getCounter(name).
	GetCounterFunction struct{}
	// ResetCounterFunction implements resetCounter(name).
	ResetCounterFunction struct{}
)

// Functions returns one instance of every counter function.
func Functions() []functions.Function {
	return []functions.Function{
		IncrementCounterFunction{},
		IncrementCounterByValueFunction{},
		GetCounterFunction{},
		CreateCounterFunction{},
		CreateCounterWithParamsFunction{},
		ResetCounterFunction{},
	}
}

// Install registers every counter function into r.
func Install(r *functions.Registry) error {
	for _, fn := range Functions() {
		if err := r.AddBuiltIn(fn); err != nil {
			return err
		}
	}
	return nil
}

func (CreateCounterFunction) Name() string { return "createCounter" }

func (CreateCounterFunction) Call(ctx context.Context, call functions.Call) (string, error) {
	return withService(call, 1, func(svc *Service) (int64, error) {
		return svc.Create(ctx, call.Args[0])
	})
}

func (CreateCounterWithParamsFunction) Name() string { return "createCounterWithParams" }

func (CreateCounterWithParamsFunction) Call(ctx context.Context, call functions.Call) (string, error) {
	return withService(call, 3, func(svc *Service) (int64, error) {
		start, err := parseInt(call, 1)
		if err != nil {
			return 0, err
		}
		step, err := parseInt(call, 2)
		if err != nil {
			return 0, err
		}
		return svc.CreateWithParams(ctx, call.Args[0], start, step)
	})
}

func (IncrementCounterFunction) Name() string { return "incrementCounter" }

func (IncrementCounterFunction) Call(ctx context.Context, call functions.Call) (string, error) {
	return withService(call, 1, func(svc *Service) (int64, error) {
		return svc.Increment(ctx, call.Args[0])
	})
}

func (IncrementCounterByValueFunction) Name() string { return "incrementCounterByValue" }

func (IncrementCounterByValueFunction) Call(ctx context.Context, call functions.Call) (string, error) {
	return withService(call, 2, func(svc *Service) (int64, error) {
		delta, err := parseInt(call, 1)
		if err != nil {
			return 0, err
		}
		return svc.IncrementBy(ctx, call.Args[0], delta)
	})
}

func (GetCounterFunction) Name() string { return "getCounter" }

func (GetCounterFunction) Call(ctx context.Context, call functions.Call) (string, error) {
	return withService(call, 1, func(svc *Service) (int64, error) {
		return svc.Get(ctx, call.Args[0])
	})
}

func (ResetCounterFunction) Name() string { return "resetCounter" }

func (ResetCounterFunction) Call(ctx context.Context, call functions.Call) (string, error) {
	return withService(call, 1, func(svc *Service) (int64, error) {
		return svc.Reset(ctx, call.Args[0])
	})
}

// withService checks arity, resolves the counter service and formats the result.
func withService(call functions.Call, arity int, op func(*Service) (int64, error)) (string, error) {
	if err := functions.ExpectArgs(call, arity); err != nil {
		return "", err
	}
	svc, err := lookupService(call)
	if err != nil {
		return "", err
	}
	v, err := op(svc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", call.Name, err)
	}
	return strconv.FormatInt(v, 10), nil
}

func lookupService(call functions.Call) (*Service, error) {
	if call.Services == nil {
		return nil, fmt.Errorf("%s: %w: %s", call.Name, functions.ErrServiceUnavailable, ServiceName)
	}
	raw, ok := call.Services.Lookup(ServiceName)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", call.Name, functions.ErrServiceUnavailable, ServiceName)
	}
	svc, ok := raw.(*Service)
	if !ok {
		return nil, fmt.Errorf("%s: service %s has unexpected type %T", call.Name, ServiceName, raw)
	}
	return svc, nil
}

func parseInt(call functions.Call, idx int) (int64, error) {
	v, err := strconv.ParseInt(call.Args[idx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %w", call.Name, idx+1, err)
	}
	return v, nil
}
