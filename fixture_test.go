package needle_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/danpasecinic/needle-invoke"
	"github.com/danpasecinic/needle-invoke/needletest"
	"github.com/danpasecinic/needle-invoke/types"
)

const (
	greeterClass      = "shop.Greeter"
	politeClass       = "shop.PoliteGreeter"
	connectionClass   = "shop.Connection"
	transformersClass = "shop.Transformers"
	wrappersClass     = "shop.Wrappers"
	suffixClass       = "shop.Suffix"
	mathClass         = "shop.Math"
)

var errBoom = errors.New("boom")

type greeter struct {
	prefix string
}

type connection struct {
	id     int64
	closed atomic.Bool
}

type suffixer struct{}

func (suffixer) Transform(value any) (any, error) {
	return fmt.Sprintf("%v!", value), nil
}

// shop builds a fresh set of class descriptors. rec may be nil.
func shop(rec *needletest.Recorder) []*types.ClassInfo {
	record := func(event string) {
		if rec != nil {
			rec.Record(event)
		}
	}
	str := types.Prim(types.String)

	return []*types.ClassInfo{
		{
			Name: greeterClass,
			New:  func() (any, error) { return &greeter{prefix: "hello "}, nil },
			Methods: []*types.MethodInfo{
				{
					Name:   "Hello",
					Params: []types.Type{str},
					Return: str,
					Func: func(_ context.Context, receiver any, args []any) (any, error) {
						record("target")
						return receiver.(*greeter).prefix + args[0].(string), nil
					},
				},
				{
					Name:   "Greet",
					Params: []types.Type{types.Class(connectionClass), str},
					Return: str,
					Func: func(_ context.Context, receiver any, args []any) (any, error) {
						conn := args[0].(*connection)
						return fmt.Sprintf("%s%s#%d", receiver.(*greeter).prefix, args[1], conn.id), nil
					},
				},
				{
					Name:   "Fail",
					Params: []types.Type{str},
					Return: str,
					Func: func(_ context.Context, _ any, args []any) (any, error) {
						record("target")
						return nil, fmt.Errorf("%w: %s", errBoom, args[0])
					},
				},
				{
					Name: "Nothing",
					Func: func(context.Context, any, []any) (any, error) {
						return "ignored", nil
					},
				},
			},
		},
		{
			Name:  politeClass,
			Super: greeterClass,
		},
		{
			Name: connectionClass,
		},
		{
			Name: transformersClass,
			Methods: []*types.MethodInfo{
				{
					Name:   "Upper",
					Static: true,
					Params: []types.Type{str},
					Return: str,
					Func: func(_ context.Context, _ any, args []any) (any, error) {
						record("upper")
						return strings.ToUpper(fmt.Sprint(args[0])), nil
					},
				},
				{
					Name:   "Exclaim",
					Static: true,
					Params: []types.Type{str, types.Cleanup},
					Return: str,
					Func: func(_ context.Context, _ any, args []any) (any, error) {
						record("exclaim")
						args[1].(needle.Cleanup)(func() { record("cleanup") })
						return args[0].(string) + "!", nil
					},
				},
				{
					Name:   "Recover",
					Static: true,
					Params: []types.Type{types.Error},
					Return: str,
					Func: func(_ context.Context, _ any, args []any) (any, error) {
						record("recover")
						return "recovered: " + args[0].(error).Error(), nil
					},
				},
				{
					Name:   "Polite",
					Static: true,
					Params: []types.Type{types.Class(greeterClass)},
					Return: types.Class(politeClass),
					Func: func(_ context.Context, _ any, _ []any) (any, error) {
						record("instance")
						return &greeter{prefix: "dear "}, nil
					},
				},
			},
		},
		{
			Name: wrappersClass,
			Methods: []*types.MethodInfo{
				{
					Name:   "Loud",
					Static: true,
					Params: []types.Type{types.Object, types.Arguments, types.Invoker},
					Return: types.Object,
					Func: func(ctx context.Context, _ any, args []any) (any, error) {
						record("wrapper")
						delegate := args[2].(needle.Invoker)
						result, err := delegate.Invoke(ctx, args[0], args[1].([]any))
						if err != nil {
							return nil, err
						}
						return strings.ToUpper(fmt.Sprint(result)), nil
					},
				},
			},
		},
		{
			Name: suffixClass,
			New:  func() (any, error) { return suffixer{}, nil },
		},
		{
			Name: mathClass,
			Methods: []*types.MethodInfo{
				{
					Name:   "Sum",
					Static: true,
					Params: []types.Type{types.Prim(types.Int), types.Prim(types.Int)},
					Return: types.Prim(types.Int),
					Func: func(_ context.Context, _ any, args []any) (any, error) {
						return args[0].(int) + args[1].(int), nil
					},
				},
			},
		},
	}
}

func newShop(tb needletest.TB, rec *needletest.Recorder, opts ...needle.Option) *needletest.TestContainer {
	tb.Helper()

	tc := needletest.New(tb, opts...)
	tc.RequireClasses(shop(rec)...)
	return tc
}

// connections provides dependent connections, counting creations and
// releases.
type connections struct {
	created  atomic.Int64
	released atomic.Int64
}

func (c *connections) provide(ctx context.Context) (*connection, error) {
	return &connection{id: c.created.Add(1)}, nil
}

func (c *connections) destroy(conn *connection) error {
	conn.closed.Store(true)
	c.released.Add(1)
	return nil
}
