package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/podexec/internal/log"
)

func TestCtxWithValues(t *testing.T) {
	tests := map[string]struct {
		ctx       func() context.Context
		kv        log.Kv
		expValues log.Kv
	}{
		"Setting values on an empty context should store them.": {
			ctx:       context.Background,
			kv:        log.Kv{"a": 1},
			expValues: log.Kv{"a": 1},
		},

		"Setting values on a context with values should merge them.": {
			ctx: func() context.Context {
				return log.CtxWithValues(context.Background(), log.Kv{"a": 1, "b": 2})
			},
			kv:        log.Kv{"b": 3, "c": 4},
			expValues: log.Kv{"a": 1, "b": 3, "c": 4},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := log.CtxWithValues(test.ctx(), test.kv)
			assert.Equal(t, test.expValues, log.ValuesFromCtx(ctx))
		})
	}
}

func TestValuesFromCtxWithoutValues(t *testing.T) {
	assert.Equal(t, log.Kv{}, log.ValuesFromCtx(context.Background()))
}
