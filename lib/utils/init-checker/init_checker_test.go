package initchecker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type provider interface{ Name() string }

type impl struct{}

func (*impl) Name() string { return "impl" }

func TestCheckInit(t *testing.T) {
	var typedNil *impl
	var p provider = typedNil
	require.PanicsWithValue(t, "не инициализированы зависимости: store, audit", func() {
		CheckInit("store", nil, "audit", p, "ok", &impl{})
	})
	require.NotPanics(t, func() {
		CheckInit("ok", &impl{})
	})
}
