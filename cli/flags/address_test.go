package flags

import (
	"flag"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestAddress_String(t *testing.T) {
	value := util.Uint160{1, 2, 3}
	addr := Address{
		IsSet: true,
		Value: value,
	}

	require.Equal(t, address.Uint160ToString(value), addr.String())
}

func TestAddress_Set(t *testing.T) {
	value := util.Uint160{1, 2, 3}
	addr := Address{}

	t.Run("bad address", func(t *testing.T) {
		require.Error(t, addr.Set("not an address"))
		require.False(t, addr.IsSet)
	})

	t.Run("positive", func(t *testing.T) {
		require.NoError(t, addr.Set(address.Uint160ToString(value)))
		require.Equal(t, true, addr.IsSet)
		require.Equal(t, value, addr.Value)
	})
}

func TestAddress_Uint160(t *testing.T) {
	value := util.Uint160{4, 5, 6}
	addr := Address{}

	t.Run("not set", func(t *testing.T) {
		require.Panics(t, func() { addr.Uint160() })
	})

	t.Run("success", func(t *testing.T) {
		addr.IsSet = true
		addr.Value = value
		require.Equal(t, value, addr.Uint160())
	})
}

func TestParseAddress(t *testing.T) {
	expected := util.Uint160{1, 2, 3, 4}
	for _, s := range []string{
		address.Uint160ToString(expected),
		expected.StringLE(),
		"0x" + expected.StringLE(),
	} {
		u, err := ParseAddress(s)
		require.NoError(t, err, s)
		require.Equal(t, expected, u)
	}

	_, err := ParseAddress("NotAnAddress")
	require.Error(t, err)
}

func TestAddressFlag(t *testing.T) {
	value := util.Uint160{7, 8, 9}

	t.Run("set", func(t *testing.T) {
		f := NewAddressFlag("address, a", "")
		set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
		f.Apply(set)
		require.NoError(t, set.Parse([]string{"-a", address.Uint160ToString(value)}))
		ctx := cli.NewContext(cli.NewApp(), set, nil)

		a := GetAddress(ctx, "address")
		require.NotNil(t, a)
		require.Equal(t, value, a.Uint160())
	})

	t.Run("not set", func(t *testing.T) {
		f := NewAddressFlag("address, a", "")
		set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
		f.Apply(set)
		require.NoError(t, set.Parse(nil))
		ctx := cli.NewContext(cli.NewApp(), set, nil)

		require.Nil(t, GetAddress(ctx, "address"))
		require.Nil(t, GetAddress(ctx, "missing"))
	})

	t.Run("fresh values", func(t *testing.T) {
		f1 := NewAddressFlag("address", "")
		f2 := NewAddressFlag("address", "")
		require.NoError(t, f1.Value.Set(value.StringLE()))
		require.False(t, f2.Value.(*Address).IsSet)
	})
}
