/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/neo-migrate/cli/flags"
	"github.com/nspcc-dev/neo-migrate/cli/input"
	"github.com/nspcc-dev/neo-migrate/pkg/config"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultNetwork is the network used if none is specified.
const DefaultNetwork = "privnet"

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// ConfigFile is a flag for commands that use configuration file.
var ConfigFile = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the configuration file (" + config.DefaultConfigFile + " in the current directory by default)",
}

// Network is a flag for choosing the configured network to operate on.
var Network = cli.StringFlag{
	Name:  "network, n",
	Value: DefaultNetwork,
	Usage: "name of the network from the configuration file",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

// NetworkOverrides returns a set of flags that override network
// configuration. A new set is made on every call because of the address
// flag value.
func NetworkOverrides() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  RPCEndpointFlag + ", r",
			Usage: "RPC node address (overrides configuration)",
		},
		cli.DurationFlag{
			Name:  "timeout, s",
			Usage: "timeout for the whole operation including transaction awaiting (overrides configuration)",
		},
		cli.StringFlag{
			Name:  "wallet, w",
			Usage: "wallet to use to get the key for transaction signing; conflicts with --wallet-config flag",
		},
		cli.StringFlag{
			Name:  "wallet-config",
			Usage: "path to wallet config to use to get the key for transaction signing; conflicts with --wallet flag",
		},
		flags.NewAddressFlag("address, a", "address of the deployer account (wallet's default is used if not specified)"),
	}
}

var errConflictingWalletFlags = errors.New("--wallet flag conflicts with --wallet-config flag, please, provide one of them to specify wallet location")

// GetConfigFromContext loads configuration from the file given in the
// context or from the default one.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	if configFile := ctx.String("config-file"); configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load(".")
}

// GetNetworkConfig returns the name and configuration of the network chosen
// in the context with all overrides applied. The result is validated.
func GetNetworkConfig(ctx *cli.Context, cfg config.Config) (string, config.Network, error) {
	name := ctx.String("network")
	if name == "" {
		name = DefaultNetwork
	}
	n, ok := cfg.Networks[name]
	if !ok {
		if !ctx.IsSet(RPCEndpointFlag) {
			_, err := cfg.Network(name)
			return "", config.Network{}, err
		}
		// Ad-hoc network completely specified by flags.
		n.Timeout = config.DefaultNetworkTimeout
	}
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		n.RPCEndpoint = endpoint
	}
	if dur := ctx.Duration("timeout"); dur != 0 {
		n.Timeout = dur
	}
	var (
		wPath   = ctx.String("wallet")
		wConfig = ctx.String("wallet-config")
	)
	if wPath != "" && wConfig != "" {
		return "", config.Network{}, errConflictingWalletFlags
	}
	if wPath != "" {
		n.Wallet, n.WalletConfig = wPath, ""
	}
	if wConfig != "" {
		n.Wallet, n.WalletConfig = "", wConfig
	}
	if addr := flags.GetAddress(ctx, "address"); addr != nil {
		n.Address = address.Uint160ToString(addr.Uint160())
	}
	if err := n.Validate(); err != nil {
		return "", config.Network{}, fmt.Errorf("network %s: %w", name, err)
	}
	return name, n, nil
}

// GetTimeoutContext returns a context.Context with the given timeout or the
// default one if it's zero.
func GetTimeoutContext(dur time.Duration) (context.Context, func()) {
	if dur == 0 {
		dur = config.DefaultNetworkTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// RPCClient is an RPC client that can be used by Actor.
type RPCClient interface {
	actor.RPCActor

	Close()
}

// GetRPCClient returns an RPC client instance for the given endpoint. Web
// socket endpoints get a WSClient which allows to await transactions via
// notifications.
func GetRPCClient(gctx context.Context, endpoint string) (RPCClient, cli.ExitCoder) {
	var (
		c   RPCClient
		err error
	)
	if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		var wsc *rpcclient.WSClient
		wsc, err = rpcclient.NewWS(gctx, endpoint, rpcclient.WSOptions{})
		if err == nil {
			err = wsc.Init()
			c = wsc
		}
	} else {
		var hc *rpcclient.Client
		hc, err = rpcclient.New(gctx, endpoint, rpcclient.Options{})
		if err == nil {
			err = hc.Init()
			c = hc
		}
	}
	if err != nil {
		if c != nil {
			c.Close()
		}
		return nil, cli.NewExitError(fmt.Errorf("can't connect to %s: %w", endpoint, err), 1)
	}
	return c, nil
}

// GetRPCWithActor returns an RPC client instance and Actor instance with the
// given account as the only signer.
func GetRPCWithActor(gctx context.Context, endpoint string, acc *wallet.Account) (RPCClient, *actor.Actor, cli.ExitCoder) {
	c, err := GetRPCClient(gctx, endpoint)
	if err != nil {
		return nil, nil, err
	}

	a, actorErr := actor.NewSimple(c, acc)
	if actorErr != nil {
		c.Close()
		return nil, nil, cli.NewExitError(fmt.Errorf("failed to create Actor: %w", actorErr), 1)
	}
	return c, a, nil
}

// GetAccount returns unlocked account and its wallet as specified in the
// network configuration. If address is not set, default address is used.
// The wallet must be closed by the caller once the account is no longer
// needed, closing it wipes account keys.
func GetAccount(n config.Network) (*wallet.Account, *wallet.Wallet, error) {
	var (
		wPath = n.Wallet
		pass  *string
	)
	if n.WalletConfig != "" {
		cfg, err := config.ReadWalletConfig(n.WalletConfig)
		if err != nil {
			return nil, nil, err
		}
		wPath = cfg.Path
		pass = &cfg.Password
	}

	wall, err := wallet.NewWalletFromFile(wPath)
	if err != nil {
		return nil, nil, err
	}

	var addr util.Uint160
	if n.Address != "" {
		addr, err = flags.ParseAddress(n.Address)
		if err != nil {
			return nil, wall, fmt.Errorf("invalid deployer address: %w", err)
		}
	} else {
		addr = wall.GetChangeAddress()
		if addr.Equals(util.Uint160{}) {
			return nil, wall, errors.New("can't get default address")
		}
	}

	acc, err := GetUnlockedAccount(wall, addr, pass)
	return acc, wall, err
}

// GetUnlockedAccount returns account from wallet, address and uses pass to unlock specified account if given.
// If the password is not given, then it is requested from user.
func GetUnlockedAccount(wall *wallet.Wallet, addr util.Uint160, pass *string) (*wallet.Account, error) {
	acc := wall.GetAccount(addr)
	if acc == nil {
		return nil, fmt.Errorf("wallet contains no account for '%s'", address.Uint160ToString(addr))
	}

	if acc.CanSign() || acc.EncryptedWIF == "" {
		return acc, nil
	}

	if pass == nil {
		rawPass, err := input.ReadPassword(
			fmt.Sprintf("Enter account %s password > ", address.Uint160ToString(addr)))
		if err != nil {
			return nil, fmt.Errorf("error reading password: %w", err)
		}
		trimmed := strings.TrimRight(rawPass, "\n")
		pass = &trimmed
	}
	err := acc.Decrypt(*pass, wall.Scrypt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, err
		}
		cc.OutputPaths = []string{logPath}
	}

	return cc.Build()
}
