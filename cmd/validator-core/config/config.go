// Package config loads Pack's operational limits and the logging and
// metrics settings from flags, environment variables, and an optional YAML
// file, using
// github.com/spf13/viper + github.com/spf13/pflag -- the teacher's only
// viper call site (cmd/simulator/main) follows the same
// BuildFlagSet/BuildViper shape.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/validator-core/pack"
)

// Flag keys, also used as viper config keys (VALIDATOR_CORE_ env prefix).
const (
	PackDepthKey              = "pack-depth"
	BankTileCntKey            = "bank-tile-cnt"
	MaxTxnPerMicroblockKey    = "max-txn-per-microblock"
	MaxMicroblocksPerBlockKey = "max-microblocks-per-block"
	LogLevelKey               = "log-level"
	LogFileKey                = "log-file"
	MetricsAddrKey            = "metrics-addr"
	ConfigFileKey             = "config"
)

// BuildFlagSet declares every flag this command accepts. Consensus-critical
// budgets (max_cost_per_block, fee_per_signature, ...) are deliberately not
// flags -- they are compiled-in defaults from pack.DefaultLimits, matching
// §2's "only the operational limits ... are meant to be overridden."
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("validator-core", pflag.ContinueOnError)

	defaults := pack.DefaultLimits()
	fs.Int(PackDepthKey, defaults.PackDepth, "maximum resident pending transactions")
	fs.Int(BankTileCntKey, defaults.BankTileCnt, "number of bank-tile workers pulling microblocks")
	fs.Uint32(MaxTxnPerMicroblockKey, defaults.MaxTxnPerMicroblock, "maximum transactions per microblock")
	fs.Uint64(MaxMicroblocksPerBlockKey, defaults.MaxMicroblocksPerBlock, "maximum microblocks per block")
	fs.String(LogLevelKey, "info", "log level: trace, debug, info, warn, error, crit")
	fs.String(LogFileKey, "", "optional rotating log file path (empty disables file logging)")
	fs.String(MetricsAddrKey, "", "address to serve /metrics on (empty disables the metrics server)")
	fs.String(ConfigFileKey, "", "optional YAML config file")
	return fs
}

// BuildViper binds fs to a new viper.Viper, parses args against it, and
// layers in an optional config file and the VALIDATOR_CORE_ environment
// prefix. Returns pflag.ErrHelp on -h/--help, matching the teacher's
// simulator CLI's handling of that sentinel.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}
	v.SetEnvPrefix("VALIDATOR_CORE")
	v.AutomaticEnv()

	if path := v.GetString(ConfigFileKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return v, nil
}

// Config is the resolved configuration for a validator-core run.
type Config struct {
	Limits        pack.Limits
	LogLevel      string
	LogFile       string
	MetricsAddr   string
}

// Build resolves a Config from a populated viper.Viper, applying the
// operational overrides on top of pack.DefaultLimits and validating the
// result.
func Build(v *viper.Viper) (Config, error) {
	limits := pack.DefaultLimits()
	limits.PackDepth = v.GetInt(PackDepthKey)
	limits.BankTileCnt = v.GetInt(BankTileCntKey)
	limits.MaxTxnPerMicroblock = v.GetUint32(MaxTxnPerMicroblockKey)
	limits.MaxMicroblocksPerBlock = v.GetUint64(MaxMicroblocksPerBlockKey)

	if err := limits.Validate(); err != nil {
		return Config{}, err
	}

	return Config{
		Limits:      limits,
		LogLevel:    v.GetString(LogLevelKey),
		LogFile:     v.GetString(LogFileKey),
		MetricsAddr: v.GetString(MetricsAddrKey),
	}, nil
}
