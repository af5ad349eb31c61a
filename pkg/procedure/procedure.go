// Package procedure invokes named remote procedures on the managed database,
// either through PostgREST's RPC endpoint or over a direct SQL connection.
package procedure

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	DriverPostgREST = "postgrest"
	DriverSQL       = "sql"
)

var (
	ErrNoTargets      = errors.New("NO_TARGETS")
	ErrTimeout        = errors.New("TIMEOUT")
	ErrNetwork        = errors.New("NETWORK_ERROR")
	ErrInvalidPayload = errors.New("INVALID_PAYLOAD")
)

// Target is the namespace (schema) a procedure is resolved in. The zero value
// is the connection's default namespace.
type Target string

const DefaultTarget Target = ""

func (t Target) String() string {
	if t == DefaultTarget {
		return "default"
	}
	return string(t)
}

type Param struct {
	Name  string
	Value any
}

// Params keeps argument order; positional dialects depend on it.
type Params []Param

func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p))
	for _, param := range p {
		out[param.Name] = param.Value
	}
	return out
}

type Caller interface {
	Call(ctx context.Context, target Target, name string, params Params) (json.RawMessage, error)
}

type Config struct {
	Driver     string        `mapstructure:"driver"`
	URL        string        `mapstructure:"url"`
	ServiceKey string        `mapstructure:"service_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Targets    []string      `mapstructure:"targets"`
}

func (c Config) CallTargets() []Target {
	targets := make([]Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		targets = append(targets, Target(t))
	}
	return targets
}
