package crawler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// Target identifies the item the crawler should refresh. Exactly one of ID
// or Name is expected; ID wins when both are set.
type Target struct {
	ID   int64
	Name string
}

func (t Target) empty() bool {
	return t.ID <= 0 && strings.TrimSpace(t.Name) == ""
}

// Invoker runs the external price crawler for a single item. Success or
// failure is communicated solely via the process exit code; the crawler is
// expected, but not verified here, to have written fresh prices to the store.
type Invoker interface {
	Invoke(ctx context.Context, target Target) error
}

type processInvoker struct {
	cfg *Config
}

// NewInvoker returns an Invoker that spawns the configured crawler command.
func NewInvoker(cfg *Config) Invoker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &processInvoker{cfg: cfg}
}

func (p *processInvoker) Invoke(ctx context.Context, target Target) error {
	if target.empty() {
		return ErrInvalidTarget
	}

	args := make([]string, 0, len(p.cfg.Args)+3)
	args = append(args, p.cfg.Args...)
	args = append(args, p.cfg.Script)
	if target.ID > 0 {
		args = append(args, "--item-id", strconv.FormatInt(target.ID, 10))
	} else {
		args = append(args, "--item-name", target.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.cfg.Command, args...)
	cmd.Dir = p.cfg.WorkDir
	cmd.Env = p.environ()

	logx.Infof("crawler: invoking %s %s", p.cfg.Command, strings.Join(args, " "))

	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, p.cfg.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Output: string(out)}
		}
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
		logx.Debugf("crawler: output: %s", trimmed)
	}
	return nil
}

func (p *processInvoker) environ() []string {
	env := os.Environ()
	for k, v := range p.cfg.Env {
		env = append(env, k+"="+v)
	}
	return env
}
