package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ExecService runs a local command per request. The request is written to
// the command's stdin as JSON and its stdout is the result.
type ExecService struct {
	name    string
	args    []string
	timeout time.Duration
}

type execRequest struct {
	Cmd     string `json:"cmd"`
	InputD6 string `json:"inputD6"`
	InputLv string `json:"inputLv"`
}

// NewExecService parses a whitespace-separated command line.
func NewExecService(commandLine string, timeout time.Duration) (*ExecService, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("empty compute command")
	}
	return &ExecService{name: fields[0], args: fields[1:], timeout: timeout}, nil
}

func (s *ExecService) Compute(ctx context.Context, req Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	in, _ := json.Marshal(execRequest{Cmd: Invocation, InputD6: req.InputD6, InputLv: req.InputLv})

	cmd := exec.CommandContext(ctx, s.name, s.args...)
	cmd.Stdin = bytes.NewReader(append(in, '\n'))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("compute command failed: %w", err)
		}
		return "", fmt.Errorf("compute command failed: %w: %s", err, msg)
	}

	out := stdout.String()
	out = strings.TrimSuffix(out, "\n")
	out = strings.TrimSuffix(out, "\r")
	return out, nil
}
