// Package comparer delegates sprite comparison to an external command.
//
// The command is invoked as `<command...> <before-path> <after-path>`, where an
// empty argument marks a missing side, and must print a JSON document:
//
//	{"states": [{"key": "idle", "status": "Changed",
//	             "before": "<base64 png>", "after": "<base64 png>",
//	             "before_hash": "...", "after_hash": "..."}]}
//
// Status is one of Equal, Added, Removed or Changed. Hashes are optional.
package comparer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ericfisherdev/iconbot/internal/adapter/driven/scratch"
	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SpriteComparer = (*Exec)(nil)

// Exec runs the external compare capability as a subprocess. Inputs are
// staged into a fresh scratch run per call and released on every exit path.
type Exec struct {
	command []string
	timeout time.Duration
	area    *scratch.Area
}

// NewExec creates an Exec comparer. command must name at least the program.
func NewExec(command []string, timeout time.Duration, area *scratch.Area) (*Exec, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("comparer command is empty")
	}
	return &Exec{command: command, timeout: timeout, area: area}, nil
}

type compareOutput struct {
	States []stateJSON `json:"states"`
}

type stateJSON struct {
	Key        string `json:"key"`
	Status     string `json:"status"`
	Before     []byte `json:"before"`
	After      []byte `json:"after"`
	BeforeHash string `json:"before_hash"`
	AfterHash  string `json:"after_hash"`
}

// Compare stages both sides, runs the command, and decodes its report.
func (e *Exec) Compare(ctx context.Context, before, after []byte) ([]model.SubImageDiff, error) {
	run, err := e.area.NewRun("compare")
	if err != nil {
		return nil, err
	}
	defer run.Release()

	beforePath, err := stage(run, "before"+model.SpriteExtension, before)
	if err != nil {
		return nil, err
	}
	afterPath, err := stage(run, "after"+model.SpriteExtension, after)
	if err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.command[1:]...), beforePath, afterPath)
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Dir = run.Dir()
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running comparer: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	var out compareOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decoding comparer output: %w", err)
	}

	diffs := make([]model.SubImageDiff, 0, len(out.States))
	for _, s := range out.States {
		status, err := parseStatus(s.Status)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", s.Key, err)
		}
		diffs = append(diffs, model.SubImageDiff{
			Key:        s.Key,
			Status:     status,
			Before:     s.Before,
			After:      s.After,
			BeforeHash: s.BeforeHash,
			AfterHash:  s.AfterHash,
		})
	}

	return diffs, nil
}

// stage writes data into the run; a nil side yields an empty argument.
func stage(run *scratch.Run, name string, data []byte) (string, error) {
	if data == nil {
		return "", nil
	}
	return run.Write(name, data)
}

func parseStatus(raw string) (model.DiffStatus, error) {
	switch s := model.DiffStatus(raw); s {
	case model.DiffEqual, model.DiffAdded, model.DiffRemoved, model.DiffChanged:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status %q", raw)
	}
}
