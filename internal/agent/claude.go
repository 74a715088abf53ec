// Package agent drives the Claude Code CLI as an external collaborator:
// it spawns the subprocess, parses its stream-json output, and surfaces
// progress notifications and the final run result.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// ClaudeProcess manages a Claude Code subprocess started with
// --output-format stream-json.
type ClaudeProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	ctx       context.Context
	cancel    context.CancelFunc
	outputCh  chan StreamEvent
	stderrBuf []byte
	mu        sync.Mutex
	started   bool
	done      chan struct{}
}

// NewClaudeProcess creates a new ClaudeProcess with the given context.
// Cancelling the context kills the subprocess.
func NewClaudeProcess(ctx context.Context) *ClaudeProcess {
	ctx, cancel := context.WithCancel(ctx)
	return &ClaudeProcess{
		ctx:      ctx,
		cancel:   cancel,
		outputCh: make(chan StreamEvent, 100),
		done:     make(chan struct{}),
	}
}

// StartOptions contains optional parameters for starting a Claude process.
type StartOptions struct {
	// Binary is the claude executable to invoke. Defaults to "claude".
	Binary string
	// Model is the Claude model to use. If empty, the CLI's default applies.
	Model string
	// SystemPrompt is appended to the CLI's system prompt when non-empty.
	SystemPrompt string
}

// Start launches the Claude Code subprocess with the given prompt, running
// in projectPath. Permission prompts are bypassed so the agent can write
// migration and seed files without interaction.
func (p *ClaudeProcess) Start(prompt, projectPath string, opts *StartOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("process already started")
	}

	binary := "claude"
	args := []string{
		"--output-format", "stream-json",
		"--print",
		"--verbose",
		"--permission-mode", "bypassPermissions",
	}

	if opts != nil {
		if opts.Binary != "" {
			binary = opts.Binary
		}
		if opts.Model != "" {
			args = append(args, "--model", opts.Model)
		}
		if opts.SystemPrompt != "" {
			args = append(args, "--append-system-prompt", opts.SystemPrompt)
		}
	}

	args = append(args, "-p", prompt)

	p.cmd = exec.CommandContext(p.ctx, binary, args...)
	if projectPath != "" {
		p.cmd.Dir = projectPath
	}

	var err error
	p.stdout, err = p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	p.stderr, err = p.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}

	p.started = true

	go p.readOutput()
	go p.readStderr()

	return nil
}

// readOutput reads and parses NDJSON events from stdout.
func (p *ClaudeProcess) readOutput() {
	defer close(p.outputCh)
	defer close(p.done)

	scanner := bufio.NewScanner(p.stdout)
	// Result events can carry large markdown payloads.
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := parseStreamEvent(line)
		if err != nil {
			p.outputCh <- StreamEvent{
				Type:  StreamEventError,
				Error: fmt.Sprintf("parse error: %v", err),
				Raw:   append([]byte(nil), line...),
			}
			continue
		}

		select {
		case p.outputCh <- event:
		case <-p.ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && p.ctx.Err() == nil {
		p.outputCh <- StreamEvent{
			Type:  StreamEventError,
			Error: fmt.Sprintf("read error: %v", err),
		}
	}
}

// readStderr captures stderr incrementally so startup failures are
// diagnosable even when no stream event ever arrives.
func (p *ClaudeProcess) readStderr() {
	scanner := bufio.NewScanner(p.stderr)
	buf := make([]byte, 16*1024)
	scanner.Buffer(buf, 256*1024)

	var all []byte
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		p.mu.Lock()
		all = append(all, line...)
		all = append(all, '\n')
		p.stderrBuf = all
		p.mu.Unlock()
	}
}

// Output returns the channel of parsed stream events. The channel is
// closed when the process exits or is killed.
func (p *ClaudeProcess) Output() <-chan StreamEvent {
	return p.outputCh
}

// Wait blocks until the process exits and returns its exit error, if any.
func (p *ClaudeProcess) Wait() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return fmt.Errorf("process not started")
	}
	cmd := p.cmd
	p.mu.Unlock()

	<-p.done
	return cmd.Wait()
}

// Kill terminates the process immediately.
func (p *ClaudeProcess) Kill() error {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	if p.cmd.Process != nil {
		// Context cancellation already signals the process; Kill covers
		// platforms where that lands slowly.
		_ = p.cmd.Process.Kill()
	}
	return nil
}

// Stderr returns any captured stderr output.
func (p *ClaudeProcess) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.stderrBuf)
}

// CheckClaudeCLI verifies that the claude executable is available in PATH,
// returning installation instructions when it is not.
func CheckClaudeCLI(binary string) error {
	if binary == "" {
		binary = "claude"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s CLI not found in PATH\n\n"+
			"schemagen requires the Claude Code CLI to run the migration agent.\n\n"+
			"Install it with:\n"+
			"  npm install -g @anthropic-ai/claude-code\n\n"+
			"For more information, visit:\n"+
			"  https://docs.anthropic.com/en/docs/claude-code", binary)
	}
	return nil
}
