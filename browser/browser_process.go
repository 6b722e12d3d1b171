package browser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/nikita55612/BrowserBridge/log"
	"github.com/nikita55612/BrowserBridge/storage"
)

// BrowserProcess is a running browser OS process and the channels tracking
// its lifetime.
type BrowserProcess struct {
	ctx    context.Context
	cancel context.CancelFunc

	// The process of the browser, if running locally.
	process *os.Process

	// Channels for managing termination.
	lostConnection             chan struct{}
	processIsGracefullyClosing chan struct{}
	processDone                chan struct{}

	// Browser's WebSocket URL to speak CDP.
	wsURL string

	// The directory where user data for the browser is stored.
	userDataDir *storage.Dir

	logger *log.Logger
}

// NewBrowserProcess starts the browser executable at path with the given
// args and env, waits for its DevTools endpoint to come up, and returns a
// handle to the process. ctxCancel is invoked when the process dies or the
// connection to it is lost outside of a graceful close.
func NewBrowserProcess(
	ctx context.Context, path string, args, env []string, dataDir *storage.Dir,
	ctxCancel context.CancelFunc, logger *log.Logger,
) (*BrowserProcess, error) {
	cmd, procDone, err := execute(ctx, path, args, env, dataDir, logger)
	if err != nil {
		return nil, err
	}

	wsURL, err := getDevToolsURL(ctx, dataDir.Dir)
	if err != nil {
		return nil, fmt.Errorf("getting DevTools URL: %w", err)
	}

	p := BrowserProcess{
		ctx:                        ctx,
		cancel:                     ctxCancel,
		process:                    cmd.Process,
		lostConnection:             make(chan struct{}),
		processIsGracefullyClosing: make(chan struct{}),
		processDone:                procDone,
		wsURL:                      wsURL,
		userDataDir:                dataDir,
		logger:                     logger,
	}

	go func() {
		// If we lose connection to the browser and we're not in-progress
		// with a clean browser-initiated termination then cancel the
		// context to clean up.
		select {
		case <-p.lostConnection:
		case <-ctx.Done():
		}

		select {
		case <-p.processIsGracefullyClosing:
		default:
			p.cancel()
		}
	}()

	return &p, nil
}

func (p *BrowserProcess) didLoseConnection() {
	close(p.lostConnection)
}

// LostConnection is closed once the CDP connection to the process is gone.
func (p *BrowserProcess) LostConnection() <-chan struct{} {
	return p.lostConnection
}

func (p *BrowserProcess) isConnected() bool {
	var ok bool
	select {
	case _, ok = <-p.lostConnection:
	default:
		ok = true
	}
	return ok
}

// GracefulClose triggers a graceful closing of the browser process.
func (p *BrowserProcess) GracefulClose() {
	p.logger.Debugf("BrowserProcess:GracefulClose", "")
	close(p.processIsGracefullyClosing)
}

// Terminate triggers the termination of the browser process.
func (p *BrowserProcess) Terminate() {
	p.logger.Debugf("BrowserProcess:Terminate", "pid:%d", p.Pid())
	p.cancel()
}

// WaitDone blocks until the process has exited or the timeout passes, and
// reports whether it exited. Kill sends SIGKILL as a last resort.
func (p *BrowserProcess) WaitDone(timeout time.Duration) bool {
	select {
	case <-p.processDone:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Kill force-kills the browser process.
func (p *BrowserProcess) Kill() {
	if err := p.process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Errorf("BrowserProcess:Kill", "pid:%d err:%v", p.Pid(), err)
	}
}

// WsURL returns the WebSocket URL the browser listens on for CDP clients.
func (p *BrowserProcess) WsURL() string {
	return p.wsURL
}

// Pid returns the browser process ID.
func (p *BrowserProcess) Pid() int {
	return p.process.Pid
}

// UserDataDir returns the profile directory the process runs in.
func (p *BrowserProcess) UserDataDir() *storage.Dir {
	return p.userDataDir
}

func execute(
	ctx context.Context, path string, args, env []string, dataDir *storage.Dir,
	logger *log.Logger,
) (*exec.Cmd, chan struct{}, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	killAfterParent(cmd)

	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	// We must start the cmd before calling cmd.Wait, as otherwise the two
	// can run into a data race.
	err := cmd.Start()
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("browser executable does not exist: %s", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("starting the browser process: %w", err)
	}
	if ctx.Err() != nil {
		return nil, nil, fmt.Errorf("%w", ctx.Err())
	}

	done := make(chan struct{})
	go func() {
		defer func() {
			if err := dataDir.Cleanup(); err != nil {
				logger.Errorf("BrowserProcess", "cleaning up the user data directory: %v", err)
			}
			close(done)
		}()

		if err := cmd.Wait(); err != nil {
			logger.Debugf("BrowserProcess",
				"process with PID %d ended: %v", cmd.Process.Pid, err)
		}
	}()

	return cmd, done, nil
}

// getDevToolsURL returns the DevTools WebSocket address by reading the
// DevToolsActivePort file in the data directory.
func getDevToolsURL(ctx context.Context, dataDir string) (wsURL string, rerr error) {
	const (
		maxReadAttempts  = 30
		readAttemptDelay = 50 * time.Millisecond
	)
	fpath := filepath.Join(dataDir, "DevToolsActivePort")

	// The browser might not have created the file yet, so try reading it
	// multiple times after a slight delay.
	var f *os.File
	for readAttempts := 0; readAttempts < maxReadAttempts; readAttempts++ {
		var err error
		f, err = os.Open(fpath) //nolint:gosec
		if errors.Is(err, os.ErrNotExist) {
			select {
			case <-time.After(readAttemptDelay):
				continue
			case <-ctx.Done():
				return "", fmt.Errorf("waiting for %q: %w", fpath, ctx.Err())
			}
		}
		if err != nil {
			return "", fmt.Errorf("reading %q: %w", fpath, err)
		}
		defer func() { rerr = errors.Join(rerr, f.Close()) }()

		break
	}

	if f == nil {
		return "", fmt.Errorf("%w: no %q after %s",
			ErrLaunchTimeout, fpath, maxReadAttempts*readAttemptDelay)
	}

	// Two lines: the port and the browser target path.
	var portURI []string
	fs := bufio.NewScanner(f)
	for fs.Scan() {
		portURI = append(portURI, fs.Text())
	}
	if err := fs.Err(); err != nil {
		return "", fmt.Errorf("scanning %q: %w", fpath, err)
	}
	if len(portURI) < 2 {
		return "", fmt.Errorf("malformed %q: %d line(s)", fpath, len(portURI))
	}

	return fmt.Sprintf("ws://127.0.0.1:%s%s", portURI[0], portURI[1]), nil
}
