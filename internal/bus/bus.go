// Package bus is the daemon's control socket: a one-line request, a
// one-line response.
package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "voicelink.pid"
const ProtoVer = "0.2"

// Commands. A request is the command byte, an optional argument and '\n'.
const (
	CmdToggle     byte = 't'
	CmdStatus     byte = 's'
	CmdCopy       byte = 'c'
	CmdLanguage   byte = 'l' // argument: target code, "none" disables
	CmdTranscript byte = 'p'
	CmdDismiss    byte = 'd'
	CmdVersion    byte = 'v'
	CmdQuit       byte = 'q'
)

var (
	ErrEmptyRequest = errors.New("empty request")
	ErrNotRunning   = errors.New("daemon not running")
)

// RemoteError is an "ERR ..." response.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

const dialTimeout = 2 * time.Second

// ~/.cache/voicelink
func runtimeDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "voicelink"), nil
}

func getSockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

func getPidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

// ~/.cache/voicelink/control.sock
func SockPath() (string, error) { return getSockPath() }

// ~/.cache/voicelink/voicelink.pid
func PidPath() (string, error) { return getPidPath() }

type socketManager struct {
	path string
}

func defaultSocketManager() (*socketManager, error) {
	p, err := getSockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: p}, nil
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.DialTimeout("unix", s.path, dialTimeout)
}

// send writes one request and reads the response line.
func (s *socketManager) send(cmd byte, arg string) (string, error) {
	c, err := s.dial()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer c.Close()

	if _, err := fmt.Fprintf(c, "%c%s\n", cmd, arg); err != nil {
		return "", err
	}
	return bufio.NewReader(c).ReadString('\n')
}

type pidManager struct {
	path string
}

func defaultPidManager() (*pidManager, error) {
	p, err := getPidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: p}, nil
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

// checkExisting fails when the pid file names a live process. Stale or
// unreadable pid files are removed.
func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil || !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}
	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func Listen() (net.Listener, error) {
	s, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return s.listen()
}

func Dial() (net.Conn, error) {
	s, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return s.dial()
}

// SendCommand sends cmd with an optional argument and returns the raw
// response line.
func SendCommand(cmd byte, arg ...string) (string, error) {
	s, err := defaultSocketManager()
	if err != nil {
		return "", err
	}
	return s.send(cmd, strings.Join(arg, " "))
}

// Request is like SendCommand but turns "ERR ..." into a *RemoteError and
// strips the trailing newline.
func Request(cmd byte, arg ...string) (string, error) {
	resp, err := SendCommand(cmd, arg...)
	if err != nil {
		return "", err
	}
	return ParseResponse(resp)
}

func ParseResponse(resp string) (string, error) {
	resp = strings.TrimRight(resp, "\r\n")
	if msg, ok := strings.CutPrefix(resp, "ERR "); ok {
		return "", &RemoteError{Message: msg}
	}
	return resp, nil
}

// ParseRequest splits a request line into its command byte and argument.
func ParseRequest(line string) (byte, string, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return 0, "", ErrEmptyRequest
	}
	return line[0], strings.TrimSpace(line[1:]), nil
}

func CheckExistingDaemon() error {
	p, err := defaultPidManager()
	if err != nil {
		return err
	}
	return p.checkExisting()
}

func CreatePidFile() error {
	p, err := defaultPidManager()
	if err != nil {
		return err
	}
	return p.create()
}

func RemovePidFile() error {
	p, err := defaultPidManager()
	if err != nil {
		return err
	}
	return p.remove()
}
