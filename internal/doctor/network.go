package doctor

import (
	"fmt"
	"net"
)

// ListenCheck verifies the sensor port can be bound.
type ListenCheck struct {
	Addr string
}

func (c *ListenCheck) Name() string     { return "listen" }
func (c *ListenCheck) Category() string { return CategoryNetwork }

func (c *ListenCheck) Run() CheckResult {
	if err := probeBind(c.Addr); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't listen on %s: %v", c.Addr, err),
			Suggestion: "Stop whatever holds the port, or change listen.port with 'pulsemon config set listen.port <n>'",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Sensor port %s is free", c.Addr),
	}
}

func (c *ListenCheck) Fix() error { return nil }

// ServerCheck verifies an optional HTTP endpoint (metrics or feed) can bind.
type ServerCheck struct {
	Server string // "metrics" or "feed"
	Addr   string // empty when disabled
}

func (c *ServerCheck) Name() string     { return c.Server + "_addr" }
func (c *ServerCheck) Category() string { return CategoryNetwork }

func (c *ServerCheck) Run() CheckResult {
	if c.Addr == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("%s server disabled", c.Server),
		}
	}
	if err := probeBind(c.Addr); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't serve %s on %s: %v", c.Server, c.Addr, err),
			Suggestion: fmt.Sprintf("Pick a free address for %s.addr, or clear it to disable the server", c.Server),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s address %s is free", c.Server, c.Addr),
	}
}

func (c *ServerCheck) Fix() error { return nil }

// probeBind binds addr and releases it immediately.
func probeBind(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}
