// services/bridge/bridge.go
//
// bridge exposes a pin matrix over a line-oriented text protocol, meant for
// a serial console or a host-side harness:
//
//	COUNT
//	GET <port> <pin> <func>
//	SET <port> <pin> <func> <on|off>
//	TOGGLE <port> <pin> <func>
//
// Every command is answered with one line, "OK [detail]" or "ERR <code>".
package bridge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tarm/serial"

	"pinstate-go/errcode"
	"pinstate-go/pins"
)

// Open dials a real serial port for Serve.
func Open(name string, baud int) (io.ReadWriteCloser, error) {
	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "bridge.Open", Msg: name, Err: err}
	}
	return p, nil
}

// Serve reads commands from rw until EOF, a read error, or ctx cancellation.
// It borrows m; the caller keeps ownership and must not destroy it while
// Serve runs.
func Serve(ctx context.Context, rw io.ReadWriter, m *pins.Matrix) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(rw)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-errc // nil on clean EOF
			}
			resp := handle(line, m)
			if resp == "" {
				continue // blank input line
			}
			if _, err := fmt.Fprintln(rw, resp); err != nil {
				return err
			}
		}
	}
}

func handle(line string, m *pins.Matrix) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}

	switch strings.ToUpper(fields[0]) {
	case "COUNT":
		return "OK " + strconv.Itoa(m.PinCount())

	case "GET":
		port, pin, fn, errResp := parseRef(fields, 4)
		if errResp != "" {
			return errResp
		}
		v, err := m.Get(port, pin, fn)
		if err != nil {
			return errLine(err)
		}
		return "OK " + strings.ToUpper(v.String())

	case "SET":
		port, pin, fn, errResp := parseRef(fields, 5)
		if errResp != "" {
			return errResp
		}
		state, ok := pins.ParseState(fields[4])
		if !ok {
			return errLine(errcode.InvalidArgument)
		}
		if err := m.Set(port, pin, fn, state); err != nil {
			return errLine(err)
		}
		return "OK"

	case "TOGGLE":
		port, pin, fn, errResp := parseRef(fields, 4)
		if errResp != "" {
			return errResp
		}
		if err := m.Toggle(port, pin, fn); err != nil {
			return errLine(err)
		}
		v, _ := m.Get(port, pin, fn)
		return "OK " + strings.ToUpper(v.String())

	default:
		return errLine(errcode.InvalidArgument)
	}
}

// parseRef parses "<port> <pin> <func>" from fields[1:4] and checks the
// command carries exactly want fields.
func parseRef(fields []string, want int) (pins.Port, int, pins.Func, string) {
	if len(fields) != want {
		return 0, 0, 0, errLine(errcode.InvalidArgument)
	}
	port, ok := pins.ParsePort(fields[1])
	if !ok {
		return 0, 0, 0, errLine(errcode.UnknownPort)
	}
	pin, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, 0, errLine(errcode.InvalidArgument)
	}
	fn, ok := pins.ParseFunc(fields[3])
	if !ok {
		return 0, 0, 0, errLine(errcode.UnknownFunc)
	}
	return port, pin, fn, ""
}

func errLine(v any) string {
	switch e := v.(type) {
	case errcode.Code:
		return "ERR " + string(e)
	case error:
		return "ERR " + string(errcode.Of(e))
	default:
		return "ERR " + string(errcode.Error)
	}
}
