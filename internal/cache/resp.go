package cache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// reply is one decoded RESP2 value. kind is the type byte from the wire.
type reply struct {
	kind  byte
	text  string
	num   int64
	bulk  []byte
	null  bool
	elems []reply
}

// serverError is an error reply; the connection stays usable after one.
type serverError string

func (e serverError) Error() string { return "redis: " + string(e) }

// err returns the server error carried by an error reply.
func (r reply) err() error {
	if r.kind == '-' {
		return serverError(r.text)
	}
	return nil
}

func (r reply) integer() (int64, error) {
	switch r.kind {
	case ':':
		return r.num, nil
	case '+':
		return strconv.ParseInt(r.text, 10, 64)
	case '$':
		return strconv.ParseInt(string(r.bulk), 10, 64)
	}
	return 0, fmt.Errorf("redis: expected integer reply, got %q", r.kind)
}

func (r reply) status() (string, error) {
	if r.kind != '+' {
		return "", fmt.Errorf("redis: expected status reply, got %q", r.kind)
	}
	return r.text, nil
}

// respConn frames commands as RESP arrays of bulk strings over one connection.
type respConn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

func newRespConn(conn net.Conn) *respConn {
	return &respConn{conn: conn, r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}
}

// pipeline writes every command, then reads one reply per command in order. Error
// replies come back in their slot; only transport and framing failures return an error,
// after which the connection must be discarded.
func (c *respConn) pipeline(deadline time.Time, cmds ...[]string) ([]reply, error) {
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	for _, args := range cmds {
		if err := c.encode(args); err != nil {
			return nil, err
		}
	}
	if err := c.w.Flush(); err != nil {
		return nil, err
	}

	replies := make([]reply, len(cmds))
	for i := range cmds {
		rep, err := decode(c.r)
		if err != nil {
			return nil, err
		}
		replies[i] = rep
	}
	return replies, nil
}

func (c *respConn) encode(args []string) error {
	c.w.WriteByte('*')
	c.w.WriteString(strconv.Itoa(len(args)))
	c.w.WriteString("\r\n")
	for _, arg := range args {
		c.w.WriteByte('$')
		c.w.WriteString(strconv.Itoa(len(arg)))
		c.w.WriteString("\r\n")
		c.w.WriteString(arg)
		if _, err := c.w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return nil
}

func (c *respConn) Close() error {
	return c.conn.Close()
}

func decode(r *bufio.Reader) (reply, error) {
	line, err := r.ReadSlice('\n')
	if err != nil {
		return reply{}, err
	}
	if len(line) < 3 || line[len(line)-2] != '\r' {
		return reply{}, errors.New("redis: malformed reply line")
	}
	kind, body := line[0], string(line[1:len(line)-2])

	switch kind {
	case '+', '-':
		return reply{kind: kind, text: body}, nil
	case ':':
		n, err := strconv.ParseInt(body, 10, 64)
		return reply{kind: kind, num: n}, err
	case '$':
		size, err := strconv.Atoi(body)
		if err != nil {
			return reply{}, err
		}
		if size < 0 {
			return reply{kind: kind, null: true}, nil
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return reply{}, err
		}
		if buf[size] != '\r' || buf[size+1] != '\n' {
			return reply{}, errors.New("redis: bulk string not terminated by CRLF")
		}
		return reply{kind: kind, bulk: buf[:size]}, nil
	case '*':
		count, err := strconv.Atoi(body)
		if err != nil {
			return reply{}, err
		}
		if count < 0 {
			return reply{kind: kind, null: true}, nil
		}
		elems := make([]reply, count)
		for i := range elems {
			if elems[i], err = decode(r); err != nil {
				return reply{}, err
			}
		}
		return reply{kind: kind, elems: elems}, nil
	}
	return reply{}, fmt.Errorf("redis: unexpected reply type %q", kind)
}
