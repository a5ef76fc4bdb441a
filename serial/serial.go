// Package serial turns a byte stream into pager text and console commands.
//
// Every received line is appended to the text store. Lines starting with
// '!' are commands instead:
//
//	!clear        empty the text store
//	!mode <name>  switch display mode ("select" opens the menu)
//	!page <n>     show page n, counting from 1
//	!ping         reply "pong"
//	!hello        reply with the device name
package serial

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/tuffrabit/tinygo-oledpager/pkg/ui"
)

// DeviceName is the reply to !hello.
const DeviceName = "oledpager"

// DefaultBackoff is the pause after a read that returned no data.
const DefaultBackoff = 10 * time.Millisecond

// Appender receives plain text lines.
type Appender interface {
	Append(text string)
}

// Poster forwards commands to the display loop. *ui.Machine implements it.
type Poster interface {
	Post(c ui.Command) bool
	HasMode(name ui.Mode) bool
}

// Console reads lines from in and writes command replies to out.
type Console struct {
	in      io.ByteReader
	out     io.Writer
	store   Appender
	ui      Poster
	log     *slog.Logger
	backoff time.Duration

	inIndex  int
	inBuffer [128]byte
	overflow bool // the line being read did not fit in inBuffer
}

// NewConsole returns a console. out may be nil when replies have nowhere
// to go; a nil logger discards.
func NewConsole(in io.ByteReader, out io.Writer, store Appender, poster Poster, logger *slog.Logger) *Console {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Console{
		in:      in,
		out:     out,
		store:   store,
		ui:      poster,
		log:     logger,
		backoff: DefaultBackoff,
	}
}

// Handle reads until ctx is cancelled or the input reports io.EOF. Other
// read errors mean no data is available yet.
func (c *Console) Handle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := c.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.flush()
				return nil
			}
			c.wait(ctx)
			continue
		}

		if line, ok := c.read(b); ok {
			c.handleLine(line)
		}
	}
}

func (c *Console) wait(ctx context.Context) {
	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// read assembles a line. Long lines are passed on in buffer-sized chunks
// and are never commands.
func (c *Console) read(b byte) (string, bool) {
	if b == '\n' {
		in := strings.TrimSuffix(string(c.inBuffer[:c.inIndex]), "\r")
		c.inIndex = 0
		return in, true
	}

	c.inBuffer[c.inIndex] = b
	c.inIndex++

	if c.inIndex == len(c.inBuffer) {
		c.store.Append(string(c.inBuffer[:]))
		c.inIndex = 0
		c.overflow = true
	}
	return "", false
}

// flush hands over a final line that had no newline.
func (c *Console) flush() {
	if c.inIndex > 0 {
		c.handleLine(string(c.inBuffer[:c.inIndex]))
		c.inIndex = 0
	}
}

func (c *Console) handleLine(line string) {
	if c.overflow {
		c.overflow = false
		c.store.Append(line + "\n")
		return
	}
	if strings.HasPrefix(line, "!") {
		c.command(line[1:])
		return
	}
	c.store.Append(line + "\n")
}

func (c *Console) command(line string) {
	args, err := shlex.Split(line)
	if err != nil {
		c.write("err " + err.Error())
		return
	}
	if len(args) == 0 {
		c.write("err empty command")
		return
	}
	c.log.Info("console command", "cmd", args[0], "args", len(args)-1)

	switch args[0] {
	case "ping":
		c.write("pong")
	case "hello":
		c.write(DeviceName)
	case "clear":
		c.post(ui.Command{Kind: ui.CmdClear})
	case "mode":
		if len(args) != 2 {
			c.write("err usage: !mode <name>")
			return
		}
		name := ui.Mode(args[1])
		if !c.ui.HasMode(name) {
			c.write("err unknown mode " + args[1])
			return
		}
		c.post(ui.Command{Kind: ui.CmdMode, Mode: name})
	case "page":
		if len(args) != 2 {
			c.write("err usage: !page <n>")
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			c.write("err bad page " + args[1])
			return
		}
		c.post(ui.Command{Kind: ui.CmdPage, Page: n - 1})
	default:
		c.write("err unknown command " + args[0])
	}
}

func (c *Console) post(cmd ui.Command) {
	if !c.ui.Post(cmd) {
		c.log.Warn("command queue full")
		c.write("err busy")
		return
	}
	c.write("ok")
}

func (c *Console) write(out string) {
	c.out.Write([]byte(out + "\n"))
}
