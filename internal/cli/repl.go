package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rcliao/d6calc/internal/render"
	"github.com/rcliao/d6calc/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive dice form",
		Long: `Interactive dice form. Each plain line replaces the dice input.
Commands:
  :lv N      set the spell level (0-8)
  :up, :down move the spell level by one
  :submit    send the current input (also :s)
  :clear     empty the dice input
  :show      redraw the form
  :quit      wait for pending results and exit (also :q, EOF)`,
		Run: runREPL,
	}

	RootCmd.AddCommand(cmd)
}

type replOp int

const (
	opSetRaw replOp = iota
	opLevel
	opStep
	opSubmit
	opShow
	opQuit
)

type replCmd struct {
	op   replOp
	text string
	n    int
}

func parseLine(line string) (replCmd, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, ":") {
		return replCmd{op: opSetRaw, text: line}, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":lv", ":level":
		if len(fields) != 2 {
			return replCmd{}, fmt.Errorf("usage: :lv N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return replCmd{}, fmt.Errorf("level must be a number: %q", fields[1])
		}
		return replCmd{op: opLevel, n: n}, nil
	case ":up":
		return replCmd{op: opStep, n: 1}, nil
	case ":down":
		return replCmd{op: opStep, n: -1}, nil
	case ":submit", ":s":
		return replCmd{op: opSubmit}, nil
	case ":clear":
		return replCmd{op: opSetRaw}, nil
	case ":show":
		return replCmd{op: opShow}, nil
	case ":quit", ":q":
		return replCmd{op: opQuit}, nil
	}
	return replCmd{}, fmt.Errorf("unknown command %q", fields[0])
}

// printer serializes frames written by the input loop and the update watcher.
type printer struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

func (p *printer) frame(snap session.Snapshot) {
	v := render.Project(snap)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		b, _ := json.Marshal(v)
		fmt.Fprintln(p.w, string(b))
		return
	}
	fmt.Fprintln(p.w, render.Text(v))
	fmt.Fprintln(p.w)
}

func (p *printer) errorf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "error: "+format+"\n", args...)
}

func runREPL(cmd *cobra.Command, args []string) {
	sess, closeSession, err := openSession(log.New(os.Stderr, "d6calc: ", log.LstdFlags))
	if err != nil {
		exitErr("repl", err)
	}
	defer closeSession()

	p := &printer{w: cmd.OutOrStdout(), json: formatFlag == "json"}
	if err := runLoop(cmd.Context(), sess, cmd.InOrStdin(), p); err != nil {
		exitErr("repl", err)
	}
}

func runLoop(ctx context.Context, sess *session.Session, in io.Reader, p *printer) error {
	updates, cancel := sess.Subscribe()
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		// only responses arrive without a prompt line, so only they are printed here
		var last session.Result
		for snap := range updates {
			if snap.Result != last && snap.Result.Kind == session.Completed {
				p.frame(snap)
			}
			last = snap.Result
		}
	}()
	defer func() {
		cancel()
		<-watched
	}()

	p.frame(sess.Snapshot())

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		c, err := parseLine(sc.Text())
		if err != nil {
			p.errorf("%v", err)
			continue
		}

		switch c.op {
		case opSetRaw:
			p.frame(sess.SetRaw(c.text))
		case opLevel:
			p.frame(sess.SetLevel(c.n))
		case opStep:
			p.frame(sess.StepLevel(c.n))
		case opSubmit:
			p.frame(sess.Submit())
		case opShow:
			p.frame(sess.Snapshot())
		case opQuit:
			_, err := sess.Settled(ctx)
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	_, err := sess.Settled(ctx)
	return err
}
