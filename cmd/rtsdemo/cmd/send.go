package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/smoynes/rtsdemo/internal/cli"
	"github.com/smoynes/rtsdemo/internal/log"
	"github.com/smoynes/rtsdemo/internal/machine"
	"github.com/smoynes/rtsdemo/internal/mailbox"
	"github.com/smoynes/rtsdemo/internal/value"
)

func Send() cli.Command {
	return &sendCmd{}
}

type sendCmd struct {
	message string
}

func (sendCmd) Description() string {
	return "spawn a child VM and exchange a message with it"
}

func (sendCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `send [-message text]

Spawns a child VM on its own goroutine, sends it a string message, has
the child reverse it and send the reversal back, and prints the round
trip -- exercising machine.CopyTo, mailbox.VMThread, and mailbox's
blocking receive end to end.`)

	return err
}

func (s *sendCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	fs.StringVar(&s.message, "message", "hello, runtime", "text to send the child VM")

	return fs
}

func (s *sendCmd) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	parent := machine.DefaultVM()
	defer machine.Terminate(parent)

	arg, err := parent.MakeString([]byte(s.message))
	if err != nil {
		logger.Error("allocation failed", "err", err)
		return 1
	}

	child, err := mailbox.VMThread(parent, func(child *machine.VM, arg value.Value) {
		reversed, err := child.StrRev(arg)
		if err != nil {
			logger.Error("child: reverse failed", "err", err)
			return
		}

		if err := mailbox.SendMessage(parent, child, reversed); err != nil {
			logger.Error("child: send failed", "err", err)
		}
	}, arg)
	if err != nil {
		logger.Error("spawn failed", "err", err)
		return 1
	}

	defer machine.Terminate(child)

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	handle, err := mailbox.RecvMessageFrom(recvCtx, parent, child)
	if err != nil {
		logger.Error("recv failed", "err", err)
		return 1
	}
	defer mailbox.FreeMsg(handle)

	fmt.Fprintf(out, "sent:     %q\n", s.message)
	fmt.Fprintf(out, "received: %q\n", parent.ReadStr(mailbox.GetMsg(handle)))

	return 0
}
