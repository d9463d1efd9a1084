package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/smoynes/rtsdemo/internal/machine"
	"github.com/smoynes/rtsdemo/internal/value"
)

func TestSendRecvRoundTrip(tt *testing.T) {
	tt.Parallel()

	sender := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(sender)

	receiver := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(receiver)

	msg, err := sender.MakeString([]byte("hello"))
	if err != nil {
		tt.Fatalf("MakeString: %v", err)
	}

	if err := SendMessage(receiver, sender, msg); err != nil {
		tt.Fatalf("SendMessage: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	h, err := RecvMessage(ctx, receiver)
	if err != nil {
		tt.Fatalf("RecvMessage: %v", err)
	}
	defer FreeMsg(h)

	if GetSender(h) != sender {
		tt.Error("GetSender does not match the VM that sent the message")
	}

	if got := receiver.ReadStr(GetMsg(h)); got != "hello" {
		tt.Errorf("GetMsg = %q, want %q", got, "hello")
	}
}

func TestRecvMessageBlocksUntilSend(tt *testing.T) {
	tt.Parallel()

	sender := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(sender)

	receiver := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(receiver)

	result := make(chan error, 1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := RecvMessage(ctx, receiver)
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)

	msg, _ := sender.MakeString([]byte("late"))
	if err := SendMessage(receiver, sender, msg); err != nil {
		tt.Fatalf("SendMessage: %v", err)
	}

	select {
	case err := <-result:
		if err != nil {
			tt.Fatalf("RecvMessage: %v", err)
		}
	case <-time.After(5 * time.Second):
		tt.Fatal("RecvMessage never returned after SendMessage")
	}
}

func TestCheckMessageDoesNotBlock(tt *testing.T) {
	tt.Parallel()

	receiver := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(receiver)

	if _, ok := CheckMessage(receiver); ok {
		tt.Error("CheckMessage on empty inbox returned ok=true")
	}
}

func TestFIFOOrderingPerSender(tt *testing.T) {
	tt.Parallel()

	sender := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(sender)

	receiver := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(receiver)

	for _, s := range []string{"first", "second", "third"} {
		msg, _ := sender.MakeString([]byte(s))
		if err := SendMessage(receiver, sender, msg); err != nil {
			tt.Fatalf("SendMessage(%q): %v", s, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, want := range []string{"first", "second", "third"} {
		h, err := RecvMessageFrom(ctx, receiver, sender)
		if err != nil {
			tt.Fatalf("RecvMessageFrom: %v", err)
		}

		if got := receiver.ReadStr(GetMsg(h)); got != want {
			tt.Errorf("message order: got %q, want %q", got, want)
		}

		FreeMsg(h)
	}
}

func TestVMThreadCopiesArgIntoChild(tt *testing.T) {
	tt.Parallel()

	parent := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(parent)

	arg, _ := parent.MakeString([]byte("payload"))

	done := make(chan string, 1)

	child, err := VMThread(parent, func(child *machine.VM, arg value.Value) {
		done <- child.ReadStr(arg)
	}, arg)
	if err != nil {
		tt.Fatalf("VMThread: %v", err)
	}
	defer machine.Terminate(child)

	select {
	case got := <-done:
		if got != "payload" {
			tt.Errorf("child saw arg = %q, want %q", got, "payload")
		}
	case <-time.After(time.Second):
		tt.Fatal("spawned function never ran")
	}
}

func TestSendMessageRespectsInboxBound(tt *testing.T) {
	tt.Parallel()

	sender := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(sender)

	receiver := machine.InitVM(16, 4096, 4)
	defer machine.Terminate(receiver)

	var lastErr error

	for i := 0; i < machine.DefaultInboxSize+1; i++ {
		msg, _ := sender.MakeString([]byte("x"))
		lastErr = SendMessage(receiver, sender, msg)
	}

	if lastErr == nil {
		tt.Fatal("SendMessage past inbox bound: want error, got nil")
	}
}
