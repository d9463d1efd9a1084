package cmd_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/smoynes/rtsdemo/cmd/rtsdemo/cmd"
	"github.com/smoynes/rtsdemo/internal/log"
)

func TestHeapCommandReportsStats(tt *testing.T) {
	tt.Parallel()

	c := cmd.Heap()
	fs := c.FlagSet()

	if err := fs.Parse([]string{"-n", "10"}); err != nil {
		tt.Fatalf("parse flags: %v", err)
	}

	var out bytes.Buffer

	if code := c.Run(context.Background(), fs.Args(), &out, log.DefaultLogger()); code != 0 {
		tt.Fatalf("Run: exit code %d, output: %s", code, out.String())
	}

	if !strings.Contains(out.String(), "allocated:") {
		tt.Errorf("output missing allocated stat: %q", out.String())
	}
}

func TestGCCommandReportsBeforeAndAfter(tt *testing.T) {
	tt.Parallel()

	c := cmd.GC()
	fs := c.FlagSet()

	if err := fs.Parse([]string{"-garbage", "100"}); err != nil {
		tt.Fatalf("parse flags: %v", err)
	}

	var out bytes.Buffer

	if code := c.Run(context.Background(), fs.Args(), &out, log.DefaultLogger()); code != 0 {
		tt.Fatalf("Run: exit code %d, output: %s", code, out.String())
	}

	if !strings.Contains(out.String(), "before:") || !strings.Contains(out.String(), "after:") {
		tt.Errorf("output missing before/after stats: %q", out.String())
	}
}

func TestSendCommandRoundTripsThroughChildVM(tt *testing.T) {
	tt.Parallel()

	c := cmd.Send()
	fs := c.FlagSet()

	if err := fs.Parse([]string{"-message", "abcd"}); err != nil {
		tt.Fatalf("parse flags: %v", err)
	}

	var out bytes.Buffer

	if code := c.Run(context.Background(), fs.Args(), &out, log.DefaultLogger()); code != 0 {
		tt.Fatalf("Run: exit code %d, output: %s", code, out.String())
	}

	if !strings.Contains(out.String(), `received: "dcba"`) {
		tt.Errorf("output missing reversed message: %q", out.String())
	}
}
