package bc

import (
	"io"

	"github.com/smoynes/rtsdemo/internal/log"
)

// Compile parses src in full into a Program. Jump targets are looked up in
// the Program's label table when the jump executes, not here.
func Compile(src io.Reader, logger *log.Logger) (*Program, error) {
	p := NewParser(logger)
	p.Parse(src)

	return p.Program()
}
