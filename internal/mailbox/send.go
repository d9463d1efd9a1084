package mailbox

import (
	"github.com/smoynes/rtsdemo/internal/machine"
	"github.com/smoynes/rtsdemo/internal/value"
)

// SendMessage deep-copies v out of src's heap and into dst's, then appends
// it to dst's inbox. It never blocks on dst's receiver, only on dst's
// allocation lock for the duration of the copy (see machine.CopyTo); it
// returns ErrInboxFull if dst's mailbox is already at its configured bound.
func SendMessage(dst, src *machine.VM, v value.Value) error {
	copied, err := machine.CopyTo(dst, src, v)
	if err != nil {
		return err
	}

	return dst.DeliverMessage(src, copied)
}
