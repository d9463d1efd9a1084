// Package mailbox implements cross-VM message passing: deep-copying a
// value out of the sender's heap and into the receiver's, and the
// inbox each VM owns to hold what arrives until its thread collects it.
//
// Messages are delivered synchronously from the sender's point of view
// (Send blocks until the copy lands in the destination's heap) and consumed
// asynchronously from the receiver's (Recv blocks, via a condition
// variable, until something arrives). Ordering is FIFO per sender, matching
// what a generated program compares against when it pattern-matches on
// "did this reply come from the VM I sent to."
package mailbox
