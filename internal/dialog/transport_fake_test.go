package dialog_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/tally/internal/dialog"
)

type op struct {
	Kind string
	Ref  dialog.MessageRef
	Msg  dialog.Message
}

// recordingTransport keeps every outbound call in order.
type recordingTransport struct {
	mu       sync.Mutex
	nextID   int
	ops      []op
	failEdit bool
}

func (r *recordingTransport) Send(_ context.Context, chat int64, msg dialog.Message) (dialog.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	ref := dialog.MessageRef{Chat: chat, ID: r.nextID}
	r.ops = append(r.ops, op{Kind: "send", Ref: ref, Msg: msg})

	return ref, nil
}

func (r *recordingTransport) Edit(_ context.Context, ref dialog.MessageRef, msg dialog.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failEdit {
		return errors.New("message can't be edited")
	}

	r.ops = append(r.ops, op{Kind: "edit", Ref: ref, Msg: msg})

	return nil
}

func (r *recordingTransport) Delete(_ context.Context, ref dialog.MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, op{Kind: "delete", Ref: ref})

	return nil
}

func (r *recordingTransport) last() op {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ops) == 0 {
		return op{}
	}

	return r.ops[len(r.ops)-1]
}

// lastSent returns the most recent message sent (not edited).
func (r *recordingTransport) lastSent() op {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.ops) - 1; i >= 0; i-- {
		if r.ops[i].Kind == "send" {
			return r.ops[i]
		}
	}

	return op{}
}

func (r *recordingTransport) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, o := range r.ops {
		if o.Kind == kind {
			n++
		}
	}

	return n
}

func (r *recordingTransport) anyContains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.ops {
		if strings.Contains(o.Msg.Text, substr) {
			return true
		}
	}

	return false
}

// buttonData lists the callback tokens of msg in order.
func buttonData(msg dialog.Message) []string {
	var out []string

	for _, row := range msg.Buttons {
		for _, b := range row {
			out = append(out, b.Data)
		}
	}

	return out
}
