package notify

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Notify("one", KindInfo)
	r.Notify("two", KindCritical)

	msgs := r.Messages()
	assert.Equal(t, []Message{{"one", KindInfo}, {"two", KindCritical}}, msgs)
}

func TestKindSticky(t *testing.T) {
	assert.True(t, KindCritical.Sticky())
	assert.False(t, KindError.Sticky())
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{W: &buf}
	w.Notify("sauvegarde", KindSuccess)
	w.Notify("note", KindInfo)
	assert.Equal(t, "✓ sauvegarde\n· note\n", buf.String())
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Logger: zerolog.New(&buf)}
	l.Notify("échec", KindCritical)

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"sticky":true`)
	assert.Contains(t, buf.String(), `"message":"échec"`)
}

func TestFanout(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Fanout{a, b, Discard}.Notify("x", KindWarning)
	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Messages(), 1)
}
