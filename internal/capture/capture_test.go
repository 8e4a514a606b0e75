package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/store"
	"github.com/nhle/too-doo/internal/testutil"
)

func TestDraftFromMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		title    string
		priority bool
		label    string
		isList   bool
		items    int
		desc     string
	}{
		{
			name:  "plain note",
			msg:   Message{Envelope: Envelope{Subject: "Call the bank"}, TextBody: "About the mortgage.\r\n"},
			title: "Call the bank",
			desc:  "About the mortgage.",
		},
		{
			name:     "bang marks priority",
			msg:      Message{Envelope: Envelope{Subject: "! Renew passport"}},
			title:    "Renew passport",
			priority: true,
		},
		{
			name:     "flagged marks priority",
			msg:      Message{Envelope: Envelope{Subject: "Dentist", Flags: []string{`\Flagged`}}},
			title:    "Dentist",
			priority: true,
		},
		{
			name:   "bullet body becomes checklist",
			msg:    Message{Envelope: Envelope{Subject: "Groceries #home"}, TextBody: "- milk\n- [x] eggs\n\n* bread\n-- \nsent from my phone"},
			title:  "Groceries",
			label:  "home",
			isList: true,
			items:  3,
		},
		{
			name:  "mixed body stays plain",
			msg:   Message{Envelope: Envelope{Subject: "Plan"}, TextBody: "Things:\n- one\n- two"},
			title: "Plan",
			desc:  "Things:\n- one\n- two",
		},
		{
			name:   "html list",
			msg:    Message{Envelope: Envelope{Subject: "Packing"}, HTMLBody: "<ul><li>socks</li><li>charger</li></ul>"},
			title:  "Packing",
			isList: true,
			items:  2,
		},
		{
			name:  "empty subject",
			msg:   Message{},
			title: "(no subject)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DraftFromMessage(tt.msg)
			assert.Equal(t, tt.title, d.Note.Title)
			assert.Equal(t, tt.priority, d.Note.IsPriority)
			assert.Equal(t, tt.label, d.LabelName)
			assert.Equal(t, tt.isList, d.Note.IsList)
			assert.Len(t, d.Note.Items, tt.items)
			assert.Equal(t, tt.desc, d.Note.Description)
		})
	}
}

func TestParseMIMEBody(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: hi\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=XX\r\n" +
		"\r\n" +
		"--XX\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"- milk\r\n" +
		"--XX\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<ul><li>milk</li></ul>\r\n" +
		"--XX--\r\n"

	text, html := parseMIMEBody([]byte(raw))
	assert.Equal(t, "- milk", text)
	assert.Equal(t, "<ul><li>milk</li></ul>", html)
}

type fakeMailbox struct {
	messages []Message
	seen     []uint32
	fetchErr error
}

func (f *fakeMailbox) FetchUnseen(_ context.Context, limit int) ([]Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []Message
	for _, m := range f.messages {
		if !f.isSeen(m.Envelope.UID) && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMailbox) MarkSeen(_ context.Context, uids []uint32) error {
	f.seen = append(f.seen, uids...)
	return nil
}

func (f *fakeMailbox) isSeen(uid uint32) bool {
	for _, s := range f.seen {
		if s == uid {
			return true
		}
	}
	return false
}

func TestJob_RunOnce(t *testing.T) {
	st := testutil.NewTestStore(t)
	user := testutil.NewTestUser(t, st)
	logger := logging.NewTestLogger()
	svc := notes.NewService(st, logger.Logger)
	ctx := context.Background()

	home, err := svc.CreateLabel(ctx, user.ID, "Home", "")
	require.NoError(t, err)

	mb := &fakeMailbox{messages: []Message{
		{Envelope: Envelope{UID: 1, MessageID: "a@mail", Subject: "!Pay rent #HOME"}},
		{Envelope: Envelope{UID: 2, MessageID: "b@mail", Subject: "Groceries"}, TextBody: "- milk\n- eggs"},
	}}
	job := NewJob(mb, svc, st, user.Email, logger.Logger)
	assert.Equal(t, "mail", job.Name())

	report, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Items)
	assert.ElementsMatch(t, []uint32{1, 2}, mb.seen)
	logger.AssertLogged(t, zapcore.InfoLevel, "mail captured")

	active, err := svc.ActiveNotes(ctx, user.ID, notes.ActiveQuery{})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Pay rent", active[0].Title)
	assert.True(t, active[0].IsPriority)
	require.NotNil(t, active[0].LabelID)
	assert.Equal(t, home.ID, *active[0].LabelID)
	assert.True(t, active[1].IsList)

	// The same message redelivered unseen is not imported twice.
	mb.seen = nil
	report, err = job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Items)
	assert.Len(t, mb.seen, 2)

	count, err := st.CountNotes(ctx, store.NoteFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestJob_RunOnceErrors(t *testing.T) {
	st := testutil.NewTestStore(t)
	svc := notes.NewService(st, nil)

	job := NewJob(&fakeMailbox{}, svc, st, "missing@example.com", nil)
	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)

	user := testutil.NewTestUser(t, st)
	job = NewJob(&fakeMailbox{fetchErr: errors.New("imap down")}, svc, st, user.Email, nil)
	_, err = job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "imap down")

	job = NewJob(&fakeMailbox{}, svc, st, user.Email, nil)
	report, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no new mail", report.Detail)
}

func TestMatchLabel(t *testing.T) {
	labels := []model.Label{{ID: "1", Name: "Work"}, {ID: "2", Name: "Home"}}
	assert.Equal(t, "2", *matchLabel(labels, "home"))
	assert.Nil(t, matchLabel(labels, "gym"))
	assert.Nil(t, matchLabel(labels, ""))
}
