// Package submissionlist renders the submission board and keeps each rendered row in step
// with its live record.
package submissionlist

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"sync"

	"github.com/penguicon/contrax/internal/app/format"
	"github.com/penguicon/contrax/internal/domain"
)

// Names under which the partial templates are registered. The list template refers to them
// with {{template "user_link" .}} and so on.
const (
	UserLinkTemplate      = "user_link"
	PresenterLinkTemplate = "presenter_link"
	UserTextTemplate      = "user_text"

	listTemplate = "submissions"
)

// Options configures a List. Template sources are encoded; see Decoder.
type Options struct {
	Submissions      []*domain.Submission
	SubmissionsTpl   string
	UserLinkTpl      string
	PresenterLinkTpl string
	UserTextTpl      string
}

// Config holds the collaborators of a List.
type Config struct {
	Decoder Decoder      // nil means JSONDecoder
	Logger  *slog.Logger // nil means slog.Default()
}

// Row holds every display value the list template reads for one submission.
type Row struct {
	ID            domain.SubmissionID
	Title         string
	Link          template.HTML
	Submitter     *domain.User
	Presenters    []domain.Presenter
	Byline        string
	HasPresenters bool
	Duration      string
	FollowUp      string
	Description   template.HTML

	RSVPedBy  []domain.User
	RSVPCount string
	RSVPIcon  string
	Updating  bool
}

type entry struct {
	sub *domain.Submission
	row Row
}

// List is a rendered submission board bound to its records.
//
// After New, the list subscribes to every submission. When a record changes, only that
// record's RSVP values are derived again and the OnRowChange hook is called with the new row.
type List struct {
	tmpl   *template.Template
	viewer domain.Viewer
	logger *slog.Logger

	mu          sync.Mutex
	order       []domain.SubmissionID
	entries     map[domain.SubmissionID]*entry
	onRowChange func(Row)
	unsubscribe []func()
}

// New decodes and registers the templates, derives every row, and subscribes to the records.
// It fails if a template is missing or malformed, or if a record holds an unknown code.
func New(opts Options, viewer domain.Viewer, cfg Config) (*List, error) {
	dec := cfg.Decoder
	if dec == nil {
		dec = JSONDecoder{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := parseTemplates(dec, opts)
	if err != nil {
		return nil, err
	}

	l := &List{
		tmpl:    tmpl,
		viewer:  viewer,
		logger:  logger,
		order:   make([]domain.SubmissionID, 0, len(opts.Submissions)),
		entries: make(map[domain.SubmissionID]*entry, len(opts.Submissions)),
	}
	for _, s := range opts.Submissions {
		if s == nil {
			continue
		}
		if _, dup := l.entries[s.ID]; dup {
			l.Close()
			return nil, fmt.Errorf("duplicate submission %d", s.ID)
		}
		row, err := deriveRow(s, viewer)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.order = append(l.order, s.ID)
		l.entries[s.ID] = &entry{sub: s, row: row}
		l.unsubscribe = append(l.unsubscribe, s.Subscribe(l.handleChange))
	}
	return l, nil
}

func parseTemplates(dec Decoder, opts Options) (*template.Template, error) {
	root := template.New(listTemplate)
	partials := []struct {
		name, src string
	}{
		{UserLinkTemplate, opts.UserLinkTpl},
		{PresenterLinkTemplate, opts.PresenterLinkTpl},
		{UserTextTemplate, opts.UserTextTpl},
	}
	for _, p := range partials {
		text, err := dec.Decode(p.src)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", p.name, err)
		}
		if _, err := root.New(p.name).Parse(text); err != nil {
			return nil, fmt.Errorf("template %s: %w", p.name, err)
		}
	}

	text, err := dec.Decode(opts.SubmissionsTpl)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", listTemplate, err)
	}
	if _, err := root.Parse(text); err != nil {
		return nil, fmt.Errorf("template %s: %w", listTemplate, err)
	}
	return root, nil
}

func deriveRow(s *domain.Submission, v domain.Viewer) (Row, error) {
	followUp, err := format.FollowUpLabel(s.FollowUpState)
	if err != nil {
		return Row{}, fmt.Errorf("submission %d: %w", s.ID, err)
	}
	duration, err := format.DurationLabel(s.Duration)
	if err != nil {
		return Row{}, fmt.Errorf("submission %d: %w", s.ID, err)
	}
	desc, err := format.DescriptionHTML(s)
	if err != nil {
		return Row{}, err
	}
	row := Row{
		ID:            s.ID,
		Title:         s.Title,
		Link:          format.SubmissionLink(s, v),
		Submitter:     s.Submitter,
		Presenters:    s.Presenters,
		Byline:        format.PresenterByline(s),
		HasPresenters: format.HasPresenters(s),
		Duration:      duration,
		FollowUp:      followUp,
		Description:   desc,
	}
	refreshRSVP(&row, s, v)
	return row, nil
}

func refreshRSVP(row *Row, s *domain.Submission, v domain.Viewer) {
	row.RSVPedBy = s.RSVPedBy()
	row.RSVPCount = format.RSVPCount(s)
	row.RSVPIcon = format.RSVPIconClass(s, v)
	row.Updating = s.Updating()
}

func (l *List) handleChange(c domain.Change) {
	l.mu.Lock()
	e, ok := l.entries[c.SubmissionID]
	if !ok {
		l.mu.Unlock()
		return
	}
	refreshRSVP(&e.row, e.sub, l.viewer)
	row := e.row
	hook := l.onRowChange
	l.mu.Unlock()

	l.logger.Debug("submission row refreshed",
		"submission_id", int(row.ID),
		"rsvp_count", row.RSVPCount,
		"updating", row.Updating,
	)
	if hook != nil {
		hook(row)
	}
}

// OnRowChange sets the hook called with the re-derived row after a record changes.
func (l *List) OnRowChange(fn func(Row)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onRowChange = fn
}

// Row returns the current display values for a submission.
func (l *List) Row(id domain.SubmissionID) (Row, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return Row{}, false
	}
	return e.row, true
}

// Submission returns the live record behind a row.
func (l *List) Submission(id domain.SubmissionID) (*domain.Submission, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	return e.sub, true
}

// Len returns the number of rows.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Render writes the whole fragment to w. Nothing is written if the template fails.
func (l *List) Render(w io.Writer) error {
	l.mu.Lock()
	rows := make([]Row, 0, len(l.order))
	for _, id := range l.order {
		rows = append(rows, l.entries[id].row)
	}
	l.mu.Unlock()

	var buf bytes.Buffer
	data := struct {
		Submissions []Row
		User        domain.Viewer
	}{Submissions: rows, User: l.viewer}
	if err := l.tmpl.ExecuteTemplate(&buf, listTemplate, data); err != nil {
		return fmt.Errorf("render submissions: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Close unsubscribes from every record. Rows stop updating afterwards.
func (l *List) Close() {
	l.mu.Lock()
	unsub := l.unsubscribe
	l.unsubscribe = nil
	l.mu.Unlock()
	for _, fn := range unsub {
		fn()
	}
}
