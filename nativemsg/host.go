package nativemsg

import (
	"context"
	"errors"
	"io"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
	"github.com/google/uuid"
)

// Supported request actions.
const (
	ActionConvert = "convert"
	ActionPing    = "ping"
)

// Request asks the host to convert a page.
type Request struct {
	ID       string `json:"id,omitempty"`
	Action   string `json:"action"`
	URL      string `json:"url,omitempty"`
	RootURL  string `json:"rootUrl,omitempty"`
	HTML     string `json:"html,omitempty"`
	BibLaTeX bool   `json:"biblatex,omitempty"`
}

// Response answers one Request. Exactly one of BibTeX and Error is set
// for conversions.
type Response struct {
	ID         string         `json:"id"`
	OK         bool           `json:"ok"`
	BibTeX     string         `json:"bibtex,omitempty"`
	Translator string         `json:"translator,omitempty"`
	Error      *ResponseError `json:"error,omitempty"`
}

// ResponseError carries an application error code and message.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Host serves native messaging requests against a TranslationService.
type Host struct {
	service bibfetch.TranslationService
	newID   func() string
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithIDGenerator replaces the generator for IDs of requests sent without one.
func WithIDGenerator(fn func() string) HostOption {
	return func(h *Host) {
		h.newID = fn
	}
}

// NewHost creates a Host.
func NewHost(s bibfetch.TranslationService, opts ...HostOption) *Host {
	h := &Host{service: s, newID: uuid.NewString}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve answers requests from r on w until r is exhausted or the context
// is canceled. Undecodable requests are answered with an EINVALID error
// response and the loop continues.
func (h *Host) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	in := NewReader(r)
	out := NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		err := in.Read(&req)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case bibfetch.ErrorCode(err) == bibfetch.EINVALID:
			if err := h.reply(out, failure(h.newID(), err)); err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}

		if err := h.reply(out, h.Handle(ctx, &req)); err != nil {
			return err
		}
	}
}

// reply writes a response, replacing one that is too large to send with
// an error response.
func (h *Host) reply(out *Writer, resp *Response) error {
	err := out.Write(resp)
	if bibfetch.ErrorCode(err) == bibfetch.EINVALID {
		return out.Write(failure(resp.ID, bibfetch.Errorf(bibfetch.EINVALID, "response exceeds %d byte limit", MaxOutbound)))
	}
	return err
}

// Handle answers a single request.
func (h *Host) Handle(ctx context.Context, req *Request) *Response {
	id := req.ID
	if id == "" {
		id = h.newID()
	}

	switch req.Action {
	case ActionPing:
		return &Response{ID: id, OK: true}
	case ActionConvert:
	default:
		return failure(id, bibfetch.Errorf(bibfetch.EINVALID, "unknown action %q", req.Action))
	}

	res, err := h.service.Translate(ctx, &bibfetch.TranslationRequest{
		URL:     req.URL,
		RootURL: req.RootURL,
		Markup:  req.HTML,
	})
	if err != nil {
		return failure(id, err)
	}

	dialect := bibtex.BibTeX
	if req.BibLaTeX {
		dialect = bibtex.BibLaTeX
	}
	text, err := bibtex.FromItems(res.Items, dialect)
	if err != nil {
		return failure(id, err)
	}
	return &Response{ID: id, OK: true, BibTeX: text, Translator: res.Translator}
}

func failure(id string, err error) *Response {
	return &Response{
		ID: id,
		Error: &ResponseError{
			Code:    bibfetch.ErrorCode(err),
			Message: bibfetch.ErrorMessage(err),
		},
	}
}
